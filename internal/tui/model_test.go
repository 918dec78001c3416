package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/commands"
	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/internal/viewer"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// memAdapter serves a fixed tree for any file ending in ".mem". Names
// starting with "broken" fail to open.
type memAdapter struct {
	name string
	open bool
}

func (a *memAdapter) OpenFile(fileName string) bool {
	if strings.HasPrefix(fileName, "broken") {
		return false
	}
	a.name, a.open = fileName, true
	return true
}

func (a *memAdapter) CloseFile()         { a.open = false }
func (a *memAdapter) FileName() string   { return a.name }
func (a *memAdapter) IsFileOpened() bool { return a.open }

func (a *memAdapter) TreeItems() []*viewersdk.DataItem {
	return []*viewersdk.DataItem{
		viewersdk.NewItem("root", nil).Add(
			viewersdk.NewItem("greeting", []byte("hello")),
			viewersdk.NewItem("numbers", []int64{1, 2, 3}),
		),
		viewersdk.NewItem("notes", "plain note"),
	}
}

func newTestController(t *testing.T) *viewer.Controller {
	t.Helper()
	a, p := adapters.NewRegistry(), plugins.NewRegistry()
	require.NoError(t, a.Register(&viewersdk.AdapterClass{
		Name:        "mem",
		Extensions:  []string{"mem"},
		CanOpenFile: func(name string) bool { return strings.HasSuffix(name, ".mem") },
		New:         func() viewersdk.Adapter { return &memAdapter{} },
	}))
	require.NoError(t, loader.New(a, p).LoadBuiltins(viewer.Builtins()...))
	return viewer.New(a, p)
}

func newTestModel(t *testing.T, recent func() ([]string, error)) *Model {
	t.Helper()
	m, err := NewModel(newTestController(t), recent)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestUIStateConstants(t *testing.T) {
	states := []UIState{StateBrowse, StateCommand, StateSettings, StateWarning}
	seen := make(map[UIState]bool)
	for _, s := range states {
		assert.False(t, seen[s], "duplicate UIState value: %d", s)
		seen[s] = true
	}
}

func TestNewModelRejectsDuplicateCommands(t *testing.T) {
	_, err := NewModel(newTestController(t), nil, commands.NewQuitCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered: quit")
}

func TestNewModelShowsStartScreen(t *testing.T) {
	m, err := NewModel(newTestController(t), nil)
	require.NoError(t, err)

	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
	assert.True(t, m.home)
	assert.Equal(t, 0, m.tree.Len())
	assert.Contains(t, m.viewport.View(), "Press o to open a file")
	assert.Contains(t, m.View(), viewer.AppTitle)
}

func TestModelOpenBuildsTree(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")

	assert.False(t, m.home)
	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, 4, m.tree.Len())

	status := m.statusBar.View()
	assert.Contains(t, status, "mem")
	assert.Contains(t, status, "Parser: Image 2/4")

	view := m.View()
	assert.Contains(t, view, "sample.mem - Data Viewer")
	assert.Contains(t, view, "greeting")
}

func TestModelNavigationRendersSelection(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	require.NoError(t, m.ctrl.SelectParserByName("String"))

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	row, ok := m.tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "greeting", row.Name)
	assert.Contains(t, m.viewport.View(), "hello")

	press(m, keyRunes("j"), keyRunes("j"))
	row, _ = m.tree.Selected()
	assert.Equal(t, "notes", row.Name)
	assert.Contains(t, m.viewport.View(), "plain note")

	press(m, tea.KeyMsg{Type: tea.KeyUp})
	row, _ = m.tree.Selected()
	assert.Equal(t, "numbers", row.Name)
	assert.NotContains(t, m.viewport.View(), "plain note")
}

func TestModelCollapseHidesChildren(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 2, m.tree.Len())

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 4, m.tree.Len())
}

func TestModelCycleParser(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	assert.Equal(t, "Image", m.ctrl.ParserName())

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "String", m.ctrl.ParserName())
	assert.Contains(t, m.statusBar.View(), "String 3/4")

	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Array", m.ctrl.ParserName(), "cycling wraps to the first parser")

	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Markdown", m.ctrl.ParserName())
}

func TestModelParserSwitchRerendersCurrentItem(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	require.NoError(t, m.ctrl.SelectParserByName("Array"))

	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	row, _ := m.tree.Selected()
	require.Equal(t, "numbers", row.Name)
	assert.Contains(t, m.viewport.View(), "3")

	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Markdown", m.ctrl.ParserName())
	assert.NotContains(t, m.viewport.View(), "3")
	assert.Contains(t, m.statusBar.View(), viewer.Rejected.String())

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Array", m.ctrl.ParserName())
	assert.Contains(t, m.viewport.View(), "3")
	assert.NotContains(t, m.statusBar.View(), viewer.Rejected.String())
}

func TestModelOpenFailureShowsWarning(t *testing.T) {
	m := newTestModel(t, nil)

	m.Open("broken.mem")
	require.Equal(t, StateWarning, m.state)
	assert.Equal(t, OpenFailedTitle, m.warning.Title())
	assert.Contains(t, m.View(), OpenFailedTitle)
	assert.True(t, m.home)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateBrowse, m.state)
	assert.Nil(t, m.warning)
}

func TestModelOpenUnsupportedFromCommandLine(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")

	press(m, keyRunes("o"))
	require.Equal(t, StateCommand, m.state)
	assert.Equal(t, "/open ", m.cmdLine.Value())

	m.cmdLine.SetValue("/open notes.txt")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateWarning, m.state)
	assert.Contains(t, m.warning.View(), "notes.txt")
	assert.False(t, m.ctrl.IsOpen(), "a failed open leaves no file open")
	assert.True(t, m.home)
}

func TestModelCommandLineRunsCommands(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")

	press(m, keyRunes("/"))
	require.Equal(t, StateCommand, m.state)
	assert.True(t, m.completion.Visible())

	press(m, keyRunes("f"), keyRunes("o"))
	assert.Equal(t, "/fo", m.cmdLine.Value())
	assert.Equal(t, []string{"/formats"}, m.completion.Labels())

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/formats", m.cmdLine.Value())

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, "", m.cmdLine.Value())
	assert.Contains(t, m.viewport.View(), "mem (*.mem)")
}

func TestModelCommandSwitchesParser(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")

	assert.Nil(t, m.runCommand("/parser 3"))
	assert.Equal(t, "String", m.ctrl.ParserName())
	assert.Contains(t, m.statusBar.View(), "Parser switched to String")
}

func TestModelUnknownCommand(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Nil(t, m.runCommand("/bogus"))
	assert.Equal(t, StateBrowse, m.state)
	assert.Contains(t, m.statusBar.View(), "unknown command: /bogus")
}

func TestModelEscapeLeavesCommandLine(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, keyRunes("/"))
	require.True(t, m.completion.Visible())

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateCommand, m.state, "first escape dismisses the completions")
	assert.False(t, m.completion.Visible())

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateBrowse, m.state)
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, nil)

	cmd := press(m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestModelSlashQuit(t *testing.T) {
	m := newTestModel(t, nil)

	cmd := m.runCommand("/exit")
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelCtrlCQuitsFromCommandLine(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, keyRunes("/"))

	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModelCloseReturnsHome(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	require.True(t, m.ctrl.IsOpen())

	cmd := press(m, keyRunes("x"))
	assert.NotNil(t, cmd)
	assert.False(t, m.ctrl.IsOpen())
	assert.True(t, m.home)
	assert.Contains(t, m.statusBar.View(), "no file")
}

func TestModelOpensRecentFile(t *testing.T) {
	m := newTestModel(t, func() ([]string, error) {
		return []string{"last.mem", "older.mem"}, nil
	})
	require.True(t, m.home)
	assert.Equal(t, 2, m.tree.Len())
	assert.Contains(t, m.viewport.View(), "press enter to open one")

	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.home)
	assert.Equal(t, "older.mem", m.ctrl.FileName())
}

func TestModelSettingsWithoutOptions(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	require.NoError(t, m.ctrl.SelectParserByName("Array"))

	assert.Nil(t, press(m, keyRunes("s")))
	assert.Equal(t, StateBrowse, m.state)
	assert.Contains(t, m.statusBar.View(), "No settings for this parser")
}

type noopMsg struct{}

func TestModelSettingsForm(t *testing.T) {
	m := newTestModel(t, nil)
	m.Open("sample.mem")
	require.NoError(t, m.ctrl.SelectParserByName("String"))

	press(m, keyRunes("s"))
	require.Equal(t, StateSettings, m.state)
	require.NotNil(t, m.settings)
	assert.Equal(t, []string{"Encoding"}, m.settings.Titles())
	assert.Contains(t, m.View(), "Encoding")

	m.settings.Form().State = huh.StateAborted
	press(m, noopMsg{})
	assert.Equal(t, StateBrowse, m.state)
	assert.Nil(t, m.settings)
}

func TestModelWindowResize(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 40, m.treeWidth)
	assert.Equal(t, 79, m.viewport.Width)
	assert.Equal(t, 36, m.viewport.Height)

	press(m, tea.WindowSizeMsg{Width: 30, Height: 3})
	assert.Equal(t, 16, m.treeWidth, "tree pane keeps a minimum width")
	assert.Equal(t, 1, m.viewport.Height)
}

func TestModelInitSetsTitle(t *testing.T) {
	m := newTestModel(t, nil)
	assert.NotNil(t, m.Init())
}
