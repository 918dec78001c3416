package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/dataviewer/internal/commands"
	"github.com/julianshen/dataviewer/internal/viewer"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	// StateBrowse indicates the user is navigating the tree.
	StateBrowse UIState = iota
	// StateCommand indicates the command line has focus.
	StateCommand
	// StateSettings indicates the parser settings form is shown.
	StateSettings
	// StateWarning indicates a warning waits to be dismissed.
	StateWarning
)

// Model is the Bubble Tea model for the data viewer.
type Model struct {
	ctrl       *viewer.Controller
	commands   *commands.Registry
	recent     func() ([]string, error)
	tree       *TreePane
	home       bool
	viewport   viewport.Model
	statusBar  *StatusBar
	cmdLine    *CommandLine
	completion *CompletionOverlay
	settings   *SettingsForm
	warning    *Warning
	help       help.Model
	keys       keyMap
	state      UIState
	width      int
	height     int
	treeWidth  int
	quitting   bool
}

// Ensure Model satisfies the tea.Model interface at compile time.
var _ tea.Model = (*Model)(nil)

// NewModel creates a TUI over ctrl. recent lists the history shown when no
// file is open; it may be nil. extra commands are registered after the
// builtins and must not reuse their names.
func NewModel(ctrl *viewer.Controller, recent func() ([]string, error), extra ...commands.SlashCommand) (*Model, error) {
	reg := commands.NewRegistry()
	if err := commands.RegisterBuiltins(reg, ctrl, recent); err != nil {
		return nil, err
	}
	for _, cmd := range extra {
		if err := reg.Register(cmd); err != nil {
			return nil, err
		}
	}

	m := &Model{
		ctrl:       ctrl,
		commands:   reg,
		recent:     recent,
		viewport:   viewport.New(56, 20),
		statusBar:  NewStatusBar(80),
		cmdLine:    NewCommandLine(),
		completion: NewCompletionOverlay(reg, 80),
		help:       help.New(),
		keys:       defaultKeyMap(),
		state:      StateBrowse,
		width:      80,
		height:     24,
	}
	m.layout()
	m.reload()
	return m, nil
}

// Open opens path as if entered on the command line. Failures show the
// open warning.
func (m *Model) Open(path string) {
	err := m.ctrl.OpenFile(path)
	m.reload()
	if err != nil {
		m.showOpenError(err)
	}
}

func (m *Model) surface() viewersdk.Surface {
	return viewportSurface{vp: &m.viewport}
}

// layout sizes the panes: header (1), divider (1), body, status (1),
// footer (1).
func (m *Model) layout() {
	bodyHeight := max(m.height-4, 1)
	m.treeWidth = min(max(m.width/3, 16), 48)
	m.viewport.Width = max(m.width-m.treeWidth-1, 1)
	m.viewport.Height = bodyHeight
	m.statusBar.SetWidth(m.width)
	m.completion.SetWidth(m.width)
	m.help.Width = m.width
}

func (m *Model) bodyHeight() int {
	return m.viewport.Height
}

// reload rebuilds the tree from the open file, or from the recent list
// when nothing is open, and renders the selection.
func (m *Model) reload() {
	if m.ctrl.IsOpen() {
		m.home = false
		m.tree = NewTreePane(m.ctrl.Items())
	} else {
		m.home = true
		m.tree = NewTreePane(m.recentItems())
	}
	m.statusBar.SetMessage("")
	m.updateStatus()
	m.renderSelection()
}

func (m *Model) recentItems() []*viewersdk.DataItem {
	if m.recent == nil {
		return nil
	}
	paths, err := m.recent()
	if err != nil {
		return nil
	}
	items := make([]*viewersdk.DataItem, len(paths))
	for i, p := range paths {
		items[i] = viewersdk.NewItem(p, nil)
	}
	return items
}

func (m *Model) updateStatus() {
	m.statusBar.SetAdapter(m.ctrl.AdapterName())
	m.statusBar.SetParser(m.ctrl.ParserName(), m.ctrl.ParserIndex(), len(m.ctrl.ParserNames()))
}

// renderSelection shows the item under the cursor, or the start screen.
func (m *Model) renderSelection() {
	if m.home {
		m.surface().SetContent(m.startScreen())
		return
	}
	row, ok := m.tree.Selected()
	if !ok {
		m.surface().SetContent("")
		return
	}
	m.reportOutcome(m.ctrl.Show(row.Item, m.surface()))
}

// rerender draws the current item again, after a parser or settings
// change.
func (m *Model) rerender() {
	m.updateStatus()
	if m.home {
		m.renderSelection()
		return
	}
	m.reportOutcome(m.ctrl.Render(m.surface()))
}

func (m *Model) reportOutcome(out viewer.Outcome) {
	switch out {
	case viewer.Rendered, viewer.NoData:
		m.statusBar.SetMessage("")
	default:
		m.statusBar.SetMessage(out.String())
	}
}

func (m *Model) startScreen() string {
	var b strings.Builder
	b.WriteString(RenderBanner())
	b.WriteString("\n\nPress o to open a file, / for commands.\n\nFormats:\n")
	for _, f := range strings.Split(m.ctrl.FileDialogFilter(), ";;") {
		b.WriteString("  " + f + "\n")
	}
	if m.tree.Len() > 0 {
		b.WriteString("\nRecent files are listed on the left; press enter to open one.\n")
	}
	return b.String()
}

func (m *Model) showOpenError(err error) {
	m.warning = NewWarning(OpenFailedTitle, err.Error(), m.width)
	m.state = StateWarning
}

// cycleParser selects the parser delta positions away, wrapping around.
func (m *Model) cycleParser(delta int) {
	n := len(m.ctrl.ParserNames())
	if n == 0 {
		return
	}
	idx := ((m.ctrl.ParserIndex()+delta)%n + n) % n
	if err := m.ctrl.SelectParser(idx); err != nil {
		m.statusBar.SetMessage(err.Error())
		return
	}
	m.rerender()
}

// openSettings shows the selected parser's settings form.
func (m *Model) openSettings() tea.Cmd {
	form, ok := NewSettingsForm(m.ctrl.ParserName(), m.ctrl.ParserSettings)
	if !ok {
		m.statusBar.SetMessage("No settings for this parser")
		return nil
	}
	m.settings = form
	m.state = StateSettings
	return form.Form().Init()
}

// runCommand executes a slash command line.
func (m *Model) runCommand(line string) tea.Cmd {
	res, err := m.commands.Run(context.Background(), line)
	if res.Action == commands.ActionReload {
		m.reload()
	}
	if err != nil {
		if errors.Is(err, viewer.ErrUnsupportedFile) || errors.Is(err, viewer.ErrOpenFailed) {
			m.showOpenError(err)
		} else {
			m.statusBar.SetMessage(err.Error())
		}
		return nil
	}

	switch res.Action {
	case commands.ActionQuit:
		m.quitting = true
		return tea.Quit
	case commands.ActionOpenSettings:
		return m.openSettings()
	case commands.ActionReload:
		m.statusBar.SetMessage(res.Output)
	default:
		if res.Output != "" {
			m.surface().SetContent(res.Output)
		}
	}
	return nil
}

func (m *Model) enterCommand(prefill string) tea.Cmd {
	m.state = StateCommand
	m.cmdLine.SetValue(prefill)
	m.completion.Update(prefill)
	return m.cmdLine.Focus()
}

func (m *Model) exitCommand() {
	m.cmdLine.Reset()
	m.cmdLine.Blur()
	m.completion.Update("")
	m.state = StateBrowse
}
