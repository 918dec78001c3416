package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.ctrl.Title())
}

// Update implements tea.Model. It processes incoming messages and returns the
// updated model and any commands to execute.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.layout()
		if m.state != StateSettings {
			m.rerender()
			return m, nil
		}
	}

	// Route messages to the settings form when active.
	if m.state == StateSettings && m.settings != nil {
		form, cmd := m.settings.Form().Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.settings.SetForm(f)
		}
		if m.settings.IsCompleted() || m.settings.IsAborted() {
			m.settings = nil
			m.state = StateBrowse
			m.rerender()
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.state == StateCommand {
		return m, m.cmdLine.Update(msg)
	}
	return m, nil
}

// handleKeyMsg processes keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, regardless of state.
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case StateWarning:
		if m.warning == nil || m.warning.HandleKey(msg) {
			m.warning = nil
			m.state = StateBrowse
		}
		return m, nil
	case StateCommand:
		return m.handleCommandKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.completion.HandleKey(msg) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		if ok, line := m.completion.HandleTab(); ok {
			m.cmdLine.SetValue(line)
			m.completion.Update(line)
		}
		return m, nil
	case tea.KeyEsc:
		m.exitCommand()
		return m, nil
	case tea.KeyEnter:
		line := strings.TrimSpace(m.cmdLine.Value())
		m.exitCommand()
		if line == "" {
			return m, nil
		}
		if !strings.HasPrefix(line, "/") {
			line = "/" + line
		}
		title := m.ctrl.Title()
		cmd := m.runCommand(line)
		if t := m.ctrl.Title(); t != title {
			cmd = tea.Batch(cmd, tea.SetWindowTitle(t))
		}
		return m, cmd
	default:
		cmd := m.cmdLine.Update(msg)
		m.completion.Update(m.cmdLine.Value())
		return m, cmd
	}
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.tree.Move(-1) {
			m.renderSelection()
		}
	case key.Matches(msg, m.keys.Down):
		if m.tree.Move(1) {
			m.renderSelection()
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.home {
			return m, m.openSelectedRecent()
		}
		if m.tree.Toggle() {
			m.renderSelection()
		}
	case key.Matches(msg, m.keys.Expand):
		if m.home {
			return m, m.openSelectedRecent()
		}
		m.tree.SetExpanded(true)
		m.renderSelection()
	case key.Matches(msg, m.keys.Collapse):
		m.tree.SetExpanded(false)
		m.renderSelection()

	case key.Matches(msg, m.keys.NextParser):
		m.cycleParser(1)
	case key.Matches(msg, m.keys.PrevParser):
		m.cycleParser(-1)
	case key.Matches(msg, m.keys.Settings):
		return m, m.openSettings()

	case key.Matches(msg, m.keys.Open):
		return m, m.enterCommand("/open ")
	case key.Matches(msg, m.keys.Command):
		return m, m.enterCommand("/")
	case key.Matches(msg, m.keys.Close):
		m.ctrl.CloseFile()
		m.reload()
		return m, tea.SetWindowTitle(m.ctrl.Title())

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfPageDown()
	}
	return m, nil
}

func (m *Model) openSelectedRecent() tea.Cmd {
	row, ok := m.tree.Selected()
	if !ok {
		return nil
	}
	m.Open(row.Name)
	return tea.SetWindowTitle(m.ctrl.Title())
}
