package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions for the TUI view.
var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	inputPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	separatorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"})
)

// View implements tea.Model. It renders the TUI as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	// Header
	b.WriteString(headerStyle.Render(m.ctrl.Title()))
	b.WriteString("\n")

	// Divider
	dividerWidth := m.width
	if dividerWidth < 1 {
		dividerWidth = 80
	}
	b.WriteString(strings.Repeat("─", dividerWidth))
	b.WriteString("\n")

	// Body
	b.WriteString(m.bodyView())
	b.WriteString("\n")

	// Status line
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")

	// Footer
	if m.state == StateCommand {
		b.WriteString(inputPromptStyle.Render(":"))
		b.WriteString(m.cmdLine.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}

	return b.String()
}

func (m *Model) bodyView() string {
	height := m.bodyHeight()
	switch {
	case m.state == StateSettings && m.settings != nil:
		return fitHeight(m.settings.Form().View(), height)
	case m.state == StateWarning && m.warning != nil:
		return fitHeight(m.warning.View(), height)
	}

	var overlay string
	if m.state == StateCommand && m.completion.Visible() {
		overlay = strings.TrimRight(m.completion.View(), "\n")
	}
	paneHeight := height
	if overlay != "" {
		paneHeight = max(height-lipgloss.Height(overlay), 1)
	}

	sep := separatorStyle.Render(strings.TrimRight(strings.Repeat("│\n", paneHeight), "\n"))
	tree := lipgloss.NewStyle().Width(m.treeWidth).Render(m.tree.View(m.treeWidth, paneHeight))
	content := fitHeight(m.viewport.View(), paneHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, tree, sep, content)
	body = fitHeight(body, paneHeight)
	if overlay != "" {
		body += "\n" + overlay
	}
	return body
}

// fitHeight pads or truncates s to exactly height lines.
func fitHeight(s string, height int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
