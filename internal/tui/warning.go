package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OpenFailedTitle is the warning shown when a file cannot be opened.
const OpenFailedTitle = "Could not open file"

// Warning is a dismissible message box.
type Warning struct {
	title  string
	detail string
	box    lipgloss.Style
}

// NewWarning creates a warning. The width parameter controls the box width.
func NewWarning(title, detail string, width int) *Warning {
	boxWidth := width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
		Width(boxWidth).
		Padding(0, 1)

	return &Warning{title: title, detail: detail, box: box}
}

// Title returns the headline.
func (w *Warning) Title() string { return w.title }

// HandleKey reports whether msg dismisses the warning.
func (w *Warning) HandleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		return true
	}
	return false
}

// View renders the warning box.
func (w *Warning) View() string {
	body := lipgloss.NewStyle().Bold(true).Render("⚠ " + w.title)
	if w.detail != "" {
		body += "\n" + w.detail
	}
	return w.box.Render(body+"\n\n[enter] OK") + "\n"
}
