package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CommandLine wraps a bubbles textinput.Model for slash commands. The
// parent Model handles enter (run) and esc (cancel).
type CommandLine struct {
	input textinput.Model
}

// NewCommandLine creates an unfocused command line.
func NewCommandLine() *CommandLine {
	ti := textinput.New()
	ti.Placeholder = "/open <path>"
	ti.Prompt = ""
	ti.CharLimit = 0
	return &CommandLine{input: ti}
}

// Value returns the current text content.
func (c *CommandLine) Value() string {
	return c.input.Value()
}

// SetValue replaces the text content and moves the cursor to the end.
func (c *CommandLine) SetValue(s string) {
	c.input.SetValue(s)
	c.input.CursorEnd()
}

// Reset clears the text content.
func (c *CommandLine) Reset() {
	c.input.Reset()
}

// Update delegates a message to the textinput and returns any command.
func (c *CommandLine) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// View renders the textinput.
func (c *CommandLine) View() string {
	return c.input.View()
}

// Focused reports whether the command line takes key input.
func (c *CommandLine) Focused() bool {
	return c.input.Focused()
}

// Focus gives the textinput focus.
func (c *CommandLine) Focus() tea.Cmd {
	return c.input.Focus()
}

// Blur removes focus from the textinput.
func (c *CommandLine) Blur() {
	c.input.Blur()
}
