package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar displays the adapter, the selected parser and the outcome of
// the last render.
type StatusBar struct {
	width       int
	adapter     string
	parser      string
	parserIndex int
	parserCount int
	message     string
	style       lipgloss.Style
}

// NewStatusBar creates a new StatusBar with the given terminal width.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{
		width: width,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}),
	}
}

// SetWidth updates the render width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// SetAdapter sets the name of the adapter holding the open file.
func (s *StatusBar) SetAdapter(name string) { s.adapter = name }

// SetParser sets the selected parser and its 0-based position.
func (s *StatusBar) SetParser(name string, index, count int) {
	s.parser, s.parserIndex, s.parserCount = name, index, count
}

// SetMessage sets the trailing message.
func (s *StatusBar) SetMessage(msg string) { s.message = msg }

// View renders the status bar as a styled string.
func (s *StatusBar) View() string {
	adapter := s.adapter
	if adapter == "" {
		adapter = "no file"
	}
	parser := "no parser"
	if s.parser != "" {
		parser = fmt.Sprintf("%s %d/%d", s.parser, s.parserIndex+1, s.parserCount)
	}
	parts := []string{adapter, "Parser: " + parser}
	if s.message != "" {
		parts = append(parts, s.message)
	}
	line := " " + strings.Join(parts, "  │  ")
	if s.width > 0 {
		return s.style.MaxWidth(s.width).Render(line)
	}
	return s.style.Render(line)
}
