package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/dataviewer/internal/commands"
)

const maxVisibleCandidates = 8

// completion is one row of the overlay. line is what the command line
// becomes when the row is accepted.
type completion struct {
	line  string
	label string
	desc  string
}

// CompletionOverlay shows a dropdown of matching slash commands, or of the
// current command's argument candidates, above the command line.
type CompletionOverlay struct {
	registry  *commands.Registry
	items     []completion
	selected  int
	visible   bool
	dismissed bool // prevents re-show after Escape until input changes
	width     int
	lastInput string
}

// NewCompletionOverlay creates a new completion overlay backed by the
// given command registry. The width parameter controls the rendered width.
func NewCompletionOverlay(registry *commands.Registry, width int) *CompletionOverlay {
	return &CompletionOverlay{
		registry: registry,
		width:    width,
	}
}

// Update refreshes the candidates for input. Before the first space it
// matches command names; after it, the command's own completions.
func (co *CompletionOverlay) Update(input string) {
	if !strings.HasPrefix(input, "/") {
		co.reset()
		co.dismissed = false
		return
	}
	if input == co.lastInput {
		return
	}
	co.lastInput = input
	co.dismissed = false
	co.selected = 0

	name, rest, hasArgs := strings.Cut(input[1:], " ")
	co.items = nil
	if !hasArgs {
		for _, c := range co.registry.Match(name) {
			line := "/" + c.Value
			if cmd, ok := co.registry.Get(c.Value); ok && cmd.Usage() != "" {
				line += " "
			}
			co.items = append(co.items, completion{line: line, label: "/" + c.Value, desc: c.Description})
		}
	} else if cmd, ok := co.registry.Get(name); ok {
		var args []string
		if rest != "" {
			args = []string{rest}
		}
		for _, c := range cmd.Complete(context.Background(), args) {
			co.items = append(co.items, completion{line: "/" + name + " " + c.Value, label: c.Value, desc: c.Description})
		}
	}
	co.visible = len(co.items) > 0
}

func (co *CompletionOverlay) reset() {
	co.visible = false
	co.items = nil
	co.selected = 0
	co.lastInput = ""
}

// HandleKey processes a keypress when the overlay is visible.
// Up/Down navigate candidates (with wrap-around), Escape dismisses.
// Returns true if the key was consumed by the overlay.
func (co *CompletionOverlay) HandleKey(msg tea.KeyMsg) bool {
	if !co.visible {
		return false
	}

	switch msg.Type {
	case tea.KeyUp:
		co.selected--
		if co.selected < 0 {
			co.selected = len(co.items) - 1
		}
		return true

	case tea.KeyDown:
		co.selected++
		if co.selected >= len(co.items) {
			co.selected = 0
		}
		return true

	case tea.KeyEscape:
		co.visible = false
		co.dismissed = true
		return true
	}

	return false
}

// HandleTab accepts the selected candidate and returns the new command
// line.
func (co *CompletionOverlay) HandleTab() (accepted bool, line string) {
	if !co.visible || len(co.items) == 0 {
		return false, ""
	}
	line = co.items[co.selected].line
	co.reset()
	return true, line
}

// Visible returns whether the overlay should be rendered.
func (co *CompletionOverlay) Visible() bool {
	return co.visible && !co.dismissed
}

// Labels returns the displayed candidate labels.
func (co *CompletionOverlay) Labels() []string {
	out := make([]string, len(co.items))
	for i, it := range co.items {
		out[i] = it.label
	}
	return out
}

// Selected returns the index of the currently highlighted candidate.
func (co *CompletionOverlay) Selected() int {
	return co.selected
}

// SetWidth updates the render width.
func (co *CompletionOverlay) SetWidth(w int) {
	co.width = w
}

// View renders the completion overlay as a bordered box with candidate rows.
// Returns an empty string when not visible.
func (co *CompletionOverlay) View() string {
	if !co.Visible() || len(co.items) == 0 {
		return ""
	}

	boxWidth := co.width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}).
		Width(boxWidth)

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#5A56E0")).
		Foreground(lipgloss.Color("#FFFFFF"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	// Scroll so the selected item stays in view.
	start := 0
	total := len(co.items)
	if total > maxVisibleCandidates {
		if co.selected >= maxVisibleCandidates {
			start = co.selected - maxVisibleCandidates + 1
		}
		if start+maxVisibleCandidates > total {
			start = total - maxVisibleCandidates
		}
	}
	end := min(start+maxVisibleCandidates, total)

	innerWidth := boxWidth - 2
	var rows []string
	for i := start; i < end; i++ {
		it := co.items[i]
		spacing := max(innerWidth-lipgloss.Width(it.label)-lipgloss.Width(it.desc), 2)
		pad := strings.Repeat(" ", spacing)
		if i == co.selected {
			rows = append(rows, selectedStyle.Render(it.label+pad+it.desc))
			continue
		}
		rows = append(rows, it.label+pad+descStyle.Render(it.desc))
	}

	return borderStyle.Render(strings.Join(rows, "\n"))
}
