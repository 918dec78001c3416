package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/dataviewer/internal/viewer"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

var (
	treeCursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#5A56E0")).
			Foreground(lipgloss.Color("#FFFFFF"))
	treeGroupStyle = lipgloss.NewStyle().Bold(true)
	treeEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// TreePane is the navigable item tree shown beside the visualization.
// Groups start expanded.
type TreePane struct {
	rows      []viewer.Row
	collapsed map[*viewersdk.DataItem]bool
	cursor    int
	offset    int
}

// NewTreePane builds a pane over items.
func NewTreePane(items []*viewersdk.DataItem) *TreePane {
	return &TreePane{
		rows:      viewer.Flatten(items),
		collapsed: make(map[*viewersdk.DataItem]bool),
	}
}

// Visible returns the rows not hidden under a collapsed group.
func (t *TreePane) Visible() []viewer.Row {
	var out []viewer.Row
	hideBelow := -1
	for _, r := range t.rows {
		if hideBelow >= 0 {
			if r.Depth > hideBelow {
				continue
			}
			hideBelow = -1
		}
		out = append(out, r)
		if r.IsGroup() && t.collapsed[r.Item] {
			hideBelow = r.Depth
		}
	}
	return out
}

// Len returns the number of visible rows.
func (t *TreePane) Len() int { return len(t.Visible()) }

// Cursor returns the index of the selected visible row.
func (t *TreePane) Cursor() int { return t.cursor }

// Selected returns the row under the cursor.
func (t *TreePane) Selected() (viewer.Row, bool) {
	vis := t.Visible()
	if t.cursor < 0 || t.cursor >= len(vis) {
		return viewer.Row{}, false
	}
	return vis[t.cursor], true
}

// Move shifts the cursor by delta, clamped to the visible rows. It
// reports whether the cursor moved.
func (t *TreePane) Move(delta int) bool {
	n := t.Len()
	if n == 0 {
		return false
	}
	next := min(max(t.cursor+delta, 0), n-1)
	if next == t.cursor {
		return false
	}
	t.cursor = next
	return true
}

// Toggle flips the selected group between expanded and collapsed.
func (t *TreePane) Toggle() bool {
	r, ok := t.Selected()
	if !ok || !r.IsGroup() {
		return false
	}
	t.collapsed[r.Item] = !t.collapsed[r.Item]
	return true
}

// SetExpanded expands or collapses the selected group. Collapsing a leaf
// moves the cursor to its parent.
func (t *TreePane) SetExpanded(expanded bool) {
	r, ok := t.Selected()
	if !ok {
		return
	}
	if r.IsGroup() && t.collapsed[r.Item] == expanded {
		t.collapsed[r.Item] = !expanded
		return
	}
	if expanded || r.Depth == 0 {
		return
	}
	vis := t.Visible()
	for i := t.cursor - 1; i >= 0; i-- {
		if vis[i].Depth < r.Depth {
			t.cursor = i
			return
		}
	}
}

// View renders at most height rows, each exactly width cells wide, keeping
// the cursor in view.
func (t *TreePane) View(width, height int) string {
	vis := t.Visible()
	if len(vis) == 0 {
		return treeEmptyStyle.Width(width).Render("(empty)")
	}
	if height < 1 {
		height = 1
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+height {
		t.offset = t.cursor - height + 1
	}
	end := min(t.offset+height, len(vis))

	line := lipgloss.NewStyle().Width(width).MaxWidth(width)
	lines := make([]string, 0, end-t.offset)
	for i := t.offset; i < end; i++ {
		r := vis[i]
		marker := "  "
		if r.IsGroup() {
			marker = "▾ "
			if t.collapsed[r.Item] {
				marker = "▸ "
			}
		}
		text := strings.Repeat("  ", r.Depth) + marker + r.Name
		style := line
		if r.IsGroup() {
			style = style.Inherit(treeGroupStyle)
		}
		if i == t.cursor {
			style = style.Inherit(treeCursorStyle)
		}
		lines = append(lines, style.Render(text))
	}
	return strings.Join(lines, "\n")
}
