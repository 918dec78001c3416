package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/internal/commands"
)

func newTestRegistry(t *testing.T) *commands.Registry {
	t.Helper()
	r := commands.NewRegistry()
	require.NoError(t, commands.RegisterBuiltins(r, newTestController(t), nil))
	return r
}

func TestCompletionOverlayMatchesCommandNames(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)

	co.Update("/")
	assert.True(t, co.Visible())
	assert.Contains(t, co.Labels(), "/open")
	assert.Contains(t, co.Labels(), "/parser")

	co.Update("/pa")
	assert.Equal(t, []string{"/parser"}, co.Labels())
	assert.Equal(t, 0, co.Selected())
}

func TestCompletionOverlayHiddenWithoutSlash(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)

	co.Update("open")
	assert.False(t, co.Visible())
	assert.Empty(t, co.View())

	co.Update("/zzz")
	assert.False(t, co.Visible())
}

func TestCompletionOverlayTabAddsSpaceForArguments(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)

	co.Update("/op")
	ok, line := co.HandleTab()
	require.True(t, ok)
	assert.Equal(t, "/open ", line)
	assert.False(t, co.Visible())

	co.Update("/qu")
	ok, line = co.HandleTab()
	require.True(t, ok)
	assert.Equal(t, "/quit", line)
}

func TestCompletionOverlayTabWhenHidden(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)
	ok, line := co.HandleTab()
	assert.False(t, ok)
	assert.Empty(t, line)
}

func TestCompletionOverlayArgumentCandidates(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)

	co.Update("/parser ")
	assert.Equal(t, []string{"Array", "Image", "String", "Markdown"}, co.Labels())

	co.Update("/parser st")
	assert.Equal(t, []string{"String"}, co.Labels())
	ok, line := co.HandleTab()
	require.True(t, ok)
	assert.Equal(t, "/parser String", line)
}

func TestCompletionOverlayNavigationWraps(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)
	co.Update("/")
	n := len(co.Labels())
	require.Greater(t, n, 1)

	assert.True(t, co.HandleKey(tea.KeyMsg{Type: tea.KeyUp}))
	assert.Equal(t, n-1, co.Selected())

	assert.True(t, co.HandleKey(tea.KeyMsg{Type: tea.KeyDown}))
	assert.Equal(t, 0, co.Selected())

	assert.False(t, co.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestCompletionOverlayEscapeDismisses(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)
	co.Update("/")

	assert.True(t, co.HandleKey(tea.KeyMsg{Type: tea.KeyEscape}))
	assert.False(t, co.Visible())
	assert.Empty(t, co.View())

	// Same input keeps it dismissed; new input brings it back.
	co.Update("/")
	assert.False(t, co.Visible())
	co.Update("/h")
	assert.True(t, co.Visible())
	assert.Contains(t, co.View(), "/help")
}

func TestCompletionOverlayHandleKeyWhenHidden(t *testing.T) {
	co := NewCompletionOverlay(newTestRegistry(t), 80)
	assert.False(t, co.HandleKey(tea.KeyMsg{Type: tea.KeyDown}))
}
