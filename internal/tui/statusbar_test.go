package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusBarRender(t *testing.T) {
	sb := NewStatusBar(80)
	sb.SetAdapter("NumPy")
	sb.SetParser("Array", 0, 4)
	sb.SetMessage("no visualizer for data")

	result := sb.View()
	assert.Contains(t, result, "NumPy")
	assert.Contains(t, result, "Parser: Array 1/4")
	assert.Contains(t, result, "no visualizer for data")
}

func TestStatusBarDefaults(t *testing.T) {
	result := NewStatusBar(80).View()
	assert.Contains(t, result, "no file")
	assert.Contains(t, result, "Parser: no parser")
}

func TestStatusBarClearMessage(t *testing.T) {
	sb := NewStatusBar(80)
	sb.SetMessage("stale")
	sb.SetMessage("")
	assert.NotContains(t, sb.View(), "stale")
}

func TestStatusBarTruncatesToWidth(t *testing.T) {
	sb := NewStatusBar(20)
	sb.SetAdapter("YAML/JSON")
	sb.SetParser("Markdown", 3, 4)
	assert.NotContains(t, sb.View(), "Markdown 4/4")

	sb.SetWidth(0)
	assert.Contains(t, sb.View(), "Markdown 4/4")
}
