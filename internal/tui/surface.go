package tui

import (
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// viewportSurface lets visualizers draw into the model's viewport.
type viewportSurface struct {
	vp *viewport.Model
}

var _ viewersdk.Surface = viewportSurface{}

func (s viewportSurface) Size() (int, int) { return s.vp.Width, s.vp.Height }

func (s viewportSurface) SetContent(content string) {
	s.vp.SetContent(content)
	s.vp.GotoTop()
}
