// Package markdown provides the Markdown parser and visualizer. Text
// payloads are rendered with Glamour, wrapped to the surface width.
package markdown

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// defaultWidth is used when the surface reports no width.
const defaultWidth = 80

// ParserClass is the Markdown parser descriptor.
var ParserClass = &viewersdk.ParserClass{
	Name: "Markdown",
	New:  func() viewersdk.Parser { return &Parser{} },
}

// VisualizerClass is the Markdown visualizer descriptor.
var VisualizerClass = &viewersdk.VisualizerClass{
	Name:    "Markdown",
	Accepts: viewersdk.AcceptsKinds(viewersdk.KindMarkdown),
	New:     func() viewersdk.Visualizer { return &Visualizer{} },
}

// RegisterSelf registers the Markdown parser and visualizer.
func RegisterSelf(r viewersdk.Registrar) error {
	if err := r.RegisterParser(ParserClass); err != nil {
		return err
	}
	return r.RegisterVisualizer(VisualizerClass)
}

// Parser accepts UTF-8 text.
type Parser struct{}

var _ viewersdk.Parser = (*Parser)(nil)

func (p *Parser) ValidateInputFormat(_ []int, _ int, dtype string) bool {
	return dtype == "string" || dtype == "uint8"
}

func (p *Parser) Parse(data any) viewersdk.ParsedData {
	switch v := data.(type) {
	case string:
		return viewersdk.NewValue(viewersdk.KindMarkdown, v)
	case []byte:
		if utf8.Valid(v) {
			return viewersdk.NewValue(viewersdk.KindMarkdown, string(v))
		}
	}
	return nil
}

func (p *Parser) ShowSettings(viewersdk.SettingsPanel) bool { return false }

// Renderer wraps Glamour for rendering markdown to styled terminal output.
type Renderer struct {
	renderer *glamour.TermRenderer
}

// NewRenderer creates a Renderer with dark style and the given word wrap
// width. Dark style is used instead of auto-detect because the TUI runs
// inside Bubble Tea which manages the terminal directly.
func NewRenderer(width int) (*Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating glamour renderer: %w", err)
	}
	return &Renderer{renderer: r}, nil
}

// Render processes markdown text into styled terminal output.
func (m *Renderer) Render(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	return m.renderer.Render(md)
}

// Visualizer renders markdown documents.
type Visualizer struct{}

var _ viewersdk.Visualizer = (*Visualizer)(nil)

func (v *Visualizer) VisualizeData(data viewersdk.ParsedData, surface viewersdk.Surface) bool {
	md, ok := data.Data().(string)
	if !ok {
		return false
	}
	width, _ := surface.Size()
	if width <= 0 {
		width = defaultWidth
	}
	r, err := NewRenderer(width)
	if err != nil {
		return false
	}
	out, err := r.Render(md)
	if err != nil {
		return false
	}
	surface.SetContent(out)
	return true
}
