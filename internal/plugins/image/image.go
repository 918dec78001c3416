// Package image provides the Image parser and visualizer. The parser
// decodes encoded image bytes (PNG, JPEG, GIF, BMP, TIFF, WebP); the
// visualizer draws the picture with half-block characters, two pixels per
// terminal cell.
package image

import (
	"bytes"
	"fmt"
	goimage "image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background.
const upperHalf = "▀"

// MaxWidth caps the columns drawn for an image shown at native size.
const MaxWidth = 400

// ParserClass is the Image parser descriptor.
var ParserClass = &viewersdk.ParserClass{
	Name: "Image",
	New:  func() viewersdk.Parser { return &Parser{} },
}

// VisualizerClass is the Image visualizer descriptor.
var VisualizerClass = &viewersdk.VisualizerClass{
	Name:    "Image",
	Accepts: viewersdk.AcceptsKinds(viewersdk.KindImage),
	New:     func() viewersdk.Visualizer { return &Visualizer{} },
}

// RegisterSelf registers the Image parser and visualizer.
func RegisterSelf(r viewersdk.Registrar) error {
	if err := r.RegisterParser(ParserClass); err != nil {
		return err
	}
	return r.RegisterVisualizer(VisualizerClass)
}

// Picture is the parsed form of an image payload.
type Picture struct {
	Image goimage.Image
	// Format is the decoder name, e.g. "png".
	Format string
	// Fit scales the picture to the surface.
	Fit bool
}

// Parser decodes image bytes.
type Parser struct {
	Resize bool
}

var _ viewersdk.Parser = (*Parser)(nil)

// ValidateInputFormat accepts byte payloads.
func (p *Parser) ValidateInputFormat(_ []int, _ int, dtype string) bool {
	return dtype == "uint8" || dtype == "bytes"
}

// Parse returns nil unless data decodes as an image.
func (p *Parser) Parse(data any) viewersdk.ParsedData {
	b := imageBytes(data)
	if len(b) == 0 {
		return nil
	}
	img, format, err := goimage.Decode(bytes.NewReader(b))
	if err != nil {
		return nil
	}
	return viewersdk.NewValue(viewersdk.KindImage, &Picture{Image: img, Format: format, Fit: p.Resize})
}

// ShowSettings offers the resize toggle.
func (p *Parser) ShowSettings(panel viewersdk.SettingsPanel) bool {
	panel.AddToggle("Resize image", &p.Resize)
	return true
}

func imageBytes(data any) []byte {
	switch v := data.(type) {
	case []byte:
		return v
	case [][]byte:
		if len(v) == 1 {
			return v[0]
		}
	case *viewersdk.Tensor:
		switch values := v.Values.(type) {
		case []byte:
			return values
		case [][]byte:
			if len(values) == 1 {
				return values[0]
			}
		}
	}
	return nil
}

// Visualizer draws pictures.
type Visualizer struct{}

var _ viewersdk.Visualizer = (*Visualizer)(nil)

func (v *Visualizer) VisualizeData(data viewersdk.ParsedData, surface viewersdk.Surface) bool {
	var pic *Picture
	switch d := data.Data().(type) {
	case *Picture:
		pic = d
	case goimage.Image:
		pic = &Picture{Image: d}
	default:
		return false
	}
	if pic.Image == nil {
		return false
	}

	w, h := surface.Size()
	img := pic.Image
	switch {
	case pic.Fit && w > 0 && h > 0:
		img = Scale(img, w, h*2)
	case img.Bounds().Dx() > MaxWidth:
		img = Scale(img, MaxWidth, img.Bounds().Dy())
	}
	surface.SetContent(Render(img))
	return true
}

// Scale fits img into maxW x maxH pixels, keeping its aspect ratio.
func Scale(img goimage.Image, maxW, maxH int) goimage.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	w, h := maxW, b.Dy()*maxW/b.Dx()
	if h > maxH {
		w, h = b.Dx()*maxH/b.Dy(), maxH
	}
	w, h = max(w, 1), max(h, 1)

	dst := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Render draws img with one cell per horizontal pixel and two vertical
// pixels per cell.
func Render(img goimage.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(img.At(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img.At(x, y+1)))
			}
			sb.WriteString(style.Render(upperHalf))
		}
	}
	return sb.String()
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
