// Package text provides the String parser and visualizer. The parser turns
// raw bytes into text using a selectable encoding; undecodable bytes fall
// back to a quoted representation instead of failing.
package text

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Encoding names offered in the parser settings.
const (
	UTF8  = "utf-8"
	ASCII = "ascii"
	UTF16 = "utf-16"
	UTF32 = "utf-32"
)

// Encodings lists the selectable encodings in display order.
var Encodings = []string{UTF8, ASCII, UTF16, UTF32}

var errUndecodable = errors.New("undecodable input")

// ParserClass is the String parser descriptor.
var ParserClass = &viewersdk.ParserClass{
	Name: "String",
	New:  func() viewersdk.Parser { return NewParser() },
}

// VisualizerClass is the String visualizer descriptor.
var VisualizerClass = &viewersdk.VisualizerClass{
	Name:    "String",
	Accepts: viewersdk.AcceptsKinds(viewersdk.KindString),
	New:     func() viewersdk.Visualizer { return &Visualizer{} },
}

// RegisterSelf registers the String parser and visualizer.
func RegisterSelf(r viewersdk.Registrar) error {
	if err := r.RegisterParser(ParserClass); err != nil {
		return err
	}
	return r.RegisterVisualizer(VisualizerClass)
}

// Parser converts payloads to text.
type Parser struct {
	Encoding string
}

var _ viewersdk.Parser = (*Parser)(nil)

// NewParser returns a parser decoding UTF-8.
func NewParser() *Parser {
	return &Parser{Encoding: UTF8}
}

// ValidateInputFormat accepts any payload; everything has a textual form.
func (p *Parser) ValidateInputFormat([]int, int, string) bool { return true }

// Parse returns the text of data, or nil for items without data.
func (p *Parser) Parse(data any) viewersdk.ParsedData {
	switch v := data.(type) {
	case nil:
		return nil
	case string:
		return viewersdk.NewValue(viewersdk.KindString, v)
	case []byte:
		return viewersdk.NewValue(viewersdk.KindString, p.decodeOrQuote(v))
	case *viewersdk.Tensor:
		if b, ok := v.Values.([][]byte); ok && len(b) == 1 {
			return viewersdk.NewValue(viewersdk.KindString, p.decodeOrQuote(b[0]))
		}
		if s, ok := v.Values.([]string); ok && len(s) == 1 {
			return viewersdk.NewValue(viewersdk.KindString, s[0])
		}
	}
	return viewersdk.NewValue(viewersdk.KindString, fmt.Sprint(data))
}

// ShowSettings offers the encoding choice.
func (p *Parser) ShowSettings(panel viewersdk.SettingsPanel) bool {
	panel.AddChoice("Encoding", Encodings, &p.Encoding)
	return true
}

func (p *Parser) decodeOrQuote(b []byte) string {
	s, err := Decode(b, p.Encoding)
	if err != nil {
		return strconv.QuoteToASCII(string(b))
	}
	return s
}

// Decode converts b to a string using the named encoding. Invalid input is
// an error rather than replacement characters.
func Decode(b []byte, name string) (string, error) {
	switch name {
	case UTF8, "":
		if !utf8.Valid(b) {
			return "", errUndecodable
		}
		return string(b), nil
	case ASCII:
		for _, c := range b {
			if c >= utf8.RuneSelf {
				return "", errUndecodable
			}
		}
		return string(b), nil
	case UTF16:
		if len(b)%2 != 0 {
			return "", errUndecodable
		}
		return decodeStrict(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), b)
	case UTF32:
		if len(b)%4 != 0 {
			return "", errUndecodable
		}
		return decodeStrict(utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), b)
	}
	return "", fmt.Errorf("unknown encoding %q", name)
}

// decodeStrict treats any replacement character in the output as failure.
func decodeStrict(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errUndecodable
	}
	for _, r := range string(out) {
		if r == utf8.RuneError {
			return "", errUndecodable
		}
	}
	return string(out), nil
}

// Visualizer shows text wrapped to the surface width.
type Visualizer struct{}

var _ viewersdk.Visualizer = (*Visualizer)(nil)

func (v *Visualizer) VisualizeData(data viewersdk.ParsedData, surface viewersdk.Surface) bool {
	s, ok := data.Data().(string)
	if !ok {
		return false
	}
	width, _ := surface.Size()
	style := lipgloss.NewStyle()
	if width > 0 {
		style = style.Width(width)
	}
	surface.SetContent(style.Render(s))
	return true
}
