// Package array provides the Array parser and visualizer. The parser
// normalises numeric and string payloads into a squeezed Tensor; the
// visualizer draws rank 0 to 2 tensors as a table, vectors as one column.
package array

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// MaxRows caps the rows drawn for one table.
const MaxRows = 1000

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Faint(true)
)

// ParserClass is the Array parser descriptor.
var ParserClass = &viewersdk.ParserClass{
	Name: "Array",
	New:  func() viewersdk.Parser { return &Parser{} },
}

// VisualizerClass is the Array visualizer descriptor.
var VisualizerClass = &viewersdk.VisualizerClass{
	Name:    "Array",
	Accepts: viewersdk.AcceptsKinds(viewersdk.KindArray),
	New:     func() viewersdk.Visualizer { return &Visualizer{} },
}

// RegisterSelf registers the Array parser and visualizer.
func RegisterSelf(r viewersdk.Registrar) error {
	if err := r.RegisterParser(ParserClass); err != nil {
		return err
	}
	return r.RegisterVisualizer(VisualizerClass)
}

// Parser turns payloads into tensors.
type Parser struct{}

var _ viewersdk.Parser = (*Parser)(nil)

// ValidateInputFormat rejects payloads without elements.
func (p *Parser) ValidateInputFormat(_ []int, size int, dtype string) bool {
	return size > 0 && dtype != ""
}

// Parse returns a squeezed Tensor, or nil when data has no array form.
func (p *Parser) Parse(data any) viewersdk.ParsedData {
	t := ToTensor(data)
	if t == nil {
		return nil
	}
	return viewersdk.NewValue(viewersdk.KindArray, Squeeze(t))
}

func (p *Parser) ShowSettings(viewersdk.SettingsPanel) bool { return false }

// ToTensor wraps slices and scalars as tensors. It returns nil for nil and
// unsupported values.
func ToTensor(data any) *viewersdk.Tensor {
	switch v := data.(type) {
	case *viewersdk.Tensor:
		return v
	case []int64:
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "int64", Values: v}
	case []float64:
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "float64", Values: v}
	case []float32:
		f := make([]float64, len(v))
		for i, x := range v {
			f[i] = float64(x)
		}
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "float32", Values: f}
	case []byte:
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "uint8", Values: v}
	case []string:
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "string", Values: v}
	case [][]byte:
		s := make([]string, len(v))
		for i, b := range v {
			s[i] = fmt.Sprintf("%q", b)
		}
		return &viewersdk.Tensor{Shape: []int{len(v)}, DType: "bytes", Values: s}
	case int64:
		return &viewersdk.Tensor{Shape: []int{}, DType: "int64", Values: []int64{v}}
	case int:
		return &viewersdk.Tensor{Shape: []int{}, DType: "int64", Values: []int64{int64(v)}}
	case float64:
		return &viewersdk.Tensor{Shape: []int{}, DType: "float64", Values: []float64{v}}
	case float32:
		return &viewersdk.Tensor{Shape: []int{}, DType: "float32", Values: []float64{float64(v)}}
	case string:
		return &viewersdk.Tensor{Shape: []int{}, DType: "string", Values: []string{v}}
	}
	return nil
}

// Squeeze drops dimensions of size one.
func Squeeze(t *viewersdk.Tensor) *viewersdk.Tensor {
	shape := make([]int, 0, len(t.Shape))
	for _, d := range t.Shape {
		if d != 1 {
			shape = append(shape, d)
		}
	}
	return &viewersdk.Tensor{Shape: shape, DType: t.DType, Values: t.Values}
}

// Visualizer draws tensors of rank two or less.
type Visualizer struct{}

var _ viewersdk.Visualizer = (*Visualizer)(nil)

// VisualizeData reports false for anything but a rank 0 to 2 Tensor.
func (v *Visualizer) VisualizeData(data viewersdk.ParsedData, surface viewersdk.Surface) bool {
	t, ok := data.Data().(*viewersdk.Tensor)
	if !ok {
		return false
	}
	rows, cols, ok := matrixShape(t.Shape)
	if !ok {
		return false
	}
	cells, ok := formatValues(t.Values, rows*cols)
	if !ok {
		return false
	}
	surface.SetContent(Render(cells, rows, cols))
	return true
}

// matrixShape maps a shape of rank two or less to rows and columns.
func matrixShape(shape []int) (rows, cols int, ok bool) {
	switch len(shape) {
	case 0:
		return 1, 1, true
	case 1:
		return shape[0], 1, true
	case 2:
		return shape[0], shape[1], true
	}
	return 0, 0, false
}

func formatValues(values any, n int) ([]string, bool) {
	out := make([]string, 0, n)
	switch v := values.(type) {
	case []int64:
		for _, x := range v {
			out = append(out, strconv.FormatInt(x, 10))
		}
	case []float64:
		for _, x := range v {
			out = append(out, strconv.FormatFloat(x, 'g', -1, 64))
		}
	case []byte:
		for _, x := range v {
			out = append(out, strconv.Itoa(int(x)))
		}
	case []string:
		out = append(out, v...)
	default:
		return nil, false
	}
	return out, len(out) == n
}

// Render draws cells (row-major) as a bordered table with index headers.
func Render(cells []string, rows, cols int) string {
	shown := min(rows, MaxRows)

	headers := make([]string, cols+1)
	for c := range cols {
		headers[c+1] = strconv.Itoa(c)
	}
	data := make([][]string, shown)
	for r := range shown {
		row := make([]string, cols+1)
		row[0] = strconv.Itoa(r)
		copy(row[1:], cells[r*cols:(r+1)*cols])
		data[r] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})

	out := t.Render()
	if shown < rows {
		out += "\n" + noteStyle.Render(fmt.Sprintf("… %d more rows", rows-shown))
	}
	return out
}
