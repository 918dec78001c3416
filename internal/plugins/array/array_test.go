package array

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

type memSurface struct {
	w, h    int
	content string
}

func (s *memSurface) Size() (int, int)    { return s.w, s.h }
func (s *memSurface) SetContent(c string) { s.content = c }

func TestParse(t *testing.T) {
	p := ParserClass.New()

	tests := []struct {
		name  string
		input any
		shape []int
		dtype string
	}{
		{"int vector", []int64{1, 2, 3}, []int{3}, "int64"},
		{"float32 vector", []float32{0.5}, []int{}, "float32"},
		{"bytes", []byte{1, 2}, []int{2}, "uint8"},
		{"scalar", 7.5, []int{}, "float64"},
		{"squeezed tensor", &viewersdk.Tensor{Shape: []int{1, 3, 1}, DType: "int64", Values: []int64{1, 2, 3}}, []int{3}, "int64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := p.Parse(tt.input)
			require.NotNil(t, pd)
			assert.Equal(t, viewersdk.KindArray, pd.Kind())
			tensor := pd.Data().(*viewersdk.Tensor)
			assert.Equal(t, tt.shape, tensor.Shape)
			assert.Equal(t, tt.dtype, tensor.DType)
		})
	}

	assert.Nil(t, p.Parse(nil))
	assert.Nil(t, p.Parse(struct{}{}))
}

func TestValidateInputFormat(t *testing.T) {
	p := ParserClass.New()
	assert.True(t, p.ValidateInputFormat([]int{3}, 3, "int64"))
	assert.False(t, p.ValidateInputFormat(nil, 0, ""))
	assert.False(t, p.ShowSettings(nil))
}

func TestVisualizeVectorAsColumn(t *testing.T) {
	pd := ParserClass.New().Parse([]int64{10, 20, 30})
	surface := &memSurface{w: 80, h: 24}
	require.True(t, VisualizerClass.New().VisualizeData(pd, surface))

	lines := strings.Split(surface.content, "\n")
	// Border, header, separator, three rows, border.
	assert.Len(t, lines, 7)
	assert.Contains(t, surface.content, "10")
	assert.Contains(t, surface.content, "30")
}

func TestVisualizeMatrix(t *testing.T) {
	pd := viewersdk.NewValue(viewersdk.KindArray, &viewersdk.Tensor{
		Shape: []int{2, 2}, DType: "float64", Values: []float64{1.5, 2, 3, 4.25},
	})
	surface := &memSurface{w: 80, h: 24}
	require.True(t, VisualizerClass.New().VisualizeData(pd, surface))
	assert.Contains(t, surface.content, "1.5")
	assert.Contains(t, surface.content, "4.25")
}

func TestVisualizeRejectsHigherRank(t *testing.T) {
	pd := viewersdk.NewValue(viewersdk.KindArray, &viewersdk.Tensor{
		Shape: []int{2, 2, 2}, DType: "int64", Values: make([]int64, 8),
	})
	surface := &memSurface{}
	assert.False(t, VisualizerClass.New().VisualizeData(pd, surface))
	assert.Empty(t, surface.content)

	assert.False(t, VisualizerClass.New().VisualizeData(viewersdk.NewValue(viewersdk.KindArray, "nope"), surface))
}

func TestRenderTruncatesRows(t *testing.T) {
	cells := make([]string, MaxRows+5)
	for i := range cells {
		cells[i] = "x"
	}
	out := Render(cells, MaxRows+5, 1)
	assert.Contains(t, out, "5 more rows")
}
