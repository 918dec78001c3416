package markdown

import (
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

func TestRenderMarkdown(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)
	result, err := r.Render("Hello **world**")
	require.NoError(t, err)
	assert.Contains(t, result, "world")
}

func TestRenderMarkdownCodeBlock(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)
	result, err := r.Render("```go\nfmt.Println(\"hello\")\n```")
	require.NoError(t, err)
	assert.Contains(t, result, "Println")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)
	result, err := r.Render("")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestParse(t *testing.T) {
	p := ParserClass.New()
	assert.True(t, p.ValidateInputFormat([]int{4}, 4, "uint8"))
	assert.False(t, p.ValidateInputFormat(nil, 1, "int64"))
	assert.False(t, p.ShowSettings(nil))

	pd := p.Parse([]byte("# Title"))
	require.NotNil(t, pd)
	assert.Equal(t, viewersdk.KindMarkdown, pd.Kind())
	assert.Equal(t, "# Title", pd.Data())

	assert.Nil(t, p.Parse([]byte{0xff}))
	assert.Nil(t, p.Parse(int64(1)))
}

func TestVisualizer(t *testing.T) {
	surface := &memSurface{w: 60, h: 20}
	ok := VisualizerClass.New().VisualizeData(viewersdk.NewValue(viewersdk.KindMarkdown, "# Results\n\n- accuracy"), surface)
	require.True(t, ok)
	assert.Contains(t, surface.content, "Results")
	assert.Contains(t, surface.content, "accuracy")

	assert.False(t, VisualizerClass.New().VisualizeData(viewersdk.NewValue(viewersdk.KindMarkdown, 3), surface))
}
