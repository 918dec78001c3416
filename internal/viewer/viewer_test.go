package viewer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

type memSurface struct {
	w, h    int
	content string
}

func (s *memSurface) Size() (int, int)    { return s.w, s.h }
func (s *memSurface) SetContent(c string) { s.content = c }

type choicePanel struct {
	choices map[string]*string
}

func (p *choicePanel) AddChoice(title string, _ []string, value *string) {
	p.choices[title] = value
}

func (p *choicePanel) AddToggle(string, *bool) {}

// memAdapter serves a fixed tree for any file ending in ".mem".
type memAdapter struct {
	name   string
	open   bool
	closed *int
}

func (a *memAdapter) OpenFile(fileName string) bool {
	if strings.HasPrefix(fileName, "broken") {
		return false
	}
	a.name, a.open = fileName, true
	return true
}

func (a *memAdapter) CloseFile() {
	a.open = false
	*a.closed++
}

func (a *memAdapter) FileName() string   { return a.name }
func (a *memAdapter) IsFileOpened() bool { return a.open }

func (a *memAdapter) TreeItems() []*viewersdk.DataItem {
	return []*viewersdk.DataItem{
		viewersdk.NewItem("root", nil).Add(
			viewersdk.NewItem("greeting", []byte("hello")),
			viewersdk.NewItem("numbers", []int64{1, 2, 3}),
		),
		viewersdk.NewItem("utf16", []byte{'h', 0, 'i', 0}),
	}
}

func memClass(closed *int) *viewersdk.AdapterClass {
	return &viewersdk.AdapterClass{
		Name:        "mem",
		Extensions:  []string{"mem"},
		CanOpenFile: func(name string) bool { return strings.HasSuffix(name, ".mem") },
		New:         func() viewersdk.Adapter { return &memAdapter{closed: closed} },
	}
}

type recorder struct {
	paths []string
}

func (r *recorder) AddRecent(path, adapter string) error {
	r.paths = append(r.paths, adapter+":"+path)
	return nil
}

func loadedRegistries(t *testing.T, extra ...*viewersdk.AdapterClass) (*adapters.Registry, *plugins.Registry) {
	t.Helper()
	a, p := adapters.NewRegistry(), plugins.NewRegistry()
	for _, cls := range extra {
		require.NoError(t, a.Register(cls))
	}
	require.NoError(t, loader.New(a, p).LoadBuiltins(Builtins()...))
	return a, p
}

func TestDispatchEndToEnd(t *testing.T) {
	closed := 0
	a, p := loadedRegistries(t, memClass(&closed))
	c := New(a, p)

	require.NoError(t, c.OpenFile("sample.mem"))
	items := c.Items()
	greeting, ok := Find(items, "root/greeting")
	require.True(t, ok)
	numbers, ok := Find(items, "root/numbers")
	require.True(t, ok)

	surface := &memSurface{w: 40, h: 10}
	require.NoError(t, c.SelectParserByName("String"))
	assert.Equal(t, Rendered, c.Show(greeting, surface))
	assert.Contains(t, surface.content, "hello")

	require.NoError(t, c.SelectParserByName("Array"))
	assert.Equal(t, Rendered, c.Show(numbers, surface))
	assert.NotContains(t, surface.content, "hello")
	for _, v := range []string{"1", "2", "3"} {
		assert.Contains(t, surface.content, v)
	}
}

func TestDefaultParser(t *testing.T) {
	a, p := loadedRegistries(t)
	assert.Equal(t, []string{"Array", "Image", "String", "Markdown"}, New(a, p).ParserNames())

	c := New(a, p)
	assert.Equal(t, 1, c.ParserIndex())
	assert.Equal(t, "Image", c.ParserName())

	assert.Equal(t, "String", New(a, p, WithDefaultParser("String")).ParserName())
	assert.Equal(t, "Image", New(a, p, WithDefaultParser("Hex")).ParserName())
}

func TestDefaultParserSmallRegistries(t *testing.T) {
	p := plugins.NewRegistry()
	c := New(adapters.NewRegistry(), p)
	assert.Equal(t, -1, c.ParserIndex())
	assert.Equal(t, "", c.ParserName())

	surface := &memSurface{content: "stale"}
	assert.Equal(t, NoData, c.Show(viewersdk.NewItem("x", "data"), surface))
	assert.Empty(t, surface.content)

	require.NoError(t, p.RegisterParser(&viewersdk.ParserClass{
		Name: "Only",
		New:  func() viewersdk.Parser { return &kindParser{kind: "x"} },
	}))
	assert.Equal(t, 0, New(adapters.NewRegistry(), p).ParserIndex())
}

func TestOpenFileUnsupported(t *testing.T) {
	a, p := loadedRegistries(t)
	c := New(a, p)

	err := c.OpenFile("missing.xyz")
	require.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Equal(t, "could not open file: missing.xyz", err.Error())
	assert.False(t, c.IsOpen())
	assert.Equal(t, AppTitle, c.Title())
	assert.Nil(t, c.Items())
}

func TestOpenFileAdapterFailure(t *testing.T) {
	closed := 0
	a, p := loadedRegistries(t, memClass(&closed))
	rec := &recorder{}
	c := New(a, p, WithRecorder(rec))

	err := c.OpenFile("broken.mem")
	require.ErrorIs(t, err, ErrOpenFailed)
	assert.False(t, errors.Is(err, ErrUnsupportedFile))
	assert.False(t, c.IsOpen())
	assert.Empty(t, rec.paths)
}

type panicAdapter struct{ memAdapter }

func (a *panicAdapter) OpenFile(string) bool { panic("corrupt header") }

func TestOpenFileAdapterPanic(t *testing.T) {
	a, p := loadedRegistries(t, &viewersdk.AdapterClass{
		Name:        "boom",
		Extensions:  []string{"boom"},
		CanOpenFile: func(name string) bool { return strings.HasSuffix(name, ".boom") },
		New:         func() viewersdk.Adapter { return &panicAdapter{} },
	})
	rec := &recorder{}
	c := New(a, p, WithRecorder(rec))

	var err error
	require.NotPanics(t, func() { err = c.OpenFile("data.boom") })
	require.ErrorIs(t, err, ErrOpenFailed)
	assert.False(t, c.IsOpen())
	assert.Equal(t, AppTitle, c.Title())
	assert.Empty(t, rec.paths)
}

func TestOpenClosesPreviousFile(t *testing.T) {
	closed := 0
	a, p := loadedRegistries(t, memClass(&closed))
	rec := &recorder{}
	c := New(a, p, WithRecorder(rec))

	require.NoError(t, c.OpenFile("first.mem"))
	assert.Equal(t, "first.mem - Data Viewer", c.Title())
	assert.Equal(t, "mem", c.AdapterName())

	require.NoError(t, c.OpenFile("second.mem"))
	assert.Equal(t, 1, closed)
	assert.Equal(t, "second.mem - Data Viewer", c.Title())

	require.Error(t, c.OpenFile("nothing.here"))
	assert.Equal(t, 2, closed)
	assert.Equal(t, AppTitle, c.Title())
	assert.Equal(t, []string{"mem:first.mem", "mem:second.mem"}, rec.paths)

	c.CloseFile()
	assert.Equal(t, 2, closed)
}

func TestSelectParserOutOfRange(t *testing.T) {
	a, p := loadedRegistries(t)
	c := New(a, p)
	require.ErrorIs(t, c.SelectParser(p.ParserCount()), plugins.ErrIndexOutOfRange)
	assert.Equal(t, "Image", c.ParserName())
	require.ErrorIs(t, c.SelectParserByName("Hex"), ErrNoParser)
}

func TestParserSettingsRerender(t *testing.T) {
	closed := 0
	a, p := loadedRegistries(t, memClass(&closed))
	c := New(a, p, WithDefaultParser("String"))
	require.NoError(t, c.OpenFile("sample.mem"))

	item, ok := Find(c.Items(), "utf16")
	require.True(t, ok)
	surface := &memSurface{}
	require.Equal(t, Rendered, c.Show(item, surface))
	assert.NotEqual(t, "hi", surface.content)

	panel := &choicePanel{choices: map[string]*string{}}
	require.True(t, c.ParserSettings(panel))
	require.Contains(t, panel.choices, "Encoding")
	*panel.choices["Encoding"] = "utf-16"

	require.Equal(t, Rendered, c.Render(surface))
	assert.Equal(t, "hi", surface.content)
}

// kindParser parses everything into a fixed kind.
type kindParser struct {
	kind   viewersdk.Kind
	reject bool
	empty  bool
}

func (k *kindParser) ValidateInputFormat([]int, int, string) bool { return !k.reject }

func (k *kindParser) Parse(data any) viewersdk.ParsedData {
	if k.empty {
		return nil
	}
	return viewersdk.NewValue(k.kind, data)
}

func (k *kindParser) ShowSettings(viewersdk.SettingsPanel) bool { return false }

func TestRenderMisses(t *testing.T) {
	tests := []struct {
		name   string
		parser *kindParser
		want   Outcome
	}{
		{"rejected format", &kindParser{kind: viewersdk.KindString, reject: true}, Rejected},
		{"unparsed", &kindParser{kind: viewersdk.KindString, empty: true}, Unparsed},
		{"unknown kind", &kindParser{kind: "spectrum"}, NoVisualizer},
		{"visualizer declines", &kindParser{kind: viewersdk.KindArray}, NotDrawn},
		{"rendered", &kindParser{kind: viewersdk.KindString}, Rendered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, p := loadedRegistries(t)
			cls := &viewersdk.ParserClass{Name: "Sample", New: func() viewersdk.Parser { return tt.parser }}
			require.NoError(t, p.RegisterParser(cls))
			c := New(a, p, WithDefaultParser("Sample"))

			surface := &memSurface{content: "stale"}
			got := c.Show(viewersdk.NewItem("leaf", "text"), surface)
			assert.Equal(t, tt.want, got, got.String())
			if tt.want == Rendered {
				assert.Equal(t, "text", surface.content)
			} else {
				assert.Empty(t, surface.content)
			}
		})
	}
}

func TestGroupItemsRenderNothing(t *testing.T) {
	a, p := loadedRegistries(t)
	c := New(a, p)
	surface := &memSurface{content: "stale"}
	assert.Equal(t, NoData, c.Show(viewersdk.NewItem("group", nil), surface))
	assert.Empty(t, surface.content)
	assert.Equal(t, "no data", NoData.String())
}
