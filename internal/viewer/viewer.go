// Package viewer ties the registries together: it opens a file with the
// first adapter that accepts it, exposes the adapter's tree, and renders a
// selected item by running it through the chosen parser and the first
// visualizer that accepts the parsed kind.
package viewer

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// AppTitle is the window title when no file is open.
const AppTitle = "Data Viewer"

var (
	// ErrUnsupportedFile means no registered adapter can open the file.
	ErrUnsupportedFile = errors.New("could not open file")
	// ErrOpenFailed means the adapter accepted the file but failed to open it.
	ErrOpenFailed = errors.New("adapter failed to open file")
	// ErrNoParser means no parser is registered.
	ErrNoParser = errors.New("no parser available")
)

// Outcome describes what a render produced.
type Outcome int

const (
	// Rendered means a visualizer drew the item.
	Rendered Outcome = iota
	// NoData means the item is a group or nothing is selected.
	NoData
	// Rejected means the parser refused the payload format.
	Rejected
	// Unparsed means the parser could not interpret the payload.
	Unparsed
	// NoVisualizer means no visualizer accepts the parsed kind.
	NoVisualizer
	// NotDrawn means the visualizer declined the data.
	NotDrawn
)

func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case NoData:
		return "no data"
	case Rejected:
		return "format not supported by parser"
	case Unparsed:
		return "parser could not read data"
	case NoVisualizer:
		return "no visualizer for data"
	case NotDrawn:
		return "visualizer declined data"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Recorder remembers successfully opened files.
type Recorder interface {
	AddRecent(path, adapter string) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithDefaultParser selects the parser named name at construction. An
// unknown name falls back to the positional default.
func WithDefaultParser(name string) Option {
	return func(c *Controller) { c.defaultParser = name }
}

// WithRecorder records every opened file.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// Controller holds the open file and the selected parser. It is not safe
// for concurrent use.
type Controller struct {
	adapters      *adapters.Registry
	plugins       *plugins.Registry
	logger        *log.Logger
	recorder      Recorder
	defaultParser string

	adapter     viewersdk.Adapter
	class       *viewersdk.AdapterClass
	parserIndex int
	parser      viewersdk.Parser
	current     *viewersdk.DataItem
}

// New creates a controller over fully loaded registries. The initial parser
// is the configured default, else the second registered parser, else the
// first.
func New(a *adapters.Registry, p *plugins.Registry, opts ...Option) *Controller {
	c := &Controller{adapters: a, plugins: p, parserIndex: -1}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	idx := c.initialParser()
	if idx >= 0 {
		if err := c.SelectParser(idx); err != nil {
			c.logger.Warn("select default parser", "index", idx, "err", err)
		}
	}
	return c
}

func (c *Controller) initialParser() int {
	if c.defaultParser != "" {
		if i, ok := c.plugins.ParserIndex(c.defaultParser); ok {
			return i
		}
		c.logger.Warn("default parser not registered", "parser", c.defaultParser)
	}
	switch n := c.plugins.ParserCount(); {
	case n > 1:
		return 1
	case n == 1:
		return 0
	default:
		return -1
	}
}

// FileDialogFilter returns the filter string for the open prompt.
func (c *Controller) FileDialogFilter() string {
	return c.adapters.FileDialogFilter()
}

// OpenFile closes the current file, then opens fileName with the first
// adapter that accepts it.
func (c *Controller) OpenFile(fileName string) error {
	c.CloseFile()

	cls, ok := c.adapters.Resolve(fileName)
	if !ok {
		c.logger.Warn("no adapter for file", "file", fileName)
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
	}
	a := cls.New()
	if !openAdapter(a, fileName) {
		c.logger.Warn("adapter failed to open file", "adapter", cls.Name, "file", fileName)
		return fmt.Errorf("%w: %s with %s", ErrOpenFailed, fileName, cls.Name)
	}
	c.adapter, c.class = a, cls
	c.logger.Info("file opened", "file", fileName, "adapter", cls.Name)

	if c.recorder != nil {
		if err := c.recorder.AddRecent(fileName, cls.Name); err != nil {
			c.logger.Warn("record recent file", "file", fileName, "err", err)
		}
	}
	return nil
}

// openAdapter opens fileName with a, treating a panic as a failed open.
func openAdapter(a viewersdk.Adapter, fileName string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return a.OpenFile(fileName)
}

// CloseFile closes the open file, if any.
func (c *Controller) CloseFile() {
	if c.adapter != nil && c.adapter.IsFileOpened() {
		c.adapter.CloseFile()
	}
	c.adapter, c.class, c.current = nil, nil, nil
}

// IsOpen reports whether a file is open.
func (c *Controller) IsOpen() bool {
	return c.adapter != nil && c.adapter.IsFileOpened()
}

// FileName returns the open file's name, or "".
func (c *Controller) FileName() string {
	if !c.IsOpen() {
		return ""
	}
	return c.adapter.FileName()
}

// AdapterName returns the name of the adapter holding the open file.
func (c *Controller) AdapterName() string {
	if c.class == nil {
		return ""
	}
	return c.class.Name
}

// Title is the window title.
func (c *Controller) Title() string {
	if name := c.FileName(); name != "" {
		return name + " - " + AppTitle
	}
	return AppTitle
}

// Items returns a fresh tree for the open file.
func (c *Controller) Items() []*viewersdk.DataItem {
	if !c.IsOpen() {
		return nil
	}
	return c.adapter.TreeItems()
}

// ParserNames lists parser names in registry order.
func (c *Controller) ParserNames() []string {
	names := make([]string, 0, c.plugins.ParserCount())
	for p := range c.plugins.Parsers() {
		names = append(names, p.Name)
	}
	return names
}

// ParserIndex returns the selected parser's position, or -1.
func (c *Controller) ParserIndex() int { return c.parserIndex }

// ParserName returns the selected parser's name, or "".
func (c *Controller) ParserName() string {
	cls, err := c.plugins.ParserAt(c.parserIndex)
	if err != nil {
		return ""
	}
	return cls.Name
}

// SelectParser creates a fresh instance of the parser at index i. The
// previous instance and its settings are discarded.
func (c *Controller) SelectParser(i int) error {
	cls, err := c.plugins.ParserAt(i)
	if err != nil {
		return err
	}
	c.parser = cls.New()
	c.parserIndex = i
	c.logger.Debug("parser selected", "parser", cls.Name, "index", i)
	return nil
}

// SelectParserByName selects the parser registered under name.
func (c *Controller) SelectParserByName(name string) error {
	i, ok := c.plugins.ParserIndex(name)
	if !ok {
		return fmt.Errorf("parser %q: %w", name, ErrNoParser)
	}
	return c.SelectParser(i)
}

// ParserSettings lets the selected parser add its options to panel. It
// reports whether there were any.
func (c *Controller) ParserSettings(panel viewersdk.SettingsPanel) bool {
	if c.parser == nil {
		return false
	}
	return c.parser.ShowSettings(panel)
}

// Current returns the item last passed to Show.
func (c *Controller) Current() *viewersdk.DataItem { return c.current }

// Show makes item current and renders it onto surface.
func (c *Controller) Show(item *viewersdk.DataItem, surface viewersdk.Surface) Outcome {
	c.current = item
	return c.Render(surface)
}

// Render draws the current item. Whenever nothing can be drawn the surface
// is cleared.
func (c *Controller) Render(surface viewersdk.Surface) Outcome {
	out := c.render(surface)
	if out != Rendered {
		surface.SetContent("")
	}
	return out
}

func (c *Controller) render(surface viewersdk.Surface) Outcome {
	if c.current == nil || c.current.Data == nil || c.parser == nil {
		return NoData
	}
	shape, size, dtype := viewersdk.Describe(c.current.Data)
	if !c.parser.ValidateInputFormat(shape, size, dtype) {
		return Rejected
	}
	pd := c.parser.Parse(c.current.Data)
	if pd == nil {
		return Unparsed
	}
	cls, ok := c.plugins.ResolveVisualizer(pd.Kind())
	if !ok {
		c.logger.Debug("no visualizer", "kind", pd.Kind())
		return NoVisualizer
	}
	if !cls.New().VisualizeData(pd, surface) {
		return NotDrawn
	}
	return Rendered
}
