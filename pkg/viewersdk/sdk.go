// Package viewersdk provides the public SDK for dataviewer plugin authors.
//
// This is the stable contract that external projects import to build file
// adapters, data parsers and visualizers. A plugin unit exposes a single
// entry point,
//
//	func RegisterSelf(r viewersdk.Registrar) error
//
// which the host calls exactly once when the unit is loaded. Inside it the
// unit registers zero or more class descriptors. Go plugins (.so) export the
// function under the symbol named by EntryPoint; Starlark units get the same
// capabilities through register_adapter, register_parser and
// register_visualizer builtins.
//
// This package is intentionally self-contained and MUST NOT import anything
// from internal/.
package viewersdk

import (
	"path/filepath"
	"strings"
)

// EntryPoint is the exported symbol name every compiled plugin unit must
// provide. Its type must be func(Registrar) error.
const EntryPoint = "RegisterSelf"

// RegisterFunc is the signature of a plugin unit's entry point.
type RegisterFunc func(r Registrar) error

// Registrar receives class descriptors from plugin units. The host validates
// every descriptor and rejects the ones missing a required capability.
type Registrar interface {
	// RegisterAdapter adds a file adapter class.
	RegisterAdapter(c *AdapterClass) error

	// RegisterParser adds a data parser class.
	RegisterParser(c *ParserClass) error

	// RegisterVisualizer adds a visualizer class.
	RegisterVisualizer(c *VisualizerClass) error
}

// Adapter is an open handle on one data file. Instances are created per
// opened file by AdapterClass.New and discarded when the file is closed or
// replaced.
type Adapter interface {
	// OpenFile opens fileName. It reports failure as false rather than an
	// error; I/O problems never escape an adapter.
	OpenFile(fileName string) bool

	// CloseFile releases the open file. Calling it on a closed adapter is a
	// no-op.
	CloseFile()

	// FileName returns the name passed to the last successful OpenFile.
	FileName() string

	// TreeItems builds the navigable tree of the file's contents. A fresh
	// tree is returned on every call; the caller owns it.
	TreeItems() []*DataItem

	// IsFileOpened reports whether a file is currently open.
	IsFileOpened() bool
}

// AdapterClass describes a file format. It is the registered entity: the
// registry stores the descriptor and calls New once per opened file.
// Descriptor identity is pointer identity.
type AdapterClass struct {
	// Name is the human-readable format name, e.g. "HDF5".
	Name string

	// Extensions lists the file extensions without the leading dot,
	// e.g. []string{"h5", "hdf", "hdf5"}.
	Extensions []string

	// CanOpenFile reports whether the format can open fileName. It may open
	// and close the file to find out and must not panic or leak errors.
	CanOpenFile func(fileName string) bool

	// New creates an adapter instance.
	New func() Adapter
}

// FileFilter renders the file-picker descriptor for the class, for example
// "HDF5 (*.h5 *.hdf *.hdf5)". A class without extensions matches "*.*".
func (c *AdapterClass) FileFilter() string {
	if len(c.Extensions) == 0 {
		return c.Name + " (*.*)"
	}
	globs := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		globs[i] = "*." + strings.TrimPrefix(ext, ".")
	}
	return c.Name + " (" + strings.Join(globs, " ") + ")"
}

// MatchesExtension reports whether fileName carries one of the class's
// extensions. Comparison is case-insensitive.
func (c *AdapterClass) MatchesExtension(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return false
	}
	for _, e := range c.Extensions {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

// Validate checks that every required capability is present.
func (c *AdapterClass) Validate() error {
	if c == nil {
		return &InvalidCapabilityError{Kind: "adapter", Missing: []string{"descriptor"}}
	}
	var missing []string
	if c.Name == "" {
		missing = append(missing, "Name")
	}
	if c.CanOpenFile == nil {
		missing = append(missing, "CanOpenFile")
	}
	if c.New == nil {
		missing = append(missing, "New")
	}
	if len(missing) > 0 {
		return &InvalidCapabilityError{Kind: "adapter", Name: c.Name, Missing: missing}
	}
	return nil
}

// Parser interprets a raw leaf payload. A parser instance is created each
// time the user selects it and keeps its settings (such as a text encoding)
// for as long as it stays selected.
type Parser interface {
	// ValidateInputFormat reports whether the parser can handle a payload
	// of the given shape, element count and element type.
	ValidateInputFormat(shape []int, size int, dtype string) bool

	// Parse converts data. It returns nil when data cannot be interpreted.
	Parse(data any) ParsedData

	// ShowSettings adds the parser's options to panel and reports whether
	// it added any.
	ShowSettings(panel SettingsPanel) bool
}

// ParserClass describes a parser. Parsers are never resolved automatically;
// the user picks one by its position in the registry.
type ParserClass struct {
	// Name is the label shown in the parser selector.
	Name string

	// New creates a parser instance.
	New func() Parser
}

// Validate checks that every required capability is present.
func (c *ParserClass) Validate() error {
	if c == nil {
		return &InvalidCapabilityError{Kind: "parser", Missing: []string{"descriptor"}}
	}
	var missing []string
	if c.Name == "" {
		missing = append(missing, "Name")
	}
	if c.New == nil {
		missing = append(missing, "New")
	}
	if len(missing) > 0 {
		return &InvalidCapabilityError{Kind: "parser", Name: c.Name, Missing: missing}
	}
	return nil
}

// Visualizer renders parsed data onto a surface. One instance is created
// per render.
type Visualizer interface {
	// VisualizeData draws data and reports whether anything was drawn.
	VisualizeData(data ParsedData, surface Surface) bool
}

// VisualizerClass describes a visualizer.
type VisualizerClass struct {
	// Name is the human-readable visualizer name.
	Name string

	// Accepts reports whether the visualizer can render data of kind. It is
	// evaluated over the kind alone and must be free of side effects.
	Accepts func(kind Kind) bool

	// New creates a visualizer instance.
	New func() Visualizer
}

// Validate checks that every required capability is present.
func (c *VisualizerClass) Validate() error {
	if c == nil {
		return &InvalidCapabilityError{Kind: "visualizer", Missing: []string{"descriptor"}}
	}
	var missing []string
	if c.Name == "" {
		missing = append(missing, "Name")
	}
	if c.Accepts == nil {
		missing = append(missing, "Accepts")
	}
	if c.New == nil {
		missing = append(missing, "New")
	}
	if len(missing) > 0 {
		return &InvalidCapabilityError{Kind: "visualizer", Name: c.Name, Missing: missing}
	}
	return nil
}

// AcceptsKinds returns an Accepts predicate matching any of kinds.
func AcceptsKinds(kinds ...Kind) func(Kind) bool {
	return func(k Kind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// Surface is the drawing area a visualizer renders into.
type Surface interface {
	// Size returns the drawable width and height in terminal cells.
	Size() (width, height int)

	// SetContent replaces the surface content with rendered text.
	SetContent(content string)
}

// SettingsPanel collects a parser's user-adjustable options. The host
// decides how to present them.
type SettingsPanel interface {
	// AddChoice adds a single-choice option bound to value.
	AddChoice(title string, options []string, value *string)

	// AddToggle adds an on/off option bound to value.
	AddToggle(title string, value *bool)
}
