package viewersdk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCapability is matched by every *InvalidCapabilityError.
var ErrInvalidCapability = errors.New("invalid capability")

// ErrNotImplemented is the panic value of the Unimplemented* base types.
var ErrNotImplemented = errors.New("operation has to be defined by the plugin; there is no base definition")

// InvalidCapabilityError reports a descriptor that lacks required
// capabilities and therefore cannot be registered.
type InvalidCapabilityError struct {
	Kind    string
	Name    string
	Missing []string
}

func (e *InvalidCapabilityError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s %q cannot be registered: missing %s", e.Kind, name, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrInvalidCapability) hold.
func (e *InvalidCapabilityError) Is(target error) bool {
	return target == ErrInvalidCapability
}

// UnimplementedAdapter can be embedded by adapters. Every method panics with
// ErrNotImplemented, so a forgotten override fails loudly.
type UnimplementedAdapter struct{}

func (UnimplementedAdapter) OpenFile(string) bool   { panic(ErrNotImplemented) }
func (UnimplementedAdapter) CloseFile()             { panic(ErrNotImplemented) }
func (UnimplementedAdapter) FileName() string       { panic(ErrNotImplemented) }
func (UnimplementedAdapter) TreeItems() []*DataItem { panic(ErrNotImplemented) }
func (UnimplementedAdapter) IsFileOpened() bool     { panic(ErrNotImplemented) }

// UnimplementedParser can be embedded by parsers.
type UnimplementedParser struct{}

func (UnimplementedParser) ValidateInputFormat([]int, int, string) bool { panic(ErrNotImplemented) }
func (UnimplementedParser) Parse(any) ParsedData                     { panic(ErrNotImplemented) }
func (UnimplementedParser) ShowSettings(SettingsPanel) bool          { panic(ErrNotImplemented) }

// UnimplementedVisualizer can be embedded by visualizers.
type UnimplementedVisualizer struct{}

func (UnimplementedVisualizer) VisualizeData(ParsedData, Surface) bool { panic(ErrNotImplemented) }
