// Package goplugin opens native Go plugins (.so) as plugin units. Each
// plugin must export
//
//	func RegisterSelf(r viewersdk.Registrar) error
//
// The backend uses a SymbolLoader interface for testability: the real loader
// calls plugin.Open() and looks up the entry point, while tests inject mock
// loaders that return plain functions.
package goplugin

import (
	"context"
	"fmt"
	"path/filepath"

	goplugin "plugin"

	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// SymbolLoader resolves the entry point of a compiled plugin.
type SymbolLoader interface {
	// Load opens the plugin at path and returns its RegisterSelf function.
	Load(path string) (viewersdk.RegisterFunc, error)
}

// Option configures an Opener.
type Option func(*Opener)

// WithSymbolLoader replaces the plugin.Open based loader.
func WithSymbolLoader(l SymbolLoader) Option {
	return func(o *Opener) { o.loader = l }
}

// Opener implements loader.Opener for .so files.
type Opener struct {
	loader SymbolLoader
}

var _ loader.Opener = (*Opener)(nil)

// NewOpener creates an Opener. If no SymbolLoader is provided, the system
// loader (using plugin.Open) is used.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{}
	for _, opt := range opts {
		opt(o)
	}
	if o.loader == nil {
		o.loader = systemSymbolLoader{}
	}
	return o
}

// Open implements loader.Opener.
func (o *Opener) Open(ctx context.Context, path string) (loader.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, err := o.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return loader.UnitFunc(filepath.Base(path), fn), nil
}

// systemSymbolLoader uses the real plugin.Open() to load .so files.
type systemSymbolLoader struct{}

// Load opens the plugin at path, looks up the entry point and checks its
// type. A Go plugin can only be opened once per process; opening it again
// returns the same symbols, so its classes stay deduplicated.
func (systemSymbolLoader) Load(path string) (viewersdk.RegisterFunc, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("plugin.Open %q: %w", path, err)
	}

	sym, err := p.Lookup(viewersdk.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("plugin does not export symbol %q: %w", viewersdk.EntryPoint, err)
	}

	return entryPoint(sym)
}

// entryPoint converts a looked-up symbol into a RegisterFunc.
func entryPoint(sym any) (viewersdk.RegisterFunc, error) {
	switch fn := sym.(type) {
	case func(viewersdk.Registrar) error:
		return fn, nil
	case *viewersdk.RegisterFunc:
		if fn == nil || *fn == nil {
			return nil, fmt.Errorf("symbol %s is a nil function variable", viewersdk.EntryPoint)
		}
		return *fn, nil
	default:
		return nil, fmt.Errorf("symbol %s has wrong type %T, expected func(viewersdk.Registrar) error", viewersdk.EntryPoint, sym)
	}
}
