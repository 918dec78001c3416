// Package plugins holds the registries of parser and visualizer classes.
// Parsers are picked explicitly by position; visualizers are resolved from
// the kind of the parsed data.
package plugins

import (
	"errors"
	"fmt"
	"iter"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// ErrIndexOutOfRange is returned by ParserAt for a position outside the
// registered parser list.
var ErrIndexOutOfRange = errors.New("parser index out of range")

// Registry keeps the parser and visualizer classes in registration order.
// Like the adapter registry it is written during loading only.
type Registry struct {
	parsers     []*viewersdk.ParserClass
	visualizers []*viewersdk.VisualizerClass
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterParser validates c and appends it unless already registered.
func (r *Registry) RegisterParser(c *viewersdk.ParserClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, existing := range r.parsers {
		if existing == c {
			return nil
		}
	}
	r.parsers = append(r.parsers, c)
	return nil
}

// RegisterVisualizer validates c and appends it unless already registered.
func (r *Registry) RegisterVisualizer(c *viewersdk.VisualizerClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, existing := range r.visualizers {
		if existing == c {
			return nil
		}
	}
	r.visualizers = append(r.visualizers, c)
	return nil
}

// Parsers yields the parser classes in registration order.
func (r *Registry) Parsers() iter.Seq[*viewersdk.ParserClass] {
	return func(yield func(*viewersdk.ParserClass) bool) {
		for _, c := range r.parsers {
			if !yield(c) {
				return
			}
		}
	}
}

// Visualizers yields the visualizer classes in registration order.
func (r *Registry) Visualizers() iter.Seq[*viewersdk.VisualizerClass] {
	return func(yield func(*viewersdk.VisualizerClass) bool) {
		for _, c := range r.visualizers {
			if !yield(c) {
				return
			}
		}
	}
}

// ParserCount returns the number of registered parsers.
func (r *Registry) ParserCount() int { return len(r.parsers) }

// VisualizerCount returns the number of registered visualizers.
func (r *Registry) VisualizerCount() int { return len(r.visualizers) }

// ParserAt returns the parser at position i. The position is the identity
// the parser selector uses for the whole session.
func (r *Registry) ParserAt(i int) (*viewersdk.ParserClass, error) {
	if i < 0 || i >= len(r.parsers) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(r.parsers))
	}
	return r.parsers[i], nil
}

// ParserIndex returns the position of the first parser named name.
func (r *Registry) ParserIndex(name string) (int, bool) {
	for i, c := range r.parsers {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// ResolveVisualizer returns the first visualizer, in registration order,
// that accepts kind. The boolean is false when none does.
func (r *Registry) ResolveVisualizer(kind viewersdk.Kind) (*viewersdk.VisualizerClass, bool) {
	for _, c := range r.visualizers {
		if c.Accepts(kind) {
			return c, true
		}
	}
	return nil, false
}
