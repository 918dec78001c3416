// Package adapters holds the registry of file adapter classes and the logic
// that picks the adapter able to open a given file.
package adapters

import (
	"fmt"
	"iter"
	"strings"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// AllFilesFilter is the first entry of every file-dialog filter.
const AllFilesFilter = "All files (*.*)"

// FilterSeparator joins the entries of a file-dialog filter.
const FilterSeparator = ";;"

// ProbePolicy selects how Resolve probes candidate adapters.
type ProbePolicy string

const (
	// ProbeOpen asks every class's CanOpenFile in registration order.
	ProbeOpen ProbePolicy = "open"
	// ProbeSniffFirst skips classes whose extensions do not match the file
	// name before asking CanOpenFile. Classes without extensions are always
	// asked.
	ProbeSniffFirst ProbePolicy = "sniff-first"
)

// Registry is an ordered, duplicate-free list of adapter classes. It is
// filled while plugins load and only read afterwards, so it carries no lock.
type Registry struct {
	classes []*viewersdk.AdapterClass
	probe   ProbePolicy
}

// NewRegistry creates an empty registry using ProbeOpen.
func NewRegistry() *Registry {
	return &Registry{probe: ProbeOpen}
}

// SetProbePolicy changes how Resolve probes candidates.
func (r *Registry) SetProbePolicy(p ProbePolicy) error {
	switch p {
	case ProbeOpen, ProbeSniffFirst:
		r.probe = p
		return nil
	default:
		return fmt.Errorf("unknown probe policy %q", p)
	}
}

// Register validates c and appends it unless the same descriptor is already
// registered. A rejected class leaves the registry unchanged.
func (r *Registry) Register(c *viewersdk.AdapterClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, existing := range r.classes {
		if existing == c {
			return nil
		}
	}
	r.classes = append(r.classes, c)
	return nil
}

// List yields the registered classes in registration order. The sequence
// can be ranged over any number of times.
func (r *Registry) List() iter.Seq[*viewersdk.AdapterClass] {
	return func(yield func(*viewersdk.AdapterClass) bool) {
		for _, c := range r.classes {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of registered classes.
func (r *Registry) Len() int { return len(r.classes) }

// Resolve returns the first class, in registration order, whose CanOpenFile
// accepts fileName. Each predicate runs at most once and probing stops at
// the first match. The boolean is false when nothing matches.
func (r *Registry) Resolve(fileName string) (*viewersdk.AdapterClass, bool) {
	for _, c := range r.classes {
		if r.probe == ProbeSniffFirst && len(c.Extensions) > 0 && !c.MatchesExtension(fileName) {
			continue
		}
		if probe(c, fileName) {
			return c, true
		}
	}
	return nil, false
}

// probe runs the class predicate, treating a panic as "cannot open".
func probe(c *viewersdk.AdapterClass, fileName string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.CanOpenFile(fileName)
}

// FileDialogFilter builds the combined file-type filter for a file picker:
// "All files (*.*)" followed by every class's FileFilter, joined by ";;".
func (r *Registry) FileDialogFilter() string {
	parts := make([]string, 0, len(r.classes)+1)
	parts = append(parts, AllFilesFilter)
	for c := range r.List() {
		parts = append(parts, c.FileFilter())
	}
	return strings.Join(parts, FilterSeparator)
}
