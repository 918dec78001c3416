// Package loader discovers plugin units and lets each one register its
// classes into the adapter and plugin registries.
//
// A unit is anything exposing RegisterSelf(viewersdk.Registrar) error:
// compiled-in packages, Go plugins (.so) or Starlark scripts (.star). The
// loader scans one directory at a time, non-recursively, keeps the files
// matching a single glob pattern, opens each one with the Opener registered
// for its extension, and calls RegisterSelf exactly once per unit.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Policy decides what happens when one unit fails to load.
type Policy string

const (
	// PolicyIsolate logs the failure and continues with the next unit.
	PolicyIsolate Policy = "isolate"
	// PolicyFailFast stops at the first failing unit and returns its error.
	PolicyFailFast Policy = "fail"
)

// ParsePolicy converts a config value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyIsolate, PolicyFailFast:
		return Policy(s), nil
	case "":
		return PolicyIsolate, nil
	default:
		return "", fmt.Errorf("unknown plugin error policy %q (want %q or %q)", s, PolicyIsolate, PolicyFailFast)
	}
}

// Unit is a loadable plugin unit.
type Unit interface {
	// Name identifies the unit in logs and reports.
	Name() string

	// RegisterSelf registers the unit's classes.
	RegisterSelf(r viewersdk.Registrar) error
}

// Opener turns a file on disk into a Unit.
type Opener interface {
	Open(ctx context.Context, path string) (Unit, error)
}

// funcUnit adapts a RegisterFunc to Unit.
type funcUnit struct {
	name string
	fn   viewersdk.RegisterFunc
}

// UnitFunc wraps fn as a Unit called name.
func UnitFunc(name string, fn viewersdk.RegisterFunc) Unit {
	return &funcUnit{name: name, fn: fn}
}

func (u *funcUnit) Name() string { return u.name }

func (u *funcUnit) RegisterSelf(r viewersdk.Registrar) error {
	if u.fn == nil {
		return fmt.Errorf("unit %q has no %s entry point", u.name, viewersdk.EntryPoint)
	}
	return u.fn(r)
}

// UnitError records why a unit failed to load.
type UnitError struct {
	Path string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("load plugin unit %q: %v", e.Path, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Report summarises one directory load.
type Report struct {
	Dir    string
	Loaded []string
	Failed []*UnitError
}

// Err joins the unit failures, or returns nil when every unit loaded.
func (r *Report) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener handles files with extension ext (".star", ".so") using o.
func WithOpener(ext string, o Opener) Option {
	return func(l *Loader) {
		l.openers[strings.ToLower(ext)] = o
	}
}

// WithPolicy sets the failure policy. The default is PolicyIsolate.
func WithPolicy(p Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Loader populates the registries from plugin units. Loading is strictly
// sequential; every Load call must finish before the registries are read.
type Loader struct {
	adapters *adapters.Registry
	plugins  *plugins.Registry
	openers  map[string]Opener
	policy   Policy
	logger   *log.Logger
}

// New creates a Loader writing into the given registries.
func New(a *adapters.Registry, p *plugins.Registry, opts ...Option) *Loader {
	l := &Loader{
		adapters: a,
		plugins:  p,
		openers:  make(map[string]Opener),
		policy:   PolicyIsolate,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l
}

// LoadBuiltins registers compiled-in units in argument order. They are part
// of the binary, so any failure is returned regardless of policy.
func (l *Loader) LoadBuiltins(units ...Unit) error {
	for _, u := range units {
		if err := l.register(u); err != nil {
			return fmt.Errorf("builtin %s: %w", u.Name(), err)
		}
	}
	return nil
}

// LoadAdapters loads the adapter units of dir matching pattern.
func (l *Loader) LoadAdapters(ctx context.Context, dir, pattern string) (*Report, error) {
	return l.loadDir(ctx, "adapters", dir, pattern)
}

// LoadPlugins loads the parser and visualizer units of dir matching
// pattern. One unit may register both parsers and visualizers.
func (l *Loader) LoadPlugins(ctx context.Context, dir, pattern string) (*Report, error) {
	return l.loadDir(ctx, "plugins", dir, pattern)
}

// loadDir scans dir in directory order. A missing directory yields an empty
// report.
func (l *Loader) loadDir(ctx context.Context, kind, dir, pattern string) (*Report, error) {
	report := &Report{Dir: dir}
	if dir == "" {
		return report, nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return report, fmt.Errorf("bad unit pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("plugin directory missing", "kind", kind, "dir", dir)
			return report, nil
		}
		return report, fmt.Errorf("scan %s dir %q: %w", kind, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := filepath.Join(dir, entry.Name())
		if err := l.loadFile(ctx, path); err != nil {
			ue := &UnitError{Path: path, Err: err}
			if l.policy == PolicyFailFast {
				return report, ue
			}
			l.logger.Warn("skipping plugin unit", "kind", kind, "unit", path, "err", err)
			report.Failed = append(report.Failed, ue)
			continue
		}
		report.Loaded = append(report.Loaded, path)
	}

	l.logger.Info("plugins loaded", "kind", kind, "dir", dir, "loaded", len(report.Loaded), "failed", len(report.Failed))
	return report, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	opener, ok := l.openers[ext]
	if !ok {
		return fmt.Errorf("no opener for %q files", ext)
	}
	unit, err := opener.Open(ctx, path)
	if err != nil {
		return err
	}
	return l.register(unit)
}

// register calls RegisterSelf, turning a panic into an error.
func (l *Loader) register(u Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", viewersdk.EntryPoint, r)
		}
	}()

	rec := &countingRegistrar{adapters: l.adapters, plugins: l.plugins}
	if err := u.RegisterSelf(rec); err != nil {
		return err
	}
	l.logger.Debug("unit registered", "unit", u.Name(),
		"adapters", rec.nAdapters, "parsers", rec.nParsers, "visualizers", rec.nVisualizers)
	return nil
}

// countingRegistrar forwards to the registries and counts what a unit added.
type countingRegistrar struct {
	adapters     *adapters.Registry
	plugins      *plugins.Registry
	nAdapters    int
	nParsers     int
	nVisualizers int
}

var _ viewersdk.Registrar = (*countingRegistrar)(nil)

func (c *countingRegistrar) RegisterAdapter(cls *viewersdk.AdapterClass) error {
	if err := c.adapters.Register(cls); err != nil {
		return err
	}
	c.nAdapters++
	return nil
}

func (c *countingRegistrar) RegisterParser(cls *viewersdk.ParserClass) error {
	if err := c.plugins.RegisterParser(cls); err != nil {
		return err
	}
	c.nParsers++
	return nil
}

func (c *countingRegistrar) RegisterVisualizer(cls *viewersdk.VisualizerClass) error {
	if err := c.plugins.RegisterVisualizer(cls); err != nil {
		return err
	}
	c.nVisualizers++
	return nil
}
