// Package starlark runs Starlark scripts (.star) as plugin units. It embeds
// the go.starlark.net interpreter; each unit gets its own thread with a
// fresh global scope and the SDK builtins:
//
//	register_adapter(name, can_open, items, extensions=[])
//	register_parser(name, parse, validate=None)
//	register_visualizer(name, kind, render)
//	parsed(kind, data)
//	read_header(path, n)
//	read_file(path)
//	log(msg)
//
// Executing the script is the unit's RegisterSelf: every register_* call
// made at top level lands in the host registries.
package starlark

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/pkg/viewersdk"

	starlib "go.starlark.net/starlark"
)

// maxReadFileSize caps read_file.
const maxReadFileSize = 256 << 20

// Opener implements loader.Opener for .star files.
type Opener struct {
	logger *log.Logger
}

var _ loader.Opener = (*Opener)(nil)

// NewOpener creates an Opener. A nil logger discards script output.
func NewOpener(logger *log.Logger) *Opener {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Opener{logger: logger}
}

// Open reads the script. Execution is deferred to RegisterSelf.
func (o *Opener) Open(ctx context.Context, path string) (loader.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read starlark unit %q: %w", path, err)
	}
	return &Unit{
		name:   filepath.Base(path),
		path:   path,
		src:    src,
		logger: o.logger,
	}, nil
}

// Unit is one loaded Starlark script.
type Unit struct {
	name   string
	path   string
	src    []byte
	logger *log.Logger
	thread *starlib.Thread
}

var _ loader.Unit = (*Unit)(nil)

// Name implements loader.Unit.
func (u *Unit) Name() string { return u.name }

// RegisterSelf executes the script with the SDK builtins bound to r.
func (u *Unit) RegisterSelf(r viewersdk.Registrar) error {
	u.thread = &starlib.Thread{
		Name: u.name,
		Print: func(_ *starlib.Thread, msg string) {
			u.logger.Info(msg, "unit", u.name)
		},
	}

	predeclared := starlib.StringDict{
		"register_adapter":    starlib.NewBuiltin("register_adapter", u.builtinRegisterAdapter(r)),
		"register_parser":     starlib.NewBuiltin("register_parser", u.builtinRegisterParser(r)),
		"register_visualizer": starlib.NewBuiltin("register_visualizer", u.builtinRegisterVisualizer(r)),
		"parsed":              starlib.NewBuiltin("parsed", builtinParsed),
		"read_header":         starlib.NewBuiltin("read_header", builtinReadHeader),
		"read_file":           starlib.NewBuiltin("read_file", builtinReadFile),
		"log":                 starlib.NewBuiltin("log", u.builtinLog),
	}

	if _, err := starlib.ExecFile(u.thread, u.path, u.src, predeclared); err != nil {
		return fmt.Errorf("execute starlark %q: %w", u.path, err)
	}
	return nil
}

// call invokes a script callable on the unit's thread.
func (u *Unit) call(fn starlib.Callable, args ...starlib.Value) (starlib.Value, error) {
	return starlib.Call(u.thread, fn, starlib.Tuple(args), nil)
}

// builtinRegisterAdapter implements register_adapter(name, can_open, items, extensions=[]).
// Missing callables are left nil so the registry reports the capability
// violation.
func (u *Unit) builtinRegisterAdapter(r viewersdk.Registrar) func(*starlib.Thread, *starlib.Builtin, starlib.Tuple, []starlib.Tuple) (starlib.Value, error) {
	return func(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
		var (
			name    string
			canOpen starlib.Callable
			items   starlib.Callable
			exts    *starlib.List
		)
		if err := starlib.UnpackArgs(fn.Name(), args, kwargs,
			"name", &name,
			"can_open?", &canOpen,
			"items?", &items,
			"extensions?", &exts,
		); err != nil {
			return nil, err
		}

		cls := &viewersdk.AdapterClass{Name: name}
		if exts != nil {
			strs, err := toStrings(exts)
			if err != nil {
				return nil, fmt.Errorf("%s: extensions: %w", fn.Name(), err)
			}
			cls.Extensions = strs
		}
		if canOpen != nil {
			cls.CanOpenFile = func(fileName string) bool {
				v, err := u.call(canOpen, starlib.String(fileName))
				if err != nil {
					u.logger.Debug("can_open failed", "unit", u.name, "file", fileName, "err", err)
					return false
				}
				return bool(v.Truth())
			}
		}
		if items != nil {
			cls.New = func() viewersdk.Adapter {
				return &scriptAdapter{unit: u, items: items}
			}
		}

		if err := r.RegisterAdapter(cls); err != nil {
			return nil, err
		}
		return starlib.None, nil
	}
}

// builtinRegisterParser implements register_parser(name, parse, validate=None).
func (u *Unit) builtinRegisterParser(r viewersdk.Registrar) func(*starlib.Thread, *starlib.Builtin, starlib.Tuple, []starlib.Tuple) (starlib.Value, error) {
	return func(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
		var (
			name     string
			parse    starlib.Callable
			validate starlib.Callable
		)
		if err := starlib.UnpackArgs(fn.Name(), args, kwargs,
			"name", &name,
			"parse?", &parse,
			"validate?", &validate,
		); err != nil {
			return nil, err
		}

		cls := &viewersdk.ParserClass{Name: name}
		if parse != nil {
			cls.New = func() viewersdk.Parser {
				return &scriptParser{unit: u, parse: parse, validate: validate}
			}
		}
		if err := r.RegisterParser(cls); err != nil {
			return nil, err
		}
		return starlib.None, nil
	}
}

// builtinRegisterVisualizer implements register_visualizer(name, kind, render).
// kind is a string or a list of strings.
func (u *Unit) builtinRegisterVisualizer(r viewersdk.Registrar) func(*starlib.Thread, *starlib.Builtin, starlib.Tuple, []starlib.Tuple) (starlib.Value, error) {
	return func(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
		var (
			name   string
			kind   starlib.Value
			render starlib.Callable
		)
		if err := starlib.UnpackArgs(fn.Name(), args, kwargs,
			"name", &name,
			"kind?", &kind,
			"render?", &render,
		); err != nil {
			return nil, err
		}

		cls := &viewersdk.VisualizerClass{Name: name}
		if kind != nil {
			kinds, err := toKinds(kind)
			if err != nil {
				return nil, fmt.Errorf("%s: kind: %w", fn.Name(), err)
			}
			cls.Accepts = viewersdk.AcceptsKinds(kinds...)
		}
		if render != nil {
			cls.New = func() viewersdk.Visualizer {
				return &scriptVisualizer{unit: u, render: render}
			}
		}
		if err := r.RegisterVisualizer(cls); err != nil {
			return nil, err
		}
		return starlib.None, nil
	}
}

// builtinLog implements log(msg).
func (u *Unit) builtinLog(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
	var msg string
	if err := starlib.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &msg); err != nil {
		return nil, err
	}
	u.logger.Info(msg, "unit", u.name)
	return starlib.None, nil
}

// builtinParsed implements parsed(kind, data).
func builtinParsed(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
	var (
		kind string
		data starlib.Value
	)
	if err := starlib.UnpackArgs(fn.Name(), args, kwargs, "kind", &kind, "data", &data); err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, fmt.Errorf("%s: kind must not be empty", fn.Name())
	}
	return &parsedValue{kind: viewersdk.Kind(kind), data: data}, nil
}

// builtinReadHeader implements read_header(path, n): the first n bytes of
// the file, fewer if the file is shorter.
func builtinReadHeader(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
	var (
		path string
		n    int
	)
	if err := starlib.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &path, &n); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d", fn.Name(), n)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlib.Bytes(buf[:read]), nil
}

// builtinReadFile implements read_file(path).
func builtinReadFile(_ *starlib.Thread, fn *starlib.Builtin, args starlib.Tuple, kwargs []starlib.Tuple) (starlib.Value, error) {
	var path string
	if err := starlib.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	if info.Size() > maxReadFileSize {
		return nil, fmt.Errorf("%s: %q exceeds maximum size (%d bytes)", fn.Name(), path, maxReadFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return starlib.Bytes(data), nil
}

// parsedValue is the Starlark value returned by parsed().
type parsedValue struct {
	kind viewersdk.Kind
	data starlib.Value
}

var _ starlib.Value = (*parsedValue)(nil)

func (p *parsedValue) String() string        { return fmt.Sprintf("parsed(%q)", string(p.kind)) }
func (p *parsedValue) Type() string          { return "parsed" }
func (p *parsedValue) Freeze()               { p.data.Freeze() }
func (p *parsedValue) Truth() starlib.Bool   { return starlib.True }
func (p *parsedValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: parsed") }
