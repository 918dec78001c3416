package starlark

import (
	"github.com/julianshen/dataviewer/pkg/viewersdk"

	starlib "go.starlark.net/starlark"
)

// scriptAdapter is an adapter instance backed by an items(path) callable.
type scriptAdapter struct {
	unit     *Unit
	items    starlib.Callable
	fileName string
	tree     starlib.Value
}

func (a *scriptAdapter) OpenFile(fileName string) bool {
	v, err := a.unit.call(a.items, starlib.String(fileName))
	if err != nil {
		a.unit.logger.Debug("items failed", "unit", a.unit.name, "file", fileName, "err", err)
		return false
	}
	if _, err := toItems(v); err != nil {
		a.unit.logger.Debug("items returned a malformed tree", "unit", a.unit.name, "file", fileName, "err", err)
		return false
	}
	a.fileName = fileName
	a.tree = v
	return true
}

func (a *scriptAdapter) CloseFile() {
	a.tree = nil
	a.fileName = ""
}

func (a *scriptAdapter) FileName() string { return a.fileName }

// TreeItems converts the cached tree on every call, so callers get their
// own copy.
func (a *scriptAdapter) TreeItems() []*viewersdk.DataItem {
	items, err := toItems(a.tree)
	if err != nil {
		return nil
	}
	return items
}

func (a *scriptAdapter) IsFileOpened() bool { return a.tree != nil }

// scriptParser calls parse(data) and optionally validate(shape, size, dtype).
type scriptParser struct {
	unit     *Unit
	parse    starlib.Callable
	validate starlib.Callable
}

func (p *scriptParser) ValidateInputFormat(shape []int, size int, dtype string) bool {
	if p.validate == nil {
		return true
	}
	dims := make([]starlib.Value, len(shape))
	for i, d := range shape {
		dims[i] = starlib.MakeInt(d)
	}
	v, err := p.unit.call(p.validate, starlib.NewList(dims), starlib.MakeInt(size), starlib.String(dtype))
	if err != nil {
		p.unit.logger.Debug("validate failed", "unit", p.unit.name, "err", err)
		return false
	}
	return bool(v.Truth())
}

// Parse returns nil unless the script returns a parsed() value.
func (p *scriptParser) Parse(data any) viewersdk.ParsedData {
	arg, err := toStarlark(data)
	if err != nil {
		return nil
	}
	v, err := p.unit.call(p.parse, arg)
	if err != nil {
		p.unit.logger.Debug("parse failed", "unit", p.unit.name, "err", err)
		return nil
	}
	pv, ok := v.(*parsedValue)
	if !ok {
		return nil
	}
	out, err := toGo(pv.data)
	if err != nil {
		p.unit.logger.Debug("parse returned unsupported data", "unit", p.unit.name, "err", err)
		return nil
	}
	return viewersdk.NewValue(pv.kind, out)
}

func (p *scriptParser) ShowSettings(viewersdk.SettingsPanel) bool { return false }

// scriptVisualizer calls render(kind, data, width, height) and shows the
// returned string.
type scriptVisualizer struct {
	unit   *Unit
	render starlib.Callable
}

func (v *scriptVisualizer) VisualizeData(data viewersdk.ParsedData, surface viewersdk.Surface) bool {
	arg, err := toStarlark(data.Data())
	if err != nil {
		return false
	}
	w, h := surface.Size()
	out, err := v.unit.call(v.render, starlib.String(string(data.Kind())), arg, starlib.MakeInt(w), starlib.MakeInt(h))
	if err != nil {
		v.unit.logger.Debug("render failed", "unit", v.unit.name, "err", err)
		return false
	}
	s, ok := starlib.AsString(out)
	if !ok {
		return false
	}
	surface.SetContent(s)
	return true
}
