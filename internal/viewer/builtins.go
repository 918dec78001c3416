package viewer

import (
	"context"

	"github.com/julianshen/dataviewer/internal/adapters/hdf5"
	"github.com/julianshen/dataviewer/internal/adapters/npy"
	"github.com/julianshen/dataviewer/internal/adapters/tfrecord"
	"github.com/julianshen/dataviewer/internal/adapters/yamltree"
	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/internal/plugins/array"
	"github.com/julianshen/dataviewer/internal/plugins/image"
	"github.com/julianshen/dataviewer/internal/plugins/markdown"
	"github.com/julianshen/dataviewer/internal/plugins/text"
)

// Builtins returns the compiled-in units in registration order. The YAML
// adapter goes last since it accepts any parseable text document.
func Builtins() []loader.Unit {
	return []loader.Unit{
		loader.UnitFunc("hdf5", hdf5.RegisterSelf),
		loader.UnitFunc("tfrecord", tfrecord.RegisterSelf),
		loader.UnitFunc("npy", npy.RegisterSelf),
		loader.UnitFunc("yamltree", yamltree.RegisterSelf),
		loader.UnitFunc("array", array.RegisterSelf),
		loader.UnitFunc("image", image.RegisterSelf),
		loader.UnitFunc("text", text.RegisterSelf),
		loader.UnitFunc("markdown", markdown.RegisterSelf),
	}
}

// Sources names the directories scanned for external units.
type Sources struct {
	AdaptersDir     string
	AdaptersPattern string
	PluginsDir      string
	PluginsPattern  string
}

// Load registers builtins, then the adapter units, then the plugin units.
// The returned reports list what each directory scan loaded and skipped.
func Load(ctx context.Context, l *loader.Loader, src Sources, builtins ...loader.Unit) ([]*loader.Report, error) {
	if err := l.LoadBuiltins(builtins...); err != nil {
		return nil, err
	}
	adapterReport, err := l.LoadAdapters(ctx, src.AdaptersDir, src.AdaptersPattern)
	if err != nil {
		return []*loader.Report{adapterReport}, err
	}
	pluginReport, err := l.LoadPlugins(ctx, src.PluginsDir, src.PluginsPattern)
	return []*loader.Report{adapterReport, pluginReport}, err
}
