package goplugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// mockSymbolLoader returns canned entry points keyed by base name.
type mockSymbolLoader struct {
	fns map[string]viewersdk.RegisterFunc
}

func (m *mockSymbolLoader) Load(path string) (viewersdk.RegisterFunc, error) {
	fn, ok := m.fns[filepath.Base(path)]
	if !ok {
		return nil, errors.New("plugin.Open: invalid ELF header")
	}
	return fn, nil
}

func TestOpenerOpen(t *testing.T) {
	called := false
	o := NewOpener(WithSymbolLoader(&mockSymbolLoader{fns: map[string]viewersdk.RegisterFunc{
		"csv.so": func(viewersdk.Registrar) error { called = true; return nil },
	}}))

	unit, err := o.Open(context.Background(), "/plugins/csv.so")
	require.NoError(t, err)
	assert.Equal(t, "csv.so", unit.Name())
	require.NoError(t, unit.RegisterSelf(nil))
	assert.True(t, called)
}

func TestOpenerOpenError(t *testing.T) {
	o := NewOpener(WithSymbolLoader(&mockSymbolLoader{}))
	_, err := o.Open(context.Background(), "/plugins/broken.so")
	assert.ErrorContains(t, err, "invalid ELF header")
}

func TestOpenerCancelled(t *testing.T) {
	o := NewOpener(WithSymbolLoader(&mockSymbolLoader{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Open(ctx, "/plugins/x.so")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewOpenerDefaultsToSystemLoader(t *testing.T) {
	o := NewOpener()
	_, ok := o.loader.(systemSymbolLoader)
	assert.True(t, ok)
}

func TestSystemLoaderRejectsNonPlugin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.so")
	require.NoError(t, os.WriteFile(path, []byte("not a shared object"), 0o644))

	_, err := systemSymbolLoader{}.Load(path)
	assert.Error(t, err)
}

func TestEntryPoint(t *testing.T) {
	direct := func(viewersdk.Registrar) error { return nil }
	fn, err := entryPoint(direct)
	require.NoError(t, err)
	assert.NotNil(t, fn)

	var variable viewersdk.RegisterFunc = direct
	fn, err = entryPoint(&variable)
	require.NoError(t, err)
	assert.NotNil(t, fn)

	var nilVar viewersdk.RegisterFunc
	_, err = entryPoint(&nilVar)
	assert.ErrorContains(t, err, "nil function variable")

	_, err = entryPoint(func() {})
	assert.ErrorContains(t, err, "wrong type")
}

func TestLoaderWithGoPlugins(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.so", "npy.so"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("elf"), 0o644))
	}

	npy := &viewersdk.AdapterClass{
		Name:        "NumPy",
		Extensions:  []string{"npy"},
		CanOpenFile: func(name string) bool { return filepath.Ext(name) == ".npy" },
		New:         func() viewersdk.Adapter { return nil },
	}
	o := NewOpener(WithSymbolLoader(&mockSymbolLoader{fns: map[string]viewersdk.RegisterFunc{
		"npy.so": func(r viewersdk.Registrar) error { return r.RegisterAdapter(npy) },
	}}))

	a := adapters.NewRegistry()
	l := loader.New(a, plugins.NewRegistry(), loader.WithOpener(".so", o))
	report, err := l.LoadAdapters(context.Background(), dir, "*.so")
	require.NoError(t, err)
	assert.Len(t, report.Loaded, 1)
	assert.Len(t, report.Failed, 1)

	got, ok := a.Resolve("weights.npy")
	require.True(t, ok)
	assert.Same(t, npy, got)
}
