//go:build !hdf5

package hdf5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

func writeSignature(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.h5")
	require.NoError(t, os.WriteFile(path, []byte(Signature), 0o644))
	return path
}

func TestStubDeclinesFiles(t *testing.T) {
	path := writeSignature(t)

	assert.False(t, Supported)
	assert.True(t, hasSignature(path))
	assert.False(t, CanOpenFile(path))

	a := Class.New()
	assert.False(t, a.OpenFile(path))
	assert.False(t, a.IsFileOpened())

	_, err := readTree(path)
	assert.ErrorIs(t, err, ErrNoLibrary)
}

func TestStubDefersToLaterAdapters(t *testing.T) {
	path := writeSignature(t)

	r := adapters.NewRegistry()
	require.NoError(t, r.Register(Class))
	script := &viewersdk.AdapterClass{
		Name:        "Script HDF5",
		Extensions:  []string{"h5"},
		CanOpenFile: func(string) bool { return true },
		New:         func() viewersdk.Adapter { return Class.New() },
	}
	require.NoError(t, r.Register(script))

	cls, ok := r.Resolve(path)
	require.True(t, ok)
	assert.Equal(t, "Script HDF5", cls.Name)
}
