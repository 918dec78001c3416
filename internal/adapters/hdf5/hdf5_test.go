package hdf5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

func TestFileFilter(t *testing.T) {
	assert.Equal(t, "HDF5 (*.h5 *.hdf *.hdf5)", Class.FileFilter())
	assert.NoError(t, Class.Validate())
}

func TestHasSignature(t *testing.T) {
	dir := t.TempDir()

	atStart := filepath.Join(dir, "a.h5")
	require.NoError(t, os.WriteFile(atStart, []byte(Signature+"rest of superblock"), 0o644))
	assert.True(t, hasSignature(atStart))

	userBlock := make([]byte, 1024+len(Signature))
	copy(userBlock[1024:], Signature)
	shifted := filepath.Join(dir, "b.h5")
	require.NoError(t, os.WriteFile(shifted, userBlock, 0o644))
	assert.True(t, hasSignature(shifted))

	text := filepath.Join(dir, "c.h5")
	require.NoError(t, os.WriteFile(text, []byte("not hdf5 at all"), 0o644))
	assert.False(t, hasSignature(text))

	assert.False(t, hasSignature(filepath.Join(dir, "missing.h5")))
}

func TestCloneItemsIsDeep(t *testing.T) {
	a := &Adapter{items: []*viewersdk.DataItem{
		viewersdk.NewItem("g", nil).Add(viewersdk.NewItem("x", []int64{1})),
	}, opened: true}

	first := a.TreeItems()
	first[0].Children[0].Name = "changed"
	assert.Equal(t, "x", a.TreeItems()[0].Children[0].Name)

	a.CloseFile()
	assert.False(t, a.IsFileOpened())
	assert.Nil(t, a.TreeItems())
}
