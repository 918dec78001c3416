package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

func TestFlatten(t *testing.T) {
	items := []*viewersdk.DataItem{
		viewersdk.NewItem("Example #0", nil).Add(
			viewersdk.NewItem("label", int64(3)),
			viewersdk.NewItem("pixels", []byte{1, 2}),
		),
		nil,
		viewersdk.NewItem("meta", "x"),
	}

	rows := Flatten(items)
	require.Len(t, rows, 4)

	var paths []string
	var depths []int
	for _, r := range rows {
		paths = append(paths, r.Path)
		depths = append(depths, r.Depth)
	}
	assert.Equal(t, []string{"Example #0", "Example #0/label", "Example #0/pixels", "meta"}, paths)
	assert.Equal(t, []int{0, 1, 1, 0}, depths)
	assert.True(t, rows[0].IsGroup())
	assert.False(t, rows[1].IsGroup())
	assert.Equal(t, int64(3), rows[1].Item.Data)
}

func TestFind(t *testing.T) {
	items := []*viewersdk.DataItem{
		viewersdk.NewItem("a", nil).Add(viewersdk.NewItem("b", nil).Add(viewersdk.NewItem("c", 1.5))),
	}

	item, ok := Find(items, "/a/b/c")
	require.True(t, ok)
	assert.Equal(t, 1.5, item.Data)

	_, ok = Find(items, "a/c")
	assert.False(t, ok)
	_, ok = Find(items, "")
	assert.False(t, ok)
}

func TestBuiltinsRegisterEveryFormat(t *testing.T) {
	a, p := loadedRegistries(t)
	assert.Equal(t, "All files (*.*);;HDF5 (*.h5 *.hdf *.hdf5);;tfrecord (*.tfrecord);;NumPy (*.npy *.npz);;YAML/JSON (*.yaml *.yml *.json)",
		a.FileDialogFilter())
	assert.Equal(t, 4, p.ParserCount())
	assert.Equal(t, 4, p.VisualizerCount())
}
