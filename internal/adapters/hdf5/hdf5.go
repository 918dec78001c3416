// Package hdf5 exposes HDF5 files: groups become tree groups and datasets
// become leaves holding their values.
//
// Reading needs the HDF5 C library and is compiled in with the "hdf5" build
// tag (gonum.org/v1/hdf5). Without the tag the adapter stays registered for
// the file filter but declines every file.
package hdf5

import (
	"os"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Signature is the HDF5 superblock signature.
const Signature = "\x89HDF\r\n\x1a\n"

// Class is the HDF5 adapter descriptor.
var Class = &viewersdk.AdapterClass{
	Name:        "HDF5",
	Extensions:  []string{"h5", "hdf", "hdf5"},
	CanOpenFile: CanOpenFile,
	New:         func() viewersdk.Adapter { return &Adapter{} },
}

// RegisterSelf registers the HDF5 adapter.
func RegisterSelf(r viewersdk.Registrar) error {
	return r.RegisterAdapter(Class)
}

// hasSignature looks for the superblock signature at offset 0 and at the
// power-of-two offsets from 512 where a user block may push it.
func hasSignature(fileName string) bool {
	f, err := os.Open(fileName)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, len(Signature))
	for off := int64(0); off < 1<<30; {
		if _, err := f.ReadAt(buf, off); err != nil {
			return false
		}
		if string(buf) == Signature {
			return true
		}
		if off == 0 {
			off = 512
		} else {
			off *= 2
		}
	}
	return false
}

// Adapter is an open HDF5 file. The tree is read eagerly on open and the
// file handle released.
type Adapter struct {
	fileName string
	items    []*viewersdk.DataItem
	opened   bool
}

var _ viewersdk.Adapter = (*Adapter)(nil)

func (a *Adapter) OpenFile(fileName string) bool {
	items, err := readTree(fileName)
	if err != nil {
		return false
	}
	a.fileName = fileName
	a.items = items
	a.opened = true
	return true
}

func (a *Adapter) CloseFile() {
	a.items = nil
	a.opened = false
}

func (a *Adapter) FileName() string { return a.fileName }

func (a *Adapter) IsFileOpened() bool { return a.opened }

// TreeItems returns a copy of the tree read on open.
func (a *Adapter) TreeItems() []*viewersdk.DataItem {
	return cloneItems(a.items)
}

func cloneItems(items []*viewersdk.DataItem) []*viewersdk.DataItem {
	if items == nil {
		return nil
	}
	out := make([]*viewersdk.DataItem, len(items))
	for i, it := range items {
		out[i] = viewersdk.NewItem(it.Name, it.Data).Add(cloneItems(it.Children)...)
	}
	return out
}
