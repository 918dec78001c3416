// Package npy exposes NumPy .npy arrays and .npz archives. A .npy file is a
// single leaf; every member of a .npz archive becomes its own leaf.
package npy

import (
	"archive/zip"
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Class is the NumPy adapter descriptor.
var Class = &viewersdk.AdapterClass{
	Name:        "NumPy",
	Extensions:  []string{"npy", "npz"},
	CanOpenFile: CanOpenFile,
	New:         func() viewersdk.Adapter { return &Adapter{} },
}

// RegisterSelf registers the NumPy adapter.
func RegisterSelf(r viewersdk.Registrar) error {
	return r.RegisterAdapter(Class)
}

// CanOpenFile reports whether fileName is a .npy stream with a readable
// header, or a zip archive holding at least one such member.
func CanOpenFile(fileName string) bool {
	if isZip(fileName) {
		zr, err := zip.OpenReader(fileName)
		if err != nil {
			return false
		}
		defer zr.Close()
		for _, f := range zr.File {
			if !strings.HasSuffix(f.Name, ".npy") {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return false
			}
			_, err = readHeader(rc)
			rc.Close()
			return err == nil
		}
		return false
	}

	f, err := os.Open(fileName)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = readHeader(bufio.NewReader(f))
	return err == nil
}

func isZip(fileName string) bool {
	f, err := os.Open(fileName)
	if err != nil {
		return false
	}
	defer f.Close()
	var sig [4]byte
	if _, err := f.Read(sig[:]); err != nil {
		return false
	}
	return string(sig[:]) == "PK\x03\x04"
}

// array is one named array of an open file.
type array struct {
	name   string
	tensor *viewersdk.Tensor
}

// Adapter is an open .npy or .npz file. Arrays are decoded on open.
type Adapter struct {
	fileName string
	arrays   []array
	opened   bool
}

var _ viewersdk.Adapter = (*Adapter)(nil)

func (a *Adapter) OpenFile(fileName string) bool {
	var (
		arrays []array
		err    error
	)
	if isZip(fileName) {
		arrays, err = readArchive(fileName)
	} else {
		arrays, err = readSingle(fileName)
	}
	if err != nil {
		return false
	}
	a.fileName = fileName
	a.arrays = arrays
	a.opened = true
	return true
}

func (a *Adapter) CloseFile() {
	a.arrays = nil
	a.opened = false
}

func (a *Adapter) FileName() string { return a.fileName }

func (a *Adapter) IsFileOpened() bool { return a.opened }

func (a *Adapter) TreeItems() []*viewersdk.DataItem {
	items := make([]*viewersdk.DataItem, 0, len(a.arrays))
	for _, arr := range a.arrays {
		items = append(items, viewersdk.NewItem(arr.name, leafData(arr.tensor)))
	}
	return items
}

// leafData flattens 0-d and 1-d tensors to plain slices and scalars.
func leafData(t *viewersdk.Tensor) any {
	switch len(t.Shape) {
	case 0:
		switch v := t.Values.(type) {
		case []int64:
			return v[0]
		case []float64:
			return v[0]
		case []byte:
			return int64(v[0])
		case []string:
			return v[0]
		}
	case 1:
		if t.DType == "int64" || t.DType == "float64" || t.DType == "uint8" || t.DType == "string" {
			return t.Values
		}
	}
	return t
}

func readSingle(fileName string) ([]array, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return []array{{name: name, tensor: t}}, nil
}

func readArchive(fileName string) ([]array, error) {
	zr, err := zip.OpenReader(fileName)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out []array
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		t, err := Read(bufio.NewReader(rc))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out = append(out, array{name: strings.TrimSuffix(f.Name, ".npy"), tensor: t})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: archive holds no arrays", fileName)
	}
	return out, nil
}
