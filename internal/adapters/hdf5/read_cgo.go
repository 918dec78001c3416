//go:build hdf5

package hdf5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Supported reports whether this build can read HDF5 files.
const Supported = true

// CanOpenFile opens and closes fileName with the HDF5 library.
func CanOpenFile(fileName string) bool {
	if !hasSignature(fileName) {
		return false
	}
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func readTree(fileName string) ([]*viewersdk.DataItem, error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer f.Close()
	return readGroup(&f.CommonFG)
}

// readGroup walks the members of a group in index order.
func readGroup(g *hdf5.CommonFG) ([]*viewersdk.DataItem, error) {
	n, err := g.NumObjects()
	if err != nil {
		return nil, err
	}
	items := make([]*viewersdk.DataItem, 0, n)
	for i := uint(0); i < n; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}
		typ, err := g.ObjectTypeByIndex(i)
		if err != nil {
			return nil, err
		}

		switch typ {
		case hdf5.H5G_GROUP:
			sub, err := g.OpenGroup(name)
			if err != nil {
				return nil, err
			}
			children, err := readGroup(&sub.CommonFG)
			sub.Close()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			items = append(items, viewersdk.NewItem(name, nil).Add(children...))
		case hdf5.H5G_DATASET:
			ds, err := g.OpenDataset(name)
			if err != nil {
				return nil, err
			}
			data, err := readDataset(ds)
			ds.Close()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			items = append(items, viewersdk.NewItem(name, data))
		}
	}
	return items, nil
}

// readDataset loads integer and float datasets into a Tensor. Scalars and
// vectors are returned as plain values. Other classes are shown by name.
func readDataset(ds *hdf5.Dataset) (any, error) {
	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	n := space.SimpleExtentNPoints()

	dt, err := ds.Datatype()
	if err != nil {
		return nil, err
	}
	defer dt.Close()

	var t *viewersdk.Tensor
	switch dt.Class() {
	case hdf5.T_INTEGER:
		values := make([]int64, n)
		if err := ds.Read(&values); err != nil {
			return nil, err
		}
		t = &viewersdk.Tensor{Shape: shape, DType: "int64", Values: values}
	case hdf5.T_FLOAT:
		values := make([]float64, n)
		if err := ds.Read(&values); err != nil {
			return nil, err
		}
		t = &viewersdk.Tensor{Shape: shape, DType: "float64", Values: values}
	default:
		return fmt.Sprintf("<%v dataset %v>", dt.Class(), shape), nil
	}

	switch len(shape) {
	case 0:
		switch v := t.Values.(type) {
		case []int64:
			return v[0], nil
		case []float64:
			return v[0], nil
		}
	case 1:
		return t.Values, nil
	}
	return t, nil
}
