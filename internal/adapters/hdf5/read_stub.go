//go:build !hdf5

package hdf5

import (
	"errors"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Supported reports whether this build can read HDF5 files.
const Supported = false

// ErrNoLibrary is returned when the binary was built without the hdf5 tag.
var ErrNoLibrary = errors.New("hdf5: built without HDF5 support (rebuild with -tags hdf5)")

// CanOpenFile always declines: without the library no file can be opened,
// so resolution falls through to any other adapter for the format.
func CanOpenFile(string) bool {
	return false
}

func readTree(string) ([]*viewersdk.DataItem, error) {
	return nil, ErrNoLibrary
}
