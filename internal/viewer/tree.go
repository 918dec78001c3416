package viewer

import (
	"strings"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// PathSeparator joins item names into a Row path.
const PathSeparator = "/"

// Row is one line of a flattened item tree.
type Row struct {
	Depth int
	Name  string
	// Path is the slash-joined chain of names from the root.
	Path string
	Item *viewersdk.DataItem
}

// IsGroup reports whether the row has children.
func (r Row) IsGroup() bool { return len(r.Item.Children) > 0 }

// Flatten lists items depth-first, parents before children.
func Flatten(items []*viewersdk.DataItem) []Row {
	var rows []Row
	var walk func(items []*viewersdk.DataItem, depth int, prefix string)
	walk = func(items []*viewersdk.DataItem, depth int, prefix string) {
		for _, it := range items {
			if it == nil {
				continue
			}
			path := it.Name
			if prefix != "" {
				path = prefix + PathSeparator + it.Name
			}
			rows = append(rows, Row{Depth: depth, Name: it.Name, Path: path, Item: it})
			walk(it.Children, depth+1, path)
		}
	}
	walk(items, 0, "")
	return rows
}

// Find returns the item at path, walking names separated by PathSeparator.
// A leading separator is ignored.
func Find(items []*viewersdk.DataItem, path string) (*viewersdk.DataItem, bool) {
	path = strings.TrimPrefix(path, PathSeparator)
	if path == "" {
		return nil, false
	}
	for _, r := range Flatten(items) {
		if r.Path == path {
			return r.Item, true
		}
	}
	return nil, false
}
