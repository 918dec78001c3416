// Package yamltree exposes YAML and JSON documents as data trees. Mappings
// and sequences become groups, scalars become leaves, and sequences made
// only of numbers collapse into a single numeric leaf.
package yamltree

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// maxDocumentSize bounds the files the adapter will parse.
const maxDocumentSize = 64 << 20

// Class is the YAML/JSON adapter descriptor.
var Class = &viewersdk.AdapterClass{
	Name:        "YAML/JSON",
	Extensions:  []string{"yaml", "yml", "json"},
	CanOpenFile: CanOpenFile,
	New:         func() viewersdk.Adapter { return &Adapter{} },
}

// RegisterSelf registers the YAML/JSON adapter.
func RegisterSelf(r viewersdk.Registrar) error {
	return r.RegisterAdapter(Class)
}

// CanOpenFile reports whether fileName parses as YAML whose first document
// is a mapping or a sequence. Bare scalars are rejected so that plain text
// is not claimed.
func CanOpenFile(fileName string) bool {
	docs, err := readDocuments(fileName)
	if err != nil || len(docs) == 0 {
		return false
	}
	root := docs[0]
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return root.Kind == yaml.MappingNode || root.Kind == yaml.SequenceNode
}

func readDocuments(fileName string) ([]*yaml.Node, error) {
	info, err := os.Stat(fileName)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxDocumentSize {
		return nil, fmt.Errorf("%s: document too large (%d bytes)", fileName, info.Size())
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	var docs []*yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
}

// Adapter is an open YAML or JSON file.
type Adapter struct {
	fileName string
	docs     []*yaml.Node
	opened   bool
}

var _ viewersdk.Adapter = (*Adapter)(nil)

func (a *Adapter) OpenFile(fileName string) bool {
	docs, err := readDocuments(fileName)
	if err != nil {
		return false
	}
	a.fileName = fileName
	a.docs = docs
	a.opened = true
	return true
}

func (a *Adapter) CloseFile() {
	a.docs = nil
	a.opened = false
}

func (a *Adapter) FileName() string { return a.fileName }

func (a *Adapter) IsFileOpened() bool { return a.opened }

// TreeItems lists the top-level entries of a single document directly; a
// multi-document stream gets one "Document #i" group per document.
func (a *Adapter) TreeItems() []*viewersdk.DataItem {
	switch len(a.docs) {
	case 0:
		return nil
	case 1:
		return children(body(a.docs[0]))
	}
	items := make([]*viewersdk.DataItem, 0, len(a.docs))
	for i, doc := range a.docs {
		items = append(items, item(fmt.Sprintf("Document #%d", i), body(doc)))
	}
	return items
}

func body(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// children expands a collection node. Scalars yield a single "value" leaf.
func children(n *yaml.Node) []*viewersdk.DataItem {
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		out := make([]*viewersdk.DataItem, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, item(n.Content[i].Value, n.Content[i+1]))
		}
		return out
	case yaml.SequenceNode:
		out := make([]*viewersdk.DataItem, 0, len(n.Content))
		for i, c := range n.Content {
			out = append(out, item("["+strconv.Itoa(i)+"]", c))
		}
		return out
	}
	return []*viewersdk.DataItem{item("value", n)}
}

func item(name string, n *yaml.Node) *viewersdk.DataItem {
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		return viewersdk.NewItem(name, nil).Add(children(n)...)
	case yaml.SequenceNode:
		if v, ok := numericSequence(n); ok {
			return viewersdk.NewItem(name, v)
		}
		return viewersdk.NewItem(name, nil).Add(children(n)...)
	}
	return viewersdk.NewItem(name, scalar(n))
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// scalar converts a scalar node using its resolved tag.
func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if n.Decode(&b) == nil {
			return b
		}
	case "!!int":
		var i int64
		if n.Decode(&i) == nil {
			return i
		}
	case "!!float":
		var f float64
		if n.Decode(&f) == nil {
			return f
		}
	case "!!binary":
		if b, err := base64.StdEncoding.DecodeString(n.Value); err == nil {
			return b
		}
	}
	return n.Value
}

// numericSequence returns []int64 when every element is an integer and
// []float64 when every element is a number.
func numericSequence(n *yaml.Node) (any, bool) {
	if len(n.Content) == 0 {
		return nil, false
	}
	allInts := true
	floats := make([]float64, len(n.Content))
	ints := make([]int64, len(n.Content))
	for i, c := range n.Content {
		c = deref(c)
		if c.Kind != yaml.ScalarNode {
			return nil, false
		}
		switch v := scalar(c).(type) {
		case int64:
			ints[i] = v
			floats[i] = float64(v)
		case float64:
			allInts = false
			floats[i] = v
		default:
			return nil, false
		}
	}
	if allInts {
		return ints, true
	}
	return floats, true
}
