// Package tfrecord exposes TensorFlow TFRecord files of tf.Example records.
// Every record becomes an "Example #i" group whose children are its
// features; single-element feature lists are unwrapped to scalars.
package tfrecord

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Class is the TFRecord adapter descriptor.
var Class = &viewersdk.AdapterClass{
	Name:        "tfrecord",
	Extensions:  []string{"tfrecord"},
	CanOpenFile: CanOpenFile,
	New:         func() viewersdk.Adapter { return &Adapter{} },
}

// RegisterSelf registers the TFRecord adapter.
func RegisterSelf(r viewersdk.Registrar) error {
	return r.RegisterAdapter(Class)
}

// CanOpenFile reports whether the first record of fileName is a well-framed
// tf.Example.
func CanOpenFile(fileName string) bool {
	f, err := os.Open(fileName)
	if err != nil {
		return false
	}
	defer f.Close()

	rec, err := newRecordReader(f).Next()
	if err != nil {
		return false
	}
	_, err = decodeExample(rec)
	return err == nil
}

// readExamples decodes every record of fileName.
func readExamples(fileName string) ([]*example, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []*example
	rr := newRecordReader(f)
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		ex, err := decodeExample(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, ex)
	}
}

// Adapter is an open TFRecord file. Records are decoded eagerly on open.
type Adapter struct {
	fileName string
	examples []*example
	opened   bool
}

var _ viewersdk.Adapter = (*Adapter)(nil)

func (a *Adapter) OpenFile(fileName string) bool {
	examples, err := readExamples(fileName)
	if err != nil {
		return false
	}
	a.fileName = fileName
	a.examples = examples
	a.opened = true
	return true
}

func (a *Adapter) CloseFile() {
	a.examples = nil
	a.opened = false
}

func (a *Adapter) FileName() string { return a.fileName }

func (a *Adapter) IsFileOpened() bool { return a.opened }

func (a *Adapter) TreeItems() []*viewersdk.DataItem {
	items := make([]*viewersdk.DataItem, 0, len(a.examples))
	for i, ex := range a.examples {
		group := viewersdk.NewItem(fmt.Sprintf("Example #%d", i), nil)
		for _, f := range ex.Features {
			group.Add(viewersdk.NewItem(f.Name, unwrap(f.Value)))
		}
		items = append(items, group)
	}
	return items
}

// unwrap turns a one-element list into its element.
func unwrap(v any) any {
	switch x := v.(type) {
	case [][]byte:
		if len(x) == 1 {
			return x[0]
		}
	case []float32:
		if len(x) == 1 {
			return x[0]
		}
	case []int64:
		if len(x) == 1 {
			return x[0]
		}
	}
	return v
}
