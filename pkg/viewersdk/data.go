package viewersdk

// Kind is the discriminant that links a parser's output to the visualizers
// able to render it. New plugins may introduce new kinds.
type Kind string

// Kinds produced by the built-in parsers.
const (
	KindString   Kind = "string"
	KindArray    Kind = "array"
	KindImage    Kind = "image"
	KindMarkdown Kind = "markdown"
)

// Kinds lists the kinds produced by the built-in parsers.
func Kinds() []Kind {
	return []Kind{KindString, KindArray, KindImage, KindMarkdown}
}

// ParsedData is the typed output of a parser.
type ParsedData interface {
	// Kind returns the dispatch key used to select a visualizer.
	Kind() Kind

	// Data returns the semantic payload.
	Data() any
}

// Value is a minimal ParsedData for plugins that need no custom type.
type Value struct {
	K Kind
	V any
}

// NewValue wraps v as parsed data of kind k.
func NewValue(k Kind, v any) *Value { return &Value{K: k, V: v} }

// Kind implements ParsedData.
func (v *Value) Kind() Kind { return v.K }

// Data implements ParsedData.
func (v *Value) Data() any { return v.V }

// DataItem is a node of the tree an adapter exposes for a file. Groups carry
// children and no data; leaves carry a raw payload.
type DataItem struct {
	Name     string
	Data     any
	Children []*DataItem
}

// NewItem creates a leaf or group item.
func NewItem(name string, data any) *DataItem {
	return &DataItem{Name: name, Data: data}
}

// Add appends children to the item and returns it.
func (d *DataItem) Add(children ...*DataItem) *DataItem {
	d.Children = append(d.Children, children...)
	return d
}

// Tensor is an n-dimensional raw payload in row-major order. Values holds
// one of []int64, []float64, []uint8, []string or [][]byte.
type Tensor struct {
	Shape  []int
	DType  string
	Values any
}

// Size returns the number of elements described by Shape.
func (t *Tensor) Size() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Describe derives the shape, element count and element type of a raw
// payload, in the form Parser.ValidateInputFormat expects. Scalars have an
// empty shape and a size of one.
func Describe(data any) (shape []int, size int, dtype string) {
	switch v := data.(type) {
	case nil:
		return nil, 0, ""
	case *Tensor:
		return append([]int(nil), v.Shape...), v.Size(), v.DType
	case string:
		return nil, 1, "string"
	case []byte:
		return []int{len(v)}, len(v), "uint8"
	case []int64:
		return []int{len(v)}, len(v), "int64"
	case []float64:
		return []int{len(v)}, len(v), "float64"
	case []float32:
		return []int{len(v)}, len(v), "float32"
	case []string:
		return []int{len(v)}, len(v), "string"
	case [][]byte:
		return []int{len(v)}, len(v), "bytes"
	case int64, int:
		return nil, 1, "int64"
	case float64:
		return nil, 1, "float64"
	case float32:
		return nil, 1, "float32"
	case bool:
		return nil, 1, "bool"
	default:
		return nil, 1, "object"
	}
}
