package starlark

import (
	"fmt"

	"github.com/julianshen/dataviewer/pkg/viewersdk"

	starlib "go.starlark.net/starlark"
)

// toStarlark converts item data into a Starlark value.
func toStarlark(v any) (starlib.Value, error) {
	switch x := v.(type) {
	case nil:
		return starlib.None, nil
	case starlib.Value:
		return x, nil
	case string:
		return starlib.String(x), nil
	case []byte:
		return starlib.Bytes(x), nil
	case bool:
		return starlib.Bool(x), nil
	case int:
		return starlib.MakeInt(x), nil
	case int64:
		return starlib.MakeInt64(x), nil
	case float64:
		return starlib.Float(x), nil
	case float32:
		return starlib.Float(x), nil
	case []int64:
		elems := make([]starlib.Value, len(x))
		for i, n := range x {
			elems[i] = starlib.MakeInt64(n)
		}
		return starlib.NewList(elems), nil
	case []float64:
		elems := make([]starlib.Value, len(x))
		for i, f := range x {
			elems[i] = starlib.Float(f)
		}
		return starlib.NewList(elems), nil
	case []float32:
		elems := make([]starlib.Value, len(x))
		for i, f := range x {
			elems[i] = starlib.Float(f)
		}
		return starlib.NewList(elems), nil
	case []string:
		elems := make([]starlib.Value, len(x))
		for i, s := range x {
			elems[i] = starlib.String(s)
		}
		return starlib.NewList(elems), nil
	case [][]byte:
		elems := make([]starlib.Value, len(x))
		for i, b := range x {
			elems[i] = starlib.Bytes(b)
		}
		return starlib.NewList(elems), nil
	case *viewersdk.Tensor:
		return tensorToStarlark(x)
	default:
		return starlib.String(fmt.Sprint(v)), nil
	}
}

func tensorToStarlark(t *viewersdk.Tensor) (starlib.Value, error) {
	shape := make([]starlib.Value, len(t.Shape))
	for i, d := range t.Shape {
		shape[i] = starlib.MakeInt(d)
	}
	values, err := toStarlark(t.Values)
	if err != nil {
		return nil, err
	}
	d := starlib.NewDict(3)
	if err := d.SetKey(starlib.String("shape"), starlib.NewList(shape)); err != nil {
		return nil, err
	}
	if err := d.SetKey(starlib.String("dtype"), starlib.String(t.DType)); err != nil {
		return nil, err
	}
	if err := d.SetKey(starlib.String("values"), values); err != nil {
		return nil, err
	}
	return d, nil
}

// toGo converts a Starlark value into item data. Lists become typed slices:
// all ints give []int64, ints mixed with floats give []float64, and lists of
// equally long numeric lists give a rank-2 Tensor.
func toGo(v starlib.Value) (any, error) {
	switch x := v.(type) {
	case starlib.NoneType:
		return nil, nil
	case starlib.String:
		return string(x), nil
	case starlib.Bytes:
		return []byte(x), nil
	case starlib.Bool:
		return bool(x), nil
	case starlib.Int:
		n, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", x)
		}
		return n, nil
	case starlib.Float:
		return float64(x), nil
	case *parsedValue:
		return toGo(x.data)
	case *starlib.List, starlib.Tuple:
		elems, _ := elements(v)
		return listToGo(elems)
	default:
		return nil, fmt.Errorf("unsupported starlark value of type %s", v.Type())
	}
}

func listToGo(elems []starlib.Value) (any, error) {
	if len(elems) == 0 {
		return []int64{}, nil
	}

	switch elems[0].(type) {
	case starlib.String:
		out := make([]string, len(elems))
		for i, e := range elems {
			s, ok := e.(starlib.String)
			if !ok {
				return nil, fmt.Errorf("mixed list: element %d is %s, want string", i, e.Type())
			}
			out[i] = string(s)
		}
		return out, nil
	case starlib.Bytes:
		out := make([][]byte, len(elems))
		for i, e := range elems {
			b, ok := e.(starlib.Bytes)
			if !ok {
				return nil, fmt.Errorf("mixed list: element %d is %s, want bytes", i, e.Type())
			}
			out[i] = []byte(b)
		}
		return out, nil
	case *starlib.List, starlib.Tuple:
		return matrixToGo(elems)
	}
	return numbersToGo(elems)
}

func numbersToGo(elems []starlib.Value) (any, error) {
	allInts := true
	for i, e := range elems {
		switch e.(type) {
		case starlib.Int:
		case starlib.Float:
			allInts = false
		default:
			return nil, fmt.Errorf("mixed list: element %d is %s, want number", i, e.Type())
		}
	}

	if allInts {
		out := make([]int64, len(elems))
		for i, e := range elems {
			n, ok := e.(starlib.Int).Int64()
			if !ok {
				return nil, fmt.Errorf("integer %s out of range", e)
			}
			out[i] = n
		}
		return out, nil
	}

	out := make([]float64, len(elems))
	for i, e := range elems {
		f, ok := starlib.AsFloat(e)
		if !ok {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		out[i] = f
	}
	return out, nil
}

func matrixToGo(rows []starlib.Value) (any, error) {
	cols := -1
	var flat []starlib.Value
	for i, r := range rows {
		elems, ok := elements(r)
		if !ok {
			return nil, fmt.Errorf("row %d is %s, want list", i, r.Type())
		}
		if cols >= 0 && len(elems) != cols {
			return nil, fmt.Errorf("ragged matrix: row %d has %d columns, want %d", i, len(elems), cols)
		}
		cols = len(elems)
		flat = append(flat, elems...)
	}

	values, err := numbersToGo(flat)
	if err != nil {
		return nil, err
	}
	t := &viewersdk.Tensor{Shape: []int{len(rows), cols}, Values: values}
	switch values.(type) {
	case []int64:
		t.DType = "int64"
	default:
		t.DType = "float64"
	}
	return t, nil
}

// toItems converts the value returned by an items() callable: a list of
// dicts with "name", optional "data" and optional "children".
func toItems(v starlib.Value) ([]*viewersdk.DataItem, error) {
	if v == nil || v == starlib.None {
		return nil, nil
	}
	elems, ok := elements(v)
	if !ok {
		return nil, fmt.Errorf("items must be a list, got %s", v.Type())
	}
	out := make([]*viewersdk.DataItem, 0, len(elems))
	for i, e := range elems {
		item, err := toItem(e)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func toItem(v starlib.Value) (*viewersdk.DataItem, error) {
	d, ok := v.(*starlib.Dict)
	if !ok {
		return nil, fmt.Errorf("want dict, got %s", v.Type())
	}

	nameVal, found, err := d.Get(starlib.String("name"))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("missing %q", "name")
	}
	name, ok := starlib.AsString(nameVal)
	if !ok {
		return nil, fmt.Errorf("name must be a string, got %s", nameVal.Type())
	}

	var data any
	if dataVal, found, err := d.Get(starlib.String("data")); err != nil {
		return nil, err
	} else if found {
		if data, err = toGo(dataVal); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	item := viewersdk.NewItem(name, data)
	if childVal, found, err := d.Get(starlib.String("children")); err != nil {
		return nil, err
	} else if found {
		children, err := toItems(childVal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		item.Add(children...)
	}
	return item, nil
}

func toStrings(v starlib.Value) ([]string, error) {
	elems, ok := elements(v)
	if !ok {
		return nil, fmt.Errorf("want list of strings, got %s", v.Type())
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		s, ok := starlib.AsString(e)
		if !ok {
			return nil, fmt.Errorf("element %d is %s, want string", i, e.Type())
		}
		out[i] = s
	}
	return out, nil
}

func toKinds(v starlib.Value) ([]viewersdk.Kind, error) {
	if s, ok := starlib.AsString(v); ok {
		return []viewersdk.Kind{viewersdk.Kind(s)}, nil
	}
	strs, err := toStrings(v)
	if err != nil {
		return nil, err
	}
	kinds := make([]viewersdk.Kind, len(strs))
	for i, s := range strs {
		kinds[i] = viewersdk.Kind(s)
	}
	return kinds, nil
}

func elements(v starlib.Value) ([]starlib.Value, bool) {
	switch x := v.(type) {
	case *starlib.List:
		out := make([]starlib.Value, x.Len())
		for i := range out {
			out[i] = x.Index(i)
		}
		return out, true
	case starlib.Tuple:
		return []starlib.Value(x), true
	}
	return nil, false
}
