package tfrecord

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the tf.Example messages.
const (
	fieldExampleFeatures = 1 // Example.features
	fieldFeaturesMap     = 1 // Features.feature (map<string, Feature>)
	fieldMapKey          = 1
	fieldMapValue        = 2
	fieldBytesList       = 1 // Feature.bytes_list
	fieldFloatList       = 2 // Feature.float_list
	fieldInt64List       = 3 // Feature.int64_list
	fieldListValue       = 1 // {Bytes,Float,Int64}List.value
)

// feature is one named entry of an Example. Value holds [][]byte, []float32
// or []int64.
type feature struct {
	Name  string
	Value any
}

// example is a decoded tf.Example with features sorted by name.
type example struct {
	Features []feature
}

// decodeExample parses a serialized tf.Example without generated code.
func decodeExample(b []byte) (*example, error) {
	ex := &example{}
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldExampleFeatures || typ != protowire.BytesType {
			return nil
		}
		return forEachField(v, func(num protowire.Number, typ protowire.Type, entry []byte) error {
			if num != fieldFeaturesMap || typ != protowire.BytesType {
				return nil
			}
			f, err := decodeMapEntry(entry)
			if err != nil {
				return err
			}
			ex.Features = append(ex.Features, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(ex.Features, func(a, b feature) int { return strings.Compare(a.Name, b.Name) })
	return ex, nil
}

func decodeMapEntry(b []byte) (feature, error) {
	var f feature
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case fieldMapKey:
			f.Name = string(v)
		case fieldMapValue:
			val, err := decodeFeature(v)
			if err != nil {
				return fmt.Errorf("feature %q: %w", f.Name, err)
			}
			f.Value = val
		}
		return nil
	})
	return f, err
}

// decodeFeature returns the first populated list of a Feature.
func decodeFeature(b []byte) (any, error) {
	var out any
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if out != nil || typ != protowire.BytesType {
			return nil
		}
		var err error
		switch num {
		case fieldBytesList:
			out, err = decodeBytesList(v)
		case fieldFloatList:
			out, err = decodeFloatList(v)
		case fieldInt64List:
			out, err = decodeInt64List(v)
		}
		return err
	})
	return out, err
}

func decodeBytesList(b []byte) ([][]byte, error) {
	values := [][]byte{}
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == fieldListValue && typ == protowire.BytesType {
			values = append(values, v)
		}
		return nil
	})
	return values, err
}

// decodeFloatList accepts both packed and unpacked encodings.
func decodeFloatList(b []byte) ([]float32, error) {
	values := []float32{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldListValue && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			if len(packed)%4 != 0 {
				return nil, fmt.Errorf("packed float list of %d bytes", len(packed))
			}
			for i := 0; i < len(packed); i += 4 {
				values = append(values, math.Float32frombits(binary.LittleEndian.Uint32(packed[i:])))
			}
			b = b[n:]
		case num == fieldListValue && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			values = append(values, math.Float32frombits(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return values, nil
}

// decodeInt64List accepts both packed and unpacked encodings.
func decodeInt64List(b []byte) ([]int64, error) {
	values := []int64{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldListValue && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return nil, protowire.ParseError(m)
				}
				values = append(values, int64(v))
				packed = packed[m:]
			}
			b = b[n:]
		case num == fieldListValue && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			values = append(values, int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return values, nil
}

// forEachField calls fn for every field of a message. Only length-delimited
// payloads are passed through v; other wire types are skipped after fn sees
// their number and type with a nil payload.
func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var v []byte
		if typ == protowire.BytesType {
			v, n = protowire.ConsumeBytes(b)
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
