package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// Magic starts every .npy stream.
const Magic = "\x93NUMPY"

// maxArrayBytes bounds the payload of one array.
const maxArrayBytes = 1 << 30

var (
	// ErrNotNPY is returned for streams without the .npy magic.
	ErrNotNPY = errors.New("npy: not a NumPy array file")

	// ErrUnsupportedDType is returned for dtypes the viewer cannot show.
	ErrUnsupportedDType = errors.New("npy: unsupported dtype")

	// ErrTooLarge is returned when a shape exceeds maxArrayBytes.
	ErrTooLarge = errors.New("npy: array too large")

	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// header is the parsed .npy header dictionary.
type header struct {
	order   binary.ByteOrder
	kind    byte // b, i, u, f, U, S
	width   int  // bytes per element
	fortran bool
	shape   []int
}

// dtype is the NumPy name of the element type, e.g. "float32".
func (h *header) dtype() string {
	switch h.kind {
	case 'b':
		return "bool"
	case 'i':
		return "int" + strconv.Itoa(h.width*8)
	case 'u':
		return "uint" + strconv.Itoa(h.width*8)
	case 'f':
		return "float" + strconv.Itoa(h.width*8)
	case 'U', 'S':
		return "string"
	}
	return "object"
}

func (h *header) count() int {
	n := 1
	for _, d := range h.shape {
		n *= d
	}
	return n
}

// readHeader consumes the magic, version and header dictionary.
func readHeader(r io.Reader) (*header, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, ErrNotNPY
	}
	if string(pre[:6]) != Magic {
		return nil, ErrNotNPY
	}

	var hlen int
	switch major := pre[6]; major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("npy: short header: %w", err)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("npy: short header: %w", err)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return nil, fmt.Errorf("npy: unsupported format version %d.%d", major, pre[7])
	}
	if hlen > 1<<20 {
		return nil, fmt.Errorf("npy: header length %d too large", hlen)
	}

	dict := make([]byte, hlen)
	if _, err := io.ReadFull(r, dict); err != nil {
		return nil, fmt.Errorf("npy: short header: %w", err)
	}
	return parseHeader(string(dict))
}

func parseHeader(dict string) (*header, error) {
	m := descrRe.FindStringSubmatch(dict)
	if m == nil {
		return nil, fmt.Errorf("npy: header has no descr: %q", dict)
	}
	h, err := parseDescr(m[1])
	if err != nil {
		return nil, err
	}

	if m := fortranRe.FindStringSubmatch(dict); m != nil {
		h.fortran = m[1] == "True"
	}

	m = shapeRe.FindStringSubmatch(dict)
	if m == nil {
		return nil, fmt.Errorf("npy: header has no shape: %q", dict)
	}
	if h.width > maxArrayBytes {
		return nil, fmt.Errorf("%w: element of %d bytes", ErrTooLarge, h.width)
	}
	h.shape = []int{}
	n, limit := 1, maxArrayBytes/h.width
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(part, "L"))
		if err != nil || d < 0 {
			return nil, fmt.Errorf("npy: bad shape %q", m[1])
		}
		if d > 0 && n > limit/d {
			return nil, fmt.Errorf("%w: shape %s", ErrTooLarge, m[1])
		}
		n *= d
		h.shape = append(h.shape, d)
	}
	return h, nil
}

// parseDescr decodes a dtype string such as "<f8" or "|u1".
func parseDescr(descr string) (*header, error) {
	if len(descr) < 3 {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
	}
	h := &header{kind: descr[1]}
	switch descr[0] {
	case '<', '|', '=':
		h.order = binary.LittleEndian
	case '>':
		h.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
	}

	width, err := strconv.Atoi(descr[2:])
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
	}
	h.width = width

	switch h.kind {
	case 'b':
		if width != 1 {
			return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
		}
	case 'i', 'u':
		if width != 1 && width != 2 && width != 4 && width != 8 {
			return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
		}
	case 'f':
		if width != 4 && width != 8 {
			return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
		}
	case 'U':
		h.width = width * 4
	case 'S':
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, descr)
	}
	return h, nil
}

// Read decodes one .npy stream into a Tensor in row-major order. Integers
// are widened to int64 and floats to float64; DType keeps the stored type.
// A uint8 array keeps its bytes.
func Read(r io.Reader) (*viewersdk.Tensor, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	n := h.count()
	raw := make([]byte, n*h.width)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("npy: short data: %w", err)
	}

	values, err := decode(h, raw, n)
	if err != nil {
		return nil, err
	}
	t := &viewersdk.Tensor{Shape: h.shape, DType: h.dtype(), Values: values}
	if h.fortran && len(h.shape) > 1 {
		t.Values = toRowMajor(values, h.shape)
	}
	return t, nil
}

func decode(h *header, raw []byte, n int) (any, error) {
	switch h.kind {
	case 'b':
		out := make([]int64, n)
		for i := range out {
			if raw[i] != 0 {
				out[i] = 1
			}
		}
		return out, nil
	case 'u':
		if h.width == 1 {
			return raw, nil
		}
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(readUint(h.order, raw[i*h.width:], h.width))
		}
		return out, nil
	case 'i':
		out := make([]int64, n)
		shift := 64 - 8*h.width
		for i := range out {
			u := readUint(h.order, raw[i*h.width:], h.width)
			out[i] = int64(u<<shift) >> shift
		}
		return out, nil
	case 'f':
		out := make([]float64, n)
		for i := range out {
			b := raw[i*h.width:]
			if h.width == 4 {
				out[i] = float64(math.Float32frombits(h.order.Uint32(b)))
			} else {
				out[i] = math.Float64frombits(h.order.Uint64(b))
			}
		}
		return out, nil
	case 'S':
		out := make([]string, n)
		for i := range out {
			out[i] = string(bytes.TrimRight(raw[i*h.width:(i+1)*h.width], "\x00"))
		}
		return out, nil
	case 'U':
		out := make([]string, n)
		for i := range out {
			out[i] = decodeUTF32(h.order, raw[i*h.width:(i+1)*h.width])
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedDType, string(h.kind))
}

func readUint(order binary.ByteOrder, b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	}
	return order.Uint64(b)
}

// decodeUTF32 decodes a fixed-width, NUL-padded UCS-4 field.
func decodeUTF32(order binary.ByteOrder, b []byte) string {
	var sb strings.Builder
	for i := 0; i+4 <= len(b); i += 4 {
		r := rune(order.Uint32(b[i:]))
		if r == 0 {
			break
		}
		if !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// toRowMajor reorders a column-major slice.
func toRowMajor(values any, shape []int) any {
	n := 1
	for _, d := range shape {
		n *= d
	}
	perm := make([]int, n)
	idx := make([]int, len(shape))
	for rowMajor := range n {
		colMajor, stride := 0, 1
		for k := range shape {
			colMajor += idx[k] * stride
			stride *= shape[k]
		}
		perm[rowMajor] = colMajor
		for k := len(shape) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}

	switch v := values.(type) {
	case []int64:
		return permute(v, perm)
	case []float64:
		return permute(v, perm)
	case []byte:
		return permute(v, perm)
	case []string:
		return permute(v, perm)
	}
	return values
}

func permute[T any](src []T, perm []int) []T {
	out := make([]T, len(src))
	for i, p := range perm {
		out[i] = src[p]
	}
	return out
}
