package tfrecord

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// maxRecordSize bounds a single record so a corrupt length cannot trigger a
// huge allocation.
const maxRecordSize = 1 << 30

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ErrCorruptRecord is returned when a record's framing or checksum is wrong.
var ErrCorruptRecord = errors.New("tfrecord: corrupt record")

// maskedCRC is the masked CRC-32C used by the TFRecord framing.
func maskedCRC(b []byte) uint32 {
	crc := crc32.Checksum(b, castagnoli)
	return ((crc >> 15) | (crc << 17)) + 0xa282ead8
}

// recordReader reads length-delimited records:
//
//	uint64 length (little endian)
//	uint32 masked crc32c of length
//	byte   data[length]
//	uint32 masked crc32c of data
type recordReader struct {
	r   *bufio.Reader
	hdr [12]byte
	n   int
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r)}
}

// Next returns the next record, or io.EOF at a clean end of input.
func (rr *recordReader) Next() ([]byte, error) {
	if _, err := io.ReadFull(rr.r, rr.hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w %d: short header", ErrCorruptRecord, rr.n)
	}
	length := binary.LittleEndian.Uint64(rr.hdr[:8])
	if maskedCRC(rr.hdr[:8]) != binary.LittleEndian.Uint32(rr.hdr[8:]) {
		return nil, fmt.Errorf("%w %d: length checksum mismatch", ErrCorruptRecord, rr.n)
	}
	if length > maxRecordSize {
		return nil, fmt.Errorf("%w %d: length %d too large", ErrCorruptRecord, rr.n, length)
	}

	buf := make([]byte, length+4)
	if _, err := io.ReadFull(rr.r, buf); err != nil {
		return nil, fmt.Errorf("%w %d: short data", ErrCorruptRecord, rr.n)
	}
	data := buf[:length]
	if maskedCRC(data) != binary.LittleEndian.Uint32(buf[length:]) {
		return nil, fmt.Errorf("%w %d: data checksum mismatch", ErrCorruptRecord, rr.n)
	}
	rr.n++
	return data, nil
}
