package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrDecode is wrapped by every structural decode failure (truncated buffer,
// overlong varint, bad length prefix).
var ErrDecode = errors.New("wire: malformed message")

const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendTag(b []byte, field int, wireType int) []byte {
	return appendUvarint(b, uint64(field)<<3|uint64(wireType))
}

func appendVarintField(b []byte, field int, v uint64) []byte {
	b = appendTag(b, field, wireVarint)
	return appendUvarint(b, v)
}

func appendBoolField(b []byte, field int, v bool) []byte {
	n := uint64(0)
	if v {
		n = 1
	}
	return appendVarintField(b, field, n)
}

func appendBytesField(b []byte, field int, data []byte) []byte {
	b = appendTag(b, field, wireBytes)
	b = appendUvarint(b, uint64(len(data)))
	return append(b, data...)
}

func appendStringField(b []byte, field int, s string) []byte {
	b = appendTag(b, field, wireBytes)
	b = appendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendDoubleField(b []byte, field int, v float64) []byte {
	b = appendTag(b, field, wireFixed64)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(b, tmp[:]...)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool {
	return r.pos >= len(r.buf)
}

func (r *reader) uvarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		if r.pos >= len(r.buf) {
			return 0, fmt.Errorf("%w: truncated varint", ErrDecode)
		}
		if shift >= 64 {
			return 0, fmt.Errorf("%w: varint overflow", ErrDecode)
		}
		c := r.buf[r.pos]
		r.pos++
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

func (r *reader) tag() (field int, wireType int, err error) {
	v, err := r.uvarint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 3), int(v & 7), nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.buf)-r.pos) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds remaining %d bytes", ErrDecode, n, len(r.buf)-r.pos)
	}
	out := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return out, nil
}

func (r *reader) double() (float64, error) {
	if len(r.buf)-r.pos < 8 {
		return 0, fmt.Errorf("%w: truncated fixed64", ErrDecode)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return math.Float64frombits(v), nil
}

// skip discards one value of the given wire type. Unknown fields in responses
// go through here so that schema additions upstream never break decoding.
func (r *reader) skip(wireType int) error {
	switch wireType {
	case wireVarint:
		_, err := r.uvarint()
		return err
	case wireFixed64:
		if len(r.buf)-r.pos < 8 {
			return fmt.Errorf("%w: truncated fixed64", ErrDecode)
		}
		r.pos += 8
		return nil
	case wireBytes:
		_, err := r.bytes()
		return err
	case wireFixed32:
		if len(r.buf)-r.pos < 4 {
			return fmt.Errorf("%w: truncated fixed32", ErrDecode)
		}
		r.pos += 4
		return nil
	default:
		return fmt.Errorf("%w: unsupported wire type %d", ErrDecode, wireType)
	}
}
