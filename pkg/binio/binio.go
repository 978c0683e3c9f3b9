// Package binio provides the big-endian primitives shared by the level asset codecs.
//
// Every field in the game's level formats is big-endian. Records are located by
// absolute offsets read from headers, so all slicing goes through Slice, which
// turns an out-of-range offset into a *RangeError instead of a panic. Once a
// record has been sliced out, the unchecked accessors (U32, F32, ...) are used
// on fixed sub-offsets within it.
package binio

import (
	"encoding/binary"
	"math"
)

// Alignment is the boundary every encoded file is padded to.
const Alignment = 0x20

// Slice returns data[offset:offset+size], or a *RangeError naming what was being read.
func Slice(data []byte, offset, size int, what string) ([]byte, error) {
	if offset < 0 || size < 0 || offset > len(data) || size > len(data)-offset {
		return nil, &RangeError{What: what, Offset: offset, Size: size, Len: len(data)}
	}
	return data[offset : offset+size], nil
}

// ReadU32 reads a big-endian u32 at offset with bounds checking.
func ReadU32(data []byte, offset int, what string) (uint32, error) {
	b, err := Slice(data, offset, 4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadI32 reads a big-endian i32 at offset with bounds checking.
func ReadI32(data []byte, offset int, what string) (int32, error) {
	v, err := ReadU32(data, offset, what)
	return int32(v), err
}

// ReadF32 reads a big-endian f32 at offset with bounds checking.
func ReadF32(data []byte, offset int, what string) (float32, error) {
	v, err := ReadU32(data, offset, what)
	return math.Float32frombits(v), err
}

// ReadI16 reads a big-endian i16 at offset with bounds checking.
func ReadI16(data []byte, offset int, what string) (int16, error) {
	b, err := Slice(data, offset, 2, what)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// U32 reads a big-endian u32 at off. The caller guarantees the range.
func U32(b []byte, off int) uint32 { return binary.BigEndian.Uint32(b[off : off+4]) }

// I32 reads a big-endian i32 at off.
func I32(b []byte, off int) int32 { return int32(U32(b, off)) }

// F32 reads a big-endian f32 at off.
func F32(b []byte, off int) float32 { return math.Float32frombits(U32(b, off)) }

// I16 reads a big-endian i16 at off.
func I16(b []byte, off int) int16 { return int16(binary.BigEndian.Uint16(b[off : off+2])) }

// PutU32 writes v big-endian at off.
func PutU32(b []byte, off int, v uint32) { binary.BigEndian.PutUint32(b[off:off+4], v) }

// PutI32 writes v big-endian at off.
func PutI32(b []byte, off int, v int32) { PutU32(b, off, uint32(v)) }

// PutF32 writes v big-endian at off.
func PutF32(b []byte, off int, v float32) { PutU32(b, off, math.Float32bits(v)) }

// PutI16 writes v big-endian at off.
func PutI16(b []byte, off int, v int16) { binary.BigEndian.PutUint16(b[off:off+2], uint16(v)) }

// Align rounds n up to the next multiple of align.
func Align(n, align int) int {
	if r := n % align; r != 0 {
		return n + align - r
	}
	return n
}

// Pad zero-extends buf to the next multiple of Alignment.
func Pad(buf []byte) []byte {
	n := Align(len(buf), Alignment)
	if n == len(buf) {
		return buf
	}
	return append(buf, make([]byte, n-len(buf))...)
}
