// Package archive reads and writes level bundles: a set of named files packed
// into one zstd-compressed container.
//
// A bundle is a 24-byte header followed by a single zstd frame. The
// decompressed payload is a u32 file count and, per file, a u16 name length,
// the name, a u32 data length and the data. All integers are big-endian.
package archive

import (
	"fmt"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Magic bytes identifying a level bundle.
var Magic = [4]byte{0x51, 0x4c, 0x54, 0x42} // "QLTB"

// HeaderSize is the fixed binary size of a bundle header.
const HeaderSize = 24 // 4 + 4 + 8 + 8 bytes

// headerLength is the number of header bytes following HeaderLength itself.
const headerLength = 16

// Header represents the header of a bundle.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // Uncompressed payload size
	CompressedLength uint64
}

// Size returns the binary size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: expected %q, got %q", binio.ErrInvalidMagic, Magic[:], h.Magic[:])
	}
	if h.HeaderLength != headerLength {
		return fmt.Errorf("invalid header length: expected %d, got %d", headerLength, h.HeaderLength)
	}
	if h.Length < 4 {
		return fmt.Errorf("payload of %d bytes cannot hold a file count", h.Length)
	}
	if h.Length > MaxPayload {
		return fmt.Errorf("payload of %d bytes exceeds %d", h.Length, uint64(MaxPayload))
	}
	if h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binio.PutU32(buf, 4, h.HeaderLength)
	binio.PutU32(buf, 8, uint32(h.Length>>32))
	binio.PutU32(buf, 12, uint32(h.Length))
	binio.PutU32(buf, 16, uint32(h.CompressedLength>>32))
	binio.PutU32(buf, 20, uint32(h.CompressedLength))
}

// UnmarshalBinary decodes the header from binary format.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return &binio.RangeError{What: "bundle header", Offset: 0, Size: HeaderSize, Len: len(data)}
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0:4])
	h.HeaderLength = binio.U32(data, 4)
	h.Length = uint64(binio.U32(data, 8))<<32 | uint64(binio.U32(data, 12))
	h.CompressedLength = uint64(binio.U32(data, 16))<<32 | uint64(binio.U32(data, 20))
}

// NewHeader creates a bundle header with the given sizes.
func NewHeader(uncompressedSize, compressedSize uint64) *Header {
	return &Header{
		Magic:            Magic,
		HeaderLength:     headerLength,
		Length:           uncompressedSize,
		CompressedLength: compressedSize,
	}
}
