// Package bgst reads and writes BGST tile-background files.
//
// A BGST file is a 0x40-byte header, a table of 16-byte placement entries and
// an array of fixed-size compressed images. Entries refer to images by index,
// with -1 meaning absent. The number of entries is not stored; it is implied by
// the distance between the entry table and the image data.
package bgst

import (
	"fmt"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Magic bytes identifying a BGST file.
var Magic = [4]byte{0x42, 0x47, 0x53, 0x54} // "BGST"

const (
	// HeaderSize is the fixed binary size of a BGST header.
	HeaderSize = 0x40
	// EntrySize is the size of one placement entry.
	EntrySize = 0x10
	// ImageSize is the size of one compressed image blob.
	ImageSize = 0x20000
	// TileSize is the width and height in pixels of every tile image.
	TileSize = 512
	// LayerCount is the number of per-layer visibility flags.
	LayerCount = 12
)

// Header represents the header of a BGST file.
type Header struct {
	Magic           [4]byte
	Flags           uint32
	ImageWidth      uint32
	ImageHeight     uint32
	GridWidth       uint32
	GridHeight      uint32
	ImageCount      uint32
	ShowLayer       [LayerCount]bool
	EntryOffset     uint32
	ImageDataOffset uint32
	ScaleModifier   float32
	// 0x34..0x40 reserved
}

// Size returns the binary size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// EntryCount returns the number of entries implied by the table offsets.
func (h *Header) EntryCount() int {
	return int(h.ImageDataOffset-h.EntryOffset) / EntrySize
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: expected %q, got %q", binio.ErrInvalidMagic, Magic[:], h.Magic[:])
	}
	if h.EntryOffset < HeaderSize {
		return fmt.Errorf("entry table offset 0x%x overlaps header", h.EntryOffset)
	}
	if h.ImageDataOffset < h.EntryOffset {
		return fmt.Errorf("image data offset 0x%x precedes entry table offset 0x%x", h.ImageDataOffset, h.EntryOffset)
	}
	if rem := (h.ImageDataOffset - h.EntryOffset) % EntrySize; rem != 0 {
		return fmt.Errorf("entry table has %d trailing bytes", rem)
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
	copy(buf[0x00:0x04], h.Magic[:])
	binio.PutU32(buf, 0x04, h.Flags)
	binio.PutU32(buf, 0x08, h.ImageWidth)
	binio.PutU32(buf, 0x0C, h.ImageHeight)
	binio.PutU32(buf, 0x10, h.GridWidth)
	binio.PutU32(buf, 0x14, h.GridHeight)
	binio.PutU32(buf, 0x18, h.ImageCount)
	for i, show := range h.ShowLayer {
		buf[0x1C+i] = 0
		if show {
			buf[0x1C+i] = 1
		}
	}
	binio.PutU32(buf, 0x28, h.EntryOffset)
	binio.PutU32(buf, 0x2C, h.ImageDataOffset)
	binio.PutF32(buf, 0x30, h.ScaleModifier)
	clear(buf[0x34:HeaderSize])
}

// UnmarshalBinary decodes the header from binary format.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return &binio.RangeError{What: "header", Offset: 0, Size: HeaderSize, Len: len(data)}
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0x00:0x04])
	h.Flags = binio.U32(data, 0x04)
	h.ImageWidth = binio.U32(data, 0x08)
	h.ImageHeight = binio.U32(data, 0x0C)
	h.GridWidth = binio.U32(data, 0x10)
	h.GridHeight = binio.U32(data, 0x14)
	h.ImageCount = binio.U32(data, 0x18)
	for i := range h.ShowLayer {
		h.ShowLayer[i] = data[0x1C+i] != 0
	}
	h.EntryOffset = binio.U32(data, 0x28)
	h.ImageDataOffset = binio.U32(data, 0x2C)
	h.ScaleModifier = binio.F32(data, 0x30)
}
