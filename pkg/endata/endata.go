// Package endata reads and writes GFES enemy-placement (enbin) files.
//
// An enbin file is a 0x14-byte header, a count-prefixed table of fixed-size
// enemy records and a footer that is kept as opaque bytes. Only the enemy
// records are understood; the footer is re-emitted verbatim.
package endata

import (
	"fmt"
	"slices"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Magic bytes identifying an enbin file.
var Magic = [4]byte{0x47, 0x46, 0x45, 0x53} // "GFES"

const (
	// HeaderSize is the fixed binary size of an enbin header.
	HeaderSize = 0x14
	// EnemySize is the size of one enemy record.
	EnemySize = 0x174
	// EnemyParamsSize is the size of one parameter block inside an enemy record.
	EnemyParamsSize = 0x18
	// ParamCount is the number of parameter blocks per enemy.
	ParamCount = 7
	// Version is the format version written by Encode.
	Version = 3
)

// Header represents the header of an enbin file.
type Header struct {
	Magic        [4]byte
	Version      uint32
	Reserved     uint32
	EnemyOffset  uint32
	FooterOffset uint32
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
	if h.EnemyOffset < HeaderSize {
		return fmt.Errorf("enemy table offset 0x%x overlaps header", h.EnemyOffset)
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
	binio.PutU32(buf, 0x04, h.Version)
	binio.PutU32(buf, 0x08, h.Reserved)
	binio.PutU32(buf, 0x0C, h.EnemyOffset)
	binio.PutU32(buf, 0x10, h.FooterOffset)
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
	h.Version = binio.U32(data, 0x04)
	h.Reserved = binio.U32(data, 0x08)
	h.EnemyOffset = binio.U32(data, 0x0C)
	h.FooterOffset = binio.U32(data, 0x10)
}

// File is a decoded enemy placement.
type File struct {
	Enemies []Enemy `yaml:"enemies"`
	Footer  []byte  `yaml:"footer,flow"`
}

// New returns an empty placement.
func New() *File {
	return &File{}
}

// Decode parses an enbin file. The footer is copied out of data.
func Decode(data []byte) (*File, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	count, err := binio.ReadU32(data, int(h.EnemyOffset), "enemy count")
	if err != nil {
		return nil, fmt.Errorf("read enemies: %w", err)
	}
	start := int(h.EnemyOffset) + 4
	if _, err := binio.Slice(data, start, int(count)*EnemySize, "enemy table"); err != nil {
		return nil, fmt.Errorf("read enemies: %w", err)
	}

	f := &File{}
	if count > 0 {
		f.Enemies = make([]Enemy, count)
		for i := range f.Enemies {
			off := start + i*EnemySize
			f.Enemies[i].DecodeFrom(data[off : off+EnemySize])
		}
	}

	if int(h.FooterOffset) > len(data) {
		return nil, fmt.Errorf("read footer: %w", &binio.RangeError{
			What: "footer", Offset: int(h.FooterOffset), Size: 0, Len: len(data),
		})
	}
	if footer := data[h.FooterOffset:]; len(footer) > 0 {
		f.Footer = slices.Clone(footer)
	}

	return f, nil
}

// Header returns the header Encode would write for f. The footer offset
// follows the enemy table, so it moves when enemies are added or removed.
func (f *File) Header() Header {
	return Header{
		Magic:        Magic,
		Version:      Version,
		EnemyOffset:  HeaderSize,
		FooterOffset: uint32(HeaderSize + 4 + len(f.Enemies)*EnemySize),
	}
}

// Encode serializes f.
func (f *File) Encode() ([]byte, error) {
	h := f.Header()
	buf := make([]byte, int(h.FooterOffset)+len(f.Footer))

	h.EncodeTo(buf)
	binio.PutU32(buf, HeaderSize, uint32(len(f.Enemies)))
	for i := range f.Enemies {
		off := HeaderSize + 4 + i*EnemySize
		f.Enemies[i].EncodeTo(buf[off : off+EnemySize])
	}
	copy(buf[h.FooterOffset:], f.Footer)

	return buf, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f *File) MarshalBinary() ([]byte, error) {
	return f.Encode()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *File) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}
