package bgst

import (
	"fmt"
	"slices"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Entry places up to two images (main and mask) on one grid cell of a layer.
type Entry struct {
	Enabled bool  `yaml:"enabled"`
	Layer   int16 `yaml:"layer"`
	GridX   int16 `yaml:"grid_x"`
	GridY   int16 `yaml:"grid_y"`
	Main    int16 `yaml:"main"` // image index, -1 if absent
	Mask    int16 `yaml:"mask"` // image index, -1 if absent
	UnkC    int16 `yaml:"unk_c"`
	UnkE    int16 `yaml:"unk_e"`
}

// MainValid reports whether the entry has a main image.
func (e *Entry) MainValid() bool { return e.Main > -1 }

// MaskValid reports whether the entry has a mask image.
func (e *Entry) MaskValid() bool { return e.Mask > -1 }

// IsMasked reports whether the entry has both a main and a mask image.
func (e *Entry) IsMasked() bool { return e.MainValid() && e.MaskValid() }

// IsValid reports whether the entry refers to any image.
func (e *Entry) IsValid() bool { return e.MainValid() || e.MaskValid() }

// DecodeFrom reads an entry from a 16-byte record.
func (e *Entry) DecodeFrom(b []byte) {
	e.Enabled = binio.I16(b, 0x0) != 0
	e.Layer = binio.I16(b, 0x2)
	e.GridX = binio.I16(b, 0x4)
	e.GridY = binio.I16(b, 0x6)
	e.Main = binio.I16(b, 0x8)
	e.Mask = binio.I16(b, 0xA)
	e.UnkC = binio.I16(b, 0xC)
	e.UnkE = binio.I16(b, 0xE)
}

// EncodeTo writes the entry to a 16-byte record.
func (e *Entry) EncodeTo(b []byte) {
	var enabled int16
	if e.Enabled {
		enabled = 1
	}
	binio.PutI16(b, 0x0, enabled)
	binio.PutI16(b, 0x2, e.Layer)
	binio.PutI16(b, 0x4, e.GridX)
	binio.PutI16(b, 0x6, e.GridY)
	binio.PutI16(b, 0x8, e.Main)
	binio.PutI16(b, 0xA, e.Mask)
	binio.PutI16(b, 0xC, e.UnkC)
	binio.PutI16(b, 0xE, e.UnkE)
}

// File is a decoded tile background.
type File struct {
	Flags         uint32
	ImageWidth    uint32
	ImageHeight   uint32
	GridWidth     uint32
	GridHeight    uint32
	ShowLayer     [LayerCount]bool
	Entries       []Entry
	ScaleModifier float32
	Images        [][]byte // compressed blobs, ImageSize bytes each
}

// Decode parses a BGST file. Image blobs are copied out of data.
func Decode(data []byte) (*File, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	f := &File{
		Flags:         h.Flags,
		ImageWidth:    h.ImageWidth,
		ImageHeight:   h.ImageHeight,
		GridWidth:     h.GridWidth,
		GridHeight:    h.GridHeight,
		ShowLayer:     h.ShowLayer,
		ScaleModifier: h.ScaleModifier,
	}

	table, err := binio.Slice(data, int(h.EntryOffset), int(h.ImageDataOffset-h.EntryOffset), "entry table")
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	f.Entries = make([]Entry, h.EntryCount())
	for i := range f.Entries {
		f.Entries[i].DecodeFrom(table[i*EntrySize:])
	}

	// Reject an impossible image count before allocating for it.
	count := int(h.ImageCount)
	if _, err := binio.Slice(data, int(h.ImageDataOffset), count*ImageSize, "image data"); err != nil {
		return nil, fmt.Errorf("read images: %w", err)
	}
	f.Images = make([][]byte, count)
	for i := range f.Images {
		start := int(h.ImageDataOffset) + i*ImageSize
		f.Images[i] = slices.Clone(data[start : start+ImageSize])
	}

	return f, nil
}

// Header returns the header Encode would write for f.
func (f *File) Header() Header {
	return Header{
		Magic:           Magic,
		Flags:           f.Flags,
		ImageWidth:      f.ImageWidth,
		ImageHeight:     f.ImageHeight,
		GridWidth:       f.GridWidth,
		GridHeight:      f.GridHeight,
		ImageCount:      uint32(len(f.Images)),
		ShowLayer:       f.ShowLayer,
		EntryOffset:     HeaderSize,
		ImageDataOffset: uint32(HeaderSize + len(f.Entries)*EntrySize),
		ScaleModifier:   f.ScaleModifier,
	}
}

// Encode serializes f, padding the output to a 0x20-byte boundary.
func (f *File) Encode() ([]byte, error) {
	for i, img := range f.Images {
		if len(img) != ImageSize {
			return nil, fmt.Errorf("image %d is 0x%x bytes, want 0x%x", i, len(img), ImageSize)
		}
	}

	h := f.Header()
	size := int(h.ImageDataOffset) + len(f.Images)*ImageSize
	buf := make([]byte, binio.Align(size, binio.Alignment))

	h.EncodeTo(buf)
	for i := range f.Entries {
		off := HeaderSize + i*EntrySize
		f.Entries[i].EncodeTo(buf[off : off+EntrySize])
	}
	for i, img := range f.Images {
		copy(buf[int(h.ImageDataOffset)+i*ImageSize:], img)
	}

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
