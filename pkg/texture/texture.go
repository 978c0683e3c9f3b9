// Package texture describes the console texture formats used by tile backgrounds.
//
// Tile images are stored as GX-encoded blobs. This package knows the format
// identifiers and their block geometry, which is enough to size a blob, but the
// pixel compression itself is provided by a Codec supplied by the caller.
//
// Source images for replacement tiles are read with bild's imgio, so PNG, JPEG,
// BMP and TIFF are accepted.
package texture

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Format is a GX texture format identifier.
type Format uint32

// GX texture formats.
const (
	I4     Format = 0x0
	I8     Format = 0x1
	IA4    Format = 0x2
	IA8    Format = 0x3
	RGB565 Format = 0x4
	RGB5A3 Format = 0x5
	RGBA8  Format = 0x6
	C4     Format = 0x8
	C8     Format = 0x9
	C14X2  Format = 0xA
	CMPR   Format = 0xE
)

// Codec compresses and decompresses texture data for a format.
type Codec interface {
	Decode(data []byte, width, height int, format Format) (image.Image, error)
	Encode(img image.Image, format Format) ([]byte, error)
}

// blockInfo is the tile geometry of a format: blocks are bw×bh pixels at bpp bits per pixel.
type blockInfo struct {
	bw, bh, bpp int
}

var blocks = map[Format]blockInfo{
	I4:     {8, 8, 4},
	I8:     {8, 4, 8},
	IA4:    {8, 4, 8},
	IA8:    {4, 4, 16},
	RGB565: {4, 4, 16},
	RGB5A3: {4, 4, 16},
	RGBA8:  {4, 4, 32},
	C4:     {8, 8, 4},
	C8:     {8, 4, 8},
	C14X2:  {4, 4, 16},
	CMPR:   {8, 8, 4},
}

// String returns the format name.
func (f Format) String() string {
	return FormatName(f)
}

// FormatName returns a human-readable name for a format value.
func FormatName(f Format) string {
	switch f {
	case I4:
		return "I4"
	case I8:
		return "I8"
	case IA4:
		return "IA4"
	case IA8:
		return "IA8"
	case RGB565:
		return "RGB565"
	case RGB5A3:
		return "RGB5A3"
	case RGBA8:
		return "RGBA8"
	case C4:
		return "C4"
	case C8:
		return "C8"
	case C14X2:
		return "C14X2"
	case CMPR:
		return "CMPR"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", uint32(f))
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	for f := range blocks {
		if FormatName(f) == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown texture format %q", name)
}

// EncodedSize returns the size in bytes of a width×height image in format f.
// Dimensions are rounded up to whole blocks.
func EncodedSize(f Format, width, height int) (int, error) {
	b, ok := blocks[f]
	if !ok {
		return 0, fmt.Errorf("encoded size: unsupported format %s", f)
	}
	blocksWide := (width + b.bw - 1) / b.bw
	blocksHigh := (height + b.bh - 1) / b.bh
	return blocksWide * blocksHigh * (b.bw * b.bh * b.bpp / 8), nil
}

// LoadImage reads an image file.
func LoadImage(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return img, nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}
