package texture

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestFormatName(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{I4, "I4"},
		{IA8, "IA8"},
		{RGB5A3, "RGB5A3"},
		{CMPR, "CMPR"},
		{Format(7), "UNKNOWN(0x7)"},
	}

	for _, tt := range tests {
		name := FormatName(tt.format)
		if name != tt.expected {
			t.Errorf("Format %d: expected %s, got %s", tt.format, tt.expected, name)
		}
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CMPR")
	if err != nil || f != CMPR {
		t.Errorf("got %v, %v", f, err)
	}
	if _, err := ParseFormat("BC7"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestEncodedSize(t *testing.T) {
	tests := []struct {
		width    int
		height   int
		format   Format
		expected int
	}{
		// tile backgrounds: one 512x512 CMPR image per blob
		{512, 512, CMPR, 0x20000},
		{512, 512, I4, 0x20000},
		{512, 512, I8, 0x40000},
		{512, 512, RGBA8, 0x100000},
		{16, 16, RGB565, 16 * 16 * 2},
		// partial blocks round up
		{9, 9, CMPR, 2 * 2 * 32},
		{5, 3, IA8, 2 * 1 * 32},
	}

	for _, tt := range tests {
		size, err := EncodedSize(tt.format, tt.width, tt.height)
		if err != nil {
			t.Fatalf("%dx%d %s: %v", tt.width, tt.height, tt.format, err)
		}
		if size != tt.expected {
			t.Errorf("%dx%d %s: expected %#x, got %#x",
				tt.width, tt.height, tt.format, tt.expected, size)
		}
	}

	if _, err := EncodedSize(Format(0x7), 8, 8); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestImageFiles(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.NRGBA{R: 200, G: 10, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "tile.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Bounds() != img.Bounds() {
		t.Errorf("bounds: got %v, want %v", loaded.Bounds(), img.Bounds())
	}
	r, g, b, _ := loaded.At(1, 2).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 30 {
		t.Errorf("pixel mismatch: %d %d %d", r>>8, g>>8, b>>8)
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
