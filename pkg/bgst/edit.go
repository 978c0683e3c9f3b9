package bgst

import (
	"fmt"
	"image"
	"math"

	"github.com/goopsie/quiltFileTools/pkg/binio"
	"github.com/goopsie/quiltFileTools/pkg/texture"
)

// Image references are counted by scanning every entry. Entry tables hold at
// most a few hundred records, so each scan is linear and uncached.

// ImageUsers returns the number of main and mask references to image index.
func (f *File) ImageUsers(index int) int {
	users := 0
	for i := range f.Entries {
		if int(f.Entries[i].Main) == index {
			users++
		}
		if int(f.Entries[i].Mask) == index {
			users++
		}
	}
	return users
}

// Orphans returns the indices of images no entry refers to.
func (f *File) Orphans() []int {
	var out []int
	for i := range f.Images {
		if f.ImageUsers(i) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// EntriesOnLayer returns the indices of the entries placed on layer.
func (f *File) EntriesOnLayer(layer int16) []int {
	var out []int
	for i := range f.Entries {
		if f.Entries[i].Layer == layer {
			out = append(out, i)
		}
	}
	return out
}

// AddImage appends a zeroed blob sized for a tile in format and returns its index.
func (f *File) AddImage(format texture.Format) (int, error) {
	size, err := texture.EncodedSize(format, TileSize, TileSize)
	if err != nil {
		return 0, err
	}
	if size != ImageSize {
		return 0, fmt.Errorf("%s tile is 0x%x bytes, blobs are 0x%x", format, size, ImageSize)
	}
	if len(f.Images) > math.MaxInt16 {
		return 0, fmt.Errorf("image table full (%d images)", len(f.Images))
	}
	f.Images = append(f.Images, make([]byte, ImageSize))
	return len(f.Images) - 1, nil
}

// CreateEntry adds a blank CMPR image and an enabled entry at (x, y) on layer
// that uses it as its main image. It returns the new entry's index.
func (f *File) CreateEntry(layer, x, y int16) (int, error) {
	img, err := f.AddImage(texture.CMPR)
	if err != nil {
		return 0, fmt.Errorf("add image: %w", err)
	}
	f.Entries = append(f.Entries, Entry{
		Enabled: true,
		Layer:   layer,
		GridX:   x,
		GridY:   y,
		Main:    int16(img),
		Mask:    -1,
	})
	return len(f.Entries) - 1, nil
}

// RemoveEntry deletes entry index. Its images are left in place.
func (f *File) RemoveEntry(index int) error {
	if err := f.checkEntry(index); err != nil {
		return err
	}
	f.Entries = append(f.Entries[:index], f.Entries[index+1:]...)
	return nil
}

// RemoveEntryMask clears the mask of entry index. When nothing else refers to
// the old mask image it is deleted, higher image indices are renumbered, and
// true is returned.
func (f *File) RemoveEntryMask(index int) (bool, error) {
	if err := f.checkEntry(index); err != nil {
		return false, err
	}
	e := &f.Entries[index]
	if !e.MaskValid() {
		return false, nil
	}
	mask := int(e.Mask)
	if err := f.checkImage(mask); err != nil {
		return false, fmt.Errorf("entry %d mask: %w", index, err)
	}

	e.Mask = -1
	if f.ImageUsers(mask) > 0 {
		return false, nil
	}
	f.deleteImage(mask)
	return true, nil
}

// RemoveImage deletes image index and renumbers references to later images.
// It fails if any entry still refers to the image.
func (f *File) RemoveImage(index int) error {
	if err := f.checkImage(index); err != nil {
		return err
	}
	if n := f.ImageUsers(index); n > 0 {
		return fmt.Errorf("image %d still has %d references", index, n)
	}
	f.deleteImage(index)
	return nil
}

func (f *File) deleteImage(index int) {
	f.Images = append(f.Images[:index], f.Images[index+1:]...)
	f.RenumberAfterRemoval(index)
}

// RenumberAfterRemoval decrements every main and mask index greater than removed.
func (f *File) RenumberAfterRemoval(removed int) {
	for i := range f.Entries {
		e := &f.Entries[i]
		if int(e.Main) > removed {
			e.Main--
		}
		if int(e.Mask) > removed {
			e.Mask--
		}
	}
}

// ReplaceImageData stores a compressed blob at index, or appends it when index is -1.
// It returns the index written.
func (f *File) ReplaceImageData(index int, blob []byte) (int, error) {
	if len(blob) != ImageSize {
		return 0, fmt.Errorf("blob is 0x%x bytes, want 0x%x", len(blob), ImageSize)
	}
	if index == -1 {
		if len(f.Images) > math.MaxInt16 {
			return 0, fmt.Errorf("image table full (%d images)", len(f.Images))
		}
		f.Images = append(f.Images, blob)
		return len(f.Images) - 1, nil
	}
	if err := f.checkImage(index); err != nil {
		return 0, err
	}
	f.Images[index] = blob
	return index, nil
}

// ReplaceImage compresses img with codec and stores it like ReplaceImageData.
// img must be exactly TileSize×TileSize.
func (f *File) ReplaceImage(index int, format texture.Format, img image.Image, codec texture.Codec) (int, error) {
	if index != -1 {
		if err := f.checkImage(index); err != nil {
			return 0, err
		}
	}
	if b := img.Bounds(); b.Dx() != TileSize || b.Dy() != TileSize {
		return 0, fmt.Errorf("image is %dx%d, tiles are %dx%d: %w",
			b.Dx(), b.Dy(), TileSize, TileSize, binio.ErrDimensionMismatch)
	}
	blob, err := codec.Encode(img, format)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", format, err)
	}
	return f.ReplaceImageData(index, blob)
}

// ReplaceImageFile loads an image file and stores it like ReplaceImage.
func (f *File) ReplaceImageFile(index int, path string, format texture.Format, codec texture.Codec) (int, error) {
	img, err := texture.LoadImage(path)
	if err != nil {
		return 0, err
	}
	return f.ReplaceImage(index, format, img, codec)
}

func (f *File) checkEntry(index int) error {
	if index < 0 || index >= len(f.Entries) {
		return fmt.Errorf("entry %d of %d: %w", index, len(f.Entries), binio.ErrIndexOutOfRange)
	}
	return nil
}

func (f *File) checkImage(index int) error {
	if index < 0 || index >= len(f.Images) {
		return fmt.Errorf("image %d of %d: %w", index, len(f.Images), binio.ErrIndexOutOfRange)
	}
	return nil
}
