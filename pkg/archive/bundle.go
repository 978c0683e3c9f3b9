package archive

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/DataDog/zstd"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// File is one named file inside a bundle.
type File struct {
	Name string
	Data []byte
}

// MaxPayload bounds the decompressed size of a bundle.
const MaxPayload = 1 << 32

func entrySize(f File) int {
	return 2 + len(f.Name) + 4 + len(f.Data)
}

// payloadSize returns the decompressed size of files.
func payloadSize(files []File) int {
	n := 4
	for _, f := range files {
		n += entrySize(f)
	}
	return n
}

func checkFile(f File) error {
	if len(f.Name) == 0 || len(f.Name) > math.MaxUint16 {
		return fmt.Errorf("file name %q: invalid length %d", f.Name, len(f.Name))
	}
	if uint64(len(f.Data)) > math.MaxUint32 {
		return fmt.Errorf("file %q: too large", f.Name)
	}
	return nil
}

// entryHeader returns the name length, name and data length preceding the
// data of f.
func entryHeader(f File) []byte {
	b := make([]byte, 2+len(f.Name)+4)
	b[0], b[1] = byte(len(f.Name)>>8), byte(len(f.Name))
	copy(b[2:], f.Name)
	binio.PutU32(b, 2+len(f.Name), uint32(len(f.Data)))
	return b
}

// encodePayload lays out files in bundle order.
func encodePayload(files []File) ([]byte, error) {
	size := payloadSize(files)
	if uint64(size) > MaxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d", size, uint64(MaxPayload))
	}
	buf := make([]byte, 4, size)
	binio.PutU32(buf, 0, uint32(len(files)))
	for _, f := range files {
		if err := checkFile(f); err != nil {
			return nil, err
		}
		buf = append(buf, entryHeader(f)...)
		buf = append(buf, f.Data...)
	}
	return buf, nil
}

func decodePayload(data []byte) ([]File, error) {
	count, err := binio.ReadU32(data, 0, "file count")
	if err != nil {
		return nil, err
	}
	// Every file needs at least 6 bytes, so a larger count is corrupt.
	if int64(count) > int64(len(data)/6) {
		return nil, fmt.Errorf("file count %d exceeds payload of %d bytes: %w", count, len(data), binio.ErrTruncatedInput)
	}

	files := make([]File, 0, count)
	off := 4
	for i := 0; i < int(count); i++ {
		b, err := binio.Slice(data, off, 2, fmt.Sprintf("file %d name length", i))
		if err != nil {
			return nil, err
		}
		nameLen := int(b[0])<<8 | int(b[1])
		off += 2

		name, err := binio.Slice(data, off, nameLen, fmt.Sprintf("file %d name", i))
		if err != nil {
			return nil, err
		}
		off += nameLen

		size, err := binio.ReadU32(data, off, fmt.Sprintf("file %d size", i))
		if err != nil {
			return nil, err
		}
		off += 4

		body, err := binio.Slice(data, off, int(size), fmt.Sprintf("file %q", name))
		if err != nil {
			return nil, err
		}
		off += int(size)

		files = append(files, File{Name: string(name), Data: bytes.Clone(body)})
	}
	return files, nil
}

// Pack encodes files into a bundle.
func Pack(files []File, opts ...WriterOption) ([]byte, error) {
	payload, err := encodePayload(files)
	if err != nil {
		return nil, err
	}

	w := &Writer{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(w)
	}

	compressed, err := zstd.CompressLevel(nil, payload, w.level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	out := make([]byte, HeaderSize, HeaderSize+len(compressed))
	NewHeader(uint64(len(payload)), uint64(len(compressed))).EncodeTo(out)
	return append(out, compressed...), nil
}

// Extract decodes the files of a bundle, in stored order.
func Extract(data []byte) ([]File, error) {
	payload, err := ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	files, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return files, nil
}

// WriteFile streams files into a bundle at path.
func WriteFile(path string, files []File, opts ...WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer f.Close()

	if err := Encode(f, files, opts...); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return f.Close()
}

// ReadFile reads the files of the bundle at path.
func ReadFile(path string) ([]File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	payload, err := ReadAll(f)
	if err != nil {
		return nil, err
	}
	files, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return files, nil
}
