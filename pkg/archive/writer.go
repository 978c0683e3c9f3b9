package archive

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// Writer streams files into a bundle without holding the whole payload in
// memory. The file count leads the payload, so it is fixed by NewWriter; both
// header sizes are patched on Close.
type Writer struct {
	dst     io.WriteSeeker
	zWriter *zstd.Writer
	header  *Header
	level   int
	start   int64
	count   int
	added   int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd level used for the payload.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter starts a bundle of count files at the current position of dst.
func NewWriter(dst io.WriteSeeker, count int, opts ...WriterOption) (*Writer, error) {
	if count < 0 || uint64(count) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("invalid file count %d", count)
	}

	w := &Writer{
		dst:    dst,
		level:  DefaultCompressionLevel,
		header: NewHeader(0, 0),
		count:  count,
	}
	for _, opt := range opts {
		opt(w)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	w.start = start

	var placeholder [HeaderSize]byte
	if _, err := dst.Write(placeholder[:]); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)

	var countBuf [4]byte
	binio.PutU32(countBuf[:], 0, uint32(count))
	if err := w.write(countBuf[:]); err != nil {
		return nil, fmt.Errorf("write file count: %w", err)
	}
	return w, nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.zWriter.Write(p)
	w.header.Length += uint64(n)
	return err
}

// Add appends one file to the bundle.
func (w *Writer) Add(f File) error {
	if w.added == w.count {
		return fmt.Errorf("file %q: bundle already holds %d files", f.Name, w.count)
	}
	if err := checkFile(f); err != nil {
		return err
	}
	if w.header.Length+uint64(entrySize(f)) > MaxPayload {
		return fmt.Errorf("file %q: payload exceeds %d bytes", f.Name, uint64(MaxPayload))
	}

	if err := w.write(entryHeader(f)); err != nil {
		return fmt.Errorf("write %q: %w", f.Name, err)
	}
	if err := w.write(f.Data); err != nil {
		return fmt.Errorf("write %q: %w", f.Name, err)
	}
	w.added++
	return nil
}

// Close flushes the compressor and patches the header. It fails if fewer
// files were added than announced to NewWriter.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	if w.added != w.count {
		return fmt.Errorf("bundle holds %d of %d files", w.added, w.count)
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}
	w.header.CompressedLength = uint64(end - w.start - HeaderSize)

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	buf := make([]byte, HeaderSize)
	w.header.EncodeTo(buf)
	if _, err := w.dst.Write(buf); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.dst.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	return nil
}

// Encode streams files as a bundle into dst.
func Encode(dst io.WriteSeeker, files []File, opts ...WriterOption) error {
	w, err := NewWriter(dst, len(files), opts...)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := w.Add(f); err != nil {
			w.zWriter.Close()
			return err
		}
	}
	return w.Close()
}
