package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/DataDog/zstd"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// DefaultCompressionLevel is the default compression level for bundles.
const DefaultCompressionLevel = zstd.BestSpeed

// Reader decompresses the payload of a bundle.
type Reader struct {
	header    *Header
	zReader   io.ReadCloser
	headerBuf [HeaderSize]byte
}

// NewReader reads and validates the bundle header from r, then returns a
// reader for the decompressed payload.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{
		header: &Header{},
	}

	if n, err := io.ReadFull(r, reader.headerBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = &binio.RangeError{What: "bundle header", Offset: 0, Size: HeaderSize, Len: n}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	if err := reader.header.UnmarshalBinary(reader.headerBuf[:]); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	reader.zReader = zstd.NewReader(io.LimitReader(r, int64(reader.header.CompressedLength)))
	return reader, nil
}

// Header returns the bundle header.
func (r *Reader) Header() *Header {
	return r.header
}

// Read reads decompressed payload into p.
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.zReader.Read(p)
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// Length returns the uncompressed payload length.
func (r *Reader) Length() int {
	return int(r.header.Length)
}

// ReadAll reads the entire decompressed payload of a bundle.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	// The declared length is untrusted; grow with the data actually decompressed.
	data, err := io.ReadAll(io.LimitReader(reader, int64(reader.header.Length)+1))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	switch {
	case uint64(len(data)) < reader.header.Length:
		return nil, fmt.Errorf("read payload: %w", &binio.RangeError{
			What: "payload", Offset: 0, Size: reader.Length(), Len: len(data),
		})
	case uint64(len(data)) > reader.header.Length:
		return nil, fmt.Errorf("read payload: more than the declared %d bytes", reader.header.Length)
	}

	return data, nil
}
