// Package names implements the index-addressed name tables stored alongside map geometry.
//
// A table is an ordered list of unique names. Entities in a map file refer to
// names by their position in the table, so insertion order is on-disk order.
// Two record encodings exist: plain strings (collision types, wall labels) and
// raw identifiers presented as uppercase hex (common gimmick names).
package names

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

// RecordSize is the width of one name record on disk.
const RecordSize = 0x20

// Kind selects how a table's records are encoded.
type Kind int

const (
	String Kind = iota
	Hex
)

// Table is an ordered, deduplicated list of names.
type Table struct {
	kind  Kind
	names []string
}

// New returns an empty string table.
func New(names ...string) *Table {
	return &Table{kind: String, names: names}
}

// NewHex returns an empty hex table.
func NewHex(names ...string) *Table {
	return &Table{kind: Hex, names: names}
}

// Kind returns the record encoding of the table.
func (t *Table) Kind() Kind { return t.kind }

// Len returns the number of names.
func (t *Table) Len() int { return len(t.names) }

// Names returns the names in index order. The slice must not be modified.
func (t *Table) Names() []string { return t.names }

// EncodedSize is the size of the table as written by AppendTo.
func (t *Table) EncodedSize() int { return 4 + RecordSize*len(t.names) }

// Decode appends count records of recordSize bytes starting at start.
func (t *Table) Decode(data []byte, count, recordSize, start int) error {
	for i := 0; i < count; i++ {
		rec, err := binio.Slice(data, start+i*recordSize, recordSize, fmt.Sprintf("name %d", i))
		if err != nil {
			return err
		}
		t.names = append(t.names, t.decodeRecord(rec))
	}
	return nil
}

func (t *Table) decodeRecord(rec []byte) string {
	if t.kind == String {
		return binio.DecodeFixedString(rec)
	}
	if i := bytes.IndexByte(rec, 0); i >= 0 {
		rec = rec[:i]
	}
	return strings.ToUpper(hex.EncodeToString(rec))
}

// Lookup returns the name at index i.
func (t *Table) Lookup(i int) (string, error) {
	if i < 0 || i >= len(t.names) {
		return "", fmt.Errorf("name %d of %d: %w", i, len(t.names), binio.ErrIndexOutOfRange)
	}
	return t.names[i], nil
}

// Canonical returns name as it reads back after a save: strings are cut to
// RecordSize bytes and hex ids are upper-cased with trailing zero bytes
// dropped. Hex names that cannot be encoded are an error.
func (t *Table) Canonical(name string) (string, error) {
	if t.kind == String {
		return binio.DecodeFixedString(binio.FixedString(name, RecordSize)), nil
	}
	var rec [RecordSize]byte
	if err := t.encodeRecord(rec[:], name); err != nil {
		return "", err
	}
	return t.decodeRecord(rec[:]), nil
}

// Index returns the position of name, failing with ErrReferenceNotFound when
// absent. Names are compared in canonical form.
func (t *Table) Index(name string) (int, error) {
	want, err := t.Canonical(name)
	if err != nil {
		return 0, err
	}
	for i, n := range t.names {
		if c, err := t.Canonical(n); err == nil && c == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, binio.ErrReferenceNotFound)
}

// Intern returns the index of name, appending its canonical form first if
// absent. The table is unchanged when name cannot be encoded.
func (t *Table) Intern(name string) (int, error) {
	want, err := t.Canonical(name)
	if err != nil {
		return 0, err
	}
	if i, err := t.Index(want); err == nil {
		return i, nil
	}
	t.names = append(t.names, want)
	return len(t.names) - 1, nil
}

// Clone returns an independent copy of t.
func (t *Table) Clone() *Table {
	return &Table{kind: t.kind, names: slices.Clone(t.names)}
}

// AppendTo appends the count-prefixed table to buf.
func (t *Table) AppendTo(buf []byte) ([]byte, error) {
	var rec [RecordSize]byte
	var count [4]byte
	binio.PutU32(count[:], 0, uint32(len(t.names)))
	buf = append(buf, count[:]...)

	for i, name := range t.names {
		if err := t.encodeRecord(rec[:], name); err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		buf = append(buf, rec[:]...)
	}
	return buf, nil
}

func (t *Table) encodeRecord(dst []byte, name string) error {
	if t.kind == String {
		binio.EncodeFixedString(dst, name)
		return nil
	}
	raw, err := hex.DecodeString(name)
	if err != nil {
		return fmt.Errorf("decode hex name %q: %w", name, err)
	}
	if len(raw) > len(dst) {
		return fmt.Errorf("hex name %q longer than %d bytes", name, len(dst))
	}
	n := copy(dst, raw)
	clear(dst[n:])
	return nil
}

// MarshalYAML renders the table as its list of names.
func (t *Table) MarshalYAML() (interface{}, error) {
	return t.names, nil
}
