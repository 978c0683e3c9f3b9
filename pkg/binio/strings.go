package binio

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// DecodeErrorString replaces a name whose bytes are neither UTF-8 nor Shift-JIS.
const DecodeErrorString = "<DECODE ERROR>"

// DecodeFixedString decodes a null-terminated name from a fixed-width field.
//
// Names written by this package are UTF-8; names from the game's own files are
// ASCII or Shift-JIS. Bytes that decode as neither yield DecodeErrorString.
func DecodeFixedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return DecodeErrorString
	}
	return string(decoded)
}

// EncodeFixedString writes s into dst as UTF-8, truncated to len(dst) bytes,
// and zero-fills the remainder. Truncation is byte-wise and may split a
// multi-byte character.
func EncodeFixedString(dst []byte, s string) {
	n := copy(dst, s)
	clear(dst[n:])
}

// FixedString returns s encoded into a new n-byte field.
func FixedString(s string, n int) []byte {
	b := make([]byte, n)
	EncodeFixedString(b, s)
	return b
}
