package names

import (
	"errors"
	"strings"
	"testing"

	"github.com/goopsie/quiltFileTools/pkg/binio"
)

func mustIntern(t *testing.T, tbl *Table, name string) int {
	t.Helper()
	i, err := tbl.Intern(name)
	if err != nil {
		t.Fatalf("intern %q: %v", name, err)
	}
	return i
}

func TestIntern(t *testing.T) {
	tbl := New("NML", "THROUGH")

	t.Run("Existing", func(t *testing.T) {
		if i := mustIntern(t, tbl, "THROUGH"); i != 1 {
			t.Errorf("got %d, want 1", i)
		}
		if tbl.Len() != 2 {
			t.Errorf("table grew to %d", tbl.Len())
		}
	})

	t.Run("Append", func(t *testing.T) {
		i := mustIntern(t, tbl, "DAMAGE")
		if i != 2 {
			t.Errorf("got %d, want 2", i)
		}
		if again := mustIntern(t, tbl, "DAMAGE"); again != i {
			t.Errorf("second intern returned %d", again)
		}
		if tbl.Len() != 3 {
			t.Errorf("len %d, want 3", tbl.Len())
		}
	})

	t.Run("LookupIntern", func(t *testing.T) {
		for _, v := range []string{"NML", "SPIN", "", "NML_SOFT"} {
			got, err := tbl.Lookup(mustIntern(t, tbl, v))
			if err != nil || got != v {
				t.Errorf("lookup(intern(%q)) = %q, %v", v, got, err)
			}
		}
	})
}

func TestInternCanonical(t *testing.T) {
	t.Run("HexCase", func(t *testing.T) {
		tbl := NewHex("0A1B")
		if i := mustIntern(t, tbl, "0a1b"); i != 0 {
			t.Errorf("got %d, want 0", i)
		}
		if i := mustIntern(t, tbl, "ff00"); i != 1 {
			t.Errorf("got %d, want 1", i)
		}
		if got := tbl.Names(); len(got) != 2 || got[1] != "FF" {
			t.Errorf("names %v", got)
		}
		if i, err := tbl.Index("Ff"); err != nil || i != 1 {
			t.Errorf("Index(Ff) = %d, %v", i, err)
		}
	})

	t.Run("InvalidHex", func(t *testing.T) {
		tbl := NewHex("0A")
		for _, name := range []string{"XYZ", "ABC", strings.Repeat("00", RecordSize+1)} {
			if _, err := tbl.Intern(name); err == nil {
				t.Errorf("intern %q: expected error", name)
			}
		}
		if tbl.Len() != 1 {
			t.Errorf("failed intern grew the table to %v", tbl.Names())
		}
	})

	t.Run("LongString", func(t *testing.T) {
		tbl := New()
		prefix := strings.Repeat("L", RecordSize)
		a := mustIntern(t, tbl, prefix+"_ONE")
		b := mustIntern(t, tbl, prefix+"_TWO")
		if a != b || tbl.Len() != 1 || tbl.Names()[0] != prefix {
			t.Errorf("got %d, %d, %v", a, b, tbl.Names())
		}
	})

	t.Run("Clone", func(t *testing.T) {
		tbl := New("A")
		c := tbl.Clone()
		mustIntern(t, c, "B")
		if tbl.Len() != 1 || c.Len() != 2 || c.Kind() != String {
			t.Errorf("clone shares state: %v, %v", tbl.Names(), c.Names())
		}
	})
}

func TestLookup(t *testing.T) {
	tbl := New("A", "B")

	tests := []struct {
		index   int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{-1, true},
	}

	for _, tt := range tests {
		_, err := tbl.Lookup(tt.index)
		if tt.wantErr && !errors.Is(err, binio.ErrIndexOutOfRange) {
			t.Errorf("Lookup(%d): expected ErrIndexOutOfRange, got %v", tt.index, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Lookup(%d): %v", tt.index, err)
		}
	}
}

func TestIndex(t *testing.T) {
	tbl := New("A")
	if _, err := tbl.Index("B"); !errors.Is(err, binio.ErrReferenceNotFound) {
		t.Errorf("expected ErrReferenceNotFound, got %v", err)
	}
	if tbl.Len() != 1 {
		t.Error("Index must not grow the table")
	}
}

func TestStringTableEncoding(t *testing.T) {
	tbl := New("NML", "GO_HEAVEN")
	buf, err := tbl.AppendTo(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != tbl.EncodedSize() || len(buf) != 4+2*RecordSize {
		t.Fatalf("encoded %d bytes", len(buf))
	}
	if binio.U32(buf, 0) != 2 {
		t.Errorf("count %d", binio.U32(buf, 0))
	}

	decoded := New()
	if err := decoded.Decode(buf, 2, RecordSize, 4); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Len() != 2 || decoded.Names()[1] != "GO_HEAVEN" {
		t.Errorf("got %v", decoded.Names())
	}
}

func TestHexTableEncoding(t *testing.T) {
	raw := make([]byte, 4+RecordSize)
	binio.PutU32(raw, 0, 1)
	copy(raw[4:], []byte{0x0a, 0xbc, 0x12})

	tbl := NewHex()
	if err := tbl.Decode(raw, 1, RecordSize, 4); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := tbl.Names()[0]; got != "0ABC12" {
		t.Errorf("got %q, want 0ABC12", got)
	}

	buf, err := tbl.AppendTo(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(buf) != string(raw) {
		t.Errorf("re-encoded bytes differ: % x", buf)
	}

	t.Run("InvalidHex", func(t *testing.T) {
		bad := NewHex("XYZ")
		if _, err := bad.AppendTo(nil); err == nil {
			t.Error("expected error for non-hex name")
		}
	})

	t.Run("TooLong", func(t *testing.T) {
		long := NewHex("00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDDEEFF00")
		if _, err := long.AppendTo(nil); err == nil {
			t.Error("expected error for oversize name")
		}
	})
}

func TestDecodeTruncated(t *testing.T) {
	tbl := New()
	err := tbl.Decode(make([]byte, 0x30), 2, RecordSize, 4)
	if !errors.Is(err, binio.ErrTruncatedInput) {
		t.Errorf("expected ErrTruncatedInput, got %v", err)
	}
}
