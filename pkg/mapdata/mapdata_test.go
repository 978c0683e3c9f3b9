package mapdata

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/goopsie/quiltFileTools/pkg/binio"
	"github.com/goopsie/quiltFileTools/pkg/names"
)

func testParams(seed int32) Params {
	return Params{
		Ints:    [3]int32{seed, -seed, 7},
		Floats:  [3]float32{float32(seed) / 2, 0, -1.25},
		Strings: [3]string{"ON", "", "LOOP"},
	}
}

func sampleFile() *File {
	f := New()
	f.BoundsMin = binio.Point2D{X: -10, Y: -20}
	f.BoundsMax = binio.Point2D{X: 300, Y: 40}
	f.Walls = []Wall{
		{Start: binio.Point2D{X: 0, Y: 0}, End: binio.Point2D{X: 10, Y: 0}, NormalizedVector: binio.Point2D{X: 0, Y: 1}, CollisionType: "NML"},
		{Start: binio.Point2D{X: 10, Y: 0}, End: binio.Point2D{X: 10, Y: 5}, CollisionType: "THROUGH"},
		{Start: binio.Point2D{X: 10, Y: 5}, End: binio.Point2D{X: 0, Y: 5}, CollisionType: "NML"},
	}
	f.LabeledWalls = []LabeledWall{
		{Wall: Wall{Start: binio.Point2D{X: 1, Y: 2}, End: binio.Point2D{X: 3, Y: 4}, CollisionType: "DAMAGE"}, Label: "GATE_A"},
	}
	f.CommonGimmicks = []CommonGimmick{{
		Hex:      "0A1B2C3D",
		Position: binio.Point3D{X: 5, Y: 6, Z: 7},
		Params: CommonGimmickParams{
			CommonInts:   [2]int32{1, 2},
			CommonFloats: [2]float32{0.5, 1.5},
			CommonString: "ABC",
			Ints:         [5]int32{1, 2, 3, 4, 5},
			Floats:       [5]float32{1, 2, 3, 4, 5},
			Strings:      [5]string{"a", "b", "", "d", "e"},
		},
	}}
	f.Gimmicks = []Gimmick{
		{Name: "START", Unk30: [0x10]byte{1, 2, 3}, Position: binio.Point3D{X: 12, Y: 3}, Params: testParams(1)},
		{Name: "GOAL", Position: binio.Point3D{X: 280, Y: 3}, Params: testParams(2)},
	}
	f.Paths = []Path{
		{Name: "PATH_0", PathType: "LINE", Params: testParams(3), Points: []binio.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}},
		{Name: "PATH_1", PathType: "NURBS", Params: testParams(4)},
		{Name: "PATH_2", PathType: "LINE", Params: testParams(5), Points: []binio.Point2D{{X: -1, Y: 0}}},
	}
	f.Zones = []Zone{{Name: "CAMERA", Unk20: "Z", Params: testParams(6), BoundsStart: binio.Point2D{X: 0, Y: 0}, BoundsEnd: binio.Point2D{X: 50, Y: 50}}}
	f.CourseInfos = []CourseInfo{{Name: "COURSE", Unk20: "INFO", Params: testParams(7), Position: binio.Point3D{X: 1, Y: 2, Z: 3}}}
	return f
}

func TestRoundTrip(t *testing.T) {
	f := sampleFile()

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data)%0x20 != 0 {
		t.Errorf("length 0x%x not aligned", len(data))
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, f) {
		t.Errorf("decode(encode(f)) differs:\n got %+v\nwant %+v", decoded, f)
	}

	again, err := decoded.Encode()
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if string(again) != string(data) {
		t.Error("second encode is not byte-identical")
	}
}

func TestEncodeLayout(t *testing.T) {
	f := sampleFile()
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.Version != DefaultVersion {
		t.Errorf("version %v", h.Version)
	}

	pathBytes := 3*BasePathSize + 4*PathPointSize
	want := []Section{
		{3, HeaderSize},
		{1, HeaderSize + 3*WallSize},
		{1, HeaderSize + 3*WallSize + LabeledWallSize},
		{2, HeaderSize + 3*WallSize + LabeledWallSize + CommonGimmickSize},
		{3, HeaderSize + 3*WallSize + LabeledWallSize + CommonGimmickSize + 2*GimmickSize},
		{1, HeaderSize + 3*WallSize + LabeledWallSize + CommonGimmickSize + 2*GimmickSize + uint32(pathBytes)},
		{1, HeaderSize + 3*WallSize + LabeledWallSize + CommonGimmickSize + 2*GimmickSize + uint32(pathBytes) + ZoneSize},
	}
	for i, s := range h.sections() {
		if *s != want[i] {
			t.Errorf("section %d: got %+v, want %+v", i, *s, want[i])
		}
	}

	namesOff := want[6].Offset + CourseInfoSize
	if h.CommonGimmickNamesOffset != namesOff {
		t.Errorf("common gimmick names at 0x%x, want 0x%x", h.CommonGimmickNamesOffset, namesOff)
	}
	if h.ColbinTypesOffset != namesOff+4+0x20 {
		t.Errorf("colbin types at 0x%x", h.ColbinTypesOffset)
	}
	// NML, THROUGH, DAMAGE
	if h.WallLabelsOffset != h.ColbinTypesOffset+4+3*0x20 {
		t.Errorf("wall labels at 0x%x", h.WallLabelsOffset)
	}

	// walls store their own index at 0x18
	for i := 0; i < 3; i++ {
		if got := binary.BigEndian.Uint32(data[HeaderSize+i*WallSize+0x18:]); got != uint32(i) {
			t.Errorf("wall %d index field %d", i, got)
		}
	}
	// wall 2 reuses NML at index 0
	if got := binary.BigEndian.Uint32(data[HeaderSize+2*WallSize+0x1C:]); got != 0 {
		t.Errorf("wall 2 type index %d", got)
	}

	raw := data[h.CommonGimmickNamesOffset+4:]
	if raw[0] != 0x0A || raw[3] != 0x3D || raw[4] != 0 {
		t.Errorf("hex name bytes % x", raw[:8])
	}
}

func TestEncodeAppendsNewCollisionType(t *testing.T) {
	f := New()
	f.ColbinTypes = names.New("NML")
	f.Walls = []Wall{{CollisionType: "NML"}}
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	decoded.Walls = append(decoded.Walls, Wall{CollisionType: "SPIN_DMG"})

	data, err = decoded.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := decoded.ColbinTypes.Names(); !reflect.DeepEqual(got, []string{"NML", "SPIN_DMG"}) {
		t.Errorf("colbin types %v", got)
	}
	if got := binary.BigEndian.Uint32(data[HeaderSize+WallSize+0x1C:]); got != 1 {
		t.Errorf("new wall references index %d, want 1", got)
	}

	final, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if final.Walls[1].CollisionType != "SPIN_DMG" {
		t.Errorf("got %q", final.Walls[1].CollisionType)
	}
}

// buildPaths hand-assembles a mapbin holding only paths with the given point counts.
func buildPaths(counts ...int) []byte {
	size := HeaderSize
	for _, n := range counts {
		size += BasePathSize + n*8
	}
	tables := size
	buf := make([]byte, size+3*4)

	binary.BigEndian.PutUint32(buf[0x00:], math.Float32bits(3.3))
	binary.BigEndian.PutUint32(buf[0x34:], uint32(len(counts)))
	binary.BigEndian.PutUint32(buf[0x38:], HeaderSize)
	for _, o := range []int{0x18, 0x20, 0x28, 0x30, 0x40, 0x48} {
		binary.BigEndian.PutUint32(buf[o:], HeaderSize)
	}
	binary.BigEndian.PutUint32(buf[0x4C:], uint32(tables))
	binary.BigEndian.PutUint32(buf[0x50:], uint32(tables+4))
	binary.BigEndian.PutUint32(buf[0x54:], uint32(tables+8))

	off := HeaderSize
	for i, n := range counts {
		buf[off] = 'P'
		buf[off+1] = byte('0' + i)
		binary.BigEndian.PutUint32(buf[off+0x118:], uint32(n))
		for j := 0; j < n; j++ {
			binary.BigEndian.PutUint32(buf[off+BasePathSize+j*8:], math.Float32bits(float32(j)))
		}
		off += BasePathSize + n*8
	}
	return buf
}

func TestDecodeVariableLengthPaths(t *testing.T) {
	data := buildPaths(3, 0, 2)

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Paths) != 3 {
		t.Fatalf("got %d paths", len(f.Paths))
	}
	for i, want := range []int{3, 0, 2} {
		p := f.Paths[i]
		if p.Name != "P"+string(rune('0'+i)) {
			t.Errorf("path %d name %q: start offset drifted", i, p.Name)
		}
		if len(p.Points) != want {
			t.Errorf("path %d has %d points, want %d", i, len(p.Points), want)
		}
	}
	if f.Paths[0].Points[2].X != 2 {
		t.Errorf("point data: %+v", f.Paths[0].Points)
	}

	// the second path begins exactly BasePathSize + 3*8 after the first
	if second := HeaderSize + BasePathSize + 3*8; data[second] != 'P' || data[second+1] != '1' {
		t.Errorf("fixture does not place path 1 at 0x%x", second)
	}
}

func TestDecodeErrors(t *testing.T) {
	good, err := sampleFile().Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	t.Run("ShortHeader", func(t *testing.T) {
		if _, err := Decode(good[:0x20]); !errors.Is(err, binio.ErrTruncatedInput) {
			t.Errorf("expected ErrTruncatedInput, got %v", err)
		}
	})

	t.Run("NameTablePastEnd", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		binary.BigEndian.PutUint32(bad[0x50:], uint32(len(bad)))
		if _, err := Decode(bad); !errors.Is(err, binio.ErrTruncatedInput) {
			t.Errorf("expected ErrTruncatedInput, got %v", err)
		}
	})

	t.Run("BadCollisionIndex", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		binary.BigEndian.PutUint32(bad[HeaderSize+0x1C:], 99)
		_, err := Decode(bad)
		if !errors.Is(err, binio.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "wall 0") {
			t.Errorf("error does not name the record: %v", err)
		}
	})

	t.Run("BadLabelIndex", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		var h Header
		h.DecodeFrom(bad)
		binary.BigEndian.PutUint32(bad[h.LabeledWalls.Offset+0x20:], 5)
		if _, err := Decode(bad); !errors.Is(err, binio.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
	})

	t.Run("HugePointCount", func(t *testing.T) {
		data := buildPaths(1)
		binary.BigEndian.PutUint32(data[HeaderSize+0x118:], 0x7FFFFFFF)
		if _, err := Decode(data); !errors.Is(err, binio.ErrTruncatedInput) {
			t.Errorf("expected ErrTruncatedInput, got %v", err)
		}
	})

	t.Run("HugeWallCount", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		binary.BigEndian.PutUint32(bad[0x14:], 0xFFFFFFFF)
		if _, err := Decode(bad); !errors.Is(err, binio.ErrTruncatedInput) {
			t.Errorf("expected ErrTruncatedInput, got %v", err)
		}
	})
}

func TestEncodeErrors(t *testing.T) {
	f := sampleFile()
	f.Walls = append(f.Walls, Wall{CollisionType: "SPIN"})
	f.CommonGimmicks = append(f.CommonGimmicks, CommonGimmick{Hex: "XYZ"})

	want := sampleFile().CommonGimmickNames.Names()
	if _, err := f.Encode(); err == nil {
		t.Fatal("expected error for invalid hex name")
	}
	if got := f.CommonGimmickNames.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("failed encode changed hex names to %v", got)
	}
	if f.ColbinTypes.Len() != 0 {
		t.Errorf("failed encode interned collision types %v", f.ColbinTypes.Names())
	}

	f.CommonGimmicks[1].Hex = "0A"
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode after fix: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.CommonGimmickNames.Names(); !reflect.DeepEqual(got, []string{"0A1B2C3D", "0A"}) {
		t.Errorf("hex names %v", got)
	}
}

func TestEncodeCanonicalNames(t *testing.T) {
	t.Run("HexCase", func(t *testing.T) {
		f := New()
		f.CommonGimmickNames = names.NewHex("0A1B")
		f.CommonGimmicks = []CommonGimmick{{Hex: "0A1B"}, {Hex: "0a1b"}}

		data, err := f.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got := decoded.CommonGimmickNames.Names(); !reflect.DeepEqual(got, []string{"0A1B"}) {
			t.Errorf("hex names %v", got)
		}
		if decoded.CommonGimmicks[1].Hex != "0A1B" {
			t.Errorf("gimmick 1 hex %q", decoded.CommonGimmicks[1].Hex)
		}
	})

	t.Run("LongCollisionTypes", func(t *testing.T) {
		prefix := strings.Repeat("C", names.RecordSize)
		f := New()
		f.Walls = []Wall{{CollisionType: prefix + "_A"}, {CollisionType: prefix + "_B"}}

		data, err := f.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got := decoded.ColbinTypes.Names(); !reflect.DeepEqual(got, []string{prefix}) {
			t.Errorf("collision types %v", got)
		}
		for i, w := range decoded.Walls {
			if w.CollisionType != prefix {
				t.Errorf("wall %d type %q", i, w.CollisionType)
			}
		}
	})
}

func TestEncodeZeroValue(t *testing.T) {
	var f File
	f.Walls = []Wall{{CollisionType: "NML"}}
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Walls[0].CollisionType != "NML" {
		t.Errorf("got %+v", decoded.Walls)
	}
}

func TestStringTruncation(t *testing.T) {
	f := New()
	long := strings.Repeat("X", 70)
	f.Gimmicks = []Gimmick{{Name: strings.Repeat("G", 0x40), Params: Params{Strings: [3]string{long}}}}
	f.CommonGimmicks = []CommonGimmick{{Hex: "01", Params: CommonGimmickParams{CommonString: "TOOLONGSTRING"}}}

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.Gimmicks[0].Params.Strings[0]; got != long[:64] {
		t.Errorf("param string %q", got)
	}
	if got := decoded.Gimmicks[0].Name; len(got) != 0x30 {
		t.Errorf("gimmick name length %d", len(got))
	}
	if got := decoded.CommonGimmicks[0].Params.CommonString; got != "TOOLONGS" {
		t.Errorf("common string %q", got)
	}
}

func TestSetNormalizedVector(t *testing.T) {
	tests := []struct {
		start, end binio.Point2D
		want       binio.Point2D
	}{
		{binio.Point2D{X: 0, Y: 0}, binio.Point2D{X: 10, Y: 0}, binio.Point2D{X: 0, Y: 1}},
		{binio.Point2D{X: 0, Y: 0}, binio.Point2D{X: 0, Y: 4}, binio.Point2D{X: -1, Y: 0}},
		{binio.Point2D{X: 1, Y: 1}, binio.Point2D{X: 4, Y: 5}, binio.Point2D{X: -0.8, Y: 0.6}},
	}
	for _, tt := range tests {
		w := LabeledWall{Wall: Wall{Start: tt.start, End: tt.end}}
		w.SetNormalizedVector()
		got := w.NormalizedVector
		if math.Abs(float64(got.X-tt.want.X)) > 1e-6 || math.Abs(float64(got.Y-tt.want.Y)) > 1e-6 {
			t.Errorf("%v -> %v: got %+v, want %+v", tt.start, tt.end, got, tt.want)
		}
	}

	w := Wall{NormalizedVector: binio.Point2D{X: 9, Y: 9}}
	w.SetNormalizedVector()
	if w.NormalizedVector != (binio.Point2D{X: 9, Y: 9}) {
		t.Error("zero-length wall changed its vector")
	}
}

func TestCollisionTypes(t *testing.T) {
	if len(CollisionTypes) != 60 {
		t.Errorf("got %d collision types", len(CollisionTypes))
	}
	if !IsKnownCollisionType("NML_SOFT") || IsKnownCollisionType("NML_S") {
		t.Error("unexpected membership")
	}
}

func TestGimmickLookup(t *testing.T) {
	f := sampleFile()
	g, ok := f.Gimmick("START")
	if !ok || g.Position.X != 12 {
		t.Errorf("got %+v, %v", g, ok)
	}
	if _, ok := f.Gimmick("MISSING"); ok {
		t.Error("found missing gimmick")
	}
}
