// Package mapdata reads and writes mapbin level geometry.
//
// A mapbin file is a 0x58-byte header followed by seven entity tables (walls,
// labeled walls, common gimmicks, gimmicks, paths, zones, course infos) and
// three name tables. Walls and common gimmicks refer to names by table index;
// in memory they carry the name itself, and Encode rebuilds the indices.
package mapdata

import (
	"fmt"

	"github.com/goopsie/quiltFileTools/pkg/binio"
	"github.com/goopsie/quiltFileTools/pkg/names"
)

// HeaderSize is the fixed binary size of a mapbin header.
const HeaderSize = 0x58

// DefaultVersion is the format version written by the game's own files.
const DefaultVersion float32 = 3.3

// Section locates one entity table.
type Section struct {
	Count  uint32
	Offset uint32
}

// Header represents the header of a mapbin file.
type Header struct {
	Version        float32
	BoundsMin      binio.Point2D
	BoundsMax      binio.Point2D
	Walls          Section
	LabeledWalls   Section
	CommonGimmicks Section
	Gimmicks       Section
	Paths          Section
	Zones          Section
	CourseInfos    Section

	CommonGimmickNamesOffset uint32
	ColbinTypesOffset        uint32
	WallLabelsOffset         uint32
}

func (h *Header) sections() []*Section {
	return []*Section{&h.Walls, &h.LabeledWalls, &h.CommonGimmicks, &h.Gimmicks, &h.Paths, &h.Zones, &h.CourseInfos}
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	binio.PutF32(buf, 0x00, h.Version)
	h.BoundsMin.EncodeTo(buf, 0x04)
	h.BoundsMax.EncodeTo(buf, 0x0C)
	for i, s := range h.sections() {
		binio.PutU32(buf, 0x14+i*8, s.Count)
		binio.PutU32(buf, 0x18+i*8, s.Offset)
	}
	binio.PutU32(buf, 0x4C, h.CommonGimmickNamesOffset)
	binio.PutU32(buf, 0x50, h.ColbinTypesOffset)
	binio.PutU32(buf, 0x54, h.WallLabelsOffset)
}

// DecodeFrom reads the header from the given buffer.
func (h *Header) DecodeFrom(data []byte) {
	h.Version = binio.F32(data, 0x00)
	h.BoundsMin = binio.DecodePoint2D(data, 0x04)
	h.BoundsMax = binio.DecodePoint2D(data, 0x0C)
	for i, s := range h.sections() {
		s.Count = binio.U32(data, 0x14+i*8)
		s.Offset = binio.U32(data, 0x18+i*8)
	}
	h.CommonGimmickNamesOffset = binio.U32(data, 0x4C)
	h.ColbinTypesOffset = binio.U32(data, 0x50)
	h.WallLabelsOffset = binio.U32(data, 0x54)
}

// UnmarshalBinary decodes the header from binary format.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return &binio.RangeError{What: "header", Offset: 0, Size: HeaderSize, Len: len(data)}
	}
	h.DecodeFrom(data)
	return nil
}

// File is decoded map geometry.
type File struct {
	Version   float32       `yaml:"version"`
	BoundsMin binio.Point2D `yaml:"bounds_min"`
	BoundsMax binio.Point2D `yaml:"bounds_max"`

	Walls          []Wall          `yaml:"walls"`
	LabeledWalls   []LabeledWall   `yaml:"labeled_walls"`
	CommonGimmicks []CommonGimmick `yaml:"common_gimmicks"`
	Gimmicks       []Gimmick       `yaml:"gimmicks"`
	Paths          []Path          `yaml:"paths"`
	Zones          []Zone          `yaml:"zones"`
	CourseInfos    []CourseInfo    `yaml:"course_infos"`

	CommonGimmickNames *names.Table `yaml:"common_gimmick_names"`
	ColbinTypes        *names.Table `yaml:"colbin_types"`
	WallLabels         *names.Table `yaml:"wall_labels"`
}

// New returns an empty map at DefaultVersion.
func New() *File {
	return &File{
		Version:            DefaultVersion,
		CommonGimmickNames: names.NewHex(),
		ColbinTypes:        names.New(),
		WallLabels:         names.New(),
	}
}

// Decode parses a mapbin file. Name tables are read first so entity
// references can be resolved.
func Decode(data []byte) (*File, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	f := New()
	f.Version = h.Version
	f.BoundsMin = h.BoundsMin
	f.BoundsMax = h.BoundsMax

	tables := []struct {
		table  *names.Table
		offset uint32
		what   string
	}{
		{f.CommonGimmickNames, h.CommonGimmickNamesOffset, "common gimmick names"},
		{f.ColbinTypes, h.ColbinTypesOffset, "colbin types"},
		{f.WallLabels, h.WallLabelsOffset, "wall labels"},
	}
	for _, t := range tables {
		if err := readTable(data, t.table, int(t.offset), t.what); err != nil {
			return nil, err
		}
	}

	var err error
	if f.Walls, err = decodeRecords(data, h.Walls, WallSize, "wall", func(rec []byte) (Wall, error) {
		return decodeWall(rec, f.ColbinTypes)
	}); err != nil {
		return nil, err
	}
	if f.LabeledWalls, err = decodeRecords(data, h.LabeledWalls, LabeledWallSize, "labeled wall", func(rec []byte) (LabeledWall, error) {
		return decodeLabeledWall(rec, f.ColbinTypes, f.WallLabels)
	}); err != nil {
		return nil, err
	}
	if f.CommonGimmicks, err = decodeRecords(data, h.CommonGimmicks, CommonGimmickSize, "common gimmick", func(rec []byte) (CommonGimmick, error) {
		return decodeCommonGimmick(rec, f.CommonGimmickNames)
	}); err != nil {
		return nil, err
	}
	if f.Gimmicks, err = decodeRecords(data, h.Gimmicks, GimmickSize, "gimmick", infallible(decodeGimmick)); err != nil {
		return nil, err
	}
	if f.Paths, err = decodePaths(data, h.Paths); err != nil {
		return nil, err
	}
	if f.Zones, err = decodeRecords(data, h.Zones, ZoneSize, "zone", infallible(decodeZone)); err != nil {
		return nil, err
	}
	if f.CourseInfos, err = decodeRecords(data, h.CourseInfos, CourseInfoSize, "course info", infallible(decodeCourseInfo)); err != nil {
		return nil, err
	}

	return f, nil
}

func readTable(data []byte, t *names.Table, offset int, what string) error {
	count, err := binio.ReadU32(data, offset, what+" count")
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if _, err := binio.Slice(data, offset+4, int(count)*names.RecordSize, what); err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if err := t.Decode(data, int(count), names.RecordSize, offset+4); err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}

func infallible[T any](dec func([]byte) T) func([]byte) (T, error) {
	return func(rec []byte) (T, error) { return dec(rec), nil }
}

// decodeRecords decodes a table of fixed-size records.
func decodeRecords[T any](data []byte, s Section, size int, what string, dec func([]byte) (T, error)) ([]T, error) {
	if s.Count == 0 {
		return nil, nil
	}
	if _, err := binio.Slice(data, int(s.Offset), int(s.Count)*size, what+" table"); err != nil {
		return nil, fmt.Errorf("read %s table: %w", what, err)
	}
	out := make([]T, s.Count)
	for i := range out {
		off := int(s.Offset) + i*size
		v, err := dec(data[off : off+size])
		if err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", what, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// decodePaths walks the variable-length path table. Each path starts
// BasePathSize bytes after the previous one plus the previous one's points.
func decodePaths(data []byte, s Section) ([]Path, error) {
	if s.Count == 0 {
		return nil, nil
	}
	out := make([]Path, 0, min(int(s.Count), len(data)/BasePathSize))
	extra := 0
	for i := 0; i < int(s.Count); i++ {
		start := int(s.Offset) + i*BasePathSize + extra
		what := fmt.Sprintf("path %d", i)
		n, err := binio.ReadU32(data, start+0x118, what)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", what, err)
		}
		rec, err := binio.Slice(data, start, BasePathSize+int(n)*PathPointSize, what)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", what, err)
		}
		out = append(out, decodePath(rec))
		extra += int(n) * PathPointSize
	}
	return out, nil
}

// Gimmick returns the first gimmick named name.
func (f *File) Gimmick(name string) (*Gimmick, bool) {
	for i := range f.Gimmicks {
		if f.Gimmicks[i].Name == name {
			return &f.Gimmicks[i], true
		}
	}
	return nil, false
}

// internNames adds every name referenced by an entity to a copy of its
// table. f is left untouched; Encode commits the copies once it succeeds.
func (f *File) internNames() (hexNames, types, labels *names.Table, err error) {
	hexNames, types, labels = names.NewHex(), names.New(), names.New()
	if f.CommonGimmickNames != nil {
		hexNames = f.CommonGimmickNames.Clone()
	}
	if f.ColbinTypes != nil {
		types = f.ColbinTypes.Clone()
	}
	if f.WallLabels != nil {
		labels = f.WallLabels.Clone()
	}

	for i := range f.Walls {
		if _, err := types.Intern(f.Walls[i].CollisionType); err != nil {
			return nil, nil, nil, fmt.Errorf("wall %d: %w", i, err)
		}
	}
	for i := range f.LabeledWalls {
		if _, err := types.Intern(f.LabeledWalls[i].CollisionType); err != nil {
			return nil, nil, nil, fmt.Errorf("labeled wall %d: %w", i, err)
		}
		if _, err := labels.Intern(f.LabeledWalls[i].Label); err != nil {
			return nil, nil, nil, fmt.Errorf("labeled wall %d: %w", i, err)
		}
	}
	for i := range f.CommonGimmicks {
		if _, err := hexNames.Intern(f.CommonGimmicks[i].Hex); err != nil {
			return nil, nil, nil, fmt.Errorf("common gimmick %d: %w", i, err)
		}
	}
	return hexNames, types, labels, nil
}

// Header returns the header Encode would write for f. Offsets are cumulative
// in table order, with the name tables after the course infos.
func (f *File) Header() Header {
	h := Header{Version: f.Version, BoundsMin: f.BoundsMin, BoundsMax: f.BoundsMax}

	pathBytes := 0
	for i := range f.Paths {
		pathBytes += f.Paths[i].Size()
	}

	sizes := []struct {
		count int
		bytes int
	}{
		{len(f.Walls), WallSize * len(f.Walls)},
		{len(f.LabeledWalls), LabeledWallSize * len(f.LabeledWalls)},
		{len(f.CommonGimmicks), CommonGimmickSize * len(f.CommonGimmicks)},
		{len(f.Gimmicks), GimmickSize * len(f.Gimmicks)},
		{len(f.Paths), pathBytes},
		{len(f.Zones), ZoneSize * len(f.Zones)},
		{len(f.CourseInfos), CourseInfoSize * len(f.CourseInfos)},
	}

	off := HeaderSize
	for i, s := range h.sections() {
		s.Count = uint32(sizes[i].count)
		s.Offset = uint32(off)
		off += sizes[i].bytes
	}

	h.CommonGimmickNamesOffset = uint32(off)
	off += tableSize(f.CommonGimmickNames)
	h.ColbinTypesOffset = uint32(off)
	off += tableSize(f.ColbinTypes)
	h.WallLabelsOffset = uint32(off)
	return h
}

func tableSize(t *names.Table) int {
	if t == nil {
		return 4
	}
	return t.EncodedSize()
}

// Encode serializes f. Names referenced by entities but missing from the
// name tables are appended to them, so a successful Encode mutates f. On
// failure f is unchanged.
func (f *File) Encode() ([]byte, error) {
	hexNames, types, labels, err := f.internNames()
	if err != nil {
		return nil, fmt.Errorf("intern names: %w", err)
	}

	staged := *f
	staged.CommonGimmickNames, staged.ColbinTypes, staged.WallLabels = hexNames, types, labels
	buf, err := staged.encode()
	if err != nil {
		return nil, err
	}

	f.CommonGimmickNames, f.ColbinTypes, f.WallLabels = hexNames, types, labels
	return buf, nil
}

func (f *File) encode() ([]byte, error) {
	h := f.Header()

	buf := make([]byte, h.CommonGimmickNamesOffset)
	h.EncodeTo(buf)

	for i := range f.Walls {
		off := int(h.Walls.Offset) + i*WallSize
		if err := f.Walls[i].encodeTo(buf[off:off+WallSize], i, f.ColbinTypes); err != nil {
			return nil, fmt.Errorf("encode wall %d: %w", i, err)
		}
	}
	for i := range f.LabeledWalls {
		off := int(h.LabeledWalls.Offset) + i*LabeledWallSize
		if err := f.LabeledWalls[i].encodeTo(buf[off:off+LabeledWallSize], i, f.ColbinTypes, f.WallLabels); err != nil {
			return nil, fmt.Errorf("encode labeled wall %d: %w", i, err)
		}
	}
	for i := range f.CommonGimmicks {
		off := int(h.CommonGimmicks.Offset) + i*CommonGimmickSize
		if err := f.CommonGimmicks[i].encodeTo(buf[off:off+CommonGimmickSize], f.CommonGimmickNames); err != nil {
			return nil, fmt.Errorf("encode common gimmick %d: %w", i, err)
		}
	}
	for i := range f.Gimmicks {
		off := int(h.Gimmicks.Offset) + i*GimmickSize
		f.Gimmicks[i].encodeTo(buf[off : off+GimmickSize])
	}
	off := int(h.Paths.Offset)
	for i := range f.Paths {
		size := f.Paths[i].Size()
		f.Paths[i].encodeTo(buf[off : off+size])
		off += size
	}
	for i := range f.Zones {
		off := int(h.Zones.Offset) + i*ZoneSize
		f.Zones[i].encodeTo(buf[off : off+ZoneSize])
	}
	for i := range f.CourseInfos {
		off := int(h.CourseInfos.Offset) + i*CourseInfoSize
		f.CourseInfos[i].encodeTo(buf[off : off+CourseInfoSize])
	}

	var err error
	for _, t := range []*names.Table{f.CommonGimmickNames, f.ColbinTypes, f.WallLabels} {
		if buf, err = t.AppendTo(buf); err != nil {
			return nil, fmt.Errorf("encode name table: %w", err)
		}
	}

	return binio.Pad(buf), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f *File) MarshalBinary() ([]byte, error) {
	return f.Encode()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *File) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}
