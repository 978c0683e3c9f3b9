package mapdata

import (
	"fmt"
	"math"

	"github.com/goopsie/quiltFileTools/pkg/binio"
	"github.com/goopsie/quiltFileTools/pkg/names"
)

// Record sizes.
const (
	WallSize                = 0x20
	LabeledWallSize         = 0x24
	ParamsSize              = 0xD8
	CommonGimmickParamsSize = 0x180
	CommonGimmickSize       = 400
	GimmickSize             = 0x124
	BasePathSize            = 0x11C
	PathPointSize           = binio.Point2DSize
	ZoneSize                = 296
	CourseInfoSize          = 292
)

// Fixed string widths.
const (
	nameWidth         = 0x20
	gimmickNameWidth  = 0x30
	paramStringWidth  = 64
	commonStringWidth = 8
)

// Wall is a collision segment.
type Wall struct {
	Start            binio.Point2D `yaml:"start"`
	End              binio.Point2D `yaml:"end"`
	NormalizedVector binio.Point2D `yaml:"normalized_vector"` // perpendicular to End-Start
	CollisionType    string        `yaml:"collision_type"`
}

// SetNormalizedVector recomputes the stored normal from the wall's endpoints.
// The game expects (-dy, dx) of the unit direction; a zero-length wall is left unchanged.
func (w *Wall) SetNormalizedVector() {
	dx, dy := float64(w.End.X-w.Start.X), float64(w.End.Y-w.Start.Y)
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return
	}
	w.NormalizedVector = binio.Point2D{X: float32(-dy / mag), Y: float32(dx / mag)}
}

func decodeWall(rec []byte, types *names.Table) (Wall, error) {
	w := Wall{
		Start:            binio.DecodePoint2D(rec, 0x00),
		End:              binio.DecodePoint2D(rec, 0x08),
		NormalizedVector: binio.DecodePoint2D(rec, 0x10),
	}
	// 0x18 holds the wall's own index and is rewritten on encode.
	t, err := types.Lookup(int(binio.U32(rec, 0x1C)))
	if err != nil {
		return w, fmt.Errorf("collision type: %w", err)
	}
	w.CollisionType = t
	return w, nil
}

func (w *Wall) encodeTo(rec []byte, index int, types *names.Table) error {
	w.Start.EncodeTo(rec, 0x00)
	w.End.EncodeTo(rec, 0x08)
	w.NormalizedVector.EncodeTo(rec, 0x10)
	binio.PutU32(rec, 0x18, uint32(index))
	t, err := types.Index(w.CollisionType)
	if err != nil {
		return fmt.Errorf("collision type: %w", err)
	}
	binio.PutU32(rec, 0x1C, uint32(t))
	return nil
}

// LabeledWall is a wall with an additional label.
type LabeledWall struct {
	Wall  `yaml:",inline"`
	Label string `yaml:"label"`
}

func decodeLabeledWall(rec []byte, types, labels *names.Table) (LabeledWall, error) {
	w, err := decodeWall(rec[:WallSize], types)
	if err != nil {
		return LabeledWall{}, err
	}
	l, err := labels.Lookup(int(binio.U32(rec, 0x20)))
	if err != nil {
		return LabeledWall{}, fmt.Errorf("label: %w", err)
	}
	return LabeledWall{Wall: w, Label: l}, nil
}

func (w *LabeledWall) encodeTo(rec []byte, index int, types, labels *names.Table) error {
	if err := w.Wall.encodeTo(rec, index, types); err != nil {
		return err
	}
	l, err := labels.Index(w.Label)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	binio.PutU32(rec, 0x20, uint32(l))
	return nil
}

// Params is the generic parameter block shared by gimmicks, paths, zones and course infos.
type Params struct {
	Ints    [3]int32   `yaml:"ints"`
	Floats  [3]float32 `yaml:"floats"`
	Strings [3]string  `yaml:"strings"`
}

func decodeParams(rec []byte) Params {
	var p Params
	for i := range p.Ints {
		p.Ints[i] = binio.I32(rec, i*4)
	}
	for i := range p.Floats {
		p.Floats[i] = binio.F32(rec, 0xC+i*4)
	}
	for i := range p.Strings {
		off := 0x18 + i*paramStringWidth
		p.Strings[i] = binio.DecodeFixedString(rec[off : off+paramStringWidth])
	}
	return p
}

func (p *Params) encodeTo(rec []byte) {
	for i, v := range p.Ints {
		binio.PutI32(rec, i*4, v)
	}
	for i, v := range p.Floats {
		binio.PutF32(rec, 0xC+i*4, v)
	}
	for i, s := range p.Strings {
		off := 0x18 + i*paramStringWidth
		binio.EncodeFixedString(rec[off:off+paramStringWidth], s)
	}
}

// CommonGimmickParams is the larger parameter block of common gimmicks.
type CommonGimmickParams struct {
	CommonInts   [2]int32   `yaml:"common_ints"`
	CommonFloats [2]float32 `yaml:"common_floats"`
	CommonString string     `yaml:"common_string"`
	Ints         [5]int32   `yaml:"ints"`
	Floats       [5]float32 `yaml:"floats"`
	Strings      [5]string  `yaml:"strings"`
}

func decodeCommonGimmickParams(rec []byte) CommonGimmickParams {
	var p CommonGimmickParams
	for i := range p.CommonInts {
		p.CommonInts[i] = binio.I32(rec, i*4)
	}
	for i := range p.CommonFloats {
		p.CommonFloats[i] = binio.F32(rec, 0x08+i*4)
	}
	p.CommonString = binio.DecodeFixedString(rec[0x10 : 0x10+commonStringWidth])
	for i := range p.Ints {
		p.Ints[i] = binio.I32(rec, 0x18+i*4)
	}
	for i := range p.Floats {
		p.Floats[i] = binio.F32(rec, 0x2C+i*4)
	}
	for i := range p.Strings {
		off := 0x40 + i*paramStringWidth
		p.Strings[i] = binio.DecodeFixedString(rec[off : off+paramStringWidth])
	}
	return p
}

func (p *CommonGimmickParams) encodeTo(rec []byte) {
	for i, v := range p.CommonInts {
		binio.PutI32(rec, i*4, v)
	}
	for i, v := range p.CommonFloats {
		binio.PutF32(rec, 0x08+i*4, v)
	}
	binio.EncodeFixedString(rec[0x10:0x10+commonStringWidth], p.CommonString)
	for i, v := range p.Ints {
		binio.PutI32(rec, 0x18+i*4, v)
	}
	for i, v := range p.Floats {
		binio.PutF32(rec, 0x2C+i*4, v)
	}
	for i, s := range p.Strings {
		off := 0x40 + i*paramStringWidth
		binio.EncodeFixedString(rec[off:off+paramStringWidth], s)
	}
}

// CommonGimmick is an object identified by a hex name from the common gimmick table.
type CommonGimmick struct {
	Hex      string              `yaml:"hex"`
	Position binio.Point3D       `yaml:"position"`
	Params   CommonGimmickParams `yaml:"params"`
}

func decodeCommonGimmick(rec []byte, hexNames *names.Table) (CommonGimmick, error) {
	h, err := hexNames.Lookup(int(binio.U32(rec, 0x00)))
	if err != nil {
		return CommonGimmick{}, fmt.Errorf("name: %w", err)
	}
	return CommonGimmick{
		Hex:      h,
		Position: binio.DecodePoint3D(rec, 0x04),
		Params:   decodeCommonGimmickParams(rec[0x10:]),
	}, nil
}

func (g *CommonGimmick) encodeTo(rec []byte, hexNames *names.Table) error {
	i, err := hexNames.Index(g.Hex)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	binio.PutU32(rec, 0x00, uint32(i))
	g.Position.EncodeTo(rec, 0x04)
	g.Params.encodeTo(rec[0x10:])
	return nil
}

// Gimmick is a named object or trigger.
type Gimmick struct {
	Name     string        `yaml:"name"`
	Unk30    [0x10]byte    `yaml:"unk_30,flow"`
	Position binio.Point3D `yaml:"position"`
	Params   Params        `yaml:"params"`
}

func decodeGimmick(rec []byte) Gimmick {
	g := Gimmick{
		Name:     binio.DecodeFixedString(rec[:gimmickNameWidth]),
		Position: binio.DecodePoint3D(rec, 0x40),
		Params:   decodeParams(rec[0x4C:]),
	}
	copy(g.Unk30[:], rec[0x30:0x40])
	return g
}

func (g *Gimmick) encodeTo(rec []byte) {
	binio.EncodeFixedString(rec[:gimmickNameWidth], g.Name)
	copy(rec[0x30:0x40], g.Unk30[:])
	g.Position.EncodeTo(rec, 0x40)
	g.Params.encodeTo(rec[0x4C:])
}

// Path is a named polyline. Its record grows by PathPointSize per point.
type Path struct {
	Name     string          `yaml:"name"`
	PathType string          `yaml:"path_type"`
	Params   Params          `yaml:"params"`
	Points   []binio.Point2D `yaml:"points"`
}

// Size returns the encoded size of the path.
func (p *Path) Size() int {
	return BasePathSize + PathPointSize*len(p.Points)
}

// decodePath expects rec to span the whole record including points.
func decodePath(rec []byte) Path {
	p := Path{
		Name:     binio.DecodeFixedString(rec[:nameWidth]),
		PathType: binio.DecodeFixedString(rec[0x20:0x40]),
		Params:   decodeParams(rec[0x40:0x118]),
	}
	n := int(binio.U32(rec, 0x118))
	if n == 0 {
		return p
	}
	p.Points = make([]binio.Point2D, n)
	for i := range p.Points {
		p.Points[i] = binio.DecodePoint2D(rec, BasePathSize+i*PathPointSize)
	}
	return p
}

func (p *Path) encodeTo(rec []byte) {
	binio.EncodeFixedString(rec[:nameWidth], p.Name)
	binio.EncodeFixedString(rec[0x20:0x40], p.PathType)
	p.Params.encodeTo(rec[0x40:0x118])
	binio.PutU32(rec, 0x118, uint32(len(p.Points)))
	for i, pt := range p.Points {
		pt.EncodeTo(rec, BasePathSize+i*PathPointSize)
	}
}

// Zone is a named rectangular region.
type Zone struct {
	Name        string        `yaml:"name"`
	Unk20       string        `yaml:"unk_20"`
	Params      Params        `yaml:"params"`
	BoundsStart binio.Point2D `yaml:"bounds_start"`
	BoundsEnd   binio.Point2D `yaml:"bounds_end"`
}

func decodeZone(rec []byte) Zone {
	return Zone{
		Name:        binio.DecodeFixedString(rec[:nameWidth]),
		Unk20:       binio.DecodeFixedString(rec[0x20:0x40]),
		Params:      decodeParams(rec[0x40:0x118]),
		BoundsStart: binio.DecodePoint2D(rec, 0x118),
		BoundsEnd:   binio.DecodePoint2D(rec, 0x120),
	}
}

func (z *Zone) encodeTo(rec []byte) {
	binio.EncodeFixedString(rec[:nameWidth], z.Name)
	binio.EncodeFixedString(rec[0x20:0x40], z.Unk20)
	z.Params.encodeTo(rec[0x40:0x118])
	z.BoundsStart.EncodeTo(rec, 0x118)
	z.BoundsEnd.EncodeTo(rec, 0x120)
}

// CourseInfo is a named point carrying course metadata.
type CourseInfo struct {
	Name     string        `yaml:"name"`
	Unk20    string        `yaml:"unk_20"`
	Params   Params        `yaml:"params"`
	Position binio.Point3D `yaml:"position"`
}

func decodeCourseInfo(rec []byte) CourseInfo {
	return CourseInfo{
		Name:     binio.DecodeFixedString(rec[:nameWidth]),
		Unk20:    binio.DecodeFixedString(rec[0x20:0x40]),
		Params:   decodeParams(rec[0x40:0x118]),
		Position: binio.DecodePoint3D(rec, 0x118),
	}
}

func (c *CourseInfo) encodeTo(rec []byte) {
	binio.EncodeFixedString(rec[:nameWidth], c.Name)
	binio.EncodeFixedString(rec[0x20:0x40], c.Unk20)
	c.Params.encodeTo(rec[0x40:0x118])
	c.Position.EncodeTo(rec, 0x118)
}
