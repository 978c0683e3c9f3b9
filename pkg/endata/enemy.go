package endata

import "github.com/goopsie/quiltFileTools/pkg/binio"

// EnemyParams is one block of behavior parameters. Their meaning depends on
// the enemy type and is mostly unknown.
type EnemyParams struct {
	Floats [3]float32 `yaml:"floats,flow"`
	Ints   [3]int32   `yaml:"ints,flow"`
}

func (p *EnemyParams) decodeFrom(b []byte) {
	for i := range p.Floats {
		p.Floats[i] = binio.F32(b, 4*i)
	}
	for i := range p.Ints {
		p.Ints[i] = binio.I32(b, 0xC+4*i)
	}
}

func (p *EnemyParams) encodeTo(b []byte) {
	for i, v := range p.Floats {
		binio.PutF32(b, 4*i, v)
	}
	for i, v := range p.Ints {
		binio.PutI32(b, 0xC+4*i, v)
	}
}

// Enemy is one placed enemy.
type Enemy struct {
	Name        string `yaml:"name"` // catalogue id, see EnemyName
	Behavior    string `yaml:"behavior"`
	PathName    string `yaml:"path_name"`
	BeadType    string `yaml:"bead_type"`
	BeadColor   string `yaml:"bead_color"` // see ColorLabel
	Direction   string `yaml:"direction"`
	Unk88       string `yaml:"unk_88"`
	Orientation string `yaml:"orientation"`

	Position1 binio.Point3D `yaml:"position_1"`
	Position2 binio.Point3D `yaml:"position_2"`
	Position3 binio.Point3D `yaml:"position_3"`

	Params [ParamCount]EnemyParams `yaml:"params"`
	Unk16C uint32                  `yaml:"unk_16c"`
	Unk170 uint32                  `yaml:"unk_170"`
}

// field layout of the fixed-width strings
var enemyStrings = []struct{ off, size int }{
	{0x00, 0x20}, // name
	{0x20, 0x20}, // behavior
	{0x40, 0x20}, // path name
	{0x60, 0x10}, // bead type
	{0x70, 0x10}, // bead color
	{0x80, 0x08}, // direction
	{0x88, 0x08},
	{0x90, 0x10}, // orientation
}

func (e *Enemy) strings() []*string {
	return []*string{&e.Name, &e.Behavior, &e.PathName, &e.BeadType, &e.BeadColor, &e.Direction, &e.Unk88, &e.Orientation}
}

// DecodeFrom reads an enemy from an EnemySize-byte record.
func (e *Enemy) DecodeFrom(b []byte) {
	for i, s := range e.strings() {
		f := enemyStrings[i]
		*s = binio.DecodeFixedString(b[f.off : f.off+f.size])
	}
	e.Position1 = binio.DecodePoint3D(b, 0xA0)
	e.Position2 = binio.DecodePoint3D(b, 0xAC)
	e.Position3 = binio.DecodePoint3D(b, 0xB8)
	for i := range e.Params {
		off := 0xC4 + i*EnemyParamsSize
		e.Params[i].decodeFrom(b[off : off+EnemyParamsSize])
	}
	e.Unk16C = binio.U32(b, 0x16C)
	e.Unk170 = binio.U32(b, 0x170)
}

// EncodeTo writes the enemy to an EnemySize-byte record. Strings longer than
// their field are truncated.
func (e *Enemy) EncodeTo(b []byte) {
	for i, s := range e.strings() {
		f := enemyStrings[i]
		binio.EncodeFixedString(b[f.off:f.off+f.size], *s)
	}
	e.Position1.EncodeTo(b, 0xA0)
	e.Position2.EncodeTo(b, 0xAC)
	e.Position3.EncodeTo(b, 0xB8)
	for i := range e.Params {
		off := 0xC4 + i*EnemyParamsSize
		e.Params[i].encodeTo(b[off : off+EnemyParamsSize])
	}
	binio.PutU32(b, 0x16C, e.Unk16C)
	binio.PutU32(b, 0x170, e.Unk170)
}

// DisplayName returns the catalogue name of the enemy.
func (e *Enemy) DisplayName() string {
	return EnemyName(e.Name)
}
