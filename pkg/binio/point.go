package binio

// Point2DSize and Point3DSize are the encoded sizes of the point types.
const (
	Point2DSize = 8
	Point3DSize = 12
)

// Point2D is a pair of big-endian f32 coordinates.
type Point2D struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// Point3D is a triple of big-endian f32 coordinates.
type Point3D struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// DecodePoint2D reads a Point2D at off.
func DecodePoint2D(b []byte, off int) Point2D {
	return Point2D{X: F32(b, off), Y: F32(b, off+4)}
}

// EncodeTo writes p at off.
func (p Point2D) EncodeTo(b []byte, off int) {
	PutF32(b, off, p.X)
	PutF32(b, off+4, p.Y)
}

// To3D returns p with a zero Z.
func (p Point2D) To3D() Point3D {
	return Point3D{X: p.X, Y: p.Y}
}

// DecodePoint3D reads a Point3D at off.
func DecodePoint3D(b []byte, off int) Point3D {
	return Point3D{X: F32(b, off), Y: F32(b, off+4), Z: F32(b, off+8)}
}

// EncodeTo writes p at off.
func (p Point3D) EncodeTo(b []byte, off int) {
	PutF32(b, off, p.X)
	PutF32(b, off+4, p.Y)
	PutF32(b, off+8, p.Z)
}

// To2D drops Z.
func (p Point3D) To2D() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}
