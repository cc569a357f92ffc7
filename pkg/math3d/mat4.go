package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order, the layout used by
// gl-matrix and OpenGL.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// Points are column vectors, so a transform applies as M·v and a chain
// written A.Mul(B) applies B first.
type Mat4 [16]float64

// identity is never written to; Identity returns a copy.
var identity = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return identity
}

// FromColumns assembles a matrix from its four columns.
func FromColumns(c0, c1, c2, c3 Vec4) Mat4 {
	return Mat4{
		c0.X, c0.Y, c0.Z, c0.W,
		c1.X, c1.Y, c1.Z, c1.W,
		c2.X, c2.Y, c2.Z, c2.W,
		c3.X, c3.Y, c3.Z, c3.W,
	}
}

// IsZero reports whether every element is zero. A zero Mat4 is the
// "not supplied" value in option structs.
func (m Mat4) IsZero() bool {
	return m == Mat4{}
}

// OrIdentity returns m, or the identity when m is the zero matrix.
func (m Mat4) OrIdentity() Mat4 {
	if m.IsZero() {
		return identity
	}
	return m
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := identity
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	m := identity
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return FromColumns(
		V4(1, 0, 0, 0),
		V4(0, c, s, 0),
		V4(0, -s, c, 0),
		V4(0, 0, 0, 1),
	)
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return FromColumns(
		V4(c, 0, -s, 0),
		V4(0, 1, 0, 0),
		V4(s, 0, c, 0),
		V4(0, 0, 0, 1),
	)
}

// LookAt creates a right-handed view matrix looking from eye towards
// center. The camera looks down its local -Z axis.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return FromColumns(
		V4(s.X, u.X, -f.X, 0),
		V4(s.Y, u.Y, -f.Y, 0),
		V4(s.Z, u.Z, -f.Z, 0),
		V4(-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1),
	)
}

// Perspective creates an OpenGL-style perspective projection.
// fovy is the vertical field of view in radians and aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)

	return FromColumns(
		V4(f/aspect, 0, 0, 0),
		V4(0, f, 0, 0),
		V4(0, 0, (far+near)*nf, -1),
		V4(0, 0, 2*far*near*nf, 0),
	)
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 returns M·v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}
