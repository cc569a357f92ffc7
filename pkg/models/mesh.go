// Package models provides mesh representation and loading for meshsvg.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

// ErrIndexOutOfRange is returned when a cell references a vertex that does
// not exist.
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// normalEpsilon is the cross-product length below which a face is treated
// as degenerate and given a zero normal.
const normalEpsilon = 1e-6

// Mesh is a polygon soup over a shared vertex arena. Cells hold indices
// into Vertices and own no vertex data themselves, so neighbouring cells
// share their edge vertices.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Cells    [][]int

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]math3d.Vec3, 0),
		Cells:    make([][]int, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CellCount returns the number of polygonal cells.
func (m *Mesh) CellCount() int {
	return len(m.Cells)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Validate checks that every cell index is within the vertex arena.
func (m *Mesh) Validate() error {
	return ValidateCells(len(m.Vertices), m.Cells)
}

// ValidateCells checks cells against a vertex arena of n entries.
// The returned error wraps ErrIndexOutOfRange and names the first
// offending cell.
func ValidateCells(n int, cells [][]int) error {
	for ci, cell := range cells {
		for _, vi := range cell {
			if vi < 0 || vi >= n {
				return fmt.Errorf("cell %d: index %d not in [0,%d): %w", ci, vi, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// FitTransform returns a model matrix that centres the mesh on the origin
// and scales its largest dimension to size. The mesh itself is untouched.
func (m *Mesh) FitTransform(size float64) math3d.Mat4 {
	ext := m.Size()
	maxDim := max(ext.X, ext.Y, ext.Z)
	if maxDim <= 0 {
		return math3d.Translate(m.Center().Negate())
	}
	return math3d.ScaleUniform(size / maxDim).Mul(math3d.Translate(m.Center().Negate()))
}

// FaceNormals returns one normal per cell of m.
func (m *Mesh) FaceNormals() []math3d.Vec3 {
	return FaceNormals(m.Vertices, m.Cells)
}

// FaceNormals computes a unit normal per cell from its first three
// vertices, (v1-v0) × (v2-v0). Cells with fewer than three vertices or a
// vanishing cross product get the zero vector. Indices must already be
// validated.
func FaceNormals(vertices []math3d.Vec3, cells [][]int) []math3d.Vec3 {
	normals := make([]math3d.Vec3, len(cells))
	for i, c := range cells {
		if len(c) < 3 {
			continue
		}
		v0 := vertices[c[0]]
		n := vertices[c[1]].Sub(v0).Cross(vertices[c[2]].Sub(v0))
		if l := n.Len(); l > normalEpsilon {
			normals[i] = n.Scale(1 / l)
		}
	}
	return normals
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]math3d.Vec3, len(m.Vertices)),
		Cells:     make([][]int, len(m.Cells)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	for i, c := range m.Cells {
		clone.Cells[i] = append([]int(nil), c...)
	}
	return clone
}
