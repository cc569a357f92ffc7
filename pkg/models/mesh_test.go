package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

func cubeMesh() *Mesh {
	m := NewMesh("cube")
	m.Vertices = []math3d.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	m.Cells = [][]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	m.CalculateBounds()
	return m
}

func TestMeshValidate(t *testing.T) {
	m := cubeMesh()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid cube rejected: %v", err)
	}

	tests := []struct {
		name string
		cell []int
	}{
		{"past end", []int{0, 1, 8}},
		{"negative", []int{-1, 1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := m.Clone()
			bad.Cells = append(bad.Cells, tc.cell)
			err := bad.Validate()
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Validate() = %v, want ErrIndexOutOfRange", err)
			}
		})
	}
}

func TestFaceNormals(t *testing.T) {
	m := cubeMesh()
	normals := m.FaceNormals()
	want := []math3d.Vec3{
		{Z: -1}, {Z: 1}, {Y: -1}, {Y: 1}, {X: -1}, {X: 1},
	}
	if len(normals) != len(want) {
		t.Fatalf("got %d normals, want %d", len(normals), len(want))
	}
	for i, n := range normals {
		if n.Sub(want[i]).Len() > 1e-9 {
			t.Errorf("normal %d = %v, want %v", i, n, want[i])
		}
	}
}

func TestFaceNormalsDegenerate(t *testing.T) {
	verts := []math3d.Vec3{{}, {X: 1}, {X: 2}}
	cells := [][]int{{0, 1, 2}, {0, 1}}
	for i, n := range FaceNormals(verts, cells) {
		if n != math3d.Zero3() {
			t.Errorf("normal %d = %v, want zero", i, n)
		}
	}
}

func TestBoundsAndFit(t *testing.T) {
	m := NewMesh("box")
	m.Vertices = []math3d.Vec3{{X: 2, Y: 0, Z: 0}, {X: 6, Y: 2, Z: 1}}
	m.CalculateBounds()

	if c := m.Center(); c != math3d.V3(4, 1, 0.5) {
		t.Errorf("center = %v, want (4, 1, 0.5)", c)
	}
	if s := m.Size(); s != math3d.V3(4, 2, 1) {
		t.Errorf("size = %v, want (4, 2, 1)", s)
	}

	fit := m.FitTransform(2)
	lo := fit.MulVec4(math3d.Point(m.Vertices[0]))
	hi := fit.MulVec4(math3d.Point(m.Vertices[1]))
	if math.Abs(lo.X+1) > 1e-9 || math.Abs(hi.X-1) > 1e-9 {
		t.Errorf("fitted x range = [%v, %v], want [-1, 1]", lo.X, hi.X)
	}

	// The source mesh is not modified.
	if m.Vertices[0] != math3d.V3(2, 0, 0) {
		t.Error("FitTransform mutated the mesh")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := cubeMesh()
	clone := m.Clone()
	clone.Cells[0][0] = 7
	clone.Vertices[0].X = 42
	if m.Cells[0][0] != 0 || m.Vertices[0].X != -1 {
		t.Error("Clone shares data with the original")
	}
}
