package render

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
)

func vec2Near(a, b math3d.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// gridMesh builds an n×n grid of quads in the unit clip square with
// pseudo-random depths in (0, 1).
func gridMesh(n int, seed uint64) ([]math3d.Vec3, [][]int) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	verts := make([]math3d.Vec3, 0, (n+1)*(n+1))
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			x := -1.2 + 2.4*float64(i)/float64(n)
			y := -1.2 + 2.4*float64(j)/float64(n)
			verts = append(verts, math3d.V3(x, y, 0.05+0.9*rng.Float64()))
		}
	}
	cells := make([][]int, 0, n*n)
	for j := range n {
		for i := range n {
			a := j*(n+1) + i
			cells = append(cells, []int{a, a + 1, a + n + 2, a + n + 1})
		}
	}
	return verts, cells
}

func TestRenderBoundaryTriangle(t *testing.T) {
	verts := []math3d.Vec3{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0.5}}
	frame, err := Render(verts, [][]int{{0, 1, 2}}, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(frame.Polygons) != 1 {
		t.Fatalf("got %d polygons, want 1 (stats %+v)", len(frame.Polygons), frame.Stats)
	}

	p := frame.Polygons[0]
	if p.Depth != 0.5 {
		t.Errorf("depth = %v, want 0.5", p.Depth)
	}
	want := []math3d.Vec2{{X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 0}}
	if len(p.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(p.Points), len(want))
	}
	for i := range want {
		if !vec2Near(p.Points[i], want[i]) {
			t.Errorf("point %d = %v, want %v", i, p.Points[i], want[i])
		}
	}
}

func TestRenderBehindEye(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.Zero3())
	cam.LookAt(math3d.V3(0, 0, -1))
	cam.SetFOV(math.Pi / 2)
	cam.SetClipPlanes(1, 10)

	verts := []math3d.Vec3{
		{X: -1, Y: -1, Z: 5}, {X: 1, Y: -1, Z: 5}, {X: 0, Y: 1, Z: 5},
		{X: -1, Y: -1, Z: -5}, {X: 1, Y: -1, Z: -5}, {X: 0, Y: 1, Z: -5},
	}
	cells := [][]int{{0, 1, 2}, {3, 4, 5}}

	frame, err := Render(verts, cells, cam.Apply(Options{}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Stats.Culled != 1 {
		t.Errorf("culled = %d, want 1", frame.Stats.Culled)
	}
	if len(frame.Polygons) != 1 || frame.Polygons[0].Cell != 1 {
		t.Fatalf("want only cell 1 emitted, got %+v", frame.Polygons)
	}
}

func TestRenderDepthOrder(t *testing.T) {
	verts := []math3d.Vec3{
		{X: -0.5, Y: -0.5, Z: 0.2}, {X: 0.5, Y: -0.5, Z: 0.2}, {X: 0, Y: 0.5, Z: 0.2},
		{X: -0.5, Y: -0.5, Z: 0.8}, {X: 0.5, Y: -0.5, Z: 0.8}, {X: 0, Y: 0.5, Z: 0.8},
	}
	cells := [][]int{{0, 1, 2}, {3, 4, 5}}

	tests := []struct {
		name   string
		order  SortOrder
		cells  []int
		depths []float64
	}{
		{"back to front", BackToFront, []int{1, 0}, []float64{0.8, 0.2}},
		{"front to back", FrontToBack, []int{0, 1}, []float64{0.2, 0.8}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Render(verts, cells, Options{Order: tc.order})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			var gotCells []int
			var gotDepths []float64
			for _, p := range frame.Polygons {
				gotCells = append(gotCells, p.Cell)
				gotDepths = append(gotDepths, p.Depth)
			}
			if !slices.Equal(gotCells, tc.cells) {
				t.Errorf("cells = %v, want %v", gotCells, tc.cells)
			}
			for i := range tc.depths {
				if math.Abs(gotDepths[i]-tc.depths[i]) > 1e-12 {
					t.Errorf("depths = %v, want %v", gotDepths, tc.depths)
					break
				}
			}
		})
	}
}

func TestRenderStableTies(t *testing.T) {
	verts := []math3d.Vec3{
		{X: -0.5, Y: -0.5, Z: 0.4}, {X: 0.5, Y: -0.5, Z: 0.4}, {X: 0, Y: 0.5, Z: 0.4},
	}
	cells := [][]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}}

	for _, order := range []SortOrder{BackToFront, FrontToBack} {
		frame, err := Render(verts, cells, Options{Order: order})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		for i, p := range frame.Polygons {
			if p.Cell != i {
				t.Errorf("%v: position %d holds cell %d", order, i, p.Cell)
			}
		}
	}
}

func TestRenderDepthFilter(t *testing.T) {
	// Lies on the near plane: depth key 0.
	verts := []math3d.Vec3{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0, Y: 0.5}}
	cells := [][]int{{0, 1, 2}}

	frame, err := Render(verts, cells, Options{Filter: FilterPositive})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Stats.Filtered != 1 || len(frame.Polygons) != 0 {
		t.Errorf("positive filter: stats %+v", frame.Stats)
	}

	frame, err = Render(verts, cells, Options{Filter: FilterFinite})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Stats.Emitted != 1 || frame.Polygons[0].Depth != 0 {
		t.Errorf("finite filter: stats %+v", frame.Stats)
	}
}

func TestRenderDegenerate(t *testing.T) {
	// Zero w row: every vertex lands at w = 0.
	proj := math3d.Identity()
	proj[15] = 0

	verts := []math3d.Vec3{{}, {X: 0.5}, {X: 0.6}, {X: 0.5, Y: 0.1}}
	cells := [][]int{
		{0, 0, 0}, // survives clipping at the origin, NaN after the divide
		{1, 2, 3}, // x > w = 0 everywhere, culled
		{0, 1},    // a single point survives
	}

	frame, err := Render(verts, cells, Options{Projection: proj, Filter: FilterFinite})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := Stats{Cells: 3, Culled: 1, Degenerate: 2}
	if frame.Stats != want {
		t.Errorf("stats = %+v, want %+v", frame.Stats, want)
	}
	if len(frame.Polygons) != 0 {
		t.Errorf("degenerate cells emitted: %+v", frame.Polygons)
	}
}

func TestRenderIndexOutOfRange(t *testing.T) {
	verts := []math3d.Vec3{{}, {X: 1}, {Y: 1}}

	tests := []struct {
		name  string
		cells [][]int
	}{
		{"too large", [][]int{{0, 1, 2}, {0, 1, 3}}},
		{"negative", [][]int{{-1, 1, 2}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Render(verts, tc.cells, Options{})
			if !errors.Is(err, models.ErrIndexOutOfRange) {
				t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
			}
			if frame != nil {
				t.Error("frame returned alongside error")
			}
		})
	}
}

func TestRenderWorkerIndependence(t *testing.T) {
	verts, cells := gridMesh(40, 3)
	normals := models.FaceNormals(verts, cells)

	base, err := Render(verts, cells, Options{Normals: normals, Workers: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, workers := range []int{0, 2, 7, 16} {
		got, err := Render(verts, cells, Options{Normals: normals, Workers: workers})
		if err != nil {
			t.Fatalf("Render(workers=%d): %v", workers, err)
		}
		if !reflect.DeepEqual(base, got) {
			t.Errorf("workers=%d output differs from sequential", workers)
		}
	}
}

func TestRenderProperties(t *testing.T) {
	verts, cells := gridMesh(30, 9)
	orig := slices.Clone(verts)
	vp := NewViewport(640, 480)

	for _, order := range []SortOrder{BackToFront, FrontToBack} {
		frame, err := Render(verts, cells, Options{Viewport: vp, Order: order})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		s := frame.Stats
		if s.Emitted+s.Culled+s.Degenerate+s.Filtered != s.Cells || s.Cells != len(cells) {
			t.Errorf("stats do not add up: %+v", s)
		}

		seen := make(map[int]bool)
		for i, p := range frame.Polygons {
			if seen[p.Cell] {
				t.Fatalf("cell %d emitted twice", p.Cell)
			}
			seen[p.Cell] = true

			if i > 0 {
				prev := frame.Polygons[i-1].Depth
				if order == BackToFront && prev < p.Depth || order == FrontToBack && prev > p.Depth {
					t.Fatalf("%v: depth %v follows %v at %d", order, p.Depth, prev, i)
				}
			}
			if len(p.Points) < 3 {
				t.Errorf("cell %d has %d points", p.Cell, len(p.Points))
			}
			for _, pt := range p.Points {
				if pt.X < -1e-9 || pt.X > 640+1e-9 || pt.Y < -1e-9 || pt.Y > 480+1e-9 {
					t.Fatalf("cell %d point %v outside viewport", p.Cell, pt)
				}
			}
		}
	}

	if !slices.Equal(orig, verts) {
		t.Error("Render modified its input vertices")
	}
}

func TestRenderMeshShading(t *testing.T) {
	m := cubeMesh()
	cam := NewCamera()
	cam.SetPosition(math3d.V3(3, 4, 5))
	cam.LookAt(math3d.Zero3())

	frame, err := RenderMesh(m, cam.Apply(Options{Viewport: NewViewport(512, 512)}), true)
	if err != nil {
		t.Fatalf("RenderMesh: %v", err)
	}
	if frame.Stats.Emitted != len(m.Cells) {
		t.Errorf("emitted %d of %d faces", frame.Stats.Emitted, len(m.Cells))
	}

	normals := m.FaceNormals()
	for _, p := range frame.Polygons {
		if !p.Shaded {
			t.Fatalf("cell %d not shaded", p.Cell)
		}
		if want := Shade(normals[p.Cell]); p.Fill != want {
			t.Errorf("cell %d fill = %v, want %v", p.Cell, p.Fill, want)
		}
	}

	frame, err = RenderMesh(m, cam.Apply(Options{}), false)
	if err != nil {
		t.Fatalf("RenderMesh: %v", err)
	}
	for _, p := range frame.Polygons {
		if p.Shaded {
			t.Fatalf("cell %d shaded without normals", p.Cell)
		}
	}
}

func TestRenderMeshInvalid(t *testing.T) {
	m := models.NewMesh("bad")
	m.Vertices = []math3d.Vec3{{}, {X: 1}}
	m.Cells = [][]int{{0, 1, 2}}

	_, err := RenderMesh(m, Options{}, true)
	if !errors.Is(err, models.ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the mesh", err)
	}
}

func TestRenderLogsStats(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	verts := []math3d.Vec3{{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5}, {Y: 0.5, Z: 0.5}}
	if _, err := Render(verts, [][]int{{0, 1, 2}}, Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"msg=render", "cells=1", "emitted=1", "order=back-to-front"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

// cubeMesh is a unit cube centred on the origin with outward-facing quads.
func cubeMesh() *models.Mesh {
	m := models.NewMesh("cube")
	m.Vertices = []math3d.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
	}
	m.Cells = [][]int{
		{4, 5, 6, 7}, // +z
		{1, 0, 3, 2}, // -z
		{5, 1, 2, 6}, // +x
		{0, 4, 7, 3}, // -x
		{7, 6, 2, 3}, // +y
		{0, 1, 5, 4}, // -y
	}
	m.CalculateBounds()
	return m
}

func BenchmarkRender(b *testing.B) {
	verts, cells := gridMesh(100, 1)
	opts := Options{Viewport: NewViewport(512, 512)}

	for b.Loop() {
		_, _ = Render(verts, cells, opts)
	}
}

func BenchmarkRenderSequential(b *testing.B) {
	verts, cells := gridMesh(100, 1)
	opts := Options{Viewport: NewViewport(512, 512), Workers: 1}

	for b.Loop() {
		_, _ = Render(verts, cells, opts)
	}
}
