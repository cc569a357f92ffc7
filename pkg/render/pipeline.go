package render

import (
	"fmt"
	"log/slog"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
)

// Options configures one Render call. The zero value renders with identity
// matrices into the default viewport, back to front, dropping cells whose
// depth key is not positive, without shading.
type Options struct {
	Model      math3d.Mat4 // zero = identity
	View       math3d.Mat4 // zero = identity
	Projection math3d.Mat4 // zero = identity
	Viewport   Viewport    // zero = DefaultViewport()

	Order  SortOrder
	Filter DepthFilter

	// Normals holds one face normal per cell. When non-nil every polygon
	// is shaded from the normal of its source cell.
	Normals []math3d.Vec3

	// Workers bounds the goroutines used per stage; 0 means GOMAXPROCS.
	// Results do not depend on it.
	Workers int
}

// Polygon is one output unit: a projected, ordered polygon ready for an
// emitter.
type Polygon struct {
	Points []math3d.Vec2
	Cell   int     // index of the source cell
	Depth  float64 // depth key used for ordering
	Fill   Color   // meaningful when Shaded
	Shaded bool
}

// Stats counts what happened to each input cell.
type Stats struct {
	Cells      int // input cells
	Culled     int // nothing left after clipping
	Degenerate int // < 3 points or non-finite after the divide
	Filtered   int // rejected by the depth filter
	Emitted    int
}

// Frame is the result of a Render call.
type Frame struct {
	Polygons []Polygon
	Stats    Stats
}

// Render runs the full pipeline over a vertex arena and its cells:
// transform, clip, divide, classify, sort and project.
//
// Every cell index is checked before any work is done; an out-of-range
// index fails the whole call with an error wrapping
// models.ErrIndexOutOfRange. All other per-cell problems only drop that
// cell.
func Render(vertices []math3d.Vec3, cells [][]int, opts Options) (*Frame, error) {
	if err := models.ValidateCells(len(vertices), cells); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	workers := resolveWorkers(opts.Workers)
	mvp := ComposeMVP(opts.Model, opts.View, opts.Projection)
	clipVerts := transformVertices(vertices, mvp, workers)

	tagged, fates := clipAndClassify(clipVerts, cells, opts.Filter, workers)

	// Barrier: every depth key is known from here on.
	kept := make([]TaggedPolygon, 0, len(tagged))
	stats := Stats{Cells: len(cells)}
	for i, fate := range fates {
		switch fate {
		case fateKept:
			kept = append(kept, tagged[i])
		case fateCulled:
			stats.Culled++
		case fateDegenerate:
			stats.Degenerate++
		case fateFiltered:
			stats.Filtered++
		}
	}
	SortTagged(kept, opts.Order)

	vp := opts.Viewport.orDefault()
	polys := make([]Polygon, len(kept))
	parallelRange(len(kept), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			tp := kept[i]
			polys[i] = Polygon{
				Points: vp.ProjectPolygon(tp.Points),
				Cell:   tp.Cell,
				Depth:  tp.Depth,
			}
			if opts.Normals != nil {
				polys[i].Fill = ShadeCell(opts.Normals, tp.Cell)
				polys[i].Shaded = true
			}
		}
	})
	stats.Emitted = len(polys)

	Logger().Debug("render",
		slog.Int("cells", stats.Cells),
		slog.Int("culled", stats.Culled),
		slog.Int("degenerate", stats.Degenerate),
		slog.Int("filtered", stats.Filtered),
		slog.Int("emitted", stats.Emitted),
		slog.String("order", opts.Order.String()),
		slog.String("filter", opts.Filter.String()),
	)

	return &Frame{Polygons: polys, Stats: stats}, nil
}

// RenderMesh renders m. When shade is true the mesh's face normals are
// computed and override opts.Normals.
func RenderMesh(m *models.Mesh, opts Options, shade bool) (*Frame, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("render %s: %w", m.Name, err)
	}
	if shade {
		opts.Normals = m.FaceNormals()
	}
	return Render(m.Vertices, m.Cells, opts)
}

// clipAndClassify clips every cell against the clip volume and classifies
// the result. Slot i of both returned slices belongs to cells[i].
func clipAndClassify(clipVerts []math3d.Vec4, cells [][]int, filter DepthFilter, workers int) ([]TaggedPolygon, []cellFate) {
	tagged := make([]TaggedPolygon, len(cells))
	fates := make([]cellFate, len(cells))
	parallelRange(len(cells), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			clipped := ClipPolygon(gatherCell(clipVerts, cells[i]))
			tagged[i], fates[i] = classify(clipped, i, filter)
		}
	})
	return tagged, fates
}
