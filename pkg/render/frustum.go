// Package render turns a mesh into a painter-ordered list of 2D polygons:
// clip-space transform, homogeneous frustum clipping, perspective divide,
// depth sorting and viewport projection.
package render

import (
	"github.com/taigrr/meshsvg/pkg/math3d"
)

// Plane is a homogeneous half-space boundary
//
//	Normal.X*x + Normal.Y*y + Normal.Z*z + D*w <= 0
//
// where points satisfying the inequality are inside.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// NewPlane creates a plane from its four coefficients.
func NewPlane(a, b, c, d float64) Plane {
	return Plane{Normal: math3d.V3(a, b, c), D: d}
}

// Eval returns the signed plane value for a homogeneous point.
// Zero or negative = inside, positive = outside.
func (p Plane) Eval(v math3d.Vec4) float64 {
	return p.Normal.Dot(v.Vec3()) + p.D*v.W
}

// Contains reports whether v lies on the inside (including the boundary).
func (p Plane) Contains(v math3d.Vec4) bool {
	return p.Eval(v) <= 0
}

// ClipPlane indices, in the order they are applied.
const (
	ClipRight  = iota // x <= w
	ClipLeft          // -x <= w
	ClipTop           // y <= w
	ClipBottom        // -y <= w
	ClipFar           // z <= w
	ClipNear          // z >= 0
)

// clipVolume bounds x, y in [-w, w] and z in [0, w].
var clipVolume = [6]Plane{
	ClipRight:  NewPlane(1, 0, 0, -1),
	ClipLeft:   NewPlane(-1, 0, 0, -1),
	ClipTop:    NewPlane(0, 1, 0, -1),
	ClipBottom: NewPlane(0, -1, 0, -1),
	ClipFar:    NewPlane(0, 0, 1, -1),
	ClipNear:   NewPlane(0, 0, -1, 0),
}

// ClipPlanes returns a copy of the six clip-space planes in application
// order.
func ClipPlanes() [6]Plane {
	return clipVolume
}

// SplitNegative returns the part of the convex polygon poly that lies on
// the inside of plane (Sutherland–Hodgman in homogeneous coordinates).
//
// Vertex order is preserved. Where an edge crosses the plane a new vertex
// is linearly interpolated in all four components. Vertices exactly on the
// plane count as inside and are emitted once. An empty or fully outside
// polygon yields nil.
func SplitNegative(poly []math3d.Vec4, plane Plane) []math3d.Vec4 {
	if len(poly) == 0 {
		return nil
	}

	var out []math3d.Vec4
	prev := poly[len(poly)-1]
	dPrev := plane.Eval(prev)

	for _, cur := range poly {
		dCur := plane.Eval(cur)
		if dCur <= 0 {
			if dPrev > 0 && dCur < 0 {
				out = append(out, intersect(prev, cur, dPrev, dCur))
			}
			out = append(out, cur)
		} else if dPrev < 0 {
			out = append(out, intersect(prev, cur, dPrev, dCur))
		}
		prev, dPrev = cur, dCur
	}
	return out
}

// intersect returns the point on segment a→b where the plane value is zero.
// da and db have strictly opposite signs.
func intersect(a, b math3d.Vec4, da, db float64) math3d.Vec4 {
	return a.Lerp(b, da/(da-db))
}

// ClipPolygon intersects poly with every clip-space plane in order,
// stopping as soon as nothing is left.
func ClipPolygon(poly []math3d.Vec4) []math3d.Vec4 {
	for _, plane := range clipVolume {
		if len(poly) == 0 {
			return nil
		}
		poly = SplitNegative(poly, plane)
	}
	return poly
}

// gatherCell copies a cell's clip-space vertices out of the shared arena.
func gatherCell(clipVerts []math3d.Vec4, cell []int) []math3d.Vec4 {
	poly := make([]math3d.Vec4, len(cell))
	for i, vi := range cell {
		poly[i] = clipVerts[vi]
	}
	return poly
}
