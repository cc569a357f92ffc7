package render

import "github.com/taigrr/meshsvg/pkg/math3d"

// Viewport is the output rectangle that normalized device coordinates are
// mapped into. The zero value stands for DefaultViewport.
type Viewport struct {
	Min math3d.Vec2
	Max math3d.Vec2
}

// DefaultViewport returns the (-1,-1)..(1,1) square.
func DefaultViewport() Viewport {
	return Viewport{Min: math3d.V2(-1, -1), Max: math3d.V2(1, 1)}
}

// NewViewport creates a viewport covering (0,0)..(width,height), the usual
// pixel rectangle of an image.
func NewViewport(width, height float64) Viewport {
	return Viewport{Max: math3d.V2(width, height)}
}

// IsZero reports whether v is the unset zero value.
func (v Viewport) IsZero() bool {
	return v == Viewport{}
}

func (v Viewport) orDefault() Viewport {
	if v.IsZero() {
		return DefaultViewport()
	}
	return v
}

// Width returns the horizontal extent.
func (v Viewport) Width() float64 { return v.Max.X - v.Min.X }

// Height returns the vertical extent.
func (v Viewport) Height() float64 { return v.Max.Y - v.Min.Y }

// Project maps an NDC point to viewport coordinates. The vertical axis is
// flipped: NDC y = 1 lands on Min.Y.
func (v Viewport) Project(p math3d.Vec3) math3d.Vec2 {
	return math3d.Vec2{
		X: 0.5*(p.X+1)*v.Width() + v.Min.X,
		Y: 0.5*(1-p.Y)*v.Height() + v.Min.Y,
	}
}

// ProjectPolygon maps every point of an NDC polygon, keeping their order.
func (v Viewport) ProjectPolygon(points []math3d.Vec3) []math3d.Vec2 {
	out := make([]math3d.Vec2, len(points))
	for i, p := range points {
		out[i] = v.Project(p)
	}
	return out
}
