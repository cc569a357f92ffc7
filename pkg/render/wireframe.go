package render

import "github.com/taigrr/meshsvg/pkg/math3d"

// StrokePolygon draws the closed outline of a polygon in framebuffer
// coordinates.
func (fb *Framebuffer) StrokePolygon(points []math3d.Vec2, c Color) {
	n := len(points)
	for i := range n {
		a, b := points[i], points[(i+1)%n]
		fb.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), c)
	}
}

// Outline strokes every polygon in order, the x-ray view of a frame.
func (fb *Framebuffer) Outline(polys []Polygon, c Color) {
	for _, p := range polys {
		fb.StrokePolygon(p.Points, c)
	}
}
