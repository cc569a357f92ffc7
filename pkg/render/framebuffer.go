package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"golang.org/x/image/vector"
)

// Framebuffer is a raster target for painter's-algorithm output. Polygons
// are filled in the order given, later ones covering earlier ones; there is
// no depth buffer.
type Framebuffer struct {
	Width  int
	Height int
	img    *image.RGBA
	raster *vector.Rasterizer
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		raster: vector.NewRasterizer(width, height),
	}
}

// Viewport returns the viewport covering the whole framebuffer.
func (fb *Framebuffer) Viewport() Viewport {
	return NewViewport(float64(fb.Width), float64(fb.Height))
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	draw.Draw(fb.img, fb.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel sets a pixel at (x, y). Out of range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.img.SetRGBA(x, y, c)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.img.RGBAAt(x, y)
}

// FillPolygon fills a closed polygon given in framebuffer coordinates,
// with anti-aliased edges from the vector rasterizer.
func (fb *Framebuffer) FillPolygon(points []math3d.Vec2, c Color) {
	if len(points) < 3 {
		return
	}
	fb.raster.Reset(fb.Width, fb.Height)
	fb.raster.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		fb.raster.LineTo(float32(p.X), float32(p.Y))
	}
	fb.raster.ClosePath()
	fb.raster.Draw(fb.img, fb.img.Bounds(), image.NewUniform(c), image.Point{})
}

// Paint fills polys in order. Unshaded polygons use fill.
func (fb *Framebuffer) Paint(polys []Polygon, fill Color) {
	for _, p := range polys {
		c := fill
		if p.Shaded {
			c = p.Fill
		}
		fb.FillPolygon(p.Points, c)
	}
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Image returns the backing image. It aliases the framebuffer.
func (fb *Framebuffer) Image() *image.RGBA {
	return fb.img
}

// EncodePNG writes the framebuffer as PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, fb.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fb.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
