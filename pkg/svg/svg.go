// Package svg writes painter-ordered polygons as an SVG document.
//
// Each polygon becomes one <polygon> element, in the order given, so a
// back-to-front frame paints correctly without a depth buffer:
//
//	<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512" version="1.1">
//	<polygon fill="rgb(128,200,64)" points="10,20 30,40 50,20"/>
//	</svg>
package svg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/taigrr/meshsvg/pkg/render"
)

// ErrNotStarted is returned when polygons are written before Begin.
var ErrNotStarted = errors.New("svg: document not started")

// Options controls the document wrapper and polygon styling.
type Options struct {
	Width  float64
	Height float64

	// Fill is used for polygons that carry no shading. The zero value
	// means render.NeutralFill.
	Fill render.Color

	// Background paints a full-size rect first when its alpha is
	// non-zero.
	Background render.Color

	// Stroke outlines every polygon when its alpha is non-zero.
	Stroke      render.Color
	StrokeWidth float64

	// Precision is the number of decimals for coordinates; 0 writes the
	// shortest exact representation.
	Precision int
}

// DefaultOptions returns options for a width×height document.
func DefaultOptions(width, height float64) Options {
	return Options{Width: width, Height: height, Fill: render.NeutralFill, StrokeWidth: 1}
}

func (o Options) fill() render.Color {
	if o.Fill == (render.Color{}) {
		return render.NeutralFill
	}
	return o.Fill
}

func (o Options) precision() int {
	if o.Precision <= 0 {
		return -1
	}
	return o.Precision
}

// Encoder streams one SVG document. Call Begin, then Polygon for each
// polygon, then End. Errors are sticky: after the first failed write
// every call returns it.
type Encoder struct {
	w       *bufio.Writer
	opts    Options
	buf     []byte
	started bool
	err     error
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer, opts Options) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), opts: opts, buf: make([]byte, 0, 256)}
}

// Begin writes the <svg> opening tag and the optional background.
func (e *Encoder) Begin() error {
	if e.err != nil {
		return e.err
	}
	b := append(e.buf[:0], `<svg xmlns="http://www.w3.org/2000/svg" width="`...)
	b = e.appendFloat(b, e.opts.Width)
	b = append(b, `" height="`...)
	b = e.appendFloat(b, e.opts.Height)
	b = append(b, "\" version=\"1.1\">\n"...)

	if e.opts.Background.A != 0 {
		b = append(b, `<rect width="100%" height="100%" fill="`...)
		b = appendRGB(b, e.opts.Background)
		b = append(b, "\"/>\n"...)
	}
	e.started = true
	return e.write(b)
}

// Polygon writes one <polygon> element. Polygons with fewer than three
// points are skipped.
func (e *Encoder) Polygon(p render.Polygon) error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		return ErrNotStarted
	}
	if len(p.Points) < 3 {
		return nil
	}
	fill := e.opts.fill()
	if p.Shaded {
		fill = p.Fill
	}
	return e.write(e.appendPolygon(e.buf[:0], p, fill))
}

// End closes the document and flushes the underlying writer.
func (e *Encoder) End() error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		return ErrNotStarted
	}
	if err := e.write([]byte("</svg>\n")); err != nil {
		return err
	}
	if err := e.w.Flush(); err != nil {
		e.err = fmt.Errorf("svg: flush: %w", err)
	}
	return e.err
}

func (e *Encoder) appendPolygon(b []byte, p render.Polygon, fill render.Color) []byte {
	b = append(b, `<polygon fill="`...)
	b = appendRGB(b, fill)
	if e.opts.Stroke.A != 0 {
		b = append(b, `" stroke="`...)
		b = appendRGB(b, e.opts.Stroke)
		b = append(b, `" stroke-width="`...)
		b = e.appendFloat(b, e.opts.StrokeWidth)
	}
	b = append(b, `" points="`...)
	for i, pt := range p.Points {
		if i > 0 {
			b = append(b, ' ')
		}
		b = e.appendFloat(b, pt.X)
		b = append(b, ',')
		b = e.appendFloat(b, pt.Y)
	}
	return append(b, "\"/>\n"...)
}

func (e *Encoder) appendFloat(b []byte, f float64) []byte {
	return strconv.AppendFloat(b, f, 'f', e.opts.precision(), 64)
}

func appendRGB(b []byte, c render.Color) []byte {
	b = append(b, "rgb("...)
	b = strconv.AppendUint(b, uint64(c.R), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.G), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(c.B), 10)
	return append(b, ')')
}

func (e *Encoder) write(b []byte) error {
	e.buf = b
	if _, err := e.w.Write(b); err != nil {
		e.err = fmt.Errorf("svg: write: %w", err)
	}
	return e.err
}

// Encode writes a complete document holding polys in order.
func Encode(w io.Writer, polys []render.Polygon, opts Options) error {
	enc := NewEncoder(w, opts)
	if err := enc.Begin(); err != nil {
		return err
	}
	for _, p := range polys {
		if err := enc.Polygon(p); err != nil {
			return err
		}
	}
	return enc.End()
}

// EncodeFrame writes a complete document for a rendered frame.
func EncodeFrame(w io.Writer, frame *render.Frame, opts Options) error {
	return Encode(w, frame.Polygons, opts)
}
