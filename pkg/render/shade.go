package render

import (
	"image/color"
	"math"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// NeutralFill is used for cells whose normal is missing or unusable. It is
// the tint of a zero normal.
var NeutralFill = Color{128, 128, 128, 255}

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// Shade maps a face normal to a fill color, one channel per axis:
// clamp(round(128*(1+n)), 0, 255). Non-finite normals get NeutralFill.
func Shade(n math3d.Vec3) Color {
	if !n.IsFinite() {
		return NeutralFill
	}
	return RGB(channel(n.X), channel(n.Y), channel(n.Z))
}

func channel(c float64) uint8 {
	return uint8(min(max(math.Round(128*(1+c)), 0), 255))
}

// ShadeCell looks up the normal of a source cell. Missing entries fall back
// to NeutralFill.
func ShadeCell(normals []math3d.Vec3, cell int) Color {
	if cell < 0 || cell >= len(normals) {
		return NeutralFill
	}
	return Shade(normals[cell])
}
