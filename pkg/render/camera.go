package render

import (
	"errors"
	"math"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
)

// FitSize is the extent FitModel scales a mesh to. It fills most of the
// default camera's view.
const FitSize = 10.0

var (
	ErrCameraPlacement = errors.New("camera eye and target must be distinct finite points")
	ErrCameraUp        = errors.New("camera up must not be parallel to the view direction")
)

// Camera is a look-at camera with a perspective projection.
type Camera struct {
	// Placement in world space
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera at (5, 10, 20) looking at (0, 2, 0) with a
// 45° field of view, a square aspect and a 0.1..1000 depth range.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(5, 10, 20),
		Target:      math3d.V3(0, 2, 0),
		Up:          math3d.Up(),
		FOV:         math.Pi / 4,
		AspectRatio: 1,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the eye position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetUp sets the up hint used to orient the view.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.Up = up
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Distance returns the eye-to-target distance.
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Len()
}

// Validate reports whether the placement yields a usable view matrix.
func (c *Camera) Validate() error {
	if d := c.Distance(); d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return ErrCameraPlacement
	}
	forward := c.Target.Sub(c.Position).Normalize()
	if forward.Cross(c.Up.Normalize()).Len() < 1e-9 {
		return ErrCameraUp
	}
	return nil
}

// Orbit rotates the eye around the target about the world Y axis by angle
// radians, keeping its height and distance.
func (c *Camera) Orbit(angle float64) {
	offset := c.Position.Sub(c.Target)
	rotated := math3d.RotateY(angle).MulVec4(math3d.Point(offset)).Vec3()
	c.SetPosition(c.Target.Add(rotated))
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, c.Up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// Apply fills the view and projection of opts from the camera.
func (c *Camera) Apply(opts Options) Options {
	opts.View = c.ViewMatrix()
	opts.Projection = c.ProjectionMatrix()
	return opts
}

// FitModel returns a model matrix that centres m, scales its largest
// dimension to FitSize, applies rotation about the mesh centre and places
// it on the camera target. A zero rotation means none.
func (c *Camera) FitModel(m *models.Mesh, rotation math3d.Mat4) math3d.Mat4 {
	return math3d.Translate(c.Target).Mul(rotation.OrIdentity()).Mul(m.FitTransform(FitSize))
}
