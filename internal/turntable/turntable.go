// Package turntable animates model rotation with harmonica springs.
package turntable

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

// Axis tracks position and velocity for one rotation axis with spring decay.
type Axis struct {
	Position float64
	Velocity float64
	spring   harmonica.Spring
	accel    float64 // spring velocity of Velocity itself
}

// NewAxis creates an axis whose velocity eases back to rest.
func NewAxis(fps int) Axis {
	return Axis{
		// Critically damped: no overshoot.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// Rotation holds pitch and yaw driven by impulses.
type Rotation struct {
	Pitch, Yaw Axis
	fps        int
}

func NewRotation(fps int) *Rotation {
	return &Rotation{Pitch: NewAxis(fps), Yaw: NewAxis(fps), fps: fps}
}

func (r *Rotation) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
}

func (r *Rotation) ApplyImpulse(pitch, yaw float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
}

func (r *Rotation) Reset() {
	r.Pitch = NewAxis(r.fps)
	r.Yaw = NewAxis(r.fps)
}

// Matrix returns the model rotation, yaw applied first.
func (r *Rotation) Matrix() math3d.Mat4 {
	return math3d.RotateX(r.Pitch.Position).Mul(math3d.RotateY(r.Yaw.Position))
}

// Turntable produces the yaw angles of a revolution split into a fixed
// number of frames. Angular speed springs up from rest, and the eased
// angles are rescaled so frame N-1 lands at 2π(N-1)/N. Later revolutions
// repeat the same angles offset by whole turns, so sequences loop cleanly.
type Turntable struct {
	angles []float64
	frame  int
}

// New creates a turntable for frames frames per revolution played at fps.
func New(fps, frames int) *Turntable {
	frames = max(frames, 1)
	spring := harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 6.0, 1.0)

	// Accumulate the eased distance with frame 0 at rest.
	angles := make([]float64, frames)
	var speed, accel float64
	for k := 1; k < frames; k++ {
		speed, accel = spring.Update(speed, accel, 1)
		angles[k] = angles[k-1] + speed
	}
	if total := angles[frames-1]; total > 0 {
		scale := 2 * math.Pi * float64(frames-1) / float64(frames) / total
		for k := range angles {
			angles[k] *= scale
		}
	}
	return &Turntable{angles: angles}
}

// Step returns the mean per-frame increment in radians.
func (t *Turntable) Step() float64 {
	return 2 * math.Pi / float64(len(t.angles))
}

// Next returns the angle of the current frame in radians and advances.
func (t *Turntable) Next() float64 {
	turn, k := t.frame/len(t.angles), t.frame%len(t.angles)
	t.frame++
	return 2*math.Pi*float64(turn) + t.angles[k]
}

// Angles returns the angles of the next n frames.
func (t *Turntable) Angles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = t.Next()
	}
	return out
}
