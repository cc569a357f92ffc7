package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/internal/turntable"
	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
)

// Controls:
//
//	A/D, ←/→  - Yaw
//	W/S, ↑/↓  - Pitch
//	Space     - Random spin
//	R         - Reset view
//	X         - Toggle outline (x-ray) mode
//	O         - Toggle sort order
//	+/-       - Zoom
//	Esc/Q     - Quit
func newPreviewCmd(a *app) *cobra.Command {
	var (
		scene sceneFlags
		fps   int
	)

	cmd := &cobra.Command{
		Use:   "preview <mesh>",
		Short: "Preview the painter's-algorithm output in the terminal",
		Long: `Draw the depth-ordered polygons in the terminal with half-block cells.
Faces are filled in emission order, exactly as an SVG viewer paints them.

Keys: a/d yaw, w/s pitch, space spin, r reset, x outline, o order,
+/- zoom, esc quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := models.Load(args[0])
			if err != nil {
				return err
			}
			cam, err := scene.camera(a)
			if err != nil {
				return err
			}
			opts, err := a.options()
			if err != nil {
				return err
			}
			bg, err := scene.background()
			if err != nil {
				return err
			}
			if bg.A == 0 {
				bg = render.RGB(30, 30, 40)
			}
			return runPreview(cmd.Context(), previewState{
				mesh:  mesh,
				cam:   cam,
				opts:  opts,
				scene: &scene,
				bg:    bg,
				fps:   max(fps, 1),
			})
		},
	}

	scene.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 30, "Target FPS")
	return cmd
}

type previewState struct {
	mesh  *models.Mesh
	cam   *render.Camera
	opts  render.Options
	scene *sceneFlags
	bg    render.Color
	fps   int
}

// previewEvent is applied on the render goroutine so the event reader
// never touches render state.
type previewEvent func(*previewLoop)

type previewLoop struct {
	previewState
	rotation *turntable.Rotation
	outline  bool
	zoom     float64
	eye      math3d.Vec3
	fb       *render.Framebuffer
	width    int
	height   int
}

func (l *previewLoop) resize(width, height int) {
	l.width, l.height = width, height
	l.fb = render.NewFramebuffer(width, height*2)
	l.cam.SetAspectRatio(float64(width) / float64(height*2))
	l.opts.Viewport = l.fb.Viewport()
}

func (l *previewLoop) setZoom(z float64) {
	l.zoom = min(max(z, 0.2), 5)
	offset := l.eye.Sub(l.cam.Target).Scale(1 / l.zoom)
	l.cam.SetPosition(l.cam.Target.Add(offset))
}

func (l *previewLoop) frame() error {
	l.rotation.Update()
	opts := l.opts
	opts.Model = l.scene.model(l.cam, l.mesh, l.rotation.Matrix())

	frame, err := render.RenderMesh(l.mesh, l.cam.Apply(opts), l.scene.shade)
	if err != nil {
		return err
	}

	l.fb.Clear(l.bg)
	if l.outline {
		l.fb.Outline(frame.Polygons, render.RGB(0, 255, 128))
	} else {
		l.fb.Paint(frame.Polygons, render.NeutralFill)
	}
	return nil
}

func runPreview(ctx context.Context, st previewState) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := &previewLoop{
		previewState: st,
		rotation:     turntable.NewRotation(st.fps),
		zoom:         1,
		eye:          st.cam.Position,
	}
	loop.resize(width, height)

	const impulse = 0.05
	events := make(chan previewEvent, 16)
	send := func(ev previewEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				w, h := ev.Width, ev.Height
				send(func(l *previewLoop) {
					term.Erase()
					term.Resize(w, h)
					l.resize(w, h)
				})

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c", "q"):
					cancel()
					return
				case ev.MatchString("a", "left"):
					send(func(l *previewLoop) { l.rotation.ApplyImpulse(0, -impulse) })
				case ev.MatchString("d", "right"):
					send(func(l *previewLoop) { l.rotation.ApplyImpulse(0, impulse) })
				case ev.MatchString("w", "up"):
					send(func(l *previewLoop) { l.rotation.ApplyImpulse(-impulse, 0) })
				case ev.MatchString("s", "down"):
					send(func(l *previewLoop) { l.rotation.ApplyImpulse(impulse, 0) })
				case ev.MatchString("space"):
					p, y := (rand.Float64()-0.5)*0.5, (rand.Float64()-0.5)*0.5
					send(func(l *previewLoop) { l.rotation.ApplyImpulse(p, y) })
				case ev.MatchString("r"):
					send(func(l *previewLoop) {
						l.rotation.Reset()
						l.setZoom(1)
					})
				case ev.MatchString("x"):
					send(func(l *previewLoop) { l.outline = !l.outline })
				case ev.MatchString("o"):
					send(func(l *previewLoop) {
						if l.opts.Order == render.BackToFront {
							l.opts.Order = render.FrontToBack
						} else {
							l.opts.Order = render.BackToFront
						}
					})
				case ev.MatchString("+", "="):
					send(func(l *previewLoop) { l.setZoom(l.zoom * 1.1) })
				case ev.MatchString("-", "_"):
					send(func(l *previewLoop) { l.setZoom(l.zoom / 1.1) })
				}
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(st.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			ev(loop)
			continue
		case <-ticker.C:
		}

		if err := loop.frame(); err != nil {
			return err
		}
		loop.fb.Draw(term, uv.Rect(0, 0, loop.width, loop.height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}
}
