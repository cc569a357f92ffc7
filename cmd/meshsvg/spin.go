package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/internal/turntable"
	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
	"github.com/taigrr/meshsvg/pkg/svg"
)

func newSpinCmd(a *app) *cobra.Command {
	var (
		scene  sceneFlags
		outDir string
		frames int
		fps    int
	)

	cmd := &cobra.Command{
		Use:   "spin <mesh>",
		Short: "Write a turntable of SVG frames",
		Long: `Rotate the mesh once about the vertical axis and write one SVG per frame
(frame_0000.svg, frame_0001.svg, ...). Rotation eases in from rest and the
last frame sits one step short of a full turn, so the sequence loops cleanly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 1 {
				return fmt.Errorf("--frames must be at least 1")
			}
			mesh, err := models.Load(args[0])
			if err != nil {
				return err
			}
			cam, err := scene.camera(a)
			if err != nil {
				return err
			}
			base, err := a.options()
			if err != nil {
				return err
			}
			bg, err := scene.background()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			doc := svg.DefaultOptions(float64(a.cfg.Width), float64(a.cfg.Height))
			doc.Background = bg
			tt := turntable.New(fps, frames)

			start := time.Now()
			var total render.Stats
			for i := range frames {
				opts := base
				opts.Model = scene.model(cam, mesh, math3d.RotateY(tt.Next()))
				frame, err := render.RenderMesh(mesh, cam.Apply(opts), scene.shade)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, fmt.Sprintf("frame_%04d.svg", i))
				if err := writeSVG(nil, path, frame, doc); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				total.Cells += frame.Stats.Cells
				total.Culled += frame.Stats.Culled
				total.Degenerate += frame.Stats.Degenerate
				total.Filtered += frame.Stats.Filtered
				total.Emitted += frame.Stats.Emitted
			}

			a.log.Info("spin written", "frames", frames, "dir", outDir)
			printSummary(cmd.ErrOrStderr(), mesh, total, time.Since(start), outDir)
			return nil
		},
	}

	scene.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&outDir, "out-dir", "o", "frames", "Directory for the frame files")
	f.IntVar(&frames, "frames", 36, "Frames per revolution")
	f.IntVar(&fps, "fps", 24, "Playback rate the easing is tuned for")
	return cmd
}
