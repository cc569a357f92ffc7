package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
	"github.com/taigrr/meshsvg/pkg/svg"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8")).Width(12)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		scene     sceneFlags
		out       string
		stroke    string
		precision int
	)

	cmd := &cobra.Command{
		Use:   "render <mesh>",
		Short: "Render a mesh to SVG or PNG",
		Long: `Render a mesh (.obj, .glb, .gltf or .json) to a single frame.

The output format follows the --out extension: .png rasterizes the
polygons in order, anything else writes SVG. "-" writes SVG to stdout.`,
		Example: `  meshsvg render bunny.json -o bunny.svg
  meshsvg render model.glb --eye 0,2,8 --target 0,0,0 -o model.png`,
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
			opts.Model = scene.model(cam, mesh, math3d.Mat4{})

			start := time.Now()
			frame, err := render.RenderMesh(mesh, cam.Apply(opts), scene.shade)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			bg, err := scene.background()
			if err != nil {
				return err
			}
			var strokeColor render.Color
			if stroke != "" {
				if strokeColor, err = parseColor(stroke); err != nil {
					return err
				}
			}

			if strings.EqualFold(filepath.Ext(out), ".png") {
				err = writePNG(out, frame, a.cfg.Width, a.cfg.Height, bg, strokeColor)
			} else {
				doc := svg.DefaultOptions(float64(a.cfg.Width), float64(a.cfg.Height))
				doc.Background = bg
				doc.Stroke = strokeColor
				doc.Precision = precision
				err = writeSVG(cmd.OutOrStdout(), out, frame, doc)
			}
			if err != nil {
				return err
			}

			printSummary(cmd.ErrOrStderr(), mesh, frame.Stats, elapsed, out)
			return nil
		},
	}

	scene.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "-", "Output file (.svg or .png); - for stdout")
	f.StringVar(&stroke, "stroke", "", "Outline color (R,G,B); empty for none")
	f.IntVar(&precision, "precision", 0, "Decimals per SVG coordinate (0 = shortest)")
	return cmd
}

func writeSVG(stdout io.Writer, path string, frame *render.Frame, doc svg.Options) error {
	if path == "-" || path == "" {
		return svg.EncodeFrame(stdout, frame, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := svg.EncodeFrame(f, frame, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePNG(path string, frame *render.Frame, width, height int, bg, stroke render.Color) error {
	fb := render.NewFramebuffer(width, height)
	fb.Clear(bg)
	fb.Paint(frame.Polygons, render.NeutralFill)
	if stroke.A != 0 {
		fb.Outline(frame.Polygons, stroke)
	}
	return fb.SavePNG(path)
}

// printSummary writes a short styled report of the render to w.
func printSummary(w io.Writer, mesh *models.Mesh, s render.Stats, elapsed time.Duration, out string) {
	row := func(label string, value any) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
	}

	lines := []string{
		titleStyle.Render(mesh.Name),
		row("vertices", mesh.VertexCount()),
		row("cells", s.Cells),
		row("emitted", s.Emitted),
		row("culled", s.Culled),
		row("degenerate", s.Degenerate),
		row("filtered", s.Filtered),
		row("time", elapsed.Round(time.Microsecond)),
	}
	if out != "-" && out != "" {
		lines = append(lines, row("output", out))
	}
	if s.Emitted == 0 {
		lines = append(lines, warnStyle.Render("nothing visible: check --eye/--target or --fit"))
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
}
