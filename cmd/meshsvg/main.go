// meshsvg - painter's-algorithm mesh renderer
// Turns OBJ, glTF/GLB and JSON meshes into depth-ordered SVG polygons.
//
// Commands:
//
//	render   - Write one SVG (or PNG) frame
//	preview  - Interactive terminal preview
//	spin     - Write a turntable of SVG frames
//	serve    - HTTP render service
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/internal/config"
	"github.com/taigrr/meshsvg/pkg/render"
)

var version = "dev"

// app is the state shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	verbose bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		width, height, workers int
		fov                    float64
		order, filter          string
	)

	root := &cobra.Command{
		Use:   "meshsvg",
		Short: "Render 3D meshes as depth-ordered SVG polygons",
		Long: `meshsvg clips every face of a mesh against the view frustum, sorts the
pieces by depth and writes them back to front, so a plain SVG viewer
paints the nearest faces last. No depth buffer is involved.

Defaults come from MESHSVG_* environment variables; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("width") {
				cfg.Width = width
			}
			if flags.Changed("height") {
				cfg.Height = height
			}
			if flags.Changed("fov") {
				cfg.FOV = fov
			}
			if flags.Changed("order") {
				cfg.Order = order
			}
			if flags.Changed("filter") {
				cfg.Filter = filter
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.setupLogger(cmd)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.IntVarP(&width, "width", "W", 512, "Output width in pixels")
	pf.IntVarP(&height, "height", "H", 512, "Output height in pixels")
	pf.Float64Var(&fov, "fov", 45, "Vertical field of view in degrees")
	pf.StringVar(&order, "order", "back-to-front", "Polygon order: back-to-front or front-to-back")
	pf.StringVar(&filter, "filter", "positive", "Depth filter: positive or finite")
	pf.IntVar(&workers, "workers", 0, "Goroutines per pipeline stage (0 = all CPUs)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log pipeline statistics")

	root.AddCommand(
		newRenderCmd(a),
		newPreviewCmd(a),
		newSpinCmd(a),
		newServeCmd(a),
	)
	return root
}

// setupLogger installs a text handler on stderr at the configured level and
// hands it to the render package.
func (a *app) setupLogger(cmd *cobra.Command) {
	level, _ := a.cfg.Level()
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)
	render.SetLogger(a.log)
}

// options returns render options for the current config.
func (a *app) options() (render.Options, error) {
	opts, err := a.cfg.Options()
	if err != nil {
		return render.Options{}, fmt.Errorf("render options: %w", err)
	}
	return opts, nil
}
