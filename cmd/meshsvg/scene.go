package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
)

// sceneFlags are the camera and model placement flags shared by the
// rendering commands.
type sceneFlags struct {
	eye    string
	target string
	fit    bool
	shade  bool
	bg     string
}

func (s *sceneFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.eye, "eye", "5,10,20", "Camera position (x,y,z)")
	f.StringVar(&s.target, "target", "0,2,0", "Point the camera looks at (x,y,z)")
	f.BoolVar(&s.fit, "fit", true, "Centre and scale the mesh to fill the view")
	f.BoolVar(&s.shade, "shade", true, "Tint faces by their normals")
	f.StringVar(&s.bg, "bg", "", "Background color (R,G,B); empty for none")
}

// camera builds the camera described by the flags.
func (s *sceneFlags) camera(a *app) (*render.Camera, error) {
	eye, err := parseVec3(s.eye)
	if err != nil {
		return nil, fmt.Errorf("--eye: %w", err)
	}
	target, err := parseVec3(s.target)
	if err != nil {
		return nil, fmt.Errorf("--target: %w", err)
	}
	cam := a.cfg.Camera()
	cam.SetPosition(eye)
	cam.LookAt(target)
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("--eye/--target: %w", err)
	}
	return cam, nil
}

// model returns the model matrix for mesh under rotation.
func (s *sceneFlags) model(cam *render.Camera, mesh *models.Mesh, rotation math3d.Mat4) math3d.Mat4 {
	if !s.fit {
		return rotation
	}
	return cam.FitModel(mesh, rotation)
}

func (s *sceneFlags) background() (render.Color, error) {
	if s.bg == "" {
		return render.Color{}, nil
	}
	return parseColor(s.bg)
}

func parseVec3(s string) (math3d.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math3d.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		v[i] = f
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}

func parseColor(s string) (render.Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return render.Color{}, fmt.Errorf("color %q: want R,G,B: %w", s, err)
	}
	return render.RGB(r, g, b), nil
}
