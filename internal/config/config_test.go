package config

import (
	"log/slog"
	"math"
	"testing"

	"github.com/taigrr/meshsvg/pkg/render"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 512 || cfg.Height != 512 || cfg.FOV != 45 || cfg.Addr != ":8080" {
		t.Errorf("defaults = %+v", cfg)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Order != render.BackToFront || opts.Filter != render.FilterPositive {
		t.Errorf("order/filter = %v/%v", opts.Order, opts.Filter)
	}
	if opts.Viewport.Width() != 512 || opts.Viewport.Height() != 512 {
		t.Errorf("viewport = %+v", opts.Viewport)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MESHSVG_WIDTH", "800")
	t.Setenv("MESHSVG_HEIGHT", "400")
	t.Setenv("MESHSVG_FOV", "60")
	t.Setenv("MESHSVG_ORDER", "front-to-back")
	t.Setenv("MESHSVG_FILTER", "finite")
	t.Setenv("MESHSVG_WORKERS", "3")
	t.Setenv("MESHSVG_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Order != render.FrontToBack || opts.Filter != render.FilterFinite || opts.Workers != 3 {
		t.Errorf("options = %+v", opts)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Errorf("level = %v", lvl)
	}

	cam := cfg.Camera()
	if math.Abs(cam.FOV-math.Pi/3) > 1e-12 || cam.AspectRatio != 2 {
		t.Errorf("camera fov %v aspect %v", cam.FOV, cam.AspectRatio)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad width", "MESHSVG_WIDTH", "0"},
		{"not a number", "MESHSVG_HEIGHT", "tall"},
		{"bad fov", "MESHSVG_FOV", "180"},
		{"bad clip", "MESHSVG_FAR", "0.05"},
		{"nan fov", "MESHSVG_FOV", "NaN"},
		{"nan near", "MESHSVG_NEAR", "NaN"},
		{"nan far", "MESHSVG_FAR", "NaN"},
		{"infinite far", "MESHSVG_FAR", "+Inf"},
		{"bad order", "MESHSVG_ORDER", "random"},
		{"bad filter", "MESHSVG_FILTER", "none"},
		{"bad level", "MESHSVG_LOG_LEVEL", "loud"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted", tc.key, tc.value)
			}
		})
	}
}
