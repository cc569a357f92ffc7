package config

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/taigrr/meshsvg/pkg/render"
)

// Prefix is prepended to every environment variable, e.g. MESHSVG_WIDTH.
const Prefix = "MESHSVG"

// Config holds the renderer settings read from MESHSVG_* variables.
type Config struct {
	Width    int     `envconfig:"WIDTH" default:"512"`
	Height   int     `envconfig:"HEIGHT" default:"512"`
	FOV      float64 `envconfig:"FOV" default:"45"` // degrees
	Near     float64 `envconfig:"NEAR" default:"0.1"`
	Far      float64 `envconfig:"FAR" default:"1000"`
	Order    string  `envconfig:"ORDER" default:"back-to-front"`
	Filter   string  `envconfig:"FILTER" default:"positive"`
	Workers  int     `envconfig:"WORKERS" default:"0"`
	LogLevel string  `envconfig:"LOG_LEVEL" default:"info"`
	Addr     string  `envconfig:"ADDR" default:":8080"`
}

// Load reads the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: image size %dx%d must be positive", c.Width, c.Height)
	}
	if !finite(c.FOV) || c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("config: fov %v must be in (0, 180) degrees", c.FOV)
	}
	if !finite(c.Near) || !finite(c.Far) || c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("config: clip range %v..%v is invalid", c.Near, c.Far)
	}
	if _, err := c.SortOrder(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.DepthFilter(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SortOrder parses Order.
func (c *Config) SortOrder() (render.SortOrder, error) {
	return render.ParseSortOrder(c.Order)
}

// DepthFilter parses Filter.
func (c *Config) DepthFilter() (render.DepthFilter, error) {
	return render.ParseDepthFilter(c.Filter)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Options builds render options from the config. View and projection are
// left for the caller's camera.
func (c *Config) Options() (render.Options, error) {
	order, err := c.SortOrder()
	if err != nil {
		return render.Options{}, err
	}
	filter, err := c.DepthFilter()
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Viewport: render.NewViewport(float64(c.Width), float64(c.Height)),
		Order:    order,
		Filter:   filter,
		Workers:  c.Workers,
	}, nil
}

// Camera returns a camera with the configured lens and an aspect matching
// the image.
func (c *Config) Camera() *render.Camera {
	cam := render.NewCamera()
	cam.SetFOV(c.FOV * math.Pi / 180)
	cam.SetAspectRatio(float64(c.Width) / float64(c.Height))
	cam.SetClipPlanes(c.Near, c.Far)
	return cam
}
