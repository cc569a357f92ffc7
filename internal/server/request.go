package server

import (
	"github.com/taigrr/meshsvg/internal/config"
	"github.com/taigrr/meshsvg/pkg/math3d"
	"github.com/taigrr/meshsvg/pkg/models"
	"github.com/taigrr/meshsvg/pkg/render"
)

// CameraRequest overrides the configured camera. Unset fields keep the
// server defaults.
type CameraRequest struct {
	Eye    *[3]float64 `json:"eye,omitempty"`
	Target *[3]float64 `json:"target,omitempty"`
	Up     *[3]float64 `json:"up,omitempty"`
	FOV    float64     `json:"fov,omitempty"` // degrees
	Near   float64     `json:"near,omitempty"`
	Far    float64     `json:"far,omitempty"`
}

// RenderRequest is the body of POST /render:
//
//	{"positions": [[0,0,0],[1,0,0],[0,1,0]], "cells": [[0,1,2]],
//	 "width": 512, "height": 512, "camera": {"eye": [0,0,5]}}
type RenderRequest struct {
	models.SimplicialComplex

	Camera *CameraRequest `json:"camera,omitempty"`
	Width  int            `json:"width,omitempty"`
	Height int            `json:"height,omitempty"`
	Order  string         `json:"order,omitempty"`
	Filter string         `json:"filter,omitempty"`
	Shade  *bool          `json:"shade,omitempty"` // default true
	Fit    bool           `json:"fit,omitempty"`
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

// settings merges the request over the server config.
func (req *RenderRequest) settings(base *config.Config) (*config.Config, error) {
	cfg := *base
	if req.Width != 0 {
		cfg.Width = req.Width
	}
	if req.Height != 0 {
		cfg.Height = req.Height
	}
	if req.Order != "" {
		cfg.Order = req.Order
	}
	if req.Filter != "" {
		cfg.Filter = req.Filter
	}
	if c := req.Camera; c != nil {
		if c.FOV != 0 {
			cfg.FOV = c.FOV
		}
		if c.Near != 0 {
			cfg.Near = c.Near
		}
		if c.Far != 0 {
			cfg.Far = c.Far
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// camera builds the request camera from cfg and the eye/target/up
// overrides.
func (req *RenderRequest) camera(cfg *config.Config) (*render.Camera, error) {
	cam := cfg.Camera()
	c := req.Camera
	if c == nil {
		return cam, nil
	}
	if c.Eye != nil {
		cam.SetPosition(vec3(*c.Eye))
	}
	if c.Target != nil {
		cam.LookAt(vec3(*c.Target))
	}
	if c.Up != nil {
		cam.SetUp(vec3(*c.Up))
	}
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	return cam, nil
}

func (req *RenderRequest) shade() bool {
	return req.Shade == nil || *req.Shade
}
