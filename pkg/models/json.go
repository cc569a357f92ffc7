package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/taigrr/meshsvg/pkg/math3d"
)

// SimplicialComplex is the JSON interchange form of a mesh: a list of
// [x, y, z] positions and a list of cells indexing into it.
//
//	{"positions": [[0,0,0], [1,0,0], [0,1,0]], "cells": [[0,1,2]]}
type SimplicialComplex struct {
	Positions [][3]float64 `json:"positions"`
	Cells     [][]int      `json:"cells"`
}

// Mesh converts the complex into a validated Mesh.
func (s SimplicialComplex) Mesh(name string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Vertices = make([]math3d.Vec3, len(s.Positions))
	for i, p := range s.Positions {
		mesh.Vertices[i] = math3d.V3(p[0], p[1], p[2])
	}
	mesh.Cells = s.Cells
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// LoadJSON loads a mesh stored as a JSON simplicial complex.
func LoadJSON(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()

	return ReadJSON(f, filepath.Base(path))
}

// ReadJSON decodes a JSON simplicial complex from r.
func ReadJSON(r io.Reader, name string) (*Mesh, error) {
	var sc SimplicialComplex
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode mesh json: %w", err)
	}
	return sc.Mesh(name)
}
