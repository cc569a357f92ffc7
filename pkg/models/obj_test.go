package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const quadOBJ = `# a unit quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
f -4 -3 -2
`

func TestReadOBJ(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4", mesh.VertexCount())
	}
	if mesh.CellCount() != 2 {
		t.Fatalf("cells = %d, want 2", mesh.CellCount())
	}
	if len(mesh.Cells[0]) != 4 {
		t.Errorf("quad kept %d vertices, want 4", len(mesh.Cells[0]))
	}
	want := []int{0, 1, 2}
	for i, v := range mesh.Cells[1] {
		if v != want[i] {
			t.Errorf("relative face = %v, want %v", mesh.Cells[1], want)
			break
		}
	}
}

const pentagonOBJ = `v 0.1234567890123456 0 0
v 1 0 0
v 1.5 1 0
v 0.5 1.75 0
v -0.5 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1 5/1/1
`

func TestReadOBJKeepsPolygons(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(pentagonOBJ), "pentagon")
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if mesh.CellCount() != 1 {
		t.Fatalf("cells = %d, want one pentagon", mesh.CellCount())
	}
	want := []int{0, 1, 2, 3, 4}
	if got := mesh.Cells[0]; len(got) != len(want) {
		t.Fatalf("cell = %v, want %v", got, want)
	}
	for i, v := range mesh.Cells[0] {
		if v != want[i] {
			t.Errorf("cell = %v, want %v", mesh.Cells[0], want)
			break
		}
	}
	if x := mesh.Vertices[0].X; x != 0.1234567890123456 {
		t.Errorf("vertex x = %v, want full float64 precision", x)
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		isErr error
	}{
		{"short vertex", "v 1 2\n", nil},
		{"bad float", "v 1 x 2\n", nil},
		{"short face", "v 0 0 0\nf 1 1\n", nil},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrIndexOutOfRange},
		{"past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrIndexOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tc.input), "bad")
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.isErr != nil && !errors.Is(err, tc.isErr) {
				t.Errorf("err = %v, want %v", err, tc.isErr)
			}
		})
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()

	objPath := filepath.Join(dir, "quad.OBJ")
	if err := os.WriteFile(objPath, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	mesh, err := Load(objPath)
	if err != nil {
		t.Fatalf("Load obj: %v", err)
	}
	if mesh.Name != "quad.OBJ" {
		t.Errorf("name = %q, want quad.OBJ", mesh.Name)
	}

	jsonPath := filepath.Join(dir, "tri.json")
	body := `{"positions": [[0,0,0],[1,0,0],[0,1,0]], "cells": [[0,1,2]]}`
	if err := os.WriteFile(jsonPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	mesh, err = Load(jsonPath)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	if mesh.CellCount() != 1 || mesh.VertexCount() != 3 {
		t.Errorf("json mesh = %d cells / %d vertices", mesh.CellCount(), mesh.VertexCount())
	}

	if _, err := Load(filepath.Join(dir, "model.stl")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.stl) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadJSONRejectsBadIndex(t *testing.T) {
	body := `{"positions": [[0,0,0],[1,0,0]], "cells": [[0,1,2]]}`
	if _, err := ReadJSON(strings.NewReader(body), "bad"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}
