package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load reads a model, choosing the decoder from the file extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".glb", ".gltf":
		return LoadGLTF(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %q (use .obj, .glb, .gltf or .json)", ErrUnsupportedFormat, ext)
	}
}
