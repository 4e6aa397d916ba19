// Package formats reads triangle meshes from model files and writes
// voxelized models as Bedrock entity geometry.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// ErrUnsupportedFormat is returned by LoadMeshes for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// SupportedExtensions lists the model extensions LoadMeshes accepts.
var SupportedExtensions = []string{".obj", ".stl"}

// IsSupported reports whether path has a loadable model extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadMeshes loads every mesh in a model file, choosing the parser by
// extension. OBJ files yield one mesh per object and STL files one mesh
// per solid; unnamed STL meshes are named after the file.
func LoadMeshes(path string) ([]voxel.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		objects, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		meshes := make([]voxel.Mesh, len(objects))
		for i := range objects {
			meshes[i] = objects[i].Mesh()
		}
		return meshes, nil

	case ".stl":
		meshes, err := LoadSTL(path)
		if err != nil {
			return nil, err
		}
		for i := range meshes {
			if meshes[i].Name != "" {
				continue
			}
			meshes[i].Name = Stem(path)
			if len(meshes) > 1 {
				meshes[i].Name = fmt.Sprintf("%s_%d", Stem(path), i+1)
			}
		}
		return meshes, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
