// Wavefront OBJ mesh loader.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex   = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace     = errors.New("invalid OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ face index out of range")
)

// DefaultOBJObjectName names faces that appear before any "o" or "g" line.
const DefaultOBJObjectName = "default"

// OBJObject is one named object of an OBJ file, triangulated and
// re-indexed so that it only carries the vertices it references.
type OBJObject struct {
	Name      string
	Positions []float32
	Indices   []uint32
}

// Mesh returns the object as a voxel mesh.
func (o *OBJObject) Mesh() voxel.Mesh {
	return voxel.Mesh{Name: o.Name, Positions: o.Positions, Indices: o.Indices}
}

// objBuilder collects faces for the current object and remaps global
// vertex numbers to object-local indices.
type objBuilder struct {
	name   string
	remap  map[int]uint32
	object OBJObject
}

func newOBJBuilder(name string) *objBuilder {
	return &objBuilder{
		name:   name,
		remap:  make(map[int]uint32),
		object: OBJObject{Name: name},
	}
}

func (b *objBuilder) index(global int, vertices []float32) uint32 {
	if idx, ok := b.remap[global]; ok {
		return idx
	}
	idx := uint32(len(b.object.Positions) / 3)
	b.object.Positions = append(b.object.Positions, vertices[global*3:global*3+3]...)
	b.remap[global] = idx
	return idx
}

// ParseOBJ parses OBJ data. Only "v", "f", "o" and "g" statements are
// interpreted; texture coordinates, normals and material statements are
// ignored. Polygons are fan-triangulated. Objects without faces are
// dropped.
func ParseOBJ(data []byte) ([]OBJObject, error) {
	var (
		vertices []float32
		objects  []OBJObject
		current  = newOBJBuilder(DefaultOBJObjectName)
	)

	flush := func() {
		if len(current.object.Indices) > 0 {
			objects = append(objects, current.object)
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: expected 3 coordinates", ErrInvalidOBJVertex, lineNo)
			}
			for _, f := range fields[1:4] {
				c, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidOBJVertex, lineNo, f)
				}
				vertices = append(vertices, float32(c))
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJFace, lineNo)
			}
			count := len(vertices) / 3
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				global, err := parseOBJIndex(ref, count)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, current.index(global, vertices))
			}
			for i := 1; i+1 < len(face); i++ {
				current.object.Indices = append(current.object.Indices, face[0], face[i], face[i+1])
			}

		case "o", "g":
			name := DefaultOBJObjectName
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			flush()
			current = newOBJBuilder(name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}
	flush()

	return objects, nil
}

// parseOBJIndex resolves the position part of a face reference such as
// "3", "3/1", "3//2" or "-1" into a zero-based vertex number.
func parseOBJIndex(ref string, count int) (int, error) {
	pos := ref
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		pos = ref[:i]
	}
	n, err := strconv.Atoi(pos)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJFace, ref)
	}
	if n < 0 {
		n += count
	} else {
		n--
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("%w: %q with %d vertices", ErrOBJIndexOutOfRange, ref, count)
	}
	return n, nil
}

// LoadOBJ parses an OBJ file from disk.
func LoadOBJ(path string) ([]OBJObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}
