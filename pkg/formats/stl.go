// STL mesh loader (binary and ASCII).
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/voxgeo/pkg/math"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTL       = errors.New("invalid STL data")
)

const (
	stlHeaderSize   = 80
	stlRecordSize   = 50
	stlBinaryPrefix = stlHeaderSize + 4
)

// stlTriangle is one binary STL record.
type stlTriangle struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// ParseSTL parses binary or ASCII STL data into welded, indexed meshes.
// Binary files hold one unnamed mesh. ASCII files hold one mesh per
// "solid ... endsolid" block, named after its "solid" line.
func ParseSTL(data []byte) ([]voxel.Mesh, error) {
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	mesh, err := parseBinarySTL(data)
	if err != nil {
		return nil, err
	}
	return []voxel.Mesh{mesh}, nil
}

// isASCIISTL reports whether data looks like ASCII STL. Some exporters
// write binary files whose header starts with "solid", so a size that
// matches the binary layout wins.
func isASCIISTL(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(data) >= stlBinaryPrefix {
		count := binary.LittleEndian.Uint32(data[stlHeaderSize:stlBinaryPrefix])
		if int64(stlBinaryPrefix)+int64(count)*stlRecordSize == int64(len(data)) {
			return false
		}
	}
	return true
}

func parseBinarySTL(data []byte) (voxel.Mesh, error) {
	if len(data) < stlBinaryPrefix {
		return voxel.Mesh{}, ErrTruncatedSTLData
	}

	r := bytes.NewReader(data[stlHeaderSize:])

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return voxel.Mesh{}, fmt.Errorf("%w: triangle count", ErrTruncatedSTLData)
	}
	if int64(r.Len()) < int64(count)*stlRecordSize {
		return voxel.Mesh{}, fmt.Errorf("%w: %d triangles declared, %d bytes left",
			ErrTruncatedSTLData, count, r.Len())
	}

	b := voxel.NewMeshBuilder("")
	for i := uint32(0); i < count; i++ {
		var tri stlTriangle
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return voxel.Mesh{}, fmt.Errorf("%w: triangle %d", ErrTruncatedSTLData, i)
		}
		b.AddTriangle(vec3(tri.Vertices[0]), vec3(tri.Vertices[1]), vec3(tri.Vertices[2]))
	}
	return b.Mesh(), nil
}

func parseASCIISTL(data []byte) ([]voxel.Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var (
		meshes   []voxel.Mesh
		b        *voxel.MeshBuilder
		facet    [3]math.Vec3
		inFacet  bool
		vertices int
	)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if b != nil {
				return nil, fmt.Errorf("%w: line %d: solid inside solid", ErrInvalidSTL, lineNo)
			}
			b = voxel.NewMeshBuilder(strings.Join(fields[1:], " "))
		case "facet":
			if b == nil || inFacet {
				return nil, fmt.Errorf("%w: line %d: unexpected facet", ErrInvalidSTL, lineNo)
			}
			inFacet = true
			vertices = 0
		case "vertex":
			if !inFacet || len(fields) != 4 || vertices == 3 {
				return nil, fmt.Errorf("%w: line %d: bad vertex", ErrInvalidSTL, lineNo)
			}
			var v [3]float32
			for i, f := range fields[1:] {
				c, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidSTL, lineNo, f)
				}
				v[i] = float32(c)
			}
			facet[vertices] = vec3(v)
			vertices++
		case "endfacet":
			if !inFacet || vertices != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidSTL, lineNo, vertices)
			}
			b.AddTriangle(facet[0], facet[1], facet[2])
			inFacet = false
		case "endsolid":
			if b == nil || inFacet {
				return nil, fmt.Errorf("%w: line %d: unexpected endsolid", ErrInvalidSTL, lineNo)
			}
			meshes = append(meshes, b.Mesh())
			b = nil
		}
		// "outer loop" and "endloop" carry no data.
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading STL data: %w", err)
	}
	if b != nil || len(meshes) == 0 {
		return nil, fmt.Errorf("%w: missing endsolid", ErrTruncatedSTLData)
	}
	return meshes, nil
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// LoadSTL parses an STL file from disk.
func LoadSTL(path string) ([]voxel.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}
