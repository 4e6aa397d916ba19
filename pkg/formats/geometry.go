// Bedrock entity geometry (.geo.json) writer and reader.
package formats

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// Geometry defaults.
const (
	DefaultFormatVersion = "1.12.0"
	GeometryExtension    = ".geo.json"
	identifierPrefix     = "geometry."
)

// ErrInvalidGeometry is returned when a geometry document does not match
// the geometry schema.
var ErrInvalidGeometry = errors.New("invalid geometry document")

//go:embed geometry.schema.json
var geometrySchemaJSON string

const geometrySchemaURL = "https://github.com/Faultbox/voxgeo/geometry.schema.json"

var geometrySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(geometrySchemaURL, geometrySchemaJSON)
})

// Geometry is the root of a Bedrock geometry file.
type Geometry struct {
	FormatVersion string          `json:"format_version"`
	Geometries    []GeometryEntry `json:"minecraft:geometry"`
}

// GeometryEntry is one model inside a geometry file.
type GeometryEntry struct {
	Description Description `json:"description"`
	Bones       []Bone      `json:"bones"`
}

// Description carries the model identifier, texture size and culling
// bounds.
type Description struct {
	Identifier          string     `json:"identifier"`
	TextureWidth        int        `json:"texture_width"`
	TextureHeight       int        `json:"texture_height"`
	VisibleBoundsWidth  float64    `json:"visible_bounds_width"`
	VisibleBoundsHeight float64    `json:"visible_bounds_height"`
	VisibleBoundsOffset [3]float64 `json:"visible_bounds_offset"`
}

// Bone is a named group of cubes rotating around Pivot.
type Bone struct {
	Name  string   `json:"name"`
	Pivot [3]int32 `json:"pivot"`
	Cubes []Cube   `json:"cubes"`
}

// Cube is a box in grid units.
type Cube struct {
	Origin [3]int32 `json:"origin"`
	Size   [3]int32 `json:"size"`
	UV     [2]int32 `json:"uv"`
}

// DefaultDescription returns a description with a 64x64 texture and
// 4x4 visible bounds offset one unit up.
func DefaultDescription() Description {
	return Description{
		TextureWidth:        64,
		TextureHeight:       64,
		VisibleBoundsWidth:  4,
		VisibleBoundsHeight: 4,
		VisibleBoundsOffset: [3]float64{0, 1, 0},
	}
}

// Identifier returns the geometry identifier for a model name.
func Identifier(name string) string {
	return identifierPrefix + name
}

// GeometryPath returns the output path for an input model path:
// the same directory and stem with a .geo.json extension.
func GeometryPath(input string) string {
	return filepath.Join(filepath.Dir(input), Stem(input)+GeometryExtension)
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// NewGeometry builds a single-model geometry document with one bone per
// group. desc.Identifier is replaced by identifier.
func NewGeometry(identifier string, desc Description, groups []voxel.Group) *Geometry {
	desc.Identifier = identifier

	bones := make([]Bone, len(groups))
	for i, g := range groups {
		cubes := make([]Cube, len(g.Cuboids))
		for j, c := range g.Cuboids {
			cubes[j] = Cube{
				Origin: c.Origin.Array(),
				Size:   c.Size,
				UV:     c.UV,
			}
		}
		bones[i] = Bone{
			Name:  g.Name,
			Pivot: g.Pivot.Array(),
			Cubes: cubes,
		}
	}

	return &Geometry{
		FormatVersion: DefaultFormatVersion,
		Geometries: []GeometryEntry{{
			Description: desc,
			Bones:       bones,
		}},
	}
}

// CubeCount returns the number of cubes across all bones.
func (g *Geometry) CubeCount() int {
	n := 0
	for _, e := range g.Geometries {
		for _, b := range e.Bones {
			n += len(b.Cubes)
		}
	}
	return n
}

// WriteGeometry writes g as indented JSON.
func WriteGeometry(w io.Writer, g *Geometry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding geometry: %w", err)
	}
	return nil
}

// SaveGeometry writes g to path, creating parent directories as needed.
func SaveGeometry(path string, g *Geometry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating geometry file: %w", err)
	}
	if err := WriteGeometry(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ValidateGeometry checks a geometry document against the embedded JSON
// schema without decoding it into Go types.
func ValidateGeometry(data []byte) error {
	schema, err := geometrySchema()
	if err != nil {
		return fmt.Errorf("compiling geometry schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	return nil
}

// ParseGeometry validates and decodes a geometry document.
func ParseGeometry(data []byte) (*Geometry, error) {
	if err := ValidateGeometry(data); err != nil {
		return nil, err
	}
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	return &g, nil
}

// LoadGeometry reads and decodes a geometry file.
func LoadGeometry(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geometry file: %w", err)
	}
	return ParseGeometry(data)
}
