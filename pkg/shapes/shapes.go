// Package shapes builds procedural solids with sdfx and tessellates them
// into voxel meshes. It feeds the shape command and scaling tests.
package shapes

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Faultbox/voxgeo/pkg/math"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// Shape errors.
var (
	ErrUnknownShape = errors.New("unknown shape")
	ErrInvalidSize  = errors.New("shape size must be positive")
	ErrInvalidCells = errors.New("marching cubes cell count must be positive")
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 64

// Kinds lists the shape names accepted by New.
var Kinds = []string{"box", "cylinder", "sphere"}

// Box returns an axis-aligned box with its minimum corner at the origin.
func Box(x, y, z float64) (sdf.SDF3, error) {
	if !(x > 0 && y > 0 && z > 0) {
		return nil, fmt.Errorf("%w: box %gx%gx%g", ErrInvalidSize, x, y, z)
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx box: %w", err)
	}
	// sdf.Box3D is centred on the origin.
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})), nil
}

// Cylinder returns an upright cylinder along +y whose base is centred on
// the origin.
func Cylinder(height, radius float64) (sdf.SDF3, error) {
	if !(height > 0 && radius > 0) {
		return nil, fmt.Errorf("%w: cylinder h=%g r=%g", ErrInvalidSize, height, radius)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx cylinder: %w", err)
	}
	// sdfx cylinders run along z.
	m := sdf.Translate3d(v3.Vec{Y: height / 2}).Mul(sdf.RotateX(gomath.Pi / 2))
	return sdf.Transform3D(s, m), nil
}

// Sphere returns a sphere centred on the origin.
func Sphere(radius float64) (sdf.SDF3, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: sphere r=%g", ErrInvalidSize, radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx sphere: %w", err)
	}
	return s, nil
}

// New returns the named shape fitted to a size x size x size bound.
func New(kind string, size float64) (sdf.SDF3, error) {
	switch kind {
	case "box":
		return Box(size, size, size)
	case "cylinder":
		return Cylinder(size, size/2)
	case "sphere":
		return Sphere(size / 2)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, kind)
	}
}

// ToMesh tessellates s with uniform marching cubes using cells cells
// along the longest axis of its bounding box.
func ToMesh(name string, s sdf.SDF3, cells int) (voxel.Mesh, error) {
	if cells <= 0 {
		return voxel.Mesh{}, fmt.Errorf("%w: %d", ErrInvalidCells, cells)
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	b := voxel.NewMeshBuilder(name)
	for _, tri := range triangles {
		b.AddTriangle(vec3(tri[0]), vec3(tri[1]), vec3(tri[2]))
	}
	return b.Mesh(), nil
}

func vec3(v v3.Vec) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
