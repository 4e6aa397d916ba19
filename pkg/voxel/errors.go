package voxel

import (
	"errors"
	"fmt"
	gomath "math"
)

// Voxelization errors.
var (
	ErrInvalidMesh  = errors.New("invalid mesh")
	ErrInvalidScale = errors.New("scale must be a positive, finite number")
	ErrCellRange    = errors.New("grid coordinates out of range")
)

// MaxCellCoord bounds the absolute value of any grid coordinate. It leaves
// headroom in int32 for the neighbour and padding arithmetic of the
// voxelizer and FillInterior.
const MaxCellCoord = 1 << 30

// MeshError describes why a mesh was rejected at the voxelizer boundary.
// It matches ErrInvalidMesh with errors.Is.
type MeshError struct {
	Mesh   string
	Reason string
}

func (e *MeshError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidMesh, e.Mesh, e.Reason)
}

// Unwrap returns ErrInvalidMesh.
func (e *MeshError) Unwrap() error {
	return ErrInvalidMesh
}

// ValidateScale checks that scale is usable as voxels per world unit.
func ValidateScale(scale float32) error {
	if !(scale > 0) || !finite(scale) {
		return fmt.Errorf("%w: got %v", ErrInvalidScale, scale)
	}
	return nil
}

// checkCellRange reports ErrCellRange when the grid range covering m at
// scale does not fit within ±MaxCellCoord. Bounds are computed in float64
// so large products do not overflow.
func checkCellRange(m *Mesh, scale float32) error {
	lo, hi, ok := m.Bounds()
	if !ok {
		return nil
	}
	s := float64(scale)
	for _, c := range [...]float64{
		float64(lo.X), float64(lo.Y), float64(lo.Z),
		float64(hi.X), float64(hi.Y), float64(hi.Z),
	} {
		if g := gomath.Ceil(c * s); gomath.Abs(g) >= MaxCellCoord {
			return fmt.Errorf("%w: mesh %q spans %v..%v, which reaches cell %.0f at scale %g",
				ErrCellRange, m.Name, lo, hi, g, scale)
		}
	}
	return nil
}

func indexReason(pos int, idx, vertexCount uint32) string {
	return fmt.Sprintf("index %d at position %d references vertex beyond count %d", idx, pos, vertexCount)
}
