// Package math provides the small vector and matrix types used by the
// voxelizer and mesh loaders.
package math

import "math"

// Vec3 is a 3D vector or world-space point.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// AbsSum returns |x| + |y| + |z|.
func (v Vec3) AbsSum() float32 {
	return abs32(v.X) + abs32(v.Y) + abs32(v.Z)
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}

// Floor rounds each component down to a grid cell.
func (v Vec3) Floor() Vec3i {
	return Vec3i{
		int32(math.Floor(float64(v.X))),
		int32(math.Floor(float64(v.Y))),
		int32(math.Floor(float64(v.Z))),
	}
}

// Ceil rounds each component up to a grid cell.
func (v Vec3) Ceil() Vec3i {
	return Vec3i{
		int32(math.Ceil(float64(v.X))),
		int32(math.Ceil(float64(v.Y))),
		int32(math.Ceil(float64(v.Z))),
	}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
