package math

import "fmt"

// Vec3i is an integer grid coordinate. It is comparable and is used
// directly as a map key.
type Vec3i struct {
	X, Y, Z int32
}

// Add returns v + other.
func (v Vec3i) Add(other Vec3i) Vec3i {
	return Vec3i{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3i) Sub(other Vec3i) Vec3i {
	return Vec3i{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Center returns the world-space centre of the cell for a grid of
// cellSize-sided cubes anchored at the origin.
func (v Vec3i) Center(cellSize float32) Vec3 {
	return Vec3{
		(float32(v.X) + 0.5) * cellSize,
		(float32(v.Y) + 0.5) * cellSize,
		(float32(v.Z) + 0.5) * cellSize,
	}
}

// Array returns the components as [x, y, z].
func (v Vec3i) Array() [3]int32 {
	return [3]int32{v.X, v.Y, v.Z}
}

// String returns "(x, y, z)".
func (v Vec3i) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}
