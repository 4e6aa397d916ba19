package voxel

import "github.com/Faultbox/voxgeo/pkg/math"

// Cuboid is an axis-aligned box of cells. Size is (width, height, depth)
// along (x, y, z). UV is a placeholder texture offset.
type Cuboid struct {
	Origin math.Vec3i
	Size   [3]int32
	UV     [2]int32
}

// Volume returns the number of cells covered.
func (c Cuboid) Volume() int {
	return int(c.Size[0]) * int(c.Size[1]) * int(c.Size[2])
}

// Contains reports whether cell p lies inside the cuboid.
func (c Cuboid) Contains(p math.Vec3i) bool {
	return p.X >= c.Origin.X && p.X < c.Origin.X+c.Size[0] &&
		p.Y >= c.Origin.Y && p.Y < c.Origin.Y+c.Size[1] &&
		p.Z >= c.Origin.Z && p.Z < c.Origin.Z+c.Size[2]
}

// GreedyMesh partitions s into cuboids. Cells are visited in (y, z, x)
// order; from each unclaimed cell a box is grown along +x, then +z, then
// +y, each step accepted only if every new cell is present and unclaimed.
// The result covers s exactly once and is deterministic for a given set.
// It is a first-fit approximation, not a minimum cover.
func GreedyMesh(s Set) []Cuboid {
	if len(s) == 0 {
		return nil
	}

	claimed := make(Set, len(s))
	free := func(c math.Vec3i) bool {
		return s.Has(c) && !claimed.Has(c)
	}

	var cuboids []Cuboid
	for _, p := range s.Sorted() {
		if claimed.Has(p) {
			continue
		}

		width := int32(1)
		for free(math.Vec3i{X: p.X + width, Y: p.Y, Z: p.Z}) {
			width++
		}

		depth := int32(1)
		for rowFree(free, p, width, 0, depth) {
			depth++
		}

		height := int32(1)
		for layerFree(free, p, width, height, depth) {
			height++
		}

		for dy := int32(0); dy < height; dy++ {
			for dz := int32(0); dz < depth; dz++ {
				for dx := int32(0); dx < width; dx++ {
					claimed.Add(math.Vec3i{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz})
				}
			}
		}

		cuboids = append(cuboids, Cuboid{
			Origin: p,
			Size:   [3]int32{width, height, depth},
		})
	}
	return cuboids
}

// rowFree reports whether the x-row of the given width at offset (dy, dz)
// from p is entirely free.
func rowFree(free func(math.Vec3i) bool, p math.Vec3i, width, dy, dz int32) bool {
	for dx := int32(0); dx < width; dx++ {
		if !free(math.Vec3i{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}) {
			return false
		}
	}
	return true
}

// layerFree reports whether the width x depth rectangle at offset dy from
// p is entirely free.
func layerFree(free func(math.Vec3i) bool, p math.Vec3i, width, dy, depth int32) bool {
	for dz := int32(0); dz < depth; dz++ {
		if !rowFree(free, p, width, dy, dz) {
			return false
		}
	}
	return true
}
