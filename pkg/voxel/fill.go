package voxel

import "github.com/Faultbox/voxgeo/pkg/math"

var neighbours = [6]math.Vec3i{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// FillInterior adds to s every cell that cannot reach the outside of the
// set's bounding box through 6-connected empty cells. For a watertight
// surface this turns a shell into a solid. Open surfaces are left as they
// are.
func FillInterior(s Set) {
	lo, hi, ok := s.Bounds()
	if !ok {
		return
	}
	// Pad by one cell so the flood starts outside the surface.
	lo = lo.Add(math.Vec3i{X: -1, Y: -1, Z: -1})
	hi = hi.Add(math.Vec3i{X: 1, Y: 1, Z: 1})

	dx := int(hi.X - lo.X + 1)
	dy := int(hi.Y - lo.Y + 1)
	dz := int(hi.Z - lo.Z + 1)
	index := func(c math.Vec3i) int {
		return (int(c.Y-lo.Y)*dz+int(c.Z-lo.Z))*dx + int(c.X-lo.X)
	}
	inside := func(c math.Vec3i) bool {
		return c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y && c.Z >= lo.Z && c.Z <= hi.Z
	}

	outside := make([]bool, dx*dy*dz)
	queue := []math.Vec3i{lo}
	outside[index(lo)] = true
	for len(queue) > 0 {
		c := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, d := range neighbours {
			n := c.Add(d)
			if !inside(n) || s.Has(n) {
				continue
			}
			if i := index(n); !outside[i] {
				outside[i] = true
				queue = append(queue, n)
			}
		}
	}

	for y := lo.Y + 1; y < hi.Y; y++ {
		for z := lo.Z + 1; z < hi.Z; z++ {
			for x := lo.X + 1; x < hi.X; x++ {
				c := math.Vec3i{X: x, Y: y, Z: z}
				if !outside[index(c)] {
					s.Add(c)
				}
			}
		}
	}
}
