package voxel

import (
	"testing"

	"github.com/Faultbox/voxgeo/pkg/math"
)

// boxMesh builds a closed 12-triangle box spanning lo..hi.
func boxMesh(name string, lo, hi math.Vec3) Mesh {
	positions := []float32{
		lo.X, lo.Y, lo.Z, // 0
		hi.X, lo.Y, lo.Z, // 1
		hi.X, hi.Y, lo.Z, // 2
		lo.X, hi.Y, lo.Z, // 3
		lo.X, lo.Y, hi.Z, // 4
		hi.X, lo.Y, hi.Z, // 5
		hi.X, hi.Y, hi.Z, // 6
		lo.X, hi.Y, hi.Z, // 7
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
	}
	return Mesh{Name: name, Positions: positions, Indices: indices}
}

func unitCube(name string) Mesh {
	return boxMesh(name, math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
}

// checkPartition fails the test unless cuboids cover s exactly once.
func checkPartition(t *testing.T, s Set, cuboids []Cuboid) {
	t.Helper()

	covered := make(map[math.Vec3i]int, len(s))
	volume := 0
	for _, c := range cuboids {
		if c.Size[0] < 1 || c.Size[1] < 1 || c.Size[2] < 1 {
			t.Fatalf("cuboid %+v has non-positive size", c)
		}
		volume += c.Volume()
		for dx := int32(0); dx < c.Size[0]; dx++ {
			for dy := int32(0); dy < c.Size[1]; dy++ {
				for dz := int32(0); dz < c.Size[2]; dz++ {
					p := c.Origin.Add(math.Vec3i{X: dx, Y: dy, Z: dz})
					if !s.Has(p) {
						t.Fatalf("cuboid %+v covers %v which is not in the set", c, p)
					}
					covered[p]++
				}
			}
		}
	}
	for p, n := range covered {
		if n != 1 {
			t.Fatalf("cell %v covered %d times", p, n)
		}
	}
	if len(covered) != s.Len() {
		t.Fatalf("cuboids cover %d cells, set has %d", len(covered), s.Len())
	}
	if volume != s.Len() {
		t.Fatalf("volume sum %d != set size %d", volume, s.Len())
	}
	if len(cuboids) > s.Len() {
		t.Fatalf("%d cuboids for %d cells", len(cuboids), s.Len())
	}
}

// reversed returns a copy of m with every triangle's winding flipped.
func reversed(m Mesh) Mesh {
	indices := make([]uint32, len(m.Indices))
	for i := 0; i < len(indices); i += 3 {
		indices[i], indices[i+1], indices[i+2] = m.Indices[i], m.Indices[i+2], m.Indices[i+1]
	}
	return Mesh{Name: m.Name, Positions: m.Positions, Indices: indices}
}
