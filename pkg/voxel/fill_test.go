package voxel

import (
	"testing"

	"github.com/Faultbox/voxgeo/pkg/math"
)

func shell(n int32) Set {
	s := make(Set)
	for x := int32(0); x < n; x++ {
		for y := int32(0); y < n; y++ {
			for z := int32(0); z < n; z++ {
				if x == 0 || y == 0 || z == 0 || x == n-1 || y == n-1 || z == n-1 {
					s.Add(math.Vec3i{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return s
}

func TestFillInteriorClosedShell(t *testing.T) {
	s := shell(4)
	if s.Len() != 64-8 {
		t.Fatalf("shell has %d cells", s.Len())
	}
	FillInterior(s)
	if s.Len() != 64 {
		t.Errorf("filled shell has %d cells, want 64", s.Len())
	}
}

func TestFillInteriorOpenShell(t *testing.T) {
	s := shell(4)
	delete(s, math.Vec3i{X: 1, Y: 1, Z: 0})
	before := s.Len()
	FillInterior(s)
	if s.Len() != before {
		t.Errorf("open shell grew from %d to %d cells", before, s.Len())
	}
}

func TestFillInteriorEmpty(t *testing.T) {
	s := Set{}
	FillInterior(s)
	if s.Len() != 0 {
		t.Errorf("empty set grew to %d", s.Len())
	}
}
