package voxel

import (
	"cmp"
	"slices"

	"github.com/Faultbox/voxgeo/pkg/math"
)

// Set is an unordered set of grid cells.
type Set map[math.Vec3i]struct{}

// NewSet returns a set holding cells.
func NewSet(cells ...math.Vec3i) Set {
	s := make(Set, len(cells))
	for _, c := range cells {
		s.Add(c)
	}
	return s
}

// Add inserts c.
func (s Set) Add(c math.Vec3i) {
	s[c] = struct{}{}
}

// Has reports whether c is present.
func (s Set) Has(c math.Vec3i) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of cells.
func (s Set) Len() int {
	return len(s)
}

// Union adds every cell of other to s.
func (s Set) Union(other Set) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Bounds returns the inclusive cell range covered by the set.
func (s Set) Bounds() (lo, hi math.Vec3i, ok bool) {
	for c := range s {
		if !ok {
			lo, hi, ok = c, c, true
			continue
		}
		lo = math.Vec3i{X: min(lo.X, c.X), Y: min(lo.Y, c.Y), Z: min(lo.Z, c.Z)}
		hi = math.Vec3i{X: max(hi.X, c.X), Y: max(hi.Y, c.Y), Z: max(hi.Z, c.Z)}
	}
	return lo, hi, ok
}

// Sorted returns the cells ordered by (y, z, x) ascending.
func (s Set) Sorted() []math.Vec3i {
	cells := make([]math.Vec3i, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, compareYZX)
	return cells
}

func compareYZX(a, b math.Vec3i) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}
