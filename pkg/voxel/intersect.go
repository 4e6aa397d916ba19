package voxel

import "github.com/Faultbox/voxgeo/pkg/math"

// TriangleIntersectsBox reports whether triangle (v0, v1, v2) intersects
// the cube centred at center with the given half extent. It is an exact
// separating-axis test over the 3 box normals, the triangle normal and the
// 9 edge/axis cross products, with no epsilon.
//
// A triangle that reaches a box face plane on a box-normal axis without
// crossing it is a tie. Ties go to the cube on the inner side of the
// triangle, taking the normal (v1-v0)x(v2-v1) as pointing outwards. A tie
// with a triangle whose normal has no component on that axis is rejected.
// All other axes treat the cube as closed.
//
// The result therefore depends on winding only for ties: reversing a
// triangle's vertex order moves a face lying on a grid plane to the cube
// on its other side. Callers rasterizing closed meshes must supply them
// wound counter-clockwise seen from outside; Voxelize does this for them.
func TriangleIntersectsBox(v0, v1, v2, center math.Vec3, half float32) bool {
	v0 = v0.Sub(center)
	v1 = v1.Sub(center)
	v2 = v2.Sub(center)

	f0 := v1.Sub(v0)
	f1 := v2.Sub(v1)
	f2 := v0.Sub(v2)
	n := f0.Cross(f1)

	// Box normals.
	if !overlapsFace(v0.X, v1.X, v2.X, n.X, half) ||
		!overlapsFace(v0.Y, v1.Y, v2.Y, n.Y, half) ||
		!overlapsFace(v0.Z, v1.Z, v2.Z, n.Z, half) {
		return false
	}

	// Triangle normal.
	if abs(n.Dot(v0)) > half*n.AbsSum() {
		return false
	}

	// Edge x box-axis cross products.
	axes := [9]math.Vec3{
		{X: 0, Y: -f0.Z, Z: f0.Y}, {X: 0, Y: -f1.Z, Z: f1.Y}, {X: 0, Y: -f2.Z, Z: f2.Y},
		{X: f0.Z, Y: 0, Z: -f0.X}, {X: f1.Z, Y: 0, Z: -f1.X}, {X: f2.Z, Y: 0, Z: -f2.X},
		{X: -f0.Y, Y: f0.X, Z: 0}, {X: -f1.Y, Y: f1.X, Z: 0}, {X: -f2.Y, Y: f2.X, Z: 0},
	}
	for _, a := range axes {
		p0, p1, p2 := v0.Dot(a), v1.Dot(a), v2.Dot(a)
		r := half * a.AbsSum()
		if min3(p0, p1, p2) > r || max3(p0, p1, p2) < -r {
			return false
		}
	}

	return true
}

// overlapsFace tests one box-normal axis given the triangle's coordinates
// a, b, c and normal component n on it.
func overlapsFace(a, b, c, n, half float32) bool {
	lo, hi := min3(a, b, c), max3(a, b, c)
	switch {
	case lo > half || hi < -half:
		return false
	case hi == -half:
		// Touches the lower face only; inside is above when n points down.
		return n < 0
	case lo == half:
		return n > 0
	}
	return true
}

func min3(a, b, c float32) float32 {
	return min(a, b, c)
}

func max3(a, b, c float32) float32 {
	return max(a, b, c)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
