package convert

import (
	"testing"

	"github.com/Faultbox/voxgeo/internal/config"
	"github.com/Faultbox/voxgeo/pkg/math"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

func box(name string, lo, hi math.Vec3) voxel.Mesh {
	b := voxel.NewMeshBuilder(name)
	c := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, {4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4}, {3, 7, 6}, {3, 6, 2},
		{0, 4, 7}, {0, 7, 3}, {1, 2, 6}, {1, 6, 5},
	}
	for _, f := range faces {
		b.AddTriangle(c[f[0]], c[f[1]], c[f[2]])
	}
	return b.Mesh()
}

func TestPrepareIdentity(t *testing.T) {
	in := []voxel.Mesh{box("a", math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})}
	out := Prepare(in, config.Default().Transform)

	if &out[0].Positions[0] != &in[0].Positions[0] {
		t.Error("identity transform should not copy vertex buffers")
	}
}

func TestPrepareUnitScale(t *testing.T) {
	in := []voxel.Mesh{box("a", math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})}
	cfg := config.Default().Transform
	cfg.UnitScale = 2

	out := Prepare(in, cfg)
	_, hi, _ := out[0].Bounds()
	if hi != (math.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("scaled bounds hi = %v, want (2, 2, 2)", hi)
	}
	// The input is untouched.
	if _, inHi, _ := in[0].Bounds(); inHi != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("input was modified: hi = %v", inHi)
	}

	set, err := voxel.Voxelize(out[0], 1)
	if err != nil {
		t.Fatalf("Voxelize failed: %v", err)
	}
	if set.Len() != 8 {
		t.Errorf("expected 8 voxels, got %d", set.Len())
	}
}

func TestPrepareOffsetAndRotate(t *testing.T) {
	in := []voxel.Mesh{box("a", math.Vec3{}, math.Vec3{X: 2, Y: 1, Z: 1})}
	cfg := config.Default().Transform
	cfg.RotateY = 180
	cfg.Offset = [3]float32{10, 0, 0}

	lo, hi, _ := Bounds(Prepare(in, cfg))
	const eps = 1e-5
	want := [2]math.Vec3{{X: 8, Y: 0, Z: -1}, {X: 10, Y: 1, Z: 0}}
	got := [2]math.Vec3{lo, hi}
	for i := range got {
		d := got[i].Sub(want[i])
		if d.AbsSum() > eps {
			t.Errorf("bounds = %v..%v, want %v..%v", lo, hi, want[0], want[1])
			break
		}
	}
}

func TestRecenter(t *testing.T) {
	meshes := []voxel.Mesh{
		box("a", math.Vec3{X: 2, Y: 1, Z: 2}, math.Vec3{X: 3, Y: 2, Z: 3}),
		box("b", math.Vec3{X: 3, Y: 1, Z: 3}, math.Vec3{X: 4, Y: 3, Z: 4}),
		{Name: "empty"},
	}
	cfg := config.Default().Transform
	cfg.Recenter = true

	lo, hi, ok := Bounds(Prepare(meshes, cfg))
	if !ok {
		t.Fatal("expected bounds")
	}
	if lo != (math.Vec3{X: -1, Y: 0, Z: -1}) || hi != (math.Vec3{X: 1, Y: 2, Z: 1}) {
		t.Errorf("recentred bounds = %v..%v", lo, hi)
	}
}

func TestBoundsEmpty(t *testing.T) {
	if _, _, ok := Bounds([]voxel.Mesh{{Name: "empty"}}); ok {
		t.Error("expected no bounds for meshes without vertices")
	}
}
