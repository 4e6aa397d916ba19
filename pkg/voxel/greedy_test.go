package voxel

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/Faultbox/voxgeo/pkg/math"
)

func TestGreedyMeshEmpty(t *testing.T) {
	if got := GreedyMesh(Set{}); len(got) != 0 {
		t.Errorf("expected no cuboids, got %v", got)
	}
}

func TestGreedyMeshShapes(t *testing.T) {
	tests := []struct {
		name  string
		cells []math.Vec3i
		want  []Cuboid
	}{
		{
			name:  "single voxel",
			cells: []math.Vec3i{{}},
			want:  []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{1, 1, 1}}},
		},
		{
			name:  "row along x",
			cells: []math.Vec3i{{X: 0}, {X: 1}, {X: 2}},
			want:  []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{3, 1, 1}}},
		},
		{
			name:  "column along y",
			cells: []math.Vec3i{{Y: 5}, {Y: 6}},
			want:  []Cuboid{{Origin: math.Vec3i{Y: 5}, Size: [3]int32{1, 2, 1}}},
		},
		{
			name:  "square in xz",
			cells: []math.Vec3i{{}, {X: 1}, {Z: 1}, {X: 1, Z: 1}},
			want:  []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{2, 1, 2}}},
		},
		{
			name: "full 2x2x2 block",
			cells: []math.Vec3i{
				{}, {X: 1}, {Z: 1}, {X: 1, Z: 1},
				{Y: 1}, {X: 1, Y: 1}, {Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
			},
			want: []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{2, 2, 2}}},
		},
		{
			name:  "L shape prefers x",
			cells: []math.Vec3i{{}, {X: 1}, {Z: 1}},
			want: []Cuboid{
				{Origin: math.Vec3i{}, Size: [3]int32{2, 1, 1}},
				{Origin: math.Vec3i{Z: 1}, Size: [3]int32{1, 1, 1}},
			},
		},
		{
			name:  "step stops height growth",
			cells: []math.Vec3i{{}, {X: 1}, {Y: 1}},
			want: []Cuboid{
				{Origin: math.Vec3i{}, Size: [3]int32{2, 1, 1}},
				{Origin: math.Vec3i{Y: 1}, Size: [3]int32{1, 1, 1}},
			},
		},
		{
			name:  "negative coordinates",
			cells: []math.Vec3i{{X: -2, Y: -1, Z: -3}, {X: -1, Y: -1, Z: -3}},
			want:  []Cuboid{{Origin: math.Vec3i{X: -2, Y: -1, Z: -3}, Size: [3]int32{2, 1, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet(tt.cells...)
			got := GreedyMesh(set)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GreedyMesh() = %+v, want %+v", got, tt.want)
			}
			checkPartition(t, set, got)
		})
	}
}

func TestGreedyMeshUnitCubePipeline(t *testing.T) {
	set, err := Voxelize(unitCube("cube"), 1)
	if err != nil {
		t.Fatalf("Voxelize() error = %v", err)
	}
	got := GreedyMesh(set)
	want := []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{1, 1, 1}, UV: [2]int32{0, 0}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GreedyMesh() = %+v, want %+v", got, want)
	}
}

func TestGreedyMeshElongatedBox(t *testing.T) {
	set, err := Voxelize(boxMesh("bar", math.Vec3{}, math.Vec3{X: 2, Y: 1, Z: 1}), 1)
	if err != nil {
		t.Fatalf("Voxelize() error = %v", err)
	}
	got := GreedyMesh(set)
	want := []Cuboid{{Origin: math.Vec3i{}, Size: [3]int32{2, 1, 1}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GreedyMesh() = %+v, want %+v", got, want)
	}
}

func TestGreedyMeshPartitionRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		set := make(Set)
		for x := int32(-3); x < 5; x++ {
			for y := int32(-2); y < 4; y++ {
				for z := int32(0); z < 6; z++ {
					if rng.Float64() < 0.6 {
						set.Add(math.Vec3i{X: x, Y: y, Z: z})
					}
				}
			}
		}
		checkPartition(t, set, GreedyMesh(set))
	}
}

func TestGreedyMeshDeterministic(t *testing.T) {
	m := boxMesh("box", math.Vec3{X: 0.2, Y: 0.4, Z: -1.3}, math.Vec3{X: 5.5, Y: 3.1, Z: 2.7})
	set, err := Voxelize(m, 2)
	if err != nil {
		t.Fatalf("Voxelize() error = %v", err)
	}
	first := GreedyMesh(set)
	checkPartition(t, set, first)

	// Rebuild the same set in reverse insertion order.
	cells := set.Sorted()
	rebuilt := make(Set)
	for i := len(cells) - 1; i >= 0; i-- {
		rebuilt.Add(cells[i])
	}
	for i := 0; i < 5; i++ {
		if got := GreedyMesh(rebuilt); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced a different cuboid list", i)
		}
	}
}

func TestGreedyMeshSolidCompresses(t *testing.T) {
	m := boxMesh("box", math.Vec3{}, math.Vec3{X: 6, Y: 4, Z: 5})
	set, err := Voxelizer{Solid: true}.Voxelize(m, 1)
	if err != nil {
		t.Fatalf("Voxelize() error = %v", err)
	}
	got := GreedyMesh(set)
	if len(got) != 1 {
		t.Fatalf("solid box should mesh to 1 cuboid, got %d", len(got))
	}
	if got[0].Size != [3]int32{6, 4, 5} {
		t.Errorf("cuboid size = %v, want [6 4 5]", got[0].Size)
	}
}

func TestCuboidContains(t *testing.T) {
	c := Cuboid{Origin: math.Vec3i{X: 1, Y: 2, Z: 3}, Size: [3]int32{2, 1, 1}}
	if !c.Contains(math.Vec3i{X: 2, Y: 2, Z: 3}) {
		t.Error("expected (2,2,3) inside")
	}
	if c.Contains(math.Vec3i{X: 3, Y: 2, Z: 3}) {
		t.Error("expected (3,2,3) outside")
	}
	if c.Volume() != 2 {
		t.Errorf("Volume() = %d, want 2", c.Volume())
	}
}
