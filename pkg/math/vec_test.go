package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, -2, 3}
	b := Vec3{-1, 2, 0}
	if got, want := a.Min(b), (Vec3{-1, -2, 0}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{1, 2, 3}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestVec3FloorCeil(t *testing.T) {
	tests := []struct {
		in    Vec3
		floor Vec3i
		ceil  Vec3i
	}{
		{Vec3{0, 0, 0}, Vec3i{0, 0, 0}, Vec3i{0, 0, 0}},
		{Vec3{0.5, 1.5, 2}, Vec3i{0, 1, 2}, Vec3i{1, 2, 2}},
		{Vec3{-0.5, -1, -1.25}, Vec3i{-1, -1, -2}, Vec3i{0, -1, -1}},
	}
	for _, tt := range tests {
		if got := tt.in.Floor(); got != tt.floor {
			t.Errorf("%v.Floor() = %v, want %v", tt.in, got, tt.floor)
		}
		if got := tt.in.Ceil(); got != tt.ceil {
			t.Errorf("%v.Ceil() = %v, want %v", tt.in, got, tt.ceil)
		}
	}
}

func TestVec3AbsSum(t *testing.T) {
	if got := (Vec3{-1, 2, -3}).AbsSum(); got != 6 {
		t.Errorf("AbsSum() = %v, want 6", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{float32(math.Inf(1)), 0, 0}).IsFinite() {
		t.Error("+Inf reported finite")
	}
	if (Vec3{0, float32(math.NaN()), 0}).IsFinite() {
		t.Error("NaN reported finite")
	}
}

func TestVec3iAddSub(t *testing.T) {
	a := Vec3i{1, -2, 3}
	b := Vec3i{4, 5, -6}
	if got := a.Add(b); got != (Vec3i{5, 3, -3}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Add(b).Sub(b); got != a {
		t.Errorf("Add then Sub = %v, want %v", got, a)
	}
}

func TestVec3iCenter(t *testing.T) {
	got := Vec3i{0, 1, -1}.Center(0.5)
	want := Vec3{0.25, 0.75, -0.25}
	if got != want {
		t.Errorf("Center(0.5) = %v, want %v", got, want)
	}
}

func TestVec3iKey(t *testing.T) {
	set := map[Vec3i]struct{}{}
	set[Vec3i{1, 2, 3}] = struct{}{}
	set[Vec3i{1, 2, 3}] = struct{}{}
	if len(set) != 1 {
		t.Errorf("equal cells should collapse as map keys, got %d entries", len(set))
	}
	if got := (Vec3i{1, 2, 3}).String(); got != "(1, 2, 3)" {
		t.Errorf("String() = %q", got)
	}
}
