package convert

import (
	"github.com/Faultbox/voxgeo/internal/config"
	"github.com/Faultbox/voxgeo/pkg/math"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// Matrix returns the affine transform described by cfg: scale, then
// rotate about y, then offset.
func Matrix(cfg config.TransformConfig) math.Mat4 {
	offset := math.Vec3{X: cfg.Offset[0], Y: cfg.Offset[1], Z: cfg.Offset[2]}
	return math.Translate(offset).
		Mul(math.RotateY(cfg.RotateY)).
		Mul(math.Scale(cfg.UnitScale))
}

// Prepare applies the configured transform to every mesh and recentres
// the set when asked. The input meshes are not modified.
func Prepare(meshes []voxel.Mesh, cfg config.TransformConfig) []voxel.Mesh {
	out := make([]voxel.Mesh, len(meshes))
	copy(out, meshes)

	if m := Matrix(cfg); !m.IsIdentity() {
		for i := range out {
			out[i] = out[i].Transform(m)
		}
	}
	if cfg.Recenter {
		Recenter(out)
	}
	return out
}

// Recenter translates meshes in place so their joint bounds are centred
// on x=0, z=0 and rest on y=0. Vertex buffers are replaced, not written.
func Recenter(meshes []voxel.Mesh) {
	lo, hi, ok := Bounds(meshes)
	if !ok {
		return
	}
	shift := math.Vec3{
		X: -(lo.X + hi.X) / 2,
		Y: -lo.Y,
		Z: -(lo.Z + hi.Z) / 2,
	}
	if shift == (math.Vec3{}) {
		return
	}
	t := math.Translate(shift)
	for i := range meshes {
		meshes[i] = meshes[i].Transform(t)
	}
}

// Bounds returns the joint bounds of all meshes.
func Bounds(meshes []voxel.Mesh) (lo, hi math.Vec3, ok bool) {
	for i := range meshes {
		mlo, mhi, mok := meshes[i].Bounds()
		if !mok {
			continue
		}
		if !ok {
			lo, hi, ok = mlo, mhi, true
			continue
		}
		lo = lo.Min(mlo)
		hi = hi.Max(mhi)
	}
	return lo, hi, ok
}
