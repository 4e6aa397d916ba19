package voxel

import (
	gomath "math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/voxgeo/pkg/math"
)

// DefaultChunkSize is the number of triangles rasterized per task.
const DefaultChunkSize = 256

// Voxelizer rasterizes meshes onto a grid of 1/scale sided cubes anchored
// at the world origin. The zero value is ready to use.
type Voxelizer struct {
	// Workers bounds concurrent triangle chunks. Zero means GOMAXPROCS.
	Workers int
	// ChunkSize is the number of triangles per task. Zero means
	// DefaultChunkSize.
	ChunkSize int
	// Solid also marks cells enclosed by the surface (see FillInterior).
	Solid bool
}

// Voxelize rasterizes m with a default Voxelizer.
func Voxelize(m Mesh, scale float32) (Set, error) {
	return Voxelizer{}.Voxelize(m, scale)
}

// Voxelize returns every cell whose cube intersects at least one triangle
// of m. Triangles are split into chunks that fill private sets in
// parallel; the partial sets are then unioned.
//
// Faces lying exactly on grid planes are assigned by winding (see
// TriangleIntersectsBox). A mesh with negative signed volume is taken to
// be wound inwards and is rasterized with its winding reversed, so closed
// meshes give the same cells whichever way they are wound. Open meshes
// keep the winding they have.
func (v Voxelizer) Voxelize(m Mesh, scale float32) (Set, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := checkCellRange(&m, scale); err != nil {
		return nil, err
	}

	n := m.TriangleCount()
	if n == 0 {
		return Set{}, nil
	}
	flip := m.SignedVolume() < 0

	chunk := v.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	parts := make([]Set, (n+chunk-1)/chunk)

	var g errgroup.Group
	g.SetLimit(workers(v.Workers))
	for c := range parts {
		g.Go(func() error {
			part := make(Set)
			end := min((c+1)*chunk, n)
			for t := c * chunk; t < end; t++ {
				v0, v1, v2 := m.Triangle(t)
				if flip {
					v1, v2 = v2, v1
				}
				rasterize(v0, v1, v2, scale, part)
			}
			parts[c] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := parts[0]
	for _, p := range parts[1:] {
		if len(p) > len(set) {
			set, p = p, set
		}
		set.Union(p)
	}

	if v.Solid {
		FillInterior(set)
	}
	return set, nil
}

// rasterize tests every cell in the triangle's inclusive grid range and
// adds the ones that intersect.
func rasterize(v0, v1, v2 math.Vec3, scale float32, out Set) {
	size := 1 / scale
	half := size / 2

	lo, hi := cellRange(v0, v1, v2, scale)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				c := math.Vec3i{X: x, Y: y, Z: z}
				if TriangleIntersectsBox(v0, v1, v2, c.Center(size), half) {
					out.Add(c)
				}
			}
		}
	}
}

// cellRange returns the candidate cells floor(min)..ceil(max) in grid
// units. Where min lies exactly on a grid plane the range starts one cell
// lower, since a face on that plane may belong to the cell below it.
func cellRange(v0, v1, v2 math.Vec3, scale float32) (lo, hi math.Vec3i) {
	lo = v0.Min(v1).Min(v2).Scale(scale).Ceil().Add(math.Vec3i{X: -1, Y: -1, Z: -1})
	hi = v0.Max(v1).Max(v2).Scale(scale).Ceil()
	return lo, hi
}

// EstimateCells returns the number of intersection tests Voxelize would
// run on m: the sum of every triangle's candidate cell-range volume. It is
// an upper bound on the surface voxel count and lets callers refuse
// scale/geometry combinations that would exhaust memory. Meshes whose
// grid range does not fit fail with ErrCellRange.
func EstimateCells(m Mesh, scale float32) (int64, error) {
	if err := ValidateScale(scale); err != nil {
		return 0, err
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if err := checkCellRange(&m, scale); err != nil {
		return 0, err
	}
	var total int64
	for t := 0; t < m.TriangleCount(); t++ {
		v0, v1, v2 := m.Triangle(t)
		lo, hi := cellRange(v0, v1, v2, scale)
		total = AddCells(total, volume(lo, hi))
	}
	return total, nil
}

// EstimateCells is EstimateCells for this voxelizer's settings. With
// Solid set it also counts the padded bounding box FillInterior scans,
// which bounds the interior cells it may add.
func (v Voxelizer) EstimateCells(m Mesh, scale float32) (int64, error) {
	total, err := EstimateCells(m, scale)
	if err != nil || !v.Solid {
		return total, err
	}
	mlo, mhi, ok := m.Bounds()
	if !ok {
		return total, nil
	}
	lo, hi := cellRange(mlo, mlo, mhi, scale)
	pad := math.Vec3i{X: 1, Y: 1, Z: 1}
	return AddCells(total, volume(lo.Sub(pad), hi.Add(pad))), nil
}

// AddCells adds two cell counts, saturating at the largest int64.
func AddCells(a, b int64) int64 {
	if a > gomath.MaxInt64-b {
		return gomath.MaxInt64
	}
	return a + b
}

// volume returns the number of cells in the inclusive range lo..hi,
// saturating at the largest int64.
func volume(lo, hi math.Vec3i) int64 {
	dx := int64(hi.X) - int64(lo.X) + 1
	dy := int64(hi.Y) - int64(lo.Y) + 1
	dz := int64(hi.Z) - int64(lo.Z) + 1
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return 0
	}
	xy := dx * dy
	if xy > gomath.MaxInt64/dz {
		return gomath.MaxInt64
	}
	return xy * dz
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
