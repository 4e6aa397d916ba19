package voxel

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/voxgeo/pkg/math"
)

// Group is a named set of cuboids with a pivot; one per source mesh.
type Group struct {
	Name    string
	Pivot   math.Vec3i
	Cuboids []Cuboid
}

// MeshStats records what one input mesh produced.
type MeshStats struct {
	Name      string
	Triangles int
	Voxels    int
	Cuboids   int
}

// Result is the output of a pipeline run. Groups and Stats follow the
// input mesh order.
type Result struct {
	Groups  []Group
	Stats   []MeshStats
	Voxels  int
	Cuboids int
}

// Pipeline voxelizes and meshes a list of meshes concurrently.
type Pipeline struct {
	Voxelizer Voxelizer
	// Workers bounds concurrently processed meshes. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// NewPipeline returns a pipeline with default settings that logs to log.
func NewPipeline(log *zap.Logger) *Pipeline {
	return &Pipeline{Logger: log}
}

// Run voxelizes every mesh with a non-empty index buffer, meshes the
// resulting set and returns one Group per mesh that produced voxels.
// Meshes that produce no voxels are skipped. The context is checked
// between meshes only.
func (p *Pipeline) Run(ctx context.Context, meshes []Mesh, scale float32) (*Result, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	type indexedGroup struct {
		index int
		group Group
	}

	var (
		mu     sync.Mutex
		groups []indexedGroup
		res    = &Result{Stats: make([]MeshStats, len(meshes))}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Workers))

	for i := range meshes {
		m := &meshes[i]
		res.Stats[i] = MeshStats{Name: m.Name, Triangles: m.TriangleCount()}
		if len(m.Indices) == 0 {
			log.Debug("skipping mesh without triangles", zap.String("mesh", m.Name))
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()

			set, err := p.Voxelizer.Voxelize(*m, scale)
			if err != nil {
				return fmt.Errorf("voxelizing %q: %w", m.Name, err)
			}
			if set.Len() == 0 {
				log.Debug("mesh produced no voxels", zap.String("mesh", m.Name))
				return nil
			}
			cuboids := GreedyMesh(set)

			mu.Lock()
			res.Voxels += set.Len()
			res.Cuboids += len(cuboids)
			res.Stats[i].Voxels = set.Len()
			res.Stats[i].Cuboids = len(cuboids)
			groups = append(groups, indexedGroup{
				index: i,
				group: Group{Name: m.Name, Cuboids: cuboids},
			})
			mu.Unlock()

			log.Debug("mesh converted",
				zap.String("mesh", m.Name),
				zap.Int("triangles", m.TriangleCount()),
				zap.Int("voxels", set.Len()),
				zap.Int("cuboids", len(cuboids)),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop stops scheduling silently once ctx is done.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(groups, func(a, b indexedGroup) int {
		return a.index - b.index
	})
	res.Groups = make([]Group, len(groups))
	for i, ig := range groups {
		res.Groups[i] = ig.group
	}
	return res, nil
}
