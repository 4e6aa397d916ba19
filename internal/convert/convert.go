// Package convert implements the analyze and convert operations: load a
// model, prepare its meshes, check the work budget, run the voxel
// pipeline and export Bedrock geometry.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/voxgeo/internal/assets"
	"github.com/Faultbox/voxgeo/internal/config"
	"github.com/Faultbox/voxgeo/pkg/encoding"
	"github.com/Faultbox/voxgeo/pkg/formats"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// Conversion errors.
var (
	ErrCellBudget = errors.New("cell budget exceeded")
	ErrNoGeometry = errors.New("no geometry generated")
)

// FileInfo summarizes a model without writing anything.
type FileInfo struct {
	Path           string
	Name           string
	Meshes         int
	Vertices       int
	Faces          int
	EstimatedCells int64
	Voxels         int
	Cuboids        int
	Stats          []voxel.MeshStats
}

// Output describes a written geometry file.
type Output struct {
	Path     string
	Voxels   int
	Cuboids  int
	Geometry *formats.Geometry
}

// Message returns the one-line summary printed after a conversion.
func (o *Output) Message() string {
	return fmt.Sprintf("%d voxels → %d cubes", o.Voxels, o.Cuboids)
}

// Converter runs conversions with one configuration.
type Converter struct {
	cfg    *config.Config
	assets *assets.Manager
	names  *encoding.NameDecoder
	log    *zap.Logger
}

// New creates a converter. log may be nil. cfg should have passed
// Validate; an unknown name encoding falls back to UTF-8 repair.
func New(cfg *config.Config, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	names, err := encoding.Lookup(cfg.Import.NameEncoding)
	if err != nil {
		log.Warn("ignoring name encoding", zap.Error(err))
	}
	return &Converter{
		cfg:    cfg,
		assets: assets.NewManager(),
		names:  names,
		log:    log,
	}
}

// Cache returns the loaded-model cache.
func (c *Converter) Cache() *assets.Cache {
	return c.assets.Cache()
}

// Config returns the converter's configuration.
func (c *Converter) Config() *config.Config {
	return c.cfg
}

// Load reads a model, decodes mesh names and applies the configured
// transform.
func (c *Converter) Load(path string) ([]voxel.Mesh, error) {
	meshes, err := c.assets.Load(path)
	if err != nil {
		return nil, err
	}
	out := Prepare(meshes, c.cfg.Transform)
	for i := range out {
		out[i].Name = c.names.Decode(out[i].Name)
	}
	return out, nil
}

// Analyze loads and voxelizes a model and reports counts.
func (c *Converter) Analyze(ctx context.Context, path string) (*FileInfo, error) {
	meshes, err := c.Load(path)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Path:   path,
		Name:   filepath.Base(path),
		Meshes: len(meshes),
	}
	for i := range meshes {
		info.Vertices += meshes[i].VertexCount()
		info.Faces += meshes[i].TriangleCount()
	}

	res, estimate, err := c.Run(ctx, meshes)
	info.EstimatedCells = estimate
	if err != nil {
		return info, err
	}
	info.Voxels = res.Voxels
	info.Cuboids = res.Cuboids
	info.Stats = res.Stats
	return info, nil
}

// Convert loads, voxelizes and exports a model. The output is written to
// the configured output directory, or next to the input when none is set,
// as <stem>.geo.json.
func (c *Converter) Convert(ctx context.Context, path string) (*Output, error) {
	meshes, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	res, _, err := c.Run(ctx, meshes)
	if err != nil {
		return nil, err
	}
	return c.Export(formats.Stem(path), res, c.OutputPath(path))
}

// OutputPath returns where Convert writes the geometry for input.
func (c *Converter) OutputPath(input string) string {
	if c.cfg.Export.OutputDir == "" {
		return formats.GeometryPath(input)
	}
	return filepath.Join(c.cfg.Export.OutputDir, formats.Stem(input)+formats.GeometryExtension)
}

// Run checks the cell budget and runs the voxel pipeline over meshes. It
// returns the candidate cell estimate alongside the result.
func (c *Converter) Run(ctx context.Context, meshes []voxel.Mesh) (*voxel.Result, int64, error) {
	scale := c.cfg.Voxel.Scale
	p := &voxel.Pipeline{
		Voxelizer: voxel.Voxelizer{
			Workers:   c.cfg.Voxel.Workers,
			ChunkSize: c.cfg.Voxel.ChunkSize,
			Solid:     c.cfg.Voxel.Solid,
		},
		Workers: c.cfg.Voxel.MeshWorkers,
		Logger:  c.log.Named("pipeline"),
	}

	estimate, err := estimateCells(p.Voxelizer, meshes, scale)
	if err != nil {
		return nil, estimate, err
	}
	if limit := c.cfg.Limits.MaxCells; limit > 0 && estimate > limit {
		return nil, estimate, fmt.Errorf("%w: %d candidate cells at scale %g, limit %d",
			ErrCellBudget, estimate, scale, limit)
	}

	start := time.Now()
	res, err := p.Run(ctx, meshes, scale)
	if err != nil {
		return nil, estimate, err
	}
	c.log.Info("voxelized",
		zap.Int("meshes", len(meshes)),
		zap.Int("groups", len(res.Groups)),
		zap.Int("voxels", res.Voxels),
		zap.Int("cuboids", res.Cuboids),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, estimate, nil
}

// estimateCells sums the voxelizer's cell estimate over meshes. Meshes outside
// the representable grid fail the whole run.
func estimateCells(v voxel.Voxelizer, meshes []voxel.Mesh, scale float32) (int64, error) {
	var total int64
	for _, m := range meshes {
		n, err := v.EstimateCells(m, scale)
		if err != nil {
			return total, fmt.Errorf("estimating %q: %w", m.Name, err)
		}
		total = voxel.AddCells(total, n)
	}
	return total, nil
}

// Export builds the geometry document for res and writes it to path. It
// fails with ErrNoGeometry when res holds no groups.
func (c *Converter) Export(name string, res *voxel.Result, path string) (*Output, error) {
	if len(res.Groups) == 0 {
		return nil, ErrNoGeometry
	}

	g := c.Geometry(name, res)
	if err := formats.SaveGeometry(path, g); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	c.log.Info("geometry written", zap.String("path", path), zap.Int("bones", len(res.Groups)))

	return &Output{
		Path:     path,
		Voxels:   res.Voxels,
		Cuboids:  res.Cuboids,
		Geometry: g,
	}, nil
}

// Geometry builds the geometry document for res using the export settings.
func (c *Converter) Geometry(name string, res *voxel.Result) *formats.Geometry {
	e := c.cfg.Export
	desc := formats.Description{
		TextureWidth:        e.TextureWidth,
		TextureHeight:       e.TextureHeight,
		VisibleBoundsWidth:  e.VisibleBoundsWidth,
		VisibleBoundsHeight: e.VisibleBoundsHeight,
		VisibleBoundsOffset: e.VisibleBoundsOffset,
	}
	g := formats.NewGeometry(formats.Identifier(name), desc, res.Groups)
	g.FormatVersion = e.FormatVersion
	return g
}

// Forget drops any cached copy of path so the next load reads the disk.
func (c *Converter) Forget(path string) {
	c.assets.Forget(path)
}
