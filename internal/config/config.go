// Package config handles voxgeo configuration loading and management.
package config

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/blang/semver"

	"github.com/Faultbox/voxgeo/internal/logger"
	"github.com/Faultbox/voxgeo/pkg/encoding"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all conversion settings.
type Config struct {
	Import    ImportConfig    `yaml:"import" toml:"import"`
	Voxel     VoxelConfig     `yaml:"voxel" toml:"voxel"`
	Transform TransformConfig `yaml:"transform" toml:"transform"`
	Export    ExportConfig    `yaml:"export" toml:"export"`
	Limits    LimitsConfig    `yaml:"limits" toml:"limits"`
	Watch     WatchConfig     `yaml:"watch" toml:"watch"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ImportConfig holds model loading settings.
type ImportConfig struct {
	NameEncoding string `yaml:"name_encoding" toml:"name_encoding"` // Charset of non-UTF-8 object names, e.g. "euc-kr"
}

// VoxelConfig holds grid and concurrency settings.
type VoxelConfig struct {
	Scale       float32 `yaml:"scale" toml:"scale"`               // Cells per model unit
	Solid       bool    `yaml:"solid" toml:"solid"`               // Fill closed surfaces
	Workers     int     `yaml:"workers" toml:"workers"`           // Triangle chunk workers per mesh, 0 = GOMAXPROCS
	ChunkSize   int     `yaml:"chunk_size" toml:"chunk_size"`     // Triangles per chunk
	MeshWorkers int     `yaml:"mesh_workers" toml:"mesh_workers"` // Meshes processed at once, 0 = GOMAXPROCS
}

// TransformConfig holds the transform applied to meshes before
// voxelization.
type TransformConfig struct {
	UnitScale float32    `yaml:"unit_scale" toml:"unit_scale"`
	RotateY   float32    `yaml:"rotate_y" toml:"rotate_y"` // Degrees
	Offset    [3]float32 `yaml:"offset" toml:"offset"`
	Recenter  bool       `yaml:"recenter" toml:"recenter"` // Centre on x=z=0, rest on y=0
}

// ExportConfig holds geometry output settings.
type ExportConfig struct {
	OutputDir           string     `yaml:"output_dir" toml:"output_dir"` // Empty writes next to the input
	FormatVersion       string     `yaml:"format_version" toml:"format_version"`
	TextureWidth        int        `yaml:"texture_width" toml:"texture_width"`
	TextureHeight       int        `yaml:"texture_height" toml:"texture_height"`
	VisibleBoundsWidth  float64    `yaml:"visible_bounds_width" toml:"visible_bounds_width"`
	VisibleBoundsHeight float64    `yaml:"visible_bounds_height" toml:"visible_bounds_height"`
	VisibleBoundsOffset [3]float64 `yaml:"visible_bounds_offset" toml:"visible_bounds_offset"`
}

// LimitsConfig holds resource guards.
type LimitsConfig struct {
	MaxCells int64 `yaml:"max_cells" toml:"max_cells"` // Candidate cell budget, 0 = unlimited
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Voxel: VoxelConfig{
			Scale:     1,
			ChunkSize: 256,
		},
		Transform: TransformConfig{
			UnitScale: 1,
		},
		Export: ExportConfig{
			FormatVersion:       "1.12.0",
			TextureWidth:        64,
			TextureHeight:       64,
			VisibleBoundsWidth:  4,
			VisibleBoundsHeight: 4,
			VisibleBoundsOffset: [3]float64{0, 1, 0},
		},
		Limits: LimitsConfig{
			MaxCells: 500_000_000,
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case !positiveFinite(c.Voxel.Scale):
		return fmt.Errorf("%w: voxel.scale must be positive and finite, got %v", ErrInvalidConfig, c.Voxel.Scale)
	case c.Voxel.Workers < 0:
		return fmt.Errorf("%w: voxel.workers must not be negative", ErrInvalidConfig)
	case c.Voxel.MeshWorkers < 0:
		return fmt.Errorf("%w: voxel.mesh_workers must not be negative", ErrInvalidConfig)
	case c.Voxel.ChunkSize < 0:
		return fmt.Errorf("%w: voxel.chunk_size must not be negative", ErrInvalidConfig)
	case !positiveFinite(c.Transform.UnitScale):
		return fmt.Errorf("%w: transform.unit_scale must be positive and finite, got %v", ErrInvalidConfig, c.Transform.UnitScale)
	case c.Export.TextureWidth <= 0 || c.Export.TextureHeight <= 0:
		return fmt.Errorf("%w: export texture size must be positive", ErrInvalidConfig)
	case c.Limits.MaxCells < 0:
		return fmt.Errorf("%w: limits.max_cells must not be negative", ErrInvalidConfig)
	case c.Watch.DebounceMS < 0:
		return fmt.Errorf("%w: watch.debounce_ms must not be negative", ErrInvalidConfig)
	}
	if _, err := semver.Parse(c.Export.FormatVersion); err != nil {
		return fmt.Errorf("%w: export.format_version %q: %v", ErrInvalidConfig, c.Export.FormatVersion, err)
	}
	if _, err := encoding.Lookup(c.Import.NameEncoding); err != nil {
		return fmt.Errorf("%w: import.name_encoding: %v", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

func positiveFinite(f float32) bool {
	return f > 0 && !gomath.IsInf(float64(f), 1)
}
