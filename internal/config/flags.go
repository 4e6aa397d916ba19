package config

import "flag"

// Flags holds the configuration overrides registered on a command's flag
// set. Zero values leave the loaded setting alone.
type Flags struct {
	config    *string
	debug     *bool
	scale     *float64
	solid     *bool
	workers   *int
	output    *string
	recenter  *bool
	unitScale *float64
	maxCells  *int64
	logFile   *string
	names     *string
}

// RegisterFlags registers the shared configuration flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file (.yaml or .toml)"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		scale:     fs.Float64("scale", 0, "Voxels per model unit"),
		solid:     fs.Bool("solid", false, "Fill the interior of closed meshes"),
		workers:   fs.Int("workers", 0, "Meshes processed concurrently"),
		output:    fs.String("o", "", "Output directory"),
		recenter:  fs.Bool("recenter", false, "Centre the model on x=z=0 resting on y=0"),
		unitScale: fs.Float64("unit-scale", 0, "Multiply model coordinates before voxelizing"),
		maxCells:  fs.Int64("max-cells", -1, "Candidate cell budget (0 = unlimited)"),
		logFile:   fs.String("log-file", "", "Write logs to this file"),
		names:     fs.String("name-encoding", "", "Charset of non-UTF-8 object names (e.g. euc-kr)"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.scale != 0 {
		cfg.Voxel.Scale = float32(*f.scale)
	}
	if *f.solid {
		cfg.Voxel.Solid = true
	}
	if *f.workers > 0 {
		cfg.Voxel.MeshWorkers = *f.workers
	}
	if *f.output != "" {
		cfg.Export.OutputDir = *f.output
	}
	if *f.recenter {
		cfg.Transform.Recenter = true
	}
	if *f.unitScale != 0 {
		cfg.Transform.UnitScale = float32(*f.unitScale)
	}
	if *f.maxCells >= 0 {
		cfg.Limits.MaxCells = *f.maxCells
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.names != "" {
		cfg.Import.NameEncoding = *f.names
	}
}
