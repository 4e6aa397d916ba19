// voxgeo converts triangle meshes into voxel cuboids and writes them as
// Bedrock entity geometry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/voxgeo/internal/config"
	"github.com/Faultbox/voxgeo/internal/convert"
	"github.com/Faultbox/voxgeo/internal/logger"
	"github.com/Faultbox/voxgeo/internal/watch"
	"github.com/Faultbox/voxgeo/pkg/formats"
	"github.com/Faultbox/voxgeo/pkg/shapes"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case "info":
		cmdInfo(args)
	case "analyze", "a":
		cmdAnalyze(ctx, args)
	case "convert", "c":
		cmdConvert(ctx, args)
	case "shape":
		cmdShape(ctx, args)
	case "watch", "w":
		cmdWatch(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`voxgeo - mesh to voxel geometry converter

Usage:
  voxgeo <command> [options]

Commands:
  info <file.geo.json>               Show geometry file information
  analyze [options] <model>          Voxelize a model and print counts
  convert [options] <model>...       Convert OBJ/STL models to .geo.json
  shape [options]                    Convert a procedural box, cylinder or sphere
  watch [options] <path>...          Re-convert models when they change

Common options:
  -config <file>    Config file (.yaml or .toml)
  -scale <n>        Voxels per model unit
  -solid            Fill the interior of closed meshes
  -o <dir>          Output directory
  -debug            Enable debug logging

Examples:
  voxgeo analyze -scale 4 robot.obj
  voxgeo convert -scale 8 -solid -o out robot.obj chair.stl
  voxgeo shape -kind sphere -size 6 -scale 2
  voxgeo watch -scale 4 ./models`)
}

// setup parses args for a command, loads the config and starts logging.
// register may add command-specific flags.
func setup(name string, args []string, register func(*flag.FlagSet)) (*flag.FlagSet, *config.Config) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if register != nil {
		register(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	return fs, cfg
}

func fatal(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxgeo info <file.geo.json>")
		os.Exit(1)
	}

	stat, err := os.Stat(args[0])
	if err != nil {
		fatal(err)
	}
	g, err := formats.LoadGeometry(args[0])
	if err != nil {
		fatal(err)
	}

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Size:    %s\n", humanize.Bytes(uint64(stat.Size())))
	fmt.Printf("Format:  %s\n", g.FormatVersion)
	for _, e := range g.Geometries {
		d := e.Description
		fmt.Println()
		fmt.Printf("Geometry: %s\n", d.Identifier)
		fmt.Printf("Texture:  %dx%d\n", d.TextureWidth, d.TextureHeight)
		fmt.Printf("Bones:    %d\n", len(e.Bones))
		for _, b := range e.Bones {
			fmt.Printf("  %-24s %s cubes\n", b.Name, humanize.Comma(int64(len(b.Cubes))))
		}
	}
	fmt.Printf("\nTotal cubes: %s\n", humanize.Comma(int64(g.CubeCount())))
}

func cmdAnalyze(ctx context.Context, args []string) {
	fs, cfg := setup("analyze", args, nil)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxgeo analyze [options] <model>")
		os.Exit(1)
	}

	c := convert.New(cfg, logger.Named("convert"))
	info, err := c.Analyze(ctx, fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Model:     %s\n", info.Name)
	fmt.Printf("Scale:     %g\n", cfg.Voxel.Scale)
	fmt.Printf("Meshes:    %d\n", info.Meshes)
	fmt.Printf("Vertices:  %s\n", humanize.Comma(int64(info.Vertices)))
	fmt.Printf("Faces:     %s\n", humanize.Comma(int64(info.Faces)))
	fmt.Printf("Candidate: %s cells\n", humanize.Comma(info.EstimatedCells))
	fmt.Printf("Voxels:    %s\n", humanize.Comma(int64(info.Voxels)))
	fmt.Printf("Cubes:     %s\n", humanize.Comma(int64(info.Cuboids)))
	if info.Voxels > 0 {
		fmt.Printf("Ratio:     %.1f voxels per cube\n", float64(info.Voxels)/float64(info.Cuboids))
	}

	if len(info.Stats) > 1 {
		fmt.Println()
		fmt.Println("Meshes:")
		for _, s := range info.Stats {
			fmt.Printf("  %-24s %10s faces %10s voxels %8s cubes\n",
				s.Name,
				humanize.Comma(int64(s.Triangles)),
				humanize.Comma(int64(s.Voxels)),
				humanize.Comma(int64(s.Cuboids)))
		}
	}
}

func cmdConvert(ctx context.Context, args []string) {
	fs, cfg := setup("convert", args, nil)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxgeo convert [options] <model>...")
		os.Exit(1)
	}

	c := convert.New(cfg, logger.Named("convert"))
	failed := 0
	for _, path := range fs.Args() {
		start := time.Now()
		out, err := c.Convert(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s -> %s: %s (%s)\n", path, out.Path, out.Message(),
			time.Since(start).Round(time.Millisecond))
	}
	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

func cmdShape(ctx context.Context, args []string) {
	var (
		kind  *string
		size  *float64
		cells *int
		name  *string
	)
	_, cfg := setup("shape", args, func(fs *flag.FlagSet) {
		kind = fs.String("kind", "sphere", "Shape: box, cylinder or sphere")
		size = fs.Float64("size", 4, "Shape size in model units")
		cells = fs.Int("cells", shapes.DefaultCells, "Marching cubes resolution")
		name = fs.String("name", "", "Model name (default: the shape kind)")
	})
	defer logger.Sync()

	if *name == "" {
		*name = *kind
	}

	solid, err := shapes.New(*kind, *size)
	if err != nil {
		fatal(err)
	}
	mesh, err := shapes.ToMesh(*name, solid, *cells)
	if err != nil {
		fatal(err)
	}
	logger.Debug("shape tessellated",
		zap.String("kind", *kind),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("vertices", mesh.VertexCount()))

	c := convert.New(cfg, logger.Named("convert"))
	meshes := convert.Prepare([]voxel.Mesh{mesh}, cfg.Transform)
	res, _, err := c.Run(ctx, meshes)
	if err != nil {
		fatal(err)
	}
	out, err := c.Export(*name, res, filepath.Join(cfg.Export.OutputDir, *name+formats.GeometryExtension))
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%s -> %s: %s\n", *kind, out.Path, out.Message())
}

func cmdWatch(ctx context.Context, args []string) {
	fs, cfg := setup("watch", args, nil)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxgeo watch [options] <path>...")
		os.Exit(1)
	}

	c := convert.New(cfg, logger.Named("convert"))
	handler := func(ctx context.Context, path string) error {
		out, err := c.Convert(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s: %s\n", path, out.Path, out.Message())
		logger.Debug("model cache",
			zap.Int("entries", c.Cache().Len()),
			zap.String("size", humanize.Bytes(uint64(c.Cache().Bytes()))))
		return nil
	}

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	w, err := watch.New(handler, debounce, logger.Named("watch"))
	if err != nil {
		fatal(err)
	}
	w.OnRemove = c.Forget
	for _, path := range fs.Args() {
		if err := w.Add(path); err != nil {
			fatal(err)
		}
	}

	logger.Info("watching for changes", zap.Strings("paths", fs.Args()))
	if err := w.Run(ctx); err != nil {
		fatal(err)
	}
}
