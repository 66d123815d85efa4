// vertexdirt bakes a topology-based dirt map into glTF vertex colours.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	dirt "github.com/flywave/go-dirt"
	"github.com/flywave/go-dirt/internal/config"
	"github.com/flywave/go-dirt/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "apply":
		err = cmdApply(args)
	case "info":
		err = cmdInfo(args)
	case "init":
		err = cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vertexdirt - dirty vertex colours for glTF meshes

Usage:
  vertexdirt <command> [options]

Commands:
  apply [options] <in.gltf|in.glb> <out.glb>   Bake the dirt map into COLOR_0
  info  [options] <in.gltf|in.glb>             Show per-mesh counts and tone range
  init  [-force] [file]                        Write the default config (default ~/.config/vertexdirt/config.yaml)

Options:
  -config <file>          YAML config (default ./vertexdirt.yaml)
  -blur-strength <f>      Blur strength per iteration, 0.01-1 (default 1)
  -blur-iterations <n>    Number of blur passes, 0-40 (default 1)
  -clean-angle <deg>      Highlight angle, 0-180 (default 180)
  -dirt-angle <deg>       Dirt angle, 0-180 (default 0)
  -dirt-only              Don't calculate cleans for convex areas
  -paint-mask             Only paint selected faces
  -weld                   Merge coincident vertices (default true)
  -base-color <hex>       Fill colour for new colour layers (default #ffffff)
  -debug                  Debug logging
  -log-file <file>        Also log to this rotating file

Examples:
  vertexdirt apply -blur-iterations 4 suzanne.glb suzanne_dirt.glb
  vertexdirt info -dirt-only scene.gltf
  vertexdirt init ./vertexdirt.yaml`)
}

// setup parses flags, loads the config and starts the logger.
func setup(name string, args []string, nargs int) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)
	if fs.NArg() < nargs {
		return nil, nil, fmt.Errorf("%s needs %d file argument(s), got %d", name, nargs, fs.NArg())
	}

	cfg, err := config.Load(*flags.Config, flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func loadMeshes(cfg *config.Config, path string) ([]*dirt.PolyMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	meshes, err := dirt.MeshesFromGltf(doc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for _, m := range meshes {
		if cfg.Import.Weld {
			removed := m.Weld(cfg.Import.WeldPrecision)
			m.EdgesFromFaces()
			logger.Log.Debug("welded", zap.String("mesh", m.Name), zap.Int("removed", removed))
		}
		if cfg.Import.RecomputeNormals {
			m.ReComputeNormal()
		}
	}
	bbox := dirt.ComputeBBox(meshes)
	logger.Log.Debug("loaded",
		zap.String("file", path),
		zap.Int("meshes", len(meshes)),
		zap.Float64s("min", bbox.Min[:]),
		zap.Float64s("max", bbox.Max[:]),
	)
	return meshes, nil
}

func cmdApply(args []string) error {
	cfg, files, err := setup("apply", args, 2)
	if err != nil {
		return err
	}
	in, out := files[0], files[1]

	meshes, err := loadMeshes(cfg, in)
	if err != nil {
		return err
	}
	base, err := cfg.Import.BaseColorValue()
	if err != nil {
		return err
	}

	for _, m := range meshes {
		layer := m.EnsureColorLayer(base)
		rep, err := dirt.ApplyVertexDirt(m, layer, cfg.Dirt)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name, err)
		}
		fields := []zap.Field{
			zap.String("mesh", m.Name),
			zap.Int("vertices", rep.Vertices),
			zap.Int("faces", rep.Faces),
			zap.Float64("min_tone", rep.Min),
			zap.Float64("max_tone", rep.Max),
			zap.Duration("elapsed", rep.Elapsed),
		}
		if !rep.Applied {
			logger.Log.Warn("uniform tone, colours left unchanged", fields...)
			continue
		}
		logger.Log.Info("dirt calculated", fields...)
	}

	doc := dirt.CreateDoc()
	if err := dirt.BuildGltf(doc, meshes); err != nil {
		return err
	}
	bt, err := dirt.GetGltfBinary(doc, 4)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, bt, 0644); err != nil {
		return err
	}
	logger.Log.Info("written", zap.String("file", out), zap.Int("bytes", len(bt)))
	return nil
}

func cmdInfo(args []string) error {
	cfg, files, err := setup("info", args, 1)
	if err != nil {
		return err
	}
	meshes, err := loadMeshes(cfg, files[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:   %s\n", files[0])
	fmt.Printf("Meshes: %d\n\n", len(meshes))
	fmt.Printf("  %-24s %8s %8s %8s %10s %10s\n", "name", "verts", "edges", "faces", "min", "max")
	for _, m := range meshes {
		tm, err := cfg.Dirt.ToneMap(m)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name, err)
		}
		note := ""
		if tm.Degenerate() {
			note = " (uniform)"
		}
		fmt.Printf("  %-24s %8d %8d %8d %10.4f %10.4f%s\n", m.Name, m.VertexCount(), m.EdgeCount(), m.FaceCount(), tm.Min, tm.Max, note)
	}
	return nil
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.Parse(args)

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
