// meshconv converts scene meshes into renderer-ready mesh assets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/batch"
	"github.com/Faultbox/meshconv/internal/config"
	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/internal/logger"
	"github.com/Faultbox/meshconv/internal/watch"
	"github.com/Faultbox/meshconv/pkg/meshasset"
)

// maxExitCode keeps error counts clear of the codes shells reserve.
const maxExitCode = 125

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		os.Exit(cmdConvert(args))
	case "batch", "b":
		os.Exit(cmdBatch(args))
	case "watch", "w":
		os.Exit(cmdWatch(args))
	case "info":
		os.Exit(cmdInfo(args))
	case "config":
		os.Exit(cmdConfig(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshconv - scene mesh to mesh asset converter

Usage:
  meshconv <command> [options]

Commands:
  convert -i <scene> [-o <asset>]      Convert one scene (.yaml, .yml, .gltf, .glb)
  batch [-o <dir>] <inputs...>         Convert files and directories in parallel
  watch [-o <dir>] <dir>               Re-convert scenes when they change
  info <asset>                         Show a mesh asset summary (.mesh or .json)
  config [-o <file>]                   Write the effective configuration

Common options:
  -config <file>   Config file (default ./meshconv.yaml or user config dir)
  -f <format>      Output format: binary, json, glb
  -Werror          Treat warnings as errors
  -v               Log conversion progress
  -debug           Enable debug logging
  -log <file>      Also write logs to a rotating file

Exit status of convert is the number of errors recorded, 1 if no asset was written.

Examples:
  meshconv convert -i crate.yaml -o crate.mesh
  meshconv batch -workers 8 -o build/meshes scenes/
  meshconv watch -f glb -o preview scenes/`)
}

// setup parses args with the shared flags, loads the config and starts logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func convertOptions(cfg *config.Config) convert.Options {
	return convert.Options{
		WarningsAsErrors: cfg.Convert.WarningsAsErrors,
		Verbose:          cfg.Convert.Verbose,
	}
}

func exitCode(errorCount int) int {
	if errorCount > maxExitCode {
		return maxExitCode
	}
	return errorCount
}

// defaultOutput replaces the extension of input with ext.
func defaultOutput(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func cmdConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	input := fs.String("i", "", "Input scene file")
	output := fs.String("o", "", "Output asset file (default: input with the format's extension)")
	cfg, err := setup(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if *input == "" && fs.NArg() > 0 {
		*input = fs.Arg(0)
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: meshconv convert -i <scene> [-o <asset>]")
		return 1
	}

	w, err := meshasset.NewWriter(cfg.Convert.Format)
	if err != nil {
		logger.Error("invalid format", zap.Error(err), zap.Strings("formats", meshasset.Formats()))
		return 1
	}
	if *output == "" {
		*output = defaultOutput(*input, w.Extension())
	}

	conv := convert.New(logger.Named("convert"), convertOptions(cfg))
	diag, err := conv.ConvertFile(*input, *output, w)
	if err != nil {
		logger.Error("conversion failed", zap.String("input", *input), zap.Error(err))
		return 1
	}
	return exitCode(diag.ErrorCount())
}

func cmdBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	outDir := fs.String("o", "", "Output directory (default: batch.output_dir)")
	cfg, err := setup(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: meshconv batch [-o <dir>] <inputs...>")
		return 1
	}
	if *outDir == "" {
		*outDir = cfg.Batch.OutputDir
	}

	w, err := meshasset.NewWriter(cfg.Convert.Format)
	if err != nil {
		logger.Error("invalid format", zap.Error(err), zap.Strings("formats", meshasset.Formats()))
		return 1
	}

	jobs, err := batch.Jobs(fs.Args(), *outDir, w.Extension())
	if err != nil {
		logger.Error("collecting inputs", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := batch.Run(ctx, batch.Config{
		Workers:          cfg.Batch.Workers,
		Options:          convertOptions(cfg),
		Writer:           w,
		Log:              logger.Named("batch"),
		ProgressInterval: 2 * time.Second,
	}, jobs)

	fmt.Printf("Run:       %s\n", report.RunID)
	fmt.Printf("Converted: %d/%d\n", len(report.Results)-report.Failed(), len(report.Results))
	fmt.Printf("Errors:    %d\n", report.Errors())
	fmt.Printf("Elapsed:   %s\n", report.Duration.Round(time.Millisecond))
	for _, res := range report.Results {
		switch {
		case res.Failed():
			fmt.Printf("  FAILED %s: %v\n", res.Input, res.Err)
		case res.Problems != nil:
			fmt.Printf("  %d errors in %s: %v\n", res.Errors, res.Input, res.Problems)
		}
	}

	if report.Failed() > 0 {
		return 1
	}
	return exitCode(report.Errors())
}

func cmdWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	outDir := fs.String("o", "", "Output directory (default: batch.output_dir)")
	cfg, err := setup(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshconv watch [-o <dir>] <dir>")
		return 1
	}
	if *outDir == "" {
		*outDir = cfg.Batch.OutputDir
	}

	w, err := meshasset.NewWriter(cfg.Convert.Format)
	if err != nil {
		logger.Error("invalid format", zap.Error(err), zap.Strings("formats", meshasset.Formats()))
		return 1
	}

	log := logger.Named("watch")
	watcher, err := watch.New(watch.Config{
		Dir:       fs.Arg(0),
		OutputDir: *outDir,
		Debounce:  cfg.Watch.Debounce,
		Options:   convertOptions(cfg),
		Writer:    w,
		Log:       log,
		OnResult: func(r batch.Result) {
			if r.Failed() {
				return
			}
			log.Info("converted",
				zap.String("input", r.Input),
				zap.String("output", r.Output),
				zap.Int("errors", r.Errors),
				zap.Int("warnings", r.Warnings),
				zap.Duration("elapsed", r.Duration))
		},
	})
	if err != nil {
		logger.Error("starting watcher", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil {
		logger.Error("watch failed", zap.Error(err))
		return 1
	}
	return 0
}

func cmdInfo(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshconv info <asset>")
		return 1
	}

	m, err := readAsset(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	s := m.Stats()
	fmt.Printf("Asset:     %s\n", args[0])
	fmt.Printf("Materials: %d\n", s.Materials)
	fmt.Printf("Vertices:  %d\n", s.Vertices)
	fmt.Printf("Triangles: %d\n", s.Triangles)
	if s.HasBounds {
		fmt.Printf("Bounds:    %v - %v\n", s.Bounds.Min, s.Bounds.Max)
	}
	fmt.Println()
	fmt.Println("Material groups:")
	for _, g := range s.Groups {
		mat := meshasset.Material{}
		if int(g.MaterialIndex) < len(m.Materials) {
			mat = m.Materials[g.MaterialIndex]
		}
		fmt.Printf("  [%d] triangles %d-%d  diffuse=%q normal=%q\n",
			g.MaterialIndex, g.StartTriangle, g.StartTriangle+g.TriangleCount-1, mat.DiffuseMap, mat.NormalMap)
	}
	return 0
}

func readAsset(path string) (*meshasset.Mesh, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return meshasset.ParseJSON(f)
	}
	return meshasset.ParseMeshFile(path)
}

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Write to this file instead of the user config dir")
	cfg, err := setup(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	path := *output
	if path == "" {
		path, err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			fmt.Fprintf(os.Stderr, "Error: cannot write %s: %v\n", path, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	fmt.Printf("Wrote %s\n", path)
	return 0
}
