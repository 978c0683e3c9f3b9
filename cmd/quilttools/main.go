// Package main provides a command-line tool for inspecting and repacking level files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/goopsie/quiltFileTools/internal/config"
	"github.com/goopsie/quiltFileTools/internal/logging"
)

var (
	mode           string
	configPath     string
	inputPath      string
	outputPath     string
	dumpFormat     string
	tileIndex      int
	blobPath       string
	forceOverwrite bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: info, verify, dump, tiles, replace-tile, unpack, pack, watch")
	flag.StringVar(&configPath, "config", config.DefaultPath, "Settings file")
	flag.StringVar(&inputPath, "input", "", "Input file, level folder or bundle")
	flag.StringVar(&outputPath, "output", "", "Output file or directory")
	flag.StringVar(&dumpFormat, "format", "yaml", "Dump format: yaml, spew")
	flag.IntVar(&tileIndex, "index", -1, "Tile image index for replace-tile (-1 appends)")
	flag.StringVar(&blobPath, "blob", "", "Raw tile blob for replace-tile")
	flag.BoolVar(&forceOverwrite, "force", false, "Allow non-empty output directory")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every mode needs.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	out io.Writer
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	if from, ok := cfg.Upgraded(); ok {
		log.WithFields(logrus.Fields{"from": from, "to": config.LatestVersion}).
			Warn("Settings file is from another version; unknown settings were reset to defaults")
		if err := config.Save(configPath, cfg); err != nil {
			log.WithError(err).Warn("Could not save upgraded settings")
		}
	}

	a := &app{cfg: cfg, log: log, out: os.Stdout}

	switch mode {
	case "info":
		return a.runInfo(inputPath)
	case "verify":
		return a.runVerify(inputPath)
	case "dump":
		return a.runDump(inputPath, dumpFormat)
	case "tiles":
		if err := prepareOutputDir(outputPath); err != nil {
			return err
		}
		return a.runTiles(inputPath, outputPath)
	case "replace-tile":
		return a.runReplaceTile(inputPath, outputPath, blobPath, tileIndex)
	case "unpack":
		if err := prepareOutputDir(outputPath); err != nil {
			return err
		}
		return a.runUnpack(inputPath, outputPath)
	case "pack":
		return a.runPack(inputPath, outputPath)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return a.runWatch(ctx, inputPath)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}
	if inputPath == "" {
		return fmt.Errorf("input is required")
	}

	switch mode {
	case "info", "verify", "dump", "watch":
	case "tiles", "unpack", "pack":
		if outputPath == "" {
			return fmt.Errorf("%s mode requires -output", mode)
		}
	case "replace-tile":
		if blobPath == "" {
			return fmt.Errorf("replace-tile mode requires -blob")
		}
		if outputPath == "" {
			outputPath = inputPath
		}
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}

	if dumpFormat != "yaml" && dumpFormat != "spew" {
		return fmt.Errorf("format must be 'yaml' or 'spew'")
	}
	return nil
}

func prepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !forceOverwrite {
		empty, err := isDirEmpty(dir)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdir(1)
	return err == io.EOF, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
