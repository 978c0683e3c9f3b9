// Package logging builds the logrus logger used by quilttools.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/goopsie/quiltFileTools/internal/config"
)

// New returns a logger configured by cfg. When cfg.File is set, output goes
// to a size-rotated file and the returned closer releases it; otherwise output
// goes to stderr and the closer does nothing.
func New(cfg config.Log) (*logrus.Logger, io.Closer, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}

	out := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	log.SetOutput(out)
	// Plain text without color codes in files.
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return log, out, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
