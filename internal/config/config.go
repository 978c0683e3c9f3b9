// Package config loads quilttools settings from a settings file, a .env file
// and QUILT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goopsie/quiltFileTools/pkg/mapdata"
)

// DefaultPath is the settings file used when none is given.
const DefaultPath = "quilt_settings.yaml"

// LatestVersion is the settings schema version written by Save. Files
// written by an older release are upgraded in memory on Load.
const LatestVersion = "1.2.3"

// EnvPrefix prefixes environment overrides, e.g. QUILT_DECODE_WORKERS.
const EnvPrefix = "QUILT"

// Config is the full settings tree.
type Config struct {
	Version     string      `mapstructure:"version"`
	LevelEditor LevelEditor `mapstructure:"level_editor"`
	Decode      Decode      `mapstructure:"decode"`
	Log         Log         `mapstructure:"log"`

	upgraded     bool
	upgradedFrom string
}

// LevelEditor holds level loading preferences.
type LevelEditor struct {
	// SnapToStart centers views on the START gimmick when a level is loaded.
	SnapToStart bool `mapstructure:"snap_to_start"`
	// ObjectData is the object database used to name common gimmicks.
	ObjectData string `mapstructure:"object_data"`
}

// Decode tunes batch decoding.
type Decode struct {
	Workers int `mapstructure:"workers"` // files decoded concurrently
}

// Log configures the logger.
type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty logs to stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", LatestVersion)
	v.SetDefault("level_editor.snap_to_start", true)
	v.SetDefault("level_editor.object_data", mapdata.DefaultObjectDataPath)
	v.SetDefault("decode.workers", runtime.NumCPU())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Default returns the built-in settings.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads settings from path. A missing settings file is not an error;
// defaults and environment overrides still apply. A .env file next to the
// settings file is loaded into the environment first.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	fileRead := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
		fileRead = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if fileRead && cfg.Version != LatestVersion {
		cfg.upgraded = true
		cfg.upgradedFrom = cfg.Version
		cfg.Version = LatestVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upgraded reports whether Load upgraded a settings file written for another
// schema version, and which version that was ("" if the file had none).
func (c *Config) Upgraded() (from string, ok bool) {
	return c.upgradedFrom, c.upgraded
}

// Validate checks the settings for values no component can use.
func (c *Config) Validate() error {
	if c.Decode.Workers < 1 {
		return fmt.Errorf("decode.workers must be at least 1, got %d", c.Decode.Workers)
	}
	return nil
}

// Save writes cfg to path. The format follows the file extension.
func Save(path string, cfg *Config) error {
	v := viper.New()
	v.Set("version", cfg.Version)
	v.Set("level_editor.snap_to_start", cfg.LevelEditor.SnapToStart)
	v.Set("level_editor.object_data", cfg.LevelEditor.ObjectData)
	v.Set("decode.workers", cfg.Decode.Workers)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("log.max_backups", cfg.Log.MaxBackups)
	v.Set("log.max_age_days", cfg.Log.MaxAgeDays)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings folder: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}
