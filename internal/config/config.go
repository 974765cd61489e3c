// Package config loads the engine's analysis configuration: sample
// rate, loudness normalization target, and per-stage disable flags, as
// described by the processing config record.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/cartomix/mixcraft/internal/errorsx"
)

var structValidate = validator.New(validator.WithRequiredStructEnabled())

// Normalize controls whether loudness normalization runs before
// descriptor extraction, and to what target.
type Normalize struct {
	Enabled    bool    `json:"enabled"`
	TargetLUFS float64 `json:"target_lufs" validate:"omitempty,lte=0,gte=-40"`
}

// Disable turns off individual analysis stages without removing them
// from the binary — useful for fixture regeneration and for profiling
// the cost of a single stage in isolation.
type Disable struct {
	BPM   bool `json:"bpm"`
	Tonal bool `json:"tonal"`
	Cues  bool `json:"cues"`
}

// Config is the engine's top-level runtime configuration.
type Config struct {
	DataDir    string    `json:"data_dir" validate:"required"`
	LogLevel   string    `json:"log_level" validate:"required,oneof=debug info warn error"`
	SampleRate int       `json:"sample_rate" validate:"required,min=8000,max=192000"`
	Normalize  Normalize `json:"normalize"`
	Disable    Disable   `json:"disable"`
}

// Validate runs the struct-tag checks shared by every JSON-facing
// record in the engine.
func (c *Config) Validate() error {
	if err := structValidate.Struct(c); err != nil {
		return errorsx.Wrap(errorsx.ConfigInvalid, fmt.Errorf("config: validation failed: %w", err))
	}
	return nil
}

// Parse builds a Config from flags, optionally overlaid with a JSON
// config file, then validates the result.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("mixcraft", flag.ContinueOnError)

	cfg := &Config{
		DataDir:    defaultDataDir(),
		LogLevel:   "info",
		SampleRate: 44100,
	}

	var configFile string
	fs.StringVar(&configFile, "config", "", "path to a JSON config file (overlaid onto the defaults below)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory for the SQLite descriptor/job cache")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "target sample rate analysis is resampled to")
	fs.BoolVar(&cfg.Normalize.Enabled, "normalize", false, "apply loudness normalization before analysis")
	fs.Float64Var(&cfg.Normalize.TargetLUFS, "normalize-target-lufs", -14.0, "target integrated loudness when normalize is enabled")
	fs.BoolVar(&cfg.Disable.BPM, "disable-bpm", false, "skip rhythm/BPM extraction")
	fs.BoolVar(&cfg.Disable.Tonal, "disable-tonal", false, "skip tonal/key extraction")
	fs.BoolVar(&cfg.Disable.Cues, "disable-cues", false, "skip cue-point generation")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configFile != "" {
		if err := overlayFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile merges a JSON config file's fields onto cfg. Fields
// absent from the file keep whatever the flags already set.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func defaultDataDir() string {
	if dir := os.Getenv("MIXCRAFT_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mixcraft"
	}
	return home + "/.mixcraft"
}
