package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Normalize.Enabled {
		t.Errorf("Normalize.Enabled = true by default, want false")
	}
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-sample-rate=48000", "-disable-cues", "-log-level=debug"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.SampleRate)
	}
	if !cfg.Disable.Cues {
		t.Errorf("Disable.Cues = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestParseConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body, _ := json.Marshal(map[string]any{
		"sample_rate": 22050,
		"normalize":   map[string]any{"enabled": true, "target_lufs": -16.0},
	})
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Parse([]string{"-config=" + path})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", cfg.SampleRate)
	}
	if !cfg.Normalize.Enabled || cfg.Normalize.TargetLUFS != -16.0 {
		t.Errorf("Normalize = %+v, want enabled at -16 LUFS", cfg.Normalize)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := &Config{DataDir: "x", LogLevel: "loud", SampleRate: 44100}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for invalid log level")
	}
}

func TestValidateRejectsLowSampleRate(t *testing.T) {
	cfg := &Config{DataDir: "x", LogLevel: "info", SampleRate: 100}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() = nil, want error for sample rate below minimum")
	}
}
