// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "visualizer.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Audio.FFTSize != DefaultFFTSize {
		t.Errorf("expected default fft_size %d, got %d", DefaultFFTSize, cfg.Audio.FFTSize)
	}
	if cfg.Render.Mode != DefaultMode {
		t.Errorf("expected default mode %q, got %q", DefaultMode, cfg.Render.Mode)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoad_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
render:
  mode: circular
  width: 640
  height: 360
  fps: 30
audio:
  fft_size: 4096
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Render.Mode != "circular" || cfg.Render.Width != 640 || cfg.Render.FPS != 30 {
		t.Errorf("file values not applied: %+v", cfg.Render)
	}
	if cfg.Audio.FFTSize != 4096 {
		t.Errorf("expected fft_size 4096, got %d", cfg.Audio.FFTSize)
	}
	// Untouched keys keep defaults.
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("expected default sample rate, got %f", cfg.Audio.SampleRate)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VIZ_STREAM_PORT", "9191")
	t.Setenv("VIZ_UDP_ENABLED", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.StreamPort != "9191" {
		t.Errorf("expected env port override, got %q", cfg.Transport.StreamPort)
	}
	if !cfg.Transport.UDPEnabled {
		t.Error("expected env UDP override to enable UDP")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		desc    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"fft not power of two", func(c *Config) { c.Audio.FFTSize = 1000 }, true},
		{"fft too large", func(c *Config) { c.Audio.FFTSize = 32768 }, true},
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, true},
		{"zero canvas", func(c *Config) { c.Render.Width = 0 }, true},
		{"huge canvas", func(c *Config) { c.Render.Height = 10000 }, true},
		{"zero fps", func(c *Config) { c.Render.FPS = 0 }, true},
		{"udp without target", func(c *Config) { c.Transport.UDPEnabled = true; c.Transport.UDPTargetAddress = "" }, true},
		{"three channels", func(c *Config) { c.Audio.InputChannels = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
