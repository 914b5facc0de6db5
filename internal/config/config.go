// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"visualizer/pkg/bitint"
)

// Core configuration constants that define the boundaries and defaults
// for the visualizer engine.
const (
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultFramesPerBuffer = 1024  // Balanced latency/analysis resolution
	DefaultFFTSize         = 2048  // 1024 frequency bins per snapshot
	DefaultChannels        = 1     // Mono analysis
	DefaultWidth           = 960   // Render canvas width (pixels)
	DefaultHeight          = 540   // Render canvas height (pixels)
	DefaultFPS             = 60    // Render ticks per second
	DefaultMode            = "bars"
	DefaultFFTWindow       = "hann"
	DefaultStreamPort      = "8080"

	MinDeviceID   = -1     // -1 selects the system default input device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFFTSize    = 16384  // Largest FFT the analyser will allocate
	MaxCanvasDim  = 4096   // Largest canvas edge the renderer will allocate
)

// Config is the main application configuration, loaded from YAML with
// env-var and CLI-flag overrides applied on top.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Command   string          `yaml:"-"` // One-off command ("list") instead of running the engine
	Headless  bool            `yaml:"headless"` // Skip the terminal monitor UI
	Audio     AudioConfig     `yaml:"audio"`
	Render    RenderConfig    `yaml:"render"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds settings for the audio input side of the pipeline.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Audio frames per capture buffer
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture (1=mono, 2=stereo)
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from PortAudio
	FFTSize         int     `yaml:"fft_size"`          // FFT points (power of 2)
	FFTWindow       string  `yaml:"fft_window"`        // Window function name (hann, hamming, ...)
	File            string  `yaml:"file"`              // Audio file to play instead of capturing (wav/mp3/ogg)
}

// RenderConfig holds settings for the render loop and canvas.
type RenderConfig struct {
	Mode   string `yaml:"mode"`   // Initial visualizer mode
	Width  int    `yaml:"width"`  // Canvas width in pixels
	Height int    `yaml:"height"` // Canvas height in pixels
	FPS    int    `yaml:"fps"`    // Render ticks per second
}

// TransportConfig holds settings for publishing rendered frames and beat events.
type TransportConfig struct {
	StreamPort       string `yaml:"stream_port"`        // WebSocket frame stream port
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send beat events over UDP
	UDPTargetAddress string `yaml:"udp_target_address"` // Target for UDP beat packets
}

// Load reads configuration from a YAML file at path. An empty path checks
// "visualizer.yaml" in the working directory and falls back to built-in
// defaults when absent. Env overrides are applied after file values, then
// the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("visualizer.yaml"); err == nil {
			path = "visualizer.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     MinDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			InputChannels:   DefaultChannels,
			LowLatency:      false,
			FFTSize:         DefaultFFTSize,
			FFTWindow:       DefaultFFTWindow,
		},
		Render: RenderConfig{
			Mode:   DefaultMode,
			Width:  DefaultWidth,
			Height: DefaultHeight,
			FPS:    DefaultFPS,
		},
		Transport: TransportConfig{
			StreamPort:       DefaultStreamPort,
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f out of range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FFTSize) || c.Audio.FFTSize > MaxFFTSize {
		return fmt.Errorf("audio.fft_size must be a power of 2 <= %d, got %d",
			MaxFFTSize, c.Audio.FFTSize)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("audio.frames_per_buffer must be positive, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Audio.InputChannels < 1 || c.Audio.InputChannels > 2 {
		return fmt.Errorf("audio.input_channels must be 1 or 2, got %d", c.Audio.InputChannels)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 ||
		c.Render.Width > MaxCanvasDim || c.Render.Height > MaxCanvasDim {
		return fmt.Errorf("render canvas %dx%d out of range (1..%d per edge)",
			c.Render.Width, c.Render.Height, MaxCanvasDim)
	}
	if c.Render.FPS <= 0 || c.Render.FPS > 240 {
		return fmt.Errorf("render.fps must be in (0, 240], got %d", c.Render.FPS)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	return nil
}

// applyEnvOverrides applies VIZ_* environment variables on top of whatever
// was loaded from file. Only a handful of deployment-relevant knobs are
// exposed this way.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VIZ_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("VIZ_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("VIZ_STREAM_PORT"); ok {
		c.Transport.StreamPort = val
	}
	if val, ok := os.LookupEnv("VIZ_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("VIZ_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
}
