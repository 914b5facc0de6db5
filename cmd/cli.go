// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"visualizer/internal/config"
	"visualizer/pkg/build"
)

// ParseArgs builds the effective configuration: YAML file and env
// overrides first, then CLI flags on top. One-off commands ("list") are
// recorded in cfg.Command instead of running the engine.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetFlags()

	var configPath string
	var cfg *config.Config
	var modeName string
	flagDefaults := config.Default()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio visualizer engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			cfg.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// File and env loading happens before flags are applied so explicit
	// flags always win.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		applyIfSet := func(name string, apply func()) {
			if cmd.Flags().Changed(name) {
				apply()
			}
		}
		applyIfSet("device", func() { cfg.Audio.InputDevice = flagDefaults.Audio.InputDevice })
		applyIfSet("sample-rate", func() { cfg.Audio.SampleRate = flagDefaults.Audio.SampleRate })
		applyIfSet("frames-per-buffer", func() { cfg.Audio.FramesPerBuffer = flagDefaults.Audio.FramesPerBuffer })
		applyIfSet("channels", func() { cfg.Audio.InputChannels = flagDefaults.Audio.InputChannels })
		applyIfSet("low-latency", func() { cfg.Audio.LowLatency = flagDefaults.Audio.LowLatency })
		applyIfSet("fft-size", func() { cfg.Audio.FFTSize = flagDefaults.Audio.FFTSize })
		applyIfSet("fft-window", func() { cfg.Audio.FFTWindow = flagDefaults.Audio.FFTWindow })
		applyIfSet("file", func() { cfg.Audio.File = flagDefaults.Audio.File })
		applyIfSet("mode", func() { cfg.Render.Mode = modeName })
		applyIfSet("width", func() { cfg.Render.Width = flagDefaults.Render.Width })
		applyIfSet("height", func() { cfg.Render.Height = flagDefaults.Render.Height })
		applyIfSet("fps", func() { cfg.Render.FPS = flagDefaults.Render.FPS })
		applyIfSet("port", func() { cfg.Transport.StreamPort = flagDefaults.Transport.StreamPort })
		applyIfSet("udp", func() { cfg.Transport.UDPEnabled = flagDefaults.Transport.UDPEnabled })
		applyIfSet("udp-target", func() { cfg.Transport.UDPTargetAddress = flagDefaults.Transport.UDPTargetAddress })
		applyIfSet("headless", func() { cfg.Headless = flagDefaults.Headless })
		applyIfSet("verbose", func() { cfg.Debug = flagDefaults.Debug })

		return cfg.Validate()
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML configuration file")

	// Audio input configuration
	rootCmd.PersistentFlags().IntVarP(&flagDefaults.Audio.InputDevice, "device", "d", config.MinDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flagDefaults.Audio.InputChannels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&flagDefaults.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&flagDefaults.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&flagDefaults.Audio.LowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	rootCmd.PersistentFlags().IntVar(&flagDefaults.Audio.FFTSize, "fft-size", config.DefaultFFTSize,
		"FFT size in samples (power of 2)")
	rootCmd.PersistentFlags().StringVar(&flagDefaults.Audio.FFTWindow, "fft-window", config.DefaultFFTWindow,
		"FFT window function (hann, hamming, blackman, ...)")
	rootCmd.PersistentFlags().StringVarP(&flagDefaults.Audio.File, "file", "f", "",
		"Play an audio file (wav/mp3/ogg) instead of capturing")

	// Render configuration
	rootCmd.PersistentFlags().StringVarP(&modeName, "mode", "m", config.DefaultMode,
		"Initial visualizer mode (bars, waveform, circular, particles, spectrogram)")
	rootCmd.PersistentFlags().IntVar(&flagDefaults.Render.Width, "width", config.DefaultWidth,
		"Render canvas width in pixels")
	rootCmd.PersistentFlags().IntVar(&flagDefaults.Render.Height, "height", config.DefaultHeight,
		"Render canvas height in pixels")
	rootCmd.PersistentFlags().IntVar(&flagDefaults.Render.FPS, "fps", config.DefaultFPS,
		"Render ticks per second")

	// Transport configuration
	rootCmd.PersistentFlags().StringVarP(&flagDefaults.Transport.StreamPort, "port", "p", config.DefaultStreamPort,
		"WebSocket stream port")
	rootCmd.PersistentFlags().BoolVar(&flagDefaults.Transport.UDPEnabled, "udp", false,
		"Publish beat events over UDP")
	rootCmd.PersistentFlags().StringVar(&flagDefaults.Transport.UDPTargetAddress, "udp-target", "127.0.0.1:9090",
		"Target address for UDP beat packets")

	// Runtime configuration
	rootCmd.PersistentFlags().BoolVar(&flagDefaults.Headless, "headless", false,
		"Run without the terminal monitor UI")
	rootCmd.PersistentFlags().BoolVarP(&flagDefaults.Debug, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}
