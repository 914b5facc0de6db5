// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"visualizer/cmd"
	"visualizer/internal/analysis"
	"visualizer/internal/audio"
	applog "visualizer/internal/log"
	"visualizer/internal/render"
	"visualizer/internal/transport"
	"visualizer/internal/transport/udp"
	"visualizer/internal/tui"
	"visualizer/pkg/build"
)

// main wires the whole pipeline. The program flow is divided into three
// distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information and logging
//   - Parse command line arguments and configuration
//   - Execute one-off commands if requested
//   - Construct analyser, source, pipeline, transports
//
// 2. Concurrent Phase (Hot Path):
//   - Start the audio source (capture or file playback)
//   - Start the render loop
//   - Run the terminal monitor (unless headless)
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the loop, the source and the transports in order
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("Main: %v", err)
	}
	if cfg == nil {
		return // Help or version output; nothing to run.
	}

	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if lvl, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(lvl)
	}

	// One-off commands that need PortAudio but not the engine.
	if cfg.Command == "list" {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
		defer audio.Terminate()
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
		return
	}

	applog.Infof("Main: %s %s starting", build.GetFlags().Name, build.GetFlags().Version)

	// Audio source: a file when configured, live capture otherwise. The
	// analyser's sample rate has to match the source, so the file is
	// probed first.
	var (
		analyser   *analysis.Analyser
		capture    *audio.Capture
		fileSource *audio.FileSource
	)

	if cfg.Audio.File != "" {
		fileSource, err = audio.NewFileSource(cfg.Audio.File, cfg.Audio.FramesPerBuffer)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
		analyser, err = analysis.NewAnalyser(cfg.Audio.FFTSize, fileSource.SampleRate(), cfg.Audio.FFTWindow)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
		fileSource.Attach(analyser)
	} else {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
		defer audio.Terminate()

		analyser, err = analysis.NewAnalyser(cfg.Audio.FFTSize, cfg.Audio.SampleRate, cfg.Audio.FFTWindow)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
		capture, err = audio.NewCapture(cfg, analyser)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
	}

	mode, err := render.ParseMode(cfg.Render.Mode)
	if err != nil {
		applog.Fatalf("Main: %v", err)
	}
	pipeline := render.NewPipeline(cfg.Render.Width, cfg.Render.Height, mode)

	// Outputs: websocket stream always, UDP beat events when enabled.
	wsTransport := transport.NewWebSocketTransport(":" + cfg.Transport.StreamPort)
	transports := []transport.Transport{wsTransport}

	if cfg.Debug {
		transports = append(transports, transport.NewLoggingTransport())
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
		beatPub, err := udp.NewBeatPublisher(sender)
		if err != nil {
			applog.Fatalf("Main: %v", err)
		}
		transports = append(transports, beatPub)
	}

	hub := transport.NewHub(transports...)
	hub.SetModeName(mode.String())

	loop := render.NewLoop(analyser, pipeline, hub, cfg.Render.FPS)

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	if fileSource != nil {
		if err := fileSource.Start(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
	} else {
		if err := capture.Start(); err != nil {
			applog.Fatalf("Main: %v", err)
		}
	}

	loop.Start()

	if cfg.Headless {
		applog.Infof("Main: Running headless; Ctrl-C to stop. Stream at %s", wsTransport.Addr())
		<-done
	} else {
		monitor := tui.NewMonitor(loop, hub, wsTransport.Addr(), wsTransport.ClientCount)
		program := tea.NewProgram(monitor)

		// A termination signal must also unwind the TUI.
		go func() {
			<-done
			program.Quit()
		}()

		if _, err := program.Run(); err != nil {
			applog.Errorf("Main: Monitor error: %v", err)
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := loop.Stop(); err != nil {
		applog.Errorf("Main: Error stopping render loop: %v", err)
	}

	if fileSource != nil {
		if err := fileSource.Close(); err != nil {
			applog.Errorf("Main: Error closing file source: %v", err)
		}
	} else if capture != nil {
		if err := capture.Stop(); err != nil {
			applog.Errorf("Main: Error stopping capture: %v", err)
		}
	}

	if err := hub.Close(); err != nil {
		applog.Errorf("Main: Error closing transports: %v", err)
	}

	applog.Infof("Main: Shutdown complete.")
}
