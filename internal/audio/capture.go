// SPDX-License-Identifier: MIT
/*
Package audio feeds the analyser with PCM from one of two sources: live
capture through PortAudio or decoded file playback (WAV, MP3, Ogg Vorbis).

Thread safety:
- The capture callback runs on a dedicated OS thread with pre-allocated
  buffers only; no allocations in the hot path.
- Source activity is signalled through the analyser's atomic active flag,
  set on stream start and cleared on stop or end of file.
*/
package audio

import (
	"math"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"visualizer/internal/analysis"
	"visualizer/internal/config"
	applog "visualizer/internal/log"
)

// Capture owns the PortAudio input stream and pushes every buffer through
// the noise gate into the analyser.
type Capture struct {
	config *config.Config

	inputBuffer  []int32
	monoBuffer   []int32 // Downmix target when capturing more than one channel.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	analyser *analysis.Analyser

	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0..math.MaxInt32).
}

// NewCapture resolves the configured input device and pre-allocates the
// capture buffers. PortAudio must be initialized first.
func NewCapture(cfg *config.Config, analyser *analysis.Analyser) (*Capture, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	inputSize := cfg.Audio.FramesPerBuffer * cfg.Audio.InputChannels

	c := &Capture{
		config:        cfg,
		inputBuffer:   make([]int32, inputSize),
		monoBuffer:    make([]int32, cfg.Audio.FramesPerBuffer),
		inputDevice:   inputDevice,
		analyser:      analyser,
		gateEnabled:   true,
		gateThreshold: math.MaxInt32 / 1000, // ~0.1% of full scale
	}

	if cfg.Audio.LowLatency {
		c.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		c.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("Capture: Using device '%s' (latency: %s)", inputDevice.Name, c.inputLatency)
	return c, nil
}

// Start opens and starts the input stream. The analyser is marked active
// once samples begin flowing.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.config.Audio.InputChannels,
			Device:   c.inputDevice,
			Latency:  c.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: c.config.Audio.FramesPerBuffer,
		SampleRate:      c.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInputStream)
	if err != nil {
		return err
	}
	c.inputStream = stream

	if err := c.inputStream.Start(); err != nil {
		c.inputStream.Close()
		c.inputStream = nil
		return err
	}

	c.analyser.SetActive(true)
	applog.Infof("Capture: Input stream started (%.0f Hz, %d frames/buffer)",
		c.config.Audio.SampleRate, c.config.Audio.FramesPerBuffer)
	return nil
}

// Stop stops and closes the input stream and marks the analyser inactive.
func (c *Capture) Stop() error {
	c.analyser.SetActive(false)

	if c.inputStream != nil {
		if err := c.inputStream.Stop(); err != nil {
			return err
		}
		if err := c.inputStream.Close(); err != nil {
			return err
		}
		c.inputStream = nil
	}
	applog.Infof("Capture: Input stream stopped.")
	return nil
}

// processInputStream is the PortAudio callback.
// Performance critical: pre-allocated buffers only, no allocations.
func (c *Capture) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(c.inputBuffer, in)
	c.processBuffer(c.inputBuffer)
}

// processBuffer applies the noise gate and forwards the (mono) buffer to
// the analyser. Branchless gate scan, same as the peak detector.
func (c *Capture) processBuffer(buffer []int32) {
	if c.gateEnabled {
		var maxAmplitude int32
		for i := range buffer {
			sample := buffer[i]
			mask := sample >> 31
			amplitude := (sample ^ mask) - mask
			diff := amplitude - maxAmplitude
			maxAmplitude += (diff & (diff >> 31)) ^ diff
		}
		if maxAmplitude <= c.gateThreshold {
			return
		}
	}

	channels := c.config.Audio.InputChannels
	if channels == 1 {
		c.analyser.Process(buffer)
		return
	}

	// Downmix by taking the first channel of each frame.
	frames := c.config.Audio.FramesPerBuffer
	for i := 0; i < frames; i++ {
		if i*channels < len(buffer) {
			c.monoBuffer[i] = buffer[i*channels]
		} else {
			c.monoBuffer[i] = 0
		}
	}
	c.analyser.Process(c.monoBuffer)
}
