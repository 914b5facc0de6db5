// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"

	"visualizer/internal/analysis"
	"visualizer/internal/config"
)

func testCapture(t *testing.T, channels int) (*Capture, *analysis.Analyser) {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.InputChannels = channels

	analyser, err := analysis.NewAnalyser(cfg.Audio.FFTSize, cfg.Audio.SampleRate, cfg.Audio.FFTWindow)
	if err != nil {
		t.Fatal(err)
	}

	frames := cfg.Audio.FramesPerBuffer
	return &Capture{
		config:        cfg,
		inputBuffer:   make([]int32, frames*channels),
		monoBuffer:    make([]int32, frames),
		analyser:      analyser,
		gateEnabled:   true,
		gateThreshold: math.MaxInt32 / 1000,
	}, analyser
}

func TestGateThresholdClamping(t *testing.T) {
	c, _ := testCapture(t, 1)

	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"negative clamps to open", -0.5, 0.0},
		{"above one clamps to closed", 1.5, 1.0},
		{"mid range passes through", 0.25, 0.25},
		{"zero is always open", 0.0, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c.SetGateThreshold(tc.input)
			got := c.GetGateThreshold()
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("threshold round trip: got %f, want %f", got, tc.want)
			}
		})
	}
}

// snapshotEnergy sums the frequency snapshot as a crude "did anything get
// through" signal.
func snapshotEnergy(t *testing.T, analyser *analysis.Analyser) int {
	t.Helper()
	buf := make([]byte, analyser.Bins())
	if err := analyser.FrequencySnapshotInto(buf); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, v := range buf {
		total += int(v)
	}
	return total
}

func TestGateBlocksQuietBuffers(t *testing.T) {
	c, analyser := testCapture(t, 1)
	c.SetGateThreshold(0.01)

	// Below threshold: the analyser never sees the buffer.
	quiet := make([]int32, c.config.Audio.FramesPerBuffer)
	for i := range quiet {
		quiet[i] = int32(float64(math.MaxInt32) * 0.001)
	}
	c.processBuffer(quiet)
	if e := snapshotEnergy(t, analyser); e != 0 {
		t.Fatalf("quiet buffer leaked through the gate (energy %d)", e)
	}

	// Above threshold: samples reach the analyser.
	loud := make([]int32, c.config.Audio.FramesPerBuffer)
	for i := range loud {
		loud[i] = int32(float64(math.MaxInt32) * 0.5 * math.Sin(float64(i)*0.2))
	}
	c.processBuffer(loud)
	if e := snapshotEnergy(t, analyser); e == 0 {
		t.Fatal("loud buffer was blocked by the gate")
	}
}

func TestGateDisabledPassesEverything(t *testing.T) {
	c, analyser := testCapture(t, 1)
	c.DisableGate()
	c.SetGateThreshold(1.0)

	quiet := make([]int32, c.config.Audio.FramesPerBuffer)
	for i := range quiet {
		quiet[i] = int32(float64(math.MaxInt32) * 0.01 * math.Sin(float64(i)*0.2))
	}
	c.processBuffer(quiet)
	if e := snapshotEnergy(t, analyser); e == 0 {
		t.Fatal("disabled gate should pass all buffers")
	}
}

func TestStereoDownmixTakesFirstChannel(t *testing.T) {
	c, analyser := testCapture(t, 2)
	c.DisableGate()

	frames := c.config.Audio.FramesPerBuffer
	interleaved := make([]int32, frames*2)
	for i := 0; i < frames; i++ {
		interleaved[2*i] = int32(float64(math.MaxInt32) * 0.5 * math.Sin(float64(i)*0.2))
		interleaved[2*i+1] = 0 // Right channel silent; must not matter.
	}
	c.processBuffer(interleaved)
	if e := snapshotEnergy(t, analyser); e == 0 {
		t.Fatal("stereo buffer did not reach the analyser")
	}
}
