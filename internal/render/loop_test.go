// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"visualizer/internal/analysis"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource hands out constant snapshots and flips inactive after a
// configurable number of ticks.
type fakeSource struct {
	bins     int
	freqVal  byte
	timeVal  byte
	active   atomic.Bool
	remain   atomic.Int64 // Ticks before going inactive; <0 means forever.
	snapshot atomic.Int64
}

func newFakeSource(bins int, ticks int64) *fakeSource {
	s := &fakeSource{bins: bins, freqVal: 100, timeVal: 128}
	s.active.Store(true)
	s.remain.Store(ticks)
	return s
}

func (s *fakeSource) FrequencySnapshotInto(dst []byte) error {
	for i := range dst {
		dst[i] = s.freqVal
	}
	s.snapshot.Add(1)
	return nil
}

func (s *fakeSource) TimeDomainSnapshotInto(dst []byte) error {
	for i := range dst {
		dst[i] = s.timeVal
	}
	return nil
}

func (s *fakeSource) Bins() int { return s.bins }

func (s *fakeSource) Active() bool {
	if !s.active.Load() {
		return false
	}
	if r := s.remain.Load(); r >= 0 {
		if r == 0 {
			s.active.Store(false)
			return false
		}
		s.remain.Add(-1)
	}
	return true
}

type fakeSink struct {
	frames atomic.Int64
	beats  atomic.Int64
}

func (s *fakeSink) Publish(frame *image.RGBA, beat analysis.BeatState) error {
	s.frames.Add(1)
	if beat.Beat {
		s.beats.Add(1)
	}
	return nil
}

func TestLoopTickPublishes(t *testing.T) {
	source := newFakeSource(128, -1)
	sink := &fakeSink{}
	pipeline := NewPipeline(testCanvasW, testCanvasH, ModeBars)
	loop := NewLoop(source, pipeline, sink, 60)

	for i := 0; i < 5; i++ {
		require.True(t, loop.Tick())
	}
	assert.Equal(t, int64(5), sink.frames.Load())
	assert.Equal(t, int64(5), source.snapshot.Load())
}

func TestLoopTickStopsWhenInactive(t *testing.T) {
	source := newFakeSource(128, 3)
	sink := &fakeSink{}
	pipeline := NewPipeline(testCanvasW, testCanvasH, ModeSpectrogram)
	loop := NewLoop(source, pipeline, sink, 60)

	require.True(t, loop.Tick())
	require.True(t, pipeline.acc.Ready(), "spectrogram buffer should exist while running")
	require.True(t, loop.Tick())
	require.True(t, loop.Tick())

	assert.False(t, loop.Tick(), "tick must report stop once the source is inactive")
	assert.Equal(t, int64(3), sink.frames.Load())
}

func TestLoopTickSkipsUnreadyCanvas(t *testing.T) {
	source := newFakeSource(128, -1)
	sink := &fakeSink{}
	pipeline := NewPipeline(0, 0, ModeBars)
	loop := NewLoop(source, pipeline, sink, 60)

	require.True(t, loop.Tick(), "an unready canvas skips the tick, it does not stop the loop")
	assert.Equal(t, int64(0), sink.frames.Load())

	loop.Resize(testCanvasW, testCanvasH)
	require.True(t, loop.Tick())
	assert.Equal(t, int64(1), sink.frames.Load())
}

func TestLoopStartStop(t *testing.T) {
	source := newFakeSource(128, -1)
	sink := &fakeSink{}
	pipeline := NewPipeline(testCanvasW, testCanvasH, ModeWaveform)
	loop := NewLoop(source, pipeline, sink, 500)

	loop.Start()
	assert.Eventually(t, func() bool {
		return sink.frames.Load() >= 3
	}, time.Second, 5*time.Millisecond, "loop should publish frames while running")

	require.NoError(t, loop.Stop())
	require.NoError(t, loop.Stop(), "stop must be idempotent")
}

func TestLoopStopsItselfOnInactiveSource(t *testing.T) {
	source := newFakeSource(128, 4)
	sink := &fakeSink{}
	pipeline := NewPipeline(testCanvasW, testCanvasH, ModeSpectrogram)
	loop := NewLoop(source, pipeline, sink, 500)

	loop.Start()
	assert.Eventually(t, func() bool {
		return !source.active.Load()
	}, time.Second, 5*time.Millisecond, "source should run out")

	// Stop waits for the loop goroutine, after which the session buffers
	// must be gone.
	require.NoError(t, loop.Stop())
	assert.False(t, pipeline.acc.Ready(), "loop should release the session after the source ends")
	assert.Equal(t, int64(4), sink.frames.Load())
}

func TestLoopModeControls(t *testing.T) {
	source := newFakeSource(128, -1)
	pipeline := NewPipeline(testCanvasW, testCanvasH, ModeBars)
	loop := NewLoop(source, pipeline, nil, 60)

	loop.SetMode(ModeCircular)
	assert.Equal(t, ModeCircular, loop.Mode())

	require.True(t, loop.Tick())
	assert.True(t, pipeline.Transitioning())
}
