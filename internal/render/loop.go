// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"sync"
	"time"

	"visualizer/internal/analysis"
	applog "visualizer/internal/log"
)

// Source provides the per-tick snapshots the loop consumes. The analyser
// implements it; tests substitute fakes.
type Source interface {
	FrequencySnapshotInto(dst []byte) error
	TimeDomainSnapshotInto(dst []byte) error
	Bins() int
	Active() bool
}

// Sink receives each rendered frame together with its beat state.
// Implementations must not retain the frame past the call; the loop reuses
// its buffers on the next tick.
type Sink interface {
	Publish(frame *image.RGBA, beat analysis.BeatState) error
}

// Loop drives the per-tick pass: snapshot -> feature extraction -> beat
// detection -> transition/render -> publish. It is scheduled by its own
// ticker at a fixed rate and stops scheduling as soon as the source
// reports inactive, releasing per-session buffers on the way out.
//
// Each tick is a single synchronous pass; SetMode and Resize from the UI
// goroutine serialize against it through tickMu.
type Loop struct {
	source   Source
	sink     Sink
	pipeline *Pipeline

	extractor *analysis.Extractor
	detector  *analysis.Detector
	interval  time.Duration

	// Pre-allocated snapshot destinations, reused every tick.
	freqBuf []byte
	timeBuf []byte

	tickMu   sync.Mutex
	lastBeat analysis.BeatState

	// Scheduler lifecycle.
	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLoop wires a render loop for the given source, pipeline and sink.
// fps is the tick rate; the sink may be nil for analysis-only runs.
func NewLoop(source Source, pipeline *Pipeline, sink Sink, fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	bins := source.Bins()

	return &Loop{
		source:    source,
		sink:      sink,
		pipeline:  pipeline,
		extractor: analysis.NewExtractor(bins),
		detector:  analysis.NewDetector(),
		interval:  time.Second / time.Duration(fps),
		freqBuf:   make([]byte, bins),
		timeBuf:   make([]byte, bins),
	}
}

// Start begins scheduling ticks at the configured rate. Safe to call once
// per Start/Stop cycle; a second call while running is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.ticker != nil {
		l.mu.Unlock()
		applog.Warnf("RenderLoop: Start called but already running.")
		return
	}
	l.ticker = time.NewTicker(l.interval)
	l.doneChan = make(chan struct{})
	l.stopOnce = sync.Once{}

	ticker := l.ticker
	doneChan := l.doneChan
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		applog.Infof("RenderLoop: Started (interval: %s)", l.interval)
		for {
			select {
			case <-ticker.C:
				if !l.Tick() {
					// Source went inactive: stop scheduling immediately
					// and release per-session buffers.
					ticker.Stop()
					l.releaseSession()
					applog.Infof("RenderLoop: Source inactive, loop stopped.")
					return
				}
			case <-doneChan:
				l.releaseSession()
				return
			}
		}
	}()
}

// Stop signals the loop goroutine to terminate and waits for it to exit.
// Idempotent.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if l.ticker == nil {
		l.mu.Unlock()
		return nil
	}
	l.stopOnce.Do(func() {
		close(l.doneChan)
		l.ticker.Stop()
		l.ticker = nil
	})
	l.mu.Unlock()

	l.wg.Wait()
	applog.Infof("RenderLoop: Stopped.")
	return nil
}

// Tick runs one synchronous pass and reports whether scheduling should
// continue. Exported so tests can drive frames manually without a ticker.
//
// A malformed snapshot or an unready canvas degrades to skipping the tick
// while keeping the previous beat state; neither is fatal.
func (l *Loop) Tick() bool {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	if !l.source.Active() {
		return false
	}

	if err := l.source.FrequencySnapshotInto(l.freqBuf); err != nil {
		applog.Debugf("RenderLoop: Skipping tick, frequency snapshot: %v", err)
		return true
	}
	if err := l.source.TimeDomainSnapshotInto(l.timeBuf); err != nil {
		applog.Debugf("RenderLoop: Skipping tick, time snapshot: %v", err)
		return true
	}

	frame, err := l.extractor.Snapshot(l.freqBuf, l.timeBuf)
	if err != nil {
		applog.Debugf("RenderLoop: Skipping tick, %v", err)
		return true
	}

	beat := l.detector.Detect(frame.Frequency)
	l.lastBeat = beat

	img, err := l.pipeline.Render(frame, beat)
	if err != nil {
		// Canvas not ready; retry next tick.
		return true
	}

	if l.sink != nil {
		if err := l.sink.Publish(img, beat); err != nil {
			applog.Debugf("RenderLoop: Publish failed: %v", err)
		}
	}
	return true
}

// SetMode forwards a mode selection to the pipeline, serialized against
// the tick in progress.
func (l *Loop) SetMode(mode Mode) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	l.pipeline.SetMode(mode)
}

// Mode returns the pipeline's current target mode.
func (l *Loop) Mode() Mode {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	return l.pipeline.Mode()
}

// Resize forwards a canvas size change to the pipeline.
func (l *Loop) Resize(width, height int) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	l.pipeline.Resize(width, height)
}

// LastBeat returns the most recent beat state, for UI display only.
func (l *Loop) LastBeat() analysis.BeatState {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	return l.lastBeat
}

func (l *Loop) releaseSession() {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	l.pipeline.ReleaseSession()
}
