// SPDX-License-Identifier: MIT
/*
Package analysis converts raw PCM into the per-tick data the render loop
consumes: byte-scaled frequency and time-domain snapshots, frame extraction
with copy-in semantics, and rolling-energy beat detection.

Thread safety: Process runs on the audio callback thread while snapshot
reads happen on the render tick; the analyser workspace is guarded by a
RWMutex and all hot-path buffers are pre-allocated.
*/
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	applog "visualizer/internal/log"
	"visualizer/pkg/bitint"
)

// Byte-scaling parameters for frequency snapshots. Magnitudes are mapped
// from this decibel range onto 0-255; anything quieter clamps to 0 and
// anything louder clamps to 255.
const (
	minDecibels = -100.0
	maxDecibels = -30.0

	// Exponential smoothing factor applied to magnitudes across ticks.
	// Higher values favor the previous frame and calm the visuals down.
	smoothingFactor = 0.8
)

// Pre-allocated buffers for the analyser's FFT work.
type workspace struct {
	timeline  []float64    // Rolling window of the most recent fftSize samples, normalized.
	input     []float64    // Windowed copy of timeline handed to the FFT.
	coeffs    []complex128 // FFT complex output (fftSize/2 + 1 values).
	smoothed  []float64    // Exponentially smoothed magnitudes, one per bin.
	window    []float64    // Pre-computed window coefficients.
	freqBytes []byte       // Latest frequency snapshot (0-255 per bin).
	timeBytes []byte       // Latest time-domain snapshot (centered at 128).
	mu        sync.RWMutex // Protects every buffer above.
}

// Analyser performs FFT analysis on incoming PCM buffers and exposes the
// results as byte snapshots: one magnitude byte per frequency bin and one
// amplitude byte per time-domain sample. Both snapshots have length
// fftSize/2, fixed for the life of the analyser.
type Analyser struct {
	fft        *fourier.FFT
	fftSize    int
	bins       int
	sampleRate float64
	workspace  workspace
	active     atomic.Bool
}

// NewAnalyser creates an analyser for the given FFT size (power of 2) and
// sample rate. windowName selects the window function; an unknown name is
// an error rather than a silent fallback.
func NewAnalyser(fftSize int, sampleRate float64, windowName string) (*Analyser, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	windowCoeffs, err := windowCoefficients(fftSize, windowName)
	if err != nil {
		return nil, err
	}

	bins := fftSize / 2

	applog.Infof("Analysis: Initializing Analyser (FFT: %d, Bins: %d, SampleRate: %.1f Hz, Window: %s)",
		fftSize, bins, sampleRate, windowName)

	return &Analyser{
		fft:        fourier.NewFFT(fftSize),
		fftSize:    fftSize,
		bins:       bins,
		sampleRate: sampleRate,
		workspace: workspace{
			timeline:  make([]float64, fftSize),
			input:     make([]float64, fftSize),
			coeffs:    make([]complex128, fftSize/2+1),
			smoothed:  make([]float64, bins),
			window:    windowCoeffs,
			freqBytes: make([]byte, bins),
			timeBytes: make([]byte, bins),
		},
	}, nil
}

// Process ingests one PCM buffer: it advances the rolling sample timeline,
// runs the windowed FFT, smooths the magnitudes and refreshes both byte
// snapshots. Hot path: no allocations.
func (a *Analyser) Process(buffer []int32) {
	const normFactor = 1.0 / float64(0x80000000) // int32 -> [-1.0, 1.0)

	w := &a.workspace
	w.mu.Lock()

	// Advance the timeline. Buffers longer than the FFT keep only their tail.
	n := len(buffer)
	if n > a.fftSize {
		buffer = buffer[n-a.fftSize:]
		n = a.fftSize
	}
	copy(w.timeline, w.timeline[n:])
	base := a.fftSize - n
	for i, sample := range buffer {
		w.timeline[base+i] = float64(sample) * normFactor
	}

	// Window and transform.
	for i := range w.input {
		w.input[i] = w.timeline[i] * w.window[i]
	}
	a.fft.Coefficients(w.coeffs, w.input)

	// Smooth magnitudes and map to bytes over the decibel range.
	magScale := 2.0 / float64(a.fftSize)
	for i := 0; i < a.bins; i++ {
		mag := cmplx.Abs(w.coeffs[i]) * magScale
		w.smoothed[i] = smoothingFactor*w.smoothed[i] + (1-smoothingFactor)*mag
		w.freqBytes[i] = magnitudeByte(w.smoothed[i])
	}

	// Time-domain snapshot from the newest samples, centered at 128.
	for i := 0; i < a.bins; i++ {
		s := w.timeline[a.fftSize-a.bins+i]
		v := 128 + s*127
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		w.timeBytes[i] = byte(v)
	}

	w.mu.Unlock()
}

// magnitudeByte maps a linear magnitude onto the 0-255 decibel scale.
func magnitudeByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := (db - minDecibels) / (maxDecibels - minDecibels) * 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// FrequencySnapshotInto copies the latest frequency snapshot into dst,
// which must have length Bins(). Intended for the render tick, which owns
// a pre-allocated destination; no allocation happens here.
func (a *Analyser) FrequencySnapshotInto(dst []byte) error {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	if len(dst) != a.bins {
		return fmt.Errorf("destination length %d does not match bin count %d", len(dst), a.bins)
	}
	copy(dst, a.workspace.freqBytes)
	return nil
}

// TimeDomainSnapshotInto copies the latest time-domain snapshot into dst,
// which must have length Bins().
func (a *Analyser) TimeDomainSnapshotInto(dst []byte) error {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	if len(dst) != a.bins {
		return fmt.Errorf("destination length %d does not match bin count %d", len(dst), a.bins)
	}
	copy(dst, a.workspace.timeBytes)
	return nil
}

// Bins returns the snapshot length (fftSize/2). Immutable after creation.
func (a *Analyser) Bins() int {
	return a.bins
}

// SampleRate returns the configured sample rate (Hz).
func (a *Analyser) SampleRate() float64 {
	return a.sampleRate
}

// FrequencyForBin returns the center frequency (Hz) for a bin index,
// or 0 for out-of-range indices.
func (a *Analyser) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= a.bins {
		return 0.0
	}
	return float64(binIndex) * (a.sampleRate / float64(a.fftSize))
}

// SetActive flips the audio-activity signal. The capture or file source
// sets this when its stream starts and clears it when the stream ends;
// the render loop stops scheduling ticks once it reads false.
func (a *Analyser) SetActive(v bool) {
	a.active.Store(v)
}

// Active reports whether an audio source is currently feeding the analyser.
func (a *Analyser) Active() bool {
	return a.active.Load()
}

// windowCoefficients builds the window coefficient slice for the named
// window function.
func windowCoefficients(size int, name string) ([]float64, error) {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}

	switch strings.ToLower(name) {
	case "hann", "hanning":
		window.Hann(coeffs)
	case "hamming":
		window.Hamming(coeffs)
	case "blackman":
		window.Blackman(coeffs)
	case "blackmannuttall":
		window.BlackmanNuttall(coeffs)
	case "nuttall":
		window.Nuttall(coeffs)
	case "lanczos":
		window.Lanczos(coeffs)
	case "bartletthann":
		window.BartlettHann(coeffs)
	default:
		return nil, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
	return coeffs, nil
}
