// SPDX-License-Identifier: MIT
package analysis

import (
	"time"
)

const (
	// historyCap bounds the rolling energy history. Older samples are
	// overwritten FIFO once the ring is full.
	historyCap = 20

	// warmUpSamples is the minimum history length before a beat may fire.
	// The first warmUpSamples-1 calls are warm-up and never detect.
	warmUpSamples = 10

	// thresholdRatio is how far above the rolling mean the current bass
	// energy must rise to count as a beat.
	thresholdRatio = 1.5

	// minBeatGap rate-limits detection so one transient cannot retrigger
	// on consecutive ticks.
	minBeatGap = 200 * time.Millisecond

	// bassFraction selects the low end of the spectrum: the first 10% of
	// frequency bins.
	bassFraction = 0.1
)

// Detector decides, once per tick, whether the current frame constitutes a
// new beat. It keeps a bounded FIFO history of raw bass-energy sums and the
// timestamp of the last fired beat.
//
// Not reentrant: Detect must be called strictly sequentially, one call per
// render tick.
type Detector struct {
	history  [historyCap]float64
	head     int // Index of the oldest entry.
	length   int
	lastBeat time.Time

	now func() time.Time // Injectable clock for tests.
}

// NewDetector creates a beat detector with an empty history.
func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// Detect computes the bass energy of the given frequency snapshot, updates
// the rolling history and returns the resulting BeatState.
//
// A beat fires only when all three hold: the history has at least
// warmUpSamples entries, more than minBeatGap has passed since the last
// beat, and the current energy exceeds thresholdRatio times the history
// mean (current sample included).
func (d *Detector) Detect(frequency []byte) BeatState {
	bassEnergy := bassMean(frequency)

	d.push(bassEnergy)

	avg := d.mean()
	threshold := avg * thresholdRatio

	now := d.now()
	beat := bassEnergy > threshold &&
		now.Sub(d.lastBeat) > minBeatGap &&
		d.length >= warmUpSamples

	if beat {
		d.lastBeat = now
	}

	return BeatState{
		BassEnergy: bassEnergy / 255,
		Beat:       beat,
	}
}

// HistoryLen returns the current number of history entries (0..historyCap).
func (d *Detector) HistoryLen() int {
	return d.length
}

// bassMean averages the first 10% of the frequency bins. Buffers shorter
// than ten bins fall back to their first bin.
func bassMean(frequency []byte) float64 {
	if len(frequency) == 0 {
		return 0
	}
	bassRange := int(float64(len(frequency)) * bassFraction)
	if bassRange < 1 {
		bassRange = 1
	}

	var sum float64
	for _, v := range frequency[:bassRange] {
		sum += float64(v)
	}
	return sum / float64(bassRange)
}

// push appends an energy sample, evicting the oldest once full.
func (d *Detector) push(energy float64) {
	if d.length < historyCap {
		d.history[(d.head+d.length)%historyCap] = energy
		d.length++
		return
	}
	d.history[d.head] = energy
	d.head = (d.head + 1) % historyCap
}

// mean averages all entries currently in the history.
func (d *Detector) mean() float64 {
	if d.length == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < d.length; i++ {
		sum += d.history[(d.head+i)%historyCap]
	}
	return sum / float64(d.length)
}
