// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
)

// ErrMalformedBuffer indicates an input snapshot with the wrong length.
// Callers treat this as recoverable: skip the tick, keep running.
var ErrMalformedBuffer = errors.New("malformed input buffer")

// Frame is the per-tick feature set handed to the renderers: one magnitude
// byte per frequency bin and one amplitude byte per time-domain sample.
// The slices alias the extractor's own storage and are only valid until the
// next Snapshot call.
type Frame struct {
	Frequency []byte
	Time      []byte
}

// BeatState is the per-tick beat information derived from a Frame.
type BeatState struct {
	BassEnergy float64 // Normalized bass energy in [0, 1].
	Beat       bool    // True when this tick fired a beat.
}

// Extractor snapshots raw frequency/time buffers into frame-local storage
// so the core never holds references to source-owned memory across ticks.
// Pure and stateless apart from its reusable backing buffers.
type Extractor struct {
	bins  int
	frame Frame
}

// NewExtractor creates an extractor for snapshots of the given bin count.
func NewExtractor(bins int) *Extractor {
	return &Extractor{
		bins: bins,
		frame: Frame{
			Frequency: make([]byte, bins),
			Time:      make([]byte, bins),
		},
	}
}

// Snapshot validates and copies the given buffers into the extractor's
// storage, returning the refreshed Frame. A length mismatch returns
// ErrMalformedBuffer and leaves the previous frame contents untouched.
func (e *Extractor) Snapshot(frequency, timeDomain []byte) (Frame, error) {
	if len(frequency) != e.bins || len(timeDomain) != e.bins {
		return Frame{}, fmt.Errorf("%w: got freq=%d time=%d, want %d",
			ErrMalformedBuffer, len(frequency), len(timeDomain), e.bins)
	}
	copy(e.frame.Frequency, frequency)
	copy(e.frame.Time, timeDomain)
	return e.frame, nil
}
