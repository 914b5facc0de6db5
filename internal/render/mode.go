// SPDX-License-Identifier: MIT
/*
Package render implements the visualizer's draw pipeline: a closed set of
render modes over per-tick analysis frames, alpha cross-fades between
modes, a scrolling spectrogram accumulator and the tick-driven render loop
that wires them together.

All drawing happens into pre-allocated RGBA layers; per-tick work never
allocates buffers sized by the canvas or the spectrum.
*/
package render

import "fmt"

// Mode identifies one of the available draw algorithms.
type Mode uint8

const (
	ModeBars Mode = iota
	ModeWaveform
	ModeCircular
	ModeParticles
	ModeSpectrogram
)

// String returns the mode's lowercase name.
func (m Mode) String() string {
	switch m {
	case ModeBars:
		return "bars"
	case ModeWaveform:
		return "waveform"
	case ModeCircular:
		return "circular"
	case ModeParticles:
		return "particles"
	case ModeSpectrogram:
		return "spectrogram"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name to a Mode, case-sensitively matching the
// lowercase names used in config and on the CLI.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "bars":
		return ModeBars, nil
	case "waveform":
		return ModeWaveform, nil
	case "circular":
		return ModeCircular, nil
	case "particles":
		return ModeParticles, nil
	case "spectrogram":
		return ModeSpectrogram, nil
	default:
		return ModeBars, fmt.Errorf("unknown visualizer mode: '%s'", name)
	}
}

// Modes returns all available modes in display order.
func Modes() []Mode {
	return []Mode{ModeBars, ModeWaveform, ModeCircular, ModeParticles, ModeSpectrogram}
}
