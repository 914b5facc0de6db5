// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"
	"math"

	"visualizer/internal/analysis"
)

const (
	maxSpokes          = 180
	circleRadiusRatio  = 0.3 // Base circle radius relative to min(width, height).
	spokeExtendRatio   = 0.8 // Max spoke extension relative to the base radius.
	spokeBeatThickness = 2
)

var (
	spokeInner     = color.RGBA{R: 70, G: 90, B: 220, A: 255}
	spokeOuter     = color.RGBA{R: 120, G: 230, B: 255, A: 255}
	spokeInnerBeat = color.RGBA{R: 240, G: 90, B: 40, A: 255}
	spokeOuterBeat = color.RGBA{R: 255, G: 230, B: 90, A: 255}
)

// circularRenderer places up to 180 radial spokes evenly around a circle,
// each spoke's length proportional to its sampled frequency magnitude,
// stroked with a radial gradient.
type circularRenderer struct{}

func (circularRenderer) draw(layer *image.RGBA, frame analysis.Frame, beat analysis.BeatState) {
	b := layer.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(frame.Frequency) == 0 || w == 0 || h == 0 {
		return
	}

	spokes := len(frame.Frequency)
	if spokes > maxSpokes {
		spokes = maxSpokes
	}

	cx := float64(w) / 2
	cy := float64(h) / 2
	radius := circleRadiusRatio * math.Min(float64(w), float64(h))

	inner, outer := spokeInner, spokeOuter
	thickness := 1
	if beat.Beat {
		inner, outer = spokeInnerBeat, spokeOuterBeat
		thickness = spokeBeatThickness
	}

	angleStep := 2 * math.Pi / float64(spokes)
	for i := 0; i < spokes; i++ {
		sample := frame.Frequency[i*len(frame.Frequency)/spokes]
		extend := float64(sample) / 255 * spokeExtendRatio * radius

		angle := float64(i)*angleStep - math.Pi/2 // Start from the top.
		sin, cos := math.Sincos(angle)

		startX := cx + cos*radius
		startY := cy + sin*radius
		endX := cx + cos*(radius+extend)
		endY := cy + sin*(radius+extend)

		drawGradientLine(layer, startX, startY, endX, endY, inner, outer, thickness)
	}
}
