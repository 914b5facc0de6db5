// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"

	"visualizer/internal/analysis"
)

const waveAmplitudeScale = 0.4 // Fraction of canvas height a full-swing sample reaches.

var (
	waveLeft  = color.RGBA{R: 60, G: 220, B: 200, A: 255} // teal
	waveRight = color.RGBA{R: 90, G: 120, B: 255, A: 255} // blue-violet
)

// waveformRenderer plots the full time-domain buffer as one connected
// polyline across the canvas width, stroked with a fixed cool horizontal
// gradient.
type waveformRenderer struct{}

func (waveformRenderer) draw(layer *image.RGBA, frame analysis.Frame, _ analysis.BeatState) {
	b := layer.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(frame.Time) == 0 || w < 2 || h == 0 {
		return
	}

	center := h / 2
	prevY := sampleY(frame.Time[0], center, h)

	for x := 1; x < w; x++ {
		idx := x * len(frame.Time) / w
		y := sampleY(frame.Time[idx], center, h)

		col := lerpColor(waveLeft, waveRight, float64(x)/float64(w-1))
		drawLine(layer, x-1, prevY, x, y, col)
		prevY = y
	}
}

// sampleY maps a time-domain byte (centered at 128) to a canvas row.
func sampleY(sample byte, center, h int) int {
	deviation := (float64(sample) - 128) / 128
	return center + int(deviation*waveAmplitudeScale*float64(h))
}
