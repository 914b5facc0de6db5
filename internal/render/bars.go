// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"

	"visualizer/internal/analysis"
)

const (
	maxBars          = 128
	barHeightScale   = 0.8 // Fraction of canvas height a full-scale bin reaches.
	barBeatBoost     = 1.2 // Height multiplier while a beat is active.
	barReflectScale  = 0.3 // Reflection height relative to the bar.
	barReflectAlpha  = 70  // Reflection dimming.
	barBaselineRatio = 0.78
)

// Warm palette endpoints used while a beat is active, cool endpoints
// otherwise.
var (
	barWarmLow  = color.RGBA{R: 220, G: 40, B: 30, A: 255}  // red
	barWarmHigh = color.RGBA{R: 255, G: 220, B: 60, A: 255} // yellow
	barCoolLow  = color.RGBA{R: 30, G: 60, B: 160, A: 255}  // deep blue
	barCoolHigh = color.RGBA{R: 70, G: 200, B: 255, A: 255} // cyan
)

// barsRenderer partitions the spectrum into at most 128 bars by
// subsampling and draws each with a dimmed reflection below the baseline.
type barsRenderer struct{}

func (barsRenderer) draw(layer *image.RGBA, frame analysis.Frame, beat analysis.BeatState) {
	b := layer.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(frame.Frequency) == 0 || w == 0 || h == 0 {
		return
	}

	barCount := len(frame.Frequency)
	if barCount > maxBars {
		barCount = maxBars
	}
	step := len(frame.Frequency) / barCount

	barWidth := w / barCount
	if barWidth < 1 {
		barWidth = 1
	}
	baseline := int(float64(h) * barBaselineRatio)

	for i := 0; i < barCount; i++ {
		sample := frame.Frequency[i*step]
		height := float64(sample) / 255 * barHeightScale * float64(h)
		if beat.Beat {
			height *= barBeatBoost
		}
		barH := int(height)
		if barH > baseline {
			barH = baseline
		}

		pos := float64(i) / float64(barCount)
		var col color.RGBA
		if beat.Beat {
			col = lerpColor(barWarmLow, barWarmHigh, pos)
		} else {
			// Bass energy warms the cool gradient up from its low end.
			col = lerpColor(barCoolLow, barCoolHigh, clamp01(pos*0.7+beat.BassEnergy*0.5))
		}

		x0 := i * barWidth
		x1 := x0 + barWidth - 1 // 1px gap between bars
		if x1 <= x0 {
			x1 = x0 + 1
		}

		fillRect(layer, x0, baseline-barH, x1, baseline, col)

		// Dimmed reflection below the baseline.
		reflH := int(float64(barH) * barReflectScale)
		blendRect(layer, x0, baseline+2, x1, baseline+2+reflH, col, barReflectAlpha)
	}
}
