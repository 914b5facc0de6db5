// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"visualizer/internal/analysis"
)

const (
	particleBaseCount = 50
	particleBeatCount = 100
	particleBeatDist  = 1.5 // Distance multiplier on beat.
	particleBeatSize  = 1.3 // Size multiplier on beat.
)

var (
	particleCool = color.RGBA{R: 90, G: 150, B: 255, A: 255}
	particleWarm = color.RGBA{R: 255, G: 170, B: 60, A: 255}
)

// particlesRenderer emits particles arranged radially from the canvas
// center; per-particle distance and size scale with the mean spectrum
// intensity, with extra reach and brightness on beats.
type particlesRenderer struct {
	rng *rand.Rand
}

func newParticlesRenderer(seed int64) *particlesRenderer {
	return &particlesRenderer{rng: rand.New(rand.NewSource(seed))}
}

func (p *particlesRenderer) draw(layer *image.RGBA, frame analysis.Frame, beat analysis.BeatState) {
	b := layer.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(frame.Frequency) == 0 || w == 0 || h == 0 {
		return
	}

	var sum float64
	for _, v := range frame.Frequency {
		sum += float64(v)
	}
	intensity := sum / float64(len(frame.Frequency)) / 255

	count := particleBaseCount
	col := particleCool
	if beat.Beat {
		count = particleBeatCount
		col = particleWarm
	}

	cx := float64(w) / 2
	cy := float64(h) / 2
	minDim := math.Min(float64(w), float64(h))

	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + p.rng.Float64()*0.2

		dist := minDim * (0.12 + 0.4*intensity) * (0.6 + 0.4*p.rng.Float64())
		size := 2 + intensity*5
		if beat.Beat {
			dist *= particleBeatDist
			size *= particleBeatSize
		}

		sin, cos := math.Sincos(angle)
		fillCircle(layer, int(cx+cos*dist), int(cy+sin*dist), size, col)
	}
}
