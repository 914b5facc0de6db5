// SPDX-License-Identifier: MIT
package render

import (
	"errors"
	"image"
	"time"

	"visualizer/internal/analysis"
	applog "visualizer/internal/log"
)

// ErrCanvasNotReady signals that no drawing surface exists for the current
// dimensions. Callers skip the tick and retry on the next one.
var ErrCanvasNotReady = errors.New("render canvas not ready")

// trailFade is the strength of the dark overlay painted before each mode
// draws, producing the motion-trail fade instead of a hard clear.
// Spectrogram mode bypasses it; the accumulator's shift-and-append fully
// repaints the canvas.
const trailFade = 60

// renderer is one draw algorithm over a per-tick frame. Implementations
// draw additively within the layer bounds and never allocate per tick.
type renderer interface {
	draw(layer *image.RGBA, frame analysis.Frame, beat analysis.BeatState)
}

// spectrogramRenderer blits the accumulator's buffer onto the layer; the
// actual column work lives in Accumulator.Advance.
type spectrogramRenderer struct {
	acc *Accumulator
}

func (s *spectrogramRenderer) draw(layer *image.RGBA, frame analysis.Frame, _ analysis.BeatState) {
	b := layer.Bounds()
	buf := s.acc.Advance(frame.Frequency, b.Dx(), b.Dy())
	if buf != nil {
		copy(layer.Pix, buf.Pix)
	}
}

// Pipeline owns the draw surfaces and dispatches each tick to the current
// mode, blending two modes while a transition is active. All layers are
// allocated on construction and on resize only; the render tick itself is
// allocation-free.
//
// Single-threaded by contract: the render loop is the only caller.
type Pipeline struct {
	width  int
	height int

	mode  Mode
	trans Transition

	primary   *image.RGBA // Canvas of the current (incoming) mode.
	secondary *image.RGBA // Canvas of the outgoing mode during a blend.
	out       *image.RGBA // Composited output while blending.

	acc       *Accumulator
	renderers map[Mode]renderer
}

// NewPipeline creates a pipeline rendering the given initial mode at the
// given canvas size. A zero-sized canvas is tolerated; Render reports
// ErrCanvasNotReady until a real Resize arrives.
func NewPipeline(width, height int, mode Mode) *Pipeline {
	acc := NewAccumulator()
	p := &Pipeline{
		mode: mode,
		acc:  acc,
		renderers: map[Mode]renderer{
			ModeBars:        barsRenderer{},
			ModeWaveform:    waveformRenderer{},
			ModeCircular:    circularRenderer{},
			ModeParticles:   newParticlesRenderer(time.Now().UnixNano()),
			ModeSpectrogram: &spectrogramRenderer{acc: acc},
		},
	}
	p.Resize(width, height)
	return p
}

// Mode returns the currently selected (target) mode.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Transitioning reports whether a mode blend is in progress.
func (p *Pipeline) Transitioning() bool {
	return p.trans.Active()
}

// SetMode selects a new mode, starting a cross-fade from the one being
// rendered. Selecting the current mode is a no-op; selecting a new mode
// mid-blend restarts the fade toward the newest target.
func (p *Pipeline) SetMode(mode Mode) {
	if mode == p.mode {
		return
	}
	from := p.mode
	p.mode = mode

	if p.primary == nil {
		return // Canvas not ready; nothing to blend yet.
	}

	// The outgoing mode keeps its canvas (and its trails); the incoming
	// mode starts on a black one.
	p.primary, p.secondary = p.secondary, p.primary
	fillBlack(p.primary)
	p.trans.Begin(from, mode)
	applog.Debugf("Render: Mode change %s -> %s", from, mode)
}

// Resize reallocates the draw surfaces for a new canvas size. Resizing to
// the current size is a no-op. A real resize discards the spectrogram
// buffer and snaps any in-flight blend to its target; nothing may index
// into a buffer sized for the old dimensions afterwards.
func (p *Pipeline) Resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width = width
	p.height = height

	if width <= 0 || height <= 0 {
		p.primary, p.secondary, p.out = nil, nil, nil
		p.acc.Invalidate()
		p.trans.Cancel()
		return
	}

	rect := image.Rect(0, 0, width, height)
	p.primary = image.NewRGBA(rect)
	p.secondary = image.NewRGBA(rect)
	p.out = image.NewRGBA(rect)
	fillBlack(p.primary)
	fillBlack(p.secondary)
	fillBlack(p.out)

	p.acc.Invalidate()
	if p.trans.Active() {
		p.trans.Cancel()
	}
}

// Render draws one tick and returns the frame to publish. While a
// transition is active both modes are drawn from the same frame and beat
// state and composited at (1-progress) / progress; otherwise only the
// current mode is rendered, at full opacity, directly on its canvas.
func (p *Pipeline) Render(frame analysis.Frame, beat analysis.BeatState) (*image.RGBA, error) {
	if p.primary == nil {
		return nil, ErrCanvasNotReady
	}

	if !p.trans.Active() {
		p.drawLayer(p.primary, p.mode, frame, beat)
		return p.primary, nil
	}

	p.drawLayer(p.secondary, p.trans.From(), frame, beat)
	p.drawLayer(p.primary, p.trans.To(), frame, beat)
	compositeBlend(p.out, p.secondary, p.primary, p.trans.Progress())
	p.trans.Step()

	return p.out, nil
}

// ReleaseSession frees per-session buffers when the render loop stops.
// The next session starts with a fresh Uninitialized spectrogram.
func (p *Pipeline) ReleaseSession() {
	p.acc.Release()
}

// drawLayer applies the clearing policy and draws one mode onto a layer.
func (p *Pipeline) drawLayer(layer *image.RGBA, mode Mode, frame analysis.Frame, beat analysis.BeatState) {
	if mode != ModeSpectrogram {
		fadeToBlack(layer, trailFade)
	}
	p.renderers[mode].draw(layer, frame, beat)
}

// compositeBlend writes from*(1-progress) + to*progress into dst.
// All three images share dimensions; alpha is forced opaque.
func compositeBlend(dst, from, to *image.RGBA, progress float64) {
	wTo := uint32(progress * 255)
	wFrom := 255 - wTo
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = uint8((uint32(from.Pix[i])*wFrom + uint32(to.Pix[i])*wTo) / 255)
		dst.Pix[i+1] = uint8((uint32(from.Pix[i+1])*wFrom + uint32(to.Pix[i+1])*wTo) / 255)
		dst.Pix[i+2] = uint8((uint32(from.Pix[i+2])*wFrom + uint32(to.Pix[i+2])*wTo) / 255)
		dst.Pix[i+3] = 255
	}
}
