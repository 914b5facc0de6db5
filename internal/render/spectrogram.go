// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"
)

// Accumulator owns the spectrogram's persistent pixel buffer. Each Advance
// shifts every column one step left and paints a fresh rightmost column
// from the current spectrum. The buffer survives across ticks until the
// canvas is resized or the session ends.
//
// States: Uninitialized (no buffer) and Ready. The first Advance after
// creation, Invalidate or Release allocates a black buffer and returns it
// without appending a column.
type Accumulator struct {
	img    *image.RGBA
	width  int
	height int
}

// NewAccumulator returns an accumulator in the Uninitialized state.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Ready reports whether a buffer for the current dimensions exists.
func (a *Accumulator) Ready() bool {
	return a.img != nil
}

// Advance produces the next spectrogram image for the given canvas size.
// On the first call after (re)initialization it allocates a width x height
// buffer cleared to opaque black and returns it unmodified. Every later
// call shifts the whole image one column left and derives the new
// rightmost column from the frequency snapshot: low intensity maps to
// blue, high to red, with green held at half intensity.
//
// The shift is O(width x height) per tick, which is the accepted cost
// center at interactive canvas sizes.
func (a *Accumulator) Advance(frequency []byte, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}

	if a.img == nil || a.width != width || a.height != height {
		a.img = image.NewRGBA(image.Rect(0, 0, width, height))
		a.width = width
		a.height = height
		fillBlack(a.img)
		return a.img
	}

	// Shift left: row by row, copy pixels 1..width-1 onto 0..width-2.
	pix := a.img.Pix
	stride := a.img.Stride
	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+width*4]
		copy(row[:len(row)-4], row[4:])
	}

	// Clear the vacated rightmost column, then paint the new samples.
	right := width - 1
	for y := 0; y < height; y++ {
		i := y*stride + right*4
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 255
	}

	samples := len(frequency) / 2
	if samples > height {
		samples = height
	}
	for s := 0; s < samples; s++ {
		v := frequency[s]
		y := height - 1 - s*height/samples
		setPixel(a.img, right, y, columnColor(v))
	}

	return a.img
}

// columnColor maps a magnitude byte onto the spectrogram palette:
// blue at low intensity interpolating to red at high, green at half
// intensity throughout.
func columnColor(v byte) color.RGBA {
	return color.RGBA{
		R: v,
		G: v / 2,
		B: 255 - v,
		A: 255,
	}
}

// Invalidate discards the buffer, returning to Uninitialized. Called when
// the canvas is resized so the next Advance reallocates at the new size.
func (a *Accumulator) Invalidate() {
	a.img = nil
	a.width = 0
	a.height = 0
}

// Release frees the session's buffer when the render loop stops. Resuming
// later starts from a fresh Uninitialized state.
func (a *Accumulator) Release() {
	a.Invalidate()
}
