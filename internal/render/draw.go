// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"image/color"
	"math"
)

// fillBlack paints the whole image opaque black.
func fillBlack(img *image.RGBA) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = 0
		pix[i+1] = 0
		pix[i+2] = 0
		pix[i+3] = 255
	}
}

// fadeToBlack blends a dark overlay of the given strength over the whole
// image, producing the motion-trail fade instead of a hard clear. Alpha is
// forced back to opaque so composited layers stay well-defined.
func fadeToBlack(img *image.RGBA, strength uint8) {
	keep := uint32(255 - strength)
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(uint32(pix[i]) * keep / 255)
		pix[i+1] = uint8(uint32(pix[i+1]) * keep / 255)
		pix[i+2] = uint8(uint32(pix[i+2]) * keep / 255)
		pix[i+3] = 255
	}
}

// setPixel writes an opaque pixel, ignoring out-of-bounds coordinates.
func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := img.PixOffset(x, y)
	img.Pix[i] = col.R
	img.Pix[i+1] = col.G
	img.Pix[i+2] = col.B
	img.Pix[i+3] = 255
}

// blendPixel blends col over the existing pixel at the given alpha.
func blendPixel(img *image.RGBA, x, y int, col color.RGBA, alpha uint8) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := img.PixOffset(x, y)
	a := uint32(alpha)
	inv := 255 - a
	img.Pix[i] = uint8((uint32(col.R)*a + uint32(img.Pix[i])*inv) / 255)
	img.Pix[i+1] = uint8((uint32(col.G)*a + uint32(img.Pix[i+1])*inv) / 255)
	img.Pix[i+2] = uint8((uint32(col.B)*a + uint32(img.Pix[i+2])*inv) / 255)
	img.Pix[i+3] = 255
}

// drawLine draws a one-pixel line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		setPixel(img, x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawGradientLine draws a line whose color is linearly interpolated from
// start to end, stepped along the line's length.
func drawGradientLine(img *image.RGBA, x0, y0, x1, y1 float64, from, to color.RGBA, thickness int) {
	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	perpX := -dy / length
	perpY := dx / length
	steps := int(length) + 1

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := lerpColor(from, to, t)
		for offs := -thickness / 2; offs <= thickness/2; offs++ {
			px := int(x0 + dx*t + float64(offs)*perpX)
			py := int(y0 + dy*t + float64(offs)*perpY)
			setPixel(img, px, py, col)
		}
	}
}

// fillRect fills the half-open rectangle [x0,x1) x [y0,y1).
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			setPixel(img, x, y, col)
		}
	}
}

// blendRect blends col over the half-open rectangle at the given alpha.
func blendRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, alpha uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			blendPixel(img, x, y, col, alpha)
		}
	}
}

// fillCircle draws a filled circle clipped to the image bounds.
func fillCircle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	r := int(radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setPixel(img, cx+dx, cy+dy, col)
			}
		}
	}
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
