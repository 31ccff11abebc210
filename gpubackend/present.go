// This file is part of scanline.
//
// scanline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// scanline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with scanline.  If not, see <https://www.gnu.org/licenses/>.

package gpubackend

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/scanlinevm/scanline/vram"
)

// ScaleMode selects a screenshot/display target size, matching spec.md
// §4.4's "select a VRAM rectangle ... upload into a host texture" step.
type ScaleMode int

const (
	ScaleInternalResolution ScaleMode = iota
	ScaleWindow
	ScaleDisplay
)

// RGBA5551ToImage converts a row-major slice of 16-bit RGBA5551 pixels
// (vram.VRAM's native format: red in bits 0-4, green in bits 5-9, blue in
// bits 10-14, mask in bit 15) into a standard image.RGBA suitable for
// golang.org/x/image/draw scaling or screenshot encoding.
func RGBA5551ToImage(pixels []uint16, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, p := range pixels {
		r := uint8(uint32(p&0x1F) * 255 / 31)
		g := uint8(uint32((p>>5)&0x1F) * 255 / 31)
		b := uint8(uint32((p>>10)&0x1F) * 255 / 31)
		x, y := i%width, i/width
		img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return img
}

// Scale resizes src into a width x height image.RGBA. InternalResolution
// mode uses nearest-neighbor to preserve hard pixel edges; Window and
// Display modes use an approximate bilinear filter, matching the softer
// look expected when scaling up for on-screen display versus a pixel-exact
// screenshot.
func Scale(src image.Image, width, height int, mode ScaleMode) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scaler := draw.Scaler(draw.ApproxBiLinear)
	if mode == ScaleInternalResolution {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// Deinterlace weaves two half-height fields (as produced by extracting
// alternating scanlines per DisplayDescriptor.InterlacedField) back into one
// full-height frame.
func Deinterlace(field0, field1 []uint16, width, halfHeight int) []uint16 {
	out := make([]uint16, width*halfHeight*2)
	for row := 0; row < halfHeight; row++ {
		copy(out[(row*2)*width:(row*2+1)*width], field0[row*width:(row+1)*width])
		copy(out[(row*2+1)*width:(row*2+2)*width], field1[row*width:(row+1)*width])
	}
	return out
}

// ChromaSmooth24 softens the chroma-subsampling artifacts of the console's
// packed 24-bit display mode by averaging each pixel with its horizontal
// neighbors, matching what display_24bit_chroma_smoothing enables per
// spec.md §6.
func ChromaSmooth24(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		prev := img.RGBAAt(b.Min.X, y)
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			cur := img.RGBAAt(x, y)
			next := img.RGBAAt(x+1, y)
			blended := color.RGBA{
				R: avg3(prev.R, cur.R, next.R),
				G: avg3(prev.G, cur.G, next.G),
				B: avg3(prev.B, cur.B, next.B),
				A: cur.A,
			}
			prev = cur
			img.SetRGBA(x, y, blended)
		}
	}
}

func avg3(a, b, c uint8) uint8 {
	return uint8((int(a) + int(b)*2 + int(c)) / 4)
}

// copyOut24Rows reconstructs height rows of 24-bit-per-pixel truecolor data
// packed three bytes to two 16-bit VRAM words (spec.md §4.5's copy_out_24),
// with yFor mapping each output row to its source VRAM row. Column col's
// pixel starts at word offset (col*3)/2; an even col's three bytes are both
// bytes of that word plus the low byte of the next, while an odd col's are
// the high byte of that word plus both bytes of the next — hence the 8-bit
// shift keyed on col&1. Both source words are fetched
// through vram.VRAM.At, which already wraps out-of-range coordinates, so a
// display rectangle with src_x+width > vram.Width reads around the right
// edge exactly as a naive modulus implementation would, no separate
// wrap-around path required.
func copyOut24Rows(v *vram.VRAM, r vram.Rect, height int, yFor func(row int) int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, height))
	for row := 0; row < height; row++ {
		y := yFor(row)
		for col := 0; col < r.Width; col++ {
			wordOffset := (col * 3) / 2
			s0 := v.At(r.X+wordOffset, y)
			s1 := v.At(r.X+wordOffset+1, y)
			rgb := (uint32(s1)<<16 | uint32(s0)) >> (uint(col&1) * 8)
			img.SetRGBA(col, row, color.RGBA{
				R: uint8(rgb),
				G: uint8(rgb >> 8),
				B: uint8(rgb >> 16),
				A: 255,
			})
		}
	}
	return img
}

// CopyOut24 is the non-interlaced copy_out_24 readout: r.Width truecolor
// pixels per row, r.Height rows, reconstructed from VRAM's packed 24-bit
// representation.
func CopyOut24(v *vram.VRAM, r vram.Rect) *image.RGBA {
	return copyOut24Rows(v, r, r.Height, func(row int) int { return r.Y + row })
}

// deinterlaceRGBA weaves two half-height RGBA fields into one full-height
// image, the truecolor equivalent of Deinterlace.
func deinterlaceRGBA(field0, field1 *image.RGBA) *image.RGBA {
	width := field0.Bounds().Dx()
	halfHeight := field0.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, width, halfHeight*2))
	rowBytes := width * 4
	for row := 0; row < halfHeight; row++ {
		copy(out.Pix[(row*2)*out.Stride:(row*2)*out.Stride+rowBytes], field0.Pix[row*field0.Stride:row*field0.Stride+rowBytes])
		copy(out.Pix[(row*2+1)*out.Stride:(row*2+1)*out.Stride+rowBytes], field1.Pix[row*field1.Stride:row*field1.Stride+rowBytes])
	}
	return out
}

// ApplyDisplayDescriptor extracts the pixels a DisplayDescriptor selects
// from v, deinterlacing if requested, and returns them as an image.RGBA
// ready for a backend to upload. Depth24 selects copy_out_24's packed
// truecolor reconstruction instead of copy_out_15's direct RGBA5551 read.
func ApplyDisplayDescriptor(v *vram.VRAM, desc DisplayDescriptor) *image.RGBA {
	r := desc.Rect

	if desc.Depth24 {
		if !desc.Interlaced {
			return CopyOut24(v, r)
		}
		halfHeight := r.Height / 2
		field0 := copyOut24Rows(v, r, halfHeight, func(row int) int { return r.Y + row*2 })
		field1 := copyOut24Rows(v, r, halfHeight, func(row int) int { return r.Y + row*2 + 1 })
		if desc.InterlacedField == 1 {
			field0, field1 = field1, field0
		}
		return deinterlaceRGBA(field0, field1)
	}

	pixels := v.ReadRect(r)
	if !desc.Interlaced {
		return RGBA5551ToImage(pixels, r.Width, r.Height)
	}

	field0 := v.ReadField(r, 0)
	field1 := v.ReadField(r, 1)
	if desc.InterlacedField == 1 {
		field0, field1 = field1, field0
	}
	woven := Deinterlace(field0, field1, r.Width, r.Height/2)
	return RGBA5551ToImage(woven, r.Width, r.Height)
}
