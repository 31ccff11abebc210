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
	"testing"

	"github.com/scanlinevm/scanline/vram"
)

func TestRGBA5551ToImageDecodesChannels(t *testing.T) {
	// pure red, 5 bits set in the red field, mask bit set.
	pixel := uint16(0x1F) | vram.MaskBit
	img := RGBA5551ToImage([]uint16{pixel}, 1, 1)
	c := img.RGBAAt(0, 0)
	if c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Fatalf("got %+v", c)
	}
}

func TestDeinterlaceWeavesFields(t *testing.T) {
	width, halfHeight := 2, 2
	field0 := []uint16{1, 2, 5, 6}
	field1 := []uint16{3, 4, 7, 8}
	out := Deinterlace(field0, field1, width, halfHeight)
	want := []uint16{1, 2, 3, 4, 5, 6, 7, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, out[i], want[i])
		}
	}
}

func TestApplyDisplayDescriptorNonInterlaced(t *testing.T) {
	v := vram.New()
	r := vram.Rect{X: 0, Y: 0, Width: 4, Height: 4}
	v.FillRect(r, 0x1F, vram.Params{})

	img := ApplyDisplayDescriptor(v, DisplayDescriptor{Rect: r})
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if c := img.RGBAAt(0, 0); c.R != 255 {
		t.Fatalf("got %+v", c)
	}
}

func TestCopyOut24ReconstructsPackedTruecolor(t *testing.T) {
	v := vram.New()
	// Two pixels packed into three consecutive 16-bit words: byte stream
	// 0x11,0x22,0x33 (pixel 0: R=0x11 G=0x22 B=0x33), 0x44,0x55,0x66 (pixel 1).
	v.Set(0, 0, 0x2211)
	v.Set(1, 0, 0x4433)
	v.Set(2, 0, 0x6655)

	img := CopyOut24(v, vram.Rect{X: 0, Y: 0, Width: 2, Height: 1})
	if c := img.RGBAAt(0, 0); c.R != 0x11 || c.G != 0x22 || c.B != 0x33 || c.A != 255 {
		t.Fatalf("pixel 0: got %+v", c)
	}
	if c := img.RGBAAt(1, 0); c.R != 0x44 || c.G != 0x55 || c.B != 0x66 || c.A != 255 {
		t.Fatalf("pixel 1: got %+v", c)
	}
}

func TestCopyOut24WrapsAroundVRAMEdgeLikeNaiveModulus(t *testing.T) {
	v := vram.New()
	srcX := vram.Width - 1
	// src_x+width > vram.Width (spec.md §8): this one-pixel-wide rect reads
	// the last word of the row plus, through At's wraparound, word 0 of the
	// same row, the same way a naive (x % vram.Width) implementation would.
	v.Set(srcX, 0, 0x2211)
	v.Set(0, 0, 0x4433)

	img := CopyOut24(v, vram.Rect{X: srcX, Y: 0, Width: 1, Height: 1})
	if c := img.RGBAAt(0, 0); c.R != 0x11 || c.G != 0x22 || c.B != 0x33 {
		t.Fatalf("got %+v", c)
	}
}

func TestApplyDisplayDescriptorDepth24UsesCopyOut24(t *testing.T) {
	v := vram.New()
	v.Set(0, 0, 0x2211)
	v.Set(1, 0, 0x4433)

	img := ApplyDisplayDescriptor(v, DisplayDescriptor{Rect: vram.Rect{X: 0, Y: 0, Width: 1, Height: 1}, Depth24: true})
	if c := img.RGBAAt(0, 0); c.R != 0x11 || c.G != 0x22 || c.B != 0x33 {
		t.Fatalf("got %+v", c)
	}
}

func TestApplyDisplayDescriptorInterlacedPreservesFieldOrder(t *testing.T) {
	v := vram.New()
	r := vram.Rect{X: 0, Y: 0, Width: 1, Height: 4}
	// even rows red, odd rows blue
	for y := 0; y < 4; y++ {
		color := uint16(0x1F)
		if y%2 == 1 {
			color = 0x1F << 10
		}
		v.Set(0, y, color)
	}

	img := ApplyDisplayDescriptor(v, DisplayDescriptor{Rect: r, Interlaced: true, InterlacedField: 0})
	if c := img.RGBAAt(0, 0); c.R != 255 {
		t.Fatalf("row 0: got %+v, want red", c)
	}
	if c := img.RGBAAt(0, 1); c.B != 255 {
		t.Fatalf("row 1: got %+v, want blue", c)
	}
}
