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

package vram

import "testing"

func TestFillThenReadRoundTrips(t *testing.T) {
	v := New()
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	v.FillRect(r, 0x1234, Params{})

	got := v.ReadRect(r)
	for i, p := range got {
		if p != 0x1234 {
			t.Fatalf("pixel %d: got %#04x, want %#04x", i, p, 0x1234)
		}
	}
}

func TestUpdateThenReadRoundTrips(t *testing.T) {
	v := New()
	r := Rect{X: 0, Y: 0, Width: 4, Height: 4}
	data := make([]uint16, 16)
	for i := range data {
		data[i] = uint16(i)
	}
	v.UpdateRect(r, data, Params{})

	got := v.ReadRect(r)
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("pixel %d: got %#04x, want %#04x", i, got[i], data[i])
		}
	}
}

func TestCopySelfIsNoOp(t *testing.T) {
	v := New()
	r := Rect{X: 5, Y: 5, Width: 8, Height: 8}
	v.FillRect(r, 0xABCD, Params{})
	before := v.ReadRect(r)

	v.CopyRect(r, r.X, r.Y, Params{})

	after := v.ReadRect(r)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("pixel %d changed after self-copy: %#04x -> %#04x", i, before[i], after[i])
		}
	}
}

func TestCopyRectMovesPixels(t *testing.T) {
	v := New()
	src := Rect{X: 0, Y: 0, Width: 4, Height: 4}
	data := make([]uint16, 16)
	for i := range data {
		data[i] = uint16(0x100 + i)
	}
	v.UpdateRect(src, data, Params{})

	v.CopyRect(src, 100, 100, Params{})

	dst := Rect{X: 100, Y: 100, Width: 4, Height: 4}
	got := v.ReadRect(dst)
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("pixel %d: got %#04x, want %#04x", i, got[i], data[i])
		}
	}
}

func TestCoordinateWraparound(t *testing.T) {
	v := New()
	v.Set(Width-1, Height-1, 0x7777)
	if got := v.At(Width-1, Height-1); got != 0x7777 {
		t.Fatalf("got %#04x", got)
	}
	// one past the edge wraps to 0,0
	v.Set(Width, Height, 0x8888)
	if got := v.At(0, 0); got != 0x8888 {
		t.Fatalf("wraparound write did not land at origin: got %#04x", got)
	}
}

func TestMaskParams(t *testing.T) {
	v := New()
	r := Rect{X: 0, Y: 0, Width: 1, Height: 1}

	// check_mask_before_draw should skip pixels with the mask bit set.
	v.Set(0, 0, MaskBit|0x1)
	v.FillRect(r, 0x2, Params{CheckMaskBeforeDraw: true})
	if got := v.At(0, 0); got != MaskBit|0x1 {
		t.Fatalf("masked pixel was overwritten: got %#04x", got)
	}

	// set_mask_while_drawing should OR the mask bit into whatever is written.
	v.FillRect(r, 0x3, Params{SetMaskWhileDrawing: true, CheckMaskBeforeDraw: false})
	if got := v.At(0, 0); got != MaskBit|0x3 {
		t.Fatalf("mask bit not set on draw: got %#04x", got)
	}
}
