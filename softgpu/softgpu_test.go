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

package softgpu

import (
	"testing"

	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/vram"
)

// These tests exercise the VRAM-facing half of SoftwareBackend without an
// SDL renderer (the software backend's Initialize/UpdateDisplay/Present
// paths require a real *sdl.Renderer and are exercised via the demo entry
// point instead, matching spec.md §1's exclusion of window acquisition).

func newHeadlessBackend() *SoftwareBackend {
	return &SoftwareBackend{
		vram:        vram.New(),
		drawingArea: vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height},
	}
}

func TestFillAndReadVRAMRoundTrips(t *testing.T) {
	b := newHeadlessBackend()
	r := vram.Rect{X: 4, Y: 4, Width: 8, Height: 8}
	b.FillVRAM(r, 0x2222, vram.Params{})

	got := b.ReadVRAM(r)
	for _, p := range got {
		if p != 0x2222 {
			t.Fatalf("pixel: got %#04x, want 0x2222", p)
		}
	}
}

func TestClearVRAMZeroesEverything(t *testing.T) {
	b := newHeadlessBackend()
	b.FillVRAM(vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height}, 0xFFFF, vram.Params{})
	b.ClearVRAM()

	if got := b.ReadVRAM(vram.Rect{X: 0, Y: 0, Width: 1, Height: 1})[0]; got != 0 {
		t.Fatalf("got %#04x after ClearVRAM, want 0", got)
	}
}

func TestDrawingAreaChangedClampsRectangleDraws(t *testing.T) {
	b := newHeadlessBackend()
	b.DrawingAreaChanged(vram.Rect{X: 0, Y: 0, Width: 4, Height: 4})
	b.DrawRectangle(gpubackend.DrawRectangleArgs{X: 0, Y: 0, Width: 10, Height: 10, Color: 0x1234})

	if got := b.ReadVRAM(vram.Rect{X: 5, Y: 5, Width: 1, Height: 1})[0]; got != 0 {
		t.Fatalf("draw leaked past drawing area clip: got %#04x", got)
	}
}

func TestLoadStateRejectsWrongSize(t *testing.T) {
	b := newHeadlessBackend()
	if err := b.LoadState(make([]uint16, 1), nil); err == nil {
		t.Fatal("expected error for mismatched VRAM length")
	}
}

func TestLoadStateRestoresContents(t *testing.T) {
	b := newHeadlessBackend()
	data := make([]uint16, vram.Width*vram.Height)
	for i := range data {
		data[i] = uint16(i)
	}
	clut := make([]uint16, vram.CLUTSize)
	if err := b.LoadState(data, clut); err != nil {
		t.Fatal(err)
	}
	if got := b.ReadVRAM(vram.Rect{X: 0, Y: 0, Width: 1, Height: 1})[0]; got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
