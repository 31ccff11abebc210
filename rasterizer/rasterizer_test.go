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

package rasterizer

import (
	"testing"

	"github.com/scanlinevm/scanline/vram"
)

func fullArea() vram.Rect {
	return vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height}
}

func TestRectangleFillsFlatColor(t *testing.T) {
	v := vram.New()
	Rectangle(v, fullArea(), DrawMode{}, 10, 10, 5, 5, 0x0000FF, 0, 0, nil)

	for y := int32(10); y < 15; y++ {
		for x := int32(10); x < 15; x++ {
			if got := v.At(int(x), int(y)); got == 0 {
				t.Fatalf("pixel (%d,%d) not drawn", x, y)
			}
		}
	}
	if v.At(9, 9) != 0 {
		t.Fatal("pixel outside rectangle was drawn")
	}
}

func TestRectangleClampedToDrawingArea(t *testing.T) {
	v := vram.New()
	area := vram.Rect{X: 0, Y: 0, Width: 4, Height: 4}
	Rectangle(v, area, DrawMode{}, 0, 0, 10, 10, 0x00FF00, 0, 0, nil)

	if v.At(5, 5) != 0 {
		t.Fatal("draw leaked outside the drawing area clip rect")
	}
	if v.At(1, 1) == 0 {
		t.Fatal("pixel inside clip rect was not drawn")
	}
}

func TestTrianglePolygonFillsInterior(t *testing.T) {
	v := vram.New()
	verts := []Vertex{
		{X: 0, Y: 0, Color: 0xFF0000},
		{X: 20, Y: 0, Color: 0xFF0000},
		{X: 0, Y: 20, Color: 0xFF0000},
	}
	Polygon(v, fullArea(), DrawMode{}, verts, nil)

	if v.At(5, 5) == 0 {
		t.Fatal("interior point of triangle not filled")
	}
	if v.At(18, 18) != 0 {
		t.Fatal("point outside triangle's hypotenuse was filled")
	}
}

func TestQuadPolygonSplitsIntoTwoTriangles(t *testing.T) {
	v := vram.New()
	verts := []Vertex{
		{X: 0, Y: 0, Color: 0xFFFFFF},
		{X: 10, Y: 0, Color: 0xFFFFFF},
		{X: 0, Y: 10, Color: 0xFFFFFF},
		{X: 10, Y: 10, Color: 0xFFFFFF},
	}
	Polygon(v, fullArea(), DrawMode{}, verts, nil)

	for _, p := range [][2]int{{1, 1}, {8, 1}, {1, 8}, {8, 8}} {
		if v.At(p[0], p[1]) == 0 {
			t.Fatalf("corner (%d,%d) of quad not filled", p[0], p[1])
		}
	}
}

func TestLineDrawsBetweenEndpoints(t *testing.T) {
	v := vram.New()
	Line(v, fullArea(), DrawMode{}, []Vertex{
		{X: 0, Y: 0, Color: 0x00FFFF},
		{X: 10, Y: 0, Color: 0x00FFFF},
	})
	for x := 0; x <= 10; x++ {
		if v.At(x, 0) == 0 {
			t.Fatalf("pixel (%d,0) on horizontal line not drawn", x)
		}
	}
}

func TestTexturedRawModeBypassesModulation(t *testing.T) {
	v := vram.New()
	tex := func(u, v uint8) uint16 { return 0x7FFF }
	Rectangle(v, fullArea(), DrawMode{Textured: true, RawTexture: true}, 0, 0, 2, 2, 0, 0, 0, tex)
	if got := v.At(0, 0); got != 0x7FFF {
		t.Fatalf("got %#04x, want raw texel 0x7fff", got)
	}
}
