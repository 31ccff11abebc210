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

package gpucmd

import "testing"

func TestFillVRAMRoundTrips(t *testing.T) {
	c := FillVRAMCommand{X: 1, Y: 2, Width: 3, Height: 4, Color: 0xBEEF}
	buf := make([]byte, c.Size())
	c.Encode(buf, MakeParams(true, false, true, false))

	h, decoded, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != FillVRAM || !h.Params.Interlaced() || !h.Params.SetMaskWhileDrawing() {
		t.Fatalf("header mismatch: %+v", h)
	}
	got := decoded.(FillVRAMCommand)
	if got != c {
		t.Fatalf("got %+v, want %+v", got, c)
	}
}

func TestUpdateVRAMRoundTrips(t *testing.T) {
	c := UpdateVRAMCommand{X: 0, Y: 0, Width: 2, Height: 2, Data: []uint16{1, 2, 3, 4}}
	buf := make([]byte, c.Size())
	c.Encode(buf, 0)

	_, decoded, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(UpdateVRAMCommand)
	for i := range c.Data {
		if got.Data[i] != c.Data[i] {
			t.Fatalf("data[%d]: got %d, want %d", i, got.Data[i], c.Data[i])
		}
	}
}

func TestDrawPolygonRoundTrips(t *testing.T) {
	c := DrawPolygonCommand{
		Shaded: true, Textured: true,
		ClutX: 5, ClutY: 6, TexPageX: 7, TexPageY: 8,
		Vertices: []Vertex{
			{X: 10, Y: 20, Color: 0x00FF00, U: 1, V: 2},
			{X: 30, Y: 40, Color: 0x0000FF, U: 3, V: 4},
			{X: 50, Y: 60, Color: 0xFF0000, U: 5, V: 6},
		},
	}
	buf := make([]byte, c.Size())
	c.Encode(buf, 0)

	_, decoded, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(DrawPolygonCommand)
	if !got.Shaded || !got.Textured || got.RawTexture || got.SemiTransparent {
		t.Fatalf("flags mismatch: %+v", got)
	}
	if len(got.Vertices) != 3 {
		t.Fatalf("vertex count: got %d, want 3", len(got.Vertices))
	}
	for i, v := range c.Vertices {
		if got.Vertices[i] != v {
			t.Fatalf("vertex %d: got %+v, want %+v", i, got.Vertices[i], v)
		}
	}
}

func TestDrawPrecisePolygonRoundTrips(t *testing.T) {
	c := DrawPrecisePolygonCommand{
		DrawPolygonCommand: DrawPolygonCommand{
			Vertices: []Vertex{
				{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6},
			},
		},
		NativeX: []int32{256, 512, 768},
		NativeY: []int32{100, 200, 300},
	}
	buf := make([]byte, c.Size())
	c.Encode(buf, 0)

	h, decoded, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != DrawPrecisePolygon {
		t.Fatalf("got type %v", h.Type)
	}
	got := decoded.(DrawPrecisePolygonCommand)
	if len(got.NativeX) != 3 || got.NativeX[1] != 512 || got.NativeY[2] != 300 {
		t.Fatalf("native coords mismatch: %+v", got)
	}
}

func TestAlignSizeRoundsUpToFour(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 17: 20}
	for in, want := range cases {
		if got := AlignSize(in); got != want {
			t.Fatalf("AlignSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestUnknownCommandTypeErrors(t *testing.T) {
	buf := make([]byte, HeaderSize)
	PutHeader(buf, Header{Type: CommandType(255), Size: HeaderSize})
	_, _, err := Decode(buf)
	if err == nil {
		t.Fatal("expected error for unknown command type")
	}
}
