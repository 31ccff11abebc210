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

// Package rasterizer draws polygons, rectangles and lines into a vram.VRAM,
// shared by both the software and hardware backends so VRAM contents stay
// visually consistent regardless of which one is active (spec.md §4.6).
// Bit-exact primitive math is explicitly out of scope (spec.md §1); these
// routines fill a reasonable approximation — flat or Gouraud-shaded,
// nearest-sample textured — rather than the console's exact subpixel rules.
package rasterizer

import "github.com/scanlinevm/scanline/vram"

// Vertex is one point of a polygon or line.
type Vertex struct {
	X, Y  int32
	Color uint32 // 0x00BBGGRR
	U, V  uint8
}

// DrawMode selects which of the four draw function pointers spec.md §4.5
// describes ("forwarded... via function pointers chosen from the command's
// {shading, texture, raw_texture, transparency} booleans") applies to a
// polygon or rectangle draw.
type DrawMode struct {
	Shaded          bool
	Textured        bool
	RawTexture      bool
	SemiTransparent bool
}

// TexLookup resolves a texel from texture coordinates (u, v), supplied by
// the backend so the rasterizer never needs to know about VRAM's texture
// page layout directly. Both backends' lookups return the VRAM pixel at the
// texture page origin plus (u, v); no CLUT lookup is applied.
type TexLookup func(u, v uint8) uint16

// Polygon rasterizes a triangle (len(vertices)==3) or a quad split into two
// triangles sharing vertices (0,1,2) and (2,1,3), per spec.md §4.5.
func Polygon(v *vram.VRAM, area vram.Rect, mode DrawMode, vertices []Vertex, tex TexLookup) {
	switch len(vertices) {
	case 3:
		triangle(v, area, mode, vertices[0], vertices[1], vertices[2], tex)
	case 4:
		triangle(v, area, mode, vertices[0], vertices[1], vertices[2], tex)
		triangle(v, area, mode, vertices[2], vertices[1], vertices[3], tex)
	}
}

// Rectangle draws an axis-aligned sprite in one flat color, optionally
// textured; mode.Shaded is not used.
func Rectangle(v *vram.VRAM, area vram.Rect, mode DrawMode, x, y, width, height int32, color uint32, u0, v0 uint8, tex TexLookup) {
	flat := rgbaTo16(color)
	for row := int32(0); row < height; row++ {
		py := y + row
		if !inArea(area, x, py) && !inArea(area, x+width-1, py) {
			continue
		}
		for col := int32(0); col < width; col++ {
			px := x + col
			if !inArea(area, px, py) {
				continue
			}
			pixel := flat
			if mode.Textured && tex != nil {
				pixel = tex(u0+uint8(col), v0+uint8(row))
				if !mode.RawTexture {
					pixel = blendModulate(pixel, flat)
				}
			}
			v.Set(int(px), int(py), pixel)
		}
	}
}

// Line draws a (possibly shaded) straight segment between each consecutive
// pair of vertices using Bresenham's algorithm.
func Line(v *vram.VRAM, area vram.Rect, mode DrawMode, vertices []Vertex) {
	for i := 0; i+1 < len(vertices); i++ {
		bresenham(v, area, mode, vertices[i], vertices[i+1])
	}
}

func inArea(area vram.Rect, x, y int32) bool {
	return x >= int32(area.X) && x < int32(area.X+area.Width) &&
		y >= int32(area.Y) && y < int32(area.Y+area.Height)
}

func rgbaTo16(c uint32) uint16 {
	r := uint16((c>>3)&0x1F) << 0
	g := uint16((c>>11)&0x1F) << 5
	b := uint16((c>>19)&0x1F) << 10
	return r | g | b
}

func blendModulate(texel, flat uint16) uint16 {
	r := min5(texel&0x1F, flat&0x1F)
	g := min5((texel>>5)&0x1F, (flat>>5)&0x1F)
	b := min5((texel>>10)&0x1F, (flat>>10)&0x1F)
	return r | g<<5 | b<<10
}

func min5(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func triangle(v *vram.VRAM, area vram.Rect, mode DrawMode, a, b, c Vertex, tex TexLookup) {
	minX, maxX := minI32(a.X, b.X, c.X), maxI32(a.X, b.X, c.X)
	minY, maxY := minI32(a.Y, b.Y, c.Y), maxI32(a.Y, b.Y, c.Y)

	for py := minY; py <= maxY; py++ {
		if py < int32(area.Y) || py >= int32(area.Y+area.Height) {
			continue
		}
		for px := minX; px <= maxX; px++ {
			if px < int32(area.X) || px >= int32(area.X+area.Width) {
				continue
			}
			w0, w1, w2, ok := barycentric(a, b, c, px, py)
			if !ok {
				continue
			}
			var pixel uint16
			if mode.Shaded {
				pixel = interpolateColor(a.Color, b.Color, c.Color, w0, w1, w2)
			} else {
				pixel = rgbaTo16(a.Color)
			}
			if mode.Textured && tex != nil {
				u := interpolateByte(a.U, b.U, c.U, w0, w1, w2)
				uVal := interpolateByte(a.V, b.V, c.V, w0, w1, w2)
				texel := tex(u, uVal)
				if mode.RawTexture {
					pixel = texel
				} else {
					pixel = blendModulate(texel, pixel)
				}
			}
			v.Set(int(px), int(py), pixel)
		}
	}
}

// barycentric returns the barycentric weights of (px, py) in triangle abc
// and whether the point lies inside it (including edges).
func barycentric(a, b, c Vertex, px, py int32) (w0, w1, w2 float64, ok bool) {
	denom := float64((b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y))
	if denom == 0 {
		return 0, 0, 0, false
	}
	w0f := float64((b.X-px)*(c.Y-py)-(c.X-px)*(b.Y-py)) / denom
	w1f := float64((c.X-px)*(a.Y-py)-(a.X-px)*(c.Y-py)) / denom
	w2f := 1 - w0f - w1f
	if w0f < -1e-6 || w1f < -1e-6 || w2f < -1e-6 {
		return 0, 0, 0, false
	}
	return w0f, w1f, w2f, true
}

func interpolateColor(ca, cb, cc uint32, w0, w1, w2 float64) uint16 {
	r := w0*float64(ca&0xFF) + w1*float64(cb&0xFF) + w2*float64(cc&0xFF)
	g := w0*float64((ca>>8)&0xFF) + w1*float64((cb>>8)&0xFF) + w2*float64((cc>>8)&0xFF)
	b := w0*float64((ca>>16)&0xFF) + w1*float64((cb>>16)&0xFF) + w2*float64((cc>>16)&0xFF)
	packed := uint32(r) | uint32(g)<<8 | uint32(b)<<16
	return rgbaTo16(packed)
}

func interpolateByte(a, b, c uint8, w0, w1, w2 float64) uint8 {
	v := w0*float64(a) + w1*float64(b) + w2*float64(c)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func minI32(vs ...int32) int32 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxI32(vs ...int32) int32 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func bresenham(v *vram.VRAM, area vram.Rect, mode DrawMode, a, b Vertex) {
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx := absI32(x1 - x0)
	dy := absI32(y1 - y0)
	sx, sy := int32(1), int32(1)
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	err := dx - dy
	x, y := x0, y0
	steps := dx
	if dy > steps {
		steps = dy
	}
	for i := int32(0); i <= steps; i++ {
		if inArea(area, x, y) {
			pixel := rgbaTo16(a.Color)
			if mode.Shaded && steps > 0 {
				t := float64(i) / float64(steps)
				pixel = interpolateColor(a.Color, b.Color, a.Color, 1-t, t, 0)
			}
			v.Set(int(x), int(y), pixel)
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
