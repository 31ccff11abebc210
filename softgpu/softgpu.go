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

// Package softgpu implements the pure-Go rasterizer backend (spec.md §4.5):
// draws land in an in-process vram.VRAM via package rasterizer, and display
// readout is streamed into an SDL2 streaming texture the way the teacher's
// own television/sdltv package drives its screen texture.
package softgpu

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/rasterizer"
	"github.com/scanlinevm/scanline/vram"
)

// SoftwareBackend implements gpubackend.Backend without any host GPU
// involvement beyond the final texture blit.
type SoftwareBackend struct {
	vram *vram.VRAM

	renderer *sdl.Renderer
	texture  *sdl.Texture

	format16 config.PixelFormat
	format24 config.PixelFormat

	drawingArea     vram.Rect
	resolutionScale uint32
	showFullVRAM    bool
	chromaSmoothing bool
	textureWidth    int32
	textureHeight   int32
}

// New constructs a SoftwareBackend bound to an already-created SDL renderer
// (window/device acquisition happens outside this package, per spec.md §1).
// format16/format24 mirror spec.md §4.5's "two chosen host pixel formats...
// picked from device-supported formats in a fixed preference order" — the
// caller resolves that preference against the renderer's supported formats
// before constructing the backend.
func New(renderer *sdl.Renderer, format16, format24 config.PixelFormat, chromaSmoothing bool) *SoftwareBackend {
	return &SoftwareBackend{
		vram:            vram.New(),
		renderer:        renderer,
		format16:        format16,
		format24:        format24,
		chromaSmoothing: chromaSmoothing,
		drawingArea:     vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height},
	}
}

func (b *SoftwareBackend) Initialize(uploadVRAM *vram.VRAM) error {
	if uploadVRAM != nil {
		*b.vram = *uploadVRAM
	}
	return b.resizeTexture(vram.Width, vram.Height)
}

func (b *SoftwareBackend) resizeTexture(width, height int32) error {
	if b.texture != nil && b.textureWidth == width && b.textureHeight == height {
		return nil
	}
	if b.texture != nil {
		b.texture.Destroy()
	}
	tex, err := b.renderer.CreateTexture(sdlPixelFormat(b.format16), sdl.TEXTUREACCESS_STREAMING, width, height)
	if err != nil {
		return gpuerrors.Wrap(gpuerrors.BackendInitFailed, err, "software", err.Error())
	}
	b.texture = tex
	b.textureWidth, b.textureHeight = width, height
	return nil
}

func (b *SoftwareBackend) IsHardwareRenderer() bool { return false }

func (b *SoftwareBackend) ReadVRAM(r vram.Rect) []uint16 { return b.vram.ReadRect(r) }

func (b *SoftwareBackend) FillVRAM(r vram.Rect, color uint16, params vram.Params) {
	b.vram.FillRect(r, color, params)
}

func (b *SoftwareBackend) UpdateVRAM(r vram.Rect, data []uint16, params vram.Params) {
	b.vram.UpdateRect(r, data, params)
}

func (b *SoftwareBackend) CopyVRAM(src vram.Rect, dstX, dstY int, params vram.Params) {
	b.vram.CopyRect(src, dstX, dstY, params)
}

func (b *SoftwareBackend) drawModeOf(a gpubackend.DrawPolygonArgs) rasterizer.DrawMode {
	return rasterizer.DrawMode{
		Shaded: a.Shaded, Textured: a.Textured,
		RawTexture: a.RawTexture, SemiTransparent: a.SemiTransparent,
	}
}

func (b *SoftwareBackend) texLookup(clutX, clutY, pageX, pageY int) rasterizer.TexLookup {
	return func(u, v uint8) uint16 {
		return b.vram.At(pageX+int(u), pageY+int(v))
	}
}

func toRasterVertices(vs []gpubackend.Vertex) []rasterizer.Vertex {
	out := make([]rasterizer.Vertex, len(vs))
	for i, v := range vs {
		out[i] = rasterizer.Vertex{X: v.X, Y: v.Y, Color: v.Color, U: v.U, V: v.V}
	}
	return out
}

func (b *SoftwareBackend) DrawPolygon(cmd gpubackend.DrawPolygonArgs) {
	tex := b.texLookup(cmd.ClutX, cmd.ClutY, cmd.TexPageX, cmd.TexPageY)
	rasterizer.Polygon(b.vram, b.drawingArea, b.drawModeOf(cmd), toRasterVertices(cmd.Vertices), tex)
}

func (b *SoftwareBackend) DrawPrecisePolygon(cmd gpubackend.DrawPolygonArgs, nativeX, nativeY []int32) {
	// The software backend has no subpixel-accurate path; native
	// coordinates only matter to a hardware rasterizer, so this falls back
	// to the ordinary polygon draw.
	b.DrawPolygon(cmd)
}

func (b *SoftwareBackend) DrawRectangle(cmd gpubackend.DrawRectangleArgs) {
	tex := b.texLookup(cmd.ClutX, cmd.ClutY, cmd.TexPageX, cmd.TexPageY)
	mode := rasterizer.DrawMode{Textured: cmd.Textured, SemiTransparent: cmd.SemiTransparent}
	rasterizer.Rectangle(b.vram, b.drawingArea, mode, int32(cmd.X), int32(cmd.Y), int32(cmd.Width), int32(cmd.Height), cmd.Color, cmd.U, cmd.V, tex)
}

func (b *SoftwareBackend) DrawLine(cmd gpubackend.DrawLineArgs) {
	mode := rasterizer.DrawMode{Shaded: cmd.Shaded, SemiTransparent: cmd.SemiTransparent}
	rasterizer.Line(b.vram, b.drawingArea, mode, toRasterVertices(cmd.Vertices))
}

func (b *SoftwareBackend) DrawingAreaChanged(area vram.Rect) { b.drawingArea = area }

func (b *SoftwareBackend) UpdateCLUT(x, y int) { b.vram.UpdateCLUT(x, y) }

func (b *SoftwareBackend) ClearCache() {}

func (b *SoftwareBackend) ClearVRAM() { b.vram.Reset() }

func (b *SoftwareBackend) OnBufferSwapped() {}

// UpdateDisplay implements the copy_out_15 / copy_out_24 readout described
// in spec.md §4.5, delegating the pixel-format conversion and
// deinterlace/chroma-smoothing steps to package gpubackend, then streaming
// the result into the reusable SDL texture.
func (b *SoftwareBackend) UpdateDisplay(desc gpubackend.DisplayDescriptor) error {
	if b.showFullVRAM {
		desc.Rect = vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height}
		desc.Interlaced = false
	}
	if err := b.resizeTexture(int32(desc.Rect.Width), int32(desc.Rect.Height)); err != nil {
		return err
	}

	img := gpubackend.ApplyDisplayDescriptor(b.vram, desc)
	if b.chromaSmoothing && desc.Depth24 {
		gpubackend.ChromaSmooth24(img)
	}

	pitch := img.Stride
	if err := b.texture.Update(nil, img.Pix, pitch); err != nil {
		return gpuerrors.Wrap(gpuerrors.SwapchainResizeFailed, err, err.Error())
	}
	return nil
}

func (b *SoftwareBackend) LoadState(vramData, clut []uint16) error {
	if len(vramData) != len(b.vram.Pixels) {
		return gpuerrors.New(gpuerrors.SaveStateIOError, fmt.Sprintf("expected %d VRAM words, got %d", len(b.vram.Pixels), len(vramData)))
	}
	copy(b.vram.Pixels[:], vramData)
	copy(b.vram.CLUT[:], clut)
	return nil
}

func (b *SoftwareBackend) FlushRender()          {}
func (b *SoftwareBackend) RestoreDeviceContext() {}

func (b *SoftwareBackend) UpdateResolutionScale(scale uint32) { b.resolutionScale = scale }
func (b *SoftwareBackend) GetResolutionScale() uint32         { return b.resolutionScale }

// SetShowFullVRAM toggles the "show VRAM" debug flag from spec.md §4.5.
func (b *SoftwareBackend) SetShowFullVRAM(show bool) { b.showFullVRAM = show }

// Present copies the streaming texture to the renderer's target and flips
// it. There is no "skip" path in software rendering; allowSkip is accepted
// for parity with the Backend interface and ignored.
func (b *SoftwareBackend) Present(allowSkip bool) gpubackend.PresentResult {
	if b.renderer == nil || b.texture == nil {
		return gpubackend.PresentSkipped
	}
	if err := b.renderer.Clear(); err != nil {
		return gpubackend.PresentDeviceLost
	}
	if err := b.renderer.Copy(b.texture, nil, nil); err != nil {
		return gpubackend.PresentDeviceLost
	}
	b.renderer.Present()
	return gpubackend.PresentSuccess
}

func (b *SoftwareBackend) Destroy() {
	if b.texture != nil {
		b.texture.Destroy()
		b.texture = nil
	}
}

func sdlPixelFormat(f config.PixelFormat) uint32 {
	switch f {
	case config.PixelFormatRGBA5551:
		return sdl.PIXELFORMAT_RGBA5551
	case config.PixelFormatRGB565:
		return sdl.PIXELFORMAT_RGB565
	case config.PixelFormatRGBA8:
		return sdl.PIXELFORMAT_RGBA32
	case config.PixelFormatBGRA8:
		return sdl.PIXELFORMAT_BGRA32
	default:
		return sdl.PIXELFORMAT_RGBA32
	}
}
