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

package hwgpu

import (
	"fmt"

	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/rasterizer"
	"github.com/scanlinevm/scanline/vram"
)

// HardwareBackend implements gpubackend.Backend for the Hardware handle.
// Draws still land in an in-process VRAM mirror via package rasterizer —
// bit-accurate hardware rasterization is out of scope (spec.md §1) — but
// presentation goes through a real device, selected by config.GPURenderer.
type HardwareBackend struct {
	vram *vram.VRAM

	window   host.WindowInfo
	settings config.Settings
	renderer config.GPURenderer
	dev      device

	drawingArea     vram.Rect
	resolutionScale uint32
	showFullVRAM    bool
	chromaSmoothing bool
	pendingDisplay  gpubackend.DisplayDescriptor
}

// New constructs a HardwareBackend bound to an already-acquired window
// (window/context acquisition happens outside this package, per spec.md
// §1). The underlying device isn't created until Initialize, so a failed
// device creation never leaves a half-built backend in the worker's hands.
func New(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings, chromaSmoothing bool) *HardwareBackend {
	return &HardwareBackend{
		vram:            vram.New(),
		window:          window,
		settings:        settings,
		renderer:        renderer,
		chromaSmoothing: chromaSmoothing,
		drawingArea:     vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height},
	}
}

func (b *HardwareBackend) Initialize(uploadVRAM *vram.VRAM) error {
	dev, err := newDevice(b.renderer, b.window, b.settings)
	if err != nil {
		return err
	}
	b.dev = dev
	if uploadVRAM != nil {
		*b.vram = *uploadVRAM
	}
	return nil
}

func (b *HardwareBackend) IsHardwareRenderer() bool { return true }

func (b *HardwareBackend) ReadVRAM(r vram.Rect) []uint16 { return b.vram.ReadRect(r) }

func (b *HardwareBackend) FillVRAM(r vram.Rect, color uint16, params vram.Params) {
	b.vram.FillRect(r, color, params)
}

func (b *HardwareBackend) UpdateVRAM(r vram.Rect, data []uint16, params vram.Params) {
	b.vram.UpdateRect(r, data, params)
}

func (b *HardwareBackend) CopyVRAM(src vram.Rect, dstX, dstY int, params vram.Params) {
	b.vram.CopyRect(src, dstX, dstY, params)
}

func (b *HardwareBackend) drawModeOf(a gpubackend.DrawPolygonArgs) rasterizer.DrawMode {
	return rasterizer.DrawMode{
		Shaded: a.Shaded, Textured: a.Textured,
		RawTexture: a.RawTexture, SemiTransparent: a.SemiTransparent,
	}
}

func (b *HardwareBackend) texLookup(pageX, pageY int) rasterizer.TexLookup {
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

func (b *HardwareBackend) DrawPolygon(cmd gpubackend.DrawPolygonArgs) {
	tex := b.texLookup(cmd.TexPageX, cmd.TexPageY)
	rasterizer.Polygon(b.vram, b.drawingArea, b.drawModeOf(cmd), toRasterVertices(cmd.Vertices), tex)
}

// DrawPrecisePolygon ignores the native fixed-point coordinates: without a
// real hardware rasterizer to feed them to, nativeX/nativeY have no
// consumer, so this draws exactly like DrawPolygon.
func (b *HardwareBackend) DrawPrecisePolygon(cmd gpubackend.DrawPolygonArgs, nativeX, nativeY []int32) {
	b.DrawPolygon(cmd)
}

func (b *HardwareBackend) DrawRectangle(cmd gpubackend.DrawRectangleArgs) {
	tex := b.texLookup(cmd.TexPageX, cmd.TexPageY)
	mode := rasterizer.DrawMode{Textured: cmd.Textured, SemiTransparent: cmd.SemiTransparent}
	rasterizer.Rectangle(b.vram, b.drawingArea, mode, int32(cmd.X), int32(cmd.Y), int32(cmd.Width), int32(cmd.Height), cmd.Color, cmd.U, cmd.V, tex)
}

func (b *HardwareBackend) DrawLine(cmd gpubackend.DrawLineArgs) {
	mode := rasterizer.DrawMode{Shaded: cmd.Shaded, SemiTransparent: cmd.SemiTransparent}
	rasterizer.Line(b.vram, b.drawingArea, mode, toRasterVertices(cmd.Vertices))
}

func (b *HardwareBackend) DrawingAreaChanged(area vram.Rect) { b.drawingArea = area }

func (b *HardwareBackend) UpdateCLUT(x, y int) { b.vram.UpdateCLUT(x, y) }

func (b *HardwareBackend) ClearCache() {}

func (b *HardwareBackend) ClearVRAM() { b.vram.Reset() }

func (b *HardwareBackend) OnBufferSwapped() {}

// UpdateDisplay just records the rect/format for the next Present, since
// presentation (and therefore the pixel upload) belongs to the device, not
// to VRAM readout directly — unlike the software backend, which must own a
// streaming texture itself.
func (b *HardwareBackend) UpdateDisplay(desc gpubackend.DisplayDescriptor) error {
	if b.showFullVRAM {
		desc.Rect = vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height}
		desc.Interlaced = false
	}
	b.pendingDisplay = desc
	return nil
}

func (b *HardwareBackend) LoadState(vramData, clut []uint16) error {
	if len(vramData) != len(b.vram.Pixels) {
		return gpuerrors.New(gpuerrors.SaveStateIOError, fmt.Sprintf("expected %d VRAM words, got %d", len(b.vram.Pixels), len(vramData)))
	}
	copy(b.vram.Pixels[:], vramData)
	copy(b.vram.CLUT[:], clut)
	return nil
}

func (b *HardwareBackend) FlushRender()          {}
func (b *HardwareBackend) RestoreDeviceContext() {}

func (b *HardwareBackend) UpdateResolutionScale(scale uint32) { b.resolutionScale = scale }
func (b *HardwareBackend) GetResolutionScale() uint32         { return b.resolutionScale }

// SetShowFullVRAM toggles the "show VRAM" debug flag from spec.md §4.5,
// mirrored here for parity with the software backend.
func (b *HardwareBackend) SetShowFullVRAM(show bool) { b.showFullVRAM = show }

// Present renders the pending display rect into an image and hands it to
// the selected device, translating the device's RenderAPI-specific result
// into the shared gpubackend.PresentResult the worker's recovery logic
// understands.
func (b *HardwareBackend) Present(allowSkip bool) gpubackend.PresentResult {
	if b.dev == nil {
		return gpubackend.PresentSkipped
	}
	img := gpubackend.ApplyDisplayDescriptor(b.vram, b.pendingDisplay)
	if b.chromaSmoothing && b.pendingDisplay.Depth24 {
		gpubackend.ChromaSmooth24(img)
	}
	return b.dev.Present(img, allowSkip)
}

func (b *HardwareBackend) Destroy() {
	if b.dev != nil {
		b.dev.Destroy()
		b.dev = nil
	}
}
