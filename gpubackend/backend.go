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

// Package gpubackend declares the closed-set interface the GPU worker
// drives: exactly two implementations exist, softgpu.SoftwareBackend and
// hwgpu.HardwareBackend, matching the {Software, Hardware} handle in
// spec.md §3. There is no open-ended plugin surface here on purpose.
package gpubackend

import "github.com/scanlinevm/scanline/vram"

// PresentResult is returned by Backend.Present (called from the worker's
// frame-pacing loop, spec.md §4.3.3) and drives recovery decisions.
type PresentResult int

const (
	PresentSuccess PresentResult = iota
	PresentSkipped
	PresentDeviceLost
	PresentExclusiveFullscreenLost
)

func (r PresentResult) String() string {
	switch r {
	case PresentSuccess:
		return "Success"
	case PresentSkipped:
		return "Skipped"
	case PresentDeviceLost:
		return "DeviceLost"
	case PresentExclusiveFullscreenLost:
		return "ExclusiveFullscreenLost"
	default:
		return "Unknown"
	}
}

// DisplayDescriptor selects the VRAM rectangle currently on screen and how
// it should be interpreted before upload, matching the fields an
// UpdateDisplay command carries.
type DisplayDescriptor struct {
	Rect            vram.Rect
	Depth24         bool
	Interlaced      bool
	InterlacedField int // 0 or 1, meaningful only if Interlaced
}

// Backend is the required operation set from spec.md §4.4. All methods are
// only ever invoked on the GPU thread.
type Backend interface {
	// Initialize prepares the backend for use. If uploadVRAM is non-nil, its
	// contents (and CLUT) seed the backend's VRAM mirror — used when
	// switching backends mid-session (spec.md §4.3.1 step 3).
	Initialize(uploadVRAM *vram.VRAM) error

	IsHardwareRenderer() bool

	ReadVRAM(r vram.Rect) []uint16
	FillVRAM(r vram.Rect, color uint16, params vram.Params)
	UpdateVRAM(r vram.Rect, data []uint16, params vram.Params)
	CopyVRAM(src vram.Rect, dstX, dstY int, params vram.Params)

	DrawPolygon(cmd DrawPolygonArgs)
	DrawPrecisePolygon(cmd DrawPolygonArgs, nativeX, nativeY []int32)
	DrawRectangle(cmd DrawRectangleArgs)
	DrawLine(cmd DrawLineArgs)

	DrawingAreaChanged(area vram.Rect)
	UpdateCLUT(x, y int)
	ClearCache()
	ClearVRAM()
	OnBufferSwapped()

	UpdateDisplay(desc DisplayDescriptor) error
	LoadState(vramData, clut []uint16) error

	FlushRender()
	RestoreDeviceContext()
	UpdateResolutionScale(scale uint32)
	GetResolutionScale() uint32

	// Present draws OSD/overlay content and hands the current frame to the
	// device for presentation.
	Present(allowSkip bool) PresentResult

	// Destroy releases whatever host/device resources the backend holds.
	// Safe to call on a backend that failed Initialize.
	Destroy()
}

// DrawPolygonArgs, DrawRectangleArgs and DrawLineArgs are the backend-facing
// shapes of the corresponding gpucmd records, translated by gpuworker so
// backends don't depend on the wire encoding.
type DrawPolygonArgs struct {
	Shaded, Textured, RawTexture, SemiTransparent bool
	ClutX, ClutY                                  int
	TexPageX, TexPageY                            int
	Vertices                                      []Vertex
}

type Vertex struct {
	X, Y  int32
	Color uint32
	U, V  uint8
}

type DrawRectangleArgs struct {
	X, Y, Width, Height int
	Color               uint32
	Textured            bool
	SemiTransparent     bool
	ClutX, ClutY        int
	TexPageX, TexPageY  int
	U, V                uint8
}

type DrawLineArgs struct {
	Shaded, SemiTransparent bool
	Vertices                []Vertex
}
