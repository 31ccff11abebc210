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

// Package hwgpu implements the Hardware backend handle (spec.md §4.6): a
// gpubackend.Backend whose draws still land in an in-process VRAM mirror via
// package rasterizer (bit-accurate hardware rasterization is out of scope,
// spec.md §1), but whose presentation goes through a real device — either
// OpenGL or WebGPU, selected by config.GPURenderer.
package hwgpu

import (
	"image"

	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/host"
)

// device is the closed, two-member set spec.md §9 calls for ("model as a
// closed set of backend variants... dispatched via a tagged handle").
type device interface {
	RenderAPI() host.RenderAPI
	Present(frame *image.RGBA, allowSkip bool) gpubackend.PresentResult
	Destroy()
}

// newDevice constructs the device implementation selected by renderer.
// window is the already-acquired host.WindowInfo the device creates its
// surface/context against; acquiring it is an external collaborator
// (spec.md §1).
func newDevice(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (device, error) {
	switch renderer {
	case config.HardwareOpenGL:
		return newOpenGLDevice(window, settings)
	case config.HardwareWebGPU:
		return newWebGPUDevice(window, settings)
	default:
		panic("hwgpu: renderer is not a hardware variant")
	}
}
