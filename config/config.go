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

// Package config holds the configuration fields the GPU worker consumes.
// Parsing these from disk, environment or command line is out of scope
// (spec.md §1 treats settings/configuration parsing as an external
// collaborator) — the worker only ever reads an already-populated Settings
// value that arrives embedded in a Reconfigure command.
package config

// GPURenderer selects which backend, and which concrete device
// implementation of the Hardware backend, a Reconfigure should construct.
type GPURenderer int

const (
	// Software selects the pure-Go rasterizer backend.
	Software GPURenderer = iota
	// HardwareOpenGL selects the Hardware backend using the OpenGL device.
	HardwareOpenGL
	// HardwareWebGPU selects the Hardware backend using the WebGPU device.
	HardwareWebGPU
)

func (r GPURenderer) String() string {
	switch r {
	case Software:
		return "Software"
	case HardwareOpenGL:
		return "OpenGL"
	case HardwareWebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// IsHardware reports whether r selects one of the Hardware device
// implementations.
func (r GPURenderer) IsHardware() bool {
	return r == HardwareOpenGL || r == HardwareWebGPU
}

// VSyncMode controls how the active device paces presentation.
type VSyncMode int

const (
	VSyncDisabled VSyncMode = iota
	VSyncEnabled
	VSyncFIFORelaxed
)

// PresentMode mirrors the teacher-adjacent oxy-go PresentMode enum.
// webgpuDevice does not read it; its swapchain is always configured for
// FIFO presentation.
type PresentMode int

const (
	PresentModeVSync PresentMode = iota
	PresentModeUncapped
)

// MSAASampleCount is a multisample count setting; only 1, 4, 8 and 16 are
// meaningful. webgpuDevice does not read it and creates its textures
// single-sampled.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// ExclusiveFullscreenControl mirrors spec.md §6's
// display_exclusive_fullscreen_control option.
type ExclusiveFullscreenControl int

const (
	ExclusiveFullscreenAutomatic ExclusiveFullscreenControl = iota
	ExclusiveFullscreenAllowed
	ExclusiveFullscreenDisallowed
)

// DisabledFeatures is a bitmask of optional GPU device features the
// Hardware backend should avoid relying on, mirroring the gpu_disable_*
// options in spec.md §6.
type DisabledFeatures uint32

const (
	FeatureDualSourceBlend DisabledFeatures = 1 << iota
	FeatureFramebufferFetch
	FeatureTextureBuffers
	FeatureMemoryImport
	FeatureRasterOrderViews
)

// PixelFormat is one of the four host pixel formats the software backend
// can target, matching spec.md §4.5's copy_out destination formats and
// sdl.PixelFormatEnum's naming.
type PixelFormat int

const (
	PixelFormatRGBA5551 PixelFormat = iota
	PixelFormatRGB565
	PixelFormatRGBA8
	PixelFormatBGRA8
)

// Settings is the full set of configuration fields the GPU worker reads.
// A zero-value Settings is valid and selects the Software renderer with
// vsync disabled, matching a fresh emulator instance with no user
// configuration loaded yet.
type Settings struct {
	// gpu_renderer / gpu_adapter
	GPURenderer GPURenderer
	GPUAdapter  string

	// gpu_use_debug_device
	GPUUseDebugDevice bool

	// gpu_disable_*
	GPUDisabledFeatures DisabledFeatures

	// gpu_resolution_scale: 0 = automatic, else fixed multiplier.
	GPUResolutionScale uint32

	// display_exclusive_fullscreen_control
	ExclusiveFullscreenControl ExclusiveFullscreenControl

	// display_24bit_chroma_smoothing
	Display24BitChromaSmoothing bool

	// display_show_gpu_usage
	DisplayShowGPUUsage bool

	// [EXPANSION] domain-stack wiring, see SPEC_FULL.md §6.
	GPUPresentMode     PresentMode
	GPUMSAASamples     MSAASampleCount
	Display16BitFormat PixelFormat
	Display24BitFormat PixelFormat

	// VSync / present-throttle, copied into every Reconfigure command per
	// spec.md §4.3.1 step 1.
	VSync                VSyncMode
	AllowPresentThrottle bool
}

// Default returns the Settings a freshly started emulator would use before
// any user configuration is loaded.
func Default() Settings {
	return Settings{
		GPURenderer:        Software,
		GPUResolutionScale: 0,
		GPUPresentMode:     PresentModeVSync,
		GPUMSAASamples:     MSAAOff,
		Display16BitFormat: PixelFormatRGB565,
		Display24BitFormat: PixelFormatRGBA8,
		VSync:              VSyncEnabled,
	}
}
