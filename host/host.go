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

// Package host declares the narrow surface the GPU worker calls into on
// the host application, and the callbacks it emits back. None of it is
// implemented here: host-window acquisition, ImGui integration, and the
// fullscreen UI are external collaborators per spec.md §1. A real
// application wires its own window toolkit, ImGui binding and settings UI
// behind these interfaces.
package host

import (
	"time"
)

// RenderAPI identifies the graphics API a window/device pair was created
// for, mirrored from config.GPURenderer but without the Software case
// (there is no window for the software backend to ask the host for).
type RenderAPI int

const (
	RenderAPIOpenGL RenderAPI = iota
	RenderAPIWebGPU
)

// WindowInfo is the read-only description of the host window the active
// device is presenting into. The CPU thread reads this back (guarded by a
// release/acquire fence on updates, see spec.md §5) purely for informational
// purposes (e.g. reporting window size); it never mutates it.
type WindowInfo struct {
	// SurfaceHandle is an opaque, platform-specific native handle (HWND,
	// NSView*, X11 Window, wl_surface*, ...) that a RenderAPI device
	// implementation uses to create its surface/context. The concrete type
	// behind the handle is a detail of the host's window toolkit.
	SurfaceHandle uintptr

	SurfaceWidth  uint32
	SurfaceHeight uint32
	SurfaceScale  float32
}

// RenderWindowProvider is the subset of the host application responsible
// for acquiring and releasing the window a device renders into.
type RenderWindowProvider interface {
	// AcquireRenderWindow creates or re-acquires a window suitable for the
	// given API. exclusiveRequested asks for exclusive fullscreen if the
	// platform/API supports it; the returned WindowInfo reflects what was
	// actually obtained, which may not be exclusive fullscreen even if it
	// was requested.
	AcquireRenderWindow(api RenderAPI, fullscreen, exclusiveRequested bool) (WindowInfo, error)

	// ReleaseRenderWindow releases whatever window was last acquired.
	ReleaseRenderWindow()

	IsFullscreen() bool
	SetFullscreen(fullscreen bool)
}

// OSDIcon selects a glyph to accompany an OSD message.
type OSDIcon int

const (
	OSDIconNone OSDIcon = iota
	OSDIconWarning
	OSDIconError
	OSDIconInfo
)

// Notifier is the subset of the host responsible for surfacing messages
// and fatal errors to the user.
type Notifier interface {
	AddOSDMessage(id string, icon OSDIcon, text string, duration time.Duration)
	ReportFatalError(title, description string)
}

// AsyncRunner lets the GPU thread schedule a callable to run later on the
// CPU thread — the reverse of an AsyncCall command, used for things like
// window-resize notifications (spec.md §6).
type AsyncRunner interface {
	RunOnCPUThread(func())
}

// FrameCallbacks are the notifications the GPU worker emits back to the
// host after each successful present, and around fullscreen UI lifecycle
// transitions.
type FrameCallbacks interface {
	FrameDoneOnGPUThread(backendIsHardware bool, frameNumber uint64)
	OnFullscreenUIStartedOrStopped(started bool)
	OnFullscreenUIActiveChanged(active bool)
}

// ImGuiRenderer is the callable renderer surface the worker drives once per
// frame to keep the debug/fullscreen UI advancing (spec.md §1: "ImGui
// integration (a callable renderer)"). It is intentionally tiny: scanline
// never looks inside an ImGui draw list, it only needs the frame to start
// and end in step with presentation.
type ImGuiRenderer interface {
	NewFrame()
	Render()
}

// Host bundles every collaborator surface the worker needs. Applications
// typically implement all of these on one concrete type, but the worker
// only ever depends on the narrow interfaces above.
type Host interface {
	RenderWindowProvider
	Notifier
	AsyncRunner
	FrameCallbacks
}

// NoopImGui is a ready-made ImGuiRenderer for hosts that don't run a UI
// layer at all (e.g. headless regression testing), so the worker's
// PresentFrame path always has something to call.
type NoopImGui struct{}

func (NoopImGui) NewFrame() {}
func (NoopImGui) Render()   {}
