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

package gpuworker

import (
	"time"

	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/logger"
	"github.com/scanlinevm/scanline/vram"
)

// BackendFactory builds the Backend for a requested renderer. The worker
// never creates windows or GPU devices itself — host-window acquisition is
// an external collaborator (spec.md §1) — so all concrete construction of
// softgpu.SoftwareBackend / hwgpu.HardwareBackend happens behind this
// indirection, supplied by the application wiring the worker together.
// window is the zero value when renderer is config.Software, since the
// software backend is assumed to already hold whatever host.WindowInfo it
// needs (spec.md §4.5's "already-created *sdl.Renderer").
type BackendFactory func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error)

// ReconfigureRequest carries the inputs to spec.md §4.3.1's algorithm. A
// producer builds one, stores it in a cmdring.Registry, and encodes only
// the resulting token into the ring — the request itself is a rich Go
// value, not a flat byte record (see gpucmd.ReconfigureCommand).
type ReconfigureRequest struct {
	RequestRenderer     bool
	Settings            config.Settings
	UploadVRAM          bool
	FullscreenRequested bool
	ExclusiveRequested  bool
	StartFullscreenUI   bool
	ForceRecreateDevice bool

	// Result is filled in by the worker before it returns from processing
	// this command. The producer thread reads it after PublishAndSync
	// returns; that call's release/acquire pairing is what makes the write
	// safely visible without an extra channel or mutex.
	Result *ReconfigureResult
}

// ReconfigureResult is written into a ReconfigureRequest's Result field by
// handleReconfigure.
type ReconfigureResult struct {
	Err                error
	FellBackToSoftware bool
}

func renderAPIFor(renderer config.GPURenderer) host.RenderAPI {
	if renderer == config.HardwareWebGPU {
		return host.RenderAPIWebGPU
	}
	return host.RenderAPIOpenGL
}

// handleReconfigure implements spec.md §4.3.1's seven-step algorithm.
func (w *Worker) handleReconfigure(req *ReconfigureRequest) {
	res := req.Result

	// Step 1: vsync and present-throttle are stored unconditionally, even
	// if every later step is a no-op.
	w.settings.VSync = req.Settings.VSync
	w.settings.AllowPresentThrottle = req.Settings.AllowPresentThrottle

	// Step 2: nothing else requested — tear everything down and return.
	if !req.RequestRenderer && !req.StartFullscreenUI {
		w.destroyBackend()
		w.state = Idle
		res.Err = nil
		return
	}

	// Step 3: read back VRAM through the outgoing backend before it's
	// destroyed, so the pixels survive into whatever backend comes next.
	var uploadVRAM *vram.VRAM
	if req.UploadVRAM && w.backend != nil {
		uploadVRAM = w.snapshotVRAM()
	}

	// Step 4.
	w.destroyBackend()

	// Step 5: determine the required rendering API and (re)create the
	// device. This module folds device lifetime into Backend.Initialize
	// (spec.md §4.6) — a hardware backend's Initialize both acquires the
	// window's device and constructs the backend in one call — so unlike a
	// from-scratch implementation there is no separate device handle to
	// compare against; every hardware reconfigure re-acquires the window
	// and rebuilds the device, which subsumes req.ForceRecreateDevice.
	if req.RequestRenderer {
		backend, fellBack, err := w.constructRequestedBackend(req, uploadVRAM)
		if err != nil {
			// Attempt rollback to the previously active renderer.
			if rollback, rerr := w.tryRollback(uploadVRAM); rerr == nil {
				w.backend = rollback
				w.state = Running
				res.Err = gpuerrors.Wrap(gpuerrors.ReconfigureFailed, err, err.Error())
				return
			}
			res.Err = gpuerrors.Wrap(gpuerrors.DeviceRollbackFailed, err, w.activeRenderer.String(), err.Error())
			w.state = Idle
			return
		}
		w.backend = backend
		w.activeRenderer = req.Settings.GPURenderer
		w.settings = req.Settings
		w.fullscreenRequested = req.FullscreenRequested
		w.exclusiveRequested = req.ExclusiveRequested
		w.state = Running
		res.FellBackToSoftware = fellBack
		res.Err = nil
		return
	}

	// Step 7: only the fullscreen UI was requested.
	w.state = DeviceOnly
	w.host.OnFullscreenUIStartedOrStopped(true)
	res.Err = nil
}

// constructRequestedBackend builds the backend for req.Settings.GPURenderer,
// acquiring a fresh window first if the render API needs one (step 5/6).
// Hardware initialization failure falls back to software with an OSD
// warning, per spec.md §4.3.1 step 6.
func (w *Worker) constructRequestedBackend(req *ReconfigureRequest, uploadVRAM *vram.VRAM) (gpubackend.Backend, bool, error) {
	renderer := req.Settings.GPURenderer

	var window host.WindowInfo
	if renderer.IsHardware() {
		var err error
		window, err = w.host.AcquireRenderWindow(renderAPIFor(renderer), req.FullscreenRequested, req.ExclusiveRequested)
		if err != nil {
			return w.fallbackToSoftware(req, uploadVRAM, err)
		}
	}

	backend, err := w.newBackend(renderer, window, req.Settings)
	if err != nil {
		return w.fallbackToSoftware(req, uploadVRAM, err)
	}
	if err := backend.Initialize(uploadVRAM); err != nil {
		backend.Destroy()
		if !renderer.IsHardware() {
			return nil, false, err
		}
		return w.fallbackToSoftware(req, uploadVRAM, err)
	}
	return backend, false, nil
}

func (w *Worker) fallbackToSoftware(req *ReconfigureRequest, uploadVRAM *vram.VRAM, cause error) (gpubackend.Backend, bool, error) {
	msg := gpuerrors.Wrap(gpuerrors.BackendInitFailed, cause, req.Settings.GPURenderer.String(), cause.Error())
	logger.Log(logger.Allow, "gpuworker", msg.Error())
	w.host.AddOSDMessage("backend-fallback", host.OSDIconWarning,
		"hardware renderer unavailable, falling back to software", 5*time.Second)

	backend, err := w.newBackend(config.Software, host.WindowInfo{}, req.Settings)
	if err != nil {
		return nil, false, err
	}
	if err := backend.Initialize(uploadVRAM); err != nil {
		backend.Destroy()
		return nil, false, err
	}
	w.activeRenderer = config.Software
	return backend, true, nil
}

// tryRollback reconstructs whatever backend was active before a failed
// reconfigure, per spec.md §4.3.1 step 5's "attempt to roll back to the
// previous API".
func (w *Worker) tryRollback(uploadVRAM *vram.VRAM) (gpubackend.Backend, error) {
	var window host.WindowInfo
	if w.activeRenderer.IsHardware() {
		var err error
		window, err = w.host.AcquireRenderWindow(renderAPIFor(w.activeRenderer), w.fullscreenRequested, w.exclusiveRequested)
		if err != nil {
			return nil, err
		}
	}
	backend, err := w.newBackend(w.activeRenderer, window, w.settings)
	if err != nil {
		return nil, err
	}
	if err := backend.Initialize(uploadVRAM); err != nil {
		backend.Destroy()
		return nil, err
	}
	return backend, nil
}

func (w *Worker) destroyBackend() {
	if w.backend != nil {
		w.backend.Destroy()
		w.backend = nil
	}
}

// snapshotVRAM performs the synchronous VRAM readback described in spec.md
// §4.3.1 step 3, packaging it as a *vram.VRAM so it can be handed straight
// to the next backend's Initialize. Only pixel data is read back; the
// snapshot's CLUT is left zeroed (see DESIGN.md).
func (w *Worker) snapshotVRAM() *vram.VRAM {
	full := vram.Rect{X: 0, Y: 0, Width: vram.Width, Height: vram.Height}
	pixels := w.backend.ReadVRAM(full)
	snap := vram.New()
	copy(snap.Pixels[:], pixels)
	return snap
}
