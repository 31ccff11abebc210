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
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/logger"
)

// maxQueuedFramesDefault bounds how many presents the producer may have
// outstanding before BeginQueueFrame blocks, per spec.md §3's "typically
// 1-3" frame queue counter.
const maxQueuedFramesDefault = 2

// maxSkippedPresentCount caps consecutive skipped presents (spec.md
// §4.3.3); the frame after the cap is reached always actually presents.
const maxSkippedPresentCount = 50

// deviceLossRecoveryInterval is the minimum time between two device-loss
// recoveries (spec.md §4.3.2); a second loss inside the window is fatal.
const deviceLossRecoveryInterval = 15 * time.Second

// framePacer implements spec.md §4.3.3's bounded frame queue:
// BeginQueueFrame acquires one of a fixed number of permits, held until the
// worker's next present releases it — the sole backpressure between
// simulation rate and present rate. Every counter here is an atomic because
// Stats() is meant to be polled from a goroutine other than the one running
// Worker.Run (see gputelemetry).
type framePacer struct {
	sem                *semaphore.Weighted
	queuedFrames       atomic.Int32
	consecutiveSkipped atomic.Int32
	lastPresentNanos   atomic.Int64
}

func newFramePacer(maxQueuedFrames int64) *framePacer {
	return &framePacer{sem: semaphore.NewWeighted(maxQueuedFrames)}
}

// BeginQueueFrame is called by the producer before publishing a batch of
// display commands. It blocks until fewer than the configured number of
// presents are outstanding.
func (p *framePacer) BeginQueueFrame(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.queuedFrames.Add(1)
	return nil
}

// doneQueueFrame releases one queued-frame permit; called by the worker
// after every present attempt, successful or not. A present with no queued
// frame outstanding (e.g. an idle present) releases nothing.
func (p *framePacer) doneQueueFrame() {
	for {
		n := p.queuedFrames.Load()
		if n <= 0 {
			return
		}
		if p.queuedFrames.CompareAndSwap(n, n-1) {
			p.sem.Release(1)
			return
		}
	}
}

// BeginQueueFrame exposes the worker's frame pacer to producers.
func (w *Worker) BeginQueueFrame(ctx context.Context) error {
	return w.pacer.BeginQueueFrame(ctx)
}

// PresentFrame implements spec.md §4.3.3. shouldSkip reflects whatever the
// active device/swapchain reports about frame readiness — this module has
// no swapchain of its own to query, so the caller (typically the host's
// render loop, which owns vsync timing) supplies it directly.
func (w *Worker) PresentFrame(allowSkip, shouldSkip bool) gpubackend.PresentResult {
	defer w.pacer.doneQueueFrame()

	if w.backend == nil {
		return gpubackend.PresentSkipped
	}

	if shouldSkip && allowSkip && w.pacer.consecutiveSkipped.Load() < maxSkippedPresentCount {
		w.pacer.consecutiveSkipped.Add(1)
		w.imgui.Render()
		w.imgui.NewFrame()
		return gpubackend.PresentSkipped
	}
	w.pacer.consecutiveSkipped.Store(0)

	w.imgui.Render()
	start := time.Now()
	result := w.backend.Present(allowSkip)
	w.pacer.lastPresentNanos.Store(int64(time.Since(start)))

	switch result {
	case gpubackend.PresentDeviceLost:
		w.handleDeviceLost()
	case gpubackend.PresentExclusiveFullscreenLost:
		w.handleExclusiveFullscreenLost()
	case gpubackend.PresentSuccess:
		frame := w.frameNumber.Add(1)
		w.host.FrameDoneOnGPUThread(w.backend.IsHardwareRenderer(), frame)
	}

	w.imgui.NewFrame()
	return result
}

// FrameStats is a snapshot of the worker's frame-pacing counters
// (spec.md §3's frame queue counter, §4.3.3's skip streak, and the most
// recent Backend.Present duration), meant to be read from any goroutine
// while Run is active — gputelemetry polls this to publish GPU usage.
type FrameStats struct {
	QueuedFrames        int32
	ConsecutiveSkipped  int32
	LastPresentDuration time.Duration
	FrameNumber         uint64
}

// Stats returns the current frame-pacing counters. Safe to call
// concurrently with Run.
func (w *Worker) Stats() FrameStats {
	return FrameStats{
		QueuedFrames:        w.pacer.queuedFrames.Load(),
		ConsecutiveSkipped:  w.pacer.consecutiveSkipped.Load(),
		LastPresentDuration: time.Duration(w.pacer.lastPresentNanos.Load()),
		FrameNumber:         w.frameNumber.Load(),
	}
}

// handleDeviceLost implements spec.md §4.3.2's device-loss recovery: destroy
// and recreate backend+device from the most recently requested
// configuration, unless a prior recovery happened inside the last 15 s. That
// second case means the device is probably wedged rather than having hit a
// one-off transient loss, so it aborts the process instead of shutting down
// gracefully — a plain report-and-continue here would leave the caller
// believing the worker is still usable.
func (w *Worker) handleDeviceLost() {
	now := time.Now()
	if !w.lastRecovery.IsZero() && now.Sub(w.lastRecovery) < deviceLossRecoveryInterval {
		err := gpuerrors.New(gpuerrors.DeviceLostFatal, deviceLossRecoveryInterval.String())
		logger.Log(logger.Allow, "gpuworker", err.Error())
		w.host.ReportFatalError("GPU device lost", err.Error())
		w.destroyBackend()
		w.state = ShuttingDown
		panic(err.Error())
	}
	w.lastRecovery = now

	warning := gpuerrors.New(gpuerrors.DeviceLost)
	logger.Log(logger.Allow, "gpuworker", warning.Error())
	w.host.AddOSDMessage("gpu-device-lost", host.OSDIconWarning, warning.Error(), 3*time.Second)

	w.destroyBackend()
	backend, err := w.recoverBackend()
	if err != nil {
		w.host.ReportFatalError("GPU device recreate failed", err.Error())
		w.state = ShuttingDown
		return
	}
	w.backend = backend
	w.state = Running
}

// recoverBackend rebuilds the active backend using the last successfully
// applied Settings and fullscreen state, with no VRAM to carry over — VRAM
// contents are lost with the device on a real device-loss event, matching
// how a swapchain/device loss invalidates GPU-resident resources.
func (w *Worker) recoverBackend() (gpubackend.Backend, error) {
	var window host.WindowInfo
	if w.activeRenderer.IsHardware() {
		var err error
		window, err = w.host.AcquireRenderWindow(renderAPIFor(w.activeRenderer), w.fullscreenRequested, w.exclusiveRequested)
		if err != nil {
			return nil, gpuerrors.Wrap(gpuerrors.WindowAcquireFailed, err, err.Error())
		}
	}
	backend, err := w.newBackend(w.activeRenderer, window, w.settings)
	if err != nil {
		return nil, err
	}
	if err := backend.Initialize(nil); err != nil {
		backend.Destroy()
		return nil, err
	}
	return backend, nil
}

// handleExclusiveFullscreenLost implements spec.md §4.3.2's second present
// failure mode: ask the host to leave fullscreen and keep running.
func (w *Worker) handleExclusiveFullscreenLost() {
	logger.Log(logger.Allow, "gpuworker", gpuerrors.New(gpuerrors.ExclusiveFullscreenLost).Error())
	w.host.SetFullscreen(false)
	w.fullscreenRequested = false
}
