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
	"sync"
	"testing"
	"time"

	"github.com/scanlinevm/scanline/cmdring"
	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpucmd"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/vram"
)

// fakeBackend is a minimal gpubackend.Backend that records calls instead of
// touching real VRAM or a real device, so dispatch and reconfigure behavior
// can be asserted directly.
type fakeBackend struct {
	mu sync.Mutex

	hardware    bool
	initErr     error
	destroyed   bool
	fillCalls   int
	lastFill    vram.Rect
	lastColor   uint16
	presentFn   func() gpubackend.PresentResult
	presentErr  gpubackend.PresentResult
	presentHits int
	v           vram.VRAM
	clut        [vram.CLUTSize]uint16
}

func newFakeBackend(hardware bool) *fakeBackend {
	return &fakeBackend{hardware: hardware, presentErr: gpubackend.PresentSuccess}
}

func (b *fakeBackend) Initialize(uploadVRAM *vram.VRAM) error {
	if uploadVRAM != nil {
		b.v = *uploadVRAM
	}
	return b.initErr
}

func (b *fakeBackend) IsHardwareRenderer() bool { return b.hardware }

func (b *fakeBackend) ReadVRAM(r vram.Rect) []uint16 {
	out := make([]uint16, r.Width*r.Height)
	copy(out, b.v.Pixels[:])
	return out
}

func (b *fakeBackend) FillVRAM(r vram.Rect, color uint16, params vram.Params) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fillCalls++
	b.lastFill = r
	b.lastColor = color
}

func (b *fakeBackend) UpdateVRAM(r vram.Rect, data []uint16, params vram.Params) {}
func (b *fakeBackend) CopyVRAM(src vram.Rect, dstX, dstY int, params vram.Params) {}

func (b *fakeBackend) DrawPolygon(cmd gpubackend.DrawPolygonArgs)                        {}
func (b *fakeBackend) DrawPrecisePolygon(cmd gpubackend.DrawPolygonArgs, nx, ny []int32) {}
func (b *fakeBackend) DrawRectangle(cmd gpubackend.DrawRectangleArgs)                    {}
func (b *fakeBackend) DrawLine(cmd gpubackend.DrawLineArgs)                              {}

func (b *fakeBackend) DrawingAreaChanged(area vram.Rect) {}
func (b *fakeBackend) UpdateCLUT(x, y int)               {}
func (b *fakeBackend) ClearCache()                       {}
func (b *fakeBackend) ClearVRAM()                        {}
func (b *fakeBackend) OnBufferSwapped()                  {}

func (b *fakeBackend) UpdateDisplay(desc gpubackend.DisplayDescriptor) error { return nil }
func (b *fakeBackend) LoadState(vramData, clut []uint16) error              { return nil }

func (b *fakeBackend) FlushRender()                   {}
func (b *fakeBackend) RestoreDeviceContext()          {}
func (b *fakeBackend) UpdateResolutionScale(s uint32) {}
func (b *fakeBackend) GetResolutionScale() uint32     { return 1 }

func (b *fakeBackend) Present(allowSkip bool) gpubackend.PresentResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentHits++
	if b.presentFn != nil {
		return b.presentFn()
	}
	return b.presentErr
}

func (b *fakeBackend) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
}

func (b *fakeBackend) fillCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fillCalls
}

func (b *fakeBackend) presentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presentHits
}

// fakeHost implements host.Host for tests, recording window acquisitions and
// notifications instead of touching a real window toolkit.
type fakeHost struct {
	mu sync.Mutex

	fullscreen       bool
	acquireErr       error
	osdMessages      []string
	fatalErrors      []string
	framesDone       uint64
	fullscreenUIRuns int
}

func (h *fakeHost) AcquireRenderWindow(api host.RenderAPI, fullscreen, exclusive bool) (host.WindowInfo, error) {
	if h.acquireErr != nil {
		return host.WindowInfo{}, h.acquireErr
	}
	return host.WindowInfo{SurfaceWidth: 640, SurfaceHeight: 480}, nil
}

func (h *fakeHost) ReleaseRenderWindow() {}

func (h *fakeHost) IsFullscreen() bool { return h.fullscreen }
func (h *fakeHost) SetFullscreen(fullscreen bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fullscreen = fullscreen
}

func (h *fakeHost) AddOSDMessage(id string, icon host.OSDIcon, text string, duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.osdMessages = append(h.osdMessages, id)
}

func (h *fakeHost) ReportFatalError(title, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fatalErrors = append(h.fatalErrors, title)
}

func (h *fakeHost) RunOnCPUThread(fn func()) { fn() }

func (h *fakeHost) FrameDoneOnGPUThread(backendIsHardware bool, frameNumber uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.framesDone = frameNumber
}

func (h *fakeHost) OnFullscreenUIStartedOrStopped(started bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fullscreenUIRuns++
}

func (h *fakeHost) OnFullscreenUIActiveChanged(active bool) {}

func newTestWorker(factory BackendFactory) (*Worker, *Producer, *fakeHost) {
	ring := cmdring.New(4096)
	registry := cmdring.NewRegistry()
	h := &fakeHost{}
	w := NewWorker(ring, registry, h, host.NoopImGui{}, factory, config.Default())
	return w, NewProducer(ring, registry), h
}

func TestWorkerDispatchesFillVRAMToActiveBackend(t *testing.T) {
	backend := newFakeBackend(false)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		return backend, nil
	}
	w, producer, _ := newTestWorker(factory)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	req := &ReconfigureRequest{RequestRenderer: true, Settings: config.Default()}
	res, err := producer.Reconfigure(ctx, req)
	if err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("reconfigure result error: %v", res.Err)
	}

	fill := gpucmd.FillVRAMCommand{X: 1, Y: 2, Width: 3, Height: 4, Color: 0x1234}
	if err := producer.Send(ctx, fill, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := producer.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not shut down in time")
	}

	if backend.fillCount() != 1 {
		t.Fatalf("expected exactly one FillVRAM dispatch, got %d", backend.fillCount())
	}
	if w.State() != ShuttingDown {
		t.Fatalf("expected ShuttingDown state after Shutdown, got %s", w.State())
	}
	if !backend.destroyed {
		t.Fatal("expected Shutdown to destroy the active backend")
	}
}

func TestReconfigureFallsBackToSoftwareOnHardwareFailure(t *testing.T) {
	software := newFakeBackend(false)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		if renderer.IsHardware() {
			return nil, errFakeDeviceCreate
		}
		return software, nil
	}
	w, producer, h := newTestWorker(factory)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go w.Run(ctx)

	settings := config.Default()
	settings.GPURenderer = config.HardwareOpenGL
	req := &ReconfigureRequest{RequestRenderer: true, Settings: settings}
	res, err := producer.Reconfigure(ctx, req)
	if err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("reconfigure result error: %v", res.Err)
	}
	if !res.FellBackToSoftware {
		t.Fatal("expected FellBackToSoftware to be true")
	}
	if len(h.osdMessages) == 0 {
		t.Fatal("expected an OSD warning about the fallback")
	}

	_ = producer.Shutdown(ctx)
}

func TestReconfigureCarriesVRAMAcrossBackendSwap(t *testing.T) {
	first := newFakeBackend(false)
	first.v.Pixels[0] = 0xBEEF

	var second *fakeBackend
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		if second == nil {
			return first, nil
		}
		return second, nil
	}
	w, producer, _ := newTestWorker(factory)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go w.Run(ctx)

	req1 := &ReconfigureRequest{RequestRenderer: true, Settings: config.Default()}
	if _, err := producer.Reconfigure(ctx, req1); err != nil {
		t.Fatalf("first Reconfigure: %v", err)
	}

	second = newFakeBackend(false)
	req2 := &ReconfigureRequest{RequestRenderer: true, Settings: config.Default(), UploadVRAM: true}
	res2, err := producer.Reconfigure(ctx, req2)
	if err != nil {
		t.Fatalf("second Reconfigure: %v", err)
	}
	if res2.Err != nil {
		t.Fatalf("second reconfigure result error: %v", res2.Err)
	}

	if second.v.Pixels[0] != 0xBEEF {
		t.Fatalf("expected VRAM pixel 0 to survive the swap, got %#x", second.v.Pixels[0])
	}

	_ = producer.Shutdown(ctx)
}

func TestSecondDeviceLossWithinRecoveryWindowIsFatal(t *testing.T) {
	backend := newFakeBackend(true)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		return backend, nil
	}
	w, _, h := newTestWorker(factory)
	w.backend = backend
	w.state = Running
	w.activeRenderer = config.HardwareOpenGL

	w.handleDeviceLost()
	if w.state != Running {
		t.Fatalf("expected recovery to leave the worker Running, got %s", w.state)
	}
	if len(h.fatalErrors) != 0 {
		t.Fatalf("expected no fatal error on first loss, got %v", h.fatalErrors)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected a second loss within the recovery window to abort via panic")
			}
		}()
		w.handleDeviceLost()
	}()

	if w.state != ShuttingDown {
		t.Fatalf("expected the worker to be left in ShuttingDown before aborting, got state %s", w.state)
	}
	if len(h.fatalErrors) != 1 {
		t.Fatalf("expected exactly one fatal error, got %d", len(h.fatalErrors))
	}
}

func TestPresentFrameCapsConsecutiveSkips(t *testing.T) {
	backend := newFakeBackend(false)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		return backend, nil
	}
	w, _, _ := newTestWorker(factory)
	w.backend = backend
	w.state = Running

	for i := 0; i < maxSkippedPresentCount; i++ {
		if err := w.BeginQueueFrame(context.Background()); err != nil {
			t.Fatalf("BeginQueueFrame: %v", err)
		}
		result := w.PresentFrame(true, true)
		if result != gpubackend.PresentSkipped {
			t.Fatalf("iteration %d: expected PresentSkipped, got %s", i, result)
		}
	}
	if backend.presentCount() != 0 {
		t.Fatalf("expected no real presents within the skip cap, got %d", backend.presentCount())
	}

	if err := w.BeginQueueFrame(context.Background()); err != nil {
		t.Fatalf("BeginQueueFrame: %v", err)
	}
	result := w.PresentFrame(true, true)
	if result != gpubackend.PresentSuccess {
		t.Fatalf("expected the frame after the skip cap to actually present, got %s", result)
	}
	if backend.presentCount() != 1 {
		t.Fatalf("expected exactly one real present after the cap, got %d", backend.presentCount())
	}
}

func TestFrameQueueBoundsOutstandingPresents(t *testing.T) {
	backend := newFakeBackend(false)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		return backend, nil
	}
	w, _, _ := newTestWorker(factory)
	w.backend = backend
	w.state = Running

	for i := 0; i < maxQueuedFramesDefault; i++ {
		if err := w.BeginQueueFrame(context.Background()); err != nil {
			t.Fatalf("BeginQueueFrame %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.BeginQueueFrame(ctx); err == nil {
		t.Fatal("expected BeginQueueFrame to block once the queue is full")
	}

	w.PresentFrame(false, false)
	if err := w.BeginQueueFrame(context.Background()); err != nil {
		t.Fatalf("expected BeginQueueFrame to unblock after a present, got: %v", err)
	}
}

func TestStatsReflectsPresentedFrames(t *testing.T) {
	backend := newFakeBackend(false)
	factory := func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		return backend, nil
	}
	w, _, _ := newTestWorker(factory)
	w.backend = backend
	w.state = Running

	if err := w.BeginQueueFrame(context.Background()); err != nil {
		t.Fatalf("BeginQueueFrame: %v", err)
	}
	w.PresentFrame(false, false)

	stats := w.Stats()
	if stats.FrameNumber != 1 {
		t.Fatalf("expected FrameNumber 1 after one successful present, got %d", stats.FrameNumber)
	}
	if stats.ConsecutiveSkipped != 0 {
		t.Fatalf("expected ConsecutiveSkipped 0, got %d", stats.ConsecutiveSkipped)
	}
	if stats.QueuedFrames != 0 {
		t.Fatalf("expected QueuedFrames 0 after the present released its permit, got %d", stats.QueuedFrames)
	}
}

type fakeDeviceCreateError struct{}

func (fakeDeviceCreateError) Error() string { return "fake: device create failed" }

var errFakeDeviceCreate = fakeDeviceCreateError{}
