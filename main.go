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

// Command scanline wires the command ring, the GPU worker and a real SDL2
// window together into a minimal runnable demonstration: the emulated-CPU
// thread (main goroutine, driving a Producer) issues a handful of draw
// commands every frame while the GPU thread (a Worker.Run goroutine) drains
// them and presents. It exists to exercise the wiring end to end, not as a
// full emulator front end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/scanlinevm/scanline/cmdring"
	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpucmd"
	"github.com/scanlinevm/scanline/gputelemetry"
	"github.com/scanlinevm/scanline/gpuworker"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/hwgpu"
	"github.com/scanlinevm/scanline/logger"
	"github.com/scanlinevm/scanline/softgpu"
)

// sdlHost implements host.Host on top of a single SDL window, playing the
// role spec.md §1 assigns to the host application: window/device
// acquisition, OSD/fatal-error surfacing, and the CPU-thread callback used
// for cross-thread notifications.
//
// The software backend's SDL renderer is created once at startup and reused
// across reconfigures (BackendFactory's window argument is only meaningful
// for the Hardware variants); OpenGL reconfigures make a GL context current
// on the same window. WebGPU acquisition is left unimplemented here — no
// webgpuDevice wiring exists in this demo host, only in hwgpu itself.
type sdlHost struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	glCtx    sdl.GLContext

	cpuThreadFuncs chan func()
}

func newSDLHost(width, height int32) (*sdlHost, error) {
	window, err := sdl.CreateWindow("scanline", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &sdlHost{
		window:         window,
		renderer:       renderer,
		cpuThreadFuncs: make(chan func(), 64),
	}, nil
}

func (h *sdlHost) AcquireRenderWindow(api host.RenderAPI, fullscreen, exclusiveRequested bool) (host.WindowInfo, error) {
	if api != host.RenderAPIOpenGL {
		return host.WindowInfo{}, fmt.Errorf("sdlHost: %v device acquisition is not wired up in this demo", api)
	}
	if h.glCtx == nil {
		ctx, err := h.window.GLCreateContext()
		if err != nil {
			return host.WindowInfo{}, fmt.Errorf("create GL context: %w", err)
		}
		h.glCtx = ctx
	}
	if err := sdl.GLMakeCurrent(h.window, h.glCtx); err != nil {
		return host.WindowInfo{}, fmt.Errorf("make GL context current: %w", err)
	}
	h.SetFullscreen(fullscreen)
	w, hgt := h.window.GetSize()
	return host.WindowInfo{SurfaceWidth: uint32(w), SurfaceHeight: uint32(hgt), SurfaceScale: 1}, nil
}

func (h *sdlHost) ReleaseRenderWindow() {
	if h.glCtx != nil {
		sdl.GLDeleteContext(h.glCtx)
		h.glCtx = nil
	}
}

func (h *sdlHost) IsFullscreen() bool {
	return h.window.GetFlags()&sdl.WINDOW_FULLSCREEN_DESKTOP != 0
}

func (h *sdlHost) SetFullscreen(fullscreen bool) {
	var flag uint32
	if fullscreen {
		flag = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := h.window.SetFullscreen(flag); err != nil {
		logger.Log(logger.Allow, "main", err.Error())
	}
}

func (h *sdlHost) AddOSDMessage(id string, icon host.OSDIcon, text string, duration time.Duration) {
	fmt.Printf("[osd:%d] %s: %s\n", icon, id, text)
}

func (h *sdlHost) ReportFatalError(title, description string) {
	fmt.Printf("[fatal] %s: %s\n", title, description)
}

// RunOnCPUThread queues fn for the main goroutine's next drain, since the
// worker calls this from the GPU thread and must never run host code inline.
func (h *sdlHost) RunOnCPUThread(fn func()) {
	h.cpuThreadFuncs <- fn
}

func (h *sdlHost) drainCPUThreadFuncs() {
	for {
		select {
		case fn := <-h.cpuThreadFuncs:
			fn()
		default:
			return
		}
	}
}

func (h *sdlHost) FrameDoneOnGPUThread(backendIsHardware bool, frameNumber uint64) {
	if frameNumber%60 == 0 {
		fmt.Printf("frame %d presented (hardware=%v)\n", frameNumber, backendIsHardware)
	}
}

func (h *sdlHost) OnFullscreenUIStartedOrStopped(started bool) {
	logger.Logf(logger.Allow, "main", "fullscreen UI started=%v", started)
}

func (h *sdlHost) OnFullscreenUIActiveChanged(active bool) {}

func (h *sdlHost) destroy() {
	h.ReleaseRenderWindow()
	h.renderer.Destroy()
	h.window.Destroy()
}

// newBackendFactory closes over the software renderer's persistent SDL
// resources, matching BackendFactory's contract that softgpu.SoftwareBackend
// already holds whatever host.WindowInfo it needs (spec.md §4.5).
func newBackendFactory(h *sdlHost) gpuworker.BackendFactory {
	return func(renderer config.GPURenderer, window host.WindowInfo, settings config.Settings) (gpubackend.Backend, error) {
		switch renderer {
		case config.Software:
			return softgpu.New(h.renderer, settings.Display16BitFormat, settings.Display24BitFormat, settings.Display24BitChromaSmoothing), nil
		case config.HardwareOpenGL, config.HardwareWebGPU:
			return hwgpu.New(renderer, window, settings, settings.Display24BitChromaSmoothing), nil
		default:
			return nil, fmt.Errorf("unknown renderer %v", renderer)
		}
	}
}

func main() {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		fmt.Fprintln(os.Stderr, "sdl init:", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	h, err := newSDLHost(640, 480)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer h.destroy()

	ring := cmdring.New(cmdring.DefaultCapacity)
	registry := cmdring.NewRegistry()
	worker := gpuworker.NewWorker(ring, registry, h, host.NoopImGui{}, newBackendFactory(h), config.Default())
	worker.SetRunIdle(true)
	producer := gpuworker.NewProducer(ring, registry)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	workerDone := make(chan error, 1)
	go func() { workerDone <- worker.Run(ctx) }()

	settings := config.Default()
	if settings.DisplayShowGPUUsage {
		gputelemetry.Launch(os.Stdout)
		gputelemetry.ReportFrameStats(ctx, worker, time.Second)
	}
	req := &gpuworker.ReconfigureRequest{RequestRenderer: true, Settings: settings}
	if res, err := producer.Reconfigure(ctx, req); err != nil || res.Err != nil {
		fmt.Fprintln(os.Stderr, "reconfigure:", err, res)
		cancel()
		<-workerDone
		return
	}

	frame := int32(0)
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

runLoop:
	for {
		select {
		case <-sigCh:
			break runLoop
		case <-ticker.C:
			h.drainCPUThreadFuncs()

			color := uint16((frame * 97) & 0x7fff)
			_ = producer.Send(ctx, gpucmd.FillVRAMCommand{X: 0, Y: 0, Width: 64, Height: 64, Color: color}, 0)
			_ = producer.Send(ctx, gpucmd.DrawRectangleCommand{
				X: 100 + (frame % 200), Y: 100, Width: 40, Height: 40, Color: 0x0000ff00,
			}, 0)
			_ = producer.SendAndWake(ctx, gpucmd.UpdateDisplayCommand{X: 0, Y: 0, Width: 640, Height: 480}, 0)

			frame++
			if frame > 3600 {
				break runLoop
			}
		}
	}

	_ = producer.Shutdown(ctx)
	cancel()
	<-workerDone
}
