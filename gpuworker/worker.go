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

	"github.com/scanlinevm/scanline/cmdring"
	"github.com/scanlinevm/scanline/config"
	"github.com/scanlinevm/scanline/gpubackend"
	"github.com/scanlinevm/scanline/gpucmd"
	"github.com/scanlinevm/scanline/gpuerrors"
	"github.com/scanlinevm/scanline/host"
	"github.com/scanlinevm/scanline/logger"
	"github.com/scanlinevm/scanline/vram"
)

// Worker owns the GPU thread's state and main loop. Exactly one goroutine
// should ever call Run.
type Worker struct {
	ring       *cmdring.Ring
	registry   *cmdring.Registry
	host       host.Host
	imgui      host.ImGuiRenderer
	newBackend BackendFactory

	state   State
	backend gpubackend.Backend

	settings            config.Settings
	activeRenderer      config.GPURenderer
	fullscreenRequested bool
	exclusiveRequested  bool

	pacer        *framePacer
	frameNumber  atomic.Uint64
	lastRecovery time.Time

	// runIdle makes the worker present an idle frame on every loop pass
	// while the ring is empty, instead of parking, keeping the fullscreen UI
	// alive while the emulated system is paused (spec.md §4.3 step 2). The
	// loop adds no throttle of its own; pacing comes only from however long
	// the backend's Present blocks.
	runIdle bool
}

// NewWorker constructs a Worker in the Idle state. factory is consulted by
// every reconfigure to build concrete backends; imgui may be
// host.NoopImGui{} for hosts that don't run a UI layer.
func NewWorker(ring *cmdring.Ring, registry *cmdring.Registry, h host.Host, imgui host.ImGuiRenderer, factory BackendFactory, initial config.Settings) *Worker {
	return &Worker{
		ring:       ring,
		registry:   registry,
		host:       h,
		imgui:      imgui,
		newBackend: factory,
		state:      Idle,
		settings:   initial,
		pacer:      newFramePacer(maxQueuedFramesDefault),
	}
}

// State reports the worker's current lifecycle state.
func (w *Worker) State() State { return w.state }

// SetRunIdle toggles whether the worker presents idle frames when the ring
// is empty instead of parking (spec.md §4.3 step 2).
func (w *Worker) SetRunIdle(idle bool) { w.runIdle = idle }

// Run drains the ring until a Shutdown command is processed or ctx is
// canceled, dispatching every command per spec.md §4.3's per-iteration
// algorithm.
func (w *Worker) Run(ctx context.Context) error {
	for w.state != ShuttingDown {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.iterate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// iterate runs exactly one pass of spec.md §4.3's per-iteration algorithm:
// if the ring is empty, either sleep or present an idle frame; otherwise
// drain and dispatch every currently-visible record. The read cursor is
// published (Advance, then NotifyIfDrained) after each record rather than
// once for the whole batch.
func (w *Worker) iterate(ctx context.Context) error {
	rec, offset, ok := w.ring.Pop()
	if !ok {
		if w.runIdle {
			w.PresentFrame(true, false)
			return nil
		}
		return w.ring.ParkForWork(ctx)
	}

	for ok {
		h, cmd, err := gpucmd.Decode(rec)
		if err != nil {
			logger.Logf(logger.Allow, "gpuworker", "dropping unrecognized command: %s", err)
			w.ring.Advance(offset, h.Size)
			w.ring.NotifyIfDrained()
			rec, offset, ok = w.ring.Pop()
			continue
		}
		if h.Type == gpucmd.LoadState {
			// gpucmd.Decode can't know the real VRAM/CLUT split (it has no
			// notion of vram.Width/Height), so it decodes everything as
			// VRAM data; redecode here with the split this package knows.
			cmd = gpucmd.DecodeLoadState(rec[gpucmd.HeaderSize:], vram.Width*vram.Height, vram.CLUTSize)
		}

		w.dispatch(h, cmd)
		w.ring.Advance(offset, h.Size)
		w.ring.NotifyIfDrained()

		if w.state == ShuttingDown {
			return nil
		}

		rec, offset, ok = w.ring.Pop()
	}
	return nil
}

// dispatch routes one decoded command per spec.md §4.3's dispatch table.
func (w *Worker) dispatch(h gpucmd.Header, cmd interface{}) {
	switch c := cmd.(type) {
	case gpucmd.WraparoundCommand:
		// Ring.Pop already skips Wraparound records transparently; this
		// case only exists so Decode's full type switch has a match.

	case gpucmd.AsyncCallCommand:
		fn := w.registry.TakeAsyncCall(c.Token)
		if fn != nil {
			fn()
		}

	case gpucmd.ReconfigureCommand:
		if req, ok := w.registry.TakeReconfigure(c.Token).(*ReconfigureRequest); ok {
			w.handleReconfigure(req)
		}

	case gpucmd.ShutdownCommand:
		w.destroyBackend()
		w.state = ShuttingDown

	default:
		if w.backend == nil {
			logger.Logf(logger.Allow, "gpuworker", "dropping %s command: no active backend", h.Type)
			return
		}
		w.dispatchToBackend(h, cmd)
	}
}

func toVRAMParams(p gpucmd.Params) vram.Params {
	return vram.Params{
		Interlaced:          p.Interlaced(),
		ActiveLineLSB:       p.ActiveLineLSB(),
		SetMaskWhileDrawing: p.SetMaskWhileDrawing(),
		CheckMaskBeforeDraw: p.CheckMaskBeforeDraw(),
	}
}

func toVRAMRect(x, y, width, height int32) vram.Rect {
	return vram.Rect{X: int(x), Y: int(y), Width: int(width), Height: int(height)}
}

func toBackendVertices(vs []gpucmd.Vertex) []gpubackend.Vertex {
	out := make([]gpubackend.Vertex, len(vs))
	for i, v := range vs {
		out[i] = gpubackend.Vertex{X: v.X, Y: v.Y, Color: v.Color, U: v.U, V: v.V}
	}
	return out
}

func polygonArgs(c gpucmd.DrawPolygonCommand) gpubackend.DrawPolygonArgs {
	return gpubackend.DrawPolygonArgs{
		Shaded: c.Shaded, Textured: c.Textured, RawTexture: c.RawTexture, SemiTransparent: c.SemiTransparent,
		ClutX: int(c.ClutX), ClutY: int(c.ClutY),
		TexPageX: int(c.TexPageX), TexPageY: int(c.TexPageY),
		Vertices: toBackendVertices(c.Vertices),
	}
}

// dispatchToBackend forwards every command with a type greater than
// gpucmd.Shutdown to the active backend, per spec.md §4.3's dispatch table
// ("everything else -> forward to the active backend's HandleCommand").
func (w *Worker) dispatchToBackend(h gpucmd.Header, cmd interface{}) {
	b := w.backend
	switch c := cmd.(type) {
	case gpucmd.ReadVRAMCommand:
		// ReadVRAM only makes sense paired with PublishAndSync on the
		// producer side; the result lives in VRAM itself, there is nothing
		// further to stage here beyond touching the backend so ordering
		// with concurrent draws is preserved.
		_ = b.ReadVRAM(toVRAMRect(c.X, c.Y, c.Width, c.Height))

	case gpucmd.FillVRAMCommand:
		b.FillVRAM(toVRAMRect(c.X, c.Y, c.Width, c.Height), c.Color, toVRAMParams(h.Params))

	case gpucmd.UpdateVRAMCommand:
		b.UpdateVRAM(toVRAMRect(c.X, c.Y, c.Width, c.Height), c.Data, toVRAMParams(h.Params))

	case gpucmd.CopyVRAMCommand:
		src := toVRAMRect(c.SrcX, c.SrcY, c.Width, c.Height)
		b.CopyVRAM(src, int(c.DstX), int(c.DstY), toVRAMParams(h.Params))

	case gpucmd.SetDrawingAreaCommand:
		b.DrawingAreaChanged(vram.Rect{
			X: int(c.Left), Y: int(c.Top),
			Width:  int(c.Right - c.Left),
			Height: int(c.Bottom - c.Top),
		})

	case gpucmd.UpdateCLUTCommand:
		b.UpdateCLUT(int(c.X), int(c.Y))

	case gpucmd.EmptyCommand:
		switch c.CmdType {
		case gpucmd.ClearCache:
			b.ClearCache()
		case gpucmd.ClearVRAMCmd:
			b.ClearVRAM()
		case gpucmd.OnBufferSwapped:
			b.OnBufferSwapped()
		}

	case gpucmd.UpdateResolutionScaleCommand:
		b.UpdateResolutionScale(c.Scale)

	case gpucmd.DrawPolygonCommand:
		b.DrawPolygon(polygonArgs(c))

	case gpucmd.DrawPrecisePolygonCommand:
		b.DrawPrecisePolygon(polygonArgs(c.DrawPolygonCommand), c.NativeX, c.NativeY)

	case gpucmd.DrawRectangleCommand:
		b.DrawRectangle(gpubackend.DrawRectangleArgs{
			X: int(c.X), Y: int(c.Y), Width: int(c.Width), Height: int(c.Height),
			Color: c.Color, Textured: c.Textured, SemiTransparent: c.SemiTransparent,
			ClutX: int(c.ClutX), ClutY: int(c.ClutY),
			TexPageX: int(c.TexPageX), TexPageY: int(c.TexPageY),
			U: c.U, V: c.V,
		})

	case gpucmd.DrawLineCommand:
		b.DrawLine(gpubackend.DrawLineArgs{
			Shaded: c.Shaded, SemiTransparent: c.SemiTransparent,
			Vertices: toBackendVertices(c.Vertices),
		})

	case gpucmd.UpdateDisplayCommand:
		field := 0
		if h.Params.ActiveLineLSB() {
			field = 1
		}
		desc := gpubackend.DisplayDescriptor{
			Rect:            toVRAMRect(c.X, c.Y, c.Width, c.Height),
			Depth24:         c.Depth24,
			Interlaced:      h.Params.Interlaced(),
			InterlacedField: field,
		}
		if err := b.UpdateDisplay(desc); err != nil {
			logger.Log(logger.Allow, "gpuworker", err.Error())
		}

	case gpucmd.LoadStateCommand:
		if err := b.LoadState(c.Data, c.CLUT); err != nil {
			logger.Log(logger.Allow, "gpuworker", gpuerrors.Wrap(gpuerrors.SaveStateIOError, err, err.Error()).Error())
		}

	default:
		logger.Logf(logger.Allow, "gpuworker", "no dispatch for decoded type %T", c)
	}
}
