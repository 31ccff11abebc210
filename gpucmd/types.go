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

// Package gpucmd defines the tagged family of variable-sized command
// records carried by the command ring between the CPU thread and the GPU
// thread (spec.md §4.1). Every record begins with an 8-byte Header; readers
// dispatch on Header.Type and decode the remaining bytes explicitly with
// encoding/binary rather than relying on any language-specific struct
// layout, per spec.md §9 ("Use explicit pack/offset; never rely on
// language-specific layout").
package gpucmd

// CommandType is the tag at the front of every command record. Values
// greater than Shutdown are forwarded to the active backend (gpuworker's
// dispatchToBackend);
// values at or below Shutdown are handled directly by the worker loop
// (spec.md §3, "Command slot").
type CommandType uint8

const (
	// Worker-control commands (type <= Shutdown).
	Wraparound CommandType = iota
	AsyncCall
	Reconfigure
	Shutdown

	// Backend commands (type > Shutdown) — VRAM I/O.
	ReadVRAM
	FillVRAM
	UpdateVRAM
	CopyVRAM

	// Backend commands — state.
	SetDrawingArea
	UpdateCLUTCmd
	ClearCache
	ClearVRAMCmd
	OnBufferSwapped
	UpdateResolutionScale

	// Backend commands — draws.
	DrawPolygon
	DrawPrecisePolygon
	DrawRectangle
	DrawLine

	// Backend commands — display.
	UpdateDisplay
	LoadState
)

func (t CommandType) String() string {
	switch t {
	case Wraparound:
		return "Wraparound"
	case AsyncCall:
		return "AsyncCall"
	case Reconfigure:
		return "Reconfigure"
	case Shutdown:
		return "Shutdown"
	case ReadVRAM:
		return "ReadVRAM"
	case FillVRAM:
		return "FillVRAM"
	case UpdateVRAM:
		return "UpdateVRAM"
	case CopyVRAM:
		return "CopyVRAM"
	case SetDrawingArea:
		return "SetDrawingArea"
	case UpdateCLUTCmd:
		return "UpdateCLUT"
	case ClearCache:
		return "ClearCache"
	case ClearVRAMCmd:
		return "ClearVRAM"
	case OnBufferSwapped:
		return "OnBufferSwapped"
	case UpdateResolutionScale:
		return "UpdateResolutionScale"
	case DrawPolygon:
		return "DrawPolygon"
	case DrawPrecisePolygon:
		return "DrawPrecisePolygon"
	case DrawRectangle:
		return "DrawRectangle"
	case DrawLine:
		return "DrawLine"
	case UpdateDisplay:
		return "UpdateDisplay"
	case LoadState:
		return "LoadState"
	default:
		return "Unknown"
	}
}

// IsWorkerControl reports whether t is handled by the worker loop itself
// rather than forwarded to the backend.
func (t CommandType) IsWorkerControl() bool {
	return t <= Shutdown
}

// Params is the shared per-command parameter bundle described in spec.md
// §4.4: { interlaced, active_line_lsb, set_mask_while_drawing,
// check_mask_before_draw }, packed as bit flags into the header's 16-bit
// params field.
type Params uint16

const (
	ParamInterlaced Params = 1 << iota
	ParamActiveLineLSB
	ParamSetMaskWhileDrawing
	ParamCheckMaskBeforeDraw
)

func MakeParams(interlaced, activeLineLSB, setMask, checkMask bool) Params {
	var p Params
	if interlaced {
		p |= ParamInterlaced
	}
	if activeLineLSB {
		p |= ParamActiveLineLSB
	}
	if setMask {
		p |= ParamSetMaskWhileDrawing
	}
	if checkMask {
		p |= ParamCheckMaskBeforeDraw
	}
	return p
}

func (p Params) Interlaced() bool          { return p&ParamInterlaced != 0 }
func (p Params) ActiveLineLSB() bool       { return p&ParamActiveLineLSB != 0 }
func (p Params) SetMaskWhileDrawing() bool { return p&ParamSetMaskWhileDrawing != 0 }
func (p Params) CheckMaskBeforeDraw() bool { return p&ParamCheckMaskBeforeDraw != 0 }
