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

package gpucmd

// Decode reads the header at the front of rec and returns it alongside the
// decoded payload as a concrete value (one of the *Command types in this
// package). rec must be exactly Header.Size bytes, as produced by Ring's
// consumer-side accessor.
func Decode(rec []byte) (Header, interface{}, error) {
	h := GetHeader(rec)
	payload := rec[HeaderSize:]

	switch h.Type {
	case Wraparound:
		return h, WraparoundCommand{}, nil
	case AsyncCall:
		return h, DecodeAsyncCall(payload), nil
	case Reconfigure:
		return h, DecodeReconfigure(payload), nil
	case Shutdown:
		return h, ShutdownCommand{}, nil

	case ReadVRAM:
		return h, DecodeReadVRAM(payload), nil
	case FillVRAM:
		return h, DecodeFillVRAM(payload), nil
	case UpdateVRAM:
		return h, DecodeUpdateVRAM(payload), nil
	case CopyVRAM:
		return h, DecodeCopyVRAM(payload), nil

	case SetDrawingArea:
		return h, DecodeSetDrawingArea(payload), nil
	case UpdateCLUTCmd:
		return h, DecodeUpdateCLUT(payload), nil
	case ClearCache, ClearVRAMCmd, OnBufferSwapped:
		return h, EmptyCommand{CmdType: h.Type}, nil
	case UpdateResolutionScale:
		return h, DecodeUpdateResolutionScale(payload), nil

	case DrawPolygon:
		return h, DecodeDrawPolygon(payload), nil
	case DrawPrecisePolygon:
		poly := DecodeDrawPolygon(payload)
		polyPayloadLen := poly.Size() - HeaderSize
		return h, DecodeDrawPrecisePolygon(payload, polyPayloadLen), nil
	case DrawRectangle:
		return h, DecodeDrawRectangle(payload), nil
	case DrawLine:
		return h, DecodeDrawLine(payload), nil

	case UpdateDisplay:
		return h, DecodeUpdateDisplay(payload), nil
	case LoadState:
		n := (len(payload)) / 2
		// Caller (gpuworker) knows the real VRAM/CLUT split; this fallback
		// treats everything as VRAM data when decoded generically.
		return h, DecodeLoadState(payload, n, 0), nil

	default:
		return h, nil, ErrUnknownCommandType{Type: h.Type}
	}
}
