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

import (
	"encoding/binary"
	"fmt"
)

// Command is implemented by every concrete command payload. Size reports
// the total aligned record size (header included) that Encode will write;
// Ring.Allocate uses it to reserve the slot before the payload exists.
type Command interface {
	Type() CommandType
	Size() uint32
	Encode(buf []byte, params Params)
}

var le = binary.LittleEndian

func putI32(buf []byte, off int, v int32) { le.PutUint32(buf[off:off+4], uint32(v)) }
func getI32(buf []byte, off int) int32    { return int32(le.Uint32(buf[off : off+4])) }
func putU32(buf []byte, off int, v uint32) { le.PutUint32(buf[off:off+4], v) }
func getU32(buf []byte, off int) uint32    { return le.Uint32(buf[off : off+4]) }
func putU16(buf []byte, off int, v uint16) { le.PutUint16(buf[off:off+2], v) }
func getU16(buf []byte, off int) uint16    { return le.Uint16(buf[off : off+2]) }

// ---- ReadVRAM ---------------------------------------------------------

// ReadVRAMCommand asks the backend to stage a rectangle of VRAM for readback
// (spec.md §4.1, "fence-style synchronous reads via PublishAndSync").
type ReadVRAMCommand struct {
	X, Y, Width, Height int32
}

func (c ReadVRAMCommand) Type() CommandType { return ReadVRAM }
func (c ReadVRAMCommand) Size() uint32      { return AlignSize(HeaderSize + 16) }

func (c ReadVRAMCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: ReadVRAM, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
	putI32(b, 8, c.Width)
	putI32(b, 12, c.Height)
}

func DecodeReadVRAM(payload []byte) ReadVRAMCommand {
	return ReadVRAMCommand{
		X: getI32(payload, 0), Y: getI32(payload, 4),
		Width: getI32(payload, 8), Height: getI32(payload, 12),
	}
}

// ---- FillVRAM ----------------------------------------------------------

type FillVRAMCommand struct {
	X, Y, Width, Height int32
	Color               uint16
}

func (c FillVRAMCommand) Type() CommandType { return FillVRAM }
func (c FillVRAMCommand) Size() uint32      { return AlignSize(HeaderSize + 18) }

func (c FillVRAMCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: FillVRAM, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
	putI32(b, 8, c.Width)
	putI32(b, 12, c.Height)
	putU16(b, 16, c.Color)
}

func DecodeFillVRAM(payload []byte) FillVRAMCommand {
	return FillVRAMCommand{
		X: getI32(payload, 0), Y: getI32(payload, 4),
		Width: getI32(payload, 8), Height: getI32(payload, 12),
		Color: getU16(payload, 16),
	}
}

// ---- UpdateVRAM ----------------------------------------------------------

// UpdateVRAMCommand carries a row-major block of pixels to blit into VRAM.
// Data's length must equal Width*Height; the record trails the fixed header
// fields with Data verbatim, little-endian, rounded up to a 4-byte boundary.
type UpdateVRAMCommand struct {
	X, Y, Width, Height int32
	Data                []uint16
}

func (c UpdateVRAMCommand) Type() CommandType { return UpdateVRAM }
func (c UpdateVRAMCommand) Size() uint32 {
	return AlignSize(HeaderSize + 16 + uint32(len(c.Data))*2)
}

func (c UpdateVRAMCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: UpdateVRAM, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
	putI32(b, 8, c.Width)
	putI32(b, 12, c.Height)
	for i, p := range c.Data {
		putU16(b, 16+i*2, p)
	}
}

func DecodeUpdateVRAM(payload []byte) UpdateVRAMCommand {
	c := UpdateVRAMCommand{
		X: getI32(payload, 0), Y: getI32(payload, 4),
		Width: getI32(payload, 8), Height: getI32(payload, 12),
	}
	n := int(c.Width) * int(c.Height)
	c.Data = make([]uint16, n)
	for i := range c.Data {
		c.Data[i] = getU16(payload, 16+i*2)
	}
	return c
}

// ---- CopyVRAM ------------------------------------------------------------

type CopyVRAMCommand struct {
	SrcX, SrcY, DstX, DstY, Width, Height int32
}

func (c CopyVRAMCommand) Type() CommandType { return CopyVRAM }
func (c CopyVRAMCommand) Size() uint32      { return AlignSize(HeaderSize + 24) }

func (c CopyVRAMCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: CopyVRAM, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.SrcX)
	putI32(b, 4, c.SrcY)
	putI32(b, 8, c.DstX)
	putI32(b, 12, c.DstY)
	putI32(b, 16, c.Width)
	putI32(b, 20, c.Height)
}

func DecodeCopyVRAM(payload []byte) CopyVRAMCommand {
	return CopyVRAMCommand{
		SrcX: getI32(payload, 0), SrcY: getI32(payload, 4),
		DstX: getI32(payload, 8), DstY: getI32(payload, 12),
		Width: getI32(payload, 16), Height: getI32(payload, 20),
	}
}

// ---- SetDrawingArea ------------------------------------------------------

type SetDrawingAreaCommand struct {
	Left, Top, Right, Bottom int32
}

func (c SetDrawingAreaCommand) Type() CommandType { return SetDrawingArea }
func (c SetDrawingAreaCommand) Size() uint32      { return AlignSize(HeaderSize + 16) }

func (c SetDrawingAreaCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: SetDrawingArea, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.Left)
	putI32(b, 4, c.Top)
	putI32(b, 8, c.Right)
	putI32(b, 12, c.Bottom)
}

func DecodeSetDrawingArea(payload []byte) SetDrawingAreaCommand {
	return SetDrawingAreaCommand{
		Left: getI32(payload, 0), Top: getI32(payload, 4),
		Right: getI32(payload, 8), Bottom: getI32(payload, 12),
	}
}

// ---- UpdateCLUT -----------------------------------------------------------

type UpdateCLUTCommand struct {
	X, Y int32
}

func (c UpdateCLUTCommand) Type() CommandType { return UpdateCLUTCmd }
func (c UpdateCLUTCommand) Size() uint32      { return AlignSize(HeaderSize + 8) }

func (c UpdateCLUTCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: UpdateCLUTCmd, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
}

func DecodeUpdateCLUT(payload []byte) UpdateCLUTCommand {
	return UpdateCLUTCommand{X: getI32(payload, 0), Y: getI32(payload, 4)}
}

// ---- no-payload control/backend commands ---------------------------------

// EmptyCommand covers ClearCache, ClearVRAM and OnBufferSwapped: header only,
// nothing follows it.
type EmptyCommand struct {
	CmdType CommandType
}

func (c EmptyCommand) Type() CommandType { return c.CmdType }
func (c EmptyCommand) Size() uint32      { return AlignSize(HeaderSize) }

func (c EmptyCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: c.CmdType, Params: params, Size: c.Size()})
}

// ---- UpdateResolutionScale -------------------------------------------------

type UpdateResolutionScaleCommand struct {
	Scale uint32
}

func (c UpdateResolutionScaleCommand) Type() CommandType { return UpdateResolutionScale }
func (c UpdateResolutionScaleCommand) Size() uint32      { return AlignSize(HeaderSize + 4) }

func (c UpdateResolutionScaleCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: UpdateResolutionScale, Params: params, Size: c.Size()})
	putU32(buf[HeaderSize:], 0, c.Scale)
}

func DecodeUpdateResolutionScale(payload []byte) UpdateResolutionScaleCommand {
	return UpdateResolutionScaleCommand{Scale: getU32(payload, 0)}
}

// ---- draw primitives --------------------------------------------------------

// Vertex is one shaded/textured point of a polygon or line draw.
type Vertex struct {
	X, Y  int32
	Color uint32 // 0x00BBGGRR
	U, V  uint8
}

const vertexSize = 4 + 4 + 4 + 1 + 1 // 14, but we pad to 16 for alignment
const vertexStride = 16

func putVertex(b []byte, off int, v Vertex) {
	putI32(b, off, v.X)
	putI32(b, off+4, v.Y)
	putU32(b, off+8, v.Color)
	b[off+12] = v.U
	b[off+13] = v.V
}

func getVertex(b []byte, off int) Vertex {
	return Vertex{
		X: getI32(b, off), Y: getI32(b, off+4),
		Color: getU32(b, off+8),
		U:     b[off+12], V: b[off+13],
	}
}

// DrawPolygonCommand draws a triangle or quad, matching
// GPUBackendDrawPolygonCommand's variable vertex count (3 or 4).
type DrawPolygonCommand struct {
	Shaded, Textured, RawTexture, SemiTransparent bool
	ClutX, ClutY                                  uint16
	TexPageX, TexPageY                            uint16
	Vertices                                      []Vertex // len 3 or 4
}

func (c DrawPolygonCommand) flags() uint16 {
	var f uint16
	if c.Shaded {
		f |= 1
	}
	if c.Textured {
		f |= 2
	}
	if c.RawTexture {
		f |= 4
	}
	if c.SemiTransparent {
		f |= 8
	}
	return f
}

func (c DrawPolygonCommand) Type() CommandType { return DrawPolygon }
func (c DrawPolygonCommand) Size() uint32 {
	return AlignSize(HeaderSize + 8 + 2 + uint32(len(c.Vertices))*vertexStride)
}

func (c DrawPolygonCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: DrawPolygon, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putU16(b, 0, c.ClutX)
	putU16(b, 2, c.ClutY)
	putU16(b, 4, c.TexPageX)
	putU16(b, 6, c.TexPageY)
	putU16(b, 8, c.flags())
	b[10] = byte(len(c.Vertices))
	for i, v := range c.Vertices {
		putVertex(b, 12+i*vertexStride, v)
	}
}

func DecodeDrawPolygon(payload []byte) DrawPolygonCommand {
	flags := getU16(payload, 8)
	n := int(payload[10])
	c := DrawPolygonCommand{
		ClutX: getU16(payload, 0), ClutY: getU16(payload, 2),
		TexPageX: getU16(payload, 4), TexPageY: getU16(payload, 6),
		Shaded: flags&1 != 0, Textured: flags&2 != 0,
		RawTexture: flags&4 != 0, SemiTransparent: flags&8 != 0,
		Vertices: make([]Vertex, n),
	}
	for i := range c.Vertices {
		c.Vertices[i] = getVertex(payload, 12+i*vertexStride)
	}
	return c
}

// DrawPrecisePolygonCommand is DrawPolygonCommand's subpixel-accurate sibling
// (GPUBackendDrawPrecisePolygonCommand): it additionally carries a
// fixed-point (8.8) native position per vertex. Neither backend in this
// module reads the native positions; both draw it exactly like
// DrawPolygonCommand.
type DrawPrecisePolygonCommand struct {
	DrawPolygonCommand
	NativeX, NativeY []int32 // 8.8 fixed point, parallel to Vertices
}

func (c DrawPrecisePolygonCommand) Type() CommandType { return DrawPrecisePolygon }
func (c DrawPrecisePolygonCommand) Size() uint32 {
	return AlignSize(c.DrawPolygonCommand.Size() + uint32(len(c.NativeX))*8)
}

func (c DrawPrecisePolygonCommand) Encode(buf []byte, params Params) {
	base := c.DrawPolygonCommand.Size()
	c.DrawPolygonCommand.Encode(buf[:base], params)
	PutHeader(buf, Header{Type: DrawPrecisePolygon, Params: params, Size: c.Size()})
	b := buf[base:]
	for i := range c.NativeX {
		putI32(b, i*8, c.NativeX[i])
		putI32(b, i*8+4, c.NativeY[i])
	}
}

// DecodeDrawPrecisePolygon decodes a DrawPrecisePolygonCommand from payload
// (the record with its header already stripped). polyPayloadLen is the
// length of the embedded DrawPolygonCommand's own payload, i.e.
// DrawPolygonCommand.Size()-HeaderSize, computed by the caller after a first
// pass with DecodeDrawPolygon.
func DecodeDrawPrecisePolygon(payload []byte, polyPayloadLen uint32) DrawPrecisePolygonCommand {
	poly := DecodeDrawPolygon(payload[:polyPayloadLen])
	b := payload[polyPayloadLen:]
	c := DrawPrecisePolygonCommand{
		DrawPolygonCommand: poly,
		NativeX:            make([]int32, len(poly.Vertices)),
		NativeY:            make([]int32, len(poly.Vertices)),
	}
	for i := range c.NativeX {
		c.NativeX[i] = getI32(b, i*8)
		c.NativeY[i] = getI32(b, i*8+4)
	}
	return c
}

// DrawRectangleCommand draws an axis-aligned, optionally textured sprite.
type DrawRectangleCommand struct {
	X, Y, Width, Height int32
	Color               uint32
	Textured            bool
	SemiTransparent     bool
	ClutX, ClutY        uint16
	TexPageX, TexPageY  uint16
	U, V                uint8
}

func (c DrawRectangleCommand) Type() CommandType { return DrawRectangle }
func (c DrawRectangleCommand) Size() uint32      { return AlignSize(HeaderSize + 32) }

func (c DrawRectangleCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: DrawRectangle, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
	putI32(b, 8, c.Width)
	putI32(b, 12, c.Height)
	putU32(b, 16, c.Color)
	putU16(b, 20, c.ClutX)
	putU16(b, 22, c.ClutY)
	putU16(b, 24, c.TexPageX)
	putU16(b, 26, c.TexPageY)
	b[28] = c.U
	b[29] = c.V
	var flags byte
	if c.Textured {
		flags |= 1
	}
	if c.SemiTransparent {
		flags |= 2
	}
	b[30] = flags
}

func DecodeDrawRectangle(payload []byte) DrawRectangleCommand {
	flags := payload[30]
	return DrawRectangleCommand{
		X: getI32(payload, 0), Y: getI32(payload, 4),
		Width: getI32(payload, 8), Height: getI32(payload, 12),
		Color:    getU32(payload, 16),
		ClutX:    getU16(payload, 20), ClutY: getU16(payload, 22),
		TexPageX: getU16(payload, 24), TexPageY: getU16(payload, 26),
		U: payload[28], V: payload[29],
		Textured: flags&1 != 0, SemiTransparent: flags&2 != 0,
	}
}

// DrawLineCommand draws a (possibly shaded, possibly polyline) line strip.
type DrawLineCommand struct {
	Shaded, SemiTransparent bool
	Vertices                []Vertex
}

func (c DrawLineCommand) Type() CommandType { return DrawLine }
func (c DrawLineCommand) Size() uint32 {
	return AlignSize(HeaderSize + 4 + uint32(len(c.Vertices))*vertexStride)
}

func (c DrawLineCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: DrawLine, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	var flags uint16
	if c.Shaded {
		flags |= 1
	}
	if c.SemiTransparent {
		flags |= 2
	}
	putU16(b, 0, flags)
	putU16(b, 2, uint16(len(c.Vertices)))
	for i, v := range c.Vertices {
		putVertex(b, 4+i*vertexStride, v)
	}
}

func DecodeDrawLine(payload []byte) DrawLineCommand {
	flags := getU16(payload, 0)
	n := int(getU16(payload, 2))
	c := DrawLineCommand{
		Shaded: flags&1 != 0, SemiTransparent: flags&2 != 0,
		Vertices: make([]Vertex, n),
	}
	for i := range c.Vertices {
		c.Vertices[i] = getVertex(payload, 4+i*vertexStride)
	}
	return c
}

// ---- display / state --------------------------------------------------------

// UpdateDisplayCommand tells the backend which VRAM region is the current
// visible frame, matching GPUBackendUpdateDisplayCommand.
type UpdateDisplayCommand struct {
	X, Y, Width, Height int32
	Depth24             bool
}

func (c UpdateDisplayCommand) Type() CommandType { return UpdateDisplay }
func (c UpdateDisplayCommand) Size() uint32      { return AlignSize(HeaderSize + 17) }

func (c UpdateDisplayCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: UpdateDisplay, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	putI32(b, 0, c.X)
	putI32(b, 4, c.Y)
	putI32(b, 8, c.Width)
	putI32(b, 12, c.Height)
	if c.Depth24 {
		b[16] = 1
	}
}

func DecodeUpdateDisplay(payload []byte) UpdateDisplayCommand {
	return UpdateDisplayCommand{
		X: getI32(payload, 0), Y: getI32(payload, 4),
		Width: getI32(payload, 8), Height: getI32(payload, 12),
		Depth24: payload[16] != 0,
	}
}

// LoadStateCommand replaces the full VRAM contents (and CLUT) in one shot,
// used when a save state is restored. Data is 1024*512 pixels followed by
// 256 CLUT entries, row-major.
type LoadStateCommand struct {
	Data []uint16 // len vram.Width*vram.Height
	CLUT []uint16 // len vram.CLUTSize
}

func (c LoadStateCommand) Type() CommandType { return LoadState }
func (c LoadStateCommand) Size() uint32 {
	return AlignSize(HeaderSize + uint32(len(c.Data)+len(c.CLUT))*2)
}

func (c LoadStateCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: LoadState, Params: params, Size: c.Size()})
	b := buf[HeaderSize:]
	for i, p := range c.Data {
		putU16(b, i*2, p)
	}
	off := len(c.Data) * 2
	for i, p := range c.CLUT {
		putU16(b, off+i*2, p)
	}
}

func DecodeLoadState(payload []byte, vramLen, clutLen int) LoadStateCommand {
	c := LoadStateCommand{Data: make([]uint16, vramLen), CLUT: make([]uint16, clutLen)}
	for i := range c.Data {
		c.Data[i] = getU16(payload, i*2)
	}
	off := vramLen * 2
	for i := range c.CLUT {
		c.CLUT[i] = getU16(payload, off+i*2)
	}
	return c
}

// ---- worker-control commands --------------------------------------------------

// WraparoundCommand marks unused trailing space at the end of the ring's
// backing array; the reader must skip to offset 0 on seeing one rather than
// interpreting Size as a real payload length (spec.md §4.1, wraparound
// handling).
type WraparoundCommand struct{}

func (c WraparoundCommand) Type() CommandType { return Wraparound }
func (c WraparoundCommand) Size() uint32      { return AlignSize(HeaderSize) }
func (c WraparoundCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: Wraparound, Params: params, Size: c.Size()})
}

// AsyncCallCommand carries a token identifying a pinned closure registered
// with a Registry (see cmdring), rather than the closure itself: storing a
// Go func value's bits directly in ring memory would make it invisible to
// the garbage collector, unlike the placement-new boxed lambda this command
// is modeled on.
type AsyncCallCommand struct {
	Token uint64
}

func (c AsyncCallCommand) Type() CommandType { return AsyncCall }
func (c AsyncCallCommand) Size() uint32      { return AlignSize(HeaderSize + 8) }

func (c AsyncCallCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: AsyncCall, Params: params, Size: c.Size()})
	binary.LittleEndian.PutUint64(buf[HeaderSize:HeaderSize+8], c.Token)
}

func DecodeAsyncCall(payload []byte) AsyncCallCommand {
	return AsyncCallCommand{Token: binary.LittleEndian.Uint64(payload[0:8])}
}

// ShutdownCommand asks the worker loop to exit after draining the ring.
type ShutdownCommand struct{}

func (c ShutdownCommand) Type() CommandType { return Shutdown }
func (c ShutdownCommand) Size() uint32      { return AlignSize(HeaderSize) }
func (c ShutdownCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: Shutdown, Params: params, Size: c.Size()})
}

// ReconfigureCommand asks the worker to tear down and/or recreate its
// backend and device per spec.md §4.3.1. The settings payload itself is
// carried out-of-band (via ReconfigureArgs, resolved through a Registry
// token exactly like AsyncCall) since it is a rich Go value, not a flat
// byte record.
type ReconfigureCommand struct {
	Token uint64
}

func (c ReconfigureCommand) Type() CommandType { return Reconfigure }
func (c ReconfigureCommand) Size() uint32      { return AlignSize(HeaderSize + 8) }

func (c ReconfigureCommand) Encode(buf []byte, params Params) {
	PutHeader(buf, Header{Type: Reconfigure, Params: params, Size: c.Size()})
	binary.LittleEndian.PutUint64(buf[HeaderSize:HeaderSize+8], c.Token)
}

func DecodeReconfigure(payload []byte) ReconfigureCommand {
	return ReconfigureCommand{Token: binary.LittleEndian.Uint64(payload[0:8])}
}

// ErrUnknownCommandType is returned by Decode for a header whose Type isn't
// one of the values defined in this package.
type ErrUnknownCommandType struct {
	Type CommandType
}

func (e ErrUnknownCommandType) Error() string {
	return fmt.Sprintf("gpucmd: unknown command type %d", e.Type)
}
