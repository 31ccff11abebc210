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

import "encoding/binary"

// HeaderSize is the fixed, 4-byte-aligned size in bytes of every command
// record's header.
const HeaderSize = 8

// Align is the byte boundary every record's total size is rounded up to,
// so a record never leaves an unaligned offset for the one that follows.
const Align = 4

// Header is the fixed prefix of every command record:
//
//	byte 0:   type   (CommandType, 1 byte)
//	byte 1:   unused (padding)
//	byte 2-3: params (Params, little-endian)
//	byte 4-7: size   (uint32, little-endian; total record size, header included)
type Header struct {
	Type   CommandType
	Params Params
	Size   uint32
}

// PutHeader writes h into buf[0:HeaderSize].
func PutHeader(buf []byte, h Header) {
	buf[0] = byte(h.Type)
	buf[1] = 0
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Params))
	binary.LittleEndian.PutUint32(buf[4:8], h.Size)
}

// GetHeader reads a Header from buf[0:HeaderSize].
func GetHeader(buf []byte) Header {
	return Header{
		Type:   CommandType(buf[0]),
		Params: Params(binary.LittleEndian.Uint16(buf[2:4])),
		Size:   binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// AlignSize rounds n up to the next multiple of Align.
func AlignSize(n uint32) uint32 {
	return (n + Align - 1) &^ (Align - 1)
}
