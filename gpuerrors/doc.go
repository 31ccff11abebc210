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

// Package gpuerrors is a helper package for the error type used throughout
// the GPU worker subsystem. It defines the GPUError type, an implementation
// of the error interface that wraps other errors while normalising the
// formatted message, and that deduplicates repeated wraps of the same kind
// the way a naively bubbled-up error would not.
//
// For example, a device-creation failure discovered deep inside a RenderAPI
// implementation can be wrapped once with gpuerrors.DeviceCreateFailed and
// returned all the way up through Reconfigure without turning into
// "failed to create device: failed to create device: out of memory".
package gpuerrors
