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

package gpuerrors

// Errno identifies a specific error condition. Grouped by the §7 error
// kinds of the GPU worker design.
const (
	// Device / backend lifecycle
	DeviceCreateFailed Errno = iota
	DeviceRollbackFailed
	BackendInitFailed
	DeviceLost
	DeviceLostFatal
	ExclusiveFullscreenLost
	WindowAcquireFailed
	SwapchainResizeFailed

	// Ring / command handling (internal; should never surface to a user)
	RingStarvation

	// Reconfigure
	ReconfigureFailed

	// I/O that is reported in-band and does not affect the worker
	ScreenshotIOError
	SaveStateIOError
)
