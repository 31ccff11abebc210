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

var messages = map[Errno]string{
	DeviceCreateFailed:      "failed to create %s device: %s",
	DeviceRollbackFailed:    "failed to roll back to previous render API (%s): %s",
	BackendInitFailed:       "failed to initialize %s backend: %s",
	DeviceLost:              "GPU device lost, recovering",
	DeviceLostFatal:         "GPU device lost twice within %s, aborting",
	ExclusiveFullscreenLost: "exclusive fullscreen lost",
	WindowAcquireFailed:     "failed to acquire render window: %s",
	SwapchainResizeFailed:   "failed to resize swapchain: %s",
	RingStarvation:          "command ring starved waiting for %d bytes",
	ReconfigureFailed:       "reconfigure failed: %s",
	ScreenshotIOError:       "failed to write screenshot to %s: %s",
	SaveStateIOError:        "failed to read save state VRAM block: %s",
}
