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

// Package gpuworker owns the GPU thread's main loop: draining the command
// ring, dispatching to the active backend, reconfiguring backends and
// devices, and pacing presentation (spec.md §4.3).
package gpuworker

// State is one of the four states the worker's lifecycle moves through.
// Transitions happen in handleReconfigure, in device-loss recovery
// (handleDeviceLost), and when a Shutdown command is dispatched.
type State int

const (
	// Idle: no backend, nothing to present. Initial state.
	Idle State = iota
	// DeviceOnly: a window/device pair exists (for the fullscreen UI) but
	// no backend is constructed. Since this module's Backend abstraction
	// folds device lifetime into Backend.Initialize/Destroy (spec.md §4.6),
	// DeviceOnly here is a bookkeeping state only — it does not hold a real
	// separate device handle the way a from-scratch implementation would;
	// see DESIGN.md.
	DeviceOnly
	// Running: backend constructed and initialized, actively draining draws.
	Running
	// ShuttingDown: a Shutdown command has been processed or an
	// unrecoverable error occurred; the loop is exiting.
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case DeviceOnly:
		return "DeviceOnly"
	case Running:
		return "Running"
	case ShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}
