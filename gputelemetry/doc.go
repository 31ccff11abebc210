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

// Package gputelemetry is what display_show_gpu_usage turns on: a
// structured-log publisher for the GPU worker's frame-pacing counters
// (ReportFrameStats, always built) and, only in builds compiled with the
// statsview build constraint, a local HTTP dashboard of Go runtime
// statistics (Launch/Available, telemetry.go / stub.go) built on
// "github.com/go-echarts/statsview".
//
// These are two independent publication paths, not one. statsview ships
// with a fixed set of series — goroutine count, heap, GC pause — and has no
// supported way to register an arbitrary custom series without forking the
// library, so the frame-pacing counters never reach its dashboard; they are
// logged instead, which is how the rest of this codebase already surfaces
// runtime information it wants recorded but has nowhere dedicated to show.
package gputelemetry
