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

//go:build statsview
// +build statsview

// This file is built only when the +statsview build constraint is present:
// it launches the Go runtime dashboard (goroutine count, heap, GC pause —
// the stock set of series github.com/go-echarts/statsview ships with).
// See doc.go for why GPU frame-pacing counters are published separately, by
// ReportFrameStats, rather than through this dashboard.
package gputelemetry

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address is where the dashboard listens once Launch runs.
const Address = "localhost:12600"
const url = "/debug/statsview"

// Launch starts the statsview HTTP server on its own goroutine. Callers
// gate this behind config.Settings.DisplayShowGPUUsage.
func Launch(output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		mgr.Start()
	}()
	fmt.Fprintf(output, "runtime usage dashboard available at %s%s\n", Address, url)
}

// Available reports whether the runtime dashboard can be launched in this
// build.
func Available() bool { return true }
