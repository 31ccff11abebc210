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

// Package gputelemetry publishes the worker's frame-pacing counters and,
// when built with the statsview build tag, a local Go runtime dashboard.
// Unlike the runtime dashboard (goroutine count, heap, GC pause — a fixed
// set of series baked into github.com/go-echarts/statsview with no public
// hook to add arbitrary custom series short of forking the library), the
// frame-pacing counters themselves have no chart surface to report through;
// ReportFrameStats publishes them the way the rest of this codebase
// surfaces runtime information it isn't willing to drop on the floor: the
// structured logger.
package gputelemetry

import (
	"context"
	"time"

	"github.com/scanlinevm/scanline/gpuworker"
	"github.com/scanlinevm/scanline/logger"
)

// StatsSource is the subset of *gpuworker.Worker ReportFrameStats needs,
// kept narrow so this package doesn't otherwise depend on gpuworker's
// internals.
type StatsSource interface {
	Stats() gpuworker.FrameStats
}

// ReportFrameStats polls source once per interval until ctx is canceled,
// logging queued-frame count, consecutive-skip streak, present duration and
// frame number — the counters display_show_gpu_usage asks this package to
// publish (SPEC_FULL.md §2 item 8).
func ReportFrameStats(ctx context.Context, source StatsSource, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := source.Stats()
				logger.Logf(logger.Allow, "gputelemetry",
					"queued=%d consecutiveSkipped=%d lastPresent=%s frame=%d",
					s.QueuedFrames, s.ConsecutiveSkipped, s.LastPresentDuration, s.FrameNumber)
			}
		}
	}()
}
