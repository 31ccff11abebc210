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

//go:build !statsview
// +build !statsview

// Without the statsview build tag, the runtime dashboard was requested but
// this binary wasn't built with +statsview, so Launch is a no-op and
// Available reports false. ReportFrameStats is unaffected — it has no
// statsview dependency and runs regardless of this build tag.
package gputelemetry

import "io"

func Launch(output io.Writer) {
	io.WriteString(output, "runtime dashboard not available in this build (rebuild with -tags statsview)\n")
}

func Available() bool { return false }
