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

package logger

import "io"

// Permission implementations indicate whether the calling environment is
// allowed to create new log entries. Useful for silencing noisy tags
// (e.g. per-pixel draw commands) without threading a bool through every
// call site.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (allow) AllowLogging() bool { return true }

// Allow is a Permission that always allows the log entry.
var Allow Permission = allow{}

// maxCentral bounds the number of entries kept by the central logger. Old
// entries are discarded first.
const maxCentral = 512

var central = newLogger(maxCentral)

// Log adds an entry to the central logger, tagged with a package/subsystem
// name, e.g. logger.Log(logger.Allow, "cmdring", "wraparound slot emitted").
func Log(perm Permission, tag, detail string) {
	if perm == Allow || perm.AllowLogging() {
		central.log(tag, detail)
	}
}

// Logf adds a formatted entry to the central logger.
func Logf(perm Permission, tag, detail string, args ...interface{}) {
	if perm == Allow || perm.AllowLogging() {
		central.logf(tag, detail, args...)
	}
}

// Clear removes every entry from the central logger.
func Clear() {
	central.clear()
}

// Write dumps every entry to output.
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes only the last number of entries to output.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho causes every subsequent log entry to also be written to output
// as it's created. If writeRecent is true, existing entries are flushed to
// output immediately.
func SetEcho(output io.Writer, writeRecent bool) {
	central.setEcho(output, writeRecent)
}

// BorrowLog gives f exclusive access to the slice of log entries for the
// duration of the call. f must not retain the slice.
func BorrowLog(f func([]Entry)) {
	central.borrowLog(f)
}
