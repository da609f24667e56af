// This file is part of ElfScope.
//
// ElfScope is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ElfScope is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ElfScope.  If not, see <https://www.gnu.org/licenses/>.

package logger

import "io"

// central is the package-level log used by central convenience functions.
// Components that want their own Permission gating should build their own
// *Logger with NewLogger instead.
var central = NewLogger(4096)

// Log adds an entry to the central log. It is always allowed; use a
// *Logger directly for permission-gated logging.
func Log(tag string, detail interface{}) {
	central.Log(Allow, tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag string, format string, args ...interface{}) {
	central.Logf(Allow, tag, format, args...)
}

// Write outputs the entire central log to w.
func Write(w io.Writer) {
	central.Write(w)
}

// Tail outputs the last num entries of the central log to w.
func Tail(w io.Writer, num int) {
	central.Tail(w, num)
}

// Clear empties the central log.
func Clear() {
	central.Clear()
}
