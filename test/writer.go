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

// Package test collects the handful of assertion and capture helpers used
// throughout the module's own test suites, in place of a third-party
// assertion library.
package test

import "strings"

// Writer is an io.Writer that accumulates everything written to it so that
// a test can Compare the accumulated content against an expected string.
type Writer struct {
	b strings.Builder
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

// Compare returns true if s equals everything written to w since the last
// Clear.
func (w *Writer) Compare(s string) bool {
	return w.b.String() == s
}

// Clear resets the accumulated content.
func (w *Writer) Clear() {
	w.b.Reset()
}

// String returns the accumulated content.
func (w *Writer) String() string {
	return w.b.String()
}
