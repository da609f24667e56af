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

package test

import "fmt"

// RingWriter accumulates written bytes, keeping only the most recently
// written limit bytes. Unlike CappedWriter it never refuses new content; it
// forgets the oldest content instead.
type RingWriter struct {
	limit int
	buf   []byte
}

// NewRingWriter is the preferred method of initialisation for the
// RingWriter type.
func NewRingWriter(limit int) (*RingWriter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("ring writer: limit must be greater than zero")
	}
	return &RingWriter{limit: limit, buf: make([]byte, 0, limit)}, nil
}

// Write implements the io.Writer interface.
func (r *RingWriter) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	if excess := len(r.buf) - r.limit; excess > 0 {
		r.buf = r.buf[excess:]
	}
	return len(p), nil
}

// Reset empties the writer.
func (r *RingWriter) Reset() {
	r.buf = r.buf[:0]
}

// String returns the accumulated content.
func (r *RingWriter) String() string {
	return string(r.buf)
}
