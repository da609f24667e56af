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

// Package logger implements a ring-buffered log that the analysis pipeline
// writes to instead of surfacing every decode-level or heuristic-level
// uncertainty as an error. DecodeGaps, EXT_STACK_BUDGET substitutions and
// recursion-unrolling decisions are all logged here rather than returned
// as errors.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission is consulted before an entry is admitted to the log. Callers
// that have no opinion should pass Allow.
type Permission interface {
	AllowLogging() bool
}

// Allow is a Permission that always allows logging.
var Allow Permission = allow{}

type allow struct{}

func (allow) AllowLogging() bool { return true }

// entry is a single logged line, prior to formatting.
type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s\n", e.tag, e.detail)
}

// Logger is a ring buffer of log entries. The zero value is not usable; use
// NewLogger.
type Logger struct {
	crit    sync.Mutex
	entries []entry
	limit   int
}

// NewLogger is the preferred method of initialisation for the Logger type.
// limit is the maximum number of entries retained; the oldest entries are
// discarded once the limit is reached.
func NewLogger(limit int) *Logger {
	return &Logger{
		entries: make([]entry, 0, limit),
		limit:   limit,
	}
}

// detailString converts detail to a string the way Log() documents:
// errors use Error(), fmt.Stringer implementations use String(), anything
// else is formatted with the %v verb.
func detailString(detail interface{}) string {
	switch detail := detail.(type) {
	case string:
		return detail
	case error:
		return detail.Error()
	case fmt.Stringer:
		return detail.String()
	default:
		return fmt.Sprintf("%v", detail)
	}
}

// Log adds an entry to the log if perm allows it.
func (log *Logger) Log(perm Permission, tag string, detail interface{}) {
	if perm != nil && !perm.AllowLogging() {
		return
	}

	log.crit.Lock()
	defer log.crit.Unlock()

	log.entries = append(log.entries, entry{tag: tag, detail: detailString(detail)})
	if excess := len(log.entries) - log.limit; excess > 0 {
		log.entries = log.entries[excess:]
	}
}

// Logf adds a formatted entry to the log if perm allows it.
func (log *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	log.Log(perm, tag, fmt.Sprintf(format, args...))
}

// Clear empties the log.
func (log *Logger) Clear() {
	log.crit.Lock()
	defer log.crit.Unlock()
	log.entries = log.entries[:0]
}

// Write outputs the entire log to w, one entry per line.
func (log *Logger) Write(w io.Writer) {
	log.crit.Lock()
	defer log.crit.Unlock()

	s := strings.Builder{}
	for _, e := range log.entries {
		s.WriteString(e.String())
	}
	w.Write([]byte(s.String())) //nolint:errcheck
}

// Tail outputs the last num entries to w, one entry per line. Asking for
// more entries than exist, or zero entries, is not an error.
func (log *Logger) Tail(w io.Writer, num int) {
	log.crit.Lock()
	defer log.crit.Unlock()

	if num > len(log.entries) {
		num = len(log.entries)
	}

	s := strings.Builder{}
	for _, e := range log.entries[len(log.entries)-num:] {
		s.WriteString(e.String())
	}
	w.Write([]byte(s.String())) //nolint:errcheck
}
