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

// Package modalflag implements the verb dispatch used by the elfscope
// command line tool: "elfscope analyze ...", "elfscope paths ...", etc. A
// Modes value parses the boolean, string and integer flags applicable to the current verb and,
// if sub-modes have been registered, consumes the next positional argument
// as the selected sub-mode.
package modalflag

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseResult is returned by Parse to tell the caller what to do next.
type ParseResult int

const (
	// ParseContinue means parsing completed normally and the caller should
	// proceed with the parsed flags and mode.
	ParseContinue ParseResult = iota

	// ParseHelp means help text has been written to Output and the caller
	// should stop, typically exiting with a success status.
	ParseHelp
)

// Modes parses flags for a single verb and, optionally, selects a sub-mode
// from the remaining positional arguments.
type Modes struct {
	// Output receives help text. It must be set before calling Parse.
	Output io.Writer

	args []string
	fs   *flag.FlagSet

	subModes []string
	mode     string
	path     []string

	remaining []string
}

// NewArgs sets the arguments to be parsed by Parse. It must be called
// before AddBool/AddSubModes/Parse.
func (m *Modes) NewArgs(args []string) {
	m.args = args
}

func (m *Modes) flagSet() *flag.FlagSet {
	if m.fs == nil {
		m.fs = flag.NewFlagSet("", flag.ContinueOnError)
		m.fs.SetOutput(io.Discard)
	}
	return m.fs
}

// AddBool registers a boolean flag and returns a pointer to its value. The
// pointer is valid immediately, set to def, and updated by Parse.
func (m *Modes) AddBool(name string, def bool, usage string) *bool {
	return m.flagSet().Bool(name, def, usage)
}

// AddString registers a string flag and returns a pointer to its value, in
// the same manner as AddBool.
func (m *Modes) AddString(name string, def string, usage string) *string {
	return m.flagSet().String(name, def, usage)
}

// AddInt registers an integer flag and returns a pointer to its value, in
// the same manner as AddBool.
func (m *Modes) AddInt(name string, def int, usage string) *int {
	return m.flagSet().Int(name, def, usage)
}

// AddSubModes registers the names of the sub-modes available after the
// flags for this verb. The first name is the default, reported in help
// text.
func (m *Modes) AddSubModes(modes ...string) {
	m.subModes = append(m.subModes, modes...)
}

// Parse parses the arguments supplied to NewArgs. If a help flag (-h or
// -help) is seen, help text is written to Output and ParseHelp is
// returned. Otherwise flags are applied to the pointers returned by
// AddBool/AddString/AddInt, the leading positional argument is consumed as a sub-mode if it
// names one registered with AddSubModes, and ParseContinue is returned.
func (m *Modes) Parse() (ParseResult, error) {
	fs := m.flagSet()

	err := fs.Parse(m.args)
	if err == flag.ErrHelp {
		m.writeHelp()
		return ParseHelp, nil
	}
	if err != nil {
		return ParseContinue, err
	}

	m.remaining = fs.Args()

	if len(m.subModes) > 0 && len(m.remaining) > 0 {
		candidate := m.remaining[0]
		for _, sm := range m.subModes {
			if sm == candidate {
				m.mode = candidate
				m.path = append(m.path, candidate)
				m.remaining = m.remaining[1:]
				break
			}
		}
	}

	return ParseContinue, nil
}

// Mode returns the sub-mode selected by the last call to Parse, or the
// empty string if none was selected.
func (m *Modes) Mode() string {
	return m.mode
}

// Path returns the sequence of sub-modes selected so far, space separated,
// or the empty string if none were selected.
func (m *Modes) Path() string {
	return strings.Join(m.path, " ")
}

// RemainingArgs returns the positional arguments left over after flag and
// sub-mode parsing.
func (m *Modes) RemainingArgs() []string {
	return m.remaining
}

func (m *Modes) writeHelp() {
	if m.Output == nil {
		return
	}

	buf := &bytes.Buffer{}
	if m.fs != nil {
		m.fs.SetOutput(buf)
		m.fs.PrintDefaults()
		m.fs.SetOutput(io.Discard)
	}
	hasFlags := buf.Len() > 0
	hasSubModes := len(m.subModes) > 0

	if !hasFlags && !hasSubModes {
		fmt.Fprint(m.Output, "No help available\n") //nolint:errcheck
		return
	}

	s := strings.Builder{}
	s.WriteString("Usage:\n")
	if hasFlags {
		s.WriteString(buf.String())
	}
	if hasSubModes {
		if hasFlags {
			s.WriteString("\n")
		}
		s.WriteString(fmt.Sprintf("  available sub-modes: %s\n", strings.Join(m.subModes, ", ")))
		s.WriteString(fmt.Sprintf("    default: %s\n", m.subModes[0]))
	}

	fmt.Fprint(m.Output, s.String()) //nolint:errcheck
}
