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

package rpc

import (
	"time"

	"github.com/jetsetilly/elfscope/errors"
	"github.com/jetsetilly/elfscope/report"
)

// EnvelopeMetadata is the metadata block every RPC response carries,
// regardless of success or failure.
type EnvelopeMetadata struct {
	Tool          string `json:"tool"`
	Version       string `json:"version"`
	ExecutionTime string `json:"execution_time"`
	Timestamp     string `json:"timestamp"`
}

// Envelope is the `{ success, data?, error?, error_type?, metadata }`
// shape every verb returns.
type Envelope struct {
	Success   bool             `json:"success"`
	Data      interface{}      `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
	Metadata  EnvelopeMetadata `json:"metadata"`
}

func envelope(data interface{}, err error, started time.Time) Envelope {
	e := Envelope{
		Metadata: EnvelopeMetadata{
			Tool:          report.ToolName,
			Version:       report.Version,
			ExecutionTime: time.Since(started).String(),
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err != nil {
		e.Success = false
		e.Error = err.Error()
		e.ErrorType = errorType(err)
		return e
	}

	e.Success = true
	e.Data = data
	return e
}

// errorType maps a curated error onto the short, stable token an RPC
// consumer can switch on.
func errorType(err error) string {
	switch {
	case errors.Is(err, errors.UnknownFunction):
		return "unknown_function"
	case errors.Is(err, errors.NotAnElf):
		return "not_an_elf"
	case errors.Is(err, errors.TruncatedFile):
		return "truncated_file"
	case errors.Is(err, errors.MalformedSymtab):
		return "malformed_symtab"
	case errors.Is(err, errors.UnsupportedArch):
		return "unsupported_architecture"
	case errors.Is(err, errors.AnalysisAborted):
		return "analysis_aborted"
	default:
		return "internal"
	}
}

// ExitCode maps an error produced by this package onto a process exit
// code: 0 success, 2 bad input, 3 unsupported architecture, 4 target
// function not found, 1 internal error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return exitCodeForType(errorType(err))
}

// ExitCode maps an already-built Envelope onto the same process exit code
// ExitCode(err) would produce, for callers (cmd/elfscope) that only have
// the Envelope a verb function returned, not the underlying error.
func (e Envelope) ExitCode() int {
	if e.Success {
		return 0
	}
	return exitCodeForType(e.ErrorType)
}

func exitCodeForType(t string) int {
	switch t {
	case "not_an_elf", "truncated_file", "malformed_symtab":
		return 2
	case "unsupported_architecture":
		return 3
	case "unknown_function":
		return 4
	default:
		return 1
	}
}
