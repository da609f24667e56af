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

package errors

// error messages, from most- to least-local. DecodeGap is deliberately
// absent from this list: it is recorded in a function's disassembly
// rather than raised as an error. See logger for how decode-level and
// heuristic-level uncertainty is surfaced instead.
const (
	// elf loading
	NotAnElf        = "elfscope: not an ELF file (%v)"
	TruncatedFile   = "elfscope: truncated ELF file (%v)"
	UnsupportedArch = "elfscope: unsupported architecture (%v)"
	MalformedSymtab = "elfscope: malformed symbol table (%v)"

	// call graph and path/stack queries
	UnknownFunction = "elfscope: unknown function (%v)"

	// catastrophic failure that aborts an analysis run
	AnalysisAborted = "elfscope: analysis aborted: %v"

	// disassembly (logged, not raised, but shared by tooling that reports
	// decode diagnostics back to the user on request)
	DisasmError = "elfscope: disassembly error: %v"

	// external interfaces
	ReportError = "elfscope: error building report: %v"
	RPCError    = "elfscope: rpc error: %v"

	// command line
	CommandError    = "%v"
	ParserError     = "elfscope: argument error: %v"
	ValidationError = "%v"

	// prefs
	Prefs         = "prefs: %v"
	PrefsNoFile   = "prefs: no file (%s)"
	PrefsNotValid = "prefs: not a valid prefs file (%s)"
)
