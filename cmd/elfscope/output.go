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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jetsetilly/elfscope/rpc"
)

// writeEnvelope marshals e as indented JSON to outputPath, or to stdout if
// outputPath is empty, and returns the process exit code e implies.
func writeEnvelope(e rpc.Envelope, outputPath string) int {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "elfscope: error marshaling report: %v\n", err)
		return 1
	}
	data = append(data, '\n')

	if outputPath == "" {
		os.Stdout.Write(data) //nolint:errcheck
		return e.ExitCode()
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "elfscope: error writing %s: %v\n", outputPath, err)
		return 1
	}
	return e.ExitCode()
}
