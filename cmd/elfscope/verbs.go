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
	"fmt"
	"os"

	"github.com/jetsetilly/elfscope/modalflag"
	"github.com/jetsetilly/elfscope/prefs"
	"github.com/jetsetilly/elfscope/rpc"
)

func usageError(verb string) int {
	fmt.Fprintf(os.Stderr, "elfscope %s: missing path to ELF file\n", verb) //nolint:errcheck
	return 2
}

func runInfo(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) == 0 {
		return usageError("info")
	}

	return writeEnvelope(rpc.Info(rest[0], p), *output)
}

func runAnalyze(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) == 0 {
		return usageError("analyze")
	}

	return writeEnvelope(rpc.Analyze(rest[0], p), *output)
}

func runPaths(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")
	source := md.AddString("source", "", "restrict enumeration to paths starting at this function")
	maxDepth := md.AddInt("max-depth", 0, "bound the number of edges in an enumerated path (0: use preference default)")
	includeCycles := md.AddBool("include-cycles", false, "allow a node to be revisited once, capturing a single loop")
	includeUnresolved := md.AddBool("include-unresolved", false, "allow paths through unresolved call targets")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "elfscope paths: expects <elf-file> <target-function>") //nolint:errcheck
		return 2
	}

	opts := rpc.PathsOptions{
		Target:            rest[1],
		Source:            *source,
		MaxDepth:          *maxDepth,
		IncludeCycles:     *includeCycles,
		IncludeUnresolved: *includeUnresolved,
	}
	return writeEnvelope(rpc.Paths(rest[0], p, opts), *output)
}

func runFunction(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "elfscope function: expects <elf-file> <function-name>") //nolint:errcheck
		return 2
	}

	return writeEnvelope(rpc.Function(rest[0], p, rest[1]), *output)
}

func runStackSummary(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")
	top := md.AddInt("top", 10, "number of heaviest functions to include")
	chart := md.AddString("chart", "", "additionally render the stack distribution as an HTML bar chart to this file")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) == 0 {
		return usageError("stack-summary")
	}

	e := rpc.Summary(rest[0], p, *top)
	if *chart != "" {
		if err := renderChart(e, *chart); err != nil {
			fmt.Fprintf(os.Stderr, "elfscope: error rendering chart: %v\n", err) //nolint:errcheck
		}
	}
	return writeEnvelope(e, *output)
}
