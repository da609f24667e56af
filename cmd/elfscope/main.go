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

// Command elfscope is the command-line front end to the analysis pipeline
// in github.com/jetsetilly/elfscope/rpc: a static ELF call-graph and
// stack-consumption analyzer, dispatched by verb through modalflag.
package main

import (
	"fmt"
	"os"

	"github.com/jetsetilly/elfscope/logger"
	"github.com/jetsetilly/elfscope/modalflag"
	"github.com/jetsetilly/elfscope/prefs"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.AddSubModes("info", "analyze", "paths", "function", "stack", "stack-summary", "complete")

	res, err := md.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	}
	if res == modalflag.ParseHelp {
		return 0
	}

	p, err := prefs.NewPreferences()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 1
	}
	if err := p.Load(); err != nil {
		logger.Logf("elfscope", "using default preferences: %v", err)
	}

	rest := md.RemainingArgs()

	switch md.Mode() {
	case "info":
		return runInfo(rest, p)
	case "analyze":
		return runAnalyze(rest, p)
	case "paths":
		return runPaths(rest, p)
	case "function", "stack":
		return runFunction(rest, p)
	case "stack-summary":
		return runStackSummary(rest, p)
	case "complete":
		return runComplete(rest, p)
	default:
		fmt.Fprintln(os.Stderr, "elfscope: expects a verb: info, analyze, paths, function, stack, stack-summary, complete") //nolint:errcheck
		return 2
	}
}
