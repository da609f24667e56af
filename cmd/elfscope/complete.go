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
	"github.com/jetsetilly/elfscope/report"
	"github.com/jetsetilly/elfscope/rpc"
)

// renderChart writes e's data (expected to be a report.StackSummaryReport)
// as an HTML bar chart to path.
func renderChart(e rpc.Envelope, path string) error {
	s, ok := e.Data.(report.StackSummaryReport)
	if !ok {
		return fmt.Errorf("elfscope: no stack summary data to chart")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return report.RenderStackDistributionChart(s, f)
}

// runComplete answers the `complete` verb: one pipeline build followed by
// an analyze + stack-summary + a default paths query
// between the entry point and every function the call graph never reaches
// from it, for a single-command audit report.
func runComplete(args []string, p *prefs.Preferences) int {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("output", "", "write report to this file instead of stdout")
	top := md.AddInt("top", 10, "number of heaviest functions to include in the stack summary")
	graphviz := md.AddString("graphviz", "", "additionally render the call graph as a graphviz dot file to this file")
	chart := md.AddString("chart", "", "additionally render the stack distribution as an HTML bar chart to this file")
	interactive := md.AddBool("interactive", false, "prompt for a target function name instead of auditing every unreached function")

	if res, err := md.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	} else if res == modalflag.ParseHelp {
		return 0
	}

	rest := md.RemainingArgs()
	if len(rest) == 0 {
		return usageError("complete")
	}
	path := rest[0]

	pl, err := rpc.Load(path, p)
	if err != nil {
		return writeEnvelope(rpc.Complete(path, p, rpc.CompleteOptions{TopK: *top}), *output)
	}

	if *graphviz != "" {
		f, err := os.Create(*graphviz)
		if err == nil {
			pl.Graph.Memviz(f)
			f.Close()
		} else {
			fmt.Fprintf(os.Stderr, "elfscope: error writing %s: %v\n", *graphviz, err) //nolint:errcheck
		}
	}

	entry, _ := pl.Binary.FunctionAt(pl.Binary.EntryPoint)
	opts := rpc.CompleteOptions{TopK: *top}

	if *interactive {
		var candidates []string
		for _, n := range pl.Graph.Nodes() {
			candidates = append(candidates, n)
		}
		if target := promptFunctionName("target function> ", candidates); target != "" {
			opts.Paths = &rpc.PathsOptions{Target: target}
		}
	} else if entry != nil {
		opts.UnreachedFrom = entry.Name
	}

	e := rpc.Complete(path, p, opts)
	if *chart != "" {
		if c, ok := e.Data.(rpc.CompleteReport); ok {
			if err := writeChartFile(c.StackSummary, *chart); err != nil {
				fmt.Fprintf(os.Stderr, "elfscope: error rendering chart: %v\n", err) //nolint:errcheck
			}
		}
	}
	return writeEnvelope(e, *output)
}

func writeChartFile(s report.StackSummaryReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.RenderStackDistributionChart(s, f)
}
