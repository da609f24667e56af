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

// Package rpc wraps the core analysis pipeline (Loader, Call Analyzer,
// Path Finder, Stack Analyzer) behind one call per CLI verb, returning a
// stable envelope shape. This is the same entry point the "complete"
// composite verb and the command-line front end (cmd/elfscope) both call
// through.
package rpc

import (
	"github.com/jetsetilly/elfscope/callgraph"
	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/elf"
	"github.com/jetsetilly/elfscope/prefs"
	"github.com/jetsetilly/elfscope/stackanalysis"
)

// Pipeline holds the loaded binary and every derived structure a query
// needs, built once per analyzed file and reused across verb calls. The
// pipeline stages are strictly sequential; once built, the graph
// and analysis are immutable and safe for concurrent queries.
type Pipeline struct {
	Binary   *elf.Binary
	Disasm   *disasm.Disassembler
	Graph    *callgraph.CallGraph
	Analysis *stackanalysis.Analysis
}

// tailCallPolicyFromPrefs maps the string-valued preference onto the
// stackanalysis package's typed constant.
func tailCallPolicyFromPrefs(v string) stackanalysis.TailCallPolicy {
	if v == prefs.TailCallAddFrame {
		return stackanalysis.TailCallAddFrame
	}
	return stackanalysis.TailCallReuseFrame
}

// Load runs the Loader -> Disassembler -> Call Analyzer -> Stack Analyzer
// pipeline over the ELF file at path, using p's heuristic configuration.
func Load(path string, p *prefs.Preferences) (*Pipeline, error) {
	b, err := elf.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	d, err := disasm.New(b)
	if err != nil {
		return nil, err
	}

	g := callgraph.Build(b, d)

	cfg := stackanalysis.Config{
		RecursionDepth: p.RecursionDepth.Get(),
		ExtStackBudget: int64(p.ExtStackBudget.Get()),
		TailCallPolicy: tailCallPolicyFromPrefs(p.TailCallPolicy.String()),
	}
	a := stackanalysis.Analyze(g, d, b.Architecture.String(), cfg)

	return &Pipeline{Binary: b, Disasm: d, Graph: g, Analysis: a}, nil
}
