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

package stackanalysis

import (
	"fmt"
	"sort"

	"github.com/jetsetilly/elfscope/callgraph"
	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/errors"
	"github.com/jetsetilly/elfscope/logger"
)

// TailCallPolicy selects whether a tail call adds the caller's own frame
// to the cumulative total or lets the callee reuse it. ElfScope applies
// one policy uniformly and records the choice in report metadata (the
// report package reads Policy back out).
type TailCallPolicy int

const (
	// TailCallReuseFrame is the default: a tail call does not add the
	// caller's frame on top of the callee's total, since the callee
	// executes in the caller's reused frame.
	TailCallReuseFrame TailCallPolicy = iota
	TailCallAddFrame
)

// Config bundles the heuristic constants the analyzer needs. Zero-value
// Config uses the defaults below.
type Config struct {
	// RecursionDepth is R in the bounded-unrolling heuristic (default 10).
	RecursionDepth int

	// ExtStackBudget is the constant charged for external, imported or
	// unresolved call targets (default 32: one 64-bit word x 4).
	ExtStackBudget int64

	TailCallPolicy TailCallPolicy
}

func (c Config) normalized() Config {
	if c.RecursionDepth <= 0 {
		c.RecursionDepth = 10
	}
	if c.ExtStackBudget <= 0 {
		c.ExtStackBudget = 32
	}
	return c
}

// Analysis is the whole-graph result of Analyze: every internal
// function's local frame and memoized cumulative total, ready to answer
// FunctionStack and Summary queries in O(1) amortized time each.
type Analysis struct {
	graph  *callgraph.CallGraph
	config Config
	arch   string

	frames  map[string]StackFrame
	totals  map[string]int64
	paths   map[string][]string
	members map[int][]string
}

// Analyze computes, for every internal function in g, the local frame
// (from d's decoded instructions) and the memoized cumulative worst-case
// stack total, via a post-order traversal of the SCC-condensed graph.
// Complexity is linear in |V|+|E|.
func Analyze(g *callgraph.CallGraph, d *disasm.Disassembler, arch string, cfg Config) *Analysis {
	cfg = cfg.normalized()

	a := &Analysis{
		graph:   g,
		config:  cfg,
		arch:    arch,
		frames:  make(map[string]StackFrame),
		totals:  make(map[string]int64),
		paths:   make(map[string][]string),
		members: make(map[int][]string),
	}

	sccOf := make(map[string]int)
	for i, comp := range g.SCCs() {
		id := i + 1 // 0 means "not in a non-trivial SCC"
		a.members[id] = comp
		for _, n := range comp {
			sccOf[n] = id
		}
	}

	for _, name := range g.Nodes() {
		n, _ := g.Node(name)
		if n.External {
			continue
		}
		a.frames[name] = localFrame(name, d.Decode(n.Function))
	}

	visiting := make(map[string]bool)
	for _, name := range g.Nodes() {
		n, _ := g.Node(name)
		if n.External {
			continue
		}
		a.resolve(name, sccOf, visiting)
	}

	return a
}

// resolve computes totals[name]/paths[name] via memoized post-order DFS.
// visiting guards against infinite recursion inside an SCC: a node
// currently being resolved that is asked for again (because it is part of
// the same cycle) is treated per the recursion heuristic instead of
// recursing further.
func (a *Analysis) resolve(name string, sccOf map[string]int, visiting map[string]bool) int64 {
	if total, ok := a.totals[name]; ok {
		return total
	}

	n, ok := a.graph.Node(name)
	if !ok || n.External {
		a.totals[name] = a.config.ExtStackBudget
		return a.totals[name]
	}

	if visiting[name] {
		// reached via recursion while already resolving name; the caller
		// (resolveRecursive) handles this by excluding self-referential
		// edges from the "best non-recursive successor" search.
		return 0
	}
	visiting[name] = true
	defer delete(visiting, name)

	frame := a.frames[name]
	local := frame.LocalFrame

	if sccOf[name] != 0 {
		total, path := a.resolveRecursive(name, sccOf, visiting)
		a.totals[name] = total
		a.paths[name] = path
		return total
	}

	best := int64(0)
	var bestPath []string
	for _, e := range a.graph.Callees(name) {
		if e.Kind == callgraph.EdgeTail {
			continue // handled per TailCallPolicy below
		}
		childTotal := a.resolve(e.To, sccOf, visiting)
		if childTotal > best {
			best = childTotal
			bestPath = append([]string{e.To}, a.paths[e.To]...)
		}
	}

	total := local + best

	for _, e := range a.graph.Callees(name) {
		if e.Kind != callgraph.EdgeTail {
			continue
		}
		childTotal := a.resolve(e.To, sccOf, visiting)
		var candidate int64
		if a.config.TailCallPolicy == TailCallReuseFrame {
			candidate = childTotal
		} else {
			candidate = local + childTotal
		}
		if candidate > total {
			total = candidate
			bestPath = append([]string{e.To}, a.paths[e.To]...)
		}
	}

	a.totals[name] = total
	a.paths[name] = append([]string{name}, bestPath...)
	return total
}

// resolveRecursive applies the bounded-unrolling heuristic:
// R * local_stack_frame(F_head) + max_total_stack(best non-recursive
// successor), where F_head is the member of name's SCC with the largest
// local frame (the conservative choice for the repeated unrolled cost) and
// "non-recursive successor" ranges over name's own callees that leave the
// SCC. When name is not itself F_head, entering the cycle at name costs
// one extra frame on top of the unrolled head cost; when name is F_head
// that frame is already accounted for by the R multiplier.
func (a *Analysis) resolveRecursive(name string, sccOf map[string]int, visiting map[string]bool) (int64, []string) {
	comp := sccOf[name]

	var headName string
	var headLocal int64
	for _, member := range a.members[comp] {
		if l := a.frames[member].LocalFrame; headName == "" || l > headLocal {
			headLocal = l
			headName = member
		}
	}

	var best int64
	var bestPath []string
	for _, e := range a.graph.Callees(name) {
		if sccOf[e.To] == comp {
			continue // stays inside the recursive component, excluded
		}
		childTotal := a.resolve(e.To, sccOf, visiting)
		if childTotal > best {
			best = childTotal
			bestPath = append([]string{e.To}, a.paths[e.To]...)
		}
	}

	r := int64(a.config.RecursionDepth)
	total := r*headLocal + best
	if name != headName {
		total += a.frames[name].LocalFrame
	}

	marker := fmt.Sprintf("%s (recursion x %d)", name, a.config.RecursionDepth)
	path := append([]string{name, marker}, bestPath...)

	return total, path
}

// Frame returns the local-frame estimate for name, as computed by
// localFrame during Analyze.
func (a *Analysis) Frame(name string) StackFrame {
	return a.frames[name]
}

// Policy returns the tail-call policy this Analysis was configured with,
// for callers that need to record it in report metadata without holding
// onto the original Config.
func (a *Analysis) Policy() TailCallPolicy {
	return a.config.TailCallPolicy
}

// FunctionStack answers the function_stack(name) query.
func (a *Analysis) FunctionStack(name string) (StackReport, error) {
	n, ok := a.graph.Node(name)
	if !ok || n.External {
		return StackReport{}, errors.Errorf(errors.UnknownFunction, name)
	}

	frame := a.frames[name]
	total := a.totals[name]
	path := a.paths[name]

	return StackReport{
		Function:             name,
		LocalStackFrame:      frame.LocalFrame,
		StackConsumedByCalls: total - frame.LocalFrame,
		MaxTotalStack:        total,
		MaxStackCallPath:     path,
		IsRecursive:          a.graph.IsRecursive(name),
	}, nil
}

// Summary answers the summary(top_k) query.
func (a *Analysis) Summary(topK int) Summary {
	s := Summary{
		Architecture: a.arch,
		Distribution: map[Bucket]int{},
	}

	type row struct {
		name  string
		total int64
	}
	var rows []row

	for _, name := range a.graph.Nodes() {
		n, _ := a.graph.Node(name)
		if n.External {
			continue
		}
		total := a.totals[name]
		s.TotalFunctionsAnalyzed++
		s.Distribution[BucketOf(total)]++
		if total > s.MaxTotalStackConsumption {
			s.MaxTotalStackConsumption = total
			s.FunctionWithMaxTotalStack = name
			s.MaxTotalStackCallPath = a.paths[name]
		}
		rows = append(rows, row{name, total})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].name < rows[j].name
	})

	if topK <= 0 || topK > len(rows) {
		topK = len(rows)
	}

	for _, r := range rows[:topK] {
		ratio := 0.0
		if s.MaxTotalStackConsumption > 0 {
			ratio = float64(r.total) / float64(s.MaxTotalStackConsumption)
		}
		s.HeavyFunctions = append(s.HeavyFunctions, HeavyFunction{
			Function:         r.name,
			MaxTotalStack:    r.total,
			MaxStackCallPath: a.paths[r.name],
			StackRatio:       ratio,
		})
	}

	logger.Logf("stack", "summary computed over %d functions, max=%d (%s)", s.TotalFunctionsAnalyzed, s.MaxTotalStackConsumption, s.FunctionWithMaxTotalStack)

	return s
}
