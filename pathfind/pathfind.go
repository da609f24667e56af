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

// Package pathfind enumerates simple call paths between functions in a
// built call graph, under caller-supplied depth and cycle constraints.
package pathfind

import (
	"sort"

	"github.com/jetsetilly/elfscope/callgraph"
	"github.com/jetsetilly/elfscope/errors"
)

// Options controls path enumeration.
type Options struct {
	// Source restricts enumeration to paths starting at this function. If
	// empty, every root (a function with no internal caller) is tried.
	Source string

	// MaxDepth bounds the number of edges in an enumerated path.
	MaxDepth int

	// IncludeCycles allows a node to be revisited at most once, capturing
	// "one loop around" without infinite enumeration. When false, paths
	// must be simple (no repeated node).
	IncludeCycles bool

	// IncludeUnresolved allows paths to traverse callgraph.UnresolvedNode.
	// Suppressed by default.
	IncludeUnresolved bool
}

// Path is one enumerated path from a root (or Options.Source) to the
// query's target function.
type Path struct {
	Nodes []string
	Edges []callgraph.CallEdge
}

// Len returns the number of edges in the path.
func (p Path) Len() int { return len(p.Edges) }

// Statistics summarizes a PathSet for the path report.
type Statistics struct {
	TotalPaths   int
	MaxDepth     int
	MinDepth     int
	AverageDepth float64
}

// PathSet is the result of Find: every enumerated path plus summary
// statistics, sorted by length ascending, then lexicographic by
// node-name tuple.
type PathSet struct {
	Target string
	Source string // empty when Options.Source was empty
	Paths  []Path
	Stats  Statistics
}

// Find enumerates simple paths ending at target under opts. Returns
// errors.UnknownFunction if target is not a node of g.
func Find(g *callgraph.CallGraph, target string, opts Options) (PathSet, error) {
	if _, ok := g.Node(target); !ok {
		return PathSet{}, errors.Errorf(errors.UnknownFunction, target)
	}

	set := PathSet{Target: target, Source: opts.Source}

	if opts.Source != "" {
		if _, ok := g.Node(opts.Source); !ok {
			return PathSet{}, errors.Errorf(errors.UnknownFunction, opts.Source)
		}
		if opts.Source == target {
			set.Paths = []Path{{Nodes: []string{target}}}
			set.Stats = computeStatistics(set.Paths)
			return set, nil
		}
		set.Paths = enumerate(g, opts.Source, target, opts)
	} else {
		for _, root := range roots(g) {
			if root == target {
				set.Paths = append(set.Paths, Path{Nodes: []string{target}})
				continue
			}
			set.Paths = append(set.Paths, enumerate(g, root, target, opts)...)
		}
	}

	sortPaths(set.Paths)
	set.Stats = computeStatistics(set.Paths)
	return set, nil
}

// roots returns every function with no internal caller, in deterministic
// order.
func roots(g *callgraph.CallGraph) []string {
	var out []string
	for _, name := range g.Nodes() {
		n, _ := g.Node(name)
		if n.External {
			continue
		}
		hasInternalCaller := false
		for _, e := range g.Callers(name) {
			if from, ok := g.Node(e.From); ok && !from.External {
				hasInternalCaller = true
				break
			}
		}
		if !hasInternalCaller {
			out = append(out, name)
		}
	}
	return out
}

func enumerate(g *callgraph.CallGraph, source, target string, opts Options) []Path {
	var results []Path

	visitCount := map[string]int{}
	visitedEdge := map[callgraph.CallEdge]bool{}

	var nodes []string
	var edges []callgraph.CallEdge

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 1<<31 - 1
	}

	var dfs func(cur string)
	dfs = func(cur string) {
		nodes = append(nodes, cur)
		defer func() { nodes = nodes[:len(nodes)-1] }()

		if cur == target {
			results = append(results, Path{Nodes: append([]string(nil), nodes...), Edges: append([]callgraph.CallEdge(nil), edges...)})
			return
		}

		if len(edges) >= maxDepth {
			return
		}

		for _, e := range g.Callees(cur) {
			if e.To == callgraph.UnresolvedNode && !opts.IncludeUnresolved {
				continue
			}

			limit := 1
			if opts.IncludeCycles {
				limit = 2
			}
			if visitCount[e.To] >= limit {
				continue
			}
			if opts.IncludeCycles && visitedEdge[e] {
				continue
			}

			visitCount[e.To]++
			if opts.IncludeCycles {
				visitedEdge[e] = true
			}
			edges = append(edges, e)

			dfs(e.To)

			edges = edges[:len(edges)-1]
			if opts.IncludeCycles {
				delete(visitedEdge, e)
			}
			visitCount[e.To]--
		}
	}

	visitCount[source] = 1
	dfs(source)

	return results
}

// Unreached returns every internal function not reachable from entry by
// following call edges, in sorted name order. Used by the `complete` verb's
// default audit query to surface code a static call graph walk from the
// entry point never reaches.
func Unreached(g *callgraph.CallGraph, entry string) []string {
	visited := map[string]bool{}

	var dfs func(cur string)
	dfs = func(cur string) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		for _, e := range g.Callees(cur) {
			dfs(e.To)
		}
	}

	if _, ok := g.Node(entry); ok {
		dfs(entry)
	}

	var out []string
	for _, name := range g.Nodes() {
		n, _ := g.Node(name)
		if n.External || visited[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortPaths(paths []Path) {
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i].Nodes) != len(paths[j].Nodes) {
			return len(paths[i].Nodes) < len(paths[j].Nodes)
		}
		a, b := paths[i].Nodes, paths[j].Nodes
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

func computeStatistics(paths []Path) Statistics {
	s := Statistics{}
	if len(paths) == 0 {
		return s
	}

	s.TotalPaths = len(paths)
	s.MinDepth = paths[0].Len()
	total := 0
	for _, p := range paths {
		l := p.Len()
		if l > s.MaxDepth {
			s.MaxDepth = l
		}
		if l < s.MinDepth {
			s.MinDepth = l
		}
		total += l
	}
	s.AverageDepth = float64(total) / float64(len(paths))
	return s
}
