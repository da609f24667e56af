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

package callgraph

import "sort"

// tarjan holds the working state of Tarjan's strongly-connected-components
// algorithm over the graph's node → out-edge adjacency. No third-party
// graph library is used: the graph is an owned adjacency structure and
// Tarjan's algorithm is the one non-trivial algorithm it needs.
type tarjan struct {
	g *CallGraph

	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int

	result [][]string
}

func (g *CallGraph) computeSCCs() {
	t := &tarjan{
		g:       g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	for _, name := range g.order {
		if _, seen := t.index[name]; !seen {
			t.strongconnect(name)
		}
	}

	g.sccs = nil
	for _, comp := range t.result {
		selfLoop := len(comp) == 1 && hasSelfEdge(g, comp[0])
		if len(comp) > 1 || selfLoop {
			sort.Strings(comp)
			g.sccs = append(g.sccs, comp)
			for _, n := range comp {
				g.recursive[n] = true
			}
		}
	}
}

func hasSelfEdge(g *CallGraph, name string) bool {
	for _, e := range g.out[name] {
		if e.To == name {
			return true
		}
	}
	return false
}

func (t *tarjan) strongconnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range t.g.out[v] {
		w := e.To
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.result = append(t.result, comp)
	}
}
