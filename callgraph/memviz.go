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

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// memvizNode is the shape memviz walks with reflection to emit a graphviz
// dot graph. memviz renders the pointer structure of a Go value, so the
// adjacency has to be rebuilt as a tree of pointers rather than handed the
// graph's own name-keyed maps.
type memvizNode struct {
	Name     string
	External bool
	Callees  []*memvizNode
}

// Memviz renders the call graph to w as a graphviz dot graph, for use with
// `dot -Tsvg`. It is a debug aid, not part of the stable report shapes;
// cmd/elfscope's complete verb wires it in behind --graphviz.
func (g *CallGraph) Memviz(w io.Writer) {
	built := make(map[string]*memvizNode, len(g.order))
	for _, name := range g.order {
		built[name] = &memvizNode{Name: name, External: g.nodes[name].External}
	}
	for _, name := range g.order {
		for _, e := range g.out[name] {
			built[name].Callees = append(built[name].Callees, built[e.To])
		}
	}

	roots := make([]*memvizNode, 0, len(g.order))
	for _, name := range g.order {
		roots = append(roots, built[name])
	}

	memviz.Map(w, &roots)
}
