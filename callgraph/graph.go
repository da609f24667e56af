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
	"fmt"
	"sort"

	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/elf"
)

// CallGraph is the frozen, whole-binary call graph built from a loaded
// Binary and a Disassembler over it. Immutable after Build returns; queries
// never mutate it.
type CallGraph struct {
	binary *elf.Binary

	nodes map[string]*Node
	order []string // node names in deterministic (address-then-name) order

	out map[string][]CallEdge
	in  map[string][]CallEdge

	recursive map[string]bool
	sccs      [][]string // non-trivial SCCs only
}

// Build walks every internal function's decoded instruction stream and
// constructs the call graph. Decode failures never abort the build: a
// function missing some edges because of DecodeGaps is still emitted.
func Build(b *elf.Binary, d *disasm.Disassembler) *CallGraph {
	g := &CallGraph{
		binary:    b,
		nodes:     make(map[string]*Node),
		out:       make(map[string][]CallEdge),
		in:        make(map[string][]CallEdge),
		recursive: make(map[string]bool),
	}

	for _, f := range b.Functions {
		g.addNode(&Node{Name: f.Name, Address: f.Address, External: f.Kind == elf.KindImported, Function: f})
	}
	g.ensureNode(UnresolvedNode, 0, true, nil)

	// functions are already address-sorted by elf.Binary.Finalize; walking
	// them in that order and appending edges in instruction order keeps
	// graph construction deterministic.
	for _, f := range b.Functions {
		if f.Kind == elf.KindImported {
			continue
		}

		insns := d.Decode(f)
		for _, inst := range insns {
			edge, ok := g.classify(f, inst)
			if !ok {
				continue
			}
			g.out[edge.From] = append(g.out[edge.From], edge)
			g.in[edge.To] = append(g.in[edge.To], edge)
		}
	}

	g.finalizeOrder()
	g.computeSCCs()
	return g
}

func (g *CallGraph) addNode(n *Node) {
	if _, ok := g.nodes[n.Name]; ok {
		return
	}
	g.nodes[n.Name] = n
}

func (g *CallGraph) ensureNode(name string, addr uint64, external bool, fn *elf.Function) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Address: addr, External: external, Function: fn}
	g.nodes[name] = n
	return n
}

func (g *CallGraph) classify(f *elf.Function, inst disasm.Instruction) (CallEdge, bool) {
	switch inst.Class {
	case disasm.ClassCallDirect:
		return g.classifyDirect(f, inst, EdgeDirect), true
	case disasm.ClassCallIndirect:
		return g.edgeTo(f, inst, UnresolvedNode, 0, false, EdgeIndirect), true
	case disasm.ClassBranch:
		if !inst.Unconditional || inst.Operand.Kind != disasm.OperandImmediate {
			return CallEdge{}, false
		}
		target := uint64(inst.Operand.Value)
		if plt, ok := g.binary.ResolvePLT(target); ok {
			g.ensureNode(plt.ImportedName, target, true, nil)
			return g.edgeTo(f, inst, plt.ImportedName, target, true, EdgeTail), true
		}
		if tf, ok := g.binary.FunctionAt(target); ok && tf.Address == target {
			return g.edgeTo(f, inst, tf.Name, target, true, EdgeTail), true
		}
		return CallEdge{}, false
	}
	return CallEdge{}, false
}

func (g *CallGraph) classifyDirect(f *elf.Function, inst disasm.Instruction, kind EdgeKind) CallEdge {
	if inst.Operand.Kind != disasm.OperandImmediate {
		return g.edgeTo(f, inst, UnresolvedNode, 0, false, EdgeIndirect)
	}

	target := uint64(inst.Operand.Value)

	if plt, ok := g.binary.ResolvePLT(target); ok {
		g.ensureNode(plt.ImportedName, target, true, nil)
		return g.edgeTo(f, inst, plt.ImportedName, target, true, EdgePLT)
	}

	if tf, ok := g.binary.FunctionAt(target); ok {
		return g.edgeTo(f, inst, tf.Name, target, true, kind)
	}

	name := fmt.Sprintf("@external:%#x", target)
	g.ensureNode(name, target, true, nil)
	return g.edgeTo(f, inst, name, target, true, kind)
}

func (g *CallGraph) edgeTo(f *elf.Function, inst disasm.Instruction, to string, toAddr uint64, hasAddr bool, kind EdgeKind) CallEdge {
	return CallEdge{
		From:         f.Name,
		To:           to,
		FromAddress:  inst.Address,
		ToAddress:    toAddr,
		HasToAddress: hasAddr,
		Instruction:  inst.Mnemonic,
		Kind:         kind,
	}
}

func (g *CallGraph) finalizeOrder() {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := g.nodes[names[i]], g.nodes[names[j]]
		if ni.Address != nj.Address {
			return ni.Address < nj.Address
		}
		return ni.Name < nj.Name
	})
	g.order = names
}

// Nodes returns every node name in deterministic order.
func (g *CallGraph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Node returns the node for name, if it exists.
func (g *CallGraph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Callees returns the out-edges of name in deterministic order.
func (g *CallGraph) Callees(name string) []CallEdge {
	return g.out[name]
}

// Callers returns the in-edges of name in deterministic order.
func (g *CallGraph) Callers(name string) []CallEdge {
	return g.in[name]
}

// IsRecursive reports whether name lies on a non-trivial SCC or has a
// self-edge.
func (g *CallGraph) IsRecursive(name string) bool {
	return g.recursive[name]
}

// SCCs returns every non-trivial strongly-connected component (size > 1,
// or a single node with a self-edge).
func (g *CallGraph) SCCs() [][]string {
	out := make([][]string, len(g.sccs))
	copy(out, g.sccs)
	return out
}

// Statistics summarizes the graph for the call-relationship report.
type Statistics struct {
	TotalFunctions      int
	TotalCalls          int
	ExternalFunctions   int
	RecursiveFunctions  int
	AverageCallsPerFunc float64
}

// Statistics computes the call-relationship report's statistics block.
func (g *CallGraph) Statistics() Statistics {
	var s Statistics
	for _, name := range g.order {
		n := g.nodes[name]
		if n.External {
			s.ExternalFunctions++
			continue
		}
		s.TotalFunctions++
		if g.recursive[name] {
			s.RecursiveFunctions++
		}
		s.TotalCalls += len(g.out[name])
	}
	if s.TotalFunctions > 0 {
		s.AverageCallsPerFunc = float64(s.TotalCalls) / float64(s.TotalFunctions)
	}
	return s
}
