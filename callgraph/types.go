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

// Package callgraph builds the inter-procedural call graph from a loaded
// binary's functions and decoded instruction streams, and derives the
// per-function caller/callee adjacency and recursion information the path
// finder and stack analyzer build on.
package callgraph

import "github.com/jetsetilly/elfscope/elf"

// EdgeKind classifies how a CallEdge was derived.
type EdgeKind int

const (
	EdgeDirect EdgeKind = iota
	EdgeIndirect
	EdgeTail
	EdgePLT
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeIndirect:
		return "indirect"
	case EdgeTail:
		return "tail"
	case EdgePLT:
		return "plt"
	default:
		return "direct"
	}
}

// UnresolvedNode is the synthetic sink every indirect or otherwise
// statically-unresolvable call target is rewritten to.
const UnresolvedNode = "@unresolved"

// CallEdge is one concrete call site discovered by the analyzer.
type CallEdge struct {
	From         string
	To           string
	FromAddress  uint64
	ToAddress    uint64
	HasToAddress bool
	Instruction  string
	Kind         EdgeKind
}

// Node is one function-like entry in the graph: an internal function, an
// imported symbol, a synthetic `@external:<hex>` landing point, or the
// single `@unresolved` sink.
type Node struct {
	Name     string
	Address  uint64
	External bool

	// Function is nil for @unresolved and @external:<hex> nodes.
	Function *elf.Function
}
