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

package callgraph_test

import (
	"testing"

	"github.com/jetsetilly/elfscope/callgraph"
	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/elf"
	"github.com/jetsetilly/elfscope/test"
)

func callRel(from, to uint64) []byte {
	rel := int32(int64(to) - int64(from+5))
	return []byte{0xe8, byte(rel), byte(rel >> 8), byte(rel >> 16), byte(rel >> 24)}
}

// buildChain constructs main -> helper -> leaf, each a single `call rel32`
// to the next function except leaf, which just returns. Addresses and
// encodings are chosen so the x86_64 decoder produces exactly one
// ClassCallDirect/ClassReturn instruction per function.
func buildChain(t *testing.T) *elf.Binary {
	t.Helper()

	const (
		mainAddr   = 0x1000
		helperAddr = 0x1010
		leafAddr   = 0x1020
	)

	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "main", Address: mainAddr, Size: 5, Bytes: callRel(mainAddr, helperAddr)},
		{Name: "helper", Address: helperAddr, Size: 5, Bytes: callRel(helperAddr, leafAddr)},
		{Name: "leaf", Address: leafAddr, Size: 1, Bytes: []byte{0xc3}},
	}
	b.Finalize()
	return b
}

func TestBuildSimpleChain(t *testing.T) {
	b := buildChain(t)
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	g := callgraph.Build(b, d)

	callees := g.Callees("main")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, "helper")
	test.ExpectEquality(t, callees[0].Kind, callgraph.EdgeDirect)

	callees = g.Callees("helper")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, "leaf")

	test.ExpectEquality(t, len(g.Callees("leaf")), 0)

	stats := g.Statistics()
	test.ExpectEquality(t, stats.TotalFunctions, 3)
	test.ExpectEquality(t, stats.TotalCalls, 2)
}

func TestSelfRecursion(t *testing.T) {
	const factAddr = 0x2000
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "fact", Address: factAddr, Size: 5, Bytes: callRel(factAddr, factAddr)},
	}
	b.Finalize()

	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(b, d)

	test.ExpectEquality(t, g.IsRecursive("fact"), true)
	sccs := g.SCCs()
	test.ExpectEquality(t, len(sccs), 1)
}

func TestMutualRecursion(t *testing.T) {
	const aAddr = 0x3000
	const bAddr = 0x3010

	bin := &elf.Binary{Architecture: elf.ArchX86_64}
	bin.Functions = []*elf.Function{
		{Name: "a", Address: aAddr, Size: 5, Bytes: callRel(aAddr, bAddr)},
		{Name: "b", Address: bAddr, Size: 5, Bytes: callRel(bAddr, aAddr)},
	}
	bin.Finalize()

	d, err := disasm.New(bin)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(bin, d)

	test.ExpectEquality(t, g.IsRecursive("a"), true)
	test.ExpectEquality(t, g.IsRecursive("b"), true)
}

func TestIndirectCallGoesToUnresolved(t *testing.T) {
	// ff d0 : call rax
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "caller", Address: 0x4000, Size: 2, Bytes: []byte{0xff, 0xd0}},
	}
	b.Finalize()

	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(b, d)

	callees := g.Callees("caller")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, callgraph.UnresolvedNode)
	test.ExpectEquality(t, callees[0].Kind, callgraph.EdgeIndirect)
}

func TestPLTRedirection(t *testing.T) {
	const callerAddr = 0x5000
	const stubAddr = 0x5100

	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "caller", Address: callerAddr, Size: 5, Bytes: callRel(callerAddr, stubAddr)},
	}
	b.PLT = []elf.PLTEntry{{StubAddress: stubAddr, ImportedName: "printf"}}
	b.Finalize()

	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(b, d)

	callees := g.Callees("caller")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, "printf")
	test.ExpectEquality(t, callees[0].Kind, callgraph.EdgePLT)

	n, ok := g.Node("printf")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, n.External, true)
}

func TestCallToExternalAddress(t *testing.T) {
	const callerAddr = 0x6000
	const strayAddr = 0x6100 // no function, no PLT entry owns this address

	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "caller", Address: callerAddr, Size: 5, Bytes: callRel(callerAddr, strayAddr)},
	}
	b.Finalize()

	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(b, d)

	callees := g.Callees("caller")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, "@external:0x6100")
}

func TestTailCall(t *testing.T) {
	const wrapperAddr = 0x7000
	const implAddr = 0x7010

	// e9 rel32 : jmp rel32 (unconditional)
	jmpRel := func(from, to uint64) []byte {
		rel := int32(int64(to) - int64(from+5))
		return []byte{0xe9, byte(rel), byte(rel >> 8), byte(rel >> 16), byte(rel >> 24)}
	}

	b := &elf.Binary{Architecture: elf.ArchX86_64}
	b.Functions = []*elf.Function{
		{Name: "wrapper", Address: wrapperAddr, Size: 5, Bytes: jmpRel(wrapperAddr, implAddr)},
		{Name: "impl", Address: implAddr, Size: 1, Bytes: []byte{0xc3}},
	}
	b.Finalize()

	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)
	g := callgraph.Build(b, d)

	callees := g.Callees("wrapper")
	test.ExpectEquality(t, len(callees), 1)
	test.ExpectEquality(t, callees[0].To, "impl")
	test.ExpectEquality(t, callees[0].Kind, callgraph.EdgeTail)
}
