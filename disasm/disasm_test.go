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

package disasm_test

import (
	"testing"

	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/elf"
	"github.com/jetsetilly/elfscope/test"
)

func fn(addr uint64, code []byte) *elf.Function {
	return &elf.Function{Name: "f", Address: addr, Size: uint64(len(code)), Bytes: code}
}

func TestDecodeAMD64CallDirect(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	// e8 00 00 00 00 : call rel32 (target == next instruction address)
	insns := d.Decode(fn(0x1000, []byte{0xe8, 0x00, 0x00, 0x00, 0x00}))
	test.ExpectEquality(t, len(insns), 1)
	test.ExpectEquality(t, insns[0].Class, disasm.ClassCallDirect)
	test.ExpectEquality(t, insns[0].Operand.Kind, disasm.OperandImmediate)
	test.ExpectEquality(t, insns[0].Operand.Value, int64(0x1005))
}

func TestDecodeAMD64Return(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	insns := d.Decode(fn(0x2000, []byte{0xc3}))
	test.ExpectEquality(t, len(insns), 1)
	test.ExpectEquality(t, insns[0].Class, disasm.ClassReturn)
}

func TestDecodeAMD64SubSPImmediate(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	// 48 83 ec 20 : sub rsp, 0x20
	insns := d.Decode(fn(0x3000, []byte{0x48, 0x83, 0xec, 0x20}))
	test.ExpectEquality(t, len(insns), 1)
	test.ExpectEquality(t, insns[0].Class, disasm.ClassStackAdjust)
	test.ExpectEquality(t, insns[0].StackDelta, int64(-0x20))
	test.ExpectEquality(t, insns[0].Dynamic, false)
}

func TestDecodeAMD64ValidSequenceHasNoGaps(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	// 0f 0b is a valid single instruction (ud2); follow it with a return so
	// a gap in between (if any arose) would not stop decoding of the rest.
	f := fn(0x4000, []byte{0x0f, 0x0b, 0xc3})
	insns := d.Decode(f)
	test.ExpectSuccess(t, len(insns) > 0)

	gaps := d.DecodeGaps(f)
	test.ExpectEquality(t, len(gaps), 0)
}

func TestDecodeCachesByAddress(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	f := fn(0x5000, []byte{0xc3})
	first := d.Decode(f)
	second := d.Decode(f)
	test.ExpectEquality(t, len(first), len(second))
	test.ExpectEquality(t, first[0].Address, second[0].Address)
}

func TestDecodeARM64CallAndReturn(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchARM64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	// bl #0 (little-endian encoding of BL with a zero immediate), followed
	// by ret (c0 03 5f d6).
	code := []byte{
		0x00, 0x00, 0x00, 0x94, // bl .
		0xc0, 0x03, 0x5f, 0xd6, // ret
	}
	insns := d.Decode(fn(0x6000, code))
	test.ExpectEquality(t, len(insns), 2)
	test.ExpectEquality(t, insns[0].Class, disasm.ClassCallDirect)
	test.ExpectEquality(t, insns[0].Unconditional, true)
	test.ExpectEquality(t, insns[1].Class, disasm.ClassReturn)
}

func TestDecodeUnsupportedArchitecture(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchUnknown}
	_, err := disasm.New(b)
	test.ExpectFailure(t, err)
}

func TestDecodeEmptyFunctionBody(t *testing.T) {
	b := &elf.Binary{Architecture: elf.ArchX86_64}
	d, err := disasm.New(b)
	test.ExpectSuccess(t, err)

	insns := d.Decode(fn(0x7000, nil))
	test.ExpectEquality(t, len(insns), 0)
}
