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

package disasm

import (
	"encoding/binary"

	"github.com/jetsetilly/elfscope/errors"
)

// mipsDecoder is a small hand-rolled decoder covering the subset of the
// MIPS32/MIPS64 instruction set that matters to call-graph and
// stack-consumption analysis: J/JAL/JR/JALR and ADDIU/DADDIU against sp.
// There is no maintained golang.org/x/arch MIPS package, so this follows
// the same narrow, purpose-built decoding style as the pack's own
// hand-rolled ARM/Thumb decoder rather than pulling in a full disassembler.
type mipsDecoder struct {
	is64 bool
}

func (m mipsDecoder) alignment() uint64 { return 4 }

const (
	mipsOpSpecial = 0x00
	mipsOpJ       = 0x02
	mipsOpJAL     = 0x03
	mipsOpADDIU   = 0x09
	mipsOpDADDIU  = 0x19
	mipsFuncJR    = 0x08
	mipsFuncJALR  = 0x09
)

const mipsRegSP = 29

func (m mipsDecoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	if len(code) < 4 {
		return Instruction{}, errors.Errorf(errors.DisasmError, "truncated instruction")
	}

	word := binary.BigEndian.Uint32(code[:4])
	op := word >> 26

	out := Instruction{Address: addr, Size: 4, Mnemonic: "mips"}

	switch op {
	case mipsOpJ:
		out.Mnemonic = "j"
		out.Class = ClassBranch
		out.Unconditional = true
		out.Operand = Operand{Kind: OperandImmediate, Value: mipsJumpTarget(word, addr)}
	case mipsOpJAL:
		out.Mnemonic = "jal"
		out.Class = ClassCallDirect
		out.Unconditional = true
		out.Operand = Operand{Kind: OperandImmediate, Value: mipsJumpTarget(word, addr)}
	case mipsOpADDIU, mipsOpDADDIU:
		rs := (word >> 21) & 0x1f
		rt := (word >> 16) & 0x1f
		imm := int16(word & 0xffff)
		if rs == mipsRegSP && rt == mipsRegSP {
			out.Mnemonic = "addiu sp"
			out.Class = ClassStackAdjust
			out.StackDelta = int64(imm)
		}
	case mipsOpSpecial:
		funct := word & 0x3f
		rs := (word >> 21) & 0x1f
		switch funct {
		case mipsFuncJR:
			if rs == 31 { // $ra
				out.Mnemonic = "jr ra"
				out.Class = ClassReturn
			} else {
				out.Mnemonic = "jr"
				out.Class = ClassCallIndirect
				out.Operand = Operand{Kind: OperandRegister}
			}
		case mipsFuncJALR:
			out.Mnemonic = "jalr"
			out.Class = ClassCallIndirect
			out.Operand = Operand{Kind: OperandRegister}
		}
	}

	return out, nil
}

// mipsJumpTarget reconstructs the absolute target of a J-format
// instruction: the low 26 bits shifted left two, combined with the top 4
// bits of the address of the delay slot (addr+4), per the MIPS pseudo-
// direct addressing rule.
func mipsJumpTarget(word uint32, addr uint64) int64 {
	index := word & 0x03ffffff
	delaySlot := addr + 4
	target := (delaySlot & 0xfffffffff0000000) | (uint64(index) << 2)
	return int64(target)
}
