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

// riscvDecoder is a small hand-rolled decoder covering the RV32I/RV64I
// subset relevant to call-graph and stack-consumption analysis: JAL, JALR
// and ADDI against sp. Mirrors mipsDecoder's narrow, purpose-built style;
// there is no maintained golang.org/x/arch RISC-V package to wrap.
type riscvDecoder struct {
	is64 bool
}

func (r riscvDecoder) alignment() uint64 { return 4 }

const (
	riscvOpcodeJAL   = 0x6f
	riscvOpcodeJALR  = 0x67
	riscvOpcodeOPIMM = 0x13
)

const riscvRegSP = 2
const riscvRegRA = 1
const riscvRegZero = 0

func (r riscvDecoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	if len(code) < 4 {
		return Instruction{}, errors.Errorf(errors.DisasmError, "truncated instruction")
	}

	word := binary.LittleEndian.Uint32(code[:4])
	if word&0x3 != 0x3 {
		return Instruction{}, errors.Errorf(errors.DisasmError, "not a 32-bit RISC-V instruction (compressed extension unsupported)")
	}

	opcode := word & 0x7f
	rd := (word >> 7) & 0x1f
	rs1 := (word >> 15) & 0x1f

	out := Instruction{Address: addr, Size: 4, Mnemonic: "riscv"}

	switch opcode {
	case riscvOpcodeJAL:
		imm := riscvJImm(word)
		out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + int64(imm)}
		if rd == riscvRegZero {
			out.Mnemonic = "j"
			out.Class = ClassBranch
			out.Unconditional = true
		} else {
			out.Mnemonic = "jal"
			out.Class = ClassCallDirect
			out.Unconditional = true
		}
	case riscvOpcodeJALR:
		imm := int32(word) >> 20
		if rd == riscvRegZero && rs1 == riscvRegRA && imm == 0 {
			out.Mnemonic = "ret"
			out.Class = ClassReturn
		} else {
			out.Mnemonic = "jalr"
			out.Class = ClassCallIndirect
			out.Operand = Operand{Kind: OperandRegister}
		}
	case riscvOpcodeOPIMM:
		funct3 := (word >> 12) & 0x7
		if funct3 == 0 && rs1 == riscvRegSP && rd == riscvRegSP { // addi sp, sp, imm
			imm := int32(word) >> 20
			out.Mnemonic = "addi sp"
			out.Class = ClassStackAdjust
			out.StackDelta = int64(imm)
		}
	}

	return out, nil
}

// riscvJImm decodes the scrambled J-type immediate encoding used by JAL:
// bit 20 | bits 10:1 | bit 11 | bits 19:12, sign-extended, scaled by 2.
func riscvJImm(word uint32) int32 {
	imm20 := (word >> 31) & 0x1
	imm10_1 := (word >> 21) & 0x3ff
	imm11 := (word >> 20) & 0x1
	imm19_12 := (word >> 12) & 0xff

	raw := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)

	// sign-extend from bit 20
	shifted := int32(raw << 11)
	return shifted >> 11
}
