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
	"golang.org/x/arch/arm64/arm64asm"

	"github.com/jetsetilly/elfscope/errors"
)

// arm64Decoder wraps golang.org/x/arch/arm64/arm64asm.
type arm64Decoder struct{}

func (a arm64Decoder) alignment() uint64 { return 4 }

func (a arm64Decoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	inst, err := arm64asm.Decode(code)
	if err != nil {
		return Instruction{}, errors.Errorf(errors.DisasmError, err)
	}

	out := Instruction{
		Address:  addr,
		Size:     4,
		Mnemonic: inst.Op.String(),
	}

	switch inst.Op {
	case arm64asm.BL, arm64asm.BLR:
		out.Class = ClassCallDirect
		out.Unconditional = true
		resolveARM64Target(inst, addr, &out)
		if inst.Op == arm64asm.BLR {
			out.Class = ClassCallIndirect
		}
	case arm64asm.B:
		out.Class = ClassBranch
		out.Unconditional = true
		resolveARM64Target(inst, addr, &out)
	case arm64asm.BR:
		out.Class = ClassCallIndirect
		out.Operand = Operand{Kind: OperandRegister}
	case arm64asm.RET:
		out.Class = ClassReturn
	case arm64asm.SUB:
		classifyARM64SPArith(inst, -1, &out)
	case arm64asm.ADD:
		classifyARM64SPArith(inst, 1, &out)
	default:
		if isARM64ConditionalBranch(inst.Op) {
			out.Class = ClassBranch
			resolveARM64Target(inst, addr, &out)
		}
	}

	return out, nil
}

func isARM64ConditionalBranch(op arm64asm.Op) bool {
	switch op {
	case arm64asm.BEQ, arm64asm.BNE, arm64asm.BCS, arm64asm.BCC, arm64asm.BMI,
		arm64asm.BPL, arm64asm.BVS, arm64asm.BVC, arm64asm.BHI, arm64asm.BLS,
		arm64asm.BGE, arm64asm.BLT, arm64asm.BGT, arm64asm.BLE,
		arm64asm.CBZ, arm64asm.CBNZ, arm64asm.TBZ, arm64asm.TBNZ:
		return true
	}
	return false
}

func resolveARM64Target(inst arm64asm.Inst, addr uint64, out *Instruction) {
	for _, a := range inst.Args {
		if a == nil {
			continue
		}
		if pc, ok := a.(arm64asm.PCRel); ok {
			out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + int64(pc)}
			return
		}
		if _, ok := a.(arm64asm.Reg); ok {
			out.Class = ClassCallIndirect
			out.Operand = Operand{Kind: OperandRegister}
			return
		}
	}
}

func classifyARM64SPArith(inst arm64asm.Inst, sign int64, out *Instruction) {
	reg, ok := inst.Args[0].(arm64asm.RegSP)
	if !ok || reg != arm64asm.RegSP(arm64asm.SP) {
		return
	}

	out.Class = ClassStackAdjust

	// Best-effort: extracts the raw encoded immediate, ignoring the LSL#12
	// shift bit some encodings of SUB/ADD sp set - close enough for a
	// stack-budget heuristic, not bit-exact byte accounting.
	switch arg := inst.Args[2].(type) {
	case arm64asm.Imm12:
		out.StackDelta = sign * int64(arg.Imm)
	default:
		out.Dynamic = true
	}
}
