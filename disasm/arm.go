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
	"math/bits"

	"golang.org/x/arch/arm/armasm"

	"github.com/jetsetilly/elfscope/errors"
)

// armDecoder wraps golang.org/x/arch/arm/armasm. Thumb interworking is not
// tracked: ELF symbol values carry the low bit for Thumb functions, but
// this decoder always decodes as plain ARM. Functions whose low address
// bit is set are treated as a DecodeGap, one instruction at a time, rather
// than silently producing garbage.
type armDecoder struct{}

func (a armDecoder) alignment() uint64 { return 4 }

func (a armDecoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	if addr&1 != 0 {
		return Instruction{}, errors.Errorf(errors.DisasmError, "thumb code is not decoded")
	}

	inst, err := armasm.Decode(code, armasm.ModeARM)
	if err != nil {
		return Instruction{}, errors.Errorf(errors.DisasmError, err)
	}

	out := Instruction{
		Address:  addr,
		Size:     inst.Len,
		Mnemonic: inst.Op.String(),
	}

	switch inst.Op {
	case armasm.BL, armasm.BLX:
		out.Class = ClassCallDirect
		out.Unconditional = true
		resolveARMBranchTarget(inst, addr, &out)
	case armasm.B:
		out.Class = ClassBranch
		out.Unconditional = inst.Cond == armasm.AL
		resolveARMBranchTarget(inst, addr, &out)
	case armasm.BX:
		if reg, ok := inst.Args[0].(armasm.Reg); ok && reg == armasm.LR {
			out.Class = ClassReturn
		} else {
			out.Class = ClassCallIndirect
			out.Operand = Operand{Kind: OperandRegister}
		}
	case armasm.POP:
		out.Class = ClassStackAdjust
		if n, ok := armRegListCount(inst); ok {
			out.StackDelta = int64(n) * 4
		} else {
			out.Dynamic = true
		}
		if containsReg(inst, armasm.PC) {
			out.Class = ClassReturn
		}
	case armasm.PUSH:
		out.Class = ClassStackAdjust
		if n, ok := armRegListCount(inst); ok {
			// each saved register is one 32-bit word; the list is a static
			// bitmask, so the byte count is exact, not dynamic.
			out.StackDelta = -int64(n) * 4
		} else {
			out.Dynamic = true
		}
	case armasm.SUB:
		classifyARMSPArith(inst, -1, &out)
	case armasm.ADD:
		classifyARMSPArith(inst, 1, &out)
	}

	return out, nil
}

func resolveARMBranchTarget(inst armasm.Inst, addr uint64, out *Instruction) {
	switch arg := inst.Args[0].(type) {
	case armasm.PCRel:
		// ARM PC reads as instruction address + 8 due to the classic
		// three-stage pipeline convention armasm preserves in its offsets.
		out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + 8 + int64(arg)}
	case armasm.Reg:
		out.Class = ClassCallIndirect
		out.Operand = Operand{Kind: OperandRegister}
	}
}

func containsReg(inst armasm.Inst, want armasm.Reg) bool {
	for _, a := range inst.Args {
		if set, ok := a.(armasm.RegList); ok {
			if set&(1<<uint(want)) != 0 {
				return true
			}
		}
	}
	return false
}

// armRegListCount returns the population count of inst's register-list
// operand (the number of registers PUSH/POP transfers), if it has one.
func armRegListCount(inst armasm.Inst) (int, bool) {
	for _, a := range inst.Args {
		if set, ok := a.(armasm.RegList); ok {
			return bits.OnesCount16(uint16(set)), true
		}
	}
	return 0, false
}

func classifyARMSPArith(inst armasm.Inst, sign int64, out *Instruction) {
	reg, ok := inst.Args[0].(armasm.Reg)
	if !ok || reg != armasm.SP {
		return
	}

	out.Class = ClassStackAdjust

	switch arg := inst.Args[len(inst.Args)-1].(type) {
	case armasm.Imm:
		out.StackDelta = sign * int64(arg)
	default:
		out.Dynamic = true
	}
}
