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
	"golang.org/x/arch/x86/x86asm"

	"github.com/jetsetilly/elfscope/errors"
)

// x86Decoder wraps golang.org/x/arch/x86/x86asm for both 32- and 64-bit
// mode, selected by mode (32 or 64).
type x86Decoder struct {
	mode int
}

func (x x86Decoder) alignment() uint64 { return 1 }

// endbrLen is the length of the ENDBR32/ENDBR64 CET landing-pad
// instructions, which x86asm does not recognise. Skipped transparently;
// grounded on the same handling in the pack's own x86 call-site scanner.
const endbrLen = 4

func isEndbr(code []byte) bool {
	return len(code) >= endbrLen &&
		code[0] == 0xf3 && code[1] == 0x0f && code[2] == 0x1e &&
		(code[3] == 0xfa || code[3] == 0xfb)
}

func (x x86Decoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	if isEndbr(code) {
		return Instruction{Address: addr, Size: endbrLen, Mnemonic: "endbr", Class: ClassOther}, nil
	}

	inst, err := x86asm.Decode(code, x.mode)
	if err != nil {
		return Instruction{}, errors.Errorf(errors.DisasmError, err)
	}

	out := Instruction{
		Address:  addr,
		Size:     inst.Len,
		Mnemonic: inst.Op.String(),
	}

	switch inst.Op {
	case x86asm.CALL, x86asm.CALLF:
		classifyCallAMD64(inst, addr, &out)
	case x86asm.JMP:
		// x86asm gives conditional jumps their own Op (JNE, JL, ...), so
		// Op == JMP is always an unconditional jump.
		out.Unconditional = true
		classifyBranchAMD64(inst, addr, &out)
	case x86asm.RET, x86asm.RETF:
		out.Class = ClassReturn
	case x86asm.PUSH, x86asm.PUSHA, x86asm.PUSHAD:
		out.Class = ClassStackAdjust
		out.StackDelta = -int64(wordSize(x.mode))
	case x86asm.POP, x86asm.POPA, x86asm.POPAD:
		out.Class = ClassStackAdjust
		out.StackDelta = int64(wordSize(x.mode))
	case x86asm.SUB:
		classifyStackArithAMD64(inst, -1, &out)
	case x86asm.ADD:
		classifyStackArithAMD64(inst, 1, &out)
	default:
		if isConditionalJump(inst.Op) {
			out.Class = ClassBranch
			classifyBranchAMD64(inst, addr, &out)
		}
	}

	return out, nil
}

func wordSize(mode int) int {
	if mode == 64 {
		return 8
	}
	return 4
}

func isSP(r x86asm.Reg) bool {
	switch r {
	case x86asm.SP, x86asm.ESP, x86asm.RSP:
		return true
	}
	return false
}

// classifyStackArithAMD64 handles `sub sp, imm` / `add sp, imm` style
// prologue and mid-body stack adjustments. sign is -1 for SUB, +1 for ADD.
func classifyStackArithAMD64(inst x86asm.Inst, sign int64, out *Instruction) {
	reg, ok := inst.Args[0].(x86asm.Reg)
	if !ok || !isSP(reg) {
		return
	}

	out.Class = ClassStackAdjust

	switch arg := inst.Args[1].(type) {
	case x86asm.Imm:
		out.StackDelta = sign * int64(arg)
	default:
		out.Dynamic = true
	}
}

func classifyCallAMD64(inst x86asm.Inst, addr uint64, out *Instruction) {
	switch arg := inst.Args[0].(type) {
	case x86asm.Rel:
		out.Class = ClassCallDirect
		out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + int64(out.Size) + int64(arg)}
	case x86asm.Mem:
		if arg.Base == x86asm.RIP && arg.Index == 0 {
			out.Class = ClassCallIndirect
			out.Operand = Operand{Kind: OperandMemory, Value: int64(addr) + int64(out.Size) + int64(arg.Disp)}
			return
		}
		out.Class = ClassCallIndirect
		out.Operand = Operand{Kind: OperandMemory}
	case x86asm.Reg:
		out.Class = ClassCallIndirect
		out.Operand = Operand{Kind: OperandRegister}
	default:
		out.Class = ClassCallIndirect
	}
}

func classifyBranchAMD64(inst x86asm.Inst, addr uint64, out *Instruction) {
	out.Class = ClassBranch

	switch arg := inst.Args[0].(type) {
	case x86asm.Rel:
		out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + int64(out.Size) + int64(arg)}
	case x86asm.Mem:
		out.Operand = Operand{Kind: OperandMemory}
	case x86asm.Reg:
		out.Operand = Operand{Kind: OperandRegister}
	}
}

func isConditionalJump(op x86asm.Op) bool {
	switch op {
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ, x86asm.JECXZ,
		x86asm.JRCXZ, x86asm.JE, x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE,
		x86asm.JNE, x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JS:
		return true
	}
	return false
}
