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

	"golang.org/x/arch/ppc64/ppc64asm"

	"github.com/jetsetilly/elfscope/errors"
)

// ppcDecoder wraps golang.org/x/arch/ppc64/ppc64asm. Decoding itself does
// not depend on bitness - is64 is retained for classification of
// link-register save-slot offsets that differ between the 32- and 64-bit
// ABIs, should that be needed later.
type ppcDecoder struct {
	is64 bool
}

func (p ppcDecoder) alignment() uint64 { return 4 }

// ppcRegR1 is the stack pointer GPR number in both the 32- and 64-bit
// PowerPC ABIs.
const ppcRegR1 = 1

// decodeOne always decodes big-endian. ppc64le binaries are rare enough
// among this analyzer's intended targets that endianness is fixed here
// rather than threaded through from the loaded Binary - see design ledger.
func (p ppcDecoder) decodeOne(code []byte, addr uint64) (Instruction, error) {
	inst, err := ppc64asm.Decode(code, binary.BigEndian)
	if err != nil {
		return Instruction{}, errors.Errorf(errors.DisasmError, err)
	}

	out := Instruction{
		Address:  addr,
		Size:     4,
		Mnemonic: inst.Op.String(),
	}

	raw := binary.BigEndian.Uint32(code[:4])
	ra := (raw >> 16) & 0x1f

	switch inst.Op {
	case ppc64asm.BL, ppc64asm.BLA:
		out.Class = ClassCallDirect
		out.Unconditional = true
		resolvePPCTarget(inst, addr, &out)
	case ppc64asm.BCLR, ppc64asm.BCLRL:
		out.Class = ClassReturn
	case ppc64asm.BCCTR, ppc64asm.BCCTRL:
		out.Class = ClassCallIndirect
		out.Operand = Operand{Kind: OperandRegister}
	case ppc64asm.B, ppc64asm.BA:
		out.Class = ClassBranch
		out.Unconditional = true
		resolvePPCTarget(inst, addr, &out)
	case ppc64asm.STWU:
		// D-form: stwu RS,D(RA). The universal 32-bit-ABI prologue is
		// `stwu r1,-N(r1)`, saving the old frame and moving r1 down by N.
		if ra == ppcRegR1 {
			out.Class = ClassStackAdjust
			out.StackDelta = int64(int16(raw & 0xffff))
		}
	case ppc64asm.STDU:
		// DS-form: stdu RS,DS(RA), the 64-bit-ABI equivalent of stwu. The
		// low two bits of the 16-bit field are the XO sub-opcode, not part
		// of the displacement.
		if ra == ppcRegR1 {
			out.Class = ClassStackAdjust
			out.StackDelta = int64(int16(raw & 0xfffc))
		}
	case ppc64asm.STWUX, ppc64asm.STDUX:
		// Indexed update form: the displacement is a register, not a
		// compile-time constant.
		if ra == ppcRegR1 {
			out.Class = ClassStackAdjust
			out.Dynamic = true
		}
	default:
		if isPPCConditionalBranch(inst.Op) {
			out.Class = ClassBranch
			resolvePPCTarget(inst, addr, &out)
		}
	}

	return out, nil
}

func isPPCConditionalBranch(op ppc64asm.Op) bool {
	switch op {
	case ppc64asm.BC, ppc64asm.BCA, ppc64asm.BCL, ppc64asm.BCLA:
		return true
	}
	return false
}

func resolvePPCTarget(inst ppc64asm.Inst, addr uint64, out *Instruction) {
	for _, a := range inst.Args {
		if a == nil {
			continue
		}
		if rel, ok := a.(ppc64asm.PCRel); ok {
			out.Operand = Operand{Kind: OperandImmediate, Value: int64(addr) + int64(rel)}
			return
		}
	}
}
