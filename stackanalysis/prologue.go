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

package stackanalysis

import (
	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/logger"
)

// localFrame scans insns in program order, tracking the cumulative signed
// delta applied to the stack pointer by every stack-adjusting instruction
// (push-reg, sub-sp-imm, pop/add relief) and reporting the maximum depth
// reached anywhere in the function. This folds the prologue window and
// the whole-body re-scan for mid-function `sub sp, imm` into one pass:
// the running peak already equals the maximum of the two by construction.
// A dynamic (non-constant) SP adjustment anywhere in the function sets
// dynamic_alloca and collapses the reported frame to the conservative
// constant zero.
func localFrame(function string, insns []disasm.Instruction) StackFrame {
	frame := StackFrame{Function: function}

	var depth int64
	var maxDepth int64

	for _, inst := range insns {
		if inst.Class != disasm.ClassStackAdjust {
			continue
		}

		if inst.Dynamic {
			frame.DynamicAlloca = true
			frame.Confidence = ConfidenceUnknown
			logger.Logf("stack", "dynamic stack adjustment in %s at %#x, reporting 0 for this frame", function, inst.Address)
			continue
		}

		// StackDelta is signed in the direction SP itself moves: negative
		// for a push/sub (SP goes down, frame grows), positive for a
		// pop/add (frame shrinks). Depth tracks frame growth, so negate.
		growth := -inst.StackDelta

		depth += growth
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	if frame.DynamicAlloca {
		frame.LocalFrame = 0
		return frame
	}

	frame.LocalFrame = maxDepth
	frame.Confidence = ConfidenceHeuristic
	return frame
}
