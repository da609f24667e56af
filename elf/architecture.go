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

package elf

import (
	stdelf "debug/elf"

	"github.com/jetsetilly/elfscope/errors"
)

// Architecture identifies the instruction set of a loaded binary. The
// disassembler and the stack analyzer are parameterized by this value
// rather than switching on the raw ELF machine field throughout the
// pipeline.
type Architecture int

// List of supported architectures. ArchUnknown is never returned by Load;
// an unrecognised machine field produces UnsupportedArch instead.
const (
	ArchUnknown Architecture = iota
	ArchX86
	ArchX86_64
	ArchARM
	ArchARM64
	ArchMIPS
	ArchMIPS64
	ArchPPC
	ArchPPC64
	ArchRISCV
	ArchRISCV64
)

// String implements fmt.Stringer.
func (a Architecture) String() string {
	switch a {
	case ArchX86:
		return "x86"
	case ArchX86_64:
		return "x86_64"
	case ArchARM:
		return "arm"
	case ArchARM64:
		return "aarch64"
	case ArchMIPS:
		return "mips32"
	case ArchMIPS64:
		return "mips64"
	case ArchPPC:
		return "ppc32"
	case ArchPPC64:
		return "ppc64"
	case ArchRISCV:
		return "riscv32"
	case ArchRISCV64:
		return "riscv64"
	}
	return "unknown"
}

// Bitness returns the natural word size of the architecture, in bits.
func (a Architecture) Bitness() int {
	switch a {
	case ArchX86, ArchARM, ArchMIPS, ArchPPC, ArchRISCV:
		return 32
	default:
		return 64
	}
}

// InstructionAlignment is the minimum instruction address granularity of
// the architecture. The disasm backends do not call it; each one carries
// its own alignment.
func (a Architecture) InstructionAlignment() uint64 {
	switch a {
	case ArchARM64, ArchMIPS, ArchMIPS64, ArchPPC, ArchPPC64, ArchRISCV, ArchRISCV64:
		return 4
	case ArchARM:
		// thumb interworking means 2-byte alignment is the safe default;
		// the ARM disassembler backend itself always steps by 4
		return 2
	default:
		// x86 and x86_64 are unaligned ISAs
		return 1
	}
}

// Endianness identifies the byte order a binary's multi-byte fields are
// encoded in.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// architectureOf maps an ELF machine field, plus the class-derived
// bitness and the endianness-sensitive families, to an Architecture.
func architectureOf(machine stdelf.Machine, class stdelf.Class, data stdelf.Data) (Architecture, error) {
	is64 := class == stdelf.ELFCLASS64

	switch machine {
	case stdelf.EM_386:
		return ArchX86, nil
	case stdelf.EM_X86_64:
		return ArchX86_64, nil
	case stdelf.EM_ARM:
		return ArchARM, nil
	case stdelf.EM_AARCH64:
		return ArchARM64, nil
	case stdelf.EM_MIPS, stdelf.EM_MIPS_RS3_LE:
		if is64 {
			return ArchMIPS64, nil
		}
		return ArchMIPS, nil
	case stdelf.EM_PPC:
		return ArchPPC, nil
	case stdelf.EM_PPC64:
		return ArchPPC64, nil
	case stdelf.EM_RISCV:
		if is64 {
			return ArchRISCV64, nil
		}
		return ArchRISCV, nil
	}

	return ArchUnknown, errors.Errorf(errors.UnsupportedArch, machine)
}
