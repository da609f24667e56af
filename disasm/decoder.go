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
	"github.com/jetsetilly/elfscope/elf"
	"github.com/jetsetilly/elfscope/errors"
	"github.com/jetsetilly/elfscope/logger"
)

// decoder is the architecture descriptor: one
// small record of per-architecture behavior (decode one instruction,
// alignment to retry at after a gap) that the rest of the package is
// parameterized by. Adding an architecture means adding an implementation
// of this interface, not branching throughout the package.
type decoder interface {
	// decodeOne decodes exactly one instruction starting at code[0],
	// which corresponds to virtual address addr. Returns an error if the
	// bytes at that position are not a valid instruction.
	decodeOne(code []byte, addr uint64) (Instruction, error)

	// alignment is the address granularity to retry at after a
	// DecodeGap, and the step between architecturally-required
	// instruction boundaries.
	alignment() uint64
}

func forArchitecture(arch elf.Architecture) (decoder, error) {
	switch arch {
	case elf.ArchX86:
		return x86Decoder{mode: 32}, nil
	case elf.ArchX86_64:
		return x86Decoder{mode: 64}, nil
	case elf.ArchARM:
		return armDecoder{}, nil
	case elf.ArchARM64:
		return arm64Decoder{}, nil
	case elf.ArchPPC, elf.ArchPPC64:
		return ppcDecoder{is64: arch == elf.ArchPPC64}, nil
	case elf.ArchMIPS, elf.ArchMIPS64:
		return mipsDecoder{is64: arch == elf.ArchMIPS64}, nil
	case elf.ArchRISCV, elf.ArchRISCV64:
		return riscvDecoder{is64: arch == elf.ArchRISCV64}, nil
	}
	return nil, errors.Errorf(errors.UnsupportedArch, arch)
}

// Disassembler decodes and caches instruction streams for the functions
// of a single Binary. Construct one per loaded binary with New.
type Disassembler struct {
	binary *elf.Binary
	dec    decoder

	cache      map[uint64][]Instruction
	decodeGaps map[uint64][]DecodeGap
}

// New builds a Disassembler for b. Fails if b's architecture has no
// decoder backend.
func New(b *elf.Binary) (*Disassembler, error) {
	dec, err := forArchitecture(b.Architecture)
	if err != nil {
		return nil, err
	}

	return &Disassembler{
		binary:     b,
		dec:        dec,
		cache:      make(map[uint64][]Instruction),
		decodeGaps: make(map[uint64][]DecodeGap),
	}, nil
}

// Decode returns the instruction stream for f, decoding and caching it on
// first use. Individual decode failures are recorded as DecodeGaps and do
// not abort decoding of the rest of the function.
func (d *Disassembler) Decode(f *elf.Function) []Instruction {
	if insns, ok := d.cache[f.Address]; ok {
		return insns
	}

	insns := d.decode(f)
	d.cache[f.Address] = insns
	return insns
}

// DecodeGaps returns the gaps recorded while decoding f. Decode must have
// been called first; an empty slice means a clean decode (or f has not
// been decoded yet).
func (d *Disassembler) DecodeGaps(f *elf.Function) []DecodeGap {
	return d.decodeGaps[f.Address]
}

func (d *Disassembler) decode(f *elf.Function) []Instruction {
	code := f.Bytes
	if len(code) == 0 {
		return nil
	}

	var insns []Instruction

	align := d.dec.alignment()
	if align == 0 {
		align = 1
	}

	offset := uint64(0)
	for offset < uint64(len(code)) {
		addr := f.Address + offset

		inst, err := d.dec.decodeOne(code[offset:], addr)
		if err != nil {
			gapSize := int(align)
			if offset+align > uint64(len(code)) {
				gapSize = len(code) - int(offset)
			}
			d.decodeGaps[f.Address] = append(d.decodeGaps[f.Address], DecodeGap{
				Address: addr,
				Size:    gapSize,
			})
			logger.Logf("disasm", "decode gap at %#x in %s: %v", addr, f.Name, err)
			offset += align
			continue
		}

		if inst.Size <= 0 {
			inst.Size = int(align)
		}

		insns = append(insns, inst)
		offset += uint64(inst.Size)
	}

	return insns
}
