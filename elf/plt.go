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
	"encoding/binary"
	"strings"

	"github.com/jetsetilly/elfscope/errors"
)

// pltEntrySize is the typical size, in bytes, of a single PLT trampoline
// on the architectures ElfScope targets. x86/x86_64/arm all use 16-byte
// entries for the lazy-binding stub form; this is a simplification
// documented in DESIGN.md, not a disassembly of the PLT section itself.
const pltEntrySize = 16

// loadPLT builds the plt_stub_address -> imported_name rewrite table by
// walking the .rela.plt/.rel.plt relocations and assuming the
// conventional one-relocation-per-sequential-stub layout linkers emit. It
// also classifies each entry's binding, lazy or bound-now.
func loadPLT(ef *stdelf.File, b *Binary) error {
	var pltAddr uint64
	for i := range b.Sections {
		if b.Sections[i].Name == ".plt" {
			pltAddr = b.Sections[i].Address
			break
		}
	}
	if pltAddr == 0 {
		return nil
	}

	dynsyms, err := ef.DynamicSymbols()
	if err != nil {
		return errors.Errorf(errors.MalformedSymtab, err)
	}

	bindNow := isBindNow(ef)

	relaSec := findSection(ef, ".rela.plt")
	relSec := findSection(ef, ".rel.plt")

	// the first PLT entry (index 0) is the reserved resolver stub; real
	// trampolines begin at index 1
	nextStub := pltAddr + pltEntrySize

	switch {
	case relaSec != nil:
		data, err := relaSec.Data()
		if err != nil {
			return errors.Errorf(errors.TruncatedFile, err)
		}
		entrySize := 24
		if b.Bitness == 32 {
			entrySize = 12
		}
		for off := 0; off+entrySize <= len(data); off += entrySize {
			symIdx, ok := relocSymbolIndex(data[off:off+entrySize], b.Bitness)
			// DynamicSymbols omits the null symbol at index 0
			if !ok || symIdx == 0 || int(symIdx) > len(dynsyms) {
				nextStub += pltEntrySize
				continue
			}
			binding := PLTBindingLazy
			if bindNow {
				binding = PLTBindingNow
			}
			b.PLT = append(b.PLT, PLTEntry{
				StubAddress:  nextStub,
				ImportedName: dynsyms[symIdx-1].Name,
				Binding:      binding,
			})
			nextStub += pltEntrySize
		}
	case relSec != nil:
		data, err := relSec.Data()
		if err != nil {
			return errors.Errorf(errors.TruncatedFile, err)
		}
		entrySize := 8
		if b.Bitness == 32 {
			entrySize = 8
		}
		for off := 0; off+entrySize <= len(data); off += entrySize {
			symIdx, ok := relocSymbolIndex(data[off:off+entrySize], b.Bitness)
			// DynamicSymbols omits the null symbol at index 0
			if !ok || symIdx == 0 || int(symIdx) > len(dynsyms) {
				nextStub += pltEntrySize
				continue
			}
			binding := PLTBindingLazy
			if bindNow {
				binding = PLTBindingNow
			}
			b.PLT = append(b.PLT, PLTEntry{
				StubAddress:  nextStub,
				ImportedName: dynsyms[symIdx-1].Name,
				Binding:      binding,
			})
			nextStub += pltEntrySize
		}
	}

	applyPLTBindingToFunctions(b)

	return nil
}

func findSection(ef *stdelf.File, name string) *stdelf.Section {
	for _, s := range ef.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// relocSymbolIndex extracts the symbol-table index from a raw Rela/Rel
// entry. The index occupies the high 32 (64-bit) or 24 (32-bit) bits of
// the info field that follows r_offset.
func relocSymbolIndex(entry []byte, bitness int) (uint32, bool) {
	if bitness == 64 {
		if len(entry) < 16 {
			return 0, false
		}
		info := binary.LittleEndian.Uint64(entry[8:16])
		return uint32(info >> 32), true
	}

	if len(entry) < 8 {
		return 0, false
	}
	info := binary.LittleEndian.Uint32(entry[4:8])
	return info >> 8, true
}

// isBindNow reports whether the dynamic section requests eager binding
// (DT_BIND_NOW, or DT_FLAGS/DT_FLAGS_1 carrying the NOW bit).
func isBindNow(ef *stdelf.File) bool {
	sec := findSection(ef, ".dynamic")
	if sec == nil {
		return false
	}
	data, err := sec.Data()
	if err != nil {
		return false
	}

	const dtBindNow = 24
	const dtFlags = 30
	const dtFlags1 = 0x6ffffffb
	const dfBindNow = 0x8
	const df1Now = 0x1

	entrySize := 16
	tagWidth := 8
	if sec.Addralign == 4 {
		entrySize = 8
		tagWidth = 4
	}

	for off := 0; off+entrySize <= len(data); off += entrySize {
		var tag uint64
		var val uint64
		if tagWidth == 8 {
			tag = binary.LittleEndian.Uint64(data[off : off+8])
			val = binary.LittleEndian.Uint64(data[off+8 : off+16])
		} else {
			tag = uint64(binary.LittleEndian.Uint32(data[off : off+4]))
			val = uint64(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		}

		switch tag {
		case dtBindNow:
			return true
		case dtFlags:
			if val&dfBindNow != 0 {
				return true
			}
		case dtFlags1:
			if val&df1Now != 0 {
				return true
			}
		}
	}

	return false
}

func applyPLTBindingToFunctions(b *Binary) {
	for _, p := range b.PLT {
		if f, ok := b.byName[p.ImportedName]; ok {
			f.PLTBinding = p.Binding
		}
	}
}

// demangleAll applies a best-effort demangling pass over every function
// name, preserving the raw (mangled) name as an alias so lookups by
// either form succeed.
func demangleAll(b *Binary) {
	for _, f := range b.Functions {
		if d := demangle(f.Name); d != f.Name {
			f.Aliases = append(f.Aliases, f.Name)
			f.Name = d
		}
	}
}

// demangle recognises the Itanium C++ ABI's "_Z" prefix and the legacy
// Rust "_ZN...17h<hash>E" mangling closely enough to strip the mangling
// envelope for display; anything it doesn't recognise is returned
// unchanged. This is deliberately not a full demangler: callers needing
// exact argument types should consult DWARF instead.
func demangle(name string) string {
	if len(name) < 3 || !strings.HasPrefix(name, "_Z") {
		return name
	}

	s := name[2:]
	nested := false
	if len(s) > 0 && s[0] == 'N' {
		nested = true
		s = s[1:]
	}

	var parts []string
	for len(s) > 0 {
		n := 0
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			n = n*10 + int(s[i]-'0')
			i++
		}
		if i == 0 {
			break
		}
		s = s[i:]
		if n <= 0 || n > len(s) {
			break
		}
		parts = append(parts, s[:n])
		s = s[n:]

		if !nested {
			break
		}
		if len(s) > 0 && s[0] == 'E' {
			s = s[1:]
			break
		}
	}

	if len(parts) == 0 {
		return name
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += "::" + p
	}
	return out
}
