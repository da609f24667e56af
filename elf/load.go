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
	"io"
	"os"
	"sort"

	"github.com/jetsetilly/elfscope/errors"
	"github.com/jetsetilly/elfscope/logger"
)

// Load opens path, validates it as an ELF file, and builds the Binary the
// rest of the pipeline consumes.
func Load(path string) (*Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf(errors.NotAnElf, err)
	}
	defer f.Close()

	return load(path, f)
}

// OpenMapped behaves like Load but memory-maps the file instead of
// reading it into the process the way debug/elf's Open() does
// internally, avoiding a double copy for large binaries. Falls back to
// Load transparently on platforms or filesystems where mmap is
// unavailable.
func OpenMapped(path string) (*Binary, error) {
	data, unmap, err := mmapFile(path)
	if err != nil {
		logger.Logf("elf", "mmap unavailable for %s, falling back to read: %v", path, err)
		return Load(path)
	}
	defer unmap()

	return load(path, readerAt(data))
}

// readAtCloser adapts a byte slice to the io.ReaderAt interface
// debug/elf.NewFile requires, without an intervening copy.
type readAtCloser struct {
	data []byte
}

func readerAt(data []byte) io.ReaderAt {
	return &readAtCloser{data: data}
}

func (r *readAtCloser) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func load(path string, r io.ReaderAt) (*Binary, error) {
	ef, err := stdelf.NewFile(r)
	if err != nil {
		return nil, errors.Errorf(errors.NotAnElf, err)
	}
	defer ef.Close()

	if ef.Class != stdelf.ELFCLASS32 && ef.Class != stdelf.ELFCLASS64 {
		return nil, errors.Errorf(errors.TruncatedFile, "invalid class byte")
	}
	if ef.Data != stdelf.ELFDATA2LSB && ef.Data != stdelf.ELFDATA2MSB {
		return nil, errors.Errorf(errors.TruncatedFile, "invalid endianness byte")
	}

	arch, err := architectureOf(ef.Machine, ef.Class, ef.Data)
	if err != nil {
		return nil, err
	}

	b := newBinary()
	b.Path = path
	b.Architecture = arch
	b.Bitness = arch.Bitness()
	b.EntryPoint = ef.Entry
	if ef.Data == stdelf.ELFDATA2MSB {
		b.Endianness = BigEndian
	}

	if err := loadSections(ef, b); err != nil {
		return nil, err
	}
	if err := loadFunctions(ef, b); err != nil {
		return nil, err
	}
	if err := loadPLT(ef, b); err != nil {
		// PLT recovery is best-effort; a failure here does not invalidate
		// the rest of the load, it just means PLT stubs won't be rewritten
		logger.Logf("elf", "plt recovery incomplete: %v", err)
	}

	b.Finalize()

	enrichWithDWARF(ef, b)

	return b, nil
}

func loadSections(ef *stdelf.File, b *Binary) error {
	wanted := map[string]bool{
		".text": true, ".symtab": true, ".dynsym": true,
		".strtab": true, ".dynstr": true,
		".rela.plt": true, ".rel.plt": true, ".plt": true,
	}

	for _, s := range ef.Sections {
		executable := s.Flags&stdelf.SHF_EXECINSTR != 0
		if !wanted[s.Name] && !executable {
			continue
		}

		data, err := s.Data()
		if err != nil {
			// a section header pointing outside the file surfaces here
			return errors.Errorf(errors.TruncatedFile, err)
		}

		b.Sections = append(b.Sections, Section{
			Name:       s.Name,
			Address:    s.Addr,
			Size:       s.Size,
			Executable: executable,
			Data:       data,
		})
	}

	return nil
}

// textBytes returns the bytes covering [addr, addr+size) from whichever
// retained section owns that range, or nil if none does.
func (b *Binary) textBytes(addr, size uint64) []byte {
	for i := range b.Sections {
		s := &b.Sections[i]
		if !s.Executable {
			continue
		}
		if addr < s.Address || addr >= s.Address+s.Size {
			continue
		}
		end := addr + size
		if end > s.Address+s.Size {
			end = s.Address + s.Size
		}
		lo := addr - s.Address
		hi := end - s.Address
		if hi > uint64(len(s.Data)) {
			hi = uint64(len(s.Data))
		}
		if lo > hi {
			return nil
		}
		return s.Data[lo:hi]
	}
	return nil
}

func isFunctionSymbol(sym stdelf.Symbol) bool {
	return stdelf.ST_TYPE(sym.Info) == stdelf.STT_FUNC
}

func loadFunctions(ef *stdelf.File, b *Binary) error {
	byAddress := make(map[uint64]*Function)

	addSymbol := func(sym stdelf.Symbol, kind SymbolKind) {
		if sym.Name == "" {
			return
		}

		if kind == KindImported {
			b.Functions = append(b.Functions, &Function{
				Name: sym.Name,
				Kind: KindImported,
			})
			return
		}

		if existing, ok := byAddress[sym.Value]; ok {
			existing.Aliases = append(existing.Aliases, sym.Name)
			if sym.Size > existing.Size {
				existing.Size = sym.Size
			}
			return
		}

		f := &Function{
			Name:    sym.Name,
			Address: sym.Value,
			Size:    sym.Size,
			Kind:    KindInternal,
		}
		if sec, ok := b.SectionContaining(sym.Value); ok {
			f.Section = sec.Name
		}

		byAddress[sym.Value] = f
		b.Functions = append(b.Functions, f)
	}

	if syms, err := ef.Symbols(); err == nil {
		for _, sym := range syms {
			if !isFunctionSymbol(sym) {
				continue
			}
			if sym.Section == stdelf.SHN_UNDEF {
				addSymbol(sym, KindImported)
				continue
			}
			addSymbol(sym, KindInternal)
		}
	}

	if dynsyms, err := ef.DynamicSymbols(); err == nil {
		for _, sym := range dynsyms {
			if !isFunctionSymbol(sym) {
				continue
			}
			if sym.Section == stdelf.SHN_UNDEF {
				if _, ok := b.byName[sym.Name]; ok {
					continue
				}
				addSymbol(sym, KindImported)
				continue
			}
			if _, ok := byAddress[sym.Value]; !ok {
				addSymbol(sym, KindInternal)
			}
		}
	}

	// fill in extent-until-next-symbol for zero-size internal symbols that
	// nonetheless live inside an executable section
	resolveZeroSizeExtents(b)

	// a size-0 internal symbol outside any executable section never should
	// have become a Function: drop the stragglers resolveZeroSizeExtents
	// couldn't give an extent to.
	dropUnresolvedZeroSize(b)

	// attach raw bytes now that extents are final
	for _, f := range b.Functions {
		if f.Kind == KindInternal && f.Size > 0 {
			f.Bytes = b.textBytes(f.Address, f.Size)
		}
	}

	demangleAll(b)

	return nil
}

func resolveZeroSizeExtents(b *Binary) {
	internal := make([]*Function, 0, len(b.Functions))
	for _, f := range b.Functions {
		if f.Kind == KindInternal {
			internal = append(internal, f)
		}
	}

	sortByAddress(internal)

	for i, f := range internal {
		if f.Size != 0 {
			continue
		}

		sec, ok := b.SectionContaining(f.Address)
		if !ok || !sec.Executable {
			continue
		}

		end := sec.Address + sec.Size
		if i+1 < len(internal) {
			next := internal[i+1].Address
			if next > f.Address && next < end {
				end = next
			}
		}
		if end > f.Address {
			f.Size = end - f.Address
		}
	}
}

func sortByAddress(fns []*Function) {
	sort.Slice(fns, func(i, j int) bool { return fns[i].Address < fns[j].Address })
}

// dropUnresolvedZeroSize removes internal functions that resolveZeroSizeExtents
// left at Size 0: a STT_FUNC symbol with no size outside any executable
// section carries no extent to analyze and should never have been recorded
// as a Function. Imported functions are untouched - they are always
// address-and-size-less by design.
func dropUnresolvedZeroSize(b *Binary) {
	kept := b.Functions[:0]
	for _, f := range b.Functions {
		if f.Kind == KindInternal && f.Size == 0 {
			continue
		}
		kept = append(kept, f)
	}
	b.Functions = kept
}
