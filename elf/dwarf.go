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
	"debug/dwarf"
	stdelf "debug/elf"

	"github.com/jetsetilly/elfscope/logger"
)

// enrichWithDWARF attaches source-file/line provenance to functions and
// refines zero-size extents using DW_TAG_subprogram's high/low PC, when
// .debug_info is present. Absence of DWARF never blocks loading; this is
// purely opportunistic enrichment.
func enrichWithDWARF(ef *stdelf.File, b *Binary) {
	data, err := ef.DWARF()
	if err != nil {
		// no DWARF, or malformed DWARF: not an error, just no enrichment
		return
	}

	r := data.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			logger.Logf("elf", "dwarf enrichment stopped early: %v", err)
			return
		}
		if entry == nil {
			return
		}
		if entry.Tag != dwarf.TagSubprogram {
			continue
		}

		low, lowOK := entry.Val(dwarf.AttrLowpc).(uint64)
		if !lowOK {
			continue
		}

		f, ok := b.byAddress[low]
		if !ok {
			continue
		}

		if high, ok := highPC(entry, low); ok && high > low {
			if f.Size == 0 || high-low < f.Size {
				f.Size = high - low
			}
		}

		if file, line, ok := declLine(data, entry); ok {
			f.SourceFile = file
			f.Line = line
		}
	}
}

// highPC normalizes DW_AT_high_pc, which may be encoded either as an
// absolute address or as an offset from low_pc depending on producer and
// DWARF version.
func highPC(entry *dwarf.Entry, low uint64) (uint64, bool) {
	v := entry.Val(dwarf.AttrHighpc)
	switch v := v.(type) {
	case uint64:
		if v < low {
			return low + v, true
		}
		return v, true
	case int64:
		return low + uint64(v), true
	}
	return 0, false
}

// declLine resolves the DW_AT_decl_file/DW_AT_decl_line attributes
// against the compilation unit's line table to produce a filename.
func declLine(data *dwarf.Data, entry *dwarf.Entry) (string, int, bool) {
	lineNum, ok := entry.Val(dwarf.AttrDeclLine).(int64)
	if !ok {
		return "", 0, false
	}

	fileIdx, ok := entry.Val(dwarf.AttrDeclFile).(int64)
	if !ok {
		return "", int(lineNum), true
	}

	lr, err := data.LineReader(entry)
	if err != nil || lr == nil {
		return "", int(lineNum), true
	}

	files := lr.Files()
	if int(fileIdx) >= 0 && int(fileIdx) < len(files) && files[fileIdx] != nil {
		return files[fileIdx].Name, int(lineNum), true
	}

	return "", int(lineNum), true
}
