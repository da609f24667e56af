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

// Package paths builds paths to resource files that ElfScope reads and
// writes outside of the analysis itself: the preferences file and cached
// per-binary DWARF/symbol lookups.
package paths

import "path/filepath"

// resourceDirectory is the name of the directory, relative to the current
// working directory, in which resource files are kept.
const resourceDirectory = ".elfscope"

// ResourcePath returns a path, relative to the resource directory, for a
// sub-path and file name. Either argument may be empty.
func ResourcePath(subPath string, fileName string) (string, error) {
	p := resourceDirectory
	if subPath != "" {
		p = filepath.Join(p, subPath)
	}
	if fileName != "" {
		p = filepath.Join(p, fileName)
	}
	return p, nil
}
