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

package prefs

import (
	"github.com/jetsetilly/elfscope/paths"
)

// TailCallReuseFrame and TailCallAddFrame are the two policies for
// whether a tail call reuses the caller's frame in the cumulative stack
// total, or adds a frame on top. ElfScope picks TailCallReuseFrame as the
// default and records the choice in every report's metadata, applying one
// policy uniformly across a run.
const (
	TailCallReuseFrame = "reuse-frame"
	TailCallAddFrame   = "add-frame"
)

// defaultRecursionDepth, defaultExtStackBudget and defaultMaxPathDepth are
// the heuristic constants the stack analyzer and path finder fall back to.
const (
	defaultRecursionDepth = 10
	defaultExtStackBudget = 32 // one 64-bit word x 4
	defaultMaxPathDepth   = 64
)

// Preferences holds the configurable heuristics the stack analyzer and
// path finder consult: the bounded-recursion unrolling depth, the stack
// budget charged for external/unresolved call targets, the tail-call
// frame-reuse policy, and the path finder's default depth bound. Values
// persist to and load from a `.elfscope/prefs` file.
type Preferences struct {
	dsk *Disk

	RecursionDepth Int
	ExtStackBudget Int
	TailCallPolicy String
	MaxPathDepth   Int
}

// NewPreferences builds a Preferences backed by the resource-directory
// prefs file, with every field registered and defaulted.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", "prefs")
	if err != nil {
		return nil, err
	}

	dsk, err := NewDisk(pth)
	if err != nil {
		return nil, err
	}

	p := &Preferences{dsk: dsk}

	p.RecursionDepth.v = defaultRecursionDepth
	p.ExtStackBudget.v = defaultExtStackBudget
	p.TailCallPolicy.v = TailCallReuseFrame
	p.MaxPathDepth.v = defaultMaxPathDepth

	if err := dsk.Add("recursiondepth", &p.RecursionDepth); err != nil {
		return nil, err
	}
	if err := dsk.Add("extstackbudget", &p.ExtStackBudget); err != nil {
		return nil, err
	}
	if err := dsk.Add("tailcallpolicy", &p.TailCallPolicy); err != nil {
		return nil, err
	}
	if err := dsk.Add("maxpathdepth", &p.MaxPathDepth); err != nil {
		return nil, err
	}

	return p, nil
}

// Load re-reads the preferences file and applies any changes found.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save writes the current preference values to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
