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
	"fmt"
	"sort"
	"strings"
)

// commandLineStack is a stack of normalised "key::value; key::value" groups
// pushed by PushCommandLineStack and read by GetCommandLinePref. The
// cmd/elfscope front end does not push to it, and the analysis verbs in
// the rpc package read their settings from Preferences, not from here.
var commandLineStack []string

// PushCommandLineStack parses s as a ";"-separated list of "key::value"
// pairs, normalises whitespace and key order, and pushes the result onto
// the stack. Malformed pairs (missing "::") are dropped rather than
// rejecting the whole group.
func PushCommandLineStack(s string) {
	commandLineStack = append(commandLineStack, normaliseCommandLineGroup(s))
}

// PopCommandLineStack removes and returns the most recently pushed group.
// Popping an empty stack returns the empty string.
func PopCommandLineStack() string {
	if len(commandLineStack) == 0 {
		return ""
	}

	n := len(commandLineStack) - 1
	s := commandLineStack[n]
	commandLineStack = commandLineStack[:n]

	return s
}

// GetCommandLinePref looks up key in the group at the top of the stack. The
// returned bool is false if the stack is empty or key is not present in the
// top group.
func GetCommandLinePref(key string) (bool, string) {
	if len(commandLineStack) == 0 {
		return false, ""
	}

	top := commandLineStack[len(commandLineStack)-1]
	if top == "" {
		return false, ""
	}

	for _, pair := range strings.Split(top, "; ") {
		kv := strings.SplitN(pair, "::", 2)
		if len(kv) == 2 && kv[0] == key {
			return true, kv[1]
		}
	}

	return false, ""
}

type commandLinePair struct {
	key, value string
}

// normaliseCommandLineGroup trims whitespace, drops malformed pairs, sorts
// by key and re-joins with a canonical separator, so that the same logical
// group always round-trips to the same string regardless of how it was
// typed.
func normaliseCommandLineGroup(s string) string {
	var pairs []commandLinePair

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "::", 2)
		if len(kv) != 2 {
			continue
		}

		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])
		if k == "" || v == "" {
			continue
		}

		pairs = append(pairs, commandLinePair{key: k, value: v})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s::%s", p.key, p.value)
	}

	return strings.Join(parts, "; ")
}
