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

// Package prefs persists the configurable heuristics named throughout the
// stack analyzer (recursion depth, EXT_STACK_BUDGET, tail-call policy) and
// the path finder (default max depth) to a disk-backed key/value file.
package prefs

import (
	"fmt"
	"strconv"
)

// Value is the boxed value passed to and returned from a Generic
// preference's load/save functions.
type Value interface{}

// value is the interface a concrete preference type must implement in
// order to be registered with a Disk.
type value interface {
	fromString(s string) error
	toString() string
}

// Bool is a boolean preference value.
type Bool struct {
	v bool
}

// Set assigns v to the preference. Accepted types are bool and string; an
// unparseable string is not an error, it is simply treated as false.
func (b *Bool) Set(v interface{}) error {
	switch v := v.(type) {
	case bool:
		b.v = v
	case string:
		b.v, _ = strconv.ParseBool(v)
	default:
		return fmt.Errorf("prefs: invalid type for bool value (%T)", v)
	}
	return nil
}

func (b *Bool) fromString(s string) error {
	b.v, _ = strconv.ParseBool(s)
	return nil
}

func (b *Bool) toString() string { return strconv.FormatBool(b.v) }

// String returns the current value.
func (b Bool) String() string { return strconv.FormatBool(b.v) }

// Get returns the current value.
func (b Bool) Get() bool { return b.v }

// String is a string preference value, optionally capped to a maximum
// length.
type String struct {
	v      string
	maxLen int
}

// Set assigns v to the preference. v must be a string.
func (s *String) Set(v interface{}) error {
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("prefs: invalid type for string value (%T)", v)
	}
	s.v = str
	s.crop()
	return nil
}

// SetMaxLen sets the maximum length of the string, cropping the current
// value if necessary. A limit of zero removes the limit for future Sets but
// does not restore an already-cropped value.
func (s *String) SetMaxLen(n int) {
	s.maxLen = n
	s.crop()
}

func (s *String) crop() {
	if s.maxLen > 0 && len(s.v) > s.maxLen {
		s.v = s.v[:s.maxLen]
	}
}

func (s *String) fromString(v string) error { return s.Set(v) }
func (s *String) toString() string          { return s.v }

// String returns the current value.
func (s String) String() string { return s.v }

// Int is an integer preference value.
type Int struct {
	v int
}

// Set assigns v to the preference. Accepted types are int and a
// string containing a base-10 integer.
func (i *Int) Set(v interface{}) error {
	switch v := v.(type) {
	case int:
		i.v = v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("prefs: invalid int value (%s)", v)
		}
		i.v = n
	default:
		return fmt.Errorf("prefs: invalid type for int value (%T)", v)
	}
	return nil
}

func (i *Int) fromString(s string) error { return i.Set(s) }
func (i *Int) toString() string          { return strconv.Itoa(i.v) }

// String returns the current value.
func (i Int) String() string { return strconv.Itoa(i.v) }

// Get returns the current value.
func (i Int) Get() int { return i.v }

// Float is a floating point preference value.
type Float struct {
	v float64
}

// Set assigns v to the preference. Accepted types are float64 and a string
// containing a floating point number.
func (f *Float) Set(v interface{}) error {
	switch v := v.(type) {
	case float64:
		f.v = v
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("prefs: invalid float value (%s)", v)
		}
		f.v = n
	default:
		return fmt.Errorf("prefs: invalid type for float value (%T)", v)
	}
	return nil
}

func (f *Float) fromString(s string) error { return f.Set(s) }
func (f *Float) toString() string          { return strconv.FormatFloat(f.v, 'g', -1, 64) }

// String returns the current value.
func (f Float) String() string { return f.toString() }

// Get returns the current value.
func (f Float) Get() float64 { return f.v }

// Generic is a preference value whose representation is entirely defined
// by caller-supplied load/save functions, for values that don't fit Bool,
// String, Int or Float.
type Generic struct {
	load func(Value) error
	save func() Value
}

// NewGeneric is the preferred method of initialisation for the Generic
// type.
func NewGeneric(load func(Value) error, save func() Value) *Generic {
	return &Generic{load: load, save: save}
}

func (g *Generic) fromString(s string) error { return g.load(Value(s)) }
func (g *Generic) toString() string          { return fmt.Sprintf("%v", g.save()) }
