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

package test

import (
	"math"
	"reflect"
	"testing"
)

// outcome reduces v to a pass/fail outcome. v may be a bool (true/false),
// an error (nil/non-nil) or nil.
func outcome(v interface{}) bool {
	if v == nil {
		return true
	}

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	default:
		return true
	}
}

// ExpectSuccess fails the test if v indicates failure: v is a non-nil error
// or the bool value false.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	if !outcome(v) {
		t.Errorf("unexpected failure: %v", v)
	}
}

// ExpectFailure fails the test if v indicates success: v is a nil error or
// the bool value true.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	if outcome(v) {
		t.Errorf("unexpected success: %v", v)
	}
}

// ExpectEquality fails the test if got and want are not equal.
func ExpectEquality(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("values are not equal\ngot:  %v\nwant: %v", got, want)
	}
}

// ExpectInequality fails the test if got and want are equal.
func ExpectInequality(t *testing.T, got, want interface{}) {
	t.Helper()
	if reflect.DeepEqual(got, want) {
		t.Errorf("values are unexpectedly equal: %v", got)
	}
}

// ExpectApproximate fails the test if got and want differ by more than
// tolerance.
func ExpectApproximate(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("values are not approximately equal\ngot:  %v\nwant: %v (+/- %v)", got, want, tolerance)
	}
}

// Equate is an older alias for ExpectEquality, kept for callers that
// predate the Expect* naming.
func Equate(t *testing.T, got, want interface{}) {
	t.Helper()
	ExpectEquality(t, got, want)
}
