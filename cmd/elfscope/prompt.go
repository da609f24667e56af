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

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/term/termios"
)

// completingReader puts stdin into raw mode for the duration of a single
// line read, offering Tab-completion against a fixed candidate list. It
// backs the `complete` verb's interactive prompt for a target/source
// function name, wrapping termios directly rather than pulling in a
// dedicated readline dependency.
type completingReader struct {
	canon syscall.Termios
	raw   syscall.Termios
}

func newCompletingReader() (*completingReader, error) {
	r := &completingReader{}
	if err := termios.Tcgetattr(os.Stdin.Fd(), &r.canon); err != nil {
		return nil, fmt.Errorf("elfscope: error reading terminal attributes: %w", err)
	}
	r.raw = r.canon
	termios.Cfmakeraw(&r.raw)
	return r, nil
}

func (r *completingReader) enterRaw() error {
	return termios.Tcsetattr(os.Stdin.Fd(), termios.TCIFLUSH, &r.raw)
}

func (r *completingReader) restore() {
	termios.Tcsetattr(os.Stdin.Fd(), termios.TCIFLUSH, &r.canon) //nolint:errcheck
}

// matches returns every candidate with prefix, sorted.
func matches(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// commonPrefix returns the longest string that is a prefix of every entry
// in ss.
func commonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	p := ss[0]
	for _, s := range ss[1:] {
		for !strings.HasPrefix(s, p) {
			p = p[:len(p)-1]
		}
	}
	return p
}

// promptFunctionName prompts the user to type a function name on the
// terminal, completing on Tab against candidates, and returns the line
// entered on Enter. If stdin is not a terminal the prompt is skipped and
// the empty string is returned.
func promptFunctionName(prompt string, candidates []string) string {
	r, err := newCompletingReader()
	if err != nil {
		return ""
	}
	if err := r.enterRaw(); err != nil {
		return ""
	}
	defer r.restore()

	fmt.Fprint(os.Stdout, prompt) //nolint:errcheck

	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			break
		}
		switch buf[0] {
		case '\r', '\n':
			fmt.Fprint(os.Stdout, "\r\n") //nolint:errcheck
			return string(line)
		case '\t':
			m := matches(candidates, string(line))
			if len(m) == 1 {
				line = []byte(m[0])
				fmt.Fprint(os.Stdout, "\r"+prompt+string(line)) //nolint:errcheck
			} else if len(m) > 1 {
				cp := commonPrefix(m)
				if len(cp) > len(line) {
					line = []byte(cp)
				}
				fmt.Fprint(os.Stdout, "\r\n"+strings.Join(m, "  ")+"\r\n"+prompt+string(line)) //nolint:errcheck
			}
		case 0x7f, 0x08: // backspace / delete
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(os.Stdout, "\b \b") //nolint:errcheck
			}
		case 0x03: // ctrl-c
			return ""
		default:
			line = append(line, buf[0])
			os.Stdout.Write(buf[:n]) //nolint:errcheck
		}
	}

	return string(line)
}
