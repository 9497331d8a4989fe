// Package targets reads the list of servers a run is applied to.
//
// The list is a plain text file with one address per line. Surrounding
// whitespace is trimmed. The first blank line ends the list: every entry
// after it is ignored, not just the blank line itself.
package targets

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"strings"
)

// List is a servers file. Each call to Endpoints re-reads the file.
type List struct {
	path string

	// OnBlankLine, if set, is called with the 1-based line number of the
	// blank line that ended enumeration.
	OnBlankLine func(line int)
}

// Open checks that the servers file exists and is readable.
func Open(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening servers file: %w", err)
	}
	f.Close()
	return &List{path: path}, nil
}

// Path returns the file the list is read from.
func (l *List) Path() string { return l.path }

// Endpoints yields each address in file order. A read error is yielded
// once with an empty address and ends the sequence.
func (l *List) Endpoints() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(l.path)
		if err != nil {
			yield("", fmt.Errorf("opening servers file: %w", err))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			addr := strings.TrimSpace(scanner.Text())
			if addr == "" {
				if l.OnBlankLine != nil {
					l.OnBlankLine(line)
				}
				return
			}
			if !yield(addr, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("reading %s: %w", l.path, err))
		}
	}
}

// Collect reads every address up to the first blank line.
func (l *List) Collect() ([]string, error) {
	var out []string
	for addr, err := range l.Endpoints() {
		if err != nil {
			return out, err
		}
		out = append(out, addr)
	}
	return out, nil
}
