package command

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"

	"github.com/dekarrin/branchling/internal/outcome"
)

// ChainSeparator separates multiple commands entered on one line.
const ChainSeparator = ";"

// Parser attempts to recognize input as a command of some subsystem. If it
// cannot, the returned Outcome is a CommandProcessError; otherwise it is the
// zero Outcome and the Routed is populated.
type Parser func(input string) (Routed, outcome.Outcome)

// Named creates a NamedPattern from a regular expression source. It panics if
// the expression does not compile, so it is only suitable for tables built
// at init time.
func Named(name string, pattern string) NamedPattern {
	return NamedPattern{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// Match finds the first Entry in table whose pattern matches input and returns
// it along with the captures of the match. If no Entry matches, ok is false.
func Match(input string, table Table) (match Entry, captures []string, ok bool) {
	for i := range table {
		captures = table[i].Pattern.FindStringSubmatch(input)
		if captures != nil {
			return table[i], captures, true
		}
	}
	return Entry{}, nil, false
}

// Dispatch scans table in order and invokes the handler of the first Entry
// whose pattern matches input, returning the Outcome it gives. Exactly one
// handler is invoked, or none.
//
// If no Entry matches, a CommandProcessError carrying input as its message is
// returned. The input is not trimmed or otherwise changed.
func Dispatch(input string, table Table) outcome.Outcome {
	entry, captures, ok := Match(input, table)
	if !ok {
		return notRecognized(input)
	}
	return entry.Handler(captures)
}

// Route finds the pattern in patterns that matches input and returns a Routed
// command for event. When more than one pattern matches, the last one wins, so
// a general pattern such as "level" listed before "levels" does not shadow it.
// If none match, ok is false.
func Route(input string, patterns NamedPatterns, event string) (r Routed, ok bool) {
	for i := range patterns {
		captures := patterns[i].Pattern.FindStringSubmatch(input)
		if captures != nil {
			r = Routed{
				Event:    event,
				Method:   patterns[i].Name,
				Captures: captures,
				Input:    input,
			}
			ok = true
		}
	}
	return r, ok
}

// GenParser returns a Parser that routes input matching any of patterns to the
// subsystem listening on event.
func GenParser(patterns NamedPatterns, event string) Parser {
	return func(input string) (Routed, outcome.Outcome) {
		r, ok := Route(input, patterns, event)
		if !ok {
			return Routed{}, notRecognized(input)
		}
		return r, outcome.Outcome{}
	}
}

func notRecognized(input string) outcome.Outcome {
	o := outcome.CommandProcessError(input)
	return outcome.Wrap(o, nil, fmt.Sprintf("no pattern matches %q", input))
}

// SplitChain splits a line of input into the individual commands chained in
// it. Each command is trimmed and empty commands are dropped.
func SplitChain(line string) []string {
	parts := strings.Split(line, ChainSeparator)

	var cmds []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cmds = append(cmds, p)
		}
	}
	return cmds
}

// Validate checks that table can be used for dispatch. Every entry must have a
// pattern and a handler, every pattern must be anchored to the start of input,
// and no two entries may share a non-empty name.
func Validate(table Table) error {
	seen := map[string]int{}
	for i, e := range table {
		if e.Pattern == nil {
			return fmt.Errorf("entry %d: no pattern", i)
		}
		if e.Handler == nil {
			return fmt.Errorf("entry %d (%s): no handler", i, e.Pattern)
		}
		if err := checkAnchored(e.Pattern); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Name == "" {
			continue
		}
		if prev, ok := seen[e.Name]; ok {
			return fmt.Errorf("entry %d: name %q is already used by entry %d", i, e.Name, prev)
		}
		seen[e.Name] = i
	}
	return nil
}

// ValidateNamed checks that patterns can be used for routing. Every pattern
// must be anchored to the start of input and names must be non-empty and
// unique.
func ValidateNamed(patterns NamedPatterns) error {
	seen := map[string]bool{}
	for i, np := range patterns {
		if np.Name == "" {
			return fmt.Errorf("pattern %d: empty name", i)
		}
		if np.Pattern == nil {
			return fmt.Errorf("pattern %q: no pattern", np.Name)
		}
		if err := checkAnchored(np.Pattern); err != nil {
			return fmt.Errorf("pattern %q: %w", np.Name, err)
		}
		if seen[np.Name] {
			return fmt.Errorf("pattern %q: duplicate name", np.Name)
		}
		seen[np.Name] = true
	}
	return nil
}

func checkAnchored(re *regexp.Regexp) error {
	tree, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return fmt.Errorf("parse %q: %w", re.String(), err)
	}
	if !startsAnchored(tree) {
		return fmt.Errorf("pattern %q is not anchored to start of input", re.String())
	}
	return nil
}

// every alternative of the expression must begin with ^.
func startsAnchored(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginText, syntax.OpBeginLine:
		return true
	case syntax.OpConcat, syntax.OpCapture:
		return len(re.Sub) > 0 && startsAnchored(re.Sub[0])
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if !startsAnchored(sub) {
				return false
			}
		}
		return len(re.Sub) > 0
	default:
		return false
	}
}
