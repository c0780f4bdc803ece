// Package command defines the pattern tables that console input is matched
// against and handles dispatching input to them.
package command

import (
	"regexp"

	"github.com/dekarrin/branchling/internal/outcome"
)

// Handler is called with the capture groups of a matched pattern. captures[0]
// is the entire match and captures[i] is the i-th group, or "" if the group
// did not participate. A Handler must return exactly one Outcome.
type Handler func(captures []string) outcome.Outcome

// Entry is a single pattern in a Table.
type Entry struct {

	// Name is the public name of the command as it should be shown in the
	// help catalogue. Entries with no name can still be matched but are
	// hidden from introspection.
	Name string

	// Pattern is matched against the input. It must be anchored to the start
	// of the input.
	Pattern *regexp.Regexp

	// Handler is invoked with the captures of Pattern when it matches.
	Handler Handler

	// Help is a short description shown alongside Name in the catalogue.
	Help string
}

// Table is an ordered sequence of Entries. The first Entry whose pattern
// matches wins.
type Table []Entry

// NamedPattern is a pattern that routes to a method of a subsystem rather than
// being handled in place.
type NamedPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// NamedPatterns is an ordered list of NamedPattern. Order decides which one
// wins when more than one matches.
type NamedPatterns []NamedPattern

// Names returns the name of every pattern in order.
func (np NamedPatterns) Names() []string {
	names := make([]string, len(np))
	for i := range np {
		names[i] = np[i].Name
	}
	return names
}

// Get returns the pattern registered for name.
func (np NamedPatterns) Get(name string) (*regexp.Regexp, bool) {
	for i := range np {
		if np[i].Name == name {
			return np[i].Pattern, true
		}
	}
	return nil, false
}

// Routed is a command that was recognized by a NamedPatterns table and must be
// delivered to the subsystem listening for Event.
type Routed struct {
	// Event is the name of the event the owning subsystem listens on, such as
	// "processSandboxCommand".
	Event string

	// Method is the name of the pattern that matched, such as "git commit" or
	// "levels".
	Method string

	// Captures holds the capture groups of the match. Captures[0] is the full
	// match.
	Captures []string

	// Input is the (expanded) input that was matched.
	Input string
}
