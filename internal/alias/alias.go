// Package alias holds user-defined command aliases and expands them in input
// before it is matched against any command patterns.
package alias

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dekarrin/branchling/internal/store"
)

var tokenPat = regexp.MustCompile(`^\w+$`)

// Map is the alias map for a single session. Its contents live in a
// store.Aliases so they are persisted along with the rest of the session.
//
// Map should not be used directly; create one with New.
type Map struct {
	backing store.Aliases
}

// New returns a Map backed by the given store.
func New(backing store.Aliases) *Map {
	return &Map{backing: backing}
}

// ValidName returns whether name can be used as an alias. Only word
// characters are allowed.
func ValidName(name string) bool {
	return tokenPat.MatchString(name)
}

// Define makes name expand to expansion. An existing alias with the same name
// is silently replaced.
func (m *Map) Define(name, expansion string) error {
	if !ValidName(name) {
		return fmt.Errorf("alias name %q must contain only letters, digits, and underscores", name)
	}
	return m.backing.AddAlias(name, expansion)
}

// Remove removes the alias with the given name. Removing an alias that is not
// defined does nothing.
func (m *Map) Remove(name string) error {
	return m.backing.RemoveAlias(name)
}

// Get returns the expansion for name.
func (m *Map) Get(name string) (string, bool) {
	exp, ok := m.backing.AliasMap()[name]
	return exp, ok
}

// Names returns the name of every defined alias in sorted order.
func (m *Map) Names() []string {
	all := m.backing.AliasMap()
	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Expand runs alias expansion on input. If the leading whitespace-delimited
// token of input is exactly a defined alias, it is replaced with the alias's
// expansion and the rest of input is kept as-is. Otherwise input is returned
// unchanged.
//
// Expansion is not applied to the result of an expansion; an alias that
// expands to another alias is not expanded a second time.
func (m *Map) Expand(input string) string {
	lead := strings.TrimLeft(input, " \t")
	end := strings.IndexAny(lead, " \t")

	var token, rest string
	if end < 0 {
		token = lead
	} else {
		token, rest = lead[:end], lead[end:]
	}

	if token == "" {
		return input
	}

	expansion, ok := m.Get(token)
	if !ok {
		return input
	}

	return expansion + rest
}
