package sandbox

import (
	"regexp"

	"github.com/dekarrin/branchling/internal/vcs"
)

// hiddenCommands are never listed in the catalogue even though they can be
// typed.
var hiddenCommands = []string{"mobileAlert"}

const optionIndent = "&nbsp;&nbsp;&nbsp;&nbsp;"

// CatalogueEntry is a single command as listed by "show commands".
type CatalogueEntry struct {
	Name string

	// Pattern is the pattern that recognizes the command. It is nil for an
	// instant command whose name replaced an entry of another table.
	Pattern *regexp.Regexp

	// Options are the long options of a version-control method, or for an
	// instant command, its help text as the only element.
	Options []string

	// Help is the help text of an instant command.
	Help string

	// Instant is whether the command is performed in place rather than
	// routed.
	Instant bool
}

// catalogue is an insertion-ordered set of entries. Adding a name that is
// already present replaces its entry but keeps its original position.
type catalogue struct {
	entries []CatalogueEntry
	index   map[string]int
}

func (c *catalogue) put(e CatalogueEntry) {
	if c.index == nil {
		c.index = map[string]int{}
	}
	if i, ok := c.index[e.Name]; ok {
		c.entries[i] = e
		return
	}
	c.index[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
}

func (c *catalogue) remove(name string) {
	i, ok := c.index[name]
	if !ok {
		return
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, name)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].Name] = j
	}
}

// Catalogue returns every command that can be listed, in display order: level
// commands, sandbox commands, version-control methods, and then the named
// instant commands.
func (ip *Interpreter) Catalogue() []CatalogueEntry {
	var cat catalogue

	for _, np := range ip.levels {
		cat.put(CatalogueEntry{Name: np.Name, Pattern: np.Pattern})
	}
	for _, np := range Patterns {
		cat.put(CatalogueEntry{Name: np.Name, Pattern: np.Pattern})
	}

	for _, np := range ip.engine {
		cat.put(CatalogueEntry{Name: np.Name, Pattern: np.Pattern})
	}
	for _, name := range hiddenCommands {
		cat.remove(name)
	}

	if ip.vcs != nil {
		for _, sys := range ip.vcs.Subsystems() {
			for _, meth := range ip.vcs.Methods(sys) {
				i, ok := cat.index[sys+" "+meth]
				if !ok {
					continue
				}
				cat.entries[i].Options = longOptions(ip.vcs.Options(sys, meth))
			}
		}
	}

	for _, e := range ip.instants {
		if e.Name == "" {
			continue
		}
		cat.put(CatalogueEntry{
			Name:    e.Name,
			Options: []string{e.Help},
			Help:    e.Help,
			Instant: true,
		})
	}

	return cat.entries
}

// ShowCommands gives the lines of the "show commands" listing.
func (ip *Interpreter) ShowCommands() []string {
	lines := []string{
		ip.tr.Str("show-all-commands", nil),
		"<br/>",
	}

	for _, e := range ip.Catalogue() {
		if e.Instant {
			lines = append(lines, "<br/>")
		}
		lines = append(lines, e.Name)
		for _, opt := range e.Options {
			lines = append(lines, optionIndent+opt)
		}
		if e.Instant {
			lines = append(lines, "<br/>")
		}
	}

	return lines
}

// longOptions drops single-character options such as "-".
func longOptions(opts []vcs.Option) []string {
	var long []string
	for _, o := range opts {
		if len(o.Name) > 1 {
			long = append(long, o.Name)
		}
	}
	return long
}
