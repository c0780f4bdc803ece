// Package vcs describes the commands that the version-control engines accept.
// The interpreter never runs them itself; it only needs to know what they look
// like so it can route them to the engine that does.
package vcs

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/branchling/internal/command"
)

//go:embed commands.toml
var builtinFiles embed.FS

// Option is a flag accepted by a method, such as "--amend".
type Option struct {
	Name string
}

// Introspector exposes the command tables of the version-control engines.
type Introspector interface {
	// RegexMap gives the pattern of every method, keyed by subsystem ("git")
	// and then by method ("commit").
	RegexMap() map[string]map[string]*regexp.Regexp

	// OptionMap gives the options of every method, keyed the same way as
	// RegexMap and then by option name. A method with no options has a nil
	// map.
	OptionMap() map[string]map[string]map[string]Option

	// Subsystems gives the names of the subsystems in the order their
	// commands are matched.
	Subsystems() []string

	// Methods gives the names of the methods of vcs in the order they are
	// matched.
	Methods(vcs string) []string

	// Options gives the options of a method in the order they were declared.
	Options(vcs, method string) []Option
}

// ShortcutExpander rewrites abbreviated commands such as "gc" into their full
// form.
type ShortcutExpander interface {
	ExpandShortcut(input string) string
}

// Method is a single command of a subsystem.
type Method struct {
	Name     string
	Pattern  *regexp.Regexp
	Shortcut *regexp.Regexp
	Help     string
	Options  []Option
}

// Subsystem is one version-control engine, such as git.
type Subsystem struct {
	Name    string
	Methods []Method
}

// Commands is a set of subsystem command tables. It implements Introspector
// and ShortcutExpander.
//
// Commands should not be used directly; create one with Builtin or Decode.
type Commands struct {
	subsystems []Subsystem
}

// Builtin returns the git and hg tables shipped with the binary.
func Builtin() (*Commands, error) {
	data, err := builtinFiles.ReadFile("commands.toml")
	if err != nil {
		return nil, fmt.Errorf("read builtin commands: %w", err)
	}
	cmds, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("builtin commands: %w", err)
	}
	return cmds, nil
}

// Decode reads command tables from TOML. Every regex and shortcut must compile
// and be anchored at the start of input, and names must be unique within their
// scope.
func Decode(data []byte) (*Commands, error) {
	var top topLevelCommands
	if _, err := toml.Decode(string(data), &top); err != nil {
		return nil, err
	}

	cmds := &Commands{}
	seenSys := map[string]bool{}
	for i, ms := range top.Subsystems {
		if ms.Name == "" {
			return nil, fmt.Errorf("subsystem %d: must have non-blank 'name' field", i)
		}
		if seenSys[ms.Name] {
			return nil, fmt.Errorf("subsystem %q: defined more than once", ms.Name)
		}
		seenSys[ms.Name] = true

		sys, err := parseSubsystem(ms)
		if err != nil {
			return nil, fmt.Errorf("subsystem %q: %w", ms.Name, err)
		}
		cmds.subsystems = append(cmds.subsystems, sys)
	}

	return cmds, nil
}

func parseSubsystem(ms marshaledSubsystem) (Subsystem, error) {
	sys := Subsystem{Name: ms.Name}

	var patterns command.NamedPatterns
	for i, mm := range ms.Methods {
		if mm.Name == "" {
			return sys, fmt.Errorf("method %d: must have non-blank 'name' field", i)
		}
		re, err := regexp.Compile(mm.Regex)
		if err != nil {
			return sys, fmt.Errorf("method %q: regex: %w", mm.Name, err)
		}
		patterns = append(patterns, command.NamedPattern{Name: mm.Name, Pattern: re})

		m := Method{Name: mm.Name, Pattern: re, Help: mm.Help}
		if mm.Shortcut != "" {
			m.Shortcut, err = regexp.Compile(mm.Shortcut)
			if err != nil {
				return sys, fmt.Errorf("method %q: shortcut: %w", mm.Name, err)
			}
			sc := command.NamedPatterns{{Name: mm.Name, Pattern: m.Shortcut}}
			if err := command.ValidateNamed(sc); err != nil {
				return sys, fmt.Errorf("shortcut: %w", err)
			}
		}
		for _, opt := range mm.Options {
			m.Options = append(m.Options, Option{Name: opt})
		}
		sys.Methods = append(sys.Methods, m)
	}

	if err := command.ValidateNamed(patterns); err != nil {
		return sys, err
	}
	return sys, nil
}

// RegexMap returns the pattern of every method keyed by subsystem and method
// name.
func (c *Commands) RegexMap() map[string]map[string]*regexp.Regexp {
	m := make(map[string]map[string]*regexp.Regexp, len(c.subsystems))
	for _, sys := range c.subsystems {
		methods := make(map[string]*regexp.Regexp, len(sys.Methods))
		for _, meth := range sys.Methods {
			methods[meth.Name] = meth.Pattern
		}
		m[sys.Name] = methods
	}
	return m
}

// OptionMap returns the options of every method keyed by subsystem, method
// name, and option name. Methods without options map to nil.
func (c *Commands) OptionMap() map[string]map[string]map[string]Option {
	m := make(map[string]map[string]map[string]Option, len(c.subsystems))
	for _, sys := range c.subsystems {
		methods := make(map[string]map[string]Option, len(sys.Methods))
		for _, meth := range sys.Methods {
			if len(meth.Options) == 0 {
				methods[meth.Name] = nil
				continue
			}
			opts := make(map[string]Option, len(meth.Options))
			for _, opt := range meth.Options {
				opts[opt.Name] = opt
			}
			methods[meth.Name] = opts
		}
		m[sys.Name] = methods
	}
	return m
}

// Subsystems returns the subsystem names in match order.
func (c *Commands) Subsystems() []string {
	names := make([]string, len(c.subsystems))
	for i := range c.subsystems {
		names[i] = c.subsystems[i].Name
	}
	return names
}

// Methods returns the method names of vcs in match order. It returns nil if
// there is no such subsystem.
func (c *Commands) Methods(vcs string) []string {
	sys, ok := c.Subsystem(vcs)
	if !ok {
		return nil
	}
	names := make([]string, len(sys.Methods))
	for i := range sys.Methods {
		names[i] = sys.Methods[i].Name
	}
	return names
}

// Options returns the options of method of vcs in declaration order. It
// returns nil if the method has none or does not exist.
func (c *Commands) Options(vcs, method string) []Option {
	sys, ok := c.Subsystem(vcs)
	if !ok {
		return nil
	}
	for _, meth := range sys.Methods {
		if meth.Name == method {
			return append([]Option(nil), meth.Options...)
		}
	}
	return nil
}

// Subsystem returns the full table of the named subsystem.
func (c *Commands) Subsystem(vcs string) (Subsystem, bool) {
	for _, sys := range c.subsystems {
		if sys.Name == vcs {
			return sys, true
		}
	}
	return Subsystem{}, false
}

// ExpandShortcut rewrites input if it begins with the shortcut of a method,
// replacing the shortcut with "<subsystem> <method>". Only the first matching
// shortcut is applied. Input without a shortcut is returned unchanged.
func (c *Commands) ExpandShortcut(input string) string {
	for _, sys := range c.subsystems {
		for _, meth := range sys.Methods {
			if meth.Shortcut == nil {
				continue
			}
			loc := meth.Shortcut.FindStringIndex(input)
			if loc == nil {
				continue
			}

			rest := strings.TrimSpace(input[loc[1]:])
			expanded := sys.Name + " " + meth.Name
			if rest != "" {
				expanded += " " + rest
			}
			return expanded
		}
	}
	return input
}
