// Package sandbox is the interpreter for commands typed into the sandbox
// console. It resolves instant commands in place and routes everything else to
// the subsystem that owns it.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/alias"
	"github.com/dekarrin/branchling/internal/command"
	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/intl"
	"github.com/dekarrin/branchling/internal/level"
	"github.com/dekarrin/branchling/internal/outcome"
	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/internal/vcs"
)

// Patterns are the sandbox commands that are routed on
// events.ProcessSandboxCommand.
var Patterns = command.NamedPatterns{
	command.Named("reset solved", `^reset solved($|\s)`),
	command.Named("help", `^help( +general)?$|^\?$`),
	command.Named("reset", `^reset( +--forSolution)?$`),
	command.Named("delay", `^delay (\d+)$`),
	command.Named("clear", `^clear($|\s)`),
	command.Named("exit level", `^exit level($|\s)`),
	command.Named("sandbox", `^sandbox($|\s)`),
	command.Named("level", `^level\s?([a-zA-Z0-9]*)`),
	command.Named("levels", `^levels($|\s)`),
	command.Named("build level", `^build +level\s?([a-zA-Z0-9]*)( +--skipIntro)?$`),
	command.Named("export tree", `^export +tree$`),
	command.Named("importTreeNow", `^importTreeNow($|\s)`),
	command.Named("importLevelNow", `^importLevelNow($|\s)`),
	command.Named("import tree", `^import +tree$`),
	command.Named("import level", `^import +level$`),
	command.Named("undo", `^undo($|\s)`),
	command.Named("share permalink", `^share( +permalink)?$`),
}

func init() {
	if err := command.ValidateNamed(Patterns); err != nil {
		panic(fmt.Sprintf("sandbox patterns: %v", err))
	}
}

// Deps is everything an Interpreter needs from the rest of the application.
type Deps struct {
	// Translator gives the localized text of messages. Required.
	Translator *intl.Translator

	// Locale, Global, and Aliases are the session's stores. Required.
	Locale  store.Locale
	Global  store.GlobalState
	Aliases store.Aliases

	// Bus receives routed commands and notifications. Required.
	Bus *events.Bus

	// VCS describes the version-control commands. If nil, no version-control
	// commands are recognized.
	VCS vcs.Introspector

	// Shortcuts expands abbreviated commands before matching. If nil and VCS
	// is a vcs.ShortcutExpander, VCS is used.
	Shortcuts vcs.ShortcutExpander

	// Levels and LevelBuilder are the tables tried when nothing else matches.
	// If nil, level.Patterns and level.BuilderPatterns are used.
	Levels       command.NamedPatterns
	LevelBuilder command.NamedPatterns

	// Log receives debug output. If nil, nothing is logged.
	Log *log.Logger
}

// Interpreter processes sandbox commands for a single session. It is not safe
// for concurrent use.
//
// Interpreter should not be used directly; create one with New.
type Interpreter struct {
	tr        *intl.Translator
	locale    store.Locale
	global    store.GlobalState
	aliases   *alias.Map
	bus       *events.Bus
	vcs       vcs.Introspector
	shortcuts vcs.ShortcutExpander
	log       *log.Logger

	instants     command.Table
	engine       command.NamedPatterns
	levels       command.NamedPatterns
	levelBuilder command.NamedPatterns

	parseLevel        command.Parser
	parseLevelBuilder command.Parser
}

// New creates an Interpreter. It returns an error if a required dependency is
// missing or if any of the command tables is malformed.
func New(d Deps) (*Interpreter, error) {
	if d.Translator == nil {
		return nil, errors.New("translator is required")
	}
	if d.Locale == nil || d.Global == nil || d.Aliases == nil {
		return nil, errors.New("locale, global state, and alias stores are required")
	}
	if d.Bus == nil {
		return nil, errors.New("event bus is required")
	}

	ip := &Interpreter{
		tr:           d.Translator,
		locale:       d.Locale,
		global:       d.Global,
		aliases:      alias.New(d.Aliases),
		bus:          d.Bus,
		vcs:          d.VCS,
		shortcuts:    d.Shortcuts,
		log:          d.Log,
		levels:       d.Levels,
		levelBuilder: d.LevelBuilder,
	}
	if ip.log == nil {
		ip.log = log.New(io.Discard)
	}
	if ip.shortcuts == nil {
		if exp, ok := d.VCS.(vcs.ShortcutExpander); ok {
			ip.shortcuts = exp
		}
	}
	if ip.levels == nil {
		ip.levels = level.Patterns
		ip.parseLevel = level.Parser()
	} else {
		ip.parseLevel = command.GenParser(ip.levels, events.ProcessLevelCommand)
	}
	if ip.levelBuilder == nil {
		ip.levelBuilder = level.BuilderPatterns
		ip.parseLevelBuilder = level.BuilderParser()
	} else {
		ip.parseLevelBuilder = command.GenParser(ip.levelBuilder, events.ProcessLevelBuilderCommand)
	}

	ip.instants = ip.instantCommands()
	if err := command.Validate(ip.instants); err != nil {
		return nil, fmt.Errorf("instant commands: %w", err)
	}

	ip.engine = engineCommands(ip.vcs)
	if err := command.ValidateNamed(ip.engine); err != nil {
		return nil, fmt.Errorf("engine commands: %w", err)
	}
	if err := command.ValidateNamed(ip.levels); err != nil {
		return nil, fmt.Errorf("level commands: %w", err)
	}
	if err := command.ValidateNamed(ip.levelBuilder); err != nil {
		return nil, fmt.Errorf("level builder commands: %w", err)
	}

	return ip, nil
}

// engineCommands flattens the version-control tables into one ordered list
// named "<vcs> <method>".
func engineCommands(intro vcs.Introspector) command.NamedPatterns {
	if intro == nil {
		return nil
	}

	regexes := intro.RegexMap()
	var patterns command.NamedPatterns
	for _, sys := range intro.Subsystems() {
		for _, meth := range intro.Methods(sys) {
			patterns = append(patterns, command.NamedPattern{
				Name:    sys + " " + meth,
				Pattern: regexes[sys][meth],
			})
		}
	}
	return patterns
}

// Aliases returns the session's alias map.
func (ip *Interpreter) Aliases() *alias.Map {
	return ip.aliases
}

// Translator returns the translator used for messages.
func (ip *Interpreter) Translator() *intl.Translator {
	return ip.tr
}

// ProcessInstant matches input against the instant commands only. If one
// matches, it is performed and its Outcome is returned with ok = true.
//
// Instant handlers never give a CommandProcessError, so one coming back from
// the table always means nothing matched.
func (ip *Interpreter) ProcessInstant(input string) (o outcome.Outcome, ok bool) {
	o = command.Dispatch(input, ip.instants)
	if o.IsRoutingMiss() {
		return outcome.Outcome{}, false
	}
	ip.log.Debug("instant command", "input", input, "kind", o.Kind)
	return o, true
}

// Parse recognizes version-control commands and sandbox commands. Version-
// control commands are checked first. A miss gives a CommandProcessError.
func (ip *Interpreter) Parse(input string) (command.Routed, outcome.Outcome) {
	if r, ok := command.Route(input, ip.engine, events.ProcessEngineCommand); ok {
		return r, outcome.Outcome{}
	}
	if r, ok := command.Route(input, Patterns, events.ProcessSandboxCommand); ok {
		return r, outcome.Outcome{}
	}
	return command.Routed{}, outcome.CommandProcessError(input)
}

// OptimisticLevelParse recognizes level commands whether or not a level is
// currently being played. If no level is listening when the command is
// delivered, the user is told so then.
func (ip *Interpreter) OptimisticLevelParse(input string) (command.Routed, outcome.Outcome) {
	return ip.parseLevel(input)
}

// OptimisticLevelBuilderParse recognizes level-builder commands whether or not
// the level builder is open.
func (ip *Interpreter) OptimisticLevelBuilderParse(input string) (command.Routed, outcome.Outcome) {
	return ip.parseLevelBuilder(input)
}

// Process runs a single command through the full pipeline: alias and shortcut
// expansion, instant commands, then each routing table in turn. A recognized
// command is delivered on the bus and the Outcome of the listener that handles
// it is returned.
//
// Blank input gives an empty Result. Input that nothing recognizes gives a
// final CommandProcessError.
func (ip *Interpreter) Process(input string) outcome.Outcome {
	input = strings.TrimSpace(input)
	if input == "" {
		return outcome.Result("")
	}

	expanded := ip.aliases.Expand(input)
	if ip.shortcuts != nil {
		expanded = ip.shortcuts.ExpandShortcut(expanded)
	}
	if expanded != input {
		ip.log.Debug("expanded input", "input", input, "expanded", expanded)
	}

	if o, ok := ip.ProcessInstant(expanded); ok {
		return o
	}

	parsers := []command.Parser{ip.Parse, ip.OptimisticLevelParse, ip.OptimisticLevelBuilderParse}
	for _, parse := range parsers {
		r, o := parse(expanded)
		if o.IsRoutingMiss() {
			continue
		}
		return ip.deliver(r)
	}

	ip.log.Debug("unrecognized command", "input", expanded)
	msg := ip.tr.Str("git-error-command-not-supported", map[string]string{"command": expanded})
	o := outcome.Unrecognized(msg)
	return outcome.Wrap(o, nil, fmt.Sprintf("no table recognizes %q", expanded))
}

// ProcessChain splits line on the chain separator and processes each command
// in order, returning one Outcome per command. If done is not nil, it is
// called with each command and its Outcome before the next command starts.
func (ip *Interpreter) ProcessChain(line string, done func(cmd string, o outcome.Outcome)) []outcome.Outcome {
	cmds := command.SplitChain(line)
	results := make([]outcome.Outcome, 0, len(cmds))
	for _, c := range cmds {
		o := ip.Process(c)
		if done != nil {
			done(c, o)
		}
		results = append(results, o)
	}
	return results
}

func (ip *Interpreter) deliver(r command.Routed) outcome.Outcome {
	ip.log.Debug("routing command", "event", r.Event, "method", r.Method)

	o, ok := ip.bus.Request(r.Event, r)
	if !ok {
		msg := ip.tr.Str("command-no-listener", map[string]string{"command": r.Input})
		return outcome.Wrap(outcome.Warning(msg), nil, fmt.Sprintf("nothing handled %s for %q", r.Event, r.Method))
	}
	return o
}

// storeFailure gives the Outcome for an error from a store. The error is
// passed on unmodified: an Outcome is returned as-is, and any other error
// becomes an EngineError that wraps it.
func (ip *Interpreter) storeFailure(err error) outcome.Outcome {
	ip.log.Error("store failure", "err", err)
	return outcome.From(err)
}
