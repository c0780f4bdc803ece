// Package branchling contains a CLI-driven engine that reads sandbox commands
// from an input stream and writes their results until the user quits.
package branchling

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/dekarrin/branchling/internal/command"
	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/helperbar"
	"github.com/dekarrin/branchling/internal/input"
	"github.com/dekarrin/branchling/internal/intl"
	"github.com/dekarrin/branchling/internal/outcome"
	"github.com/dekarrin/branchling/internal/sandbox"
	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/internal/store/inmem"
	"github.com/dekarrin/branchling/internal/vcs"
	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
)

const consoleOutputWidth = 80

// maxDelayMillis is the longest pause allowed between chained commands.
const maxDelayMillis = 60000

// Options configures an Engine.
type Options struct {
	// ForceDirect reads input directly from the input stream even when it is
	// a terminal.
	ForceDirect bool

	// Repository is where the session is kept. If nil, an in-memory
	// repository is used and the session is lost on exit.
	Repository store.SessionRepository

	// Session is the ID of an existing session in Repository to resume. If
	// it is uuid.Nil, a new session is created.
	Session uuid.UUID

	// Locale is the default locale. If blank, intl.Fallback is used.
	Locale string

	// LocalePicker shows the language picker before the first prompt.
	LocalePicker bool

	// HistoryFile keeps readline history between runs. Only used in
	// interactive mode.
	HistoryFile string

	// Log receives operational logging. If nil, nothing is logged.
	Log *log.Logger
}

// consoleReader is a command.Reader whose history can be added to.
type consoleReader interface {
	command.Reader
	AddHistory(line string) error
}

// Engine runs the sandbox interpreter from an interactive shell attached to an
// input stream and an output stream.
type Engine struct {
	in          consoleReader
	out         *bufio.Writer
	interactive bool
	forceDirect bool
	running     bool

	repo     store.SessionRepository
	ownsRepo bool
	state    *store.Bound
	bus      *events.Bus
	tr       *intl.Translator
	interp   *sandbox.Interpreter
	picker   *helperbar.Bar
	log      *log.Logger

	history []string
	undo    []store.State
	delay   time.Duration

	// set by listeners while a command is processed
	rolledUp bool
	undid    bool
}

// New creates a new engine ready to operate on the given input and output
// streams. If nil is given for the input stream, stdin is used; if nil is
// given for the output stream, stdout is used. Readline is used only when both
// are the process's terminal streams and opts.ForceDirect is not set.
func New(inputStream io.Reader, outputStream io.Writer, opts Options) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		out:         bufio.NewWriter(outputStream),
		forceDirect: opts.ForceDirect,
		repo:        opts.Repository,
		log:         opts.Log,
	}
	if eng.log == nil {
		eng.log = log.New(io.Discard)
	}
	if eng.repo == nil {
		eng.repo = inmem.NewSessionsRepository()
		eng.ownsRepo = true
	}

	cat, err := intl.Load()
	if err != nil {
		return nil, fmt.Errorf("load string tables: %w", err)
	}
	defLocale := intl.Fallback
	if opts.Locale != "" {
		defLocale = cat.Resolve(opts.Locale)
	}

	ctx := context.Background()
	if opts.Session != uuid.Nil {
		eng.state, err = store.Bind(ctx, eng.repo, opts.Session, defLocale)
	} else {
		eng.state, err = store.Open(ctx, eng.repo, defLocale)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing session: %w", err)
	}
	eng.log.Debug("session ready", "id", eng.state.ID(), "locale", eng.state.Locale())

	cmds, err := vcs.Builtin()
	if err != nil {
		return nil, err
	}

	eng.bus = events.New(eng.log)
	eng.tr = cat.Translator(eng.state, eng.log)
	eng.interp, err = sandbox.New(sandbox.Deps{
		Translator: eng.tr,
		Locale:     eng.state,
		Global:     eng.state,
		Aliases:    eng.state,
		Bus:        eng.bus,
		VCS:        cmds,
		Log:        eng.log,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing interpreter: %w", err)
	}

	eng.interactive = !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout
	if eng.interactive {
		eng.in, err = input.NewInteractiveReader(input.InteractiveOptions{
			HistoryFile: opts.HistoryFile,
			Completions: eng.completions(),
		})
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	eng.bus.On(events.CommandSubmitted, events.Notify(eng.onCommandSubmitted))
	eng.bus.On(events.RollupCommands, events.Notify(eng.onRollup))
	eng.bus.On(events.RefreshTree, events.Notify(eng.onRefreshTree))
	eng.bus.On(events.ProcessSandboxCommand, eng.handleSandboxCommand)
	eng.bus.On(events.ProcessEngineCommand, eng.handleUnavailable)

	if opts.LocalePicker {
		eng.picker = helperbar.IntlBar(eng.bus, eng.tr, func() { eng.picker = nil })
	}

	return eng, nil
}

// SessionID returns the ID of the session the engine is using. It can be
// given in Options.Session to resume the session later.
func (eng *Engine) SessionID() uuid.UUID {
	return eng.state.ID()
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	if err := eng.in.Close(); err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}
	if eng.ownsRepo {
		if err := eng.repo.Close(); err != nil {
			return fmt.Errorf("close session store: %w", err)
		}
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and processing them
// until "quit" or "exit" is entered or input ends.
func (eng *Engine) RunUntilQuit() error {
	introMsg := wrap(eng.tr.Str("console-welcome", nil))
	if eng.forceDirect {
		introMsg += "\n(direct input mode)"
	}
	if err := eng.writeLine(introMsg + "\n"); err != nil {
		return err
	}

	eng.running = true
	defer func() {
		eng.running = false
	}()

	if eng.picker != nil {
		if err := eng.runPicker(); err != nil {
			return err
		}
	}

	for eng.running {
		cmds, err := command.Get(eng.in)
		if err != nil {
			if endOfInput(err) {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		if err := eng.runChain(cmds); err != nil {
			return err
		}
	}

	return eng.writeLine(eng.tr.Str("console-goodbye", nil))
}

func (eng *Engine) runPicker() error {
	if err := eng.writeLine(eng.picker.Render(consoleOutputWidth)); err != nil {
		return err
	}
	if err := eng.writeLine(eng.tr.Str("console-picker-choice", nil)); err != nil {
		return err
	}

	eng.in.AllowBlank(true)
	defer eng.in.AllowBlank(false)

	for eng.picker != nil {
		line, err := eng.in.ReadCommand()
		if err != nil {
			if endOfInput(err) {
				eng.running = false
				return nil
			}
			return fmt.Errorf("get picker choice: %w", err)
		}

		if line == "" {
			eng.picker.OnExit()
			break
		}

		n, err := strconv.Atoi(line)
		if err == nil {
			err = eng.picker.Choose(n)
		}
		if err != nil {
			if err := eng.writeLine(eng.tr.Str("console-picker-choice", nil)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (eng *Engine) runChain(cmds []string) error {
	for i, c := range cmds {
		if c == "quit" || c == "exit" {
			eng.running = false
			return nil
		}
		if i > 0 && eng.delay > 0 {
			time.Sleep(eng.delay)
		}
		if err := eng.runCommand(c); err != nil {
			return err
		}
	}
	return nil
}

func (eng *Engine) runCommand(c string) error {
	before := eng.state.State()
	eng.rolledUp = false
	eng.undid = false

	o := eng.interp.Process(c)
	eng.log.Debug("processed command", "input", c, "kind", o.Kind)

	if !eng.undid && !before.Equal(eng.state.State()) {
		eng.undo = append(eng.undo, before)
	}
	if !eng.rolledUp {
		eng.history = append(eng.history, c)
	}

	if o.Message == "" {
		return nil
	}
	return eng.writeLine(consoleText(o.Message))
}

func (eng *Engine) onCommandSubmitted(payload any) {
	line, ok := payload.(string)
	if !ok {
		return
	}
	if err := eng.runChain(command.SplitChain(line)); err != nil {
		eng.log.Error("submitted command failed", "command", line, "err", err)
	}
}

// onRollup combines the last N commands in the history into one.
func (eng *Engine) onRollup(payload any) {
	s, _ := payload.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return
	}
	if n > len(eng.history) {
		n = len(eng.history)
	}
	if n == 0 {
		return
	}

	start := len(eng.history) - n
	joined := strings.Join(eng.history[start:], "; ")
	eng.history = append(eng.history[:start], joined)
	eng.rolledUp = true

	if err := eng.in.AddHistory(joined); err != nil {
		eng.log.Warn("could not add to history", "err", err)
	}
}

func (eng *Engine) onRefreshTree(any) {
	dir := eng.tr.Str("console-tree-down", nil)
	if eng.state.FlipTreeY() {
		dir = eng.tr.Str("console-tree-up", nil)
	}
	msg := eng.tr.Str("console-tree-orientation", map[string]string{"direction": dir})
	if err := eng.writeLine(wrap(msg)); err != nil {
		eng.log.Error("could not write output", "err", err)
	}
}

// handleSandboxCommand performs the sandbox commands that make sense without a
// visualization.
func (eng *Engine) handleSandboxCommand(payload any) (outcome.Outcome, bool) {
	r, ok := payload.(command.Routed)
	if !ok {
		return outcome.Outcome{}, false
	}

	switch r.Method {
	case "help":
		return outcome.Result(eng.tr.Str("console-help", nil)), true
	case "clear":
		if eng.interactive {
			if _, err := eng.out.WriteString("\x1b[H\x1b[2J"); err != nil {
				return outcome.From(fmt.Errorf("clear screen: %w", err)), true
			}
		}
		return outcome.Result(eng.tr.Str("console-cleared", nil)), true
	case "delay":
		// the pattern only admits digits, so a parse failure is out of range
		ms, err := strconv.Atoi(r.Captures[1])
		if err != nil || ms > maxDelayMillis {
			eng.delay = maxDelayMillis * time.Millisecond
			limit := strconv.Itoa(maxDelayMillis)
			return outcome.Warning(eng.tr.Str("console-delay-too-long", map[string]string{"ms": limit})), true
		}
		eng.delay = time.Duration(ms) * time.Millisecond
		return outcome.Result(eng.tr.Str("console-delay", map[string]string{"ms": r.Captures[1]})), true
	case "sandbox":
		return outcome.Result(eng.tr.Str("console-sandbox", nil)), true
	case "levels", "level":
		return outcome.Warning(eng.tr.Str("console-levels", nil)), true
	case "exit level":
		return outcome.Warning(eng.tr.Str("console-not-in-level", nil)), true
	case "undo":
		return eng.undoLast(), true
	case "reset":
		eng.history = nil
		eng.undo = nil
		return outcome.Result(eng.tr.Str("console-reset", nil)), true
	default:
		return eng.handleUnavailable(payload)
	}
}

func (eng *Engine) handleUnavailable(payload any) (outcome.Outcome, bool) {
	r, ok := payload.(command.Routed)
	if !ok {
		return outcome.Outcome{}, false
	}
	msg := eng.tr.Str("console-method-unavailable", map[string]string{"command": r.Method})
	return outcome.Warning(msg), true
}

// undoLast restores the settings as they were before the last command that
// changed them.
func (eng *Engine) undoLast() outcome.Outcome {
	if len(eng.undo) == 0 {
		return outcome.Warning(eng.tr.Str("console-undo-empty", nil))
	}

	prev := eng.undo[len(eng.undo)-1]
	if err := eng.state.Restore(prev); err != nil {
		return outcome.Wrap(outcome.EngineError(eng.tr.Str("settings-not-saved", nil)), err, "")
	}
	eng.undo = eng.undo[:len(eng.undo)-1]
	eng.undid = true

	return outcome.Result(eng.tr.Str("console-undo", nil))
}

func (eng *Engine) completions() []string {
	var names []string
	for _, e := range eng.interp.Catalogue() {
		names = append(names, e.Name)
	}
	return append(names, "show commands", "quit", "exit")
}

func (eng *Engine) writeLine(s string) error {
	if _, err := eng.out.WriteString(s + "\n"); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

// consoleText converts a message that may contain <br/> and &nbsp; markup into
// plain text wrapped to the console width.
func consoleText(msg string) string {
	lines := strings.Split(msg, "\n")
	for i := range lines {
		if strings.TrimSpace(lines[i]) == "<br/>" {
			lines[i] = ""
			continue
		}
		lines[i] = wrap(strings.ReplaceAll(lines[i], "&nbsp;", " "))
	}
	return strings.Join(lines, "\n")
}

func wrap(s string) string {
	if len([]rune(s)) <= consoleOutputWidth {
		return s
	}
	return rosed.Edit(s).Wrap(consoleOutputWidth).String()
}

func endOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
