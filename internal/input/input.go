// Package input contains the readers that get branchling commands from a
// console or any other source of lines.
package input

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

// Prompt is shown before each line read by an InteractiveReader.
const Prompt = "$ "

// DirectReader implements command.Reader and reads commands from any
// io.Reader. It does not sanitize the input of control and escape sequences,
// so it is best for piped input and tests.
//
// DirectReader should not be used directly; create one with NewDirectReader.
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// NewDirectReader creates a DirectReader that reads lines from r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// ReadCommand reads the next line. Unless blanks are allowed, blank lines are
// skipped. At end of input the returned string is empty and the error is
// io.EOF.
func (dr *DirectReader) ReadCommand() (string, error) {
	for {
		line, err := dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || dr.blanksAllowed {
			return line, nil
		}
	}
}

// AllowBlank sets whether a blank line is returned by ReadCommand. By default
// it is not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AddHistory does nothing; a DirectReader has no history. It exists so that a
// DirectReader can stand in for an InteractiveReader.
func (dr *DirectReader) AddHistory(line string) error {
	return nil
}

// Close does nothing. It is present so DirectReader implements
// command.Reader, and callers should still call it.
func (dr *DirectReader) Close() error {
	return nil
}

// InteractiveOptions configures an InteractiveReader.
type InteractiveOptions struct {
	// HistoryFile is where command history is kept between runs. Blank keeps
	// history in memory only.
	HistoryFile string

	// Completions are the commands offered for tab completion. Each is split
	// on spaces into words, so "git commit" completes "git" and then
	// "commit".
	Completions []string
}

// InteractiveReader implements command.Reader and reads commands from stdin
// using a go implementation of GNU Readline. This keeps input clear of editing
// escape sequences and gives the user history and tab completion, so it
// should be used when stdin is a TTY.
//
// InteractiveReader should not be used directly; create one with
// NewInteractiveReader.
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
}

// NewInteractiveReader initializes readline. The returned InteractiveReader
// must have Close called on it to restore the terminal.
func NewInteractiveReader(opts InteractiveOptions) (*InteractiveReader, error) {
	cfg := &readline.Config{
		Prompt:            Prompt,
		HistoryFile:       opts.HistoryFile,
		HistorySearchFold: true,
	}
	if len(opts.Completions) > 0 {
		cfg.AutoComplete = completer(opts.Completions)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{rl: rl}, nil
}

// ReadCommand reads the next line from the terminal. Unless blanks are
// allowed, blank lines are skipped. At end of input the returned string is
// empty and the error is io.EOF; on ctrl-C it is readline.ErrInterrupt.
func (ir *InteractiveReader) ReadCommand() (string, error) {
	for {
		line, err := ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || ir.blanksAllowed {
			return line, nil
		}
	}
}

// AllowBlank sets whether a blank line is returned by ReadCommand. By default
// it is not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// AddHistory adds line to the readline history as though it had been typed.
func (ir *InteractiveReader) AddHistory(line string) error {
	return ir.rl.SaveHistory(line)
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.rl.SetPrompt(p)
}

// Close restores the terminal and releases readline resources.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// completer builds a readline prefix tree from space-separated commands.
func completer(commands []string) *readline.PrefixCompleter {
	root := &node{children: map[string]*node{}}
	for _, c := range commands {
		cur := root
		for _, word := range strings.Fields(c) {
			next, ok := cur.children[word]
			if !ok {
				next = &node{children: map[string]*node{}}
				cur.children[word] = next
			}
			cur = next
		}
	}
	return readline.NewPrefixCompleter(root.items()...)
}

type node struct {
	children map[string]*node
}

func (n *node) items() []readline.PrefixCompleterInterface {
	words := make([]string, 0, len(n.children))
	for w := range n.children {
		words = append(words, w)
	}
	sort.Strings(words)

	items := make([]readline.PrefixCompleterInterface, len(words))
	for i, w := range words {
		items[i] = readline.PcItem(w, n.children[w].items()...)
	}
	return items
}
