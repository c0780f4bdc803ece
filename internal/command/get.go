package command

import (
	"fmt"
)

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of user input. It will block until one
	// is ready. If there is an error or output is at end (EOF), the returned
	// string will be empty, otherwise it will always be non-empty unless
	// blank lines are allowed.
	//
	// When error is io.EOF, string will always be empty. If EOF was encountered
	// on a call but some input was received, the input will be returned and
	// error will be nil, and the next call to ReadCommand will return "",
	// io.EOF.
	ReadCommand() (string, error)

	// AllowBlank sets whether ReadCommand may return a blank line.
	AllowBlank(allow bool)

	// Close performs any operations required to clean the resources created by
	// the Reader. It should be called at least once when the Reader is no
	// longer needed.
	Close() error
}

// Get obtains the next chain of commands from input by reading from the
// provided Reader. Lines are read until one holds at least one command once
// split on ChainSeparator; a line of only separators such as ";;" is skipped.
//
// Note that this function does not check whether any command is recognized,
// only that some non-empty command text was entered.
func Get(cmdStream Reader) ([]string, error) {
	for {
		input, err := cmdStream.ReadCommand()
		if err != nil {
			return nil, fmt.Errorf("could not get input: %w", err)
		}

		cmds := SplitChain(input)
		if len(cmds) > 0 {
			return cmds, nil
		}
	}
}
