// Package outcome contains the result values produced by every command the
// interpreter handles. Success and failure are both Outcomes; a handler
// returns exactly one of them.
package outcome

import (
	"errors"
	"fmt"
)

// Kind is the kind of an Outcome.
type Kind int

const (
	// KindResult is a successful command with a message for the user.
	KindResult Kind = iota

	// KindWarning is a recoverable, user-correctable problem. No state was
	// changed.
	KindWarning

	// KindCommandProcessError means the input was not understood by the table
	// it was matched against. Callers use it to decide whether to try the next
	// table in the fallback chain.
	KindCommandProcessError

	// KindEngineError means a subsystem understood the command but rejected it
	// as semantically invalid.
	KindEngineError
)

func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindWarning:
		return "warning"
	case KindCommandProcessError:
		return "command-process-error"
	case KindEngineError:
		return "engine-error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of processing a single command. It includes a
// human-readable message to show in the console as well as a more technical
// description returned by Error().
//
// Outcome implements error so that it can be propagated untouched through
// code that only deals in errors, but a non-error Outcome (KindResult) is not
// a failure.
type Outcome struct {
	// Kind is what sort of outcome this is.
	Kind Kind

	// Message is the already-localized text to show to the user.
	Message string

	// Renderer is an optional hint for how Message should be rendered, such as
	// "html" for output that contains <br/> separators. Blank means plain
	// text.
	Renderer string

	// Final is set on a CommandProcessError that was produced after every
	// table in the fallback chain was tried. Callers must not retry it.
	Final bool

	technical string
	wrap      error
}

// Error returns the technical description of the Outcome.
func (o Outcome) Error() string {
	if o.technical != "" {
		return o.technical
	}
	return fmt.Sprintf("got %s(%q)", o.Kind, o.Message)
}

// Unwrap gives the error that the Outcome wraps, if it wraps one.
func (o Outcome) Unwrap() error {
	return o.wrap
}

// IsRoutingMiss returns whether o signals that the table it came from did not
// recognize the input and another table may be tried.
func (o Outcome) IsRoutingMiss() bool {
	return o.Kind == KindCommandProcessError && !o.Final
}

// IsFailure returns whether o is anything other than a success.
func (o Outcome) IsFailure() bool {
	return o.Kind != KindResult
}

// WithRenderer returns a copy of o with the renderer hint set.
func (o Outcome) WithRenderer(r string) Outcome {
	o.Renderer = r
	return o
}

// Result returns a successful Outcome with the given message.
func Result(msg string) Outcome {
	return Outcome{Kind: KindResult, Message: msg}
}

// Warning returns a warning Outcome with the given message.
func Warning(msg string) Outcome {
	return Outcome{Kind: KindWarning, Message: msg}
}

// CommandProcessError returns an Outcome signaling that the input was not
// recognized. msg is shown to the user only if no fallback recognizes the
// input either.
func CommandProcessError(msg string) Outcome {
	return Outcome{Kind: KindCommandProcessError, Message: msg}
}

// Unrecognized returns a final CommandProcessError, used once every table in
// the fallback chain has been tried.
func Unrecognized(msg string) Outcome {
	return Outcome{Kind: KindCommandProcessError, Message: msg, Final: true}
}

// EngineError returns an Outcome signaling that a subsystem rejected a
// command that it did recognize.
func EngineError(msg string) Outcome {
	return Outcome{Kind: KindEngineError, Message: msg}
}

// Wrap returns a copy of o that wraps the given error and uses technical as
// its Error() text. If technical is blank, err.Error() is used.
func Wrap(o Outcome, err error, technical string) Outcome {
	if technical == "" && err != nil {
		technical = err.Error()
	}
	o.wrap = err
	o.technical = technical
	return o
}

// Message gets the message to display to the console for the given error. If
// it is an Outcome, its human message is returned. Otherwise, err.Error() is
// returned.
func Message(err error) string {
	var o Outcome
	if errors.As(err, &o) {
		return o.Message
	}
	return err.Error()
}

// From converts an arbitrary error into an Outcome. An error that already is
// or wraps an Outcome gives that Outcome; anything else becomes an
// EngineError wrapping it.
func From(err error) Outcome {
	var o Outcome
	if errors.As(err, &o) {
		return o
	}
	return Wrap(EngineError(err.Error()), err, "")
}
