package bls

import (
	"context"
	"errors"

	"github.com/dekarrin/branchling/internal/command"
	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/outcome"
	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/server/serr"
	"github.com/google/uuid"
)

// routedEvents are the events a server session hands back to its client to
// perform. The interpreter only recognizes these commands; the client owns
// the tree and the levels they act on.
var routedEvents = []string{
	events.ProcessEngineCommand,
	events.ProcessSandboxCommand,
	events.ProcessLevelCommand,
	events.ProcessLevelBuilderCommand,
}

// CommandResult is the result of one command in a chain.
type CommandResult struct {
	// Input is the command as it was given, before alias expansion.
	Input string

	// Outcome is what the interpreter produced.
	Outcome outcome.Outcome

	// Route is set when the command was recognized but must be carried out by
	// the client.
	Route *command.Routed

	// Signals are the notification events the command triggered, in order.
	Signals []Signal
}

// Signal is a notification event the client must act on, such as redrawing
// the tree.
type Signal struct {
	Event   string
	Payload string
}

// RunCommands processes a chain of commands in the session with the given ID
// and returns one CommandResult per command. Commands of one session never
// run concurrently.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) RunCommands(ctx context.Context, id uuid.UUID, line string) ([]CommandResult, error) {
	unlock := svc.sessionLocks.lock(id)
	defer unlock()

	b, err := store.Bind(ctx, svc.DB, id, svc.defaultLocale)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, serr.ErrNotFound
		}
		return nil, serr.WrapDB("could not load session", err)
	}

	ip, bus, err := svc.interpreter(b)
	if err != nil {
		return nil, err
	}

	// listeners fill in pending while a command runs; it is moved into the
	// results once the command is done
	var pending CommandResult
	for _, ev := range routedEvents {
		bus.On(ev, func(payload any) (outcome.Outcome, bool) {
			r, ok := payload.(command.Routed)
			if !ok {
				return outcome.Outcome{}, false
			}
			pending.Route = &r
			return outcome.Result(""), true
		})
	}
	bus.On(events.RefreshTree, events.Notify(func(any) {
		pending.Signals = append(pending.Signals, Signal{Event: events.RefreshTree})
	}))
	bus.On(events.RollupCommands, events.Notify(func(payload any) {
		n, _ := payload.(string)
		pending.Signals = append(pending.Signals, Signal{Event: events.RollupCommands, Payload: n})
	}))

	var results []CommandResult
	ip.ProcessChain(line, func(cmd string, o outcome.Outcome) {
		pending.Input = cmd
		pending.Outcome = o
		results = append(results, pending)
		pending = CommandResult{}
	})

	svc.log.Debug("ran commands", "session", id, "count", len(results))
	return results, nil
}

// Commands returns the display lines of the command catalogue in the given
// locale. A blank locale gives the default locale; any other is matched to the
// closest available string table.
func (svc *Service) Commands(locale string) []string {
	loc := svc.defaultLocale
	if locale != "" {
		loc = svc.cat.Resolve(locale)
	}

	svc.catMu.Lock()
	defer svc.catMu.Unlock()

	if err := svc.catState.SetLocale(loc); err != nil {
		svc.log.Warn("could not switch catalogue locale", "locale", loc, "err", err)
	}
	return svc.catalogue.ShowCommands()
}
