// Package events is the notification channel between the interpreter and the
// rest of the application. Events are delivered synchronously, in
// subscription order, on the goroutine that triggers them.
//
// A Bus is not safe for concurrent use; each session owns its own.
package events

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/outcome"
)

// Names of the events the interpreter triggers.
const (
	RefreshTree      = "refreshTree"
	RollupCommands   = "rollupCommands"
	CommandSubmitted = "commandSubmitted"

	ProcessSandboxCommand      = "processSandboxCommand"
	ProcessEngineCommand       = "processEngineCommand"
	ProcessLevelCommand        = "processLevelCommand"
	ProcessLevelBuilderCommand = "processLevelBuilderCommand"
)

// Listener receives the payload of an event. A listener that takes ownership
// of the event returns handled = true along with the Outcome of handling it;
// plain notification listeners return the zero Outcome and false.
type Listener func(payload any) (o outcome.Outcome, handled bool)

// Notify adapts a function that only observes an event into a Listener.
func Notify(fn func(payload any)) Listener {
	return func(payload any) (outcome.Outcome, bool) {
		fn(payload)
		return outcome.Outcome{}, false
	}
}

type subscription struct {
	id int
	fn Listener
}

// Bus dispatches events to listeners.
//
// Bus should not be used directly; create one with New.
type Bus struct {
	subs   map[string][]subscription
	nextID int
	log    *log.Logger
}

// New creates a new Bus. If logger is nil, nothing is logged.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{
		subs: map[string][]subscription{},
		log:  logger,
	}
}

// On subscribes fn to the named event. The returned function removes the
// subscription.
func (b *Bus) On(event string, fn Listener) (off func()) {
	id := b.nextID
	b.nextID++
	b.subs[event] = append(b.subs[event], subscription{id: id, fn: fn})

	return func() {
		subs := b.subs[event]
		for i := range subs {
			if subs[i].id == id {
				b.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// HasListeners returns whether anything is subscribed to the named event.
func (b *Bus) HasListeners(event string) bool {
	return len(b.subs[event]) > 0
}

// Trigger sends payload to every listener of the named event. It does not wait
// for acknowledgment and discards whatever the listeners return.
func (b *Bus) Trigger(event string, payload any) {
	b.log.Debug("trigger", "event", event, "payload", payload, "listeners", len(b.subs[event]))

	for _, s := range b.snapshot(event) {
		s.fn(payload)
	}
}

// Request sends payload to the listeners of the named event in order until one
// of them handles it, and returns that listener's Outcome. If no listener
// handles it, ok is false.
func (b *Bus) Request(event string, payload any) (o outcome.Outcome, ok bool) {
	b.log.Debug("request", "event", event, "payload", payload, "listeners", len(b.subs[event]))

	for _, s := range b.snapshot(event) {
		if o, handled := s.fn(payload); handled {
			return o, true
		}
	}
	return outcome.Outcome{}, false
}

// listeners may subscribe or unsubscribe while an event is being delivered.
func (b *Bus) snapshot(event string) []subscription {
	subs := b.subs[event]
	cp := make([]subscription, len(subs))
	copy(cp, subs)
	return cp
}
