// Package bls has services for interacting with the branchling server backend
// decoupled from the API that accesses it.
package bls

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/intl"
	"github.com/dekarrin/branchling/internal/sandbox"
	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/internal/store/inmem"
	"github.com/dekarrin/branchling/internal/vcs"
	"github.com/google/uuid"
)

// Service is a service for interacting with and modifying the branchling
// server backend. It performs the actions requested and makes calls to server
// persistence to preserve the state of every session.
//
// Service should not be used directly; create one with New.
type Service struct {
	// DB is the persistence store of the service.
	DB store.SessionRepository

	cat           *intl.Catalog
	cmds          *vcs.Commands
	defaultLocale string
	log           *log.Logger

	sessionLocks locks

	// catalogue is an interpreter over a scratch session used only to list
	// commands; catMu guards it.
	catMu     sync.Mutex
	catState  *store.Bound
	catalogue *sandbox.Interpreter
}

// New creates a new Service that keeps sessions in db. New sessions start in
// defaultLocale, which is resolved against the built-in string tables. If
// logger is nil, nothing is logged.
func New(db store.SessionRepository, defaultLocale string, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cat, err := intl.Load()
	if err != nil {
		return nil, fmt.Errorf("load string tables: %w", err)
	}
	cmds, err := vcs.Builtin()
	if err != nil {
		return nil, err
	}

	svc := &Service{
		DB:            db,
		cat:           cat,
		cmds:          cmds,
		defaultLocale: cat.Resolve(defaultLocale),
		log:           logger,
		sessionLocks:  locks{held: map[uuid.UUID]*lockEntry{}},
	}

	svc.catState, err = store.Open(context.Background(), inmem.NewSessionsRepository(), svc.defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("create catalogue session: %w", err)
	}
	svc.catalogue, _, err = svc.interpreter(svc.catState)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

// DefaultLocale returns the locale that new sessions start in.
func (svc *Service) DefaultLocale() string {
	return svc.defaultLocale
}

// interpreter builds an interpreter and its bus over the given session.
func (svc *Service) interpreter(b *store.Bound) (*sandbox.Interpreter, *events.Bus, error) {
	bus := events.New(svc.log)
	ip, err := sandbox.New(sandbox.Deps{
		Translator: svc.cat.Translator(b, svc.log),
		Locale:     b,
		Global:     b,
		Aliases:    b,
		Bus:        bus,
		VCS:        svc.cmds,
		Log:        svc.log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing interpreter: %w", err)
	}
	return ip, bus, nil
}

// locks holds one mutex per session that is currently in use.
type locks struct {
	mu   sync.Mutex
	held map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the session is free and returns the function that frees
// it again.
func (l *locks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.held[id]
	if !ok {
		entry = &lockEntry{}
		l.held[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
