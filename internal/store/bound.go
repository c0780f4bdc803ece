package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Bound implements Locale, GlobalState, and Aliases for a single Session held
// in a SessionRepository. Every mutation is written through to the
// repository before it returns, so a failed write leaves the in-memory values
// unchanged.
//
// Bound should not be used directly; create one with Bind.
type Bound struct {
	ctx           context.Context
	repo          SessionRepository
	sesh          Session
	defaultLocale string
}

// Bind loads the Session with the given ID from repo and returns accessors
// for it. defaultLocale is what DefaultLocale reports.
func Bind(ctx context.Context, repo SessionRepository, id uuid.UUID, defaultLocale string) (*Bound, error) {
	sesh, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sesh.State.Aliases == nil {
		sesh.State.Aliases = map[string]string{}
	}

	return &Bound{
		ctx:           ctx,
		repo:          repo,
		sesh:          sesh,
		defaultLocale: defaultLocale,
	}, nil
}

// Open creates a new Session in repo with defaultLocale active and binds to
// it.
func Open(ctx context.Context, repo SessionRepository, defaultLocale string) (*Bound, error) {
	sesh, err := repo.Create(ctx, Session{State: NewState(defaultLocale)})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return Bind(ctx, repo, sesh.ID, defaultLocale)
}

// ID returns the ID of the bound Session.
func (b *Bound) ID() uuid.UUID {
	return b.sesh.ID
}

// State returns a copy of the current State of the bound Session.
func (b *Bound) State() State {
	return b.sesh.State.Copy()
}

func (b *Bound) DefaultLocale() string {
	return b.defaultLocale
}

func (b *Bound) Locale() string {
	return b.sesh.State.Locale
}

func (b *Bound) SetLocale(loc string) error {
	st := b.sesh.State.Copy()
	st.Locale = loc
	return b.commit(st)
}

func (b *Bound) FlipTreeY() bool {
	return b.sesh.State.FlipTreeY
}

func (b *Bound) SetFlipTreeY(flip bool) error {
	st := b.sesh.State.Copy()
	st.FlipTreeY = flip
	return b.commit(st)
}

func (b *Bound) DisableLevelInstructions() error {
	st := b.sesh.State.Copy()
	st.LevelInstructionsDisabled = true
	return b.commit(st)
}

func (b *Bound) LevelInstructionsDisabled() bool {
	return b.sesh.State.LevelInstructionsDisabled
}

func (b *Bound) AliasMap() map[string]string {
	return b.sesh.State.Copy().Aliases
}

func (b *Bound) AddAlias(name, expansion string) error {
	st := b.sesh.State.Copy()
	st.Aliases[name] = expansion
	return b.commit(st)
}

func (b *Bound) RemoveAlias(name string) error {
	if _, ok := b.sesh.State.Aliases[name]; !ok {
		return nil
	}
	st := b.sesh.State.Copy()
	delete(st.Aliases, name)
	return b.commit(st)
}

// Restore replaces every value of the session with those in st.
func (b *Bound) Restore(st State) error {
	if b.sesh.State.Equal(st) {
		return nil
	}
	return b.commit(st.Copy())
}

func (b *Bound) commit(st State) error {
	updated := b.sesh
	updated.State = st

	saved, err := b.repo.Update(b.ctx, b.sesh.ID, updated)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if saved.State.Aliases == nil {
		saved.State.Aliases = map[string]string{}
	}
	b.sesh = saved
	return nil
}
