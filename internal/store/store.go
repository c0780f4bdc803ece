// Package store provides the persistent application state that the
// interpreter reads and writes through accessors: the active locale, global UI
// flags, and the alias map.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
)

// Locale gives access to the active locale.
type Locale interface {
	// DefaultLocale is the locale that "locale reset" returns to.
	DefaultLocale() string

	// Locale is the currently active locale.
	Locale() string

	// SetLocale changes the active locale. The value is not validated.
	SetLocale(loc string) error
}

// GlobalState gives access to global UI flags.
type GlobalState interface {
	FlipTreeY() bool
	SetFlipTreeY(flip bool) error
	DisableLevelInstructions() error
	LevelInstructionsDisabled() bool
}

// Aliases gives access to the user's alias map.
type Aliases interface {
	// AliasMap returns a copy of every defined alias.
	AliasMap() map[string]string

	// AddAlias defines name to expand to expansion, replacing any existing
	// definition.
	AddAlias(name, expansion string) error

	// RemoveAlias removes the alias. Removing an alias that does not exist is
	// not an error.
	RemoveAlias(name string) error
}

// Session is a single user's interpreter state as it is persisted.
type Session struct {
	ID      uuid.UUID
	State   State
	Created time.Time
	Updated time.Time
}

// SessionRepository persists Sessions.
type SessionRepository interface {

	// Create creates a new Session. All attributes except for auto-generated
	// fields are taken from the provided Session.
	Create(ctx context.Context, s Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	GetAll(ctx context.Context) ([]Session, error)
	Update(ctx context.Context, id uuid.UUID, s Session) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) (Session, error)
	Close() error
}
