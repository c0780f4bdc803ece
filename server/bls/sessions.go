package bls

import (
	"context"
	"errors"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/server/serr"
	"github.com/google/uuid"
)

// CreateSession creates a new session in the default locale and returns it.
//
// The returned error, if non-nil, will match serr.ErrDB.
func (svc *Service) CreateSession(ctx context.Context) (store.Session, error) {
	sesh, err := svc.DB.Create(ctx, store.Session{State: store.NewState(svc.defaultLocale)})
	if err != nil {
		return store.Session{}, serr.WrapDB("could not create session", err)
	}

	return sesh, nil
}

// GetSession returns the session with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) GetSession(ctx context.Context, id uuid.UUID) (store.Session, error) {
	sesh, err := svc.DB.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Session{}, serr.ErrNotFound
		}
		return store.Session{}, serr.WrapDB("could not get session", err)
	}

	return sesh, nil
}

// DeleteSession deletes the session with the given ID. It returns the session
// just after it was deleted. A session that is running commands is deleted
// once they finish.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) DeleteSession(ctx context.Context, id uuid.UUID) (store.Session, error) {
	unlock := svc.sessionLocks.lock(id)
	defer unlock()

	sesh, err := svc.DB.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Session{}, serr.ErrNotFound
		}
		return store.Session{}, serr.WrapDB("could not delete session", err)
	}

	return sesh, nil
}
