// Package inmem provides a SessionRepository that keeps everything in memory.
// Nothing is persisted past the life of the process.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/google/uuid"
)

// NewSessionsRepository creates a new, empty in-memory Sessions repo.
func NewSessionsRepository() *InMemorySessionsRepository {
	return &InMemorySessionsRepository{
		seshes: make(map[uuid.UUID]store.Session),
	}
}

type InMemorySessionsRepository struct {
	mtx    sync.RWMutex
	seshes map[uuid.UUID]store.Session
}

func (imsr *InMemorySessionsRepository) Close() error {
	return nil
}

func (imsr *InMemorySessionsRepository) Create(ctx context.Context, s store.Session) (store.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	now := time.Now()
	s.ID = newUUID
	s.Created = now
	s.Updated = now
	s.State = s.State.Copy()

	imsr.seshes[s.ID] = s

	return s, nil
}

func (imsr *InMemorySessionsRepository) GetAll(ctx context.Context) ([]store.Session, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	all := make([]store.Session, 0, len(imsr.seshes))
	for _, s := range imsr.seshes {
		s.State = s.State.Copy()
		all = append(all, s)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})

	return all, nil
}

func (imsr *InMemorySessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (store.Session, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	s, ok := imsr.seshes[id]
	if !ok {
		return store.Session{}, store.ErrNotFound
	}

	s.State = s.State.Copy()
	return s, nil
}

func (imsr *InMemorySessionsRepository) Update(ctx context.Context, id uuid.UUID, s store.Session) (store.Session, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	existing, ok := imsr.seshes[id]
	if !ok {
		return store.Session{}, store.ErrNotFound
	}

	if s.ID != id {
		// that's okay but it had better not already exist
		if _, ok := imsr.seshes[s.ID]; ok {
			return store.Session{}, store.ErrConstraintViolation
		}
		delete(imsr.seshes, id)
	}

	s.Created = existing.Created
	s.Updated = time.Now()
	s.State = s.State.Copy()
	imsr.seshes[s.ID] = s

	return s, nil
}

func (imsr *InMemorySessionsRepository) Delete(ctx context.Context, id uuid.UUID) (store.Session, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	s, ok := imsr.seshes[id]
	if !ok {
		return store.Session{}, store.ErrNotFound
	}

	delete(imsr.seshes, id)

	return s, nil
}
