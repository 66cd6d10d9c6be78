package repository

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/models"
)

type memoryEntry struct {
	state     *models.SessionState
	expiresAt time.Time
}

type MemoryStateRepository struct {
	states sync.Map
	ttl    time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, sessionID int64) (*models.SessionState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.states.Delete(sessionID)
		return nil, nil
	}
	return entry.state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.SessionState) error {
	r.states.Store(state.SessionID, &memoryEntry{
		state:     state,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, sessionID int64) error {
	r.states.Delete(sessionID)
	return nil
}
