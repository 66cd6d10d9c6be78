package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository serves session drafts from the primary
// (redis) repository and falls back to the in-memory one when it goes
// down, retrying the primary after a minute. Updates arrive from
// concurrent per-chat goroutines, so both health fields are atomic.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // UnixNano of the last failed primary attempt
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverStateRepository) shouldRetryPrimary() bool {
	return r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverStateRepository) GetState(ctx context.Context, sessionID int64) (*models.SessionState, error) {
	if !r.isDown.Load() {
		state, err := r.primary.GetState(ctx, sessionID)
		if err == nil {
			return state, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.shouldRetryPrimary() {
		state, err := r.primary.GetState(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return state, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetState(ctx, sessionID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.SessionState) error {
	if !r.isDown.Load() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetState(ctx, state)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, sessionID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearState(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearState(ctx, sessionID)
}
