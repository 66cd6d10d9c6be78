package repository

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetState(ctx context.Context, sessionID int64) (*models.SessionState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionState), args.Error(1)
}

func (m *mockRepo) SetState(ctx context.Context, state *models.SessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockRepo) ClearState(ctx context.Context, sessionID int64) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func TestFailoverStateRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		state := &models.SessionState{SessionID: 1}
		primary.On("GetState", ctx, int64(1)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		state := &models.SessionState{SessionID: 2}
		primary.On("GetState", ctx, int64(2)).Return(nil, errors.New("fail")).Once()
		fallback.On("GetState", ctx, int64(2)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		state := &models.SessionState{SessionID: 3}
		primary.On("GetState", ctx, int64(3)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		primary.On("GetState", ctx, int64(33)).Return(nil, errors.New("still fail")).Once()
		fallback.On("GetState", ctx, int64(33)).Return(nil, nil).Once()

		_, err := repo.GetState(ctx, 33)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetStateSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.SessionState{SessionID: 77}
		primary.On("SetState", ctx, state).Return(nil).Once()

		err := repo.SetState(ctx, state)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("ClearStateSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearState", ctx, int64(88)).Return(nil).Once()

		err := repo.ClearState(ctx, 88)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("SetStateFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.SessionState{SessionID: 4}
		primary.On("SetState", ctx, state).Return(errors.New("fail")).Once()
		fallback.On("SetState", ctx, state).Return(nil).Once()

		err := repo.SetState(ctx, state)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

// Per-chat updates hit the repository from separate goroutines, so the
// down/last-check bookkeeping has to stay race-free while the primary
// keeps failing and while recovery probes fire.
func TestFailoverStateRepositoryConcurrent(t *testing.T) {
	primary := new(mockRepo)
	fallback := NewMemoryStateRepository(time.Minute)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	primary.On("GetState", ctx, mock.Anything).Return(nil, errors.New("down"))
	primary.On("SetState", ctx, mock.Anything).Return(errors.New("down"))
	primary.On("ClearState", ctx, mock.Anything).Return(errors.New("down"))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(sessionID int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				// Backdate the health check so recovery probes race
				// with the regular failover path.
				if i%10 == 0 {
					repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())
				}

				state := &models.SessionState{SessionID: sessionID, Step: "enter_date"}
				assert.NoError(t, repo.SetState(ctx, state))

				got, err := repo.GetState(ctx, sessionID)
				assert.NoError(t, err)
				if assert.NotNil(t, got) {
					assert.Equal(t, sessionID, got.SessionID)
				}
			}
		}(int64(g + 1))
	}
	wg.Wait()

	assert.True(t, repo.isDown.Load())
}
