package service

import (
	"context"

	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

// SessionService manages per-chat booking drafts on top of a state
// repository.
type SessionService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewSessionService(stateRepo domain.StateRepository, logger *zerolog.Logger) *SessionService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SessionService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.SessionState, error) {
	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Int64("session_id", sessionID).Msg("failed to get session state")
		return nil, err
	}

	return state, nil
}

func (s *SessionService) SetSession(ctx context.Context, sessionID int64, step string, fields map[string]string) error {
	state := &models.SessionState{
		SessionID: sessionID,
		Step:      step,
		Fields:    fields,
	}
	return s.stateRepo.SetState(ctx, state)
}

func (s *SessionService) ClearSession(ctx context.Context, sessionID int64) error {
	return s.stateRepo.ClearState(ctx, sessionID)
}

// SetField stores one form value into the draft, creating the draft
// when absent.
func (s *SessionService) SetField(ctx context.Context, sessionID int64, name, value string) error {
	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.SessionState{SessionID: sessionID}
	}

	state.SetField(name, value)

	return s.stateRepo.SetState(ctx, state)
}

// SetSlots replaces the slot labels offered for the draft's date.
func (s *SessionService) SetSlots(ctx context.Context, sessionID int64, slots []string) error {
	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.SessionState{SessionID: sessionID}
	}

	state.Slots = slots

	return s.stateRepo.SetState(ctx, state)
}

// Advance moves the draft to the next step, keeping accumulated
// fields and slots.
func (s *SessionService) Advance(ctx context.Context, sessionID int64, step string) error {
	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.SessionState{SessionID: sessionID}
	}

	state.Step = step

	return s.stateRepo.SetState(ctx, state)
}
