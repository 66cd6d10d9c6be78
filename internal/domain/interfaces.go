package domain

import (
	"context"

	"slotbook/internal/models"
)

// StateRepository stores per-session booking drafts.
type StateRepository interface {
	GetState(ctx context.Context, sessionID int64) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, sessionID int64) error
}

// HistoryRecorder persists confirmed appointments.
type HistoryRecorder interface {
	Record(ctx context.Context, appt *models.Appointment) error
}
