package history

import (
	"context"
	"path/filepath"
	"testing"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleAppointment(sessionID int64, date, timeOfDay string) *models.Appointment {
	return &models.Appointment{
		SessionID: sessionID,
		Name:      "Ivan Petrov",
		Date:      date,
		Time:      timeOfDay,
		Service:   "AC repair",
		Phone:     "1234567890",
		Address:   "12 Main St",
	}
}

func TestRecordAndBySession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	appt := sampleAppointment(42, "2026-03-20", "14:30")
	appt.Notes = "call on arrival"
	require.NoError(t, store.Record(ctx, appt))
	assert.NotZero(t, appt.ID)

	require.NoError(t, store.Record(ctx, sampleAppointment(42, "2026-03-21", "09:00")))
	require.NoError(t, store.Record(ctx, sampleAppointment(99, "2026-03-20", "10:00")))

	appts, err := store.BySession(ctx, 42)
	require.NoError(t, err)
	require.Len(t, appts, 2)

	// newest first
	assert.Equal(t, "2026-03-21", appts[0].Date)
	assert.Equal(t, "2026-03-20", appts[1].Date)
	assert.Equal(t, "call on arrival", appts[1].Notes)
}

func TestBySessionEmpty(t *testing.T) {
	store := newTestStore(t)

	appts, err := store.BySession(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestByDateRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, sampleAppointment(1, "2026-03-19", "09:00")))
	require.NoError(t, store.Record(ctx, sampleAppointment(1, "2026-03-20", "14:30")))
	require.NoError(t, store.Record(ctx, sampleAppointment(1, "2026-03-20", "09:00")))
	require.NoError(t, store.Record(ctx, sampleAppointment(1, "2026-03-28", "09:00")))

	appts, err := store.ByDateRange(ctx, "2026-03-20", "2026-03-27")
	require.NoError(t, err)
	require.Len(t, appts, 2)

	// ordered by date, then time
	assert.Equal(t, "09:00", appts[0].Time)
	assert.Equal(t, "14:30", appts[1].Time)
}
