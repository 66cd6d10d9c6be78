package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotbook/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps a local record of appointments the scheduling service
// confirmed. The remote service stays the source of truth; this is a
// client-side journal for "my bookings" and exports.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            service TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT NOT NULL,
            notes TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_session_id ON appointments(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a confirmed appointment and fills in its ID.
func (s *Store) Record(ctx context.Context, appt *models.Appointment) error {
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (session_id, name, date, time, service, phone, address, notes, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.SessionID, appt.Name, appt.Date, appt.Time, appt.Service, appt.Phone, appt.Address, appt.Notes, appt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record appointment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get appointment id: %w", err)
	}
	appt.ID = id

	return nil
}

// BySession returns the appointments booked from a session, newest
// first.
func (s *Store) BySession(ctx context.Context, sessionID int64) ([]*models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, name, date, time, service, phone, address, notes, created_at
         FROM appointments WHERE session_id = ? ORDER BY date DESC, time DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ByDateRange returns appointments with date in [start, end], both
// ISO calendar dates, ordered by date and time.
func (s *Store) ByDateRange(ctx context.Context, start, end string) ([]*models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, name, date, time, service, phone, address, notes, created_at
         FROM appointments WHERE date >= ? AND date <= ? ORDER BY date, time`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func scanAppointments(rows *sql.Rows) ([]*models.Appointment, error) {
	var appts []*models.Appointment
	for rows.Next() {
		var appt models.Appointment
		var notes sql.NullString
		if err := rows.Scan(&appt.ID, &appt.SessionID, &appt.Name, &appt.Date, &appt.Time,
			&appt.Service, &appt.Phone, &appt.Address, &notes, &appt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appt.Notes = notes.String
		appts = append(appts, &appt)
	}
	return appts, rows.Err()
}
