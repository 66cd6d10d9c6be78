package models

import "time"

// Appointment is a confirmed booking recorded locally after the
// scheduling service accepts it.
type Appointment struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Service   string    `json:"service"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
