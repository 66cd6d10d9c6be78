package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventAppointmentBooked   = "appointment_booked"
	EventAppointmentRejected = "appointment_rejected"
	EventSlotsLoaded         = "slots_loaded"
)

// AppointmentEventPayload describes the minimal appointment snapshot
// for event consumers.
type AppointmentEventPayload struct {
	SessionID int64  `json:"session_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Service   string `json:"service"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Notes     string `json:"notes,omitempty"`
	Message   string `json:"message,omitempty"`
}

// SlotsEventPayload describes the outcome of a slot query.
type SlotsEventPayload struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Outcome string `json:"outcome"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
