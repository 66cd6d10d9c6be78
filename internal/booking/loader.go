package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"slotbook/internal/events"
	"slotbook/internal/metrics"
	"slotbook/internal/scheduler"
	"slotbook/internal/timefmt"

	"github.com/rs/zerolog"
)

// SlotSource queries the remote scheduling service for bookable times.
type SlotSource interface {
	AvailableSlots(ctx context.Context, date string) ([]string, error)
}

// Loader drives the slot selector through a date-selection cycle:
// empty date shows the idle placeholder, a chosen date triggers a
// bounded remote query and renders its outcome. Each query is tagged
// with a sequence number; a completion whose tag is no longer current
// has been superseded by a newer date change and is discarded.
type Loader struct {
	source   SlotSource
	view     SlotView
	eventBus *events.EventBus
	timeout  time.Duration
	logger   *zerolog.Logger

	mu  sync.Mutex
	seq uint64
}

// NewLoader constructs a loader. Zero timeout defaults to 15 seconds.
func NewLoader(source SlotSource, view SlotView, eventBus *events.EventBus, timeout time.Duration, logger *zerolog.Logger) *Loader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{
		source:   source,
		view:     view,
		eventBus: eventBus,
		timeout:  timeout,
		logger:   logger,
	}
}

// Load handles a date-change event. It blocks until the query
// completes, times out or is superseded; callers that must not block
// run it on their own goroutine.
func (l *Loader) Load(ctx context.Context, date string) {
	l.mu.Lock()
	l.seq++
	seq := l.seq

	if date == "" {
		l.view.SetPlaceholder(PlaceholderSelectDate)
		l.mu.Unlock()
		return
	}

	l.view.SetPlaceholder(PlaceholderChecking)
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	slots, err := l.source.AvailableSlots(ctx, date)
	metrics.ObserveSlotLoad(time.Since(start))

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq {
		l.logger.Debug().Str("date", date).Msg("discarding stale slot response")
		return
	}

	outcome := l.render(date, slots, err)
	metrics.IncSlotLoad(outcome)
	_ = l.eventBus.PublishJSON(events.EventSlotsLoaded, events.SlotsEventPayload{
		Date:    date,
		Count:   len(slots),
		Outcome: outcome,
	})
}

// render maps a query completion onto the selector and returns the
// outcome label. Called with the mutex held.
func (l *Loader) render(date string, slots []string, err error) string {
	switch {
	case errors.Is(err, scheduler.ErrUnavailable):
		l.view.SetPlaceholder(PlaceholderUnable)
		return "unavailable"

	case err != nil:
		// Transport-level failure. Detail goes to the log, never to
		// the selector.
		l.logger.Error().Err(err).Str("date", date).Msg("slot query failed")
		l.view.SetPlaceholder(PlaceholderServerError)
		return "transport_error"

	case len(slots) == 0:
		l.view.SetPlaceholder(PlaceholderNoSlots)
		return "empty"
	}

	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		label, err := timefmt.To12Hour(slot)
		if err != nil {
			l.logger.Error().Err(err).Str("date", date).Str("slot", slot).Msg("malformed slot in response")
			l.view.SetPlaceholder(PlaceholderUnable)
			return "malformed"
		}
		labels = append(labels, label)
	}

	l.view.SetOptions(PlaceholderSelectTime, labels)
	return "loaded"
}
