package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slotbook/internal/events"
	"slotbook/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlotView records every selector update.
type fakeSlotView struct {
	mu           sync.Mutex
	placeholders []string
	options      []string
	optionsSet   bool
}

func (v *fakeSlotView) SetPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholders = append(v.placeholders, text)
	v.options = nil
	v.optionsSet = false
}

func (v *fakeSlotView) SetOptions(placeholder string, options []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholders = append(v.placeholders, placeholder)
	v.options = options
	v.optionsSet = true
}

func (v *fakeSlotView) lastPlaceholder() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.placeholders) == 0 {
		return ""
	}
	return v.placeholders[len(v.placeholders)-1]
}

func (v *fakeSlotView) currentOptions() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.options...)
}

type fakeSource struct {
	fn func(ctx context.Context, date string) ([]string, error)
}

func (s *fakeSource) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	return s.fn(ctx, date)
}

func staticSource(slots []string, err error) *fakeSource {
	return &fakeSource{fn: func(context.Context, string) ([]string, error) {
		return slots, err
	}}
}

func TestLoadRendersOptions(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource([]string{"09:00", "14:30"}, nil), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "2026-03-20")

	assert.Equal(t, []string{PlaceholderChecking, PlaceholderSelectTime}, view.placeholders)
	assert.Equal(t, []string{"09:00 AM", "02:30 PM"}, view.currentOptions())
}

func TestLoadEmptyDate(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource(nil, nil), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "")

	assert.Equal(t, PlaceholderSelectDate, view.lastPlaceholder())
	assert.False(t, view.optionsSet)
}

func TestLoadNoSlots(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource([]string{}, nil), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "2026-03-20")

	assert.Equal(t, PlaceholderNoSlots, view.lastPlaceholder())
	assert.False(t, view.optionsSet)
}

func TestLoadServiceUnavailable(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource(nil, scheduler.ErrUnavailable), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "2026-03-20")

	assert.Equal(t, PlaceholderUnable, view.lastPlaceholder())
}

func TestLoadTransportFailure(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource(nil, errors.New("connection refused")), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "2026-03-20")

	assert.Equal(t, PlaceholderServerError, view.lastPlaceholder())
}

func TestLoadMalformedSlot(t *testing.T) {
	view := &fakeSlotView{}
	loader := NewLoader(staticSource([]string{"09:00", "junk"}, nil), view, events.NewEventBus(), time.Second, nil)

	loader.Load(context.Background(), "2026-03-20")

	assert.Equal(t, PlaceholderUnable, view.lastPlaceholder())
	assert.False(t, view.optionsSet)
}

func TestStaleResponseDiscarded(t *testing.T) {
	view := &fakeSlotView{}

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	source := &fakeSource{fn: func(_ context.Context, date string) ([]string, error) {
		if date == "2026-03-20" {
			close(firstStarted)
			<-releaseFirst
			return []string{"09:00"}, nil
		}
		return []string{"14:30"}, nil
	}}

	loader := NewLoader(source, view, events.NewEventBus(), 5*time.Second, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loader.Load(context.Background(), "2026-03-20")
	}()

	<-firstStarted

	// A newer date selection supersedes the in-flight query.
	loader.Load(context.Background(), "2026-03-21")
	require.Equal(t, []string{"02:30 PM"}, view.currentOptions())

	close(releaseFirst)
	wg.Wait()

	// The stale completion must not overwrite the newer selection.
	assert.Equal(t, []string{"02:30 PM"}, view.currentOptions())
	assert.Equal(t, PlaceholderSelectTime, view.lastPlaceholder())
}

func TestLoadPublishesEvent(t *testing.T) {
	bus := events.NewEventBus()
	var published []*events.Event
	bus.Subscribe(events.EventSlotsLoaded, func(event *events.Event) error {
		published = append(published, event)
		return nil
	})

	view := &fakeSlotView{}
	loader := NewLoader(staticSource([]string{"09:00"}, nil), view, bus, time.Second, nil)
	loader.Load(context.Background(), "2026-03-20")

	require.Len(t, published, 1)
}
