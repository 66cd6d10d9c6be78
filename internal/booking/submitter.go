package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"slotbook/internal/events"
	"slotbook/internal/form"
	"slotbook/internal/metrics"
	"slotbook/internal/scheduler"
	"slotbook/internal/timefmt"

	"github.com/rs/zerolog"
)

// Status messages shown by the submitter.
const (
	StatusCorrectFields = "Please correct the highlighted fields."
	StatusSubmitting    = "Booking your appointment..."
	StatusBooked        = "Appointment booked and added to the calendar!"
	StatusSlotTaken     = "Slot not available."
	StatusNoConnection  = "Could not connect to booking server."

	AlertBooked       = "Appointment booked successfully!"
	AlertNoConnection = "Make sure the booking server is running."
)

var (
	// ErrValidation means the form did not pass validation; no request
	// was made.
	ErrValidation = errors.New("form validation failed")

	// ErrSubmissionInFlight means a previous submission has not
	// completed yet.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// AppointmentCreator submits a booking to the remote scheduling
// service.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, payload scheduler.Payload) error
}

// Submitter orchestrates a booking submission: validation, payload
// construction, the remote call and user-facing status reporting.
// Every failure path leaves the form re-submittable.
type Submitter struct {
	validator *form.Validator
	creator   AppointmentCreator
	status    StatusView
	slots     SlotView
	alerter   Alerter
	eventBus  *events.EventBus
	timeout   time.Duration
	logger    *zerolog.Logger

	inFlight  atomic.Bool
	sessionID int64
}

// NewSubmitter constructs a submitter. Zero timeout defaults to 15
// seconds; alerter may be nil.
func NewSubmitter(validator *form.Validator, creator AppointmentCreator, status StatusView, slots SlotView, alerter Alerter, eventBus *events.EventBus, timeout time.Duration, logger *zerolog.Logger) *Submitter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Submitter{
		validator: validator,
		creator:   creator,
		status:    status,
		slots:     slots,
		alerter:   alerter,
		eventBus:  eventBus,
		timeout:   timeout,
		logger:    logger,
	}
}

// BindSession stamps published events with the originating session.
func (s *Submitter) BindSession(sessionID int64) {
	s.sessionID = sessionID
}

// Submit handles a submission event for the given form state. The
// selected time field holds a 12-hour slot label. At most one
// submission runs at a time; overlapping calls are refused so a user
// intent cannot create two bookings.
func (s *Submitter) Submit(ctx context.Context, fs *form.FieldSet) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	if !s.validator.Validate(fs) {
		s.status.SetStatus(StatusCorrectFields, SeverityError)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fs.InvalidNames(), ", "))
	}

	time24, err := timefmt.To24Hour(fs.Get(form.FieldTime))
	if err != nil {
		fs.Field(form.FieldTime).Invalid = true
		s.status.SetStatus(StatusCorrectFields, SeverityError)
		return fmt.Errorf("%w: %s", ErrValidation, form.FieldTime)
	}

	payload := scheduler.Payload{
		Name:   fs.Get(form.FieldName),
		Date:   fs.Get(form.FieldDate),
		Time:   time24,
		Reason: buildReason(fs),
	}

	s.status.SetStatus(StatusSubmitting, SeverityInfo)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err = s.creator.CreateAppointment(ctx, payload)
	metrics.ObserveSubmission(time.Since(start))

	var rejection *scheduler.RejectionError
	switch {
	case err == nil:
		s.status.SetStatus(StatusBooked, SeveritySuccess)
		if s.alerter != nil {
			s.alerter.Alert(AlertBooked)
		}
		s.publish(events.EventAppointmentBooked, fs, payload, "")
		fs.Reset()
		s.slots.SetOptions(PlaceholderSelectTime, nil)
		metrics.IncSubmission("success")
		return nil

	case errors.As(err, &rejection):
		message := rejection.Message
		if message == "" {
			message = StatusSlotTaken
		}
		s.status.SetStatus(message, SeverityError)
		s.publish(events.EventAppointmentRejected, fs, payload, rejection.Message)
		metrics.IncSubmission("rejected")
		return err

	default:
		// Transport-level failure. Detail goes to the log, not the
		// status line.
		s.logger.Error().Err(err).Str("date", payload.Date).Str("time", payload.Time).Msg("appointment submission failed")
		s.status.SetStatus(StatusNoConnection, SeverityError)
		if s.alerter != nil {
			s.alerter.Alert(AlertNoConnection)
		}
		metrics.IncSubmission("transport_error")
		return err
	}
}

func (s *Submitter) publish(eventType string, fs *form.FieldSet, payload scheduler.Payload, message string) {
	err := s.eventBus.PublishJSON(eventType, events.AppointmentEventPayload{
		SessionID: s.sessionID,
		Name:      payload.Name,
		Date:      payload.Date,
		Time:      payload.Time,
		Service:   fs.Get(form.FieldService),
		Phone:     fs.Get(form.FieldPhone),
		Address:   fs.Get(form.FieldAddress),
		Notes:     fs.Get(form.FieldNotes),
		Message:   message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

// buildReason assembles the free-text reason block in fixed order.
// Notes defaults to "N/A" when absent.
func buildReason(fs *form.FieldSet) string {
	notes := fs.Get(form.FieldNotes)
	if notes == "" {
		notes = "N/A"
	}

	block := fmt.Sprintf("\nService: %s\nPhone: %s\nAddress: %s\nNotes: %s\n",
		fs.Get(form.FieldService),
		fs.Get(form.FieldPhone),
		fs.Get(form.FieldAddress),
		notes,
	)
	return strings.TrimSpace(block)
}
