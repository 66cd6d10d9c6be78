package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnavailable means the service responded but did not report success
// for a slot query.
var ErrUnavailable = errors.New("scheduling service reported failure")

// RejectionError carries the message a scheduling service returned when
// declining an appointment.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "appointment rejected"
	}
	return "appointment rejected: " + e.Message
}

// Payload is the appointment creation request body. Time is in 24-hour
// "HH:MM" form.
type Payload struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

type slotsResponse struct {
	Status string   `json:"status"`
	Slots  []string `json:"slots"`
}

type createResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client is a simple HTTP client for the remote scheduling service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient constructs a client with the given base URL and per-request
// timeout. Zero timeout defaults to 10 seconds.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// AvailableSlots fetches bookable times ("HH:MM") for a date
// (YYYY-MM-DD). A reachable service that does not report success
// returns ErrUnavailable; transport and decode errors pass through.
func (c *Client) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/available-slots?date=%s", c.baseURL, url.QueryEscape(date))

	var resp slotsResponse
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}

	return resp.Slots, nil
}

// CreateAppointment submits a booking. A reachable service that
// declines returns *RejectionError; transport and decode errors pass
// through. Each attempt carries a fresh idempotency key.
func (c *Client) CreateAppointment(ctx context.Context, payload Payload) error {
	endpoint := c.baseURL + "/create-appointment"

	var resp createResponse
	if err := c.doPost(ctx, endpoint, payload, &resp); err != nil {
		return err
	}

	if resp.Status != "success" {
		return &RejectionError{Message: resp.Message}
	}

	return nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Dur("took", time.Since(start)).
			Msg("scheduler request")
	}

	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
