package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/example/court-booking/internal/domain/booking"
)

var tracer = otel.Tracer("github.com/example/court-booking/internal/infrastructure/remote")

// Client talks to a booking-storage service over its JSON RPC surface:
// POST {BaseURL}/rpc/{method} with an X-API-Key header.
type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	retries uint64
	log     zerolog.Logger

	// InitialInterval is the first backoff delay; tests shrink it.
	InitialInterval time.Duration
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
	Log     zerolog.Logger
}

func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	return &Client{
		hc:              &http.Client{Timeout: o.Timeout},
		baseURL:         strings.TrimRight(o.BaseURL, "/"),
		apiKey:          o.APIKey,
		retries:         uint64(o.Retries),
		log:             o.Log,
		InitialInterval: 500 * time.Millisecond,
	}
}

var _ booking.StorageService = (*Client)(nil)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Method string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Method, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Method, e.Code)
}

func (c *Client) Authenticate(ctx context.Context, username, password string) (booking.AuthResult, error) {
	var out booking.AuthResult
	err := c.call(ctx, "authenticate", map[string]string{"username": username, "password": password}, &out)
	return out, err
}

func (c *Client) GetBookings(ctx context.Context) ([]booking.Booking, error) {
	var raw []map[string]any
	if err := c.call(ctx, "getBookings", struct{}{}, &raw); err != nil {
		return nil, err
	}
	out := make([]booking.Booking, 0, len(raw))
	for i, r := range raw {
		b, err := booking.NormalizeRecord(r)
		if err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed booking record")
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) SubmitBooking(ctx context.Context, sub booking.Submission) (booking.Result, error) {
	var out booking.Result
	err := c.call(ctx, "submitBooking", booking.PayloadOf(sub), &out)
	return out, err
}

func (c *Client) CancelBooking(ctx context.Context, rowIndex int, calendarEventID string) (booking.Result, error) {
	var out booking.Result
	in := struct {
		RowIndex        int    `json:"rowIndex"`
		CalendarEventID string `json:"calendarEventId"`
	}{rowIndex, calendarEventID}
	err := c.call(ctx, "cancelBooking", in, &out)
	return out, err
}

// call posts in as JSON and decodes the answer into out. Transport errors
// and 5xx answers are retried with exponential backoff; anything else is final.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	ctx, span := tracer.Start(ctx, "remote."+method)
	defer span.End()

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	attempt := 0
	op := func() error {
		attempt++
		status, b, err := c.do(ctx, method, body)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if status >= 500 {
			return &StatusError{Method: method, Code: status, Body: snippet(b)}
		}
		if status >= 400 {
			return backoff.Permanent(&StatusError{Method: method, Code: status, Body: snippet(b)})
		}
		if err := json.Unmarshal(b, out); err != nil {
			return backoff.Permanent(fmt.Errorf("%s: decode response: %w", method, err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.retries), ctx)
	err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Str("method", method).Dur("wait", wait).Msg("remote call failed, retrying")
	})
	span.SetAttributes(attribute.String("rpc.method", method), attribute.Int("rpc.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var se *StatusError
		if errors.As(err, &se) {
			return err
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
