package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the civil date format used for bookings (no time zone).
const DateLayout = "2006-01-02"

type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusBlocked   Status = "Blocked"
	StatusCancelled Status = "Cancelled"
	StatusPending   Status = "Pending"
)

// Occupies reports whether a booking with this status holds its slot.
func (s Status) Occupies() bool {
	return s == StatusConfirmed || s == StatusBlocked
}

// Settled reports whether the status is a completed/confirmed payment variant.
func (s Status) Settled() bool {
	return s == StatusConfirmed
}

// ParseStatus maps loosely cased producer values onto Status.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "confirmed":
		return StatusConfirmed, nil
	case v == "blocked":
		return StatusBlocked, nil
	case v == "cancelled" || v == "canceled":
		return StatusCancelled, nil
	case strings.HasPrefix(v, "pending"):
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

type PaymentMethod string

const (
	PaymentFull        PaymentMethod = "GCash Full"
	PaymentDownpayment PaymentMethod = "GCash Downpayment"
	PaymentAdmin       PaymentMethod = "Admin"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gcash full", "full":
		return PaymentFull, nil
	case "gcash downpayment", "downpayment", "gcash down":
		return PaymentDownpayment, nil
	case "admin":
		return PaymentAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrMissingPayment, s)
}

type Customer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
}

type Booking struct {
	ID            string        `json:"id"`
	Sport         Sport         `json:"sport"`
	Court         string        `json:"court"`
	Date          string        `json:"date"`
	StartHour     int           `json:"startHour"`
	EndHour       int           `json:"endHour"`
	Status        Status        `json:"status"`
	TotalPrice    float64       `json:"totalPrice"`
	Downpayment   float64       `json:"downpayment"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Customer      Customer      `json:"customer"`
	ReceiptURL    string        `json:"receiptUrl,omitempty"`
	Origin        Origin        `json:"origin"`

	// Remote routing keys, only set for records fetched from the storage service.
	RowIndex        int    `json:"rowIndex,omitempty"`
	CalendarEventID string `json:"calendarEventId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (b Booking) Duration() int { return b.EndHour - b.StartHour }

// Overlaps is the half-open interval intersection test on [start, end).
func (b Booking) Overlaps(start, end int) bool {
	return start < b.EndHour && end > b.StartHour
}

func (b Booking) TimeRange() string {
	return FormatHour(b.StartHour) + "-" + FormatHour(b.EndHour)
}

// ParseHour parses "HH:MM", "HH:MM:SS" or "HH" into a whole hour on the grid.
// Minutes and seconds must be zero; 24:00 is accepted as the closing boundary.
func ParseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &IntervalError{Reason: "time is required"}
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, &IntervalError{Reason: fmt.Sprintf("invalid time %q", s)}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, &IntervalError{Reason: fmt.Sprintf("invalid hour in %q", s)}
	}
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) != 2 {
			return 0, &IntervalError{Reason: fmt.Sprintf("invalid time %q", s)}
		}
		if n != 0 {
			return 0, &IntervalError{Reason: fmt.Sprintf("%q is not on the hourly grid", s)}
		}
	}
	return h, nil
}

func FormatHour(h int) string { return fmt.Sprintf("%02d:00", h) }

// ParseDate validates a civil date string and returns it in canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.Format(DateLayout), nil
}
