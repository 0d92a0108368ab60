package booking

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StorageService is the booking-storage collaborator the front end talks to.
type StorageService interface {
	Authenticate(ctx context.Context, username, password string) (AuthResult, error)
	GetBookings(ctx context.Context) ([]Booking, error)
	SubmitBooking(ctx context.Context, sub Submission) (Result, error)
	CancelBooking(ctx context.Context, rowIndex int, calendarEventID string) (Result, error)
}

type AuthResult struct {
	Success bool   `json:"success"`
	Role    string `json:"role,omitempty"`
	Message string `json:"message,omitempty"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Set by submitBooking on success: the routing keys of the stored row.
	RowIndex        int    `json:"rowIndex,omitempty"`
	CalendarEventID string `json:"calendarEventId,omitempty"`
}

// Submission is a booking plus its base64-encoded payment receipt.
type Submission struct {
	Booking     Booking
	ReceiptData string
	ReceiptName string
}

// Record is the wire shape of a booking as produced by the storage service.
type Record struct {
	Name            string  `json:"Name"`
	Contact         string  `json:"Contact"`
	Email           string  `json:"Email"`
	Sport           string  `json:"Sport"`
	Court           string  `json:"Court"`
	Date            string  `json:"Date"`
	StartTime       string  `json:"StartTime"`
	EndTime         string  `json:"EndTime"`
	Status          string  `json:"Status"`
	TotalPrice      float64 `json:"TotalPrice"`
	PaymentMethod   string  `json:"PaymentMethod"`
	ReceiptURL      string  `json:"ReceiptURL"`
	CalendarEventID string  `json:"CalendarEventID"`
	RowIndex        int     `json:"rowIndex"`
}

func RecordOf(b Booking) Record {
	return Record{
		Name:            b.Customer.Name,
		Contact:         b.Customer.Contact,
		Email:           b.Customer.Email,
		Sport:           string(b.Sport),
		Court:           b.Court,
		Date:            b.Date,
		StartTime:       FormatHour(b.StartHour),
		EndTime:         FormatHour(b.EndHour),
		Status:          string(b.Status),
		TotalPrice:      b.TotalPrice,
		PaymentMethod:   string(b.PaymentMethod),
		ReceiptURL:      b.ReceiptURL,
		CalendarEventID: b.CalendarEventID,
		RowIndex:        b.RowIndex,
	}
}

// SubmissionPayload is the wire shape of submitBooking.
type SubmissionPayload struct {
	Name          string  `json:"name"`
	Contact       string  `json:"contact"`
	Email         string  `json:"email"`
	Sport         string  `json:"sport"`
	Court         string  `json:"court"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	TotalPrice    float64 `json:"totalPrice"`
	Downpayment   float64 `json:"downpayment"`
	PaymentMethod string  `json:"paymentMethod"`
	ReceiptData   string  `json:"receiptData"`
	ReceiptName   string  `json:"receiptName"`
}

func PayloadOf(sub Submission) SubmissionPayload {
	b := sub.Booking
	return SubmissionPayload{
		Name:          b.Customer.Name,
		Contact:       b.Customer.Contact,
		Email:         b.Customer.Email,
		Sport:         string(b.Sport),
		Court:         b.Court,
		Date:          b.Date,
		StartTime:     FormatHour(b.StartHour),
		EndTime:       FormatHour(b.EndHour),
		TotalPrice:    b.TotalPrice,
		Downpayment:   b.Downpayment,
		PaymentMethod: string(b.PaymentMethod),
		ReceiptData:   sub.ReceiptData,
		ReceiptName:   sub.ReceiptName,
	}
}

// fields is a case-insensitive view over a loosely typed record.
type fields map[string]any

func foldKeys(raw map[string]any) fields {
	f := make(fields, len(raw))
	for k, v := range raw {
		f[strings.ToLower(k)] = v
	}
	return f
}

func (f fields) str(keys ...string) string {
	for _, k := range keys {
		switch v := f[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

func (f fields) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := f[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// dayHours bounds any stored interval, whoever wrote it.
var dayHours = OperatingHours{Open: 0, Close: 24}

func (f fields) hour(timeKey, hourKey string) (int, error) {
	if n, ok := f.num(hourKey); ok {
		if n != math.Trunc(n) || n < float64(dayHours.Open) || n > float64(dayHours.Close) {
			return 0, &IntervalError{Reason: fmt.Sprintf("invalid hour %v", n)}
		}
		return int(n), nil
	}
	return ParseHour(f.str(timeKey))
}

// NormalizeRecord converts a loosely typed record of any key casing into a Booking.
// It is the only place that deals with the producer's shape. Records whose
// interval is empty, reversed or off the 0-24 grid, or whose court is not
// one of the sport's courts, are rejected.
func NormalizeRecord(raw map[string]any) (Booking, error) {
	f := foldKeys(raw)

	sport, err := ParseSport(f.str("sport"))
	if err != nil {
		return Booking{}, err
	}
	date := f.str("date")
	if len(date) > len(DateLayout) {
		date = date[:len(DateLayout)]
	}
	if date, err = ParseDate(date); err != nil {
		return Booking{}, err
	}
	start, err := f.hour("starttime", "starthour")
	if err != nil {
		return Booking{}, fmt.Errorf("start time: %w", err)
	}
	end, err := f.hour("endtime", "endhour")
	if err != nil {
		return Booking{}, fmt.Errorf("end time: %w", err)
	}
	if err := CheckInterval(start, end, dayHours); err != nil {
		return Booking{}, err
	}
	court := f.str("court")
	if !HasCourt(sport, court) {
		return Booking{}, fmt.Errorf("%w: %q is not a %s court", ErrUnknownCourt, court, sport)
	}
	status := StatusConfirmed
	if s := f.str("status"); s != "" {
		if status, err = ParseStatus(s); err != nil {
			return Booking{}, err
		}
	}
	b := Booking{
		Sport:     sport,
		Court:     court,
		Date:      date,
		StartHour: start,
		EndHour:   end,
		Status:    status,
		Customer: Customer{
			Name:    f.str("name"),
			Contact: f.str("contact"),
			Email:   f.str("email"),
		},
		ReceiptURL:      f.str("receipturl"),
		CalendarEventID: f.str("calendareventid"),
		Origin:          OriginRemote,
	}
	if b.ReceiptURL == "None" {
		b.ReceiptURL = ""
	}
	if n, ok := f.num("totalprice"); ok {
		b.TotalPrice = n
	}
	if n, ok := f.num("downpayment"); ok {
		b.Downpayment = n
	} else {
		b.Downpayment = b.TotalPrice * 0.5
	}
	if pm := f.str("paymentmethod", "paymenttype"); pm != "" {
		if m, err := ParsePaymentMethod(pm); err == nil {
			b.PaymentMethod = m
		} else {
			b.PaymentMethod = PaymentMethod(pm)
		}
	}
	if n, ok := f.num("rowindex"); ok {
		b.RowIndex = int(n)
	}
	switch {
	case f.str("id") != "":
		b.ID = f.str("id")
	case b.RowIndex > 0:
		b.ID = "row-" + strconv.Itoa(b.RowIndex)
	case b.CalendarEventID != "":
		b.ID = "evt-" + b.CalendarEventID
	}
	return b, nil
}

// NormalizeSubmission decodes a submitBooking payload of any key casing.
func NormalizeSubmission(raw map[string]any) (Submission, error) {
	b, err := NormalizeRecord(raw)
	if err != nil {
		return Submission{}, err
	}
	f := foldKeys(raw)
	return Submission{
		Booking:     b,
		ReceiptData: f.str("receiptdata"),
		ReceiptName: f.str("receiptname"),
	}, nil
}
