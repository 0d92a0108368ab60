// Package memory is an in-process booking.StorageService for local
// development and tests.
package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/example/court-booking/internal/domain/booking"
)

type account struct {
	password string
	role     string
}

type Service struct {
	mu       sync.Mutex
	rows     []booking.Booking
	accounts map[string]account
	nextRow  int

	// Calls counts invocations per method.
	Calls map[string]int
	// Fail, when set, is returned from every call.
	Fail error
	// Reject, when set, is returned as a failure payload from SubmitBooking and CancelBooking.
	Reject string
}

func New() *Service {
	return &Service{
		accounts: map[string]account{},
		nextRow:  2, // row 1 is the header row
		Calls:    map[string]int{},
	}
}

// NewSeeded returns a service with the development accounts and sample rows.
func NewSeeded() *Service {
	s := New()
	s.AddAccount("admin", "password123", "admin")
	s.AddAccount("user", "user123", "user")
	s.Seed(
		booking.Booking{Customer: booking.Customer{Name: "John Doe"}, Sport: booking.SportPickleball, Court: "Court 1",
			Date: "2026-02-25", StartHour: 10, EndHour: 11, Status: booking.StatusConfirmed,
			TotalPrice: 300, Downpayment: 150, PaymentMethod: booking.PaymentFull, CalendarEventID: "mock1"},
		booking.Booking{Customer: booking.Customer{Name: "Jane Smith"}, Sport: booking.SportWholeBasketball, Court: "Whole Basketball Court",
			Date: "2026-02-26", StartHour: 14, EndHour: 16, Status: booking.StatusCancelled,
			TotalPrice: 2000, Downpayment: 1000, PaymentMethod: booking.PaymentDownpayment, CalendarEventID: "mock2"},
	)
	return s
}

func (s *Service) AddAccount(username, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(username)] = account{password: password, role: role}
}

// Seed appends rows as if they had been written by the service.
func (s *Service) Seed(bs ...booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bs {
		s.insert(b)
	}
}

func (s *Service) insert(b booking.Booking) booking.Booking {
	b.RowIndex = s.nextRow
	s.nextRow++
	b.ID = ""
	if b.CalendarEventID == "" {
		b.CalendarEventID = uuid.NewString()
	}
	b.Origin = booking.OriginRemote
	s.rows = append(s.rows, b)
	return b
}

func (s *Service) call(name string) error {
	s.Calls[name]++
	return s.Fail
}

func (s *Service) Authenticate(_ context.Context, username, password string) (booking.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("authenticate"); err != nil {
		return booking.AuthResult{}, err
	}
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok || a.password != password {
		return booking.AuthResult{Success: false, Message: "Invalid username or password"}, nil
	}
	return booking.AuthResult{Success: true, Role: a.role}, nil
}

// GetBookings returns copies of the stored rows carrying the row-derived ids
// NormalizeRecord assigns to producer records.
func (s *Service) GetBookings(_ context.Context) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("getBookings"); err != nil {
		return nil, err
	}
	out := make([]booking.Booking, 0, len(s.rows))
	for _, b := range s.rows {
		b.ID = "row-" + strconv.Itoa(b.RowIndex)
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) SubmitBooking(_ context.Context, sub booking.Submission) (booking.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("submitBooking"); err != nil {
		return booking.Result{}, err
	}
	if s.Reject != "" {
		return booking.Result{Success: false, Message: s.Reject}, nil
	}
	b := sub.Booking
	if c, ok := booking.FindConflict(s.rows, b.Court, b.Date, b.StartHour, b.EndHour); ok {
		c.ID = "row-" + strconv.Itoa(c.RowIndex)
		return booking.Result{Success: false, Message: (&booking.ConflictError{Existing: c}).Error()}, nil
	}
	if b.Status == "" {
		b.Status = booking.StatusConfirmed
	}
	if sub.ReceiptName != "" {
		b.ReceiptURL = "memory://receipts/" + sub.ReceiptName
	}
	b = s.insert(b)
	return booking.Result{
		Success:         true,
		Message:         "Booking confirmed (row " + strconv.Itoa(b.RowIndex) + ")",
		RowIndex:        b.RowIndex,
		CalendarEventID: b.CalendarEventID,
	}, nil
}

func (s *Service) CancelBooking(_ context.Context, rowIndex int, calendarEventID string) (booking.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("cancelBooking"); err != nil {
		return booking.Result{}, err
	}
	if s.Reject != "" {
		return booking.Result{Success: false, Message: s.Reject}, nil
	}
	for i := range s.rows {
		if s.rows[i].RowIndex == rowIndex {
			if calendarEventID != "" && s.rows[i].CalendarEventID != calendarEventID {
				return booking.Result{Success: false, Message: "calendar event does not match row"}, nil
			}
			s.rows[i].Status = booking.StatusCancelled
			return booking.Result{Success: true, Message: "Booking cancelled"}, nil
		}
	}
	return booking.Result{Success: false, Message: "row not found"}, nil
}

func (s *Service) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}
