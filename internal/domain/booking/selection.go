package booking

import "fmt"

// Selection is the single in-progress booking draft of the interactive flow.
// Each step validates only what it sets; Draft validates the whole selection.
type Selection struct {
	Sport         Sport         `json:"sport,omitempty"`
	Court         string        `json:"court,omitempty"`
	Date          string        `json:"date,omitempty"`
	StartHour     int           `json:"startHour,omitempty"`
	EndHour       int           `json:"endHour,omitempty"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
}

// SetSport changes the sport and clears a court that no longer belongs to it.
func (s *Selection) SetSport(sport Sport) error {
	if _, ok := Rate(sport); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSport, sport)
	}
	if s.Sport != sport {
		s.Court = ""
	}
	s.Sport = sport
	return nil
}

func (s *Selection) SetCourt(court string) error {
	if s.Sport == "" {
		return fmt.Errorf("%w: select a sport first", ErrUnknownCourt)
	}
	if !HasCourt(s.Sport, court) {
		return fmt.Errorf("%w: %q is not a %s court", ErrUnknownCourt, court, s.Sport)
	}
	s.Court = court
	return nil
}

func (s *Selection) SetDate(date string) error {
	d, err := ParseDate(date)
	if err != nil {
		return &IntervalError{Reason: err.Error()}
	}
	s.Date = d
	return nil
}

// SetTimes accepts "HH:MM" form values.
func (s *Selection) SetTimes(start, end string) error {
	sh, err := ParseHour(start)
	if err != nil {
		return err
	}
	eh, err := ParseHour(end)
	if err != nil {
		return err
	}
	if err := CheckInterval(sh, eh, UserHours); err != nil {
		return err
	}
	s.StartHour, s.EndHour = sh, eh
	return nil
}

func (s *Selection) SetPaymentMethod(m PaymentMethod) error {
	if m != PaymentFull && m != PaymentDownpayment {
		return ErrMissingPayment
	}
	s.PaymentMethod = m
	return nil
}

func (s Selection) Duration() int { return s.EndHour - s.StartHour }

func (s Selection) Quote() (Quote, error) {
	return ComputePrice(s.Sport, s.Duration())
}

func (s *Selection) Reset() { *s = Selection{} }

// Draft validates the selection against existing bookings and returns the
// booking it would create. Payment and receipt are checked at submission.
func (s Selection) Draft(existing []Booking) (Booking, Quote, error) {
	q, err := s.Quote()
	if err != nil {
		return Booking{}, Quote{}, err
	}
	b := Booking{
		Sport:         s.Sport,
		Court:         s.Court,
		Date:          s.Date,
		StartHour:     s.StartHour,
		EndHour:       s.EndHour,
		Status:        StatusConfirmed,
		TotalPrice:    q.Total,
		Downpayment:   q.Downpayment,
		PaymentMethod: s.PaymentMethod,
		Customer:      s.Customer,
	}
	if err := Validate(existing, b, UserHours); err != nil {
		return Booking{}, Quote{}, err
	}
	return b, q, nil
}
