package booking

import "fmt"

// OperatingHours bounds bookable start/end hours, closing boundary exclusive for starts.
type OperatingHours struct {
	Open  int
	Close int
}

var (
	UserHours  = OperatingHours{Open: 8, Close: 24}
	AdminHours = OperatingHours{Open: 6, Close: 24}
)

// Quote is the computed price of a selection.
type Quote struct {
	Sport       Sport   `json:"sport"`
	Hours       int     `json:"hours"`
	Rate        float64 `json:"rate"`
	Total       float64 `json:"total"`
	Downpayment float64 `json:"downpayment"`
}

// AmountDue is what the customer transfers for method: the full total or the downpayment.
func (q Quote) AmountDue(method PaymentMethod) float64 {
	if method == PaymentFull {
		return q.Total
	}
	return q.Downpayment
}

func ComputePrice(sport Sport, hours int) (Quote, error) {
	rate, ok := Rate(sport)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownSport, sport)
	}
	if hours < 1 {
		return Quote{}, &IntervalError{Reason: "Minimum booking is 1 hour. End time must be after start time."}
	}
	total := rate * float64(hours)
	return Quote{
		Sport:       sport,
		Hours:       hours,
		Rate:        rate,
		Total:       total,
		Downpayment: total * 0.5,
	}, nil
}

func occupying(b Booking, court, date string) bool {
	return b.Court == court && b.Date == date && b.Status.Occupies()
}

func IsSlotBooked(bookings []Booking, court, date string, hour int) bool {
	for _, b := range bookings {
		if occupying(b, court, date) && hour >= b.StartHour && hour < b.EndHour {
			return true
		}
	}
	return false
}

// FindConflict returns the first occupying booking on court/date intersecting [start, end).
func FindConflict(bookings []Booking, court, date string, start, end int) (Booking, bool) {
	for _, b := range bookings {
		if occupying(b, court, date) && b.Overlaps(start, end) {
			return b, true
		}
	}
	return Booking{}, false
}

func HasOverlap(bookings []Booking, court, date string, start, end int) bool {
	_, ok := FindConflict(bookings, court, date, start, end)
	return ok
}

// CheckInterval rejects intervals that are empty, reversed or outside hours.
func CheckInterval(start, end int, hours OperatingHours) error {
	if end <= start {
		return &IntervalError{Reason: "Minimum booking is 1 hour. End time must be after start time."}
	}
	if start < hours.Open {
		return &IntervalError{Reason: fmt.Sprintf("bookings start at %s at the earliest", FormatHour(hours.Open))}
	}
	if end > hours.Close {
		return &IntervalError{Reason: fmt.Sprintf("bookings must end by %s", FormatHour(hours.Close))}
	}
	return nil
}

// Validate applies the write-time policy to a candidate against the effective set.
func Validate(bookings []Booking, c Booking, hours OperatingHours) error {
	if _, ok := Rate(c.Sport); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSport, c.Sport)
	}
	if !HasCourt(c.Sport, c.Court) {
		return fmt.Errorf("%w: %q is not a %s court", ErrUnknownCourt, c.Court, c.Sport)
	}
	if _, err := ParseDate(c.Date); err != nil {
		return &IntervalError{Reason: err.Error()}
	}
	if err := CheckInterval(c.StartHour, c.EndHour, hours); err != nil {
		return err
	}
	if existing, ok := FindConflict(bookings, c.Court, c.Date, c.StartHour, c.EndHour); ok {
		return &ConflictError{Existing: existing}
	}
	return nil
}

type Slot struct {
	Hour   int  `json:"hour"`
	Booked bool `json:"booked"`
}

func (s Slot) Label() string { return FormatHour(s.Hour) + "-" + FormatHour(s.Hour+1) }

// FreeSlots lays out the hourly grid of court/date within hours.
func FreeSlots(bookings []Booking, court, date string, hours OperatingHours) []Slot {
	out := make([]Slot, 0, hours.Close-hours.Open)
	for h := hours.Open; h < hours.Close; h++ {
		out = append(out, Slot{Hour: h, Booked: IsSlotBooked(bookings, court, date, h)})
	}
	return out
}
