package booking

import "strings"

// Filter narrows a booking list the way the admin table does. Empty fields match everything.
type Filter struct {
	Date             string
	Sport            Sport
	Court            string
	IncludeCancelled bool
}

func (f Filter) Match(b Booking) bool {
	if !f.IncludeCancelled && b.Status == StatusCancelled {
		return false
	}
	if f.Date != "" && !strings.Contains(b.Date, f.Date) {
		return false
	}
	if f.Sport != "" && b.Sport != f.Sport {
		return false
	}
	if f.Court != "" && b.Court != f.Court {
		return false
	}
	return true
}

func Apply(bookings []Booking, f Filter) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}
