package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/domain/booking"
)

func bk(name, court, date string, start, end int, status booking.Status) booking.Booking {
	sport, _ := booking.SportOfCourt(court)
	return booking.Booking{
		Sport: sport, Court: court, Date: date, StartHour: start, EndHour: end,
		Status: status, Customer: booking.Customer{Name: name},
	}
}

func TestCompute(t *testing.T) {
	today := time.Date(2026, 2, 25, 9, 30, 0, 0, time.UTC) // Wednesday
	bookings := []booking.Booking{
		bk("Mia", "Court 1", "2026-02-25", 14, 16, booking.StatusConfirmed),
		bk(" mia ", "Court 2", "2026-02-25", 8, 9, booking.StatusConfirmed),
		bk("Leo", "Court 1", "2026-02-25", 18, 19, booking.StatusCancelled),
		bk("Maintenance", "Half Court 1", "2026-02-25", 6, 8, booking.StatusBlocked),
		bk("Ana", "Whole Basketball Court", "2026-02-27", 10, 12, booking.StatusConfirmed),
		bk("Maintenance", "Half Court 2", "2026-03-05", 6, 8, booking.StatusBlocked),
		bk("Old", "Court 3", "2026-02-20", 10, 11, booking.StatusBlocked),
		bk("Pat", "Court 3", "2026-02-24", 15, 16, booking.StatusPending),
	}

	s := Compute(bookings, today)

	assert.Equal(t, "2026-02-25", s.Date)
	assert.Equal(t, 4, s.TodayCount)
	assert.Equal(t, 1, s.CancelledToday)
	assert.Equal(t, 3, s.ActiveToday)
	assert.InDelta(t, 75.0, s.ActiveRatio, 0.001)
	assert.Equal(t, 2, s.BlockedCount)
	assert.Equal(t, 1, s.FutureConfirmedCount)
	assert.Equal(t, 4, s.UniqueCustomerCount, "mia, leo, ana, pat")
	assert.Equal(t, 3, s.ActiveCourts)
	assert.Equal(t, 7, s.TotalCourts)
	assert.InDelta(t, 300.0/7, s.CourtUtilization, 0.001)

	require.Len(t, s.BySport, 3)
	counts := map[booking.Sport]int{}
	for _, c := range s.BySport {
		counts[c.Sport] = c.Count
	}
	assert.Equal(t, 2, counts[booking.SportPickleball])
	assert.Equal(t, 1, counts[booking.SportWholeBasketball])
	assert.Equal(t, 0, counts[booking.SportHalfBasketball])

	require.Len(t, s.ByHour, 18)
	assert.Equal(t, 6, s.ByHour[0].Hour)
	assert.Equal(t, 23, s.ByHour[17].Hour)
	hours := map[int]int{}
	for _, h := range s.ByHour {
		hours[h.Hour] = h.Count
	}
	assert.Equal(t, 1, hours[8])
	assert.Equal(t, 1, hours[14])
	assert.Equal(t, 1, hours[15])
	assert.Equal(t, 0, hours[16])
	assert.Equal(t, 0, hours[18], "cancelled bookings do not occupy")

	require.Len(t, s.Week, 7)
	assert.Equal(t, "2026-02-23", s.Week[0].Date)
	assert.Equal(t, 1, s.Week[1].Count, "pending on Tuesday")
	assert.Equal(t, 3, s.Week[2].Count)
	assert.Equal(t, 1, s.Week[4].Count)
	assert.Equal(t, 5, s.WeekTotal)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, s.TodayCount)
	assert.Zero(t, s.ActiveRatio)
	assert.Zero(t, s.CourtUtilization)
	assert.Len(t, s.ByHour, 18)
	assert.Zero(t, s.WeekTotal)
}

func TestBusiest(t *testing.T) {
	s := Stats{ByHour: []HourCount{{Hour: 8, Count: 1}, {Hour: 9, Count: 3}, {Hour: 10}, {Hour: 11, Count: 2}}}
	assert.Equal(t, []HourCount{{Hour: 9, Count: 3}, {Hour: 11, Count: 2}}, s.Busiest(2))
	assert.Len(t, s.Busiest(0), 3)
}
