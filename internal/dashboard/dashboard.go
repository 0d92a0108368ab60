// Package dashboard derives the admin summary figures from the effective booking set.
package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/domain/booking"
)

const (
	firstHour = 6
	lastHour  = 23
)

type SportCount struct {
	Sport booking.Sport `json:"sport"`
	Count int           `json:"count"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayCount struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

type Stats struct {
	Date string `json:"date"`

	TodayCount     int     `json:"todayCount"`
	CancelledToday int     `json:"cancelledToday"`
	ActiveToday    int     `json:"activeToday"`
	ActiveRatio    float64 `json:"activeRatio"`

	BlockedCount         int `json:"blockedCount"`
	FutureConfirmedCount int `json:"futureConfirmedCount"`
	// UniqueCustomerCount keys on the case-folded customer name, so two
	// customers with the same name count once.
	UniqueCustomerCount int `json:"uniqueCustomerCount"`

	ActiveCourts     int     `json:"activeCourts"`
	TotalCourts      int     `json:"totalCourts"`
	CourtUtilization float64 `json:"courtUtilization"`

	BySport []SportCount `json:"bySport"`
	ByHour  []HourCount  `json:"byHour"`

	Week      []DayCount `json:"week"`
	WeekTotal int        `json:"weekTotal"`
}

// Compute aggregates bookings relative to today. Dates compare as civil
// strings, so today must already be in the business time zone.
func Compute(bookings []booking.Booking, today time.Time) Stats {
	day := today.Format(booking.DateLayout)
	s := Stats{Date: day, TotalCourts: booking.TotalCourtCount}

	activeCourts := make(map[string]struct{})
	customers := make(map[string]struct{})
	bySport := make(map[booking.Sport]int)
	byHour := make(map[int]int)

	for _, b := range bookings {
		if b.Date == day {
			s.TodayCount++
			if b.Status == booking.StatusCancelled {
				s.CancelledToday++
			} else {
				s.ActiveToday++
				activeCourts[b.Court] = struct{}{}
			}
		}
		if b.Status == booking.StatusBlocked && b.Date >= day {
			s.BlockedCount++
		}
		if b.Status == booking.StatusConfirmed && b.Date > day {
			s.FutureConfirmedCount++
		}
		if b.Status != booking.StatusBlocked {
			if name := strings.ToLower(strings.TrimSpace(b.Customer.Name)); name != "" {
				customers[name] = struct{}{}
			}
		}
		if b.Status.Settled() {
			bySport[b.Sport]++
			for h := b.StartHour; h < b.EndHour; h++ {
				byHour[h]++
			}
		}
	}

	if s.TodayCount > 0 {
		s.ActiveRatio = percent(s.ActiveToday, s.TodayCount)
	}
	s.ActiveCourts = len(activeCourts)
	s.CourtUtilization = percent(s.ActiveCourts, s.TotalCourts)
	s.UniqueCustomerCount = len(customers)

	for _, sp := range booking.Sports() {
		s.BySport = append(s.BySport, SportCount{Sport: sp, Count: bySport[sp]})
	}
	for h := firstHour; h <= lastHour; h++ {
		s.ByHour = append(s.ByHour, HourCount{Hour: h, Count: byHour[h]})
	}

	s.Week, s.WeekTotal = week(bookings, today)
	return s
}

func week(bookings []booking.Booking, today time.Time) ([]DayCount, int) {
	monday := calendar.WeekStart(today)
	idx := make(map[string]int, 7)
	days := make([]DayCount, 7)
	for i := range days {
		d := monday.AddDate(0, 0, i)
		days[i] = DayCount{Date: d.Format(booking.DateLayout), Weekday: d.Weekday().String()[:3]}
		idx[days[i].Date] = i
	}
	total := 0
	for _, b := range bookings {
		if b.Status == booking.StatusCancelled {
			continue
		}
		if i, ok := idx[b.Date]; ok {
			days[i].Count++
			total++
		}
	}
	return days, total
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) * 100 / float64(d)
}

// Busiest returns the hours with the highest occupancy, most occupied first.
func (s Stats) Busiest(n int) []HourCount {
	hs := make([]HourCount, 0, len(s.ByHour))
	for _, h := range s.ByHour {
		if h.Count > 0 {
			hs = append(hs, h)
		}
	}
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Count > hs[j].Count })
	if n > 0 && len(hs) > n {
		hs = hs[:n]
	}
	return hs
}
