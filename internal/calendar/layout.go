// Package calendar lays out bookings as side-by-side lanes within a day column.
package calendar

import (
	"sort"
	"time"

	"github.com/example/court-booking/internal/domain/booking"
)

// Placement is a booking with its lane. All members of one cluster share Columns.
type Placement struct {
	Booking booking.Booking `json:"booking"`
	Column  int             `json:"column"`
	Columns int             `json:"columns"`
}

// Layout assigns lanes to the bookings of a single day.
//
// Bookings are ordered by start, shorter first on ties. A booking joins the
// open cluster while it starts before the cluster's running max end, so
// members are connected transitively rather than pairwise. Inside a cluster
// each booking takes the leftmost column none of whose occupants it overlaps.
func Layout(bookings []booking.Booking) []Placement {
	if len(bookings) == 0 {
		return nil
	}
	sorted := make([]booking.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		if a.Duration() != b.Duration() {
			return a.Duration() < b.Duration()
		}
		return a.ID < b.ID
	})

	out := make([]Placement, 0, len(sorted))
	var cluster []booking.Booking
	maxEnd := 0
	for _, b := range sorted {
		if len(cluster) > 0 && b.StartHour < maxEnd {
			cluster = append(cluster, b)
			if b.EndHour > maxEnd {
				maxEnd = b.EndHour
			}
			continue
		}
		out = append(out, packCluster(cluster)...)
		cluster = []booking.Booking{b}
		maxEnd = b.EndHour
	}
	return append(out, packCluster(cluster)...)
}

func packCluster(cluster []booking.Booking) []Placement {
	if len(cluster) == 0 {
		return nil
	}
	var columns [][]booking.Booking
	placed := make([]Placement, 0, len(cluster))
	for _, b := range cluster {
		col := -1
		for i, occupants := range columns {
			if fits(b, occupants) {
				col = i
				break
			}
		}
		if col < 0 {
			columns = append(columns, nil)
			col = len(columns) - 1
		}
		columns[col] = append(columns[col], b)
		placed = append(placed, Placement{Booking: b, Column: col})
	}
	for i := range placed {
		placed[i].Columns = len(columns)
	}
	return placed
}

func fits(b booking.Booking, occupants []booking.Booking) bool {
	for _, o := range occupants {
		if b.StartHour < o.EndHour && b.EndHour > o.StartHour {
			return false
		}
	}
	return true
}

// Geometry converts placements into box offsets for a rendering surface.
type Geometry struct {
	GridStart int     // first hour row
	GridEnd   int     // exclusive
	RowHeight float64 // px per hour
	GutterPct float64 // subtracted from each lane width
}

var DefaultGeometry = Geometry{GridStart: 6, GridEnd: 24, RowHeight: 48, GutterPct: 2}

type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

func (g Geometry) Box(p Placement) Box {
	cols := p.Columns
	if cols < 1 {
		cols = 1
	}
	lane := 100 / float64(cols)
	width := lane - g.GutterPct
	if width < 0 {
		width = 0
	}
	return Box{
		Top:    float64(p.Booking.StartHour-g.GridStart) * g.RowHeight,
		Height: float64(p.Booking.Duration()) * g.RowHeight,
		Left:   float64(p.Column) * lane,
		Width:  width,
	}
}

func (g Geometry) Hours() []int {
	out := make([]int, 0, g.GridEnd-g.GridStart)
	for h := g.GridStart; h < g.GridEnd; h++ {
		out = append(out, h)
	}
	return out
}

func (g Geometry) Height() float64 { return float64(g.GridEnd-g.GridStart) * g.RowHeight }

type Event struct {
	Placement
	Box Box `json:"box"`
}

type Day struct {
	Date    string  `json:"date"`
	Weekday string  `json:"weekday"`
	Events  []Event `json:"events"`
}

type WeekView struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Hours  []int   `json:"hours"`
	Height float64 `json:"height"`
	Days   []Day   `json:"days"`
}

// WeekStart returns the Monday on or before d.
func WeekStart(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Week lays out seven days starting at the Monday of the week containing start.
// Cancelled bookings are never shown regardless of f.IncludeCancelled.
func Week(bookings []booking.Booking, start time.Time, f booking.Filter, g Geometry) WeekView {
	monday := WeekStart(start)
	f.IncludeCancelled = false
	f.Date = ""

	byDate := make(map[string][]booking.Booking)
	for _, b := range booking.Apply(bookings, f) {
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	wv := WeekView{
		Start:  monday.Format(booking.DateLayout),
		End:    monday.AddDate(0, 0, 6).Format(booking.DateLayout),
		Hours:  g.Hours(),
		Height: g.Height(),
	}
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		date := d.Format(booking.DateLayout)
		day := Day{Date: date, Weekday: d.Weekday().String()[:3]}
		for _, p := range Layout(byDate[date]) {
			day.Events = append(day.Events, Event{Placement: p, Box: g.Box(p)})
		}
		wv.Days = append(wv.Days, day)
	}
	return wv
}
