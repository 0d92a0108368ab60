package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/domain/booking"
)

func bk(id string, start, end int) booking.Booking {
	return booking.Booking{
		ID: id, Sport: booking.SportPickleball, Court: "Court 1", Date: "2026-02-25",
		StartHour: start, EndHour: end, Status: booking.StatusConfirmed,
	}
}

func byID(ps []Placement) map[string]Placement {
	m := make(map[string]Placement, len(ps))
	for _, p := range ps {
		m[p.Booking.ID] = p
	}
	return m
}

func TestLayout_ChainedCluster(t *testing.T) {
	got := byID(Layout([]booking.Booking{bk("C", 10, 12), bk("A", 8, 10), bk("B", 9, 11)}))

	require.Len(t, got, 3)
	assert.Equal(t, 0, got["A"].Column)
	assert.Equal(t, 1, got["B"].Column)
	assert.Equal(t, 0, got["C"].Column, "C reuses A's lane once A ends")
	for _, id := range []string{"A", "B", "C"} {
		assert.Equal(t, 2, got[id].Columns, id)
	}
}

func TestLayout_SeparateClusters(t *testing.T) {
	got := byID(Layout([]booking.Booking{bk("A", 8, 10), bk("B", 10, 12), bk("C", 10, 11)}))

	assert.Equal(t, 1, got["A"].Columns, "touching intervals do not cluster")
	assert.Equal(t, 0, got["C"].Column, "shorter booking sorts first on equal start")
	assert.Equal(t, 1, got["B"].Column)
	assert.Equal(t, 2, got["B"].Columns)
}

func TestLayout_NoOverlapWithinColumn(t *testing.T) {
	in := []booking.Booking{
		bk("a", 8, 12), bk("b", 9, 10), bk("c", 9, 11), bk("d", 10, 13),
		bk("e", 11, 12), bk("f", 12, 14), bk("g", 15, 16), bk("h", 15, 17),
	}
	out := Layout(in)
	require.Len(t, out, len(in))

	for i, p := range out {
		assert.Less(t, p.Column, p.Columns)
		for _, q := range out[i+1:] {
			if p.Column == q.Column && p.Columns == q.Columns {
				assert.False(t, p.Booking.Overlaps(q.Booking.StartHour, q.Booking.EndHour),
					"%s and %s share lane %d", p.Booking.ID, q.Booking.ID, p.Column)
			}
		}
	}
	got := byID(out)
	assert.Equal(t, 2, got["g"].Columns)
	assert.Equal(t, got["a"].Columns, got["f"].Columns, "f joins the cluster through d")
}

func TestLayout_Empty(t *testing.T) {
	assert.Empty(t, Layout(nil))
}

func TestGeometry_Box(t *testing.T) {
	g := Geometry{GridStart: 6, GridEnd: 24, RowHeight: 40, GutterPct: 2}
	box := g.Box(Placement{Booking: bk("x", 9, 11), Column: 1, Columns: 2})

	assert.Equal(t, Box{Top: 120, Height: 80, Left: 50, Width: 48}, box)
	assert.Len(t, g.Hours(), 18)
	assert.Equal(t, 720.0, g.Height())
}

func TestWeek(t *testing.T) {
	wed := time.Date(2026, 2, 25, 15, 0, 0, 0, time.UTC)
	cancelled := bk("gone", 8, 9)
	cancelled.Status = booking.StatusCancelled
	other := bk("other", 8, 9)
	other.Date = "2026-03-02"
	half := booking.Booking{ID: "half", Sport: booking.SportHalfBasketball, Court: "Half Court 1",
		Date: "2026-02-23", StartHour: 18, EndHour: 19, Status: booking.StatusBlocked}

	wv := Week([]booking.Booking{bk("A", 8, 10), cancelled, other, half}, wed, booking.Filter{IncludeCancelled: true}, DefaultGeometry)

	assert.Equal(t, "2026-02-23", wv.Start)
	assert.Equal(t, "2026-03-01", wv.End)
	require.Len(t, wv.Days, 7)
	assert.Equal(t, "Mon", wv.Days[0].Weekday)
	require.Len(t, wv.Days[0].Events, 1)
	assert.Equal(t, "half", wv.Days[0].Events[0].Booking.ID)
	require.Len(t, wv.Days[2].Events, 1, "cancelled booking hidden")
	assert.Equal(t, "A", wv.Days[2].Events[0].Booking.ID)

	wv = Week([]booking.Booking{bk("A", 8, 10), half}, wed, booking.Filter{Sport: booking.SportPickleball}, DefaultGeometry)
	assert.Empty(t, wv.Days[0].Events)
	assert.Len(t, wv.Days[2].Events, 1)
}

func TestWeekStart(t *testing.T) {
	sun := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-23", WeekStart(sun).Format(booking.DateLayout))
	mon := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-23", WeekStart(mon).Format(booking.DateLayout))
}
