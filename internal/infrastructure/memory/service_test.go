package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/domain/booking"
)

func TestService_Seeded(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()

	res, err := s.Authenticate(ctx, "Admin", "password123")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "admin", res.Role)

	res, err = s.Authenticate(ctx, "user", "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)

	bs, err := s.GetBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "row-2", bs[0].ID)
	assert.Equal(t, 3, bs[1].RowIndex)
	assert.Equal(t, 1, s.CallCount("getBookings"))
}

func TestService_SubmitAndCancel(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	b := booking.Booking{Sport: booking.SportPickleball, Court: "Court 1", Date: "2026-02-25", StartHour: 10, EndHour: 12}

	res, err := s.SubmitBooking(ctx, booking.Submission{Booking: b})
	require.NoError(t, err)
	assert.False(t, res.Success, "overlaps seeded row 2")
	assert.Contains(t, res.Message, "row-2")

	b.StartHour, b.EndHour = 11, 12
	res, err = s.SubmitBooking(ctx, booking.Submission{Booking: b, ReceiptName: "r.png"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.CancelBooking(ctx, 2, "other")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = s.CancelBooking(ctx, 2, "mock1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	bs, _ := s.GetBookings(ctx)
	require.Len(t, bs, 3)
	assert.Equal(t, booking.StatusCancelled, bs[0].Status)
	assert.Equal(t, "memory://receipts/r.png", bs[2].ReceiptURL)
}

func TestService_RowsMatchProducerNormalization(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	bs, err := s.GetBookings(ctx)
	require.NoError(t, err)

	for _, b := range bs {
		raw, err := json.Marshal(booking.RecordOf(b))
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))

		n, err := booking.NormalizeRecord(m)
		require.NoError(t, err)
		assert.Equal(t, b.ID, n.ID)
		assert.Equal(t, b.Court, n.Court)
		assert.Equal(t, b.StartHour, n.StartHour)
		assert.Equal(t, b.EndHour, n.EndHour)
		assert.Equal(t, b.Status, n.Status)
	}
}

func TestService_SubmitReturnsRowKeys(t *testing.T) {
	s := NewSeeded()
	res, err := s.SubmitBooking(context.Background(), booking.Submission{Booking: booking.Booking{
		Sport: booking.SportPickleball, Court: "Court 2", Date: "2026-02-25", StartHour: 8, EndHour: 9,
	}})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 4, res.RowIndex)
	assert.NotEmpty(t, res.CalendarEventID)
}
