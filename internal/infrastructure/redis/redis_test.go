package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/store"
)

var (
	_ store.LocalStore    = (*LocalStore)(nil)
	_ usecases.DraftStore = (*DraftStore)(nil)
)

func setup(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

func TestLocalStore(t *testing.T) {
	mr := setup(t)
	ctx := context.Background()
	s := NewLocalStore(NewClient(mr.Addr(), "", 0), "")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	b := booking.Booking{ID: "local-1", Sport: booking.SportPickleball, Court: "Court 1", Date: "2026-02-25",
		StartHour: 14, EndHour: 16, Status: booking.StatusConfirmed, TotalPrice: 600, Downpayment: 300,
		Origin: booking.OriginLocal, CreatedAt: time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Save(ctx, []booking.Booking{b}))
	assert.True(t, mr.Exists(DefaultLocalKey))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0])

	require.NoError(t, s.Save(ctx, nil))
	raw, err := mr.Get(DefaultLocalKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLocalStore_Corrupt(t *testing.T) {
	mr := setup(t)
	require.NoError(t, mr.Set("bookings", "{not json"))
	_, err := NewLocalStore(NewClient(mr.Addr(), "", 0), "bookings").Load(context.Background())
	assert.Error(t, err)
}

func TestDraftStore(t *testing.T) {
	mr := setup(t)
	ctx := context.Background()
	s := NewDraftStore(NewClient(mr.Addr(), "", 0), 30*time.Minute)

	sel, err := s.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, booking.Selection{}, sel)

	want := booking.Selection{Sport: booking.SportPickleball, Court: "Court 1", Date: "2026-02-25", StartHour: 14, EndHour: 16}
	require.NoError(t, s.Put(ctx, "sid", want))
	assert.Equal(t, 30*time.Minute, mr.TTL("draft:sid"))

	sel, err = s.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, want, sel)

	mr.FastForward(31 * time.Minute)
	sel, err = s.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, booking.Selection{}, sel)

	require.NoError(t, s.Put(ctx, "sid", want))
	require.NoError(t, s.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("draft:sid"))
}
