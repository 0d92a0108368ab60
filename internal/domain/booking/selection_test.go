package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_Draft(t *testing.T) {
	var s Selection
	require.NoError(t, s.SetSport(SportPickleball))
	require.NoError(t, s.SetCourt("Court 1"))
	require.NoError(t, s.SetDate("2026-02-25"))
	require.NoError(t, s.SetTimes("14:00", "16:00"))
	s.Customer = Customer{Name: "Mia"}

	b, q, err := s.Draft(nil)
	require.NoError(t, err)
	assert.Equal(t, 600.0, q.Total)
	assert.Equal(t, 300.0, q.Downpayment)
	assert.Equal(t, 600.0, b.TotalPrice)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, 2, b.Duration())
}

func TestSelection_SportChangeClearsCourt(t *testing.T) {
	var s Selection
	require.NoError(t, s.SetSport(SportPickleball))
	require.NoError(t, s.SetCourt("Court 2"))

	require.NoError(t, s.SetSport(SportPickleball))
	assert.Equal(t, "Court 2", s.Court)

	require.NoError(t, s.SetSport(SportHalfBasketball))
	assert.Empty(t, s.Court)
	assert.ErrorIs(t, s.SetCourt("Court 2"), ErrUnknownCourt)
}

func TestSelection_Rejects(t *testing.T) {
	var s Selection
	assert.ErrorIs(t, s.SetCourt("Court 1"), ErrUnknownCourt)
	assert.ErrorIs(t, s.SetTimes("16:00", "14:00"), ErrInvalidInterval)
	assert.ErrorIs(t, s.SetTimes("07:00", "09:00"), ErrInvalidInterval)
	assert.ErrorIs(t, s.SetTimes("14:15", "16:00"), ErrInvalidInterval)
	assert.ErrorIs(t, s.SetDate("02/25/2026"), ErrInvalidInterval)
	assert.ErrorIs(t, s.SetPaymentMethod(PaymentAdmin), ErrMissingPayment)
}

func TestSelection_DraftConflict(t *testing.T) {
	s := Selection{Sport: SportPickleball, Court: "Court 1", Date: "2026-02-25", StartHour: 14, EndHour: 16}
	taken := []Booking{{ID: "row-3", Sport: SportPickleball, Court: "Court 1", Date: "2026-02-25", StartHour: 15, EndHour: 17, Status: StatusConfirmed}}

	_, _, err := s.Draft(taken)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestSelection_Reset(t *testing.T) {
	s := Selection{Sport: SportPickleball, Court: "Court 1", PaymentMethod: PaymentFull}
	s.Reset()
	assert.Equal(t, Selection{}, s)
}
