package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/domain/booking"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BOOKING_BACKEND", "memory")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBookingList(t *testing.T) {
	out, err := run(t, "booking", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe")
	assert.NotContains(t, out, "Jane Smith")

	out, err = run(t, "booking", "list", "--cancelled")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Smith")

	out, err = run(t, "booking", "list", "--sport", "Whole Basketball", "--cancelled")
	require.NoError(t, err)
	assert.NotContains(t, out, "John Doe")
}

func TestBookingCreate(t *testing.T) {
	out, err := run(t, "booking", "create",
		"--sport", "Pickleball", "--court", "Court 2", "--date", "2026-03-02",
		"--start", "6", "--end", "8", "--status", "Blocked")
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked Court 2 2026-03-02 06:00-08:00")
}

func TestBookingCreate_Conflict(t *testing.T) {
	_, err := run(t, "booking", "create",
		"--sport", "Pickleball", "--court", "Court 1", "--date", "2026-02-25",
		"--start", "10:00", "--end", "12:00", "--name", "Walk-in")
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrSlotConflict)
}

func TestBookingCancel_Unknown(t *testing.T) {
	_, err := run(t, "booking", "cancel", "--id", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestBookingCalendar(t *testing.T) {
	out, err := run(t, "booking", "calendar", "--week", "2026-02-25")
	require.NoError(t, err)
	assert.Contains(t, out, "Week of 2026-02-23")
	assert.Contains(t, out, "10:00-11:00  lane 1/1  Court 1 John Doe")
	assert.NotContains(t, out, "Jane Smith")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "courtbook dev")
}
