package postgres

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/db"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/domain/user"
	"github.com/example/court-booking/internal/infrastructure/crypto"
	"github.com/example/court-booking/internal/migrate"
)

func TestDecodeReceipt(t *testing.T) {
	raw := []byte("\x89PNG\r\n")
	enc := base64.StdEncoding.EncodeToString(raw)

	got, err := decodeReceipt(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = decodeReceipt("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = decodeReceipt("not base64!")
	assert.Error(t, err)
}

func TestReceiptName(t *testing.T) {
	assert.Equal(t, "gcash.png", receiptName(`C:\Users\mia\gcash.png`))
	assert.Equal(t, "gcash.png", receiptName("../../gcash.png"))
	assert.Equal(t, "receipt", receiptName("  "))
}

func TestReceiptURL(t *testing.T) {
	s := &BookingService{BaseURL: "https://courts.example.com/"}
	assert.Equal(t, "https://courts.example.com/receipts/4", s.ReceiptURL(4))
}

// Runs against a scratch database when TEST_DATABASE_URL is set.
func TestBookingService_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	require.NoError(t, migrate.Up(ctx, d, zerolog.Nop()))
	require.NoError(t, d.Exec(ctx, `TRUNCATE receipts, bookings, users`))

	aead, err := crypto.New(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	users := NewUserRepo(d)
	svc := &BookingService{DB: d, Users: users, Sealer: aead, BaseURL: "http://localhost:8080", Log: zerolog.Nop()}

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	_, err = users.Create(ctx, "Admin", []byte(hash), user.RoleAdmin)
	require.NoError(t, err)

	res, err := svc.Authenticate(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "admin", res.Role)

	sub := booking.Submission{
		Booking: booking.Booking{Sport: booking.SportPickleball, Court: "Court 1", Date: "2026-02-25",
			StartHour: 14, EndHour: 16, TotalPrice: 600, Downpayment: 300, PaymentMethod: booking.PaymentDownpayment,
			Customer: booking.Customer{Name: "Mia"}},
		ReceiptData: base64.StdEncoding.EncodeToString([]byte("receipt")),
		ReceiptName: "gcash.png",
	}
	out, err := svc.SubmitBooking(ctx, sub)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	sub.Booking.StartHour, sub.Booking.EndHour = 15, 17
	out, err = svc.SubmitBooking(ctx, sub)
	require.NoError(t, err)
	assert.False(t, out.Success)

	bs, err := svc.GetBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, "2026-02-25", bs[0].Date)
	assert.NotEmpty(t, bs[0].ReceiptURL)

	r, err := svc.Receipt(ctx, bs[0].RowIndex)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(r.Data))

	out, err = svc.CancelBooking(ctx, bs[0].RowIndex, bs[0].CalendarEventID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	out, err = svc.CancelBooking(ctx, 9999, "")
	require.NoError(t, err)
	assert.False(t, out.Success)
}
