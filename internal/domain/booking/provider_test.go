package booking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestNormalizeRecord_CasingInsensitive(t *testing.T) {
	producer := decode(t, `{"rowIndex": 2, "Name": "John Doe", "Sport": "Pickleball", "Court": "Court 1",
		"Date": "2026-02-25", "StartTime": "10:00", "EndTime": "11:00", "Status": "Confirmed",
		"TotalPrice": 300, "PaymentMethod": "GCash Full", "ReceiptURL": "None", "CalendarEventID": "mock1"}`)
	shadow := decode(t, `{"rowindex": "2", "name": "John Doe", "sport": "pickleball", "court": "Court 1",
		"date": "2026-02-25T00:00:00.000Z", "startTime": "10:00", "endTime": "11:00", "status": "confirmed",
		"totalPrice": "300", "paymentType": "gcash full", "calendarEventId": "mock1"}`)

	a, err := NormalizeRecord(producer)
	require.NoError(t, err)
	b, err := NormalizeRecord(shadow)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "row-2", a.ID)
	assert.Equal(t, SportPickleball, a.Sport)
	assert.Equal(t, 10, a.StartHour)
	assert.Equal(t, 11, a.EndHour)
	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Equal(t, PaymentFull, a.PaymentMethod)
	assert.Equal(t, 150.0, a.Downpayment)
	assert.Equal(t, OriginRemote, a.Origin)
	assert.Empty(t, a.ReceiptURL)
}

func TestNormalizeRecord_Rejects(t *testing.T) {
	_, err := NormalizeRecord(decode(t, `{"Sport": "Tennis", "Date": "2026-02-25", "StartTime": "10:00", "EndTime": "11:00"}`))
	assert.ErrorIs(t, err, ErrUnknownSport)

	_, err = NormalizeRecord(decode(t, `{"Sport": "Pickleball", "Date": "2026-02-25", "StartTime": "10:30", "EndTime": "11:00"}`))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NormalizeRecord(decode(t, `{"Sport": "Pickleball", "Date": "tomorrow", "StartTime": "10:00", "EndTime": "11:00"}`))
	assert.Error(t, err)
}

func TestNormalizeRecord_RejectsBrokenIntervalsAndCourts(t *testing.T) {
	for name, rec := range map[string]string{
		"reversed":          `{"Sport": "Pickleball", "Court": "Court 1", "Date": "2026-02-25", "StartTime": "12:00", "EndTime": "10:00"}`,
		"empty":             `{"Sport": "Pickleball", "Court": "Court 1", "Date": "2026-02-25", "StartTime": "10:00", "EndTime": "10:00"}`,
		"hours off the day": `{"Sport": "Pickleball", "Court": "Court 1", "Date": "2026-02-25", "startHour": 30, "endHour": -4}`,
		"negative start":    `{"Sport": "Pickleball", "Court": "Court 1", "Date": "2026-02-25", "startHour": -1, "endHour": 2}`,
		"fractional hour":   `{"Sport": "Pickleball", "Court": "Court 1", "Date": "2026-02-25", "startHour": 10.5, "endHour": 12}`,
	} {
		_, err := NormalizeRecord(decode(t, rec))
		assert.ErrorIs(t, err, ErrInvalidInterval, name)
	}

	_, err := NormalizeRecord(decode(t, `{"Sport": "Pickleball", "Court": "Half Court 1", "Date": "2026-02-25", "StartTime": "10:00", "EndTime": "12:00"}`))
	assert.ErrorIs(t, err, ErrUnknownCourt)

	_, err = NormalizeRecord(decode(t, `{"Sport": "Pickleball", "Date": "2026-02-25", "StartTime": "10:00", "EndTime": "12:00"}`))
	assert.ErrorIs(t, err, ErrUnknownCourt, "court is required")

	b, err := NormalizeRecord(decode(t, `{"Sport": "Pickleball", "Court": "Court 2", "Date": "2026-02-25", "startHour": 22, "endHour": 24}`))
	require.NoError(t, err)
	assert.Equal(t, 22, b.StartHour)
	assert.Equal(t, 24, b.EndHour)
}

func TestRecordRoundTripThroughNormalize(t *testing.T) {
	in := Booking{
		ID: "row-7", Sport: SportHalfBasketball, Court: "Half Court 3", Date: "2026-03-02",
		StartHour: 18, EndHour: 20, Status: StatusBlocked, TotalPrice: 1000, Downpayment: 500,
		PaymentMethod: PaymentDownpayment, Customer: Customer{Name: "Ana"}, RowIndex: 7,
		CalendarEventID: "evt", Origin: OriginRemote,
	}
	raw, err := json.Marshal(RecordOf(in))
	require.NoError(t, err)

	out, err := NormalizeRecord(decode(t, string(raw)))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNormalizeSubmission(t *testing.T) {
	sub := Submission{
		Booking: Booking{
			Sport: SportPickleball, Court: "Court 1", Date: "2026-02-25", StartHour: 14, EndHour: 16,
			TotalPrice: 600, Downpayment: 300, PaymentMethod: PaymentDownpayment,
			Customer: Customer{Name: "Mia", Contact: "0917", Email: "mia@example.com"},
		},
		ReceiptData: "aGVsbG8=",
		ReceiptName: "receipt.png",
	}
	raw, err := json.Marshal(PayloadOf(sub))
	require.NoError(t, err)

	got, err := NormalizeSubmission(decode(t, string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", got.ReceiptData)
	assert.Equal(t, "receipt.png", got.ReceiptName)
	assert.Equal(t, StatusConfirmed, got.Booking.Status)
	assert.Equal(t, 14, got.Booking.StartHour)
	assert.Equal(t, 16, got.Booking.EndHour)
	assert.Equal(t, sub.Booking.Customer, got.Booking.Customer)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"Confirmed": StatusConfirmed, "BLOCKED": StatusBlocked, "canceled": StatusCancelled,
		"Pending Payment": StatusPending, "pending verification": StatusPending,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStatus("lost")
	assert.Error(t, err)
}
