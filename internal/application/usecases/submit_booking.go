package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/store"
)

type SubmitRequest struct {
	Session     string
	Selection   booking.Selection
	ReceiptData string // base64
	ReceiptName string
}

// SubmitBooking finalizes a customer's draft: it is re-validated against the
// effective set, sent to the storage service with its receipt, and recorded
// as a local Confirmed booking.
type SubmitBooking struct {
	Service booking.StorageService
	Store   *store.Store
	Guard   *Guard
	Notify  Notifier
	Log     zerolog.Logger
}

func (u SubmitBooking) Execute(ctx context.Context, req SubmitRequest) (booking.Booking, booking.Quote, error) {
	release, err := u.Guard.Acquire("submit", req.Session)
	if err != nil {
		return booking.Booking{}, booking.Quote{}, err
	}
	defer release()

	sel := req.Selection
	if err := sel.SetPaymentMethod(sel.PaymentMethod); err != nil {
		return booking.Booking{}, booking.Quote{}, err
	}
	if strings.TrimSpace(req.ReceiptData) == "" {
		return booking.Booking{}, booking.Quote{}, booking.ErrMissingReceipt
	}
	if strings.TrimSpace(sel.Customer.Name) == "" {
		return booking.Booking{}, booking.Quote{}, fmt.Errorf("customer name is required")
	}

	b, q, err := sel.Draft(u.Store.Effective())
	if err != nil {
		return booking.Booking{}, booking.Quote{}, err
	}

	res, err := u.Service.SubmitBooking(ctx, booking.Submission{
		Booking:     b,
		ReceiptData: req.ReceiptData,
		ReceiptName: req.ReceiptName,
	})
	if err != nil {
		return booking.Booking{}, booking.Quote{}, asRemote("submitBooking", err)
	}
	if !res.Success {
		return booking.Booking{}, booking.Quote{}, &booking.RemoteError{Op: "submitBooking", Message: res.Message}
	}
	// The local copy keeps the service's keys so the store can pair it with
	// the row once it is refetched, and cancel both together.
	b.RowIndex, b.CalendarEventID = res.RowIndex, res.CalendarEventID

	b, err = u.Store.Append(ctx, b)
	if err != nil {
		return booking.Booking{}, booking.Quote{}, err
	}
	u.Log.Info().Str("id", b.ID).Int("row", b.RowIndex).Str("court", b.Court).Str("date", b.Date).
		Str("time", b.TimeRange()).Float64("total", q.Total).Str("payment", string(b.PaymentMethod)).
		Msg("booking submitted")
	u.notifyCreated(ctx, b)
	return b, q, nil
}

func (u SubmitBooking) notifyCreated(ctx context.Context, b booking.Booking) {
	if u.Notify == nil {
		return
	}
	if err := u.Notify.BookingCreated(ctx, b); err != nil {
		u.Log.Warn().Err(err).Str("id", b.ID).Msg("booking notification failed")
	}
}
