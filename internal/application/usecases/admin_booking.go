package usecases

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/store"
)

type AdminRequest struct {
	Session   string
	Sport     booking.Sport
	Court     string
	Date      string
	StartHour int
	EndHour   int
	Status    booking.Status
	Customer  booking.Customer
}

// AdminBook records a walk-in or a block-out directly in the local
// partition. Admins may book from the earlier admin opening hour.
type AdminBook struct {
	Store  *store.Store
	Guard  *Guard
	Notify Notifier
	Log    zerolog.Logger
}

func (u AdminBook) Execute(ctx context.Context, req AdminRequest) (booking.Booking, error) {
	release, err := u.Guard.Acquire("admin-create", req.Session)
	if err != nil {
		return booking.Booking{}, err
	}
	defer release()

	status := req.Status
	if status == "" {
		status = booking.StatusConfirmed
	}
	if status != booking.StatusConfirmed && status != booking.StatusBlocked {
		return booking.Booking{}, fmt.Errorf("admin bookings must be Confirmed or Blocked, got %q", status)
	}
	b := booking.Booking{
		Sport:         req.Sport,
		Court:         req.Court,
		Date:          req.Date,
		StartHour:     req.StartHour,
		EndHour:       req.EndHour,
		Status:        status,
		PaymentMethod: booking.PaymentAdmin,
		Customer:      req.Customer,
	}
	if err := booking.Validate(u.Store.Effective(), b, booking.AdminHours); err != nil {
		return booking.Booking{}, err
	}
	if status == booking.StatusConfirmed {
		q, err := booking.ComputePrice(b.Sport, b.Duration())
		if err != nil {
			return booking.Booking{}, err
		}
		b.TotalPrice, b.Downpayment = q.Total, q.Downpayment
	}

	b, err = u.Store.Append(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}
	u.Log.Info().Str("id", b.ID).Str("status", string(b.Status)).Str("court", b.Court).
		Str("date", b.Date).Str("time", b.TimeRange()).Msg("admin booking created")
	if u.Notify != nil {
		if err := u.Notify.BookingCreated(ctx, b); err != nil {
			u.Log.Warn().Err(err).Str("id", b.ID).Msg("booking notification failed")
		}
	}
	return b, nil
}

type CancelBooking struct {
	Store  *store.Store
	Guard  *Guard
	Notify Notifier
	Log    zerolog.Logger
}

func (u CancelBooking) Execute(ctx context.Context, session, id string) error {
	release, err := u.Guard.Acquire("cancel", session)
	if err != nil {
		return err
	}
	defer release()

	b, err := u.Store.Find(id)
	if err != nil {
		return err
	}
	if err := u.Store.Cancel(ctx, id); err != nil {
		return err
	}
	b.Status = booking.StatusCancelled
	u.Log.Info().Str("id", id).Str("origin", string(b.Origin)).Msg("booking cancelled")
	if u.Notify != nil {
		if err := u.Notify.BookingCancelled(ctx, b); err != nil {
			u.Log.Warn().Err(err).Str("id", id).Msg("cancel notification failed")
		}
	}
	return nil
}
