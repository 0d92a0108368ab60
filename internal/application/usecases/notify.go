package usecases

import (
	"context"
	"errors"

	"github.com/example/court-booking/internal/domain/booking"
)

// Notifier receives booking lifecycle events. Delivery is best effort.
type Notifier interface {
	BookingCreated(ctx context.Context, b booking.Booking) error
	BookingCancelled(ctx context.Context, b booking.Booking) error
}

type NopNotifier struct{}

func (NopNotifier) BookingCreated(context.Context, booking.Booking) error   { return nil }
func (NopNotifier) BookingCancelled(context.Context, booking.Booking) error { return nil }

// Notifiers fans an event out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) BookingCreated(ctx context.Context, b booking.Booking) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.BookingCreated(ctx, b))
	}
	return errors.Join(errs...)
}

func (ns Notifiers) BookingCancelled(ctx context.Context, b booking.Booking) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.BookingCancelled(ctx, b))
	}
	return errors.Join(errs...)
}
