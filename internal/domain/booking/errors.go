package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval   = errors.New("invalid interval")
	ErrSlotConflict      = errors.New("slot conflict")
	ErrRemoteUnavailable = errors.New("booking service unavailable")
	ErrMissingReceipt    = errors.New("please upload your payment receipt")
	ErrMissingPayment    = errors.New("please select a payment method")
	ErrUnknownSport      = errors.New("unknown sport")
	ErrUnknownCourt      = errors.New("unknown court")
	ErrNotFound          = errors.New("booking not found")
	ErrInFlight          = errors.New("a request is already in progress")
)

// IntervalError reports a candidate interval that cannot be booked.
type IntervalError struct {
	Reason string
}

func (e *IntervalError) Error() string { return e.Reason }

func (e *IntervalError) Is(target error) bool { return target == ErrInvalidInterval }

func IsIntervalError(err error) *IntervalError {
	if err == nil {
		return nil
	}
	var ie *IntervalError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

// ConflictError carries the booking that already holds the requested slot.
type ConflictError struct {
	Existing Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already booked on %s from %s (booking %s)",
		e.Existing.Court, e.Existing.Date, e.Existing.TimeRange(), e.Existing.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrSlotConflict }

func IsConflictError(err error) *ConflictError {
	if err == nil {
		return nil
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// RemoteError is a failure reported by, or while reaching, the booking storage service.
// Message is shown to the user verbatim.
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + " failed"
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteUnavailable }
