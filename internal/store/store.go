// Package store keeps the effective booking set: the remote partition fetched
// from the storage service plus the locally persisted partition.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/example/court-booking/internal/domain/booking"
)

var tracer = otel.Tracer("github.com/example/court-booking/internal/store")

// LocalStore persists the local partition as a whole.
type LocalStore interface {
	Load(ctx context.Context) ([]booking.Booking, error)
	Save(ctx context.Context, bookings []booking.Booking) error
}

// Merge concatenates the two partitions. Records are not de-duplicated.
func Merge(remote, local []booking.Booking) []booking.Booking {
	out := make([]booking.Booking, 0, len(remote)+len(local))
	out = append(out, remote...)
	return append(out, local...)
}

// mirrors reports whether the remote record r is the service's copy of the
// local record l written after a customer submission. Records that carry
// the service's keys pair by them; older ones pair on slot and customer.
// Admin records never leave the local partition.
func mirrors(l, r booking.Booking) bool {
	switch {
	case l.CalendarEventID != "":
		return r.CalendarEventID == l.CalendarEventID
	case l.RowIndex > 0:
		return r.RowIndex == l.RowIndex
	case l.PaymentMethod == booking.PaymentAdmin:
		return false
	}
	return r.Court == l.Court && r.Date == l.Date &&
		r.StartHour == l.StartHour && r.EndHour == l.EndHour &&
		strings.EqualFold(strings.TrimSpace(r.Customer.Name), strings.TrimSpace(l.Customer.Name))
}

func counterpart(l booking.Booking, remote []booking.Booking) (booking.Booking, bool) {
	for _, r := range remote {
		if mirrors(l, r) {
			return r, true
		}
	}
	return booking.Booking{}, false
}

func shadowOf(r booking.Booking, local []booking.Booking) (booking.Booking, bool) {
	for _, l := range local {
		if mirrors(l, r) {
			return l, true
		}
	}
	return booking.Booking{}, false
}

// unmirrored drops local records the remote partition already holds.
func unmirrored(local, remote []booking.Booking) []booking.Booking {
	out := make([]booking.Booking, 0, len(local))
	for _, l := range local {
		if _, ok := counterpart(l, remote); !ok {
			out = append(out, l)
		}
	}
	return out
}

type Store struct {
	svc   booking.StorageService
	local LocalStore
	log   zerolog.Logger
	now   func() time.Time

	mu          sync.RWMutex
	remote      []booking.Booking
	localRecs   []booking.Booking
	refreshedAt time.Time

	group singleflight.Group
}

func New(svc booking.StorageService, local LocalStore, log zerolog.Logger) *Store {
	return &Store{
		svc:   svc,
		local: local,
		log:   log.With().Str("component", "store").Logger(),
		now:   time.Now,
	}
}

// Load reads the local partition from durable storage.
func (s *Store) Load(ctx context.Context) error {
	recs, err := s.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local bookings: %w", err)
	}
	for i := range recs {
		recs[i].Origin = booking.OriginLocal
	}
	s.mu.Lock()
	s.localRecs = recs
	s.mu.Unlock()
	s.log.Debug().Int("count", len(recs)).Msg("local bookings loaded")
	return nil
}

// Refresh replaces the remote partition with a fresh fetch. Concurrent
// callers share one in-flight request.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, shared := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	if shared {
		s.log.Debug().Msg("refresh collapsed into in-flight request")
	}
	return err
}

func (s *Store) refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "store.Refresh")
	defer span.End()

	recs, err := s.svc.GetBookings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var re *booking.RemoteError
		if !errors.As(err, &re) {
			err = &booking.RemoteError{Op: "getBookings", Err: err}
		}
		return err
	}
	for i := range recs {
		recs[i].Origin = booking.OriginRemote
	}
	span.SetAttributes(attribute.Int("bookings.remote", len(recs)))

	s.mu.Lock()
	s.remote = recs
	s.refreshedAt = s.now()
	s.mu.Unlock()
	s.log.Debug().Int("count", len(recs)).Msg("remote bookings refreshed")
	return nil
}

func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Effective returns a copy of the merged set. A submitted booking appears
// once: its local copy is hidden as soon as the service returns the row.
func (s *Store) Effective() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Merge(s.remote, unmirrored(s.localRecs, s.remote))
}

func (s *Store) Local() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking.Booking, len(s.localRecs))
	copy(out, s.localRecs)
	return out
}

func (s *Store) Filter(f booking.Filter) []booking.Booking {
	return booking.Apply(s.Effective(), f)
}

func (s *Store) Find(id string) (booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.localRecs, id); i >= 0 {
		return s.localRecs[i], nil
	}
	if i := indexOf(s.remote, id); i >= 0 {
		return s.remote[i], nil
	}
	return booking.Booking{}, fmt.Errorf("%w: %s", booking.ErrNotFound, id)
}

// Append adds b to the local partition and persists it. An occupying b is
// checked for overlaps under the write lock, so two writers racing for one
// slot cannot both land. The persisted partition is left unchanged if the
// write fails.
func (s *Store) Append(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}
	b.Origin = booking.OriginLocal

	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Status.Occupies() {
		if c, ok := s.conflictLocked(b); ok {
			return booking.Booking{}, &booking.ConflictError{Existing: c}
		}
	}
	next := make([]booking.Booking, 0, len(s.localRecs)+1)
	next = append(next, s.localRecs...)
	next = append(next, b)
	if err := s.local.Save(ctx, next); err != nil {
		return booking.Booking{}, fmt.Errorf("persist local booking: %w", err)
	}
	s.localRecs = next
	s.log.Info().Str("id", b.ID).Str("court", b.Court).Str("date", b.Date).
		Str("time", b.TimeRange()).Str("status", string(b.Status)).Msg("booking appended")
	return b, nil
}

// conflictLocked finds an occupying record overlapping b, skipping b's own
// service row when a refetch already brought it in. s.mu must be held.
func (s *Store) conflictLocked(b booking.Booking) (booking.Booking, bool) {
	for _, e := range Merge(s.remote, unmirrored(s.localRecs, s.remote)) {
		if mirrors(b, e) {
			continue
		}
		if c, ok := booking.FindConflict([]booking.Booking{e}, b.Court, b.Date, b.StartHour, b.EndHour); ok {
			return c, true
		}
	}
	return booking.Booking{}, false
}

// Cancel marks a booking cancelled. Rows held by the storage service are
// cancelled there first and the remote partition is refetched. A submitted
// booking's local copy is cancelled together with its service row, whichever
// of the two ids is given.
func (s *Store) Cancel(ctx context.Context, id string) error {
	var local, remote *booking.Booking
	s.mu.RLock()
	if i := indexOf(s.localRecs, id); i >= 0 {
		l := s.localRecs[i]
		local = &l
		if r, ok := counterpart(l, s.remote); ok {
			remote = &r
		}
	} else if i := indexOf(s.remote, id); i >= 0 {
		r := s.remote[i]
		remote = &r
		if l, ok := shadowOf(r, s.localRecs); ok {
			local = &l
		}
	}
	s.mu.RUnlock()
	if local == nil && remote == nil {
		return fmt.Errorf("%w: %s", booking.ErrNotFound, id)
	}
	if local != nil && local.Status == booking.StatusCancelled &&
		(remote == nil || remote.Status == booking.StatusCancelled) {
		return nil
	}

	var row int
	var event string
	upstream := true
	switch {
	case remote != nil:
		row, event = remote.RowIndex, remote.CalendarEventID
	case local.RowIndex > 0 || local.CalendarEventID != "":
		// submitted, not refetched yet
		row, event = local.RowIndex, local.CalendarEventID
	default:
		upstream = false
	}
	if upstream {
		if err := s.cancelRemote(ctx, row, event); err != nil {
			return err
		}
		s.log.Info().Str("id", id).Int("row", row).Msg("remote booking cancelled")
	}
	if local != nil {
		if err := s.cancelLocal(ctx, local.ID); err != nil {
			return err
		}
	}
	if upstream {
		return s.Refresh(ctx)
	}
	return nil
}

func (s *Store) cancelRemote(ctx context.Context, row int, event string) error {
	res, err := s.svc.CancelBooking(ctx, row, event)
	if err != nil {
		var re *booking.RemoteError
		if !errors.As(err, &re) {
			err = &booking.RemoteError{Op: "cancelBooking", Err: err}
		}
		return err
	}
	if !res.Success {
		return &booking.RemoteError{Op: "cancelBooking", Message: res.Message}
	}
	return nil
}

// cancelLocal flips the status of one local record and persists the partition.
func (s *Store) cancelLocal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.localRecs, id)
	if i < 0 || s.localRecs[i].Status == booking.StatusCancelled {
		return nil
	}
	next := make([]booking.Booking, len(s.localRecs))
	copy(next, s.localRecs)
	next[i].Status = booking.StatusCancelled
	if err := s.local.Save(ctx, next); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}
	s.localRecs = next
	s.log.Info().Str("id", id).Msg("local booking cancelled")
	return nil
}

func indexOf(bs []booking.Booking, id string) int {
	for i := range bs {
		if bs[i].ID == id {
			return i
		}
	}
	return -1
}

// MemoryLocal is a LocalStore that lives only as long as the process.
type MemoryLocal struct {
	mu    sync.Mutex
	recs  []booking.Booking
	Saves int
}

func (m *MemoryLocal) Load(context.Context) ([]booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]booking.Booking, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *MemoryLocal) Save(_ context.Context, bs []booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = make([]booking.Booking, len(bs))
	copy(m.recs, bs)
	m.Saves++
	return nil
}
