package usecases

import (
	"context"
	"sync"

	"github.com/example/court-booking/internal/domain/booking"
)

// DraftStore keeps one in-progress selection per web session.
// Get returns a zero Selection when the session has none.
type DraftStore interface {
	Get(ctx context.Context, session string) (booking.Selection, error)
	Put(ctx context.Context, session string, sel booking.Selection) error
	Delete(ctx context.Context, session string) error
}

type MemoryDrafts struct {
	mu sync.Mutex
	m  map[string]booking.Selection
}

func NewMemoryDrafts() *MemoryDrafts {
	return &MemoryDrafts{m: map[string]booking.Selection{}}
}

func (d *MemoryDrafts) Get(_ context.Context, session string) (booking.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m[session], nil
}

func (d *MemoryDrafts) Put(_ context.Context, session string, sel booking.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[session] = sel
	return nil
}

func (d *MemoryDrafts) Delete(_ context.Context, session string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, session)
	return nil
}
