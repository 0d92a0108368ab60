package usecases

import (
	"sync"

	"github.com/example/court-booking/internal/domain/booking"
)

// Guard rejects a second request for the same operation and session while
// the first is still running.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{busy: map[string]struct{}{}}
}

// Acquire returns a release func, or ErrInFlight when op is already running for session.
func (g *Guard) Acquire(op, session string) (func(), error) {
	key := op + "\x00" + session
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return nil, booking.ErrInFlight
	}
	g.busy[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.busy, key)
		g.mu.Unlock()
	}, nil
}
