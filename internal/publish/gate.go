package publish

import (
	"context"
	"sync"
	"time"
)

// Gate spaces out calls so that at least interval elapses between two
// consecutive releases. The first release is immediate.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: max(interval, 0), now: time.Now}
}

// Wait blocks until the interval since the previous release has passed or
// ctx is cancelled. A cancelled wait does not count as a release.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() {
		if wait := g.last.Add(g.interval).Sub(g.now()); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.last = g.now()
	return nil
}

func (g *Gate) Interval() time.Duration {
	return g.interval
}
