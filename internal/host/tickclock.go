// internal/host/tickclock.go

package host

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickClock emits ticks to every subscriber and counts them atomically.
type TickClock struct {
	mu    sync.Mutex
	subs  []chan struct{}
	count atomic.Int64
	stop  chan struct{}
}

// NewTickClock creates a clock but does not start it.
func NewTickClock() *TickClock {
	return &TickClock{stop: make(chan struct{})}
}

// Subscribe returns a channel receiving one value per tick. Slow subscribers
// drop ticks rather than stalling the clock.
func (c *TickClock) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Start begins emitting ticks at the given interval.
func (c *TickClock) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.count.Add(1)
				c.mu.Lock()
				for _, ch := range c.subs {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
				c.mu.Unlock()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop signals the clock to stop emitting ticks.
func (c *TickClock) Stop() {
	close(c.stop)
}

// Count returns the current tick count atomically.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}
