package host

import (
	"context"
	"time"
)

// SleepWork returns a runnable that consumes d of wall time in total. A
// slice expiry only pauses it: the unspent budget carries over, so the task
// finishes after enough slices regardless of how often it is preempted.
func SleepWork(d time.Duration) func(context.Context) error {
	remaining := d
	return func(ctx context.Context) error {
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(remaining)
		defer timer.Stop()

		start := time.Now()
		select {
		case <-ctx.Done():
			if spent := time.Since(start); spent < remaining {
				remaining -= spent
			} else {
				remaining = 0
			}
			return ctx.Err()
		case <-timer.C:
			remaining = 0
			return nil
		}
	}
}

// LoopWork returns a runnable that never finishes on its own; it yields only
// when its slice expires. Useful as a sustained-load generator.
func LoopWork() func(context.Context) error {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}
