package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepWork_ResumesAcrossSlices(t *testing.T) {
	// GIVEN a 30ms work budget run in 12ms slices
	work := SleepWork(30 * time.Millisecond)

	// WHEN slices expire before the budget is spent
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Millisecond)
		err := work(ctx)
		cancel()
		if err == nil {
			return // budget spent within the slices
		}
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}

	// THEN the carried-over remainder completes on an uninterrupted run
	assert.NoError(t, work(context.Background()))
}

func TestSleepWork_SpentBudgetFinishesImmediately(t *testing.T) {
	work := SleepWork(0)
	assert.NoError(t, work(context.Background()))

	work = SleepWork(time.Millisecond)
	assert.NoError(t, work(context.Background()))
	assert.NoError(t, work(context.Background()), "a finished task stays finished")
}

func TestLoopWork_YieldsOnlyOnSliceExpiry(t *testing.T) {
	work := LoopWork()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := work(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
