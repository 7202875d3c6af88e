package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamesched/internal/sched"
)

func newTestHost(t *testing.T, nrCPUs int) *Host {
	t.Helper()
	cfg := sched.Config{MaxCPUs: nrCPUs, TickMS: 1, SliceTicks: 2}
	h := New(cfg)
	p, err := sched.New(cfg, h)
	require.NoError(t, err)
	h.Install(p)
	return h
}

func TestDefaultSelectCPU_PrefersIdlePrevCPU(t *testing.T) {
	h := newTestHost(t, 4)

	cpu, idle := h.DefaultSelectCPU(&sched.Task{ID: 1}, 2, 0)

	assert.Equal(t, 2, cpu)
	assert.True(t, idle)
}

func TestDefaultSelectCPU_FallsToFirstIdleAllowed(t *testing.T) {
	h := newTestHost(t, 4)
	h.cpus[0].idle.Store(false)
	h.cpus[1].idle.Store(false)

	task := &sched.Task{ID: 1, Affinity: sched.NewCPUMask(1, 3)}
	cpu, idle := h.DefaultSelectCPU(task, 1, 0)

	assert.Equal(t, 3, cpu)
	assert.True(t, idle)
}

func TestDefaultSelectCPU_AllBusyReturnsPrevNotIdle(t *testing.T) {
	h := newTestHost(t, 4)
	for _, c := range h.cpus {
		c.idle.Store(false)
	}

	cpu, idle := h.DefaultSelectCPU(&sched.Task{ID: 1}, 2, 0)

	assert.Equal(t, 2, cpu)
	assert.False(t, idle)
}

func TestTestAndClearIdle_ClaimsOnce(t *testing.T) {
	h := newTestHost(t, 2)

	assert.True(t, h.TestAndClearIdle(0))
	assert.False(t, h.TestAndClearIdle(0), "second claim must fail")
	assert.False(t, h.TestAndClearIdle(-1))
	assert.False(t, h.TestAndClearIdle(2))
}

func TestWake_IdleCPUGetsDirectHandOff(t *testing.T) {
	h := newTestHost(t, 2)
	task := &sched.Task{ID: 1}

	cpu := h.Wake(task, 0)

	assert.Equal(t, 0, cpu)
	assert.Zero(t, h.Policy().QueuedTasks(), "direct hand-off must bypass the queues")
	select {
	case got := <-h.cpus[0].direct:
		assert.Equal(t, task, got)
	default:
		t.Fatal("task not in the direct slot")
	}
}

func TestWake_BusyMachineFallsBackToQueues(t *testing.T) {
	h := newTestHost(t, 2)
	for _, c := range h.cpus {
		c.idle.Store(false)
	}

	h.Wake(&sched.Task{ID: 1}, 0)

	assert.Equal(t, 1, h.Policy().QueuedTasks())
	assert.Equal(t, uint64(1), h.Policy().Stats().NormalDispatches.Load())
}

func TestWake_SafeDuringAndAfterShutdown(t *testing.T) {
	// GIVEN a host whose run loops have already torn down
	h := newTestHost(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx)

	// WHEN a load generator that raced shutdown keeps waking tasks,
	// enough of them to fill the direct slots and the event buffer
	for i := 0; i < 600; i++ {
		h.Wake(&sched.Task{ID: sched.TaskID(i + 1)}, 0)
	}

	// THEN nothing panics and the late wakeups land in the queues
	assert.Positive(t, h.Policy().QueuedTasks())
}

func TestRun_DrivesTasksToCompletion(t *testing.T) {
	h := newTestHost(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	// a workload long enough to be preempted at least once (slice is 2ms)
	work := SleepWork(10 * time.Millisecond)
	finished := make(chan struct{})
	h.Wake(&sched.Task{ID: 1, Run: func(c context.Context) error {
		err := work(c)
		if err == nil {
			close(finished)
		}
		return err
	}}, 0)

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("host did not shut down")
	}
}
