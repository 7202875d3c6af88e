// internal/host/host.go

package host

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"gamesched/internal/sched"
)

// cpuState models one CPU of the simulated machine.
type cpuState struct {
	id     int
	idle   atomic.Bool
	direct chan *sched.Task // local hand-off slot, filled by whoever claimed the idle state
}

// Host simulates a multi-core machine driving the scheduling policy. It
// stands in for the real host scheduler: it runs the default CPU search,
// owns per-CPU idle state and run loops, and invokes the policy's SelectCPU,
// Enqueue and Dispatch entry points from every CPU concurrently.
type Host struct {
	cfg    sched.Config
	policy *sched.Policy
	clock  *TickClock
	cpus   []*cpuState

	events  chan Event
	stopped chan struct{}
	wg      sync.WaitGroup
}

// New wires a simulated machine with cfg.MaxCPUs CPUs, all idle. Attach the
// policy with Install before calling Run.
func New(cfg sched.Config) *Host {
	h := &Host{
		cfg:     cfg,
		clock:   NewTickClock(),
		cpus:    make([]*cpuState, cfg.MaxCPUs),
		events:  make(chan Event, 256),
		stopped: make(chan struct{}),
	}
	for i := range h.cpus {
		h.cpus[i] = &cpuState{id: i, direct: make(chan *sched.Task, 1)}
		h.cpus[i].idle.Store(true)
	}
	return h
}

// Install attaches the policy the host schedules with.
func (h *Host) Install(p *sched.Policy) {
	h.policy = p
}

// Policy returns the installed policy.
func (h *Host) Policy() *sched.Policy {
	return h.policy
}

// DefaultSelectCPU prefers the waking task's previous CPU when it is idle,
// else claims the first idle CPU the task's affinity permits. With no idle
// CPU the candidate is the previous CPU, busy, or the first permitted one.
func (h *Host) DefaultSelectCPU(t *sched.Task, prevCPU int, _ sched.WakeFlags) (int, bool) {
	if h.validCPU(prevCPU) && t.AllowedOn(prevCPU) && h.TestAndClearIdle(prevCPU) {
		return prevCPU, true
	}
	for _, c := range h.cpus {
		if t.AllowedOn(c.id) && h.TestAndClearIdle(c.id) {
			return c.id, true
		}
	}
	if h.validCPU(prevCPU) && t.AllowedOn(prevCPU) {
		return prevCPU, false
	}
	for _, c := range h.cpus {
		if t.AllowedOn(c.id) {
			return c.id, false
		}
	}
	return 0, false
}

// TestAndClearIdle atomically claims cpu's idle state.
func (h *Host) TestAndClearIdle(cpu int) bool {
	if !h.validCPU(cpu) {
		return false
	}
	return h.cpus[cpu].idle.CompareAndSwap(true, false)
}

// DispatchDirect hands t to cpu's local slot, bypassing the shared queues.
func (h *Host) DispatchDirect(t *sched.Task, cpu int) {
	if !h.validCPU(cpu) {
		return
	}
	select {
	case h.cpus[cpu].direct <- t:
		h.emit(Event{Time: time.Now(), Kind: EventDirect, Task: t.ID, CPU: cpu})
	default:
		// The slot can only be occupied if idle accounting was raced.
		// Fall back to the shared queues so the task is never lost.
		h.policy.Enqueue(t, 0)
		h.emit(Event{Time: time.Now(), Kind: EventEnqueue, Task: t.ID, CPU: cpu})
	}
}

// Wake submits t to the policy as a task wakeup from prevCPU and returns the
// chosen CPU. Wakeups the selector hands directly to an idle CPU skip the
// dispatch queues.
func (h *Host) Wake(t *sched.Task, prevCPU int) int {
	cpu, direct := h.policy.SelectCPU(t, prevCPU, 0)
	if !direct {
		h.policy.Enqueue(t, 0)
		h.emit(Event{Time: time.Now(), Kind: EventEnqueue, Task: t.ID, CPU: cpu})
	}
	return cpu
}

// Run starts the clock, the event consumer and one run loop per CPU, then
// blocks until ctx is cancelled and every loop has drained.
func (h *Host) Run(ctx context.Context) {
	h.clock.Start(time.Duration(h.cfg.TickMS) * time.Millisecond)

	done := make(chan struct{})
	go func() {
		h.consumeEvents()
		close(done)
	}()

	for _, c := range h.cpus {
		h.wg.Add(1)
		go h.runCPU(ctx, c)
	}
	h.wg.Wait()

	h.clock.Stop()
	// The events channel stays open: wakers may race shutdown, and emit
	// must stay safe to call after Run returns.
	close(h.stopped)
	<-done
}

// runCPU is one CPU's scheduling loop: take the next task, run it for a
// slice, re-wake it when the slice expired with work remaining.
func (h *Host) runCPU(ctx context.Context, c *cpuState) {
	defer h.wg.Done()
	ticks := h.clock.Subscribe()

	for {
		if ctx.Err() != nil {
			return
		}

		t := h.next(ctx, c, ticks)
		if t == nil {
			continue
		}

		h.emit(Event{Time: time.Now(), Kind: EventDispatch, Task: t.ID, CPU: c.id})
		err := h.runSlice(ctx, t)

		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			// Slice expired with work remaining: the task wakes again.
			h.emit(Event{Time: time.Now(), Kind: EventPreempt, Task: t.ID, CPU: c.id})
			h.Wake(t, c.id)
		default:
			h.emit(Event{Time: time.Now(), Kind: EventFinish, Task: t.ID, CPU: c.id})
		}
	}
}

// next returns the CPU's next task: its direct hand-off slot wins, then the
// shared dispatch queues. With nothing to do the CPU marks itself idle and
// waits out a tick or a hand-off.
func (h *Host) next(ctx context.Context, c *cpuState, ticks <-chan struct{}) *sched.Task {
	select {
	case t := <-c.direct:
		return t
	default:
	}

	if t, ok := h.policy.Dispatch(c.id); ok {
		return t
	}

	c.idle.Store(true)
	select {
	case t := <-c.direct:
		c.idle.Store(false)
		return t
	case <-ticks:
	case <-ctx.Done():
	}
	c.idle.Store(false)
	return nil
}

// runSlice runs t for at most one time slice. A nil return means the task
// finished voluntarily; non-nil means the slice expired or the host stopped.
func (h *Host) runSlice(ctx context.Context, t *sched.Task) error {
	if t.Run == nil {
		return nil
	}
	slice := time.Duration(h.cfg.SliceTicks*h.cfg.TickMS) * time.Millisecond
	runCtx, cancel := context.WithTimeout(ctx, slice)
	defer cancel()
	return t.Run(runCtx)
}

func (h *Host) emit(ev Event) {
	select {
	case h.events <- ev:
	default:
		// drop rather than stall a scheduling path
	}
}

func (h *Host) consumeEvents() {
	for {
		select {
		case ev := <-h.events:
			logrus.WithFields(logrus.Fields{
				"tick": h.clock.Count(),
				"task": ev.Task,
				"cpu":  ev.CPU,
			}).Debug(ev.Kind.String())
		case <-h.stopped:
			return
		}
	}
}

func (h *Host) validCPU(cpu int) bool {
	return cpu >= 0 && cpu < len(h.cpus)
}
