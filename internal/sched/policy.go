package sched

import (
	"errors"
	"fmt"
)

// WakeFlags carries the host's wakeup context through SelectCPU. The policy
// hands it to the host's default search untouched.
type WakeFlags uint64

// EnqueueFlags carries the host's enqueue context. The class discipline does
// not interpret it.
type EnqueueFlags uint64

// Host is the narrow surface the policy requires from its host scheduler.
type Host interface {
	// DefaultSelectCPU runs the host's idle- and affinity-aware CPU search
	// for t. idle reports that the returned CPU's idle state was claimed,
	// in which case the caller owns it and may hand t over directly.
	DefaultSelectCPU(t *Task, prevCPU int, wake WakeFlags) (cpu int, idle bool)

	// TestAndClearIdle atomically claims cpu's idle state, returning false
	// when cpu is busy or already claimed.
	TestAndClearIdle(cpu int) bool

	// DispatchDirect hands t straight to cpu's local run slot, bypassing
	// the dispatch queues. Only valid after a successful idle claim.
	DispatchDirect(t *Task, cpu int)
}

// Policy implements the class-based scheduling discipline: pinned tasks land
// on their pinned CPU, non-elevated tasks are steered off isolated CPUs, and
// waiting tasks drain strictly in class tier order.
//
// SelectCPU, Enqueue, and Dispatch are safe for concurrent invocation from
// every CPU and never block; each completes in at most O(NrCPUs) steps.
type Policy struct {
	reg    *Registry
	stats  *Stats
	host   Host
	queues [NrClasses]*classQueue
}

// New builds a policy for host using cfg. The policy starts with empty
// registries, isolation per cfg, and the four class queues; a config that
// cannot yield the full queue set aborts startup.
func New(cfg Config, host Host) (*Policy, error) {
	if host == nil {
		return nil, errors.New("nil host")
	}
	if cfg.MaxCPUs < 1 || cfg.MaxCPUs > MaxCPUs {
		return nil, fmt.Errorf("%w: max_cpus %d", ErrInvalidCPU, cfg.MaxCPUs)
	}
	p := &Policy{
		reg:   NewRegistry(cfg.MaxCPUs, cfg.IsolationEnabled),
		stats: &Stats{},
		host:  host,
	}
	for i := range p.queues {
		p.queues[i] = newClassQueue()
	}
	return p, nil
}

// Registry exposes the control-surface stores.
func (p *Policy) Registry() *Registry { return p.reg }

// Stats exposes the dispatch counters.
func (p *Policy) Stats() *Stats { return p.stats }

// Classify returns id's effective class, ClassNormal when unregistered.
// Computed fresh on every call; never cached.
func (p *Policy) Classify(id TaskID) Class {
	c, _ := p.reg.ClassOf(id)
	return c
}

// IsIsolated reports whether cpu is currently isolated.
func (p *Policy) IsIsolated(cpu int) bool {
	return p.reg.Isolated(cpu)
}

// Allowed reports whether t may run on cpu under the isolation overlay.
// Elevated tasks and host-owned kernel work run anywhere.
func (p *Policy) Allowed(t *Task, cpu int) bool {
	if !p.reg.Isolated(cpu) {
		return true
	}
	if p.Classify(t.ID).Elevated() {
		return true
	}
	return t.Kthread
}

// SelectCPU decides which CPU t should run on for this wakeup. When the
// chosen CPU was idle the task is handed to it directly and direct is true;
// the caller must then skip Enqueue, the two paths are mutually exclusive.
func (p *Policy) SelectCPU(t *Task, prevCPU int, wake WakeFlags) (cpu int, direct bool) {
	// A pin wins over everything, isolation included.
	if pinned, ok := p.reg.PinnedCPU(t.ID); ok {
		if p.host.TestAndClearIdle(pinned) {
			p.host.DispatchDirect(t, pinned)
			return pinned, true
		}
		return pinned, false
	}

	cpu, idle := p.host.DefaultSelectCPU(t, prevCPU, wake)

	if p.reg.IsolationEnabled() && p.reg.Isolated(cpu) && !p.Allowed(t, cpu) {
		// Steer the task to the first permitted non-isolated CPU, in
		// ascending id order. When the scan finds nothing the isolated
		// candidate stands: the task must still run somewhere.
		for i := 0; i < p.reg.NrCPUs(); i++ {
			if !p.reg.Isolated(i) && t.AllowedOn(i) {
				cpu = i
				idle = p.host.TestAndClearIdle(i)
				break
			}
		}
		p.stats.IsolationRedirects.Add(1)
	}

	if idle {
		p.host.DispatchDirect(t, cpu)
		return cpu, true
	}
	return cpu, false
}

// Enqueue appends t to the dispatch queue for its class and accounts the
// dispatch. Must not be called for a wakeup SelectCPU already handed off.
func (p *Policy) Enqueue(t *Task, _ EnqueueFlags) {
	c := p.Classify(t.ID)
	p.queues[c].push(t)
	if c.Elevated() {
		p.stats.PriorityDispatches.Add(1)
	} else {
		p.stats.NormalDispatches.Add(1)
	}
}

// Dispatch returns the next task for a CPU that ran out of work, draining
// the class queues strictly in tier order. FIFO age only breaks ties within
// a class; a fresh render task beats any older lower-tier task. ok is false
// when every queue is empty and the CPU goes idle.
func (p *Policy) Dispatch(_ int) (*Task, bool) {
	for c := Class(0); c < NrClasses; c++ {
		if t, ok := p.queues[c].pop(); ok {
			return t, true
		}
	}
	return nil, false
}

// QueuedTasks returns how many tasks are waiting across all class queues.
func (p *Policy) QueuedTasks() int {
	n := 0
	for _, q := range p.queues {
		n += q.size()
	}
	return n
}
