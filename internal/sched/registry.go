package sched

import (
	"errors"
	"sync"
	"sync/atomic"
)

const (
	// MaxTasks bounds how many tasks the class and pin registries track.
	MaxTasks = 1024
	// MaxCPUs bounds the CPU id space the policy can address.
	MaxCPUs = 256
)

var (
	ErrInvalidCPU   = errors.New("cpu id out of range")
	ErrInvalidClass = errors.New("priority class must be render or other")
	ErrRegistryFull = errors.New("registry capacity exhausted")
)

// Registry holds the three stores that parameterize scheduling decisions:
// task priority classes, task CPU pins, and the isolated-CPU set. Every
// accessor is safe for concurrent use from any CPU without external locking;
// reads on the decision path are lock-free.
type Registry struct {
	nrCPUs      int
	isolationOn atomic.Bool

	classes   sync.Map // TaskID -> Class
	nrClasses atomic.Int64
	pins      sync.Map // TaskID -> int
	nrPins    atomic.Int64

	isolated [MaxCPUs]atomic.Bool
}

// NewRegistry creates empty registries for a machine with nrCPUs CPUs.
func NewRegistry(nrCPUs int, isolationEnabled bool) *Registry {
	r := &Registry{nrCPUs: nrCPUs}
	r.isolationOn.Store(isolationEnabled)
	return r
}

// NrCPUs returns the size of the addressable CPU id space, [0, NrCPUs).
func (r *Registry) NrCPUs() int {
	return r.nrCPUs
}

// IsolationEnabled reports whether the global isolation overlay is active.
func (r *Registry) IsolationEnabled() bool {
	return r.isolationOn.Load()
}

// SetPriority registers or overwrites id's priority class. Only the two
// elevated classes may be assigned.
func (r *Registry) SetPriority(id TaskID, c Class) error {
	if c != ClassRender && c != ClassOther {
		return ErrInvalidClass
	}
	if _, loaded := r.classes.LoadOrStore(id, c); loaded {
		r.classes.Store(id, c)
		return nil
	}
	if r.nrClasses.Add(1) > MaxTasks {
		r.classes.Delete(id)
		r.nrClasses.Add(-1)
		return ErrRegistryFull
	}
	return nil
}

// ClearPriority removes id from the priority registry and drops its pin.
func (r *Registry) ClearPriority(id TaskID) {
	if _, ok := r.classes.LoadAndDelete(id); ok {
		r.nrClasses.Add(-1)
	}
	r.Unpin(id)
}

// ClassOf returns the registered class and whether one exists. Unregistered
// tasks report ClassNormal.
func (r *Registry) ClassOf(id TaskID) (Class, bool) {
	v, ok := r.classes.Load(id)
	if !ok {
		return ClassNormal, false
	}
	return v.(Class), true
}

// Pin assigns id to cpu, overriding CPU selection unconditionally.
func (r *Registry) Pin(id TaskID, cpu int) error {
	if cpu < 0 || cpu >= r.nrCPUs {
		return ErrInvalidCPU
	}
	if _, loaded := r.pins.LoadOrStore(id, cpu); loaded {
		r.pins.Store(id, cpu)
		return nil
	}
	if r.nrPins.Add(1) > MaxTasks {
		r.pins.Delete(id)
		r.nrPins.Add(-1)
		return ErrRegistryFull
	}
	return nil
}

// Unpin removes id's pin assignment. The priority class is unaffected.
func (r *Registry) Unpin(id TaskID) {
	if _, ok := r.pins.LoadAndDelete(id); ok {
		r.nrPins.Add(-1)
	}
}

// PinnedCPU returns id's pinned CPU and whether a pin exists.
func (r *Registry) PinnedCPU(id TaskID) (int, bool) {
	v, ok := r.pins.Load(id)
	if !ok {
		return -1, false
	}
	return v.(int), true
}

// SetIsolated marks each given CPU isolated. The whole call is rejected,
// with no flag modified, when any id is out of range.
func (r *Registry) SetIsolated(cpus ...int) error {
	for _, cpu := range cpus {
		if cpu < 0 || cpu >= r.nrCPUs {
			return ErrInvalidCPU
		}
	}
	for _, cpu := range cpus {
		r.isolated[cpu].Store(true)
	}
	return nil
}

// ClearIsolation un-isolates every CPU. Idempotent.
func (r *Registry) ClearIsolation() {
	for i := 0; i < r.nrCPUs; i++ {
		r.isolated[i].Store(false)
	}
}

// Isolated reports whether cpu is isolated. Always false while the global
// overlay is disabled or when cpu is out of range.
func (r *Registry) Isolated(cpu int) bool {
	if !r.isolationOn.Load() || cpu < 0 || cpu >= r.nrCPUs {
		return false
	}
	return r.isolated[cpu].Load()
}
