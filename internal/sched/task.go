package sched

import "context"

// TaskID uniquely identifies a task known to the host scheduler.
type TaskID uint64

// Task describes one schedulable task unit. The policy only associates state
// with the ID; the host supplies the rest and owns the task's lifecycle.
type Task struct {
	ID       TaskID
	Kthread  bool                            // host-owned kernel work, exempt from CPU isolation
	Affinity *CPUMask                        // nil means every CPU is permitted
	Run      func(ctx context.Context) error // work function, driven by the host for one slice at a time
}

// AllowedOn reports whether the task's affinity mask permits cpu.
func (t *Task) AllowedOn(cpu int) bool {
	return t.Affinity == nil || t.Affinity.Test(cpu)
}

// CPUMask is a fixed-size CPU bitmap covering the full addressable id space.
type CPUMask struct {
	bits [MaxCPUs / 64]uint64
}

// NewCPUMask builds a mask permitting exactly the given CPUs.
func NewCPUMask(cpus ...int) *CPUMask {
	m := &CPUMask{}
	for _, cpu := range cpus {
		m.Set(cpu)
	}
	return m
}

// Set marks cpu as permitted. Out-of-range ids are ignored.
func (m *CPUMask) Set(cpu int) {
	if cpu >= 0 && cpu < MaxCPUs {
		m.bits[cpu/64] |= 1 << (cpu % 64)
	}
}

// Test reports whether cpu is permitted.
func (m *CPUMask) Test(cpu int) bool {
	if cpu < 0 || cpu >= MaxCPUs {
		return false
	}
	return m.bits[cpu/64]&(1<<(cpu%64)) != 0
}
