package sched

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// TaskEntry is one task's registry view inside a Status snapshot.
type TaskEntry struct {
	ID        TaskID `json:"id"`
	Class     string `json:"class"`
	PinnedCPU int    `json:"pinned_cpu"` // -1 when unpinned
}

// Status is a read-only snapshot of all three registries, taken for display.
type Status struct {
	Tasks    []TaskEntry `json:"tasks"`
	Isolated []int       `json:"isolated"`
}

func taskIDComparator(a, b interface{}) int {
	ka, kb := a.(TaskID), b.(TaskID)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

// Status captures the registries. Tasks are ordered by id so repeated
// snapshots render identically; the isolated list is ascending. The snapshot
// is not an atomic cut across the three stores, which display readers accept.
func (p *Policy) Status() Status {
	ordered := treemap.NewWith(taskIDComparator)
	p.reg.classes.Range(func(k, v interface{}) bool {
		id := k.(TaskID)
		ordered.Put(id, TaskEntry{ID: id, Class: v.(Class).String(), PinnedCPU: -1})
		return true
	})
	p.reg.pins.Range(func(k, v interface{}) bool {
		id := k.(TaskID)
		entry := TaskEntry{ID: id, Class: ClassNormal.String(), PinnedCPU: v.(int)}
		if prev, ok := ordered.Get(id); ok {
			entry.Class = prev.(TaskEntry).Class
		}
		ordered.Put(id, entry)
		return true
	})

	st := Status{Tasks: make([]TaskEntry, 0, ordered.Size())}
	it := ordered.Iterator()
	for it.Next() {
		st.Tasks = append(st.Tasks, it.Value().(TaskEntry))
	}
	for i := 0; i < p.reg.nrCPUs; i++ {
		if p.reg.isolated[i].Load() {
			st.Isolated = append(st.Isolated, i)
		}
	}
	return st
}
