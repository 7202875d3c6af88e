package sched

import "sync/atomic"

// Stats are the policy's monotonic dispatch counters. They are bumped with
// atomic adds on the scheduling path and read by the status surface.
type Stats struct {
	PriorityDispatches atomic.Uint64
	NormalDispatches   atomic.Uint64
	IsolationRedirects atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	PriorityDispatches uint64 `json:"priority_dispatches"`
	NormalDispatches   uint64 `json:"normal_dispatches"`
	IsolationRedirects uint64 `json:"isolation_redirects"`
}

// Snapshot reads the counters. The three loads are individually atomic, not
// a consistent cut; display readers tolerate that.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		PriorityDispatches: s.PriorityDispatches.Load(),
		NormalDispatches:   s.NormalDispatches.Load(),
		IsolationRedirects: s.IsolationRedirects.Load(),
	}
}
