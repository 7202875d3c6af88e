// internal/host/event.go

package host

import (
	"time"

	"gamesched/internal/sched"
)

// EventKind represents the type of host scheduling event
type EventKind int

const (
	EventEnqueue EventKind = iota
	EventDirect
	EventDispatch
	EventPreempt
	EventFinish
)

// Event is emitted on key scheduling actions
type Event struct {
	Time time.Time
	Kind EventKind
	Task sched.TaskID
	CPU  int
}

func (k EventKind) String() string {
	switch k {
	case EventEnqueue:
		return "Enqueued"
	case EventDirect:
		return "DirectDispatch"
	case EventDispatch:
		return "Dispatch"
	case EventPreempt:
		return "Preempt"
	case EventFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}
