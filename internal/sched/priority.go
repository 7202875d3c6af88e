package sched

import "fmt"

// Class is a dispatch priority tier. Lower tier number = dispatched first.
type Class uint32

const (
	ClassRender     Class = iota // main render threads, highest tier
	ClassOther                   // secondary game threads
	ClassNormal                  // default for unregistered tasks
	ClassBackground              // lowest tier

	// NrClasses is the number of dispatch queues the policy operates.
	NrClasses = 4
)

func (c Class) String() string {
	switch c {
	case ClassRender:
		return "render"
	case ClassOther:
		return "other"
	case ClassNormal:
		return "normal"
	case ClassBackground:
		return "background"
	default:
		return fmt.Sprintf("class(%d)", uint32(c))
	}
}

// Elevated reports whether the class receives priority dispatch treatment
// and access to isolated CPUs.
func (c Class) Elevated() bool {
	return c <= ClassOther
}

// ParseClass maps a control-surface label to a registrable class. Only the
// two elevated tiers may be assigned externally; "game" is accepted as a
// legacy alias for "other".
func ParseClass(name string) (Class, error) {
	switch name {
	case "render":
		return ClassRender, nil
	case "other", "game":
		return ClassOther, nil
	default:
		return ClassNormal, fmt.Errorf("%w: %q", ErrInvalidClass, name)
	}
}
