package kernel

import (
	"fmt"

	"labdesk/internal/pkg/errs"
)

// Priority is the clinical urgency of an order. The lab worklist is ordered by it.
//
// Rank order (highest first): Critical, Urgent, Normal.
type Priority int

const (
	// UnknownPriority is the zero value and is never valid.
	UnknownPriority Priority = iota
	Normal
	Urgent
	Critical
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		UnknownPriority: "Unknown",
		Normal:          "Normal",
		Urgent:          "Urgent",
		Critical:        "Critical",
	}
}

// PriorityFromString parses the API representation ("Normal", "Urgent", "Critical").
// An empty string defaults to Normal.
func PriorityFromString(s string) (Priority, error) {
	if s == "" {
		return Normal, nil
	}
	for p, name := range getPriorityStrings() {
		if p != UnknownPriority && name == s {
			return p, nil
		}
	}
	return UnknownPriority, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
}

func (p Priority) Validate() error {
	if p < Normal || p > Critical {
		return errs.NewValueIsOutOfRangeError("priority", int(p), int(Normal), int(Critical))
	}
	return nil
}

func (p Priority) String() string {
	if s, ok := getPriorityStrings()[p]; ok {
		return s
	}
	return "Unknown"
}

// Outranks reports whether p must be served before other.
func (p Priority) Outranks(other Priority) bool {
	return p > other
}
