package order

import (
	"labdesk/internal/pkg/errs"
)

// Event is something that happened to an order and may move its status.
type Event int

const (
	UnknownEvent Event = iota

	// SamplesCollected fires when a home collection reaches Collected.
	SamplesCollected

	// ProcessingStarted fires when the first test of the order is started.
	ProcessingStarted

	// AllTestsCompleted fires when the last outstanding test is completed.
	AllTestsCompleted

	// ReportsReleased fires when the report completion gate opens and staff mark
	// the order completed.
	ReportsReleased

	// Cancel fires on explicit cancellation.
	Cancel
)

func (e Event) String() string {
	switch e {
	case SamplesCollected:
		return "SamplesCollected"
	case ProcessingStarted:
		return "ProcessingStarted"
	case AllTestsCompleted:
		return "AllTestsCompleted"
	case ReportsReleased:
		return "ReportsReleased"
	case Cancel:
		return "Cancel"
	case UnknownEvent:
		return "Unknown"
	default:
		return "Unknown"
	}
}

type edges map[Status]map[Event]Status

// transitionTable is the single source of truth for order status changes.
// Cancel edges are added for every non-terminal status by init.
var transitionTable = map[Source]edges{
	HomeCollection: {
		Pending:         {SamplesCollected: SampleCollected},
		SampleCollected: {ProcessingStarted: Processing},
		Processing:      {AllTestsCompleted: ReportReady},
		ReportReady:     {ReportsReleased: Completed},
	},
	WalkIn:               labVisitEdges(),
	OnlineTestBooking:    labVisitEdges(),
	OnlinePackageBooking: labVisitEdges(),
	SlotBooking:          labVisitEdges(),
}

func labVisitEdges() edges {
	return edges{
		Pending:     {ProcessingStarted: Processing},
		Processing:  {AllTestsCompleted: ReportReady},
		ReportReady: {ReportsReleased: Completed},
	}
}

func init() {
	for _, table := range transitionTable {
		for _, status := range Statuses() {
			if status.IsTerminal() {
				continue
			}
			if table[status] == nil {
				table[status] = map[Event]Status{}
			}
			table[status][Cancel] = Cancelled
		}
	}
}

// NextStatus resolves the status an order moves to when event happens in the
// current status. It is pure and never mutates an order.
//
// Parameters:
//   - source: the intake channel of the order
//   - current: the status the order is in now
//   - event: what happened
//
// Returns:
//   - the next status on success
//   - TerminalStateError when current is Completed or Cancelled
//   - InvalidTransitionError for any (source, current, event) not in the table
//
// Example:
//
//	next, err := order.NextStatus(order.HomeCollection, order.Pending, order.SamplesCollected)
//	// next == order.SampleCollected
func NextStatus(source Source, current Status, event Event) (Status, error) {
	if err := source.Validate(); err != nil {
		return Unknown, err
	}
	if err := current.Validate(); err != nil {
		return Unknown, err
	}
	if current.IsTerminal() {
		return Unknown, errs.NewTerminalStateError(source.String()+" order", current.String())
	}

	next, ok := transitionTable[source][current][event]
	if !ok {
		return Unknown, errs.NewInvalidTransitionError(source.String()+" order", current.String(), event.String())
	}
	return next, nil
}

// CanTransition reports whether from → to is a single edge for source.
func CanTransition(source Source, from, to Status) bool {
	for _, next := range transitionTable[source][from] {
		if next == to {
			return true
		}
	}
	return false
}
