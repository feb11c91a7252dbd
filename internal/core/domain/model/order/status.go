package order

import (
	"fmt"

	"labdesk/internal/pkg/errs"
)

// Status is the fulfillment state of an order.
//
// State transitions (see transition.go for the full per-source table):
//
//	HomeCollection:  Pending ──> SampleCollected ──> Processing ──> ReportReady ──> Completed
//	Other sources:   Pending ──────────────────────> Processing ──> ReportReady ──> Completed
//	Any non-terminal status ──> Cancelled
//
// Completed and Cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of every order.
	Pending

	// SampleCollected is reached only by HomeCollection orders once the field
	// collector has collected the samples.
	SampleCollected

	// Processing means at least one test has been started in the lab.
	Processing

	// ReportReady means every test, including package-nested ones, is completed.
	ReportReady

	// Completed is terminal. Reached only through the report completion gate.
	Completed

	// Cancelled is terminal. Reachable from every non-terminal status.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "Unknown",
		Pending:         "Pending",
		SampleCollected: "SampleCollected",
		Processing:      "Processing",
		ReportReady:     "ReportReady",
		Completed:       "Completed",
		Cancelled:       "Cancelled",
	}
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, SampleCollected, Processing, ReportReady, Completed, Cancelled}
}

// StatusFromString parses the API representation of a status.
//
// Returns:
//   - the parsed Status
//   - ValueIsInvalidError for an unknown name (including "Unknown")
func StatusFromString(s string) (Status, error) {
	for _, status := range Statuses() {
		if status.String() == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the declared statuses.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String implements fmt.Stringer and is safe to call on invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}
