package order

import (
	"errors"
	"fmt"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrAlreadyInProgress is returned when starting a test that is not NotStarted.
	ErrAlreadyInProgress = errors.New("test already in progress")

	// ErrNotInProgress is returned when completing or holding a test that is not InProgress.
	ErrNotInProgress = errors.New("test not in progress")

	// ErrSampleNotCollected is returned when starting a test whose sample has not arrived.
	ErrSampleNotCollected = errors.New("sample not collected")

	// ErrIncompleteReports is the sentinel behind IncompleteReportsError.
	ErrIncompleteReports = errors.New("incomplete reports")
)

// IncompleteReportsError is returned by MarkCompleted while the report completion
// gate is closed. TestIDs lists every test whose report is still missing.
type IncompleteReportsError struct {
	TestIDs []kernel.UUID
}

func NewIncompleteReportsError(testIDs []kernel.UUID) *IncompleteReportsError {
	return &IncompleteReportsError{TestIDs: testIDs}
}

func (e *IncompleteReportsError) Error() string {
	ids := make([]string, 0, len(e.TestIDs))
	for _, id := range e.TestIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("%s: %d outstanding (%s)", ErrIncompleteReports, len(e.TestIDs), strings.Join(ids, ", "))
}

func (e *IncompleteReportsError) Unwrap() error {
	return ErrIncompleteReports
}
