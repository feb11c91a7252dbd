package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"labdesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	storeDown := errors.New("store unavailable")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "order not found",
			err:  errs.NewObjectNotFoundError("orderID", "ORD-2026-0007"),
			want: "object not found: ORD-2026-0007",
		},
		{
			name: "order not found with cause",
			err:  errs.NewObjectNotFoundErrorWithCause("orderID", "ORD-2026-0007", storeDown),
			want: "object not found: param is: orderID, ID is: ORD-2026-0007 (cause: store unavailable)",
		},
		{
			name: "invalid channel",
			err:  errs.NewValueIsInvalidError("notification channel fax"),
			want: "value is invalid: notification channel fax",
		},
		{
			name: "invalid status with cause",
			err:  errs.NewValueIsInvalidErrorWithCause("status", errors.New("unknown name Shipped")),
			want: "value is invalid: status (cause: unknown name Shipped)",
		},
		{
			name: "auto-assign limit out of range",
			err:  errs.NewValueIsOutOfRangeError("limit", 900, 1, 500),
			want: "value is invalid: 900 is limit, min value is 1, max value is 500",
		},
		{
			name: "priority out of range with cause",
			err:  errs.NewValueIsOutOfRangeErrorWithCause("priority", 4, 0, 2, storeDown),
			want: "value is invalid: 4 is priority, min value is 0, max value is 2 (cause: store unavailable)",
		},
		{
			name: "missing patient",
			err:  errs.NewValueIsRequiredError("patient reference"),
			want: "value is required: patient reference",
		},
		{
			name: "missing report file with cause",
			err:  errs.NewValueIsRequiredErrorWithCause("report file reference", errors.New("empty upload")),
			want: "value is required: report file reference (cause: empty upload)",
		},
		{
			name: "stale order write",
			err:  errs.NewVersionConflictError("order", "42", 3, 5),
			want: "version conflict: order 42, expected version 3, actual version 5",
		},
		{
			name: "stale collector write with unknown current version",
			err:  errs.NewVersionConflictError("collector", "7", 2, 0),
			want: "version conflict: collector 7, expected version 2",
		},
		{
			name: "walk-in cannot be scheduled",
			err:  errs.NewInvalidTransitionError("WalkIn order", "Pending", "SamplesCollected"),
			want: "invalid transition: WalkIn order cannot leave Pending via SamplesCollected",
		},
		{
			name: "collection assignment with cause",
			err: errs.NewInvalidTransitionErrorWithCause(
				"collection", "Scheduled", "Assigned", errors.New("no collector attached"),
			),
			want: "invalid transition: collection cannot leave Scheduled via Assigned (cause: no collector attached)",
		},
		{
			name: "completed order",
			err:  errs.NewTerminalStateError("order ORD-2026-0001", "Completed"),
			want: "terminal state: order ORD-2026-0001 is Completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsClassifyBySentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", errs.NewObjectNotFoundError("collectorID", "c-1"), errs.ErrObjectNotFound},
		{"invalid", errs.NewValueIsInvalidError("source"), errs.ErrValueIsInvalid},
		{"out of range", errs.NewValueIsOutOfRangeError("limit", 0, 1, 500), errs.ErrValueIsOutOfRange},
		{"required", errs.NewValueIsRequiredError("collector name"), errs.ErrValueIsRequired},
		{"version conflict", errs.NewVersionConflictError("order", "1", 1, 2), errs.ErrVersionConflict},
		{"transition", errs.NewInvalidTransitionError("order", "Pending", "Cancel"), errs.ErrInvalidTransition},
		{"terminal", errs.NewTerminalStateError("order", "Cancelled"), errs.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handle command: %w", tt.err)

			require.ErrorIs(t, wrapped, tt.sentinel)
			for _, other := range []error{
				errs.ErrObjectNotFound,
				errs.ErrValueIsInvalid,
				errs.ErrValueIsOutOfRange,
				errs.ErrValueIsRequired,
				errs.ErrVersionConflict,
				errs.ErrInvalidTransition,
				errs.ErrTerminalState,
			} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestVersionConflictError_DetailsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("apply update: %w", errs.NewVersionConflictError("order", "1", 1, 2))

	var conflict *errs.VersionConflictError
	require.ErrorAs(t, wrapped, &conflict)
	assert.Equal(t, "order", conflict.Aggregate)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)
}

func TestInvalidTransitionError_Fields(t *testing.T) {
	err := errs.NewInvalidTransitionError("test CBC report", "Pending", "Verify")

	assert.Equal(t, "test CBC report", err.Subject)
	assert.Equal(t, "Pending", err.From)
	assert.Equal(t, "Verify", err.Via)
	require.NoError(t, err.Cause)
}

func TestOutOfRangeValuesStayOnOneLine(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("remarks", "haemolysed\r\nrecollect", 0, 10)

	assert.Contains(t, err.Error(), "haemolysed recollect")
	assert.NotContains(t, err.Error(), "\n")
	assert.NotContains(t, err.Error(), "\r")
}
