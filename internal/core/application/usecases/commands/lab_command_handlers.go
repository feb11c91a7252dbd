package commands

import (
	"context"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

// LabCommandHandler serves the lab bench: sample receipt, start, complete, hold and
// resume of individual tests. Status roll-ups (Processing, ReportReady) happen inside
// the order aggregate.
type LabCommandHandler struct {
	registry *OrderRegistry
}

func NewLabCommandHandler(registry *OrderRegistry) LabCommandHandler {
	return LabCommandHandler{registry: registry}
}

// RecordSampleCollection marks samples received for WalkIn and booking orders.
func (h LabCommandHandler) RecordSampleCollection(ctx context.Context, cmd RecordSampleCollectionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.RecordSampleCollection(cmd.TestIDs(), now)
	})
}

// StartTest moves a test to InProgress. The first started test moves the order to
// Processing.
//
// Returns:
//   - order.ErrAlreadyInProgress unless the test is NotStarted
//   - order.ErrSampleNotCollected when the sample has not reached the lab
func (h LabCommandHandler) StartTest(ctx context.Context, cmd StartTestCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.StartTest(cmd.TestID(), cmd.PerformedBy(), now)
	})
}

// StartTestsFailure is one worklist row that could not be started.
type StartTestsFailure struct {
	OrderID kernel.UUID
	TestID  kernel.UUID
	Err     error
}

// StartTestsResult reports a best-effort batch start.
type StartTestsResult struct {
	Succeeded int
	Failures  []StartTestsFailure
}

// StartTests starts every row independently with the retrying update. Failures are
// collected per row; a failing row never stops the others.
func (h LabCommandHandler) StartTests(ctx context.Context, cmd StartTestsCommand) (StartTestsResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartTestsResult{}, err
	}

	var result StartTestsResult
	for _, item := range cmd.Items() {
		_, err := h.registry.Update(ctx, item.OrderID, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
			return o.StartTest(item.TestID, cmd.PerformedBy(), now)
		})
		if err != nil {
			result.Failures = append(result.Failures, StartTestsFailure{OrderID: item.OrderID, TestID: item.TestID, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// CompleteTest finishes a test. The last outstanding test moves the order to ReportReady.
func (h LabCommandHandler) CompleteTest(ctx context.Context, cmd CompleteTestCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.CompleteTest(cmd.TestID(), cmd.Remarks(), cmd.PerformedBy(), now)
	})
}

func (h LabCommandHandler) HoldTest(ctx context.Context, cmd HoldTestCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.HoldTest(cmd.TestID(), cmd.Remarks(), now)
	})
}

func (h LabCommandHandler) ResumeTest(ctx context.Context, cmd ResumeTestCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.ResumeTest(cmd.TestID(), now)
	})
}
