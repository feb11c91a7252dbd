package commands

import (
	"context"
	"time"

	"labdesk/internal/core/domain/model/order"
)

// ReportCommandHandler drives the per-test report states that feed the completion gate.
type ReportCommandHandler struct {
	registry *OrderRegistry
}

func NewReportCommandHandler(registry *OrderRegistry) ReportCommandHandler {
	return ReportCommandHandler{registry: registry}
}

// Upload requires the test to be Completed. Re-uploading replaces the file reference.
func (h ReportCommandHandler) Upload(ctx context.Context, cmd UploadReportCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.UploadReport(cmd.TestID(), cmd.FileRef(), cmd.Remarks(), cmd.PerformedBy(), now)
	})
}

func (h ReportCommandHandler) Verify(ctx context.Context, cmd VerifyReportCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.VerifyReport(cmd.TestID(), cmd.PerformedBy(), now)
	})
}

// Delete puts the report back to Pending. A Completed order rejects it.
func (h ReportCommandHandler) Delete(ctx context.Context, cmd DeleteReportCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.DeleteReport(cmd.TestID(), now)
	})
}
