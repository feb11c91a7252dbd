package commands

import (
	"context"
	"time"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"
	"labdesk/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// MarkCompletedCommandHandler runs the report completion gate and, once the order is
// committed as Completed, sends the report-ready notification. A failed notification
// is logged and counted; the order stays Completed.
//
// Example:
//
//	handler := NewMarkCompletedCommandHandler(registry, notifier, m, logger)
//	o, err := handler.Handle(ctx, cmd)
//	var incomplete *order.IncompleteReportsError
//	if errors.As(err, &incomplete) {
//	    fmt.Println("still waiting for", incomplete.TestIDs)
//	}
type MarkCompletedCommandHandler struct {
	registry *OrderRegistry
	notifier ports.ReportNotifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewMarkCompletedCommandHandler(
	registry *OrderRegistry,
	notifier ports.ReportNotifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) MarkCompletedCommandHandler {
	return MarkCompletedCommandHandler{
		registry: registry,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "mark_completed").Logger(),
	}
}

// Handle processes the completion.
//
// Returns:
//   - *order.IncompleteReportsError listing every test whose report is not yet uploaded
//   - *errs.TerminalStateError when the order is already Completed or Cancelled
//   - *errs.InvalidTransitionError when the order is not ReportReady
func (h MarkCompletedCommandHandler) Handle(ctx context.Context, cmd MarkCompletedCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	o, err := h.registry.Mutate(ctx, cmd.OrderTarget, func(_ context.Context, _ *Session, o *order.Order, now time.Time) error {
		return o.MarkCompleted(now)
	})
	if err != nil {
		return nil, err
	}

	h.notify(ctx, o)
	return o, nil
}

func (h MarkCompletedCommandHandler) notify(ctx context.Context, o *order.Order) {
	if h.notifier == nil {
		return
	}
	err := h.notifier.SendReportReady(ctx, ports.ReportReadyNotification{
		OrderID:     o.ID(),
		OrderNumber: o.Number(),
		PatientRef:  o.PatientRef(),
		Channel:     o.Channel(),
	})
	h.metrics.RecordNotification(string(o.Channel()), err == nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("order_id", o.ID().String()).
			Str("channel", string(o.Channel())).
			Msg("report-ready notification failed")
	}
}
