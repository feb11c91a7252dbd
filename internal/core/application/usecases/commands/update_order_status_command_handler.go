package commands

import (
	"context"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"
)

// UpdateOrderStatusCommandHandler maps a requested status onto the transition engine:
// Cancelled cancels the order and Completed runs the report completion gate. Requests
// for derived statuses are rejected without touching the order.
type UpdateOrderStatusCommandHandler struct {
	registry *OrderRegistry
	cancel   CancelOrderCommandHandler
	complete MarkCompletedCommandHandler
}

func NewUpdateOrderStatusCommandHandler(
	registry *OrderRegistry,
	cancel CancelOrderCommandHandler,
	complete MarkCompletedCommandHandler,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{registry: registry, cancel: cancel, complete: complete}
}

func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch cmd.Target() {
	case order.Cancelled:
		cancelCmd, err := NewCancelOrderCommand(cmd.OrderID(), cmd.ExpectedVersion(), cmd.Reason())
		if err != nil {
			return nil, err
		}
		return h.cancel.Handle(ctx, cancelCmd)
	case order.Completed:
		completeCmd, err := NewMarkCompletedCommand(cmd.OrderID(), cmd.ExpectedVersion())
		if err != nil {
			return nil, err
		}
		return h.complete.Handle(ctx, completeCmd)
	case order.Unknown, order.Pending, order.SampleCollected, order.Processing, order.ReportReady:
		return nil, h.rejectDerived(ctx, cmd)
	default:
		return nil, h.rejectDerived(ctx, cmd)
	}
}

// rejectDerived reports the order's actual source and status in the error.
func (h UpdateOrderStatusCommandHandler) rejectDerived(ctx context.Context, cmd UpdateOrderStatusCommand) error {
	o, err := h.registry.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if o.Status().IsTerminal() {
		return errs.NewTerminalStateError("order "+o.Number(), o.Status().String())
	}
	return errs.NewInvalidTransitionErrorWithCause(
		o.Source().String()+" order", o.Status().String(), cmd.Target().String(),
		errs.NewValueIsInvalidError(cmd.Target().String()+" is derived from lab and collection progress"),
	)
}
