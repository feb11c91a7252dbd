package commands

import (
	"context"
	"time"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
)

// CancelOrderCommandHandler cancels an order. When the order's home collection holds
// a collector, the collector's counter is released in the same commit.
type CancelOrderCommandHandler struct {
	registry   *OrderRegistry
	dispatcher services.CollectionDispatcher
}

func NewCancelOrderCommandHandler(registry *OrderRegistry) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		registry:   registry,
		dispatcher: services.NewCollectionDispatcher(),
	}
}

// Handle processes the cancellation.
//
// Returns:
//   - *errs.TerminalStateError when the order is already Completed or Cancelled
//   - *errs.VersionConflictError when the caller's version is stale
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
		held, err := s.ActiveCollector(ctx, o)
		if err != nil {
			return err
		}
		return h.dispatcher.CancelOrder(o, held, cmd.Reason(), now)
	})
}
