package commands

import (
	"context"
	"errors"
	"time"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
	"labdesk/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// ErrNoScheduledCollections is returned by the auto-assignment handler when there is
// nothing to dispatch.
var ErrNoScheduledCollections = errors.New("no scheduled home collections")

// AssignCollectorCommandHandler attaches a collector to a home collection and takes
// one assignment on the collector's counter in the same commit.
//
// Example:
//
//	cmd, _ := NewAssignCollectorCommand(orderID, 3, collectorID)
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, collector.ErrCollectorUnavailable):
//	    // operator picked an off-duty collector
//	case errors.Is(err, errs.ErrVersionConflict):
//	    // refresh and retry
//	}
type AssignCollectorCommandHandler struct {
	registry   *OrderRegistry
	dispatcher services.CollectionDispatcher
}

func NewAssignCollectorCommandHandler(registry *OrderRegistry) AssignCollectorCommandHandler {
	return AssignCollectorCommandHandler{registry: registry, dispatcher: services.NewCollectionDispatcher()}
}

func (h AssignCollectorCommandHandler) Handle(ctx context.Context, cmd AssignCollectorCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
		c, err := s.Collector(ctx, cmd.CollectorID())
		if err != nil {
			return err
		}
		return h.dispatcher.Assign(o, c, now)
	})
}

// ReassignCollectorCommandHandler moves a collection between collectors. The previous
// collector's counter, the new collector's counter and the order commit together.
type ReassignCollectorCommandHandler struct {
	registry   *OrderRegistry
	dispatcher services.CollectionDispatcher
}

func NewReassignCollectorCommandHandler(registry *OrderRegistry) ReassignCollectorCommandHandler {
	return ReassignCollectorCommandHandler{registry: registry, dispatcher: services.NewCollectionDispatcher()}
}

func (h ReassignCollectorCommandHandler) Handle(ctx context.Context, cmd ReassignCollectorCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
		previous, err := s.ActiveCollector(ctx, o)
		if err != nil {
			return err
		}
		next, err := s.Collector(ctx, cmd.CollectorID())
		if err != nil {
			return err
		}
		return h.dispatcher.Reassign(o, previous, next, now)
	})
}

// ReleaseCollectorCommandHandler detaches the active collector from a collection.
type ReleaseCollectorCommandHandler struct {
	registry   *OrderRegistry
	dispatcher services.CollectionDispatcher
}

func NewReleaseCollectorCommandHandler(registry *OrderRegistry) ReleaseCollectorCommandHandler {
	return ReleaseCollectorCommandHandler{registry: registry, dispatcher: services.NewCollectionDispatcher()}
}

func (h ReleaseCollectorCommandHandler) Handle(ctx context.Context, cmd ReleaseCollectorCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
		held, err := s.ActiveCollector(ctx, o)
		if err != nil {
			return err
		}
		return h.dispatcher.Release(o, held, now)
	})
}

// AdvanceCollectionCommandHandler moves a home collection along
// Scheduled → Assigned → EnRoute → Collected, or cancels it. Reaching Collected marks
// every sample collected and moves the order to SampleCollected.
type AdvanceCollectionCommandHandler struct {
	registry   *OrderRegistry
	dispatcher services.CollectionDispatcher
}

func NewAdvanceCollectionCommandHandler(registry *OrderRegistry) AdvanceCollectionCommandHandler {
	return AdvanceCollectionCommandHandler{registry: registry, dispatcher: services.NewCollectionDispatcher()}
}

func (h AdvanceCollectionCommandHandler) Handle(ctx context.Context, cmd AdvanceCollectionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Mutate(ctx, cmd.OrderTarget, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
		held, err := s.ActiveCollector(ctx, o)
		if err != nil {
			return err
		}
		return h.dispatcher.Advance(o, held, cmd.Target(), now)
	})
}

// AutoAssignCollectorsResult summarises one auto-assignment run.
type AutoAssignCollectorsResult struct {
	Assigned int
	Skipped  int
}

// AutoAssignCollectorsCommandHandler dispatches Scheduled home collections, earliest
// appointment first. Each order is assigned in its own transaction with the retrying
// update; a failure on one order does not stop the run.
type AutoAssignCollectorsCommandHandler struct {
	registry   *OrderRegistry
	uowFactory UoWFactory
	dispatcher services.CollectionDispatcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewAutoAssignCollectorsCommandHandler(
	registry *OrderRegistry,
	uowFactory UoWFactory,
	m *metrics.Metrics,
	logger zerolog.Logger,
) AutoAssignCollectorsCommandHandler {
	return AutoAssignCollectorsCommandHandler{
		registry:   registry,
		uowFactory: uowFactory,
		dispatcher: services.NewCollectionDispatcher(),
		metrics:    m,
		logger:     logger.With().Str("component", "auto_assign").Logger(),
	}
}

// Handle runs one dispatch pass.
//
// Returns:
//   - ErrNoScheduledCollections when no order is waiting
//   - services.ErrNoAvailableCollector when orders are waiting but nobody is on duty
func (h AutoAssignCollectorsCommandHandler) Handle(
	ctx context.Context,
	cmd AutoAssignCollectorsCommand,
) (AutoAssignCollectorsResult, error) {
	if err := cmd.Validate(); err != nil {
		return AutoAssignCollectorsResult{}, err
	}

	pending, err := h.uowFactory.Create().OrderRepository().ListScheduledHomeCollections(ctx, cmd.Limit())
	if err != nil {
		return AutoAssignCollectorsResult{}, err
	}
	if len(pending) == 0 {
		return AutoAssignCollectorsResult{}, ErrNoScheduledCollections
	}

	var result AutoAssignCollectorsResult
	for _, candidate := range pending {
		_, err = h.registry.Update(ctx, candidate.ID(), func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
			available, listErr := s.AvailableCollectors(ctx)
			if listErr != nil {
				return listErr
			}
			_, dispatchErr := h.dispatcher.Dispatch(o, available, now)
			return dispatchErr
		})
		h.metrics.RecordAutoAssignment(err == nil)
		if errors.Is(err, services.ErrNoAvailableCollector) {
			return result, err
		}
		if err != nil {
			result.Skipped++
			h.logger.Warn().Err(err).Str("order_id", candidate.ID().String()).Msg("auto-assignment skipped order")
			continue
		}
		result.Assigned++
	}
	return result, nil
}
