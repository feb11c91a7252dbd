package commands

import (
	"context"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/pkg/errs"
)

// SetCollectorAvailabilityCommandHandler flips a collector's on-duty flag. Counters are
// not touched: taking a collector off duty keeps the collections it already holds.
type SetCollectorAvailabilityCommandHandler struct {
	uowFactory CollectorUoWFactory
}

func NewSetCollectorAvailabilityCommandHandler(uowFactory CollectorUoWFactory) SetCollectorAvailabilityCommandHandler {
	return SetCollectorAvailabilityCommandHandler{uowFactory: uowFactory}
}

func (h SetCollectorAvailabilityCommandHandler) Handle(
	ctx context.Context,
	cmd SetCollectorAvailabilityCommand,
) (*collector.Collector, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	collectorRepo := uow.CollectorRepository()
	c, err := collectorRepo.Get(ctx, cmd.CollectorID())
	if err != nil {
		return nil, err
	}
	if cmd.ExpectedVersion() > 0 && c.Version() != cmd.ExpectedVersion() {
		return nil, errs.NewVersionConflictError("collector", c.ID().String(), cmd.ExpectedVersion(), c.Version())
	}

	c.SetAvailability(cmd.Available())
	if err = collectorRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return c, nil
}
