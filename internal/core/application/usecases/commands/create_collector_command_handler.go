package commands

import (
	"context"

	"labdesk/internal/core/domain/model/collector"
)

// CreateCollectorCommandHandler handles collector registration. New collectors start
// on duty with no assignments.
type CreateCollectorCommandHandler struct {
	uowFactory CollectorUoWFactory
}

// NewCreateCollectorCommandHandler creates a handler for collector registration.
// Requires a CollectorUoWFactory for transactional persistence operations.
func NewCreateCollectorCommandHandler(uowFactory CollectorUoWFactory) CreateCollectorCommandHandler {
	return CreateCollectorCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the collector creation command.
// Automatically rolls back on any error to prevent partial data.
func (h CreateCollectorCommandHandler) Handle(ctx context.Context, cmd CreateCollectorCommand) (*collector.Collector, error) {
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
	c, err := collector.NewCollector(cmd.CollectorID(), cmd.Name(), cmd.Mobile())
	if err != nil {
		return nil, err
	}

	if err = collectorRepo.Add(ctx, c); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return c, nil
}
