package queries

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
	"labdesk/internal/pkg/guard"
)

var ErrGetLabWorklistQueryIsNotConstructed = errors.New(
	"GetLabWorklistQuery must be created via NewGetLabWorklistQuery constructor",
)

// GetLabWorklistQuery returns the priority-ordered lab queue. The optional filters
// narrow it to one priority and/or one processing state.
type GetLabWorklistQuery struct {
	priority kernel.Priority
	state    order.ProcessingState

	guard guard.ConstructorGuard
}

// NewGetLabWorklistQuery builds the query. Pass kernel.UnknownPriority and
// order.UnknownProcessingState to disable the filters.
func NewGetLabWorklistQuery(priority kernel.Priority, state order.ProcessingState) (GetLabWorklistQuery, error) {
	var errList []error
	if priority != kernel.UnknownPriority {
		errList = append(errList, priority.Validate())
	}
	if state != order.UnknownProcessingState {
		errList = append(errList, state.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return GetLabWorklistQuery{}, err
	}
	return GetLabWorklistQuery{priority: priority, state: state, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetLabWorklistQuery) Validate() error {
	return q.guard.Validate(ErrGetLabWorklistQueryIsNotConstructed)
}

// GetLabWorklistQueryHandler derives the worklist from non-terminal orders on every call.
type GetLabWorklistQueryHandler struct {
	orders OrderReader
}

func NewGetLabWorklistQueryHandler(orders OrderReader) GetLabWorklistQueryHandler {
	return GetLabWorklistQueryHandler{orders: orders}
}

func (h GetLabWorklistQueryHandler) Handle(ctx context.Context, query GetLabWorklistQuery) ([]services.LabQueueItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.orders.ListByStatuses(ctx, order.Pending, order.SampleCollected, order.Processing)
	if err != nil {
		return nil, err
	}

	items := services.BuildLabQueue(orders)
	result := make([]services.LabQueueItem, 0, len(items))
	for _, item := range items {
		if query.priority != kernel.UnknownPriority && item.Priority != query.priority {
			continue
		}
		if query.state != order.UnknownProcessingState && item.Status != query.state {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}
