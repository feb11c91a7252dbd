package queries

import (
	"context"
	"errors"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/guard"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists orders that still need work. Statuses narrows the list;
// without statuses every non-terminal order is returned.
//
// Example:
//
//	query, _ := NewGetActiveOrdersQuery(order.ReportReady)
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list orders: %w", err)
//	}
//	fmt.Printf("%d orders wait for reports\n", len(orders))
type GetActiveOrdersQuery struct {
	statuses []order.Status

	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(statuses ...order.Status) (GetActiveOrdersQuery, error) {
	var errList []error
	for _, s := range statuses {
		errList = append(errList, s.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{
		statuses: append([]order.Status(nil), statuses...),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) Statuses() []order.Status {
	return append([]order.Status(nil), q.statuses...)
}

// GetActiveOrdersQueryResponse is one row of the order list.
type GetActiveOrdersQueryResponse struct {
	ID          kernel.UUID
	Number      string
	PatientRef  string
	Source      order.Source
	Status      order.Status
	Priority    kernel.Priority
	TestCount   int
	Outstanding int
	Version     int64
	CreatedAt   time.Time
}

// GetActiveOrdersQueryHandler lists orders, oldest first.
type GetActiveOrdersQueryHandler struct {
	orders OrderReader
}

func NewGetActiveOrdersQueryHandler(orders OrderReader) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{orders: orders}
}

func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.orders.ListByStatuses(ctx, query.Statuses()...)
	if err != nil {
		return nil, err
	}

	result := make([]GetActiveOrdersQueryResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, GetActiveOrdersQueryResponse{
			ID:          o.ID(),
			Number:      o.Number(),
			PatientRef:  o.PatientRef(),
			Source:      o.Source(),
			Status:      o.Status(),
			Priority:    o.Priority(),
			TestCount:   len(o.AllTests()),
			Outstanding: len(o.OutstandingReports()),
			Version:     o.Version(),
			CreatedAt:   o.CreatedAt(),
		})
	}
	return result, nil
}
