package queries

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/guard"
)

var ErrGetOrderStatusSummaryQueryIsNotConstructed = errors.New(
	"GetOrderStatusSummaryQuery must be created via NewGetOrderStatusSummaryQuery constructor",
)

// GetOrderStatusSummaryQuery counts orders per status for the dashboard.
type GetOrderStatusSummaryQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOrderStatusSummaryQuery() GetOrderStatusSummaryQuery {
	return GetOrderStatusSummaryQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusSummaryQueryIsNotConstructed)
}

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status order.Status
	Count  int64
}

// GetOrderStatusSummaryQueryResponse lists every status, including empty ones, in
// lifecycle order.
type GetOrderStatusSummaryQueryResponse struct {
	Counts []StatusCount
	Total  int64
}

type GetOrderStatusSummaryQueryHandler struct {
	orders OrderReader
}

func NewGetOrderStatusSummaryQueryHandler(orders OrderReader) GetOrderStatusSummaryQueryHandler {
	return GetOrderStatusSummaryQueryHandler{orders: orders}
}

func (h GetOrderStatusSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusSummaryQuery,
) (GetOrderStatusSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusSummaryQueryResponse{}, err
	}

	counts, err := h.orders.CountByStatus(ctx)
	if err != nil {
		return GetOrderStatusSummaryQueryResponse{}, err
	}

	var response GetOrderStatusSummaryQueryResponse
	for _, status := range order.Statuses() {
		n := counts[status]
		response.Counts = append(response.Counts, StatusCount{Status: status, Count: n})
		response.Total += n
	}
	return response, nil
}
