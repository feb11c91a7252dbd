package http

import (
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrderRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	input, err := req.toInput()
	if err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewCreateOrderCommand(input)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// ListActiveOrders handles GET /api/v1/orders. Without a status filter it returns every
// order that is neither completed nor cancelled.
func (s *Server) ListActiveOrders(c echo.Context) error {
	var raw *[]string
	if err := runtime.BindQueryParameter("form", true, false, "status", c.QueryParams(), &raw); err != nil {
		return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter status: "+err.Error()), nil)
	}

	var requested []string
	if raw != nil {
		requested = *raw
	}
	statuses := make([]order.Status, 0, len(requested))
	for _, r := range requested {
		status, err := order.StatusFromString(r)
		if err != nil {
			return s.fail(c, err, nil)
		}
		statuses = append(statuses, status)
	}

	query, err := queries.NewGetActiveOrdersQuery(statuses...)
	if err != nil {
		return s.fail(c, err, nil)
	}
	rows, err := s.h.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, toOrderSummaries(rows))
}

// GetOrderStatusSummary handles GET /api/v1/orders/summary.
func (s *Server) GetOrderStatusSummary(c echo.Context) error {
	summary, err := s.h.GetStatusSummary.Handle(c.Request().Context(), queries.NewGetOrderStatusSummaryQuery())
	if err != nil {
		return s.fail(c, err, nil)
	}

	resp := StatusSummaryResponse{Total: summary.Total, Counts: make([]StatusCountResponse, 0, len(summary.Counts))}
	for _, sc := range summary.Counts {
		resp.Counts = append(resp.Counts, StatusCountResponse{Status: sc.Status.String(), Count: sc.Count})
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateOrderStatus handles PUT /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req StatusChangeRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	target, err := order.StatusFromString(req.Status)
	if err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, *req.Version, target, req.Reason)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.UpdateOrderStatus.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req CancellationRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewCancelOrderCommand(orderID, *req.Version, req.Reason)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.CancelOrder.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// MarkCompleted handles POST /api/v1/orders/{orderId}/complete. A closed report gate
// answers 422 with the ids of the tests still missing a report.
func (s *Server) MarkCompleted(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req VersionedRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewMarkCompletedCommand(orderID, *req.Version)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.MarkCompleted.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}
