package http

import (
	"errors"
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// AssignCollector handles POST /api/v1/orders/{orderId}/collection/assign.
func (s *Server) AssignCollector(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req CollectorChoiceRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	collectorID, err := parseUUID("collectorId", req.CollectorID)
	if err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewAssignCollectorCommand(orderID, *req.Version, collectorID)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.AssignCollector.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// ReassignCollector handles POST /api/v1/orders/{orderId}/collection/reassign.
func (s *Server) ReassignCollector(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req CollectorChoiceRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	collectorID, err := parseUUID("collectorId", req.CollectorID)
	if err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewReassignCollectorCommand(orderID, *req.Version, collectorID)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.ReassignCollector.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// ReleaseCollector handles POST /api/v1/orders/{orderId}/collection/release.
func (s *Server) ReleaseCollector(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req VersionedRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewReleaseCollectorCommand(orderID, *req.Version)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.ReleaseCollector.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// AdvanceCollection handles POST /api/v1/orders/{orderId}/collection/advance.
func (s *Server) AdvanceCollection(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req CollectionStepRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	target, err := order.CollectionStatusFromString(req.Status)
	if err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewAdvanceCollectionCommand(orderID, *req.Version, target)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.AdvanceCollection.Handle(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// DispatchCollections handles POST /api/v1/collectors/dispatch: one auto-assignment
// pass run on demand. An empty queue is not an error here.
func (s *Server) DispatchCollections(c echo.Context) error {
	var req DispatchRequest
	if c.Request().ContentLength != 0 {
		if err := s.bind(c, &req); err != nil {
			return s.fail(c, err, nil)
		}
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.dispatchLimit
	}
	cmd, err := commands.NewAutoAssignCollectorsCommand(limit)
	if err != nil {
		return s.fail(c, err, nil)
	}

	result, err := s.h.AutoAssign.Handle(c.Request().Context(), cmd)
	if err != nil && !errors.Is(err, commands.ErrNoScheduledCollections) {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, DispatchResponse{Assigned: result.Assigned, Skipped: result.Skipped})
}
