package http

import (
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// ListCollectors handles GET /api/v1/collectors.
func (s *Server) ListCollectors(c echo.Context) error {
	rows, err := s.h.GetAllCollectors.Handle(c.Request().Context(), queries.NewGetAllCollectorsQuery())
	if err != nil {
		return s.fail(c, err, nil)
	}

	response := make([]CollectorResponse, 0, len(rows))
	for _, r := range rows {
		response = append(response, CollectorResponse{
			ID:                 r.ID.String(),
			Name:               r.Name,
			Mobile:             r.Mobile,
			IsAvailable:        r.IsAvailable,
			CurrentAssignments: r.CurrentAssignments,
			TotalCollections:   r.TotalCollections,
			Version:            r.Version,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCollector handles POST /api/v1/collectors.
func (s *Server) CreateCollector(c echo.Context) error {
	var req NewCollectorRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewCreateCollectorCommand(kernel.NewUUID(), req.Name, req.Mobile)
	if err != nil {
		return s.fail(c, err, nil)
	}

	created, err := s.h.CreateCollector.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusCreated, toCollectorResponse(created))
}

// SetCollectorAvailability handles PUT /api/v1/collectors/{collectorId}/availability.
func (s *Server) SetCollectorAvailability(c echo.Context) error {
	collectorID, err := pathUUID(c, "collectorId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req AvailabilityRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewSetCollectorAvailabilityCommand(collectorID, *req.Version, *req.IsAvailable)
	if err != nil {
		return s.fail(c, err, nil)
	}

	updated, err := s.h.SetCollectorAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, toCollectorResponse(updated))
}
