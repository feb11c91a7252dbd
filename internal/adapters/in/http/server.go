// Package http exposes the fulfillment core to lab staff over a JSON API. Requests are
// checked against the embedded OpenAPI document before they reach a handler, and every
// handler translates to exactly one command or query.
package http

import (
	"context"
	"fmt"
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles the use cases the API dispatches to.
type Handlers struct {
	CreateOrder       commands.CreateOrderCommandHandler
	CancelOrder       commands.CancelOrderCommandHandler
	MarkCompleted     commands.MarkCompletedCommandHandler
	UpdateOrderStatus commands.UpdateOrderStatusCommandHandler

	AssignCollector   commands.AssignCollectorCommandHandler
	ReassignCollector commands.ReassignCollectorCommandHandler
	ReleaseCollector  commands.ReleaseCollectorCommandHandler
	AdvanceCollection commands.AdvanceCollectionCommandHandler
	AutoAssign        commands.AutoAssignCollectorsCommandHandler

	Lab     commands.LabCommandHandler
	Reports commands.ReportCommandHandler

	CreateCollector          commands.CreateCollectorCommandHandler
	SetCollectorAvailability commands.SetCollectorAvailabilityCommandHandler

	GetOrder         queries.GetOrderQueryHandler
	GetActiveOrders  queries.GetActiveOrdersQueryHandler
	GetLabWorklist   queries.GetLabWorklistQueryHandler
	GetStatusSummary queries.GetOrderStatusSummaryQueryHandler
	GetAllCollectors queries.GetAllCollectorsQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h             Handlers
	dispatchLimit int
	logger        zerolog.Logger
}

// NewServer creates the API server.
//
// Parameters:
//   - h: use case handlers
//   - dispatchLimit: orders considered by one on-demand auto-assignment pass when the
//     request does not name a limit
//   - logger: base logger, tagged with component=http
func NewServer(h Handlers, dispatchLimit int, logger zerolog.Logger) *Server {
	if dispatchLimit <= 0 {
		dispatchLimit = 50
	}
	return &Server{
		h:             h,
		dispatchLimit: dispatchLimit,
		logger:        logger.With().Str("component", "http").Logger(),
	}
}

// EchoConfig holds what NewEcho needs beyond the Server itself.
type EchoConfig struct {
	Contract   *Contract
	Metrics    *metrics.Metrics
	SigningKey []byte
	Logger     zerolog.Logger
}

// NewEcho builds the echo instance with middleware, operational endpoints and the API
// routes.
func NewEcho(s *Server, cfg EchoConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.ERROR)
	e.Validator = newRequestValidator()

	e.Use(echomw.RequestID())
	e.Use(Logger(cfg.Logger))
	e.Use(Recovery(cfg.Logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))

	api := e.Group("/api/v1")
	if cfg.Contract != nil {
		cfg.Contract.Register()
		e.GET("/swagger/*", echoSwagger.WrapHandler)
		api.Use(cfg.Contract.Middleware())
	}
	api.Use(StaffAuth(cfg.SigningKey))
	s.Register(api)
	return e
}

// Register mounts the API routes on g.
func (s *Server) Register(g *echo.Group) {
	g.POST("/orders", s.CreateOrder)
	g.GET("/orders", s.ListActiveOrders)
	g.GET("/orders/summary", s.GetOrderStatusSummary)
	g.GET("/orders/:orderId", s.GetOrder)
	g.PUT("/orders/:orderId/status", s.UpdateOrderStatus)
	g.POST("/orders/:orderId/cancel", s.CancelOrder)
	g.POST("/orders/:orderId/complete", s.MarkCompleted)

	g.POST("/orders/:orderId/collection/assign", s.AssignCollector)
	g.POST("/orders/:orderId/collection/reassign", s.ReassignCollector)
	g.POST("/orders/:orderId/collection/release", s.ReleaseCollector)
	g.POST("/orders/:orderId/collection/advance", s.AdvanceCollection)

	g.POST("/orders/:orderId/samples", s.RecordSampleCollection)
	g.POST("/orders/:orderId/tests/:testId/start", s.StartTest)
	g.POST("/orders/:orderId/tests/:testId/complete", s.CompleteTest)
	g.POST("/orders/:orderId/tests/:testId/hold", s.HoldTest)
	g.POST("/orders/:orderId/tests/:testId/resume", s.ResumeTest)
	g.PUT("/orders/:orderId/tests/:testId/report", s.UploadReport)
	g.DELETE("/orders/:orderId/tests/:testId/report", s.DeleteReport)
	g.POST("/orders/:orderId/tests/:testId/report/verify", s.VerifyReport)

	g.GET("/lab/worklist", s.GetLabWorklist)
	g.POST("/lab/tests/start", s.StartTests)

	g.GET("/collectors", s.ListCollectors)
	g.POST("/collectors", s.CreateCollector)
	g.POST("/collectors/dispatch", s.DispatchCollections)
	g.PUT("/collectors/:collectorId/availability", s.SetCollectorAvailability)
}

// bind decodes and validates the request body.
func (s *Server) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// respond writes the order on success and maps the error otherwise.
func (s *Server) respond(c echo.Context, orderID kernel.UUID, o *order.Order, err error) error {
	if err != nil {
		return s.fail(c, err, &orderID)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// fail writes the error body. For a version conflict on a known order it attaches the
// order as it is now, so the caller can rebase without another round trip.
func (s *Server) fail(c echo.Context, err error, orderID *kernel.UUID) error {
	resp := errorResponse(err)
	if resp.Code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	if resp.Code == http.StatusConflict && orderID != nil {
		return c.JSON(http.StatusConflict, ConflictResponse{Error: resp, Order: s.currentOrder(c.Request().Context(), *orderID)})
	}
	return c.JSON(resp.Code, resp)
}

func (s *Server) currentOrder(ctx context.Context, orderID kernel.UUID) *OrderResponse {
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return nil
	}
	o, err := s.h.GetOrder.Handle(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to re-read order after conflict")
		return nil
	}
	return toOrderResponse(o)
}

// pathUUID binds a uuid path parameter the way generated oapi-codegen servers do.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	id, err := kernel.UUIDFromGoogle(raw)
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// orderAndTest binds the two path parameters of test-level routes.
func orderAndTest(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	testID, err := pathUUID(c, "testId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return orderID, testID, nil
}

func parseUUID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for %s: %s", name, err))
	}
	return id, nil
}
