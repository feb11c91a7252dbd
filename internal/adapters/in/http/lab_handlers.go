package http

import (
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// RecordSampleCollection handles POST /api/v1/orders/{orderId}/samples. An empty
// testIds list marks every test of the order.
func (s *Server) RecordSampleCollection(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req SampleReceiptRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	testIDs := make([]kernel.UUID, 0, len(req.TestIDs))
	for _, raw := range req.TestIDs {
		id, parseErr := parseUUID("testIds", raw)
		if parseErr != nil {
			return s.fail(c, parseErr, nil)
		}
		testIDs = append(testIDs, id)
	}
	cmd, err := commands.NewRecordSampleCollectionCommand(orderID, *req.Version, testIDs)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Lab.RecordSampleCollection(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// StartTest handles POST /api/v1/orders/{orderId}/tests/{testId}/start.
func (s *Server) StartTest(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req BenchActionRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewStartTestCommand(orderID, *req.Version, testID, performer(c, req.PerformedBy))
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Lab.StartTest(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// CompleteTest handles POST /api/v1/orders/{orderId}/tests/{testId}/complete.
func (s *Server) CompleteTest(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req BenchActionRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewCompleteTestCommand(orderID, *req.Version, testID, req.Remarks, performer(c, req.PerformedBy))
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Lab.CompleteTest(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// HoldTest handles POST /api/v1/orders/{orderId}/tests/{testId}/hold.
func (s *Server) HoldTest(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req BenchActionRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewHoldTestCommand(orderID, *req.Version, testID, req.Remarks)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Lab.HoldTest(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// ResumeTest handles POST /api/v1/orders/{orderId}/tests/{testId}/resume.
func (s *Server) ResumeTest(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req VersionedRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewResumeTestCommand(orderID, *req.Version, testID)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Lab.ResumeTest(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// StartTests handles POST /api/v1/lab/tests/start. Every row is attempted; the answer
// is 200 with per-row failures even when some rows are rejected.
func (s *Server) StartTests(c echo.Context) error {
	var req BatchStartRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	items := make([]commands.QueueItemRef, 0, len(req.Items))
	for _, it := range req.Items {
		orderID, err := parseUUID("orderId", it.OrderID)
		if err != nil {
			return s.fail(c, err, nil)
		}
		testID, err := parseUUID("testId", it.TestID)
		if err != nil {
			return s.fail(c, err, nil)
		}
		items = append(items, commands.QueueItemRef{OrderID: orderID, TestID: testID})
	}
	cmd, err := commands.NewStartTestsCommand(items, performer(c, req.PerformedBy))
	if err != nil {
		return s.fail(c, err, nil)
	}

	result, err := s.h.Lab.StartTests(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, nil)
	}
	resp := BatchStartResponse{Succeeded: result.Succeeded, Failures: make([]BatchStartFailureResponse, 0, len(result.Failures))}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, BatchStartFailureResponse{
			OrderID: f.OrderID.String(),
			TestID:  f.TestID.String(),
			Error:   errorResponse(f.Err),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetLabWorklist handles GET /api/v1/lab/worklist.
func (s *Server) GetLabWorklist(c echo.Context) error {
	var rawPriority, rawState *string
	if err := runtime.BindQueryParameter("form", true, false, "priority", c.QueryParams(), &rawPriority); err != nil {
		return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter priority: "+err.Error()), nil)
	}
	if err := runtime.BindQueryParameter("form", true, false, "state", c.QueryParams(), &rawState); err != nil {
		return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter state: "+err.Error()), nil)
	}

	priority := kernel.UnknownPriority
	state := order.UnknownProcessingState
	var err error
	if rawPriority != nil && *rawPriority != "" {
		if priority, err = kernel.PriorityFromString(*rawPriority); err != nil {
			return s.fail(c, err, nil)
		}
	}
	if rawState != nil && *rawState != "" {
		if state, err = order.ProcessingStateFromString(*rawState); err != nil {
			return s.fail(c, err, nil)
		}
	}

	query, err := queries.NewGetLabWorklistQuery(priority, state)
	if err != nil {
		return s.fail(c, err, nil)
	}
	items, err := s.h.GetLabWorklist.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, toWorklist(items))
}

// UploadReport handles PUT /api/v1/orders/{orderId}/tests/{testId}/report. Uploading
// over an unverified report replaces it.
func (s *Server) UploadReport(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req ReportUploadRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewUploadReportCommand(orderID, *req.Version, testID, req.FileRef, req.Remarks, performer(c, req.PerformedBy))
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Reports.Upload(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// VerifyReport handles POST /api/v1/orders/{orderId}/tests/{testId}/report/verify.
func (s *Server) VerifyReport(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var req BenchActionRequest
	if err = s.bind(c, &req); err != nil {
		return s.fail(c, err, nil)
	}
	cmd, err := commands.NewVerifyReportCommand(orderID, *req.Version, testID, performer(c, req.PerformedBy))
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Reports.Verify(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}

// DeleteReport handles DELETE /api/v1/orders/{orderId}/tests/{testId}/report?version=N.
func (s *Server) DeleteReport(c echo.Context) error {
	orderID, testID, err := orderAndTest(c)
	if err != nil {
		return s.fail(c, err, nil)
	}
	var version int64
	if err = runtime.BindQueryParameter("form", true, true, "version", c.QueryParams(), &version); err != nil {
		return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter version: "+err.Error()), nil)
	}
	if version < 1 {
		return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "version must be at least 1"), nil)
	}
	cmd, err := commands.NewDeleteReportCommand(orderID, version, testID)
	if err != nil {
		return s.fail(c, err, nil)
	}

	o, err := s.h.Reports.Delete(c.Request().Context(), cmd)
	return s.respond(c, orderID, o, err)
}
