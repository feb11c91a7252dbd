package http

import (
	"errors"
	"net/http"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/resilience"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code               int      `json:"code"`
	Kind               string   `json:"kind"`
	Message            string   `json:"message"`
	OutstandingTestIDs []string `json:"outstandingTestIds,omitempty"`
}

// ConflictResponse is returned with 409 so the caller can retry against the current
// state without another read.
type ConflictResponse struct {
	Error ErrorResponse  `json:"error"`
	Order *OrderResponse `json:"order,omitempty"`
}

func writeError(c echo.Context, code int, kind, message string) error {
	return c.JSON(code, ErrorResponse{Code: code, Kind: kind, Message: message})
}

// classify maps an application error onto an HTTP status and a stable kind string.
// The order of checks matters: a rejected transition may wrap a validation cause.
func classify(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, http.StatusText(httpErr.Code)
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, "ValueIsInvalid"
	case errors.Is(err, errs.ErrVersionConflict):
		return http.StatusConflict, "VersionConflict"
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, order.ErrIncompleteReports):
		return http.StatusUnprocessableEntity, "IncompleteReports"
	case errors.Is(err, errs.ErrTerminalState):
		return http.StatusUnprocessableEntity, "TerminalState"
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "InvalidTransition"
	case errors.Is(err, order.ErrAlreadyInProgress):
		return http.StatusUnprocessableEntity, "AlreadyInProgress"
	case errors.Is(err, order.ErrNotInProgress):
		return http.StatusUnprocessableEntity, "NotInProgress"
	case errors.Is(err, order.ErrSampleNotCollected):
		return http.StatusUnprocessableEntity, "SampleNotCollected"
	case errors.Is(err, collector.ErrCollectorUnavailable):
		return http.StatusUnprocessableEntity, "CollectorUnavailable"
	case errors.Is(err, services.ErrNoAvailableCollector):
		return http.StatusUnprocessableEntity, "NoAvailableCollector"
	case errors.Is(err, commands.ErrNoScheduledCollections):
		return http.StatusUnprocessableEntity, "NoScheduledCollections"
	case errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusBadRequest, "ValueIsRequired"
	case errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, "ValueIsOutOfRange"
	case errors.Is(err, errs.ErrValueIsInvalid):
		return http.StatusBadRequest, "ValueIsInvalid"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "Unavailable"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

func errorResponse(err error) ErrorResponse {
	code, kind := classify(err)
	resp := ErrorResponse{Code: code, Kind: kind, Message: err.Error()}
	if code == http.StatusInternalServerError {
		resp.Message = "internal server error"
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		}
	}

	var incomplete *order.IncompleteReportsError
	if errors.As(err, &incomplete) {
		resp.OutstandingTestIDs = make([]string, 0, len(incomplete.TestIDs))
		for _, id := range incomplete.TestIDs {
			resp.OutstandingTestIDs = append(resp.OutstandingTestIDs, id.String())
		}
	}
	return resp
}
