package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	api "labdesk/internal/adapters/in/http"
	"labdesk/internal/adapters/out/memory"
	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uowFactory struct {
	inner *memory.UnitOfWorkFactory
}

func (f uowFactory) Create() commands.UoW {
	return f.inner.Create()
}

type collectorUoWFactory struct {
	inner *memory.UnitOfWorkFactory
}

func (f collectorUoWFactory) Create() commands.CollectorUoW {
	return f.inner.Create()
}

type fixture struct {
	e        *echo.Echo
	notifier *memory.ReportNotifier
}

func newFixture(t *testing.T, signingKey []byte) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	memFactory := memory.NewUnitOfWorkFactory(memory.NewStore())
	factory := uowFactory{inner: memFactory}
	notifier := memory.NewReportNotifier(logger)
	registry := commands.NewOrderRegistry(factory, nil, nil, logger)
	reads := memFactory.Create()

	cancel := commands.NewCancelOrderCommandHandler(registry)
	complete := commands.NewMarkCompletedCommandHandler(registry, notifier, nil, logger)
	handlers := api.Handlers{
		CreateOrder:              commands.NewCreateOrderCommandHandler(registry, memory.NewOrderNumberGenerator()),
		CancelOrder:              cancel,
		MarkCompleted:            complete,
		UpdateOrderStatus:        commands.NewUpdateOrderStatusCommandHandler(registry, cancel, complete),
		AssignCollector:          commands.NewAssignCollectorCommandHandler(registry),
		ReassignCollector:        commands.NewReassignCollectorCommandHandler(registry),
		ReleaseCollector:         commands.NewReleaseCollectorCommandHandler(registry),
		AdvanceCollection:        commands.NewAdvanceCollectionCommandHandler(registry),
		AutoAssign:               commands.NewAutoAssignCollectorsCommandHandler(registry, factory, nil, logger),
		Lab:                      commands.NewLabCommandHandler(registry),
		Reports:                  commands.NewReportCommandHandler(registry),
		CreateCollector:          commands.NewCreateCollectorCommandHandler(collectorUoWFactory{inner: memFactory}),
		SetCollectorAvailability: commands.NewSetCollectorAvailabilityCommandHandler(collectorUoWFactory{inner: memFactory}),
		GetOrder:                 queries.NewGetOrderQueryHandler(reads.OrderRepository()),
		GetActiveOrders:          queries.NewGetActiveOrdersQueryHandler(reads.OrderRepository()),
		GetLabWorklist:           queries.NewGetLabWorklistQueryHandler(reads.OrderRepository()),
		GetStatusSummary:         queries.NewGetOrderStatusSummaryQueryHandler(reads.OrderRepository()),
		GetAllCollectors:         queries.NewGetAllCollectorsQueryHandler(reads.CollectorRepository()),
	}

	contract, err := api.LoadContract()
	require.NoError(t, err)

	e := api.NewEcho(api.NewServer(handlers, 10, logger), api.EchoConfig{
		Contract:   contract,
		SigningKey: signingKey,
		Logger:     logger,
	})
	return &fixture{e: e, notifier: notifier}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func walkInBody() map[string]any {
	return map[string]any{
		"patientRef": "PAT-1001",
		"source":     "WalkIn",
		"tests": []map[string]any{
			{"catalogTestId": "cbc", "name": "Complete Blood Count", "code": "CBC"},
			{"catalogTestId": "lft", "name": "Liver Function Test", "code": "LFT"},
		},
		"amounts": map[string]any{"subtotal": 1200, "paid": 1200},
	}
}

func (f *fixture) createWalkIn(t *testing.T) api.OrderResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/orders", walkInBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.OrderResponse](t, rec)
}

// mutate sends a versioned write that must succeed and returns the updated order.
func (f *fixture) mutate(t *testing.T, method, path string, body map[string]any, headers ...string) api.OrderResponse {
	t.Helper()
	rec := f.do(t, method, path, body, headers...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[api.OrderResponse](t, rec)
}

func TestAPI_WalkInOrderLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	created := f.createWalkIn(t)
	require.Len(t, created.Tests, 2)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, int64(1), created.Version)
	assert.Regexp(t, `^ORD-\d{4}-0001$`, created.Number)

	base := "/api/v1/orders/" + created.ID
	current := f.mutate(t, http.MethodPost, base+"/samples", map[string]any{"version": created.Version})
	assert.Equal(t, created.Version+1, current.Version)
	for _, test := range current.Tests {
		assert.True(t, test.SampleCollected)
	}

	for _, test := range created.Tests {
		path := base + "/tests/" + test.ID
		current = f.mutate(t, http.MethodPost, path+"/start",
			map[string]any{"version": current.Version, "performedBy": "tech-anna"})
		assert.Equal(t, "Processing", current.Status)
		current = f.mutate(t, http.MethodPost, path+"/complete",
			map[string]any{"version": current.Version, "remarks": "within range"})
	}
	assert.Equal(t, "ReportReady", current.Status)
	for _, test := range current.Tests {
		assert.Equal(t, "Completed", test.ProcessingStatus)
		assert.Equal(t, "tech-anna", test.ProcessedBy)
		assert.Equal(t, "within range", test.Remarks)
	}

	first, second := created.Tests[0], created.Tests[1]
	current = f.mutate(t, http.MethodPut, base+"/tests/"+first.ID+"/report",
		map[string]any{"version": current.Version, "fileRef": "s3://reports/cbc.pdf"})
	assert.Equal(t, []string{second.ID}, current.OutstandingReports)

	rec := f.do(t, http.MethodPost, base+"/complete", map[string]any{"version": current.Version})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	gate := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "IncompleteReports", gate.Kind)
	assert.Equal(t, []string{second.ID}, gate.OutstandingTestIDs)
	assert.Empty(t, f.notifier.Sent())

	current = f.mutate(t, http.MethodPut, base+"/tests/"+second.ID+"/report",
		map[string]any{"version": current.Version, "fileRef": "s3://reports/lft.pdf", "performedBy": "tech-anna"})
	assert.Empty(t, current.OutstandingReports)
	current = f.mutate(t, http.MethodPost, base+"/tests/"+second.ID+"/report/verify",
		map[string]any{"version": current.Version, "performedBy": "dr-rao"})
	assert.Equal(t, "ReportReady", current.Status)

	done := f.mutate(t, http.MethodPost, base+"/complete", map[string]any{"version": current.Version})
	assert.Equal(t, "Completed", done.Status)
	assert.Equal(t, current.Version+1, done.Version)
	require.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.OutstandingReports)
	for _, test := range done.Tests {
		assert.Equal(t, "Delivered", test.ReportStatus)
	}

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, created.ID, sent[0].OrderID.String())
	assert.Equal(t, created.Number, sent[0].OrderNumber)
	assert.Equal(t, "PAT-1001", sent[0].PatientRef)

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Completed", decode[api.OrderResponse](t, rec).Status)

	rec = f.do(t, http.MethodDelete, base+"/tests/"+first.ID+"/report?version="+strconv.FormatInt(done.Version, 10), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "TerminalState", decode[api.ErrorResponse](t, rec).Kind)
}

func TestAPI_BenchActionsWithoutPerformer(t *testing.T) {
	f := newFixture(t, nil)
	created := f.createWalkIn(t)
	base := "/api/v1/orders/" + created.ID
	test := base + "/tests/" + created.Tests[0].ID

	current := f.mutate(t, http.MethodPost, base+"/samples", map[string]any{"version": created.Version})
	current = f.mutate(t, http.MethodPost, test+"/start", map[string]any{"version": current.Version})
	current = f.mutate(t, http.MethodPost, test+"/complete", map[string]any{"version": current.Version, "remarks": "haemolysed"})
	current = f.mutate(t, http.MethodPut, test+"/report", map[string]any{"version": current.Version, "fileRef": "s3://reports/cbc.pdf"})
	current = f.mutate(t, http.MethodPost, test+"/report/verify", map[string]any{"version": current.Version})

	item := current.Tests[0]
	assert.Equal(t, "Completed", item.ProcessingStatus)
	assert.Equal(t, "Verified", item.ReportStatus)
	assert.Equal(t, "haemolysed", item.Remarks)
	assert.Empty(t, item.ProcessedBy)
	assert.Empty(t, item.VerifiedBy)

	rec := f.do(t, http.MethodPost, "/api/v1/lab/tests/start",
		map[string]any{"items": []map[string]any{{"orderId": created.ID, "testId": created.Tests[1].ID}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[api.BatchStartResponse](t, rec).Succeeded)
}

func TestAPI_WritesRequireLastSeenVersion(t *testing.T) {
	f := newFixture(t, nil)
	created := f.createWalkIn(t)
	base := "/api/v1/orders/" + created.ID
	test := base + "/tests/" + created.Tests[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"samples", http.MethodPost, base + "/samples", map[string]any{"version": 0}},
		{"cancel", http.MethodPost, base + "/cancel", map[string]any{"version": 0, "reason": "duplicate"}},
		{"status", http.MethodPut, base + "/status", map[string]any{"version": 0, "status": "Cancelled"}},
		{"start", http.MethodPost, test + "/start", map[string]any{"version": 0}},
		{"complete", http.MethodPost, base + "/complete", map[string]any{"version": 0}},
		{"delete report", http.MethodDelete, test + "/report?version=0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unchanged := decode[api.OrderResponse](t, rec)
	assert.Equal(t, created.Version, unchanged.Version)
	assert.Equal(t, "Pending", unchanged.Status)
}

func TestAPI_StaleVersionReturnsCurrentOrder(t *testing.T) {
	f := newFixture(t, nil)
	created := f.createWalkIn(t)
	base := "/api/v1/orders/" + created.ID

	rec := f.do(t, http.MethodPost, base+"/samples", map[string]any{"version": created.Version})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, base+"/cancel", map[string]any{"version": created.Version, "reason": "duplicate"})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	conflict := decode[api.ConflictResponse](t, rec)
	assert.Equal(t, "VersionConflict", conflict.Error.Kind)
	require.NotNil(t, conflict.Order)
	assert.Equal(t, created.Version+1, conflict.Order.Version)
	assert.Equal(t, "Pending", conflict.Order.Status)

	rec = f.do(t, http.MethodPost, base+"/cancel", map[string]any{"version": conflict.Order.Version, "reason": "duplicate"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[api.OrderResponse](t, rec)
	assert.Equal(t, "Cancelled", cancelled.Status)
	assert.Equal(t, "duplicate", cancelled.CancelReason)
}

func TestAPI_RequestValidation(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{
			name:   "missing patient",
			method: http.MethodPost,
			path:   "/api/v1/orders",
			body:   map[string]any{"source": "WalkIn", "tests": []any{}},
			code:   http.StatusBadRequest,
		},
		{
			name:   "unknown source",
			method: http.MethodPost,
			path:   "/api/v1/orders",
			body:   map[string]any{"patientRef": "PAT-1", "source": "Drone"},
			code:   http.StatusBadRequest,
		},
		{
			name:   "no tests",
			method: http.MethodPost,
			path:   "/api/v1/orders",
			body:   map[string]any{"patientRef": "PAT-1", "source": "WalkIn"},
			code:   http.StatusBadRequest,
		},
		{
			name:   "malformed order id",
			method: http.MethodGet,
			path:   "/api/v1/orders/not-a-uuid",
			code:   http.StatusBadRequest,
		},
		{
			name:   "missing version",
			method: http.MethodPost,
			path:   "/api/v1/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427/cancel",
			body:   map[string]any{"reason": "x"},
			code:   http.StatusBadRequest,
		},
		{
			name:   "unknown order",
			method: http.MethodGet,
			path:   "/api/v1/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427",
			code:   http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestAPI_HomeCollectionDispatch(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/collectors", map[string]any{"name": "Ravi", "mobile": "+91-90000-00001"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ravi := decode[api.CollectorResponse](t, rec)
	assert.True(t, ravi.IsAvailable)

	body := map[string]any{
		"patientRef": "PAT-2002",
		"source":     "HomeCollection",
		"priority":   "Urgent",
		"tests":      []map[string]any{{"catalogTestId": "tsh", "name": "Thyroid Panel", "code": "TSH"}},
		"homeCollection": map[string]any{
			"scheduledAt": time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
			"address":     "12 Lake Road",
		},
	}
	rec = f.do(t, http.MethodPost, "/api/v1/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.OrderResponse](t, rec)
	require.NotNil(t, created.HomeCollection)
	assert.Equal(t, "Scheduled", created.HomeCollection.Status)

	rec = f.do(t, http.MethodPost, "/api/v1/collectors/dispatch", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, api.DispatchResponse{Assigned: 1}, decode[api.DispatchResponse](t, rec))

	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assigned := decode[api.OrderResponse](t, rec)
	require.NotNil(t, assigned.HomeCollection.CollectorID)
	assert.Equal(t, ravi.ID, *assigned.HomeCollection.CollectorID)
	assert.Equal(t, "Assigned", assigned.HomeCollection.Status)

	rec = f.do(t, http.MethodGet, "/api/v1/collectors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	collectors := decode[[]api.CollectorResponse](t, rec)
	require.Len(t, collectors, 1)
	assert.Equal(t, 1, collectors[0].CurrentAssignments)

	base := "/api/v1/orders/" + created.ID + "/collection"
	collected := assigned
	for _, step := range []string{"EnRoute", "Collected"} {
		collected = f.mutate(t, http.MethodPost, base+"/advance", map[string]any{"version": collected.Version, "status": step})
	}
	assert.Equal(t, "SampleCollected", collected.Status)
	assert.True(t, collected.Tests[0].SampleCollected)

	rec = f.do(t, http.MethodPost, "/api/v1/collectors/dispatch", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, api.DispatchResponse{}, decode[api.DispatchResponse](t, rec))
}

func TestAPI_CollectorAvailability(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/collectors", map[string]any{"name": "Meena", "mobile": "555-0101"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	meena := decode[api.CollectorResponse](t, rec)

	path := "/api/v1/collectors/" + meena.ID + "/availability"
	rec = f.do(t, http.MethodPut, path, map[string]any{"version": meena.Version, "isAvailable": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[api.CollectorResponse](t, rec)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, meena.Version+1, updated.Version)

	rec = f.do(t, http.MethodPut, path, map[string]any{"version": meena.Version, "isAvailable": true})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestAPI_WorklistAndBatchStart(t *testing.T) {
	f := newFixture(t, nil)
	created := f.createWalkIn(t)
	base := "/api/v1/orders/" + created.ID

	rec := f.do(t, http.MethodGet, "/api/v1/lab/worklist", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]api.WorklistItemResponse](t, rec))

	f.mutate(t, http.MethodPost, base+"/samples", map[string]any{"version": created.Version})

	rec = f.do(t, http.MethodGet, "/api/v1/lab/worklist", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]api.WorklistItemResponse](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/v1/lab/worklist?state=NotStarted&priority=Normal", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	queue := decode[[]api.WorklistItemResponse](t, rec)
	require.Len(t, queue, 2)
	assert.Equal(t, created.Number, queue[0].OrderNumber)
	assert.Equal(t, "NotStarted", queue[0].Status)

	rec = f.do(t, http.MethodGet, "/api/v1/lab/worklist?priority=Critical", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]api.WorklistItemResponse](t, rec))

	items := []map[string]any{
		{"orderId": queue[0].OrderID, "testId": queue[0].TestID},
		{"orderId": queue[0].OrderID, "testId": queue[0].TestID},
	}
	rec = f.do(t, http.MethodPost, "/api/v1/lab/tests/start", map[string]any{"items": items, "performedBy": "tech-joe"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[api.BatchStartResponse](t, rec)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "AlreadyInProgress", result.Failures[0].Error.Kind)

	rec = f.do(t, http.MethodGet, "/api/v1/lab/worklist?state=InProgress", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]api.WorklistItemResponse](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[api.StatusSummaryResponse](t, rec)
	assert.Equal(t, int64(1), summary.Total)
	assert.Len(t, summary.Counts, 6)

	rec = f.do(t, http.MethodGet, "/api/v1/orders?status=Processing", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows := decode[[]api.OrderSummaryResponse](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].TestCount)
	assert.Equal(t, 2, rows[0].OutstandingReports)

	rec = f.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]api.OrderSummaryResponse](t, rec), 1)
}

func TestAPI_StaffToken(t *testing.T) {
	key := []byte("test-signing-key")
	f := newFixture(t, key)

	rec := f.do(t, http.MethodGet, "/api/v1/collectors", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.StaffClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Name:             "tech-priya",
	}).SignedString(key)
	require.NoError(t, err)
	auth := []string{echo.HeaderAuthorization, "Bearer " + token}

	rec = f.do(t, http.MethodPost, "/api/v1/orders", walkInBody(), auth...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.OrderResponse](t, rec)
	base := "/api/v1/orders/" + created.ID

	current := f.mutate(t, http.MethodPost, base+"/samples", map[string]any{"version": created.Version}, auth...)
	current = f.mutate(t, http.MethodPost, base+"/tests/"+created.Tests[0].ID+"/start",
		map[string]any{"version": current.Version, "performedBy": "someone-else"}, auth...)
	assert.Equal(t, "tech-priya", current.Tests[0].ProcessedBy)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.StaffClaims{Name: "mallory"}).SignedString([]byte("other"))
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/collectors", nil, echo.HeaderAuthorization, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_OperationalEndpoints(t *testing.T) {
	f := newFixture(t, []byte("key"))

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
