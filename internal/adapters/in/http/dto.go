package http

import (
	"time"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"

	"github.com/go-playground/validator/v10"
)

// requestValidator adapts validator/v10 to echo.Validator.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Requests

// VersionedRequest carries only the version the caller last saw. A stale version is
// answered with 409 and the current order.
type VersionedRequest struct {
	Version *int64 `json:"version" validate:"required,min=1"`
}

type StatusChangeRequest struct {
	Version *int64 `json:"version" validate:"required,min=1"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason"`
}

type CancellationRequest struct {
	Version *int64 `json:"version" validate:"required,min=1"`
	Reason  string `json:"reason"`
}

type CollectorChoiceRequest struct {
	Version     *int64 `json:"version" validate:"required,min=1"`
	CollectorID string `json:"collectorId" validate:"required,uuid"`
}

type CollectionStepRequest struct {
	Version *int64 `json:"version" validate:"required,min=1"`
	Status  string `json:"status" validate:"required,oneof=Assigned EnRoute Collected Cancelled"`
}

type SampleReceiptRequest struct {
	Version *int64   `json:"version" validate:"required,min=1"`
	TestIDs []string `json:"testIds" validate:"dive,uuid"`
}

type BenchActionRequest struct {
	Version     *int64 `json:"version" validate:"required,min=1"`
	Remarks     string `json:"remarks"`
	PerformedBy string `json:"performedBy"`
}

type ReportUploadRequest struct {
	Version     *int64 `json:"version" validate:"required,min=1"`
	FileRef     string `json:"fileRef" validate:"required"`
	Remarks     string `json:"remarks"`
	PerformedBy string `json:"performedBy"`
}

type BatchStartItem struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
	TestID  string `json:"testId" validate:"required,uuid"`
}

type BatchStartRequest struct {
	PerformedBy string           `json:"performedBy"`
	Items       []BatchStartItem `json:"items" validate:"required,min=1,dive"`
}

type TestLineRequest struct {
	CatalogTestID string `json:"catalogTestId"`
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required"`
}

type PackageLineRequest struct {
	CatalogPackageID string            `json:"catalogPackageId"`
	Name             string            `json:"name" validate:"required"`
	Tests            []TestLineRequest `json:"tests" validate:"required,min=1,dive"`
}

type AmountsRequest struct {
	Subtotal int64 `json:"subtotal" validate:"min=0"`
	Discount int64 `json:"discount" validate:"min=0"`
	Tax      int64 `json:"tax" validate:"min=0"`
	Paid     int64 `json:"paid" validate:"min=0"`
}

type HomeCollectionRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Address     string    `json:"address" validate:"required"`
}

type SlotRequest struct {
	At    time.Time `json:"at" validate:"required"`
	Token int       `json:"token" validate:"min=1"`
}

// NewOrderRequest is the intake form. Exactly which optional blocks are required
// depends on the source and is checked by the domain model.
type NewOrderRequest struct {
	PatientRef     string                 `json:"patientRef" validate:"required"`
	Source         string                 `json:"source" validate:"required"`
	Priority       string                 `json:"priority"`
	Channel        string                 `json:"channel" validate:"omitempty,oneof=SMS Email WhatsApp"`
	Tests          []TestLineRequest      `json:"tests" validate:"dive"`
	Packages       []PackageLineRequest   `json:"packages" validate:"dive"`
	Amounts        *AmountsRequest        `json:"amounts"`
	HomeCollection *HomeCollectionRequest `json:"homeCollection"`
	Slot           *SlotRequest           `json:"slot"`
}

func (r NewOrderRequest) toInput() (commands.CreateOrderInput, error) {
	source, err := order.SourceFromString(r.Source)
	if err != nil {
		return commands.CreateOrderInput{}, err
	}
	priority := kernel.Normal
	if r.Priority != "" {
		if priority, err = kernel.PriorityFromString(r.Priority); err != nil {
			return commands.CreateOrderInput{}, err
		}
	}

	input := commands.CreateOrderInput{
		OrderID:    kernel.NewUUID(),
		PatientRef: r.PatientRef,
		Source:     source,
		Priority:   priority,
		Channel:    order.NotificationChannel(r.Channel),
		Tests:      toTestLines(r.Tests),
	}
	for _, p := range r.Packages {
		input.Packages = append(input.Packages, commands.PackageLine{
			CatalogPackageID: p.CatalogPackageID,
			Name:             p.Name,
			Tests:            toTestLines(p.Tests),
		})
	}
	if r.Amounts != nil {
		input.Subtotal = r.Amounts.Subtotal
		input.Discount = r.Amounts.Discount
		input.Tax = r.Amounts.Tax
		input.Paid = r.Amounts.Paid
	}
	if r.HomeCollection != nil {
		input.HomeVisit = &commands.HomeVisit{ScheduledAt: r.HomeCollection.ScheduledAt, Address: r.HomeCollection.Address}
	}
	if r.Slot != nil {
		input.Slot = &commands.SlotBookingRequest{At: r.Slot.At, Token: r.Slot.Token}
	}
	return input, nil
}

func toTestLines(lines []TestLineRequest) []commands.TestLine {
	out := make([]commands.TestLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, commands.TestLine{CatalogTestID: l.CatalogTestID, Name: l.Name, Code: l.Code})
	}
	return out
}

type NewCollectorRequest struct {
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile" validate:"required"`
}

type AvailabilityRequest struct {
	Version     *int64 `json:"version" validate:"required,min=1"`
	IsAvailable *bool  `json:"isAvailable" validate:"required"`
}

type DispatchRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1"`
}

// Responses

type TestItemResponse struct {
	ID                string     `json:"id"`
	CatalogTestID     string     `json:"catalogTestId"`
	Name              string     `json:"name"`
	Code              string     `json:"code"`
	SampleCollected   bool       `json:"sampleCollected"`
	SampleCollectedAt *time.Time `json:"sampleCollectedAt,omitempty"`
	ProcessingStatus  string     `json:"processingStatus"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ProcessedBy       string     `json:"processedBy,omitempty"`
	ReportStatus      string     `json:"reportStatus"`
	ReportFile        string     `json:"reportFile,omitempty"`
	UploadedBy        string     `json:"uploadedBy,omitempty"`
	VerifiedBy        string     `json:"verifiedBy,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`
}

type PackageItemResponse struct {
	ID               string             `json:"id"`
	CatalogPackageID string             `json:"catalogPackageId"`
	Name             string             `json:"name"`
	Tests            []TestItemResponse `json:"tests"`
}

type AmountsResponse struct {
	Subtotal      int64  `json:"subtotal"`
	Discount      int64  `json:"discount"`
	Tax           int64  `json:"tax"`
	Total         int64  `json:"total"`
	Paid          int64  `json:"paid"`
	Due           int64  `json:"due"`
	PaymentStatus string `json:"paymentStatus"`
}

type HomeCollectionResponse struct {
	ScheduledAt time.Time  `json:"scheduledAt"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	CollectorID *string    `json:"collectorId,omitempty"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	EnRouteAt   *time.Time `json:"enRouteAt,omitempty"`
	CollectedAt *time.Time `json:"collectedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

type SlotResponse struct {
	At    time.Time `json:"at"`
	Token int       `json:"token"`
}

// OrderResponse is the full order view returned by every order endpoint.
type OrderResponse struct {
	ID                  string                  `json:"id"`
	Number              string                  `json:"number"`
	PatientRef          string                  `json:"patientRef"`
	Source              string                  `json:"source"`
	Status              string                  `json:"status"`
	Priority            string                  `json:"priority"`
	Channel             string                  `json:"channel"`
	Version             int64                   `json:"version"`
	Tests               []TestItemResponse      `json:"tests"`
	Packages            []PackageItemResponse   `json:"packages"`
	OutstandingReports  []string                `json:"outstandingReports"`
	Amounts             AmountsResponse         `json:"amounts"`
	HomeCollection      *HomeCollectionResponse `json:"homeCollection,omitempty"`
	Slot                *SlotResponse           `json:"slot,omitempty"`
	CreatedAt           time.Time               `json:"createdAt"`
	UpdatedAt           time.Time               `json:"updatedAt"`
	SampleCollectedAt   *time.Time              `json:"sampleCollectedAt,omitempty"`
	ProcessingStartedAt *time.Time              `json:"processingStartedAt,omitempty"`
	ReportReadyAt       *time.Time              `json:"reportReadyAt,omitempty"`
	CompletedAt         *time.Time              `json:"completedAt,omitempty"`
	CancelledAt         *time.Time              `json:"cancelledAt,omitempty"`
	CancelReason        string                  `json:"cancelReason,omitempty"`
}

func toOrderResponse(o *order.Order) *OrderResponse {
	amounts := o.Amounts()
	resp := &OrderResponse{
		ID:         o.ID().String(),
		Number:     o.Number(),
		PatientRef: o.PatientRef(),
		Source:     o.Source().String(),
		Status:     o.Status().String(),
		Priority:   o.Priority().String(),
		Channel:    string(o.Channel()),
		Version:    o.Version(),
		Tests:      toTestItemResponses(o.Tests()),
		Packages:   make([]PackageItemResponse, 0, len(o.Packages())),
		Amounts: AmountsResponse{
			Subtotal:      amounts.Subtotal(),
			Discount:      amounts.Discount(),
			Tax:           amounts.Tax(),
			Total:         amounts.Total(),
			Paid:          amounts.Paid(),
			Due:           amounts.Due(),
			PaymentStatus: o.PaymentStatus().String(),
		},
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
		SampleCollectedAt:   o.SampleCollectedAt(),
		ProcessingStartedAt: o.ProcessingStartedAt(),
		ReportReadyAt:       o.ReportReadyAt(),
		CompletedAt:         o.CompletedAt(),
		CancelledAt:         o.CancelledAt(),
		CancelReason:        o.CancelReason(),
	}

	for _, p := range o.Packages() {
		resp.Packages = append(resp.Packages, PackageItemResponse{
			ID:               p.ID().String(),
			CatalogPackageID: p.CatalogPackageID(),
			Name:             p.Name(),
			Tests:            toTestItemResponses(p.Tests()),
		})
	}

	outstanding := o.OutstandingReports()
	resp.OutstandingReports = make([]string, 0, len(outstanding))
	for _, id := range outstanding {
		resp.OutstandingReports = append(resp.OutstandingReports, id.String())
	}

	if hc := o.HomeCollection(); hc != nil {
		visit := &HomeCollectionResponse{
			ScheduledAt: hc.ScheduledAt(),
			Address:     hc.Address(),
			Status:      hc.Status().String(),
			AssignedAt:  hc.AssignedAt(),
			EnRouteAt:   hc.EnRouteAt(),
			CollectedAt: hc.CollectedAt(),
			CancelledAt: hc.CancelledAt(),
		}
		if id := hc.CollectorID(); id != nil {
			s := id.String()
			visit.CollectorID = &s
		}
		resp.HomeCollection = visit
	}

	if slot := o.Slot(); slot != nil {
		resp.Slot = &SlotResponse{At: slot.At(), Token: slot.Token()}
	}
	return resp
}

func toTestItemResponses(items []*order.TestItem) []TestItemResponse {
	out := make([]TestItemResponse, 0, len(items))
	for _, t := range items {
		out = append(out, TestItemResponse{
			ID:                t.ID().String(),
			CatalogTestID:     t.CatalogTestID(),
			Name:              t.Name(),
			Code:              t.Code(),
			SampleCollected:   t.SampleCollected(),
			SampleCollectedAt: t.SampleCollectedAt(),
			ProcessingStatus:  t.ProcessingState().String(),
			StartedAt:         t.StartedAt(),
			CompletedAt:       t.CompletedAt(),
			ProcessedBy:       t.ProcessedBy(),
			ReportStatus:      t.ReportState().String(),
			ReportFile:        t.ReportFile(),
			UploadedBy:        t.UploadedBy(),
			VerifiedBy:        t.VerifiedBy(),
			Remarks:           t.Remarks(),
		})
	}
	return out
}

type OrderSummaryResponse struct {
	ID                 string    `json:"id"`
	Number             string    `json:"number"`
	PatientRef         string    `json:"patientRef"`
	Source             string    `json:"source"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	TestCount          int       `json:"testCount"`
	OutstandingReports int       `json:"outstandingReports"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toOrderSummaries(rows []queries.GetActiveOrdersQueryResponse) []OrderSummaryResponse {
	out := make([]OrderSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, OrderSummaryResponse{
			ID:                 r.ID.String(),
			Number:             r.Number,
			PatientRef:         r.PatientRef,
			Source:             r.Source.String(),
			Status:             r.Status.String(),
			Priority:           r.Priority.String(),
			TestCount:          r.TestCount,
			OutstandingReports: r.Outstanding,
			Version:            r.Version,
			CreatedAt:          r.CreatedAt,
		})
	}
	return out
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type StatusSummaryResponse struct {
	Total  int64                 `json:"total"`
	Counts []StatusCountResponse `json:"counts"`
}

type WorklistItemResponse struct {
	OrderID     string    `json:"orderId"`
	TestID      string    `json:"testId"`
	OrderNumber string    `json:"orderNumber"`
	TestName    string    `json:"testName"`
	TestCode    string    `json:"testCode"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

func toWorklist(items []services.LabQueueItem) []WorklistItemResponse {
	out := make([]WorklistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, WorklistItemResponse{
			OrderID:     it.OrderID.String(),
			TestID:      it.TestID.String(),
			OrderNumber: it.OrderNumber,
			TestName:    it.TestName,
			TestCode:    it.TestCode,
			Priority:    it.Priority.String(),
			Status:      it.Status.String(),
			ReceivedAt:  it.ReceivedAt,
		})
	}
	return out
}

type BatchStartFailureResponse struct {
	OrderID string        `json:"orderId"`
	TestID  string        `json:"testId"`
	Error   ErrorResponse `json:"error"`
}

type BatchStartResponse struct {
	Succeeded int                         `json:"succeeded"`
	Failures  []BatchStartFailureResponse `json:"failures"`
}

type CollectorResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Mobile             string `json:"mobile"`
	IsAvailable        bool   `json:"isAvailable"`
	CurrentAssignments int    `json:"currentAssignments"`
	TotalCollections   int    `json:"totalCollections"`
	Version            int64  `json:"version"`
}

func toCollectorResponse(c *collector.Collector) CollectorResponse {
	return CollectorResponse{
		ID:                 c.ID().String(),
		Name:               c.Name(),
		Mobile:             c.Mobile(),
		IsAvailable:        c.IsAvailable(),
		CurrentAssignments: c.CurrentAssignments(),
		TotalCollections:   c.TotalCollections(),
		Version:            c.Version(),
	}
}

type DispatchResponse struct {
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}
