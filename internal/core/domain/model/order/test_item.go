package order

import (
	"errors"
	"strings"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// ProcessingState is the lab bench state of a single test.
//
//	NotStarted ──> InProgress ──> Completed
//	                 │   ▲
//	                 ▼   │
//	                OnHold
//
// Cancelled is set only when the whole order is cancelled.
type ProcessingState int

const (
	UnknownProcessingState ProcessingState = iota
	TestNotStarted
	TestInProgress
	TestOnHold
	TestCompleted
	TestCancelled
)

func (s ProcessingState) String() string {
	switch s {
	case TestNotStarted:
		return "NotStarted"
	case TestInProgress:
		return "InProgress"
	case TestOnHold:
		return "OnHold"
	case TestCompleted:
		return "Completed"
	case TestCancelled:
		return "Cancelled"
	case UnknownProcessingState:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// ProcessingStateFromString parses the API representation of a processing state.
func ProcessingStateFromString(s string) (ProcessingState, error) {
	for ps := TestNotStarted; ps <= TestCancelled; ps++ {
		if ps.String() == s {
			return ps, nil
		}
	}
	return UnknownProcessingState, errs.NewValueIsInvalidError("processing state " + s)
}

func (s ProcessingState) Validate() error {
	if s < TestNotStarted || s > TestCancelled {
		return errs.NewValueIsOutOfRangeError("processing state", int(s), int(TestNotStarted), int(TestCancelled))
	}
	return nil
}

// ReportState tracks the result document of a test.
//
//	Pending ──> Uploaded ──> Verified ──> Delivered
//	   ▲           │            │
//	   └───────────┴────────────┘  (delete)
type ReportState int

const (
	UnknownReportState ReportState = iota
	ReportPending
	ReportUploaded
	ReportVerified
	ReportDelivered
)

func (s ReportState) String() string {
	switch s {
	case ReportPending:
		return "Pending"
	case ReportUploaded:
		return "Uploaded"
	case ReportVerified:
		return "Verified"
	case ReportDelivered:
		return "Delivered"
	case UnknownReportState:
		return "Unknown"
	default:
		return "Unknown"
	}
}

func (s ReportState) Validate() error {
	if s < ReportPending || s > ReportDelivered {
		return errs.NewValueIsOutOfRangeError("report state", int(s), int(ReportPending), int(ReportDelivered))
	}
	return nil
}

// isReleasable reports whether the report counts toward the completion gate.
func (s ReportState) isReleasable() bool {
	return s == ReportUploaded || s == ReportVerified
}

// TestItem is one ordered lab test, either directly on the order or nested in a package.
// All mutation goes through the owning Order so that status roll-ups stay consistent.
type TestItem struct {
	id            kernel.UUID
	catalogTestID string
	name          string
	code          string

	sampleCollected   bool
	sampleCollectedAt *time.Time

	processing  ProcessingState
	startedAt   *time.Time
	heldAt      *time.Time
	completedAt *time.Time
	processedBy string

	report      ReportState
	reportFile  string
	uploadedAt  *time.Time
	uploadedBy  string
	verifiedAt  *time.Time
	verifiedBy  string
	deliveredAt *time.Time

	remarks string
}

// TestItemState is the persistable form of a TestItem.
type TestItemState struct {
	ID                kernel.UUID
	CatalogTestID     string
	Name              string
	Code              string
	SampleCollected   bool
	SampleCollectedAt *time.Time
	Processing        ProcessingState
	StartedAt         *time.Time
	HeldAt            *time.Time
	CompletedAt       *time.Time
	ProcessedBy       string
	Report            ReportState
	ReportFile        string
	UploadedAt        *time.Time
	UploadedBy        string
	VerifiedAt        *time.Time
	VerifiedBy        string
	DeliveredAt       *time.Time
	Remarks           string
}

// NewTestItem creates a test line item in NotStarted / report Pending.
//
// Parameters:
//   - catalogTestID: identifier of the test in the lab catalog (opaque)
//   - name: display name, required
//   - code: short lab code, required
func NewTestItem(catalogTestID, name, code string) (*TestItem, error) {
	item := &TestItem{
		id:            kernel.NewUUID(),
		catalogTestID: strings.TrimSpace(catalogTestID),
		name:          strings.TrimSpace(name),
		code:          strings.TrimSpace(code),
		processing:    TestNotStarted,
		report:        ReportPending,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// RestoreTestItem rebuilds a TestItem from storage.
func RestoreTestItem(state TestItemState) (*TestItem, error) {
	item := &TestItem{
		id:                state.ID,
		catalogTestID:     state.CatalogTestID,
		name:              state.Name,
		code:              state.Code,
		sampleCollected:   state.SampleCollected,
		sampleCollectedAt: cloneTime(state.SampleCollectedAt),
		processing:        state.Processing,
		startedAt:         cloneTime(state.StartedAt),
		heldAt:            cloneTime(state.HeldAt),
		completedAt:       cloneTime(state.CompletedAt),
		processedBy:       state.ProcessedBy,
		report:            state.Report,
		reportFile:        state.ReportFile,
		uploadedAt:        cloneTime(state.UploadedAt),
		uploadedBy:        state.UploadedBy,
		verifiedAt:        cloneTime(state.VerifiedAt),
		verifiedBy:        state.VerifiedBy,
		deliveredAt:       cloneTime(state.DeliveredAt),
		remarks:           state.Remarks,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (t *TestItem) validate() error {
	var errList []error
	if err := t.id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if t.name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("test name"))
	}
	if t.code == "" {
		errList = append(errList, errs.NewValueIsRequiredError("test code"))
	}
	if err := t.processing.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := t.report.Validate(); err != nil {
		errList = append(errList, err)
	}
	if t.report != ReportPending && t.processing != TestCompleted {
		errList = append(errList, errs.NewValueIsInvalidError("report state requires a completed test"))
	}
	return errors.Join(errList...)
}

// State returns a deep copy suitable for persistence.
func (t *TestItem) State() TestItemState {
	return TestItemState{
		ID:                t.id,
		CatalogTestID:     t.catalogTestID,
		Name:              t.name,
		Code:              t.code,
		SampleCollected:   t.sampleCollected,
		SampleCollectedAt: cloneTime(t.sampleCollectedAt),
		Processing:        t.processing,
		StartedAt:         cloneTime(t.startedAt),
		HeldAt:            cloneTime(t.heldAt),
		CompletedAt:       cloneTime(t.completedAt),
		ProcessedBy:       t.processedBy,
		Report:            t.report,
		ReportFile:        t.reportFile,
		UploadedAt:        cloneTime(t.uploadedAt),
		UploadedBy:        t.uploadedBy,
		VerifiedAt:        cloneTime(t.verifiedAt),
		VerifiedBy:        t.verifiedBy,
		DeliveredAt:       cloneTime(t.deliveredAt),
		Remarks:           t.remarks,
	}
}

func (t *TestItem) ID() kernel.UUID { return t.id }
func (t *TestItem) CatalogTestID() string { return t.catalogTestID }
func (t *TestItem) Name() string { return t.name }
func (t *TestItem) Code() string { return t.code }
func (t *TestItem) SampleCollected() bool { return t.sampleCollected }
func (t *TestItem) SampleCollectedAt() *time.Time { return cloneTime(t.sampleCollectedAt) }
func (t *TestItem) ProcessingState() ProcessingState { return t.processing }
func (t *TestItem) StartedAt() *time.Time { return cloneTime(t.startedAt) }
func (t *TestItem) CompletedAt() *time.Time { return cloneTime(t.completedAt) }
func (t *TestItem) ProcessedBy() string { return t.processedBy }
func (t *TestItem) ReportState() ReportState { return t.report }
func (t *TestItem) ReportFile() string { return t.reportFile }
func (t *TestItem) UploadedBy() string { return t.uploadedBy }
func (t *TestItem) VerifiedBy() string { return t.verifiedBy }
func (t *TestItem) Remarks() string { return t.remarks }

func (t *TestItem) subject() string {
	return "test " + t.code
}

func (t *TestItem) markSampleCollected(at time.Time) {
	if t.sampleCollected {
		return
	}
	t.sampleCollected = true
	t.sampleCollectedAt = &at
}

func (t *TestItem) checkStart() error {
	if t.processing != TestNotStarted {
		return ErrAlreadyInProgress
	}
	if !t.sampleCollected {
		return ErrSampleNotCollected
	}
	return nil
}

func (t *TestItem) start(by string, at time.Time) {
	t.processing = TestInProgress
	t.startedAt = &at
	t.processedBy = by
}

func (t *TestItem) checkComplete() error {
	if t.processing != TestInProgress {
		return ErrNotInProgress
	}
	return nil
}

func (t *TestItem) complete(remarks, by string, at time.Time) {
	t.processing = TestCompleted
	t.completedAt = &at
	if by != "" {
		t.processedBy = by
	}
	if remarks != "" {
		t.remarks = remarks
	}
}

func (t *TestItem) hold(remarks string, at time.Time) error {
	if t.processing != TestInProgress {
		return ErrNotInProgress
	}
	t.processing = TestOnHold
	t.heldAt = &at
	if remarks != "" {
		t.remarks = remarks
	}
	return nil
}

func (t *TestItem) resume() error {
	if t.processing != TestOnHold {
		return errs.NewInvalidTransitionError(t.subject(), t.processing.String(), "Resume")
	}
	t.processing = TestInProgress
	t.heldAt = nil
	return nil
}

func (t *TestItem) uploadReport(fileRef, remarks, by string, at time.Time) error {
	if t.processing != TestCompleted {
		return errs.NewInvalidTransitionErrorWithCause(
			t.subject()+" report", t.report.String(), "Upload",
			errs.NewValueIsInvalidError("processing state is "+t.processing.String()),
		)
	}
	if t.report != ReportPending && t.report != ReportUploaded {
		return errs.NewInvalidTransitionError(t.subject()+" report", t.report.String(), "Upload")
	}
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		return errs.NewValueIsRequiredError("report file reference")
	}
	t.report = ReportUploaded
	t.reportFile = fileRef
	t.uploadedAt = &at
	t.uploadedBy = by
	t.verifiedAt = nil
	t.verifiedBy = ""
	if remarks != "" {
		t.remarks = remarks
	}
	return nil
}

func (t *TestItem) verifyReport(by string, at time.Time) error {
	if t.report != ReportUploaded {
		return errs.NewInvalidTransitionError(t.subject()+" report", t.report.String(), "Verify")
	}
	t.report = ReportVerified
	t.verifiedAt = &at
	t.verifiedBy = by
	return nil
}

func (t *TestItem) deleteReport() error {
	if !t.report.isReleasable() {
		return errs.NewInvalidTransitionError(t.subject()+" report", t.report.String(), "Delete")
	}
	t.report = ReportPending
	t.reportFile = ""
	t.uploadedAt = nil
	t.uploadedBy = ""
	t.verifiedAt = nil
	t.verifiedBy = ""
	return nil
}

func (t *TestItem) deliverReport(at time.Time) {
	t.report = ReportDelivered
	t.deliveredAt = &at
}

func (t *TestItem) cancel() {
	if t.processing == TestCompleted {
		return
	}
	t.processing = TestCancelled
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
