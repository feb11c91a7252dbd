package order

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{4}-\d{4,}$`)

// NotificationChannel is how the patient is told that reports are ready.
type NotificationChannel string

const (
	ChannelSMS      NotificationChannel = "SMS"
	ChannelEmail    NotificationChannel = "Email"
	ChannelWhatsApp NotificationChannel = "WhatsApp"
)

func (c NotificationChannel) Validate() error {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelWhatsApp:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("notification channel", fmt.Errorf("%q is not supported", string(c)))
	}
}

// Order is the aggregate root of the fulfillment core. It owns its test and package
// line items and, depending on the source, a home collection visit or a booked slot.
//
// Order follows these invariants:
//   - Status changes only through NextStatus; nothing assigns the status directly
//   - A HomeCollection order carries a HomeCollectionDetail and no other source does
//   - A SlotBooking order carries a SlotDetail and no other source does
//   - At least one test is ordered, directly or through a package
//   - Version starts at 1 and is incremented by the repository on every committed write
//   - Completed and Cancelled orders reject every mutation with TerminalStateError
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	id         kernel.UUID
	number     string
	patientRef string
	source     Source
	status     Status
	version    int64
	priority   kernel.Priority
	channel    NotificationChannel

	tests    []*TestItem
	packages []*PackageItem

	amounts       Amounts
	paymentStatus PaymentStatus

	homeCollection *HomeCollectionDetail
	slot           *SlotDetail

	createdAt           time.Time
	updatedAt           time.Time
	sampleCollectedAt   *time.Time
	processingStartedAt *time.Time
	reportReadyAt       *time.Time
	completedAt         *time.Time
	cancelledAt         *time.Time
	cancelReason        string

	guard guard.ConstructorGuard
}

// Intake holds everything known about an order at creation time.
type Intake struct {
	ID             kernel.UUID
	Number         string
	PatientRef     string
	Source         Source
	Priority       kernel.Priority
	Channel        NotificationChannel
	Tests          []*TestItem
	Packages       []*PackageItem
	Amounts        Amounts
	HomeCollection *HomeCollectionDetail
	Slot           *SlotDetail
	CreatedAt      time.Time
}

// State is the persistable form of an Order. RestoreOrder(o.State()) yields an equal,
// independent copy.
type State struct {
	ID                  kernel.UUID
	Number              string
	PatientRef          string
	Source              Source
	Status              Status
	Version             int64
	Priority            kernel.Priority
	Channel             NotificationChannel
	Tests               []TestItemState
	Packages            []PackageItemState
	Amounts             Amounts
	PaymentStatus       PaymentStatus
	HomeCollection      *HomeCollectionState
	Slot                *SlotDetail
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SampleCollectedAt   *time.Time
	ProcessingStartedAt *time.Time
	ReportReadyAt       *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CancelReason        string
}

// NewOrder creates a Pending order at version 1.
//
// Parameters:
//   - in: the intake record. Tests and packages are taken over by the order and must
//     not be reused.
//
// Returns:
//   - *Order: the created order if all validations pass
//   - error: every validation failure joined with errors.Join
//
// Example:
//
//	cbc, _ := order.NewTestItem("T-001", "Complete Blood Count", "CBC")
//	visit, _ := order.NewHomeCollectionDetail(tomorrow, "12 Park Street")
//	o, err := order.NewOrder(order.Intake{
//	    ID:             kernel.NewUUID(),
//	    Number:         "ORD-2026-0001",
//	    PatientRef:     "PAT-77",
//	    Source:         order.HomeCollection,
//	    Priority:       kernel.Normal,
//	    Tests:          []*order.TestItem{cbc},
//	    HomeCollection: visit,
//	    CreatedAt:      time.Now(),
//	})
func NewOrder(in Intake) (*Order, error) {
	channel := in.Channel
	if channel == "" {
		channel = ChannelSMS
	}
	createdAt := in.CreatedAt.UTC()

	o := &Order{
		id:             in.ID,
		number:         strings.TrimSpace(in.Number),
		patientRef:     strings.TrimSpace(in.PatientRef),
		source:         in.Source,
		status:         Pending,
		version:        1,
		priority:       in.Priority,
		channel:        channel,
		tests:          in.Tests,
		packages:       in.Packages,
		amounts:        in.Amounts,
		paymentStatus:  in.Amounts.PaymentStatus(),
		homeCollection: in.HomeCollection,
		slot:           in.Slot,
		createdAt:      createdAt,
		updatedAt:      createdAt,
		guard:          guard.NewConstructorGuard(),
	}

	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// RestoreOrder rebuilds an order from its persisted state without resetting status
// or version. Used by repositories only.
func RestoreOrder(state State) (*Order, error) {
	tests := make([]*TestItem, 0, len(state.Tests))
	packages := make([]*PackageItem, 0, len(state.Packages))
	var errList []error

	for _, ts := range state.Tests {
		t, err := RestoreTestItem(ts)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		tests = append(tests, t)
	}
	for _, ps := range state.Packages {
		p, err := RestorePackageItem(ps)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		packages = append(packages, p)
	}

	var hc *HomeCollectionDetail
	if state.HomeCollection != nil {
		restored, err := RestoreHomeCollectionDetail(*state.HomeCollection)
		if err != nil {
			errList = append(errList, err)
		}
		hc = restored
	}

	var slot *SlotDetail
	if state.Slot != nil {
		s := *state.Slot
		slot = &s
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	o := &Order{
		id:                  state.ID,
		number:              state.Number,
		patientRef:          state.PatientRef,
		source:              state.Source,
		status:              state.Status,
		version:             state.Version,
		priority:            state.Priority,
		channel:             state.Channel,
		tests:               tests,
		packages:            packages,
		amounts:             state.Amounts,
		paymentStatus:       state.PaymentStatus,
		homeCollection:      hc,
		slot:                slot,
		createdAt:           state.CreatedAt,
		updatedAt:           state.UpdatedAt,
		sampleCollectedAt:   cloneTime(state.SampleCollectedAt),
		processingStartedAt: cloneTime(state.ProcessingStartedAt),
		reportReadyAt:       cloneTime(state.ReportReadyAt),
		completedAt:         cloneTime(state.CompletedAt),
		cancelledAt:         cloneTime(state.CancelledAt),
		cancelReason:        state.CancelReason,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(o.validate(), o.status.Validate(), o.validateVersion()); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) validate() error {
	return errors.Join(
		o.id.Validate(),
		o.validateNumber(),
		o.validatePatientRef(),
		o.source.Validate(),
		o.priority.Validate(),
		o.channel.Validate(),
		o.validateItems(),
		o.validateSubRecords(),
		o.validateCreatedAt(),
	)
}

func (o *Order) validateNumber() error {
	if !orderNumberPattern.MatchString(o.number) {
		return errs.NewValueIsInvalidErrorWithCause("order number", fmt.Errorf("%q does not match ORD-YYYY-NNNN", o.number))
	}
	return nil
}

func (o *Order) validatePatientRef() error {
	if o.patientRef == "" {
		return errs.NewValueIsRequiredError("patient reference")
	}
	return nil
}

func (o *Order) validateItems() error {
	var errList []error
	for _, t := range o.tests {
		if t == nil {
			errList = append(errList, errs.NewValueIsRequiredError("test"))
		}
	}
	for _, p := range o.packages {
		if p == nil {
			errList = append(errList, errs.NewValueIsRequiredError("package"))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}
	if len(o.AllTests()) == 0 {
		return errs.NewValueIsRequiredError("at least one test or package")
	}
	return nil
}

func (o *Order) validateSubRecords() error {
	var errList []error
	if o.source == HomeCollection && o.homeCollection == nil {
		errList = append(errList, errs.NewValueIsRequiredError("home collection detail"))
	}
	if o.source != HomeCollection && o.homeCollection != nil {
		errList = append(errList, errs.NewValueIsInvalidError("home collection detail is only allowed for HomeCollection orders"))
	}
	if o.source == SlotBooking && o.slot == nil {
		errList = append(errList, errs.NewValueIsRequiredError("slot detail"))
	}
	if o.source != SlotBooking && o.slot != nil {
		errList = append(errList, errs.NewValueIsInvalidError("slot detail is only allowed for SlotBooking orders"))
	}
	return errors.Join(errList...)
}

func (o *Order) validateCreatedAt() error {
	if o.createdAt.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	return nil
}

func (o *Order) validateVersion() error {
	if o.version < 1 {
		return errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is less than 1", o.version))
	}
	return nil
}

// Validate ensures the Order instance was properly constructed through NewOrder or
// RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) Number() string { return o.number }
func (o *Order) PatientRef() string { return o.patientRef }
func (o *Order) Source() Source { return o.source }
func (o *Order) Status() Status { return o.status }
func (o *Order) Version() int64 { return o.version }
func (o *Order) Priority() kernel.Priority { return o.priority }
func (o *Order) Channel() NotificationChannel { return o.channel }
func (o *Order) Amounts() Amounts { return o.amounts }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }
func (o *Order) SampleCollectedAt() *time.Time { return cloneTime(o.sampleCollectedAt) }
func (o *Order) ProcessingStartedAt() *time.Time { return cloneTime(o.processingStartedAt) }
func (o *Order) ReportReadyAt() *time.Time { return cloneTime(o.reportReadyAt) }
func (o *Order) CompletedAt() *time.Time { return cloneTime(o.completedAt) }
func (o *Order) CancelledAt() *time.Time { return cloneTime(o.cancelledAt) }
func (o *Order) CancelReason() string { return o.cancelReason }
func (o *Order) HomeCollection() *HomeCollectionDetail { return o.homeCollection }

// Slot returns the booked slot of a SlotBooking order, or nil.
func (o *Order) Slot() *SlotDetail {
	if o.slot == nil {
		return nil
	}
	s := *o.slot
	return &s
}

// Tests returns the directly ordered tests.
func (o *Order) Tests() []*TestItem {
	out := make([]*TestItem, len(o.tests))
	copy(out, o.tests)
	return out
}

// Packages returns the ordered packages.
func (o *Order) Packages() []*PackageItem {
	out := make([]*PackageItem, len(o.packages))
	copy(out, o.packages)
	return out
}

// AllTests flattens direct tests followed by every package's nested tests.
func (o *Order) AllTests() []*TestItem {
	all := make([]*TestItem, 0, len(o.tests))
	all = append(all, o.tests...)
	for _, p := range o.packages {
		if p == nil {
			continue
		}
		all = append(all, p.tests...)
	}
	return all
}

// Test finds a test line item (direct or nested) by id.
func (o *Order) Test(testID kernel.UUID) (*TestItem, error) {
	for _, t := range o.AllTests() {
		if t.id.IsEqual(testID) {
			return t, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("test", testID.String())
}

// State returns a deep copy of the order suitable for persistence.
func (o *Order) State() State {
	tests := make([]TestItemState, 0, len(o.tests))
	for _, t := range o.tests {
		tests = append(tests, t.State())
	}
	packages := make([]PackageItemState, 0, len(o.packages))
	for _, p := range o.packages {
		packages = append(packages, p.State())
	}

	var hc *HomeCollectionState
	if o.homeCollection != nil {
		s := o.homeCollection.State()
		hc = &s
	}

	return State{
		ID:                  o.id,
		Number:              o.number,
		PatientRef:          o.patientRef,
		Source:              o.source,
		Status:              o.status,
		Version:             o.version,
		Priority:            o.priority,
		Channel:             o.channel,
		Tests:               tests,
		Packages:            packages,
		Amounts:             o.amounts,
		PaymentStatus:       o.paymentStatus,
		HomeCollection:      hc,
		Slot:                o.Slot(),
		CreatedAt:           o.createdAt,
		UpdatedAt:           o.updatedAt,
		SampleCollectedAt:   cloneTime(o.sampleCollectedAt),
		ProcessingStartedAt: cloneTime(o.processingStartedAt),
		ReportReadyAt:       cloneTime(o.reportReadyAt),
		CompletedAt:         cloneTime(o.completedAt),
		CancelledAt:         cloneTime(o.cancelledAt),
		CancelReason:        o.cancelReason,
	}
}

// IncrementVersion is called by repositories after a successful compare-and-commit write.
func (o *Order) IncrementVersion() {
	o.version++
}

// checkMutable rejects any change to a terminal order.
func (o *Order) checkMutable() error {
	if o.status.IsTerminal() {
		return errs.NewTerminalStateError("order "+o.number, o.status.String())
	}
	return nil
}

// resolve asks the transition engine for the next status without applying it.
func (o *Order) resolve(event Event) (Status, error) {
	return NextStatus(o.source, o.status, event)
}

// moveTo applies a status already resolved by the engine and stamps its timestamp.
func (o *Order) moveTo(next Status, at time.Time) {
	o.status = next
	switch next {
	case SampleCollected:
		o.sampleCollectedAt = &at
	case Processing:
		o.processingStartedAt = &at
	case ReportReady:
		o.reportReadyAt = &at
	case Completed:
		o.completedAt = &at
	case Cancelled:
		o.cancelledAt = &at
	case Unknown, Pending:
	}
	o.touch(at)
}

func (o *Order) touch(at time.Time) {
	o.updatedAt = at.UTC()
}

// Cancel moves the order to Cancelled from any non-terminal status.
//
// Side effects:
//   - an active home collection is cancelled (the caller releases the collector
//     counter; see services.CollectionDispatcher.CancelOrder)
//   - every test that is not Completed becomes Cancelled
//
// Returns:
//   - TerminalStateError when the order is already Completed or Cancelled
func (o *Order) Cancel(reason string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	next, err := o.resolve(Cancel)
	if err != nil {
		return err
	}

	if o.homeCollection != nil && !o.homeCollection.status.IsTerminal() {
		if err = o.homeCollection.advance(CollectionCancelled, at); err != nil {
			return err
		}
	}
	for _, t := range o.AllTests() {
		t.cancel()
	}
	o.cancelReason = strings.TrimSpace(reason)
	o.moveTo(next, at)
	return nil
}
