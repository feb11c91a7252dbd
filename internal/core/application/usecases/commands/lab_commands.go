package commands

import (
	"errors"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var (
	ErrRecordSampleCollectionCommandIsNotConstructed = errors.New(
		"RecordSampleCollectionCommand must be created via NewRecordSampleCollectionCommand constructor",
	)
	ErrStartTestCommandIsNotConstructed = errors.New(
		"StartTestCommand must be created via NewStartTestCommand constructor",
	)
	ErrStartTestsCommandIsNotConstructed = errors.New(
		"StartTestsCommand must be created via NewStartTestsCommand constructor",
	)
	ErrCompleteTestCommandIsNotConstructed = errors.New(
		"CompleteTestCommand must be created via NewCompleteTestCommand constructor",
	)
	ErrHoldTestCommandIsNotConstructed = errors.New(
		"HoldTestCommand must be created via NewHoldTestCommand constructor",
	)
	ErrResumeTestCommandIsNotConstructed = errors.New(
		"ResumeTestCommand must be created via NewResumeTestCommand constructor",
	)
)

// RecordSampleCollectionCommand marks samples as received at the lab for orders that
// are not home collections. An empty list means every test of the order.
type RecordSampleCollectionCommand struct {
	OrderTarget
	testIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewRecordSampleCollectionCommand(
	orderID kernel.UUID,
	expectedVersion int64,
	testIDs []kernel.UUID,
) (RecordSampleCollectionCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	errList := []error{err}
	for _, id := range testIDs {
		errList = append(errList, id.Validate())
	}
	if err = errors.Join(errList...); err != nil {
		return RecordSampleCollectionCommand{}, err
	}
	return RecordSampleCollectionCommand{
		OrderTarget: target,
		testIDs:     append([]kernel.UUID(nil), testIDs...),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RecordSampleCollectionCommand) Validate() error {
	return c.guard.Validate(ErrRecordSampleCollectionCommandIsNotConstructed)
}

func (c RecordSampleCollectionCommand) TestIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.testIDs...)
}

// StartTestCommand puts one test on the bench.
type StartTestCommand struct {
	testTarget
	performedBy string

	guard guard.ConstructorGuard
}

func NewStartTestCommand(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID, by string) (StartTestCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return StartTestCommand{}, err
	}
	return StartTestCommand{testTarget: target, performedBy: strings.TrimSpace(by), guard: guard.NewConstructorGuard()}, nil
}

func (c StartTestCommand) Validate() error {
	return c.guard.Validate(ErrStartTestCommandIsNotConstructed)
}

func (c StartTestCommand) PerformedBy() string {
	return c.performedBy
}

// QueueItemRef addresses one worklist row.
type QueueItemRef struct {
	OrderID kernel.UUID
	TestID  kernel.UUID
}

// StartTestsCommand starts several worklist rows, possibly from different orders.
type StartTestsCommand struct {
	items       []QueueItemRef
	performedBy string

	guard guard.ConstructorGuard
}

func NewStartTestsCommand(items []QueueItemRef, by string) (StartTestsCommand, error) {
	errList := make([]error, 0, len(items)*2+1)
	if len(items) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("queue items"))
	}
	for _, item := range items {
		errList = append(errList, item.OrderID.Validate(), item.TestID.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return StartTestsCommand{}, err
	}
	return StartTestsCommand{
		items:       append([]QueueItemRef(nil), items...),
		performedBy: strings.TrimSpace(by),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c StartTestsCommand) Validate() error {
	return c.guard.Validate(ErrStartTestsCommandIsNotConstructed)
}

func (c StartTestsCommand) Items() []QueueItemRef {
	return append([]QueueItemRef(nil), c.items...)
}

func (c StartTestsCommand) PerformedBy() string {
	return c.performedBy
}

// CompleteTestCommand finishes bench work on one test.
type CompleteTestCommand struct {
	testTarget
	remarks     string
	performedBy string

	guard guard.ConstructorGuard
}

func NewCompleteTestCommand(
	orderID kernel.UUID,
	expectedVersion int64,
	testID kernel.UUID,
	remarks, by string,
) (CompleteTestCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return CompleteTestCommand{}, err
	}
	return CompleteTestCommand{
		testTarget:  target,
		remarks:     strings.TrimSpace(remarks),
		performedBy: strings.TrimSpace(by),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteTestCommand) Validate() error {
	return c.guard.Validate(ErrCompleteTestCommandIsNotConstructed)
}

func (c CompleteTestCommand) Remarks() string {
	return c.remarks
}

func (c CompleteTestCommand) PerformedBy() string {
	return c.performedBy
}

// HoldTestCommand pauses an InProgress test.
type HoldTestCommand struct {
	testTarget
	remarks string

	guard guard.ConstructorGuard
}

func NewHoldTestCommand(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID, remarks string) (HoldTestCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return HoldTestCommand{}, err
	}
	return HoldTestCommand{testTarget: target, remarks: strings.TrimSpace(remarks), guard: guard.NewConstructorGuard()}, nil
}

func (c HoldTestCommand) Validate() error {
	return c.guard.Validate(ErrHoldTestCommandIsNotConstructed)
}

func (c HoldTestCommand) Remarks() string {
	return c.remarks
}

// ResumeTestCommand puts an OnHold test back to InProgress.
type ResumeTestCommand struct {
	testTarget

	guard guard.ConstructorGuard
}

func NewResumeTestCommand(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID) (ResumeTestCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return ResumeTestCommand{}, err
	}
	return ResumeTestCommand{testTarget: target, guard: guard.NewConstructorGuard()}, nil
}

func (c ResumeTestCommand) Validate() error {
	return c.guard.Validate(ErrResumeTestCommandIsNotConstructed)
}
