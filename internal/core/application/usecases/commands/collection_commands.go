package commands

import (
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var (
	ErrAssignCollectorCommandIsNotConstructed = errors.New(
		"AssignCollectorCommand must be created via NewAssignCollectorCommand constructor",
	)
	ErrReassignCollectorCommandIsNotConstructed = errors.New(
		"ReassignCollectorCommand must be created via NewReassignCollectorCommand constructor",
	)
	ErrReleaseCollectorCommandIsNotConstructed = errors.New(
		"ReleaseCollectorCommand must be created via NewReleaseCollectorCommand constructor",
	)
	ErrAdvanceCollectionCommandIsNotConstructed = errors.New(
		"AdvanceCollectionCommand must be created via NewAdvanceCollectionCommand constructor",
	)
	ErrAutoAssignCollectorsCommandIsNotConstructed = errors.New(
		"AutoAssignCollectorsCommand must be created via NewAutoAssignCollectorsCommand constructor",
	)
)

// AssignCollectorCommand attaches a collector to a Scheduled home collection.
type AssignCollectorCommand struct {
	OrderTarget
	collectorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignCollectorCommand(orderID kernel.UUID, expectedVersion int64, collectorID kernel.UUID) (AssignCollectorCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err = errors.Join(err, collectorID.Validate()); err != nil {
		return AssignCollectorCommand{}, err
	}
	return AssignCollectorCommand{OrderTarget: target, collectorID: collectorID, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignCollectorCommand) Validate() error {
	return c.guard.Validate(ErrAssignCollectorCommandIsNotConstructed)
}

func (c AssignCollectorCommand) CollectorID() kernel.UUID {
	return c.collectorID
}

// ReassignCollectorCommand moves a Scheduled or Assigned collection to another collector.
type ReassignCollectorCommand struct {
	OrderTarget
	collectorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewReassignCollectorCommand(orderID kernel.UUID, expectedVersion int64, collectorID kernel.UUID) (ReassignCollectorCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err = errors.Join(err, collectorID.Validate()); err != nil {
		return ReassignCollectorCommand{}, err
	}
	return ReassignCollectorCommand{OrderTarget: target, collectorID: collectorID, guard: guard.NewConstructorGuard()}, nil
}

func (c ReassignCollectorCommand) Validate() error {
	return c.guard.Validate(ErrReassignCollectorCommandIsNotConstructed)
}

func (c ReassignCollectorCommand) CollectorID() kernel.UUID {
	return c.collectorID
}

// ReleaseCollectorCommand detaches the collector and puts the visit back to Scheduled.
type ReleaseCollectorCommand struct {
	OrderTarget

	guard guard.ConstructorGuard
}

func NewReleaseCollectorCommand(orderID kernel.UUID, expectedVersion int64) (ReleaseCollectorCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err != nil {
		return ReleaseCollectorCommand{}, err
	}
	return ReleaseCollectorCommand{OrderTarget: target, guard: guard.NewConstructorGuard()}, nil
}

func (c ReleaseCollectorCommand) Validate() error {
	return c.guard.Validate(ErrReleaseCollectorCommandIsNotConstructed)
}

// AdvanceCollectionCommand moves the visit one step forward, or cancels it.
type AdvanceCollectionCommand struct {
	OrderTarget
	target order.CollectionStatus

	guard guard.ConstructorGuard
}

func NewAdvanceCollectionCommand(
	orderID kernel.UUID,
	expectedVersion int64,
	target order.CollectionStatus,
) (AdvanceCollectionCommand, error) {
	orderTarget, err := NewOrderTarget(orderID, expectedVersion)
	if err = errors.Join(err, target.Validate()); err != nil {
		return AdvanceCollectionCommand{}, err
	}
	return AdvanceCollectionCommand{OrderTarget: orderTarget, target: target, guard: guard.NewConstructorGuard()}, nil
}

func (c AdvanceCollectionCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceCollectionCommandIsNotConstructed)
}

func (c AdvanceCollectionCommand) Target() order.CollectionStatus {
	return c.target
}

// AutoAssignCollectorsCommand dispatches up to Limit Scheduled home collections to the
// least-loaded available collectors.
type AutoAssignCollectorsCommand struct {
	limit int

	guard guard.ConstructorGuard
}

func NewAutoAssignCollectorsCommand(limit int) (AutoAssignCollectorsCommand, error) {
	if limit < 1 {
		return AutoAssignCollectorsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return AutoAssignCollectorsCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c AutoAssignCollectorsCommand) Validate() error {
	return c.guard.Validate(ErrAutoAssignCollectorsCommandIsNotConstructed)
}

func (c AutoAssignCollectorsCommand) Limit() int {
	return c.limit
}
