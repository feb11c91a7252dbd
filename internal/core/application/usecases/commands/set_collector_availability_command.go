package commands

import (
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var ErrSetCollectorAvailabilityCommandIsNotConstructed = errors.New(
	"SetCollectorAvailabilityCommand must be created via NewSetCollectorAvailabilityCommand constructor",
)

// SetCollectorAvailabilityCommand is the operator's on/off duty switch for a collector.
// ExpectedVersion zero means "latest".
type SetCollectorAvailabilityCommand struct {
	collectorID     kernel.UUID
	expectedVersion int64
	available       bool

	guard guard.ConstructorGuard
}

func NewSetCollectorAvailabilityCommand(
	collectorID kernel.UUID,
	expectedVersion int64,
	available bool,
) (SetCollectorAvailabilityCommand, error) {
	var errList []error
	if err := collectorID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if expectedVersion < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("version", expectedVersion, 0, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return SetCollectorAvailabilityCommand{}, err
	}
	return SetCollectorAvailabilityCommand{
		collectorID:     collectorID,
		expectedVersion: expectedVersion,
		available:       available,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c SetCollectorAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetCollectorAvailabilityCommandIsNotConstructed)
}

func (c SetCollectorAvailabilityCommand) CollectorID() kernel.UUID {
	return c.collectorID
}

func (c SetCollectorAvailabilityCommand) ExpectedVersion() int64 {
	return c.expectedVersion
}

func (c SetCollectorAvailabilityCommand) Available() bool {
	return c.available
}
