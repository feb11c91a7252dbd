package commands

import (
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/guard"
)

var ErrMarkCompletedCommandIsNotConstructed = errors.New(
	"MarkCompletedCommand must be created via NewMarkCompletedCommand constructor",
)

// MarkCompletedCommand releases the reports of a ReportReady order and completes it.
type MarkCompletedCommand struct {
	OrderTarget

	guard guard.ConstructorGuard
}

func NewMarkCompletedCommand(orderID kernel.UUID, expectedVersion int64) (MarkCompletedCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err != nil {
		return MarkCompletedCommand{}, err
	}
	return MarkCompletedCommand{OrderTarget: target, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c MarkCompletedCommand) Validate() error {
	return c.guard.Validate(ErrMarkCompletedCommandIsNotConstructed)
}
