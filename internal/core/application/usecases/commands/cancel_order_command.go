package commands

import (
	"errors"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels an order from any non-terminal status.
type CancelOrderCommand struct {
	OrderTarget
	reason string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID, expectedVersion int64, reason string) (CancelOrderCommand, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{
		OrderTarget: target,
		reason:      strings.TrimSpace(reason),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}
