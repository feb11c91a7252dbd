package commands

import (
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand is the staff console's "set status" request. Only Cancelled
// and Completed can be requested; every other status is derived from lab and
// collection progress.
type UpdateOrderStatusCommand struct {
	OrderTarget
	target order.Status
	reason string

	guard guard.ConstructorGuard
}

func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	expectedVersion int64,
	target order.Status,
	reason string,
) (UpdateOrderStatusCommand, error) {
	orderTarget, err := NewOrderTarget(orderID, expectedVersion)
	if err = errors.Join(err, target.Validate()); err != nil {
		return UpdateOrderStatusCommand{}, err
	}
	return UpdateOrderStatusCommand{
		OrderTarget: orderTarget,
		target:      target,
		reason:      reason,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

func (c UpdateOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c UpdateOrderStatusCommand) Reason() string {
	return c.reason
}
