package commands

import (
	"errors"
	"strings"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/guard"
)

var ErrCreateCollectorCommandIsNotConstructed = errors.New(
	"CreateCollectorCommand must be created via NewCreateCollectorCommand constructor",
)

// CreateCollectorCommand registers a new field collector.
//
// Example:
//
//	cmd, err := NewCreateCollectorCommand(kernel.NewUUID(), "Ravi Kumar", "+91-98450-00000")
//	if err != nil {
//	    return fmt.Errorf("invalid collector data: %w", err)
//	}
//	c, err := handler.Handle(ctx, cmd)
type CreateCollectorCommand struct {
	collectorID kernel.UUID
	name        string
	mobile      string

	guard guard.ConstructorGuard
}

func NewCreateCollectorCommand(collectorID kernel.UUID, name, mobile string) (CreateCollectorCommand, error) {
	name = strings.TrimSpace(name)
	mobile = strings.TrimSpace(mobile)

	var errList []error
	if err := collectorID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if name == "" {
		errList = append(errList, collector.ErrNameIsRequired)
	}
	if mobile == "" {
		errList = append(errList, collector.ErrMobileIsRequired)
	}
	if err := errors.Join(errList...); err != nil {
		return CreateCollectorCommand{}, err
	}

	return CreateCollectorCommand{
		collectorID: collectorID,
		name:        name,
		mobile:      mobile,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateCollectorCommand) Validate() error {
	return c.guard.Validate(ErrCreateCollectorCommandIsNotConstructed)
}

func (c CreateCollectorCommand) CollectorID() kernel.UUID {
	return c.collectorID
}

func (c CreateCollectorCommand) Name() string {
	return c.name
}

func (c CreateCollectorCommand) Mobile() string {
	return c.mobile
}
