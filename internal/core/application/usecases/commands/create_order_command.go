package commands

import (
	"errors"
	"strings"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrPatientRefIsRequired = errs.NewValueIsRequiredError("patient reference")
	ErrNoTestsOrdered       = errs.NewValueIsRequiredError("at least one test or package")
)

// TestLine is one test requested at intake.
type TestLine struct {
	CatalogTestID string
	Name          string
	Code          string
}

// PackageLine is one package requested at intake.
type PackageLine struct {
	CatalogPackageID string
	Name             string
	Tests            []TestLine
}

// HomeVisit is the requested home collection appointment.
type HomeVisit struct {
	ScheduledAt time.Time
	Address     string
}

// SlotBookingRequest is the booked in-lab slot.
type SlotBookingRequest struct {
	At    time.Time
	Token int
}

// CreateOrderInput carries the raw intake data.
type CreateOrderInput struct {
	OrderID    kernel.UUID
	PatientRef string
	Source     order.Source
	Priority   kernel.Priority
	Channel    order.NotificationChannel
	Tests      []TestLine
	Packages   []PackageLine
	Subtotal   int64
	Discount   int64
	Tax        int64
	Paid       int64
	HomeVisit  *HomeVisit
	Slot       *SlotBookingRequest
}

// CreateOrderCommand represents intake of a new lab order from any of the five sources.
// The order number is issued by the handler.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(CreateOrderInput{
//	    OrderID:    kernel.NewUUID(),
//	    PatientRef: "PAT-77",
//	    Source:     order.WalkIn,
//	    Priority:   kernel.Urgent,
//	    Tests:      []TestLine{{CatalogTestID: "T-001", Name: "Complete Blood Count", Code: "CBC"}},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	input CreateOrderInput

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks the intake data that does not need the domain model:
// identifiers, a patient reference and at least one test. Source-specific rules are
// enforced by order.NewOrder.
func NewCreateOrderCommand(input CreateOrderInput) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(input.OrderID),
		cmd.setPatientRef(input.PatientRef),
		cmd.setSource(input.Source),
		cmd.setItems(input.Tests, input.Packages),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	if input.Priority == kernel.UnknownPriority {
		input.Priority = kernel.Normal
	}
	cmd.input.Priority = input.Priority
	cmd.input.Channel = input.Channel
	cmd.input.Subtotal = input.Subtotal
	cmd.input.Discount = input.Discount
	cmd.input.Tax = input.Tax
	cmd.input.Paid = input.Paid
	cmd.input.HomeVisit = input.HomeVisit
	cmd.input.Slot = input.Slot

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// Input returns a copy of the validated intake data.
func (c CreateOrderCommand) Input() CreateOrderInput {
	return c.input
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.input.OrderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPatientRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrPatientRefIsRequired
	}
	c.input.PatientRef = ref
	return nil
}

func (c *CreateOrderCommand) setSource(source order.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}
	c.input.Source = source
	return nil
}

func (c *CreateOrderCommand) setItems(tests []TestLine, packages []PackageLine) error {
	if len(tests) == 0 && len(packages) == 0 {
		return ErrNoTestsOrdered
	}
	c.input.Tests = append([]TestLine(nil), tests...)
	c.input.Packages = make([]PackageLine, 0, len(packages))
	for _, p := range packages {
		p.Tests = append([]TestLine(nil), p.Tests...)
		c.input.Packages = append(c.input.Packages, p)
	}
	return nil
}
