package commands

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"
)

// CreateOrderCommandHandler handles order intake: it issues the order number, builds
// the line items and sub-records and stores the order in Pending at version 1.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(registry, numbers)
//	o, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	fmt.Println(o.Number()) // ORD-2026-0042
type CreateOrderCommandHandler struct {
	registry *OrderRegistry
	numbers  ports.OrderNumberGenerator
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
func NewCreateOrderCommandHandler(registry *OrderRegistry, numbers ports.OrderNumberGenerator) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		registry: registry,
		numbers:  numbers,
	}
}

// Handle processes the order creation command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	in := cmd.Input()
	now := h.registry.Now()

	intake, err := buildIntake(in)
	if err != nil {
		return nil, err
	}

	number, err := h.numbers.Next(ctx, now)
	if err != nil {
		return nil, err
	}
	intake.Number = number
	intake.CreatedAt = now

	o, err := order.NewOrder(intake)
	if err != nil {
		return nil, err
	}

	if _, err = h.registry.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func buildIntake(in CreateOrderInput) (order.Intake, error) {
	var errList []error

	tests, err := buildTests(in.Tests)
	errList = append(errList, err)

	packages := make([]*order.PackageItem, 0, len(in.Packages))
	for _, p := range in.Packages {
		nested, nestedErr := buildTests(p.Tests)
		if nestedErr != nil {
			errList = append(errList, nestedErr)
			continue
		}
		item, itemErr := order.NewPackageItem(p.CatalogPackageID, p.Name, nested)
		if itemErr != nil {
			errList = append(errList, itemErr)
			continue
		}
		packages = append(packages, item)
	}

	amounts, err := order.NewAmounts(in.Subtotal, in.Discount, in.Tax, in.Paid)
	errList = append(errList, err)

	var visit *order.HomeCollectionDetail
	if in.HomeVisit != nil {
		visit, err = order.NewHomeCollectionDetail(in.HomeVisit.ScheduledAt, in.HomeVisit.Address)
		errList = append(errList, err)
	}

	var slot *order.SlotDetail
	if in.Slot != nil {
		detail, slotErr := order.NewSlotDetail(in.Slot.At, in.Slot.Token)
		errList = append(errList, slotErr)
		slot = &detail
	}

	if err = errors.Join(errList...); err != nil {
		return order.Intake{}, err
	}

	return order.Intake{
		ID:             in.OrderID,
		PatientRef:     in.PatientRef,
		Source:         in.Source,
		Priority:       in.Priority,
		Channel:        in.Channel,
		Tests:          tests,
		Packages:       packages,
		Amounts:        amounts,
		HomeCollection: visit,
		Slot:           slot,
	}, nil
}

func buildTests(lines []TestLine) ([]*order.TestItem, error) {
	var errList []error
	tests := make([]*order.TestItem, 0, len(lines))
	for _, line := range lines {
		item, err := order.NewTestItem(line.CatalogTestID, line.Name, line.Code)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		tests = append(tests, item)
	}
	return tests, errors.Join(errList...)
}
