package ports

import (
	"context"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate. The order must be valid and carry version 1.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate with a compare-and-commit
	// write: the row is updated only if its stored version still equals
	// aggregate.Version(). On success the stored version and the aggregate's version are
	// both incremented.
	//
	// Returns:
	//   - *errs.VersionConflictError when the stored version moved on
	//   - *errs.ObjectNotFoundError when the order does not exist
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate with all line items and sub-records.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListByStatuses returns orders in any of the given statuses, oldest first.
	// With no statuses it returns every non-terminal order.
	ListByStatuses(ctx context.Context, statuses ...order.Status) ([]*order.Order, error)

	// ListScheduledHomeCollections returns HomeCollection orders whose visit is still
	// Scheduled (no collector attached), earliest scheduled time first.
	ListScheduledHomeCollections(ctx context.Context, limit int) ([]*order.Order, error)

	// CountByStatus returns the number of orders per status. Statuses without orders
	// are absent from the map.
	CountByStatus(ctx context.Context) (map[order.Status]int64, error)
}
