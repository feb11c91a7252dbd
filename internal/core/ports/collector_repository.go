// Package ports defines the contracts between the application core and its adapters:
// repositories, the unit of work, the report-ready notification sink and the order
// number generator.
package ports

import (
	"context"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
)

// CollectorRepository defines the persistence contract for collector aggregates.
type CollectorRepository interface {
	// Add persists a new collector.
	Add(ctx context.Context, aggregate *collector.Collector) error

	// Update persists changes with the same compare-and-commit rule as
	// OrderRepository.Update.
	Update(ctx context.Context, aggregate *collector.Collector) error

	// Get retrieves a collector by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*collector.Collector, error)

	// GetAll returns every collector ordered by name.
	GetAll(ctx context.Context) ([]*collector.Collector, error)

	// ListAvailable returns on-duty collectors, least loaded first.
	//
	// Example:
	//   free, err := repo.ListAvailable(ctx)
	//   if err != nil {
	//       return fmt.Errorf("failed to list collectors: %w", err)
	//   }
	ListAvailable(ctx context.Context) ([]*collector.Collector, error)
}
