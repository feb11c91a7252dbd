// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"context"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

type (
	// OrderReader is the read side of the order repository.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
		ListByStatuses(ctx context.Context, statuses ...order.Status) ([]*order.Order, error)
		CountByStatus(ctx context.Context) (map[order.Status]int64, error)
	}

	// CollectorReader is the read side of the collector repository.
	CollectorReader interface {
		GetAll(ctx context.Context) ([]*collector.Collector, error)
	}
)
