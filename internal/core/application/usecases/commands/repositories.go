// Package commands holds the write side of the lab desk: order intake, collection
// dispatch, bench work, reports and completion. Each command is a validated value;
// each handler applies it through the OrderRegistry.
package commands

import (
	"context"

	"labdesk/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	CollectorRepoFactory interface {
		CollectorRepository() ports.CollectorRepository
	}

	// CollectorUoW covers collector registration and availability changes.
	CollectorUoW interface {
		TxManager
		CollectorRepoFactory
	}

	CollectorUoWFactory interface {
		Create() CollectorUoW
	}

	// UoW manages transactions across order and collector aggregates. Every order
	// mutation runs in one, because assignment changes move collector counters in the
	// same commit.
	UoW interface {
		TxManager
		CollectorRepoFactory
		OrderRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
