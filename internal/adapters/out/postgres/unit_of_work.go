// Package postgres provides the GORM-based implementation of the Unit of Work pattern.
// One unit of work wraps one database transaction; the order and collector
// repositories it hands out run inside that transaction when one is active and
// against the plain connection otherwise.
//
// A lost race on either table comes back as *errs.VersionConflictError, because the
// repositories update rows with a version predicate. Units of work are not shared
// between goroutines; the registry asks the factory for a new one per attempt.
package postgres

import (
	"context"

	"labdesk/internal/adapters/out/postgres/collectorrepo"
	"labdesk/internal/adapters/out/postgres/orderrepo"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/ports"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// trackedAggregate is one aggregate written through this unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory hands out units of work over one *gorm.DB pool.
type GormUnitOfWorkFactory struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewGormUnitOfWorkFactory(db *gorm.DB, logger zerolog.Logger) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{
		db:     db,
		logger: logger.With().Str("component", "unit_of_work").Logger(),
	}
}

// Create produces a new UnitOfWork instance with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records every aggregate
// its repositories wrote.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	logger            zerolog.Logger
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. A second Begin while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit fails with gorm.ErrInvalidTransaction when no transaction is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		return err
	}

	if e := uow.logger.Debug(); e.Enabled() {
		ids := make([]string, 0, len(uow.trackedAggregates))
		for _, id := range uow.TrackedIDs() {
			ids = append(ids, id.String())
		}
		e.Strs("aggregates", ids).Msg("unit of work committed")
	}
	return nil
}

// Rollback is safe to defer. After Commit it only returns gorm.ErrInvalidTransaction,
// which deferred callers ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// CollectorRepository runs on the open transaction, or on the pool before Begin.
func (uow *GormUnitOfWork) CollectorRepository() ports.CollectorRepository {
	return collectorrepo.NewGormCollectorRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// TrackAggregate registers an aggregate as written within this unit of work.
// Called by repository implementations after a successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedIDs returns the identifiers of the aggregates written so far, in write order.
// The list survives Commit and is logged there; the next Begin clears it.
func (uow *GormUnitOfWork) TrackedIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		ids = append(ids, t.ID)
	}
	return ids
}

// Migrate creates or updates the orders and collectors tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&orderrepo.OrderDTO{}, &collectorrepo.CollectorDTO{})
}
