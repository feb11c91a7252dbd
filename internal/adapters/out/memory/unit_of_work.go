package memory

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"
	"labdesk/internal/pkg/errs"
)

// ErrNoActiveTransaction is returned by Commit and Rollback without a prior Begin.
var ErrNoActiveTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return newUnitOfWork(f.store)
}

// stagedOrder is a pending order write. base is the committed version the write was
// made against (0 for an insert).
type stagedOrder struct {
	state order.State
	base  int64
}

type stagedCollector struct {
	record collectorRecord
	base   int64
}

// UnitOfWork stages writes until Commit. Commit re-checks every staged write against
// the store under one lock and applies all of them or none, so two transactions that
// both read version v cannot both commit v+1.
//
// Outside Begin/Commit every write is committed immediately.
type UnitOfWork struct {
	store      *Store
	active     bool
	orders     map[kernel.UUID]stagedOrder
	collectors map[kernel.UUID]stagedCollector
}

func newUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.active = true
	u.orders = make(map[kernel.UUID]stagedOrder)
	u.collectors = make(map[kernel.UUID]stagedCollector)
	return nil
}

// Commit applies every staged write, or returns *errs.VersionConflictError and applies
// nothing when any of them lost a race.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoActiveTransaction
	}
	defer u.reset()
	return u.store.apply(u.orders, u.collectors)
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoActiveTransaction
	}
	u.reset()
	return nil
}

func (u *UnitOfWork) reset() {
	u.active = false
	u.orders = nil
	u.collectors = nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) CollectorRepository() ports.CollectorRepository {
	return &CollectorRepository{uow: u}
}

func (u *UnitOfWork) stageOrder(id kernel.UUID, write stagedOrder) error {
	if u.active {
		u.orders[id] = write
		return nil
	}
	return u.store.apply(map[kernel.UUID]stagedOrder{id: write}, nil)
}

func (u *UnitOfWork) stageCollector(id kernel.UUID, write stagedCollector) error {
	if u.active {
		u.collectors[id] = write
		return nil
	}
	return u.store.apply(nil, map[kernel.UUID]stagedCollector{id: write})
}

// apply is the commit point of the store.
func (s *Store) apply(orders map[kernel.UUID]stagedOrder, collectors map[kernel.UUID]stagedCollector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range orders {
		current, exists := s.orders[id]
		switch {
		case w.base == 0 && exists:
			return errs.NewValueIsInvalidError("order " + id.String() + " already exists")
		case w.base > 0 && !exists:
			return errs.NewObjectNotFoundError("order", id.String())
		case w.base > 0 && current.Version != w.base:
			return errs.NewVersionConflictError("order", id.String(), w.base, current.Version)
		}
	}
	for id, w := range collectors {
		current, exists := s.collectors[id]
		switch {
		case w.base == 0 && exists:
			return errs.NewValueIsInvalidError("collector " + id.String() + " already exists")
		case w.base > 0 && !exists:
			return errs.NewObjectNotFoundError("collector", id.String())
		case w.base > 0 && current.version != w.base:
			return errs.NewVersionConflictError("collector", id.String(), w.base, current.version)
		}
	}

	for id, w := range orders {
		s.orders[id] = w.state
	}
	for id, w := range collectors {
		s.collectors[id] = w.record
	}
	return nil
}
