package memory

import (
	"context"
	"slices"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"
)

// OrderRepository reads committed orders overlaid with the writes staged in its unit
// of work.
type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, exists := r.visible(aggregate.ID()); exists {
		return errs.NewValueIsInvalidError("order " + aggregate.ID().String() + " already exists")
	}
	return r.uow.stageOrder(aggregate.ID(), stagedOrder{state: aggregate.State()})
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	id := aggregate.ID()

	var base int64
	if staged, ok := r.uow.orders[id]; ok {
		if staged.state.Version != aggregate.Version() {
			return errs.NewVersionConflictError("order", id.String(), aggregate.Version(), staged.state.Version)
		}
		base = staged.base
	} else {
		committed, exists := r.committed(id)
		if !exists {
			return errs.NewObjectNotFoundError("order", id.String())
		}
		if committed.Version != aggregate.Version() {
			return errs.NewVersionConflictError("order", id.String(), aggregate.Version(), committed.Version)
		}
		base = committed.Version
	}

	state := aggregate.State()
	state.Version++
	// base stays 0 for an order inserted in this unit of work, so it commits as an insert.
	if err := r.uow.stageOrder(id, stagedOrder{state: state, base: base}); err != nil {
		return err
	}
	aggregate.IncrementVersion()
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	state, exists := r.visible(id)
	if !exists {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(state)
}

func (r *OrderRepository) ListByStatuses(_ context.Context, statuses ...order.Status) ([]*order.Order, error) {
	match := func(s order.Status) bool {
		if len(statuses) == 0 {
			return !s.IsTerminal()
		}
		return slices.Contains(statuses, s)
	}

	var states []order.State
	for _, st := range r.all() {
		if match(st.Status) {
			states = append(states, st)
		}
	}
	slices.SortFunc(states, func(a, b order.State) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Number, b.Number)
	})
	return restoreAll(states)
}

func (r *OrderRepository) ListScheduledHomeCollections(_ context.Context, limit int) ([]*order.Order, error) {
	var states []order.State
	for _, st := range r.all() {
		if st.Source != order.HomeCollection || st.Status.IsTerminal() || st.HomeCollection == nil {
			continue
		}
		if st.HomeCollection.Status == order.CollectionScheduled {
			states = append(states, st)
		}
	}
	slices.SortFunc(states, func(a, b order.State) int {
		if c := a.HomeCollection.ScheduledAt.Compare(b.HomeCollection.ScheduledAt); c != 0 {
			return c
		}
		return strings.Compare(a.Number, b.Number)
	})
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}
	return restoreAll(states)
}

func (r *OrderRepository) CountByStatus(_ context.Context) (map[order.Status]int64, error) {
	counts := make(map[order.Status]int64)
	for _, st := range r.all() {
		counts[st.Status]++
	}
	return counts, nil
}

func (r *OrderRepository) committed(id kernel.UUID) (order.State, bool) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	st, ok := r.uow.store.orders[id]
	return st, ok
}

func (r *OrderRepository) visible(id kernel.UUID) (order.State, bool) {
	if staged, ok := r.uow.orders[id]; ok {
		return staged.state, true
	}
	return r.committed(id)
}

func (r *OrderRepository) all() []order.State {
	orders, _ := r.uow.store.snapshot()
	for id, staged := range r.uow.orders {
		orders[id] = staged.state
	}
	result := make([]order.State, 0, len(orders))
	for _, st := range orders {
		result = append(result, st)
	}
	return result
}

func restoreAll(states []order.State) ([]*order.Order, error) {
	result := make([]*order.Order, 0, len(states))
	for _, st := range states {
		o, err := order.RestoreOrder(st)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}
