package commands

import (
	"context"
	"errors"
	"time"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/ports"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// maxUpdateAttempts bounds the re-read/re-apply loop of OrderRegistry.Update.
const maxUpdateAttempts = 3

// Clock returns the current time. Every transition is stamped with it.
type Clock func() time.Time

// Mutator changes a loaded order inside the registry's transaction. Collectors the
// mutation touches must be loaded through the Session so they commit together with
// the order.
type Mutator func(ctx context.Context, session *Session, o *order.Order, now time.Time) error

// OrderRegistry is the only write path for orders. Each call loads the order, applies
// a mutation and commits the order together with every collector it changed in one
// unit of work. The order row is written with a compare-and-commit on its version.
//
// Example:
//
//	registry := NewOrderRegistry(uowFactory, time.Now, m, logger)
//	o, err := registry.ApplyUpdate(ctx, id, 4, func(ctx context.Context, s *Session, o *order.Order, now time.Time) error {
//	    return o.StartTest(testID, "asha", now)
//	})
//	if errors.Is(err, errs.ErrVersionConflict) {
//	    // the caller re-reads and decides again
//	}
type OrderRegistry struct {
	uowFactory UoWFactory
	clock      Clock
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewOrderRegistry(uowFactory UoWFactory, clock Clock, m *metrics.Metrics, logger zerolog.Logger) *OrderRegistry {
	if clock == nil {
		clock = time.Now
	}
	return &OrderRegistry{
		uowFactory: uowFactory,
		clock:      clock,
		metrics:    m,
		logger:     logger.With().Str("component", "order_registry").Logger(),
	}
}

// Now returns the registry clock in UTC.
func (r *OrderRegistry) Now() time.Time {
	return r.clock().UTC()
}

// Create persists a new order and returns its id.
func (r *OrderRegistry) Create(ctx context.Context, o *order.Order) (kernel.UUID, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return kernel.UUID{}, err
	}
	if err := uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	r.logger.Info().
		Str("order_id", o.ID().String()).
		Str("order_number", o.Number()).
		Str("source", o.Source().String()).
		Msg("order created")
	return o.ID(), nil
}

// Get reads the committed state of an order.
func (r *OrderRegistry) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.uowFactory.Create().OrderRepository().Get(ctx, id)
}

// ApplyUpdate applies mutate only if the stored order is still at expectedVersion.
//
// Returns:
//   - *order.Order: the committed order with its new version
//   - *errs.VersionConflictError: the order moved on, either before the mutation was
//     applied or while it was being committed
//   - any error returned by mutate, in which case nothing is written
func (r *OrderRegistry) ApplyUpdate(
	ctx context.Context,
	id kernel.UUID,
	expectedVersion int64,
	mutate Mutator,
) (*order.Order, error) {
	if expectedVersion < 1 {
		return nil, errs.NewValueIsOutOfRangeError("expected version", expectedVersion, 1, "unbounded")
	}
	o, err := r.apply(ctx, id, expectedVersion, mutate)
	if errors.Is(err, errs.ErrVersionConflict) {
		r.metrics.RecordVersionConflict("order")
	}
	return o, err
}

// Update re-reads the order and applies mutate, retrying on version conflicts up to
// three attempts in total. Used where the caller has no version of its own (jobs,
// batch operations).
func (r *OrderRegistry) Update(ctx context.Context, id kernel.UUID, mutate Mutator) (*order.Order, error) {
	var err error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		var o *order.Order
		o, err = r.apply(ctx, id, 0, mutate)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return nil, err
		}
		r.metrics.RecordVersionConflict("order")
		r.logger.Debug().
			Err(err).
			Str("order_id", id.String()).
			Int("attempt", attempt).
			Msg("retrying order update after version conflict")
	}
	return nil, err
}

// Mutate dispatches to ApplyUpdate when the caller supplied a version and to Update
// otherwise.
func (r *OrderRegistry) Mutate(ctx context.Context, target OrderTarget, mutate Mutator) (*order.Order, error) {
	if target.ExpectedVersion() > 0 {
		return r.ApplyUpdate(ctx, target.OrderID(), target.ExpectedVersion(), mutate)
	}
	return r.Update(ctx, target.OrderID(), mutate)
}

func (r *OrderRegistry) apply(
	ctx context.Context,
	id kernel.UUID,
	expectedVersion int64,
	mutate Mutator,
) (*order.Order, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && o.Version() != expectedVersion {
		return nil, errs.NewVersionConflictError("order", id.String(), expectedVersion, o.Version())
	}

	from := o.Status()
	session := newSession(uow.CollectorRepository())
	if err = mutate(ctx, session, o, r.Now()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = session.flush(ctx); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if to := o.Status(); to != from {
		r.metrics.RecordTransition(o.Source().String(), from.String(), to.String())
		r.logger.Info().
			Str("order_id", o.ID().String()).
			Str("order_number", o.Number()).
			Str("from", from.String()).
			Str("to", to.String()).
			Int64("version", o.Version()).
			Msg("order status changed")
	}
	return o, nil
}

// Session gives a mutation transactional access to collectors. A collector loaded
// through it is written back on commit when its availability or counters changed.
type Session struct {
	collectors ports.CollectorRepository
	tracked    []trackedCollector
	byID       map[kernel.UUID]*collector.Collector
}

type collectorSnapshot struct {
	available bool
	current   int
	total     int
}

type trackedCollector struct {
	aggregate *collector.Collector
	loaded    collectorSnapshot
}

func newSession(collectors ports.CollectorRepository) *Session {
	return &Session{
		collectors: collectors,
		byID:       make(map[kernel.UUID]*collector.Collector),
	}
}

func snapshotOf(c *collector.Collector) collectorSnapshot {
	return collectorSnapshot{
		available: c.IsAvailable(),
		current:   c.CurrentAssignments(),
		total:     c.TotalCollections(),
	}
}

// Collector loads a collector inside the transaction. Loading the same id twice returns
// the same aggregate.
func (s *Session) Collector(ctx context.Context, id kernel.UUID) (*collector.Collector, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	c, err := s.collectors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.track(c)
	return c, nil
}

// ActiveCollector loads the collector currently held by the order's home collection,
// or returns nil when the collection holds none.
func (s *Session) ActiveCollector(ctx context.Context, o *order.Order) (*collector.Collector, error) {
	id, held := o.ActiveCollector()
	if !held {
		return nil, nil //nolint:nilnil // no collector is a valid answer
	}
	return s.Collector(ctx, id)
}

// AvailableCollectors loads every on-duty collector, least loaded first.
func (s *Session) AvailableCollectors(ctx context.Context) ([]*collector.Collector, error) {
	list, err := s.collectors.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*collector.Collector, 0, len(list))
	for _, c := range list {
		if known, ok := s.byID[c.ID()]; ok {
			result = append(result, known)
			continue
		}
		s.track(c)
		result = append(result, c)
	}
	return result, nil
}

func (s *Session) track(c *collector.Collector) {
	s.byID[c.ID()] = c
	s.tracked = append(s.tracked, trackedCollector{aggregate: c, loaded: snapshotOf(c)})
}

func (s *Session) flush(ctx context.Context) error {
	for _, t := range s.tracked {
		if snapshotOf(t.aggregate) == t.loaded {
			continue
		}
		if err := s.collectors.Update(ctx, t.aggregate); err != nil {
			return err
		}
	}
	return nil
}
