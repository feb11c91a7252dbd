package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// CollectorRepository follows the same staging rules as OrderRepository.
type CollectorRepository struct {
	uow *UnitOfWork
}

func (r *CollectorRepository) Add(_ context.Context, aggregate *collector.Collector) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, exists := r.visible(aggregate.ID()); exists {
		return errs.NewValueIsInvalidError("collector " + aggregate.ID().String() + " already exists")
	}
	return r.uow.stageCollector(aggregate.ID(), stagedCollector{record: recordOf(aggregate)})
}

func (r *CollectorRepository) Update(_ context.Context, aggregate *collector.Collector) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	id := aggregate.ID()

	var base int64
	if staged, ok := r.uow.collectors[id]; ok {
		if staged.record.version != aggregate.Version() {
			return errs.NewVersionConflictError("collector", id.String(), aggregate.Version(), staged.record.version)
		}
		base = staged.base
	} else {
		committed, exists := r.committed(id)
		if !exists {
			return errs.NewObjectNotFoundError("collector", id.String())
		}
		if committed.version != aggregate.Version() {
			return errs.NewVersionConflictError("collector", id.String(), aggregate.Version(), committed.version)
		}
		base = committed.version
	}

	record := recordOf(aggregate)
	record.version++
	if err := r.uow.stageCollector(id, stagedCollector{record: record, base: base}); err != nil {
		return err
	}
	aggregate.IncrementVersion()
	return nil
}

func (r *CollectorRepository) Get(_ context.Context, id kernel.UUID) (*collector.Collector, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	record, exists := r.visible(id)
	if !exists {
		return nil, errs.NewObjectNotFoundError("collector", id.String())
	}
	return record.restore()
}

func (r *CollectorRepository) GetAll(_ context.Context) ([]*collector.Collector, error) {
	records := r.all()
	slices.SortFunc(records, func(a, b collectorRecord) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.id.String(), b.id.String())
	})
	return restoreCollectors(records)
}

func (r *CollectorRepository) ListAvailable(_ context.Context) ([]*collector.Collector, error) {
	var records []collectorRecord
	for _, rec := range r.all() {
		if rec.isAvailable {
			records = append(records, rec)
		}
	}
	slices.SortFunc(records, func(a, b collectorRecord) int {
		if c := cmp.Compare(a.currentAssignments, b.currentAssignments); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return restoreCollectors(records)
}

func (r *CollectorRepository) committed(id kernel.UUID) (collectorRecord, bool) {
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	rec, ok := r.uow.store.collectors[id]
	return rec, ok
}

func (r *CollectorRepository) visible(id kernel.UUID) (collectorRecord, bool) {
	if staged, ok := r.uow.collectors[id]; ok {
		return staged.record, true
	}
	return r.committed(id)
}

func (r *CollectorRepository) all() []collectorRecord {
	_, collectors := r.uow.store.snapshot()
	for id, staged := range r.uow.collectors {
		collectors[id] = staged.record
	}
	result := make([]collectorRecord, 0, len(collectors))
	for _, rec := range collectors {
		result = append(result, rec)
	}
	return result
}

func restoreCollectors(records []collectorRecord) ([]*collector.Collector, error) {
	result := make([]*collector.Collector, 0, len(records))
	for _, rec := range records {
		c, err := rec.restore()
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}
