package orderrepo

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the order only if the row still carries aggregate.Version(), then
// increments the version of the aggregate.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	expected := dto.Version
	dto.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, expected).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missedUpdate(ctx, aggregate.ID(), expected)
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// missedUpdate tells a lost version race apart from a missing row.
func (r *GormOrderRepository) missedUpdate(ctx context.Context, id kernel.UUID, expected int64) error {
	var stored OrderDTO
	err := r.db.WithContext(ctx).Select("version").First(&stored, "id = ?", id.Google()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	if err != nil {
		return err
	}
	return errs.NewVersionConflictError("order", id.String(), expected, stored.Version)
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByStatuses retrieves orders in the given statuses, oldest first. Without
// statuses every non-terminal order is returned.
func (r *GormOrderRepository) ListByStatuses(ctx context.Context, statuses ...order.Status) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC, number ASC")
	if len(statuses) == 0 {
		query = query.Where("status NOT IN ?", []int{int(order.Completed), int(order.Cancelled)})
	} else {
		values := make([]int, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, int(s))
		}
		query = query.Where("status IN ?", values)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// ListScheduledHomeCollections retrieves open home collections that still wait for a
// collector, earliest visit first.
func (r *GormOrderRepository) ListScheduledHomeCollections(ctx context.Context, limit int) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("source = ? AND collection_status = ?", int(order.HomeCollection), int(order.CollectionScheduled)).
		Where("status NOT IN ?", []int{int(order.Completed), int(order.Cancelled)}).
		Order("scheduled_at ASC, number ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

type statusCount struct {
	Status int
	Count  int64
}

// CountByStatus groups orders by status in the database.
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Raw("SELECT status, COUNT(*) AS count FROM orders GROUP BY status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int64, len(rows))
	for _, row := range rows {
		counts[order.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
