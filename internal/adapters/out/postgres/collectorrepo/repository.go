package collectorrepo

import (
	"context"
	"errors"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCollectorRepository implements CollectorRepository using GORM.
type GormCollectorRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCollectorRepository creates a new GORM collector repository.
func NewGormCollectorRepository(db *gorm.DB, tracker aggregateTracker) *GormCollectorRepository {
	return &GormCollectorRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new collector to the database.
func (r *GormCollectorRepository) Add(ctx context.Context, aggregate *collector.Collector) error {
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

// Update saves counters and availability with a compare-and-commit on the version.
func (r *GormCollectorRepository) Update(ctx context.Context, aggregate *collector.Collector) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	expected := dto.Version
	result := r.db.WithContext(ctx).
		Model(&CollectorDTO{}).
		Where("id = ? AND version = ?", dto.ID, expected).
		Updates(map[string]any{
			"name":                dto.Name,
			"mobile":              dto.Mobile,
			"is_available":        dto.IsAvailable,
			"current_assignments": dto.CurrentAssignments,
			"total_collections":   dto.TotalCollections,
			"version":             expected + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var stored CollectorDTO
		err := r.db.WithContext(ctx).Select("version").First(&stored, "id = ?", dto.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("collector", aggregate.ID().String())
		}
		if err != nil {
			return err
		}
		return errs.NewVersionConflictError("collector", aggregate.ID().String(), expected, stored.Version)
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a collector by ID.
func (r *GormCollectorRepository) Get(ctx context.Context, id kernel.UUID) (*collector.Collector, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CollectorDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("collector", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every collector ordered by name.
func (r *GormCollectorRepository) GetAll(ctx context.Context) ([]*collector.Collector, error) {
	var dtos []CollectorDTO
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// ListAvailable retrieves on-duty collectors, least loaded first.
func (r *GormCollectorRepository) ListAvailable(ctx context.Context) ([]*collector.Collector, error) {
	var dtos []CollectorDTO
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("current_assignments ASC, name ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

func toDomainAll(dtos []CollectorDTO) ([]*collector.Collector, error) {
	collectors := make([]*collector.Collector, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}
