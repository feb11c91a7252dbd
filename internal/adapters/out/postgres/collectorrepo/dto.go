// Package collectorrepo persists collector aggregates in the collectors table.
package collectorrepo

import (
	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CollectorDTO represents the database structure for persisting collector aggregates.
type CollectorDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string    `gorm:"size:128;index"`
	Mobile             string    `gorm:"size:32"`
	IsAvailable        bool      `gorm:"index"`
	CurrentAssignments int
	TotalCollections   int
	Version            int64 `gorm:"not null"`
}

// TableName specifies the database table name for collector entities.
func (CollectorDTO) TableName() string {
	return "collectors"
}

func fromDomain(c *collector.Collector) CollectorDTO {
	return CollectorDTO{
		ID:                 c.ID().Google(),
		Name:               c.Name(),
		Mobile:             c.Mobile(),
		IsAvailable:        c.IsAvailable(),
		CurrentAssignments: c.CurrentAssignments(),
		TotalCollections:   c.TotalCollections(),
		Version:            c.Version(),
	}
}

func toDomain(dto CollectorDTO) (*collector.Collector, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	return collector.RestoreCollector(
		id,
		dto.Name,
		dto.Mobile,
		dto.IsAvailable,
		dto.CurrentAssignments,
		dto.TotalCollections,
		dto.Version,
	)
}
