// Package orderrepo persists order aggregates in the orders table. Scalar fields and
// the columns used for filtering live in their own columns; line items and the
// home-collection and slot sub-records are embedded as jsonb.
package orderrepo

import (
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// CollectionStatus and ScheduledAt duplicate fields of HomeCollection so the
// auto-assignment scan can use an index.
type OrderDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number        string    `gorm:"size:32;uniqueIndex"`
	PatientRef    string    `gorm:"size:64;index"`
	Source        int       `gorm:"type:smallint"`
	Status        int       `gorm:"type:smallint;index"`
	Version       int64     `gorm:"not null"`
	Priority      int       `gorm:"type:smallint"`
	Channel       string    `gorm:"size:16"`
	PaymentStatus int       `gorm:"type:smallint"`

	Subtotal int64
	Discount int64
	Tax      int64
	Paid     int64

	Tests          []TestItemDTO      `gorm:"type:jsonb;serializer:json"`
	Packages       []PackageItemDTO   `gorm:"type:jsonb;serializer:json"`
	HomeCollection *HomeCollectionDTO `gorm:"type:jsonb;serializer:json"`
	Slot           *SlotDTO           `gorm:"type:jsonb;serializer:json"`

	CollectionStatus *int       `gorm:"type:smallint;index:idx_orders_collection"`
	ScheduledAt      *time.Time `gorm:"index:idx_orders_collection"`

	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
	SampleCollectedAt   *time.Time
	ProcessingStartedAt *time.Time
	ReportReadyAt       *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CancelReason        string
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// TestItemDTO is the json form of one test line item.
type TestItemDTO struct {
	ID                uuid.UUID  `json:"id"`
	CatalogTestID     string     `json:"catalogTestId"`
	Name              string     `json:"name"`
	Code              string     `json:"code"`
	SampleCollected   bool       `json:"sampleCollected"`
	SampleCollectedAt *time.Time `json:"sampleCollectedAt,omitempty"`
	Processing        int        `json:"processing"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	HeldAt            *time.Time `json:"heldAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ProcessedBy       string     `json:"processedBy,omitempty"`
	Report            int        `json:"report"`
	ReportFile        string     `json:"reportFile,omitempty"`
	UploadedAt        *time.Time `json:"uploadedAt,omitempty"`
	UploadedBy        string     `json:"uploadedBy,omitempty"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	VerifiedBy        string     `json:"verifiedBy,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`
}

// PackageItemDTO is the json form of a package with its nested tests.
type PackageItemDTO struct {
	ID               uuid.UUID     `json:"id"`
	CatalogPackageID string        `json:"catalogPackageId"`
	Name             string        `json:"name"`
	Tests            []TestItemDTO `json:"tests"`
}

// HomeCollectionDTO is the json form of the field visit.
type HomeCollectionDTO struct {
	ScheduledAt time.Time  `json:"scheduledAt"`
	Address     string     `json:"address"`
	Status      int        `json:"status"`
	CollectorID *uuid.UUID `json:"collectorId,omitempty"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	EnRouteAt   *time.Time `json:"enRouteAt,omitempty"`
	CollectedAt *time.Time `json:"collectedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// SlotDTO is the json form of a booked slot.
type SlotDTO struct {
	At    time.Time `json:"at"`
	Token int       `json:"token"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	st := o.State()
	a := st.Amounts

	dto := OrderDTO{
		ID:                  st.ID.Google(),
		Number:              st.Number,
		PatientRef:          st.PatientRef,
		Source:              int(st.Source),
		Status:              int(st.Status),
		Version:             st.Version,
		Priority:            int(st.Priority),
		Channel:             string(st.Channel),
		PaymentStatus:       int(st.PaymentStatus),
		Subtotal:            a.Subtotal(),
		Discount:            a.Discount(),
		Tax:                 a.Tax(),
		Paid:                a.Paid(),
		Tests:               testsFromState(st.Tests),
		Packages:            make([]PackageItemDTO, 0, len(st.Packages)),
		CreatedAt:           st.CreatedAt,
		UpdatedAt:           st.UpdatedAt,
		SampleCollectedAt:   st.SampleCollectedAt,
		ProcessingStartedAt: st.ProcessingStartedAt,
		ReportReadyAt:       st.ReportReadyAt,
		CompletedAt:         st.CompletedAt,
		CancelledAt:         st.CancelledAt,
		CancelReason:        st.CancelReason,
	}
	for _, p := range st.Packages {
		dto.Packages = append(dto.Packages, PackageItemDTO{
			ID:               p.ID.Google(),
			CatalogPackageID: p.CatalogPackageID,
			Name:             p.Name,
			Tests:            testsFromState(p.Tests),
		})
	}

	if hc := st.HomeCollection; hc != nil {
		var collectorID *uuid.UUID
		if hc.CollectorID != nil {
			raw := hc.CollectorID.Google()
			collectorID = &raw
		}
		status := int(hc.Status)
		scheduledAt := hc.ScheduledAt
		dto.HomeCollection = &HomeCollectionDTO{
			ScheduledAt: hc.ScheduledAt,
			Address:     hc.Address,
			Status:      status,
			CollectorID: collectorID,
			AssignedAt:  hc.AssignedAt,
			EnRouteAt:   hc.EnRouteAt,
			CollectedAt: hc.CollectedAt,
			CancelledAt: hc.CancelledAt,
		}
		dto.CollectionStatus = &status
		dto.ScheduledAt = &scheduledAt
	}
	if st.Slot != nil {
		dto.Slot = &SlotDTO{At: st.Slot.At(), Token: st.Slot.Token()}
	}
	return dto
}

func testsFromState(states []order.TestItemState) []TestItemDTO {
	result := make([]TestItemDTO, 0, len(states))
	for _, t := range states {
		result = append(result, TestItemDTO{
			ID:                t.ID.Google(),
			CatalogTestID:     t.CatalogTestID,
			Name:              t.Name,
			Code:              t.Code,
			SampleCollected:   t.SampleCollected,
			SampleCollectedAt: t.SampleCollectedAt,
			Processing:        int(t.Processing),
			StartedAt:         t.StartedAt,
			HeldAt:            t.HeldAt,
			CompletedAt:       t.CompletedAt,
			ProcessedBy:       t.ProcessedBy,
			Report:            int(t.Report),
			ReportFile:        t.ReportFile,
			UploadedAt:        t.UploadedAt,
			UploadedBy:        t.UploadedBy,
			VerifiedAt:        t.VerifiedAt,
			VerifiedBy:        t.VerifiedBy,
			DeliveredAt:       t.DeliveredAt,
			Remarks:           t.Remarks,
		})
	}
	return result
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	amounts, err := order.NewAmounts(dto.Subtotal, dto.Discount, dto.Tax, dto.Paid)
	if err != nil {
		return nil, err
	}
	tests, err := testsToState(dto.Tests)
	if err != nil {
		return nil, err
	}

	packages := make([]order.PackageItemState, 0, len(dto.Packages))
	for _, p := range dto.Packages {
		packageID, idErr := kernel.UUIDFromGoogle(p.ID)
		if idErr != nil {
			return nil, idErr
		}
		nested, testsErr := testsToState(p.Tests)
		if testsErr != nil {
			return nil, testsErr
		}
		packages = append(packages, order.PackageItemState{
			ID:               packageID,
			CatalogPackageID: p.CatalogPackageID,
			Name:             p.Name,
			Tests:            nested,
		})
	}

	state := order.State{
		ID:                  id,
		Number:              dto.Number,
		PatientRef:          dto.PatientRef,
		Source:              order.Source(dto.Source),
		Status:              order.Status(dto.Status),
		Version:             dto.Version,
		Priority:            kernel.Priority(dto.Priority),
		Channel:             order.NotificationChannel(dto.Channel),
		Tests:               tests,
		Packages:            packages,
		Amounts:             amounts,
		PaymentStatus:       order.PaymentStatus(dto.PaymentStatus),
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
		SampleCollectedAt:   dto.SampleCollectedAt,
		ProcessingStartedAt: dto.ProcessingStartedAt,
		ReportReadyAt:       dto.ReportReadyAt,
		CompletedAt:         dto.CompletedAt,
		CancelledAt:         dto.CancelledAt,
		CancelReason:        dto.CancelReason,
	}

	if hc := dto.HomeCollection; hc != nil {
		var collectorID *kernel.UUID
		if hc.CollectorID != nil {
			cID, collectorErr := kernel.UUIDFromGoogle(*hc.CollectorID)
			if collectorErr != nil {
				return nil, collectorErr
			}
			collectorID = &cID
		}
		state.HomeCollection = &order.HomeCollectionState{
			ScheduledAt: hc.ScheduledAt,
			Address:     hc.Address,
			Status:      order.CollectionStatus(hc.Status),
			CollectorID: collectorID,
			AssignedAt:  hc.AssignedAt,
			EnRouteAt:   hc.EnRouteAt,
			CollectedAt: hc.CollectedAt,
			CancelledAt: hc.CancelledAt,
		}
	}
	if dto.Slot != nil {
		slot, slotErr := order.NewSlotDetail(dto.Slot.At, dto.Slot.Token)
		if slotErr != nil {
			return nil, slotErr
		}
		state.Slot = &slot
	}

	return order.RestoreOrder(state)
}

func testsToState(dtos []TestItemDTO) ([]order.TestItemState, error) {
	result := make([]order.TestItemState, 0, len(dtos))
	for _, t := range dtos {
		id, err := kernel.UUIDFromGoogle(t.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, order.TestItemState{
			ID:                id,
			CatalogTestID:     t.CatalogTestID,
			Name:              t.Name,
			Code:              t.Code,
			SampleCollected:   t.SampleCollected,
			SampleCollectedAt: t.SampleCollectedAt,
			Processing:        order.ProcessingState(t.Processing),
			StartedAt:         t.StartedAt,
			HeldAt:            t.HeldAt,
			CompletedAt:       t.CompletedAt,
			ProcessedBy:       t.ProcessedBy,
			Report:            order.ReportState(t.Report),
			ReportFile:        t.ReportFile,
			UploadedAt:        t.UploadedAt,
			UploadedBy:        t.UploadedBy,
			VerifiedAt:        t.VerifiedAt,
			VerifiedBy:        t.VerifiedBy,
			DeliveredAt:       t.DeliveredAt,
			Remarks:           t.Remarks,
		})
	}
	return result, nil
}
