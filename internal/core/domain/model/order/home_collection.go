package order

import (
	"errors"
	"strings"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// CollectionStatus is the state of the field visit of a HomeCollection order.
//
//	Scheduled ──> Assigned ──> EnRoute ──> Collected
//	    ▲             │           │
//	    └─────────────┴───────────┘   (release)
//
// Cancelled is reachable from every non-terminal status. Collected and Cancelled are terminal.
type CollectionStatus int

const (
	UnknownCollectionStatus CollectionStatus = iota
	CollectionScheduled
	CollectionAssigned
	CollectionEnRoute
	CollectionCollected
	CollectionCancelled
)

func getCollectionStatusStrings() map[CollectionStatus]string {
	return map[CollectionStatus]string{
		UnknownCollectionStatus: "Unknown",
		CollectionScheduled:     "Scheduled",
		CollectionAssigned:      "Assigned",
		CollectionEnRoute:       "EnRoute",
		CollectionCollected:     "Collected",
		CollectionCancelled:     "Cancelled",
	}
}

// CollectionStatusFromString parses the API representation of a collection status.
func CollectionStatusFromString(s string) (CollectionStatus, error) {
	for status, name := range getCollectionStatusStrings() {
		if status != UnknownCollectionStatus && name == s {
			return status, nil
		}
	}
	return UnknownCollectionStatus, errs.NewValueIsInvalidError("collection status " + s)
}

func (s CollectionStatus) String() string {
	if str, ok := getCollectionStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

func (s CollectionStatus) Validate() error {
	if s < CollectionScheduled || s > CollectionCancelled {
		return errs.NewValueIsOutOfRangeError("collection status", int(s), int(CollectionScheduled), int(CollectionCancelled))
	}
	return nil
}

func (s CollectionStatus) IsTerminal() bool {
	return s == CollectionCollected || s == CollectionCancelled
}

// HoldsCollector reports whether a collector attached in this status counts toward
// the collector's currentAssignments.
func (s CollectionStatus) HoldsCollector() bool {
	return s == CollectionAssigned || s == CollectionEnRoute
}

// HomeCollectionDetail is the field visit attached to a HomeCollection order.
type HomeCollectionDetail struct {
	scheduledAt time.Time
	address     string
	status      CollectionStatus
	collectorID *kernel.UUID
	assignedAt  *time.Time
	enRouteAt   *time.Time
	collectedAt *time.Time
	cancelledAt *time.Time
}

// HomeCollectionState is the persistable form of a HomeCollectionDetail.
type HomeCollectionState struct {
	ScheduledAt time.Time
	Address     string
	Status      CollectionStatus
	CollectorID *kernel.UUID
	AssignedAt  *time.Time
	EnRouteAt   *time.Time
	CollectedAt *time.Time
	CancelledAt *time.Time
}

// NewHomeCollectionDetail creates a Scheduled visit with no collector.
func NewHomeCollectionDetail(scheduledAt time.Time, address string) (*HomeCollectionDetail, error) {
	hc := &HomeCollectionDetail{
		scheduledAt: scheduledAt.UTC(),
		address:     strings.TrimSpace(address),
		status:      CollectionScheduled,
	}
	if err := hc.validate(); err != nil {
		return nil, err
	}
	return hc, nil
}

// RestoreHomeCollectionDetail rebuilds a visit from storage.
func RestoreHomeCollectionDetail(state HomeCollectionState) (*HomeCollectionDetail, error) {
	var collectorID *kernel.UUID
	if state.CollectorID != nil {
		id := *state.CollectorID
		collectorID = &id
	}
	hc := &HomeCollectionDetail{
		scheduledAt: state.ScheduledAt,
		address:     state.Address,
		status:      state.Status,
		collectorID: collectorID,
		assignedAt:  cloneTime(state.AssignedAt),
		enRouteAt:   cloneTime(state.EnRouteAt),
		collectedAt: cloneTime(state.CollectedAt),
		cancelledAt: cloneTime(state.CancelledAt),
	}
	if err := hc.validate(); err != nil {
		return nil, err
	}
	return hc, nil
}

func (hc *HomeCollectionDetail) validate() error {
	var errList []error
	if hc.scheduledAt.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("collection scheduled time"))
	}
	if hc.address == "" {
		errList = append(errList, errs.NewValueIsRequiredError("collection address"))
	}
	if err := hc.status.Validate(); err != nil {
		errList = append(errList, err)
	}
	if hc.status.HoldsCollector() && hc.collectorID == nil {
		errList = append(errList, errs.NewValueIsInvalidError("collection in "+hc.status.String()+" requires a collector"))
	}
	if hc.status == CollectionScheduled && hc.collectorID != nil {
		errList = append(errList, errs.NewValueIsInvalidError("scheduled collection cannot hold a collector"))
	}
	return errors.Join(errList...)
}

func (hc *HomeCollectionDetail) ScheduledAt() time.Time {
	return hc.scheduledAt
}

func (hc *HomeCollectionDetail) Address() string {
	return hc.address
}

func (hc *HomeCollectionDetail) Status() CollectionStatus {
	return hc.status
}

// CollectorID returns the attached collector, or nil when none is attached.
func (hc *HomeCollectionDetail) CollectorID() *kernel.UUID {
	if hc.collectorID == nil {
		return nil
	}
	id := *hc.collectorID
	return &id
}

func (hc *HomeCollectionDetail) AssignedAt() *time.Time { return cloneTime(hc.assignedAt) }
func (hc *HomeCollectionDetail) EnRouteAt() *time.Time { return cloneTime(hc.enRouteAt) }
func (hc *HomeCollectionDetail) CollectedAt() *time.Time { return cloneTime(hc.collectedAt) }
func (hc *HomeCollectionDetail) CancelledAt() *time.Time { return cloneTime(hc.cancelledAt) }

// ActiveCollector returns the collector whose counter this visit currently holds.
func (hc *HomeCollectionDetail) ActiveCollector() (kernel.UUID, bool) {
	if hc.collectorID == nil || !hc.status.HoldsCollector() {
		return kernel.UUID{}, false
	}
	return *hc.collectorID, true
}

// State returns a deep copy suitable for persistence.
func (hc *HomeCollectionDetail) State() HomeCollectionState {
	return HomeCollectionState{
		ScheduledAt: hc.scheduledAt,
		Address:     hc.address,
		Status:      hc.status,
		CollectorID: hc.CollectorID(),
		AssignedAt:  cloneTime(hc.assignedAt),
		EnRouteAt:   cloneTime(hc.enRouteAt),
		CollectedAt: cloneTime(hc.collectedAt),
		CancelledAt: cloneTime(hc.cancelledAt),
	}
}

func (hc *HomeCollectionDetail) assign(collectorID kernel.UUID, at time.Time) error {
	if hc.status != CollectionScheduled {
		return errs.NewInvalidTransitionError("collection", hc.status.String(), "Assign")
	}
	hc.status = CollectionAssigned
	hc.collectorID = &collectorID
	hc.assignedAt = &at
	return nil
}

// reassign moves the visit to another collector and returns the previous one, if any.
func (hc *HomeCollectionDetail) reassign(collectorID kernel.UUID, at time.Time) (*kernel.UUID, error) {
	if hc.status != CollectionScheduled && hc.status != CollectionAssigned {
		return nil, errs.NewInvalidTransitionError("collection", hc.status.String(), "Reassign")
	}
	if hc.collectorID != nil && hc.collectorID.IsEqual(collectorID) {
		return nil, errs.NewValueIsInvalidError("collector is already assigned to this collection")
	}
	previous := hc.collectorID
	hc.status = CollectionAssigned
	hc.collectorID = &collectorID
	hc.assignedAt = &at
	return previous, nil
}

// release detaches the collector and returns the visit to Scheduled.
func (hc *HomeCollectionDetail) release() (kernel.UUID, error) {
	if !hc.status.HoldsCollector() {
		return kernel.UUID{}, errs.NewInvalidTransitionError("collection", hc.status.String(), "Release")
	}
	released := *hc.collectorID
	hc.status = CollectionScheduled
	hc.collectorID = nil
	hc.assignedAt = nil
	hc.enRouteAt = nil
	return released, nil
}

// advance moves the visit forward one step. Only adjacent steps are allowed.
func (hc *HomeCollectionDetail) advance(target CollectionStatus, at time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if hc.status.IsTerminal() {
		return errs.NewTerminalStateError("collection", hc.status.String())
	}

	switch {
	case target == CollectionCancelled:
		hc.status = CollectionCancelled
		hc.cancelledAt = &at
		return nil
	case hc.status == CollectionScheduled && target == CollectionAssigned:
		if hc.collectorID == nil {
			return errs.NewInvalidTransitionErrorWithCause("collection", hc.status.String(), target.String(),
				errs.NewValueIsRequiredError("collector"))
		}
		hc.status = CollectionAssigned
		hc.assignedAt = &at
		return nil
	case hc.status == CollectionAssigned && target == CollectionEnRoute:
		hc.status = CollectionEnRoute
		hc.enRouteAt = &at
		return nil
	case hc.status == CollectionEnRoute && target == CollectionCollected:
		hc.status = CollectionCollected
		hc.collectedAt = &at
		return nil
	default:
		return errs.NewInvalidTransitionError("collection", hc.status.String(), target.String())
	}
}
