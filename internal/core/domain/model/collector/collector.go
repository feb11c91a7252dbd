package collector

import (
	"errors"
	"fmt"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

// Domain errors for collector operations.
var (
	// ErrNameIsRequired is returned when attempting to create a collector without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrMobileIsRequired is returned when attempting to create a collector without a mobile number.
	ErrMobileIsRequired = errs.NewValueIsRequiredError("mobile")
	// ErrCollectorIsNotConstructed is returned when using an improperly initialized Collector.
	ErrCollectorIsNotConstructed = errors.New("Collector must be created via NewCollector constructor")
	// ErrCollectorUnavailable is returned when assigning work to a collector who is off duty.
	ErrCollectorUnavailable = errors.New("collector unavailable")
)

// Collector is a field phlebotomist who visits patients for home collections.
// It is an aggregate root with its own version, written in the same transaction as the
// order whose collection it serves.
//
// Business rules:
//   - Collector must have a valid UUID, non-empty name and mobile number
//   - currentAssignments never goes below zero
//   - currentAssignments equals the number of orders whose collection holds this
//     collector in Assigned or EnRoute
//   - Work is refused while isAvailable is false; there is no hard cap on the counter
//
// Example usage:
//
//	c, err := collector.NewCollector(kernel.NewUUID(), "Ravi Kumar", "+91-98450-00000")
//	if err != nil {
//	    // Handle construction error
//	}
//	err = c.TakeAssignment()
type Collector struct {
	// id uniquely identifies the collector
	id kernel.UUID
	// name is the human-readable name of the collector
	name string
	// mobile is the phone number the desk calls the collector on
	mobile string
	// isAvailable is the on-duty flag controlled by operators
	isAvailable bool
	// currentAssignments counts active (Assigned or EnRoute) collections
	currentAssignments int
	// totalCollections counts collections completed over the collector's lifetime
	totalCollections int
	// version is the optimistic concurrency token
	version int64
	// guard ensures the collector was properly constructed
	guard guard.ConstructorGuard
}

// NewCollector creates an available collector with no assignments at version 1.
//
// Parameters:
//   - id: Unique identifier for the collector (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - mobile: Contact number (must be non-empty)
//
// Returns:
//   - *Collector: Successfully created collector
//   - error: Joined validation errors
func NewCollector(id kernel.UUID, name, mobile string) (*Collector, error) {
	c := &Collector{
		id:          id,
		name:        strings.TrimSpace(name),
		mobile:      strings.TrimSpace(mobile),
		isAvailable: true,
		version:     1,
		guard:       guard.NewConstructorGuard(),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// RestoreCollector rebuilds a collector from storage. Used by repositories only.
func RestoreCollector(
	id kernel.UUID,
	name, mobile string,
	isAvailable bool,
	currentAssignments, totalCollections int,
	version int64,
) (*Collector, error) {
	c := &Collector{
		id:                 id,
		name:               name,
		mobile:             mobile,
		isAvailable:        isAvailable,
		currentAssignments: currentAssignments,
		totalCollections:   totalCollections,
		version:            version,
		guard:              guard.NewConstructorGuard(),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collector) validate() error {
	var errList []error
	if err := c.id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if c.name == "" {
		errList = append(errList, ErrNameIsRequired)
	}
	if c.mobile == "" {
		errList = append(errList, ErrMobileIsRequired)
	}
	if c.currentAssignments < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("current assignments",
			fmt.Errorf("%d is negative", c.currentAssignments)))
	}
	if c.totalCollections < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("total collections",
			fmt.Errorf("%d is negative", c.totalCollections)))
	}
	if c.version < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is less than 1", c.version)))
	}
	return errors.Join(errList...)
}

// Validate ensures the Collector was created via NewCollector or RestoreCollector.
func (c *Collector) Validate() error {
	if c == nil {
		return ErrCollectorIsNotConstructed
	}
	return c.guard.Validate(ErrCollectorIsNotConstructed)
}

func (c *Collector) ID() kernel.UUID {
	return c.id
}

func (c *Collector) Name() string {
	return c.name
}

func (c *Collector) Mobile() string {
	return c.mobile
}

func (c *Collector) IsAvailable() bool {
	return c.isAvailable
}

func (c *Collector) CurrentAssignments() int {
	return c.currentAssignments
}

func (c *Collector) TotalCollections() int {
	return c.totalCollections
}

func (c *Collector) Version() int64 {
	return c.version
}

// IncrementVersion is called by repositories after a successful compare-and-commit write.
func (c *Collector) IncrementVersion() {
	c.version++
}

// CheckAvailable returns ErrCollectorUnavailable while the collector is off duty.
func (c *Collector) CheckAvailable() error {
	if !c.isAvailable {
		return fmt.Errorf("%w: %s", ErrCollectorUnavailable, c.name)
	}
	return nil
}

// TakeAssignment records a new active collection.
//
// Returns:
//   - ErrCollectorUnavailable when the collector is off duty (the counter is unchanged)
func (c *Collector) TakeAssignment() error {
	if err := c.CheckAvailable(); err != nil {
		return err
	}
	c.currentAssignments++
	return nil
}

// ReleaseAssignment gives back an active collection that an operator detached or moved
// to another collector. Availability is left to the operator.
func (c *Collector) ReleaseAssignment() error {
	return c.decrement()
}

// CancelAssignment gives back an active collection whose visit or order was cancelled.
// A collector whose counter drops to zero this way is back on duty.
func (c *Collector) CancelAssignment() error {
	if err := c.decrement(); err != nil {
		return err
	}
	if c.currentAssignments == 0 {
		c.isAvailable = true
	}
	return nil
}

// CompleteCollection gives back an active collection that reached Collected and
// counts it toward totalCollections.
func (c *Collector) CompleteCollection() error {
	if err := c.decrement(); err != nil {
		return err
	}
	c.totalCollections++
	return nil
}

// SetAvailability is the operator's on/off duty switch.
func (c *Collector) SetAvailability(available bool) {
	c.isAvailable = available
}

func (c *Collector) decrement() error {
	if c.currentAssignments == 0 {
		return errs.NewValueIsOutOfRangeError("current assignments", -1, 0, "unbounded")
	}
	c.currentAssignments--
	return nil
}
