package services

import (
	"errors"
	"time"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/pkg/errs"
)

var (
	// ErrNoAvailableCollector is returned by Dispatch when every collector is off duty.
	ErrNoAvailableCollector = errors.New("no available collector")

	errCollectorMismatch = errs.NewValueIsInvalidError("collector does not match the order's active collector")
)

// CollectionDispatcher coordinates a HomeCollection order and the collectors attached
// to it. Every method mutates the order and the collector(s) together; the caller
// persists all of them in one transaction, which keeps each collector's
// currentAssignments equal to the number of collections holding it.
type CollectionDispatcher struct{}

func NewCollectionDispatcher() CollectionDispatcher {
	return CollectionDispatcher{}
}

// Assign attaches c to the Scheduled collection of o.
//
// Returns:
//   - ErrCollectorUnavailable when c is off duty; nothing is changed
//   - InvalidTransitionError when the collection is not Scheduled
func (d CollectionDispatcher) Assign(o *order.Order, c *collector.Collector, at time.Time) error {
	if err := errors.Join(o.Validate(), c.Validate()); err != nil {
		return err
	}
	if err := c.CheckAvailable(); err != nil {
		return err
	}
	if err := o.AssignCollector(c.ID(), at); err != nil {
		return err
	}
	return c.TakeAssignment()
}

// Reassign moves the collection of o from previous to next. previous must be the
// collector currently held by the collection, or nil when the collection is Scheduled.
func (d CollectionDispatcher) Reassign(o *order.Order, previous, next *collector.Collector, at time.Time) error {
	if err := errors.Join(o.Validate(), next.Validate()); err != nil {
		return err
	}
	if err := d.checkHeldBy(o, previous); err != nil {
		return err
	}
	if err := next.CheckAvailable(); err != nil {
		return err
	}

	released, err := o.ReassignCollector(next.ID(), at)
	if err != nil {
		return err
	}
	if released != nil {
		if err = previous.ReleaseAssignment(); err != nil {
			return err
		}
	}
	return next.TakeAssignment()
}

// Advance moves the collection of o one step. c is the collector currently held by
// the collection (nil when none). Reaching Collected completes the collector's
// assignment; cancelling the collection releases it.
func (d CollectionDispatcher) Advance(
	o *order.Order,
	c *collector.Collector,
	target order.CollectionStatus,
	at time.Time,
) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := d.checkHeldBy(o, c); err != nil {
		return err
	}
	_, held := o.ActiveCollector()

	if err := o.AdvanceCollection(target, at); err != nil {
		return err
	}
	if !held {
		return nil
	}

	switch target {
	case order.CollectionCollected:
		return c.CompleteCollection()
	case order.CollectionCancelled:
		return c.CancelAssignment()
	case order.UnknownCollectionStatus, order.CollectionScheduled, order.CollectionAssigned, order.CollectionEnRoute:
		return nil
	default:
		return nil
	}
}

// Release detaches c from the collection of o and returns it to Scheduled.
func (d CollectionDispatcher) Release(o *order.Order, c *collector.Collector, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if c == nil {
		_, err := o.ReleaseCollector(at)
		return err
	}
	if err := d.checkHeldBy(o, c); err != nil {
		return err
	}
	if _, err := o.ReleaseCollector(at); err != nil {
		return err
	}
	return c.ReleaseAssignment()
}

// CancelOrder cancels o and releases the collector held by its collection, if any.
func (d CollectionDispatcher) CancelOrder(o *order.Order, c *collector.Collector, reason string, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := d.checkHeldBy(o, c); err != nil {
		return err
	}
	_, held := o.ActiveCollector()

	if err := o.Cancel(reason, at); err != nil {
		return err
	}
	if held {
		return c.CancelAssignment()
	}
	return nil
}

// Dispatch assigns the least-loaded available collector to the Scheduled collection
// of o. Ties go to the collector listed first.
func (d CollectionDispatcher) Dispatch(o *order.Order, collectors []*collector.Collector, at time.Time) (*collector.Collector, error) {
	best, err := d.findLeastLoaded(collectors)
	if err != nil {
		return nil, err
	}
	if err = d.Assign(o, best, at); err != nil {
		return nil, err
	}
	return best, nil
}

func (d CollectionDispatcher) findLeastLoaded(collectors []*collector.Collector) (*collector.Collector, error) {
	var best *collector.Collector
	for _, c := range collectors {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.IsAvailable() {
			continue
		}
		if best == nil || c.CurrentAssignments() < best.CurrentAssignments() {
			best = c
		}
	}
	if best == nil {
		return nil, ErrNoAvailableCollector
	}
	return best, nil
}

// checkHeldBy verifies that c is exactly the collector the collection of o holds.
func (d CollectionDispatcher) checkHeldBy(o *order.Order, c *collector.Collector) error {
	active, held := o.ActiveCollector()
	switch {
	case !held && c == nil:
		return nil
	case !held:
		return errCollectorMismatch
	case c == nil:
		return errs.NewValueIsRequiredErrorWithCause("collector", errCollectorMismatch)
	case !c.ID().IsEqual(active):
		return errCollectorMismatch
	default:
		return c.Validate()
	}
}
