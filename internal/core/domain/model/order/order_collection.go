package order

import (
	"errors"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

var errNoHomeCollection = errors.New("order has no home collection")

func (o *Order) visit(via string) (*HomeCollectionDetail, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	if o.homeCollection == nil {
		return nil, errs.NewInvalidTransitionErrorWithCause(o.source.String()+" order", o.status.String(), via, errNoHomeCollection)
	}
	return o.homeCollection, nil
}

// ActiveCollector returns the collector whose assignment counter this order holds.
func (o *Order) ActiveCollector() (kernel.UUID, bool) {
	if o.homeCollection == nil {
		return kernel.UUID{}, false
	}
	return o.homeCollection.ActiveCollector()
}

// AssignCollector attaches a collector to a Scheduled home collection and moves it to
// Assigned. Collector availability and counters are handled by the caller together
// with this call in one transaction.
func (o *Order) AssignCollector(collectorID kernel.UUID, at time.Time) error {
	hc, err := o.visit("AssignCollector")
	if err != nil {
		return err
	}
	if err = collectorID.Validate(); err != nil {
		return err
	}
	if err = hc.assign(collectorID, at); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// ReassignCollector swaps the collector while the collection is Scheduled or Assigned.
//
// Returns:
//   - the previously attached collector, or nil if there was none
//   - InvalidTransitionError once the collector is EnRoute or later
func (o *Order) ReassignCollector(collectorID kernel.UUID, at time.Time) (*kernel.UUID, error) {
	hc, err := o.visit("ReassignCollector")
	if err != nil {
		return nil, err
	}
	if err = collectorID.Validate(); err != nil {
		return nil, err
	}
	previous, err := hc.reassign(collectorID, at)
	if err != nil {
		return nil, err
	}
	o.touch(at)
	return previous, nil
}

// ReleaseCollector detaches the collector of an Assigned or EnRoute collection and
// returns the collection to Scheduled.
func (o *Order) ReleaseCollector(at time.Time) (kernel.UUID, error) {
	hc, err := o.visit("ReleaseCollector")
	if err != nil {
		return kernel.UUID{}, err
	}
	released, err := hc.release()
	if err != nil {
		return kernel.UUID{}, err
	}
	o.touch(at)
	return released, nil
}

// AdvanceCollection moves the home collection one step along
// Scheduled → Assigned → EnRoute → Collected, or to Cancelled.
//
// Reaching Collected marks every test's sample as collected and fires SamplesCollected,
// which moves the order to SampleCollected. Cancelling the collection leaves the order
// status unchanged; cancelling the order is a separate operation.
func (o *Order) AdvanceCollection(target CollectionStatus, at time.Time) error {
	hc, err := o.visit("AdvanceCollection")
	if err != nil {
		return err
	}

	dryRun := *hc
	if err = dryRun.advance(target, at); err != nil {
		return err
	}

	next := o.status
	if target == CollectionCollected {
		if next, err = o.resolve(SamplesCollected); err != nil {
			return err
		}
	}

	if err = hc.advance(target, at); err != nil {
		return err
	}
	if target == CollectionCollected {
		for _, t := range o.AllTests() {
			t.markSampleCollected(at)
		}
	}
	if next != o.status {
		o.moveTo(next, at)
		return nil
	}
	o.touch(at)
	return nil
}
