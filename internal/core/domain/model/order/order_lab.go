package order

import (
	"errors"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// RecordSampleCollection marks samples as received at the lab counter for orders that
// do not go through a home collection. An empty testIDs marks every test.
//
// The order status does not change: only HomeCollection orders have a SampleCollected
// status, and their samples are recorded by AdvanceCollection.
func (o *Order) RecordSampleCollection(testIDs []kernel.UUID, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	if o.source == HomeCollection {
		return errs.NewInvalidTransitionErrorWithCause(
			o.source.String()+" order", o.status.String(), "RecordSampleCollection",
			errors.New("home collection samples are recorded when the collection reaches Collected"),
		)
	}

	targets := o.AllTests()
	if len(testIDs) > 0 {
		targets = make([]*TestItem, 0, len(testIDs))
		for _, id := range testIDs {
			t, err := o.Test(id)
			if err != nil {
				return err
			}
			targets = append(targets, t)
		}
	}

	for _, t := range targets {
		t.markSampleCollected(at)
	}
	o.touch(at)
	return nil
}

// StartTest moves one test to InProgress. The first started test moves the order to
// Processing.
//
// Returns:
//   - ErrAlreadyInProgress unless the test is NotStarted
//   - ErrSampleNotCollected when the sample has not arrived
//   - TerminalStateError for Completed or Cancelled orders
//   - InvalidTransitionError if the engine rejects ProcessingStarted
func (o *Order) StartTest(testID kernel.UUID, by string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.checkStart(); err != nil {
		return err
	}

	next := o.status
	if o.status != Processing {
		if next, err = o.resolve(ProcessingStarted); err != nil {
			return err
		}
	}

	t.start(by, at)
	if next != o.status {
		o.moveTo(next, at)
		return nil
	}
	o.touch(at)
	return nil
}

// CompleteTest moves one test from InProgress to Completed. Completing the last
// outstanding test (direct or package-nested) moves the order to ReportReady.
func (o *Order) CompleteTest(testID kernel.UUID, remarks, by string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.checkComplete(); err != nil {
		return err
	}

	next := o.status
	if o.remainingAfter(t) == 0 {
		if next, err = o.resolve(AllTestsCompleted); err != nil {
			return err
		}
	}

	t.complete(remarks, by, at)
	if next != o.status {
		o.moveTo(next, at)
		return nil
	}
	o.touch(at)
	return nil
}

// HoldTest parks an InProgress test, for example while a sample is re-drawn.
func (o *Order) HoldTest(testID kernel.UUID, remarks string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.hold(remarks, at); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// ResumeTest returns an OnHold test to InProgress.
func (o *Order) ResumeTest(testID kernel.UUID, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.resume(); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// remainingAfter counts tests other than except that are not yet Completed.
func (o *Order) remainingAfter(except *TestItem) int {
	remaining := 0
	for _, t := range o.AllTests() {
		if t == except {
			continue
		}
		if t.processing != TestCompleted {
			remaining++
		}
	}
	return remaining
}
