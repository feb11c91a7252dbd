package services_test

import (
	"testing"
	"time"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
	"labdesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newCollector(t *testing.T, name string) *collector.Collector {
	t.Helper()
	c, err := collector.NewCollector(kernel.NewUUID(), name, "+91-900000000"+name[:1])
	require.NoError(t, err)
	return c
}

func newHomeOrder(t *testing.T) *order.Order {
	t.Helper()
	return newOrderWith(t, order.HomeCollection, kernel.Normal, "ORD-2026-0001")
}

func newOrderWith(t *testing.T, source order.Source, priority kernel.Priority, number string, codes ...string) *order.Order {
	t.Helper()
	if len(codes) == 0 {
		codes = []string{"CBC"}
	}
	tests := make([]*order.TestItem, 0, len(codes))
	for _, code := range codes {
		item, err := order.NewTestItem("CAT-"+code, code, code)
		require.NoError(t, err)
		tests = append(tests, item)
	}
	in := order.Intake{
		ID:         kernel.NewUUID(),
		Number:     number,
		PatientRef: "PAT-1",
		Source:     source,
		Priority:   priority,
		Tests:      tests,
		CreatedAt:  baseTime,
	}
	if source == order.HomeCollection {
		hc, err := order.NewHomeCollectionDetail(baseTime.Add(24*time.Hour), "12 Park Street")
		require.NoError(t, err)
		in.HomeCollection = hc
	}
	o, err := order.NewOrder(in)
	require.NoError(t, err)
	return o
}

func Test_CollectionDispatcher_Assign(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("increments the collector counter", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")

		require.NoError(t, d.Assign(o, c, baseTime))

		assert.Equal(t, order.CollectionAssigned, o.HomeCollection().Status())
		assert.Equal(t, 1, c.CurrentAssignments())
		active, held := o.ActiveCollector()
		require.True(t, held)
		assert.True(t, active.IsEqual(c.ID()))
	})

	t.Run("rejects an off-duty collector without touching counters", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		c.SetAvailability(false)

		err := d.Assign(o, c, baseTime)

		require.ErrorIs(t, err, collector.ErrCollectorUnavailable)
		assert.Equal(t, 0, c.CurrentAssignments())
		assert.Equal(t, order.CollectionScheduled, o.HomeCollection().Status())
	})

	t.Run("rejects a second assignment", func(t *testing.T) {
		o := newHomeOrder(t)
		first := newCollector(t, "Ravi")
		second := newCollector(t, "Sana")
		require.NoError(t, d.Assign(o, first, baseTime))

		err := d.Assign(o, second, baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, 0, second.CurrentAssignments())
		assert.Equal(t, 1, first.CurrentAssignments())
	})
}

func Test_CollectionDispatcher_Reassign(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("moves the counter from the old collector to the new one", func(t *testing.T) {
		o := newHomeOrder(t)
		oldC := newCollector(t, "Ravi")
		newC := newCollector(t, "Sana")
		require.NoError(t, d.Assign(o, oldC, baseTime))

		require.NoError(t, d.Reassign(o, oldC, newC, baseTime.Add(time.Minute)))

		assert.Equal(t, 0, oldC.CurrentAssignments())
		assert.True(t, oldC.IsAvailable())
		assert.Equal(t, 1, newC.CurrentAssignments())
		assert.True(t, o.HomeCollection().CollectorID().IsEqual(newC.ID()))
	})

	t.Run("from Scheduled behaves like assign", func(t *testing.T) {
		o := newHomeOrder(t)
		newC := newCollector(t, "Sana")

		require.NoError(t, d.Reassign(o, nil, newC, baseTime))

		assert.Equal(t, 1, newC.CurrentAssignments())
		assert.Equal(t, order.CollectionAssigned, o.HomeCollection().Status())
	})

	t.Run("rejects a previous collector that is not attached", func(t *testing.T) {
		o := newHomeOrder(t)
		attached := newCollector(t, "Ravi")
		stranger := newCollector(t, "Tara")
		newC := newCollector(t, "Sana")
		require.NoError(t, d.Assign(o, attached, baseTime))

		err := d.Reassign(o, stranger, newC, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, 1, attached.CurrentAssignments())
		assert.Equal(t, 0, newC.CurrentAssignments())
	})

	t.Run("rejects reassignment once en route", func(t *testing.T) {
		o := newHomeOrder(t)
		oldC := newCollector(t, "Ravi")
		newC := newCollector(t, "Sana")
		require.NoError(t, d.Assign(o, oldC, baseTime))
		require.NoError(t, d.Advance(o, oldC, order.CollectionEnRoute, baseTime))

		err := d.Reassign(o, oldC, newC, baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, 1, oldC.CurrentAssignments())
		assert.Equal(t, 0, newC.CurrentAssignments())
	})

	t.Run("rejects an unavailable new collector", func(t *testing.T) {
		o := newHomeOrder(t)
		oldC := newCollector(t, "Ravi")
		newC := newCollector(t, "Sana")
		newC.SetAvailability(false)
		require.NoError(t, d.Assign(o, oldC, baseTime))

		err := d.Reassign(o, oldC, newC, baseTime)

		require.ErrorIs(t, err, collector.ErrCollectorUnavailable)
		assert.Equal(t, 1, oldC.CurrentAssignments())
	})
}

func Test_CollectionDispatcher_Advance(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("collected completes the collector assignment and the order event", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))
		require.NoError(t, d.Advance(o, c, order.CollectionEnRoute, baseTime.Add(time.Minute)))

		require.NoError(t, d.Advance(o, c, order.CollectionCollected, baseTime.Add(2*time.Minute)))

		assert.Equal(t, 0, c.CurrentAssignments())
		assert.Equal(t, 1, c.TotalCollections())
		assert.Equal(t, order.SampleCollected, o.Status())
		for _, item := range o.AllTests() {
			assert.True(t, item.SampleCollected())
		}
	})

	t.Run("cancelled releases the collector", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))

		require.NoError(t, d.Advance(o, c, order.CollectionCancelled, baseTime))

		assert.Equal(t, 0, c.CurrentAssignments())
		assert.True(t, c.IsAvailable())
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("skipping a step leaves counters alone", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))

		err := d.Advance(o, c, order.CollectionCollected, baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, 1, c.CurrentAssignments())
		assert.Equal(t, 0, c.TotalCollections())
	})

	t.Run("advancing a scheduled visit to assigned needs a collector", func(t *testing.T) {
		o := newHomeOrder(t)

		err := d.Advance(o, nil, order.CollectionAssigned, baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("requires the held collector", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))

		err := d.Advance(o, nil, order.CollectionEnRoute, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, order.CollectionAssigned, o.HomeCollection().Status())
	})
}

func Test_CollectionDispatcher_Release(t *testing.T) {
	d := services.NewCollectionDispatcher()
	o := newHomeOrder(t)
	c := newCollector(t, "Ravi")
	require.NoError(t, d.Assign(o, c, baseTime))
	require.NoError(t, d.Advance(o, c, order.CollectionEnRoute, baseTime))

	require.NoError(t, d.Release(o, c, baseTime))

	assert.Equal(t, order.CollectionScheduled, o.HomeCollection().Status())
	assert.Nil(t, o.HomeCollection().CollectorID())
	assert.Equal(t, 0, c.CurrentAssignments())
	assert.True(t, c.IsAvailable())

	err := d.Release(o, nil, baseTime)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func Test_CollectionDispatcher_OffDutyCollectorAfterLastAssignment(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("release keeps the operator's choice", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))
		c.SetAvailability(false)

		require.NoError(t, d.Release(o, c, baseTime))

		assert.Equal(t, 0, c.CurrentAssignments())
		assert.False(t, c.IsAvailable())
	})

	t.Run("reassign keeps the operator's choice", func(t *testing.T) {
		o := newHomeOrder(t)
		oldC := newCollector(t, "Ravi")
		newC := newCollector(t, "Sana")
		require.NoError(t, d.Assign(o, oldC, baseTime))
		oldC.SetAvailability(false)

		require.NoError(t, d.Reassign(o, oldC, newC, baseTime))

		assert.Equal(t, 0, oldC.CurrentAssignments())
		assert.False(t, oldC.IsAvailable())
	})

	t.Run("cancelling the order puts the collector back on duty", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))
		c.SetAvailability(false)

		require.NoError(t, d.CancelOrder(o, c, "patient travelling", baseTime))

		assert.Equal(t, 0, c.CurrentAssignments())
		assert.True(t, c.IsAvailable())
	})

	t.Run("cancelling the visit puts the collector back on duty", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))
		c.SetAvailability(false)

		require.NoError(t, d.Advance(o, c, order.CollectionCancelled, baseTime))

		assert.True(t, c.IsAvailable())
	})
}

func Test_CollectionDispatcher_CancelOrder(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("releases the held collector", func(t *testing.T) {
		o := newHomeOrder(t)
		c := newCollector(t, "Ravi")
		require.NoError(t, d.Assign(o, c, baseTime))

		require.NoError(t, d.CancelOrder(o, c, "patient unavailable", baseTime.Add(time.Hour)))

		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, order.CollectionCancelled, o.HomeCollection().Status())
		assert.Equal(t, 0, c.CurrentAssignments())
		assert.True(t, c.IsAvailable())
	})

	t.Run("orders without a collector", func(t *testing.T) {
		o := newOrderWith(t, order.WalkIn, kernel.Normal, "ORD-2026-0002")

		require.NoError(t, d.CancelOrder(o, nil, "duplicate", baseTime))

		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("terminal order keeps the collector", func(t *testing.T) {
		o := newHomeOrder(t)
		require.NoError(t, d.CancelOrder(o, nil, "first", baseTime))

		err := d.CancelOrder(o, nil, "second", baseTime)

		require.ErrorIs(t, err, errs.ErrTerminalState)
	})
}

func Test_CollectionDispatcher_Dispatch(t *testing.T) {
	d := services.NewCollectionDispatcher()

	t.Run("picks the least loaded available collector", func(t *testing.T) {
		busy := newCollector(t, "Ravi")
		idle := newCollector(t, "Sana")
		off := newCollector(t, "Tara")
		off.SetAvailability(false)
		require.NoError(t, d.Assign(newHomeOrder(t), busy, baseTime))

		o := newHomeOrder(t)
		chosen, err := d.Dispatch(o, []*collector.Collector{busy, off, idle}, baseTime)

		require.NoError(t, err)
		assert.True(t, chosen.ID().IsEqual(idle.ID()))
		assert.Equal(t, 1, idle.CurrentAssignments())
	})

	t.Run("ties go to the first listed", func(t *testing.T) {
		first := newCollector(t, "Ravi")
		second := newCollector(t, "Sana")

		chosen, err := d.Dispatch(newHomeOrder(t), []*collector.Collector{first, second}, baseTime)

		require.NoError(t, err)
		assert.True(t, chosen.ID().IsEqual(first.ID()))
	})

	t.Run("nobody on duty", func(t *testing.T) {
		off := newCollector(t, "Ravi")
		off.SetAvailability(false)

		chosen, err := d.Dispatch(newHomeOrder(t), []*collector.Collector{off}, baseTime)

		require.ErrorIs(t, err, services.ErrNoAvailableCollector)
		assert.Nil(t, chosen)
	})
}
