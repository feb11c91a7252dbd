package order_test

import (
	"testing"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTest(t *testing.T, code string) *order.TestItem {
	t.Helper()
	item, err := order.NewTestItem("CAT-"+code, code+" panel", code)
	require.NoError(t, err)
	return item
}

func newIntake(t *testing.T, source order.Source, tests ...*order.TestItem) order.Intake {
	t.Helper()
	if len(tests) == 0 {
		tests = []*order.TestItem{newTest(t, "CBC")}
	}
	in := order.Intake{
		ID:         kernel.NewUUID(),
		Number:     "ORD-2026-0001",
		PatientRef: "PAT-1",
		Source:     source,
		Priority:   kernel.Normal,
		Tests:      tests,
		CreatedAt:  baseTime,
	}
	switch source {
	case order.HomeCollection:
		hc, err := order.NewHomeCollectionDetail(baseTime.Add(24*time.Hour), "12 Park Street")
		require.NoError(t, err)
		in.HomeCollection = hc
	case order.SlotBooking:
		slot, err := order.NewSlotDetail(baseTime.Add(2*time.Hour), 7)
		require.NoError(t, err)
		in.Slot = &slot
	case order.UnknownSource, order.WalkIn, order.OnlineTestBooking, order.OnlinePackageBooking:
	}
	return in
}

func newOrder(t *testing.T, source order.Source, tests ...*order.TestItem) *order.Order {
	t.Helper()
	o, err := order.NewOrder(newIntake(t, source, tests...))
	require.NoError(t, err)
	return o
}

// collectedHomeOrder returns a HomeCollection order whose samples have been collected.
func collectedHomeOrder(t *testing.T, tests ...*order.TestItem) *order.Order {
	t.Helper()
	o := newOrder(t, order.HomeCollection, tests...)
	require.NoError(t, o.AssignCollector(kernel.NewUUID(), baseTime))
	require.NoError(t, o.AdvanceCollection(order.CollectionEnRoute, baseTime.Add(time.Minute)))
	require.NoError(t, o.AdvanceCollection(order.CollectionCollected, baseTime.Add(2*time.Minute)))
	return o
}

// reportReadyOrder returns a WalkIn order with every test completed.
func reportReadyOrder(t *testing.T, tests ...*order.TestItem) *order.Order {
	t.Helper()
	o := newOrder(t, order.WalkIn, tests...)
	require.NoError(t, o.RecordSampleCollection(nil, baseTime))
	for _, item := range o.AllTests() {
		require.NoError(t, o.StartTest(item.ID(), "tech", baseTime.Add(time.Minute)))
		require.NoError(t, o.CompleteTest(item.ID(), "", "tech", baseTime.Add(2*time.Minute)))
	}
	require.Equal(t, order.ReportReady, o.Status())
	return o
}
