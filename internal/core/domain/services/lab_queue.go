package services

import (
	"cmp"
	"slices"
	"time"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

// LabQueueItem is one row of the lab worklist. It is derived from orders on every read
// and never stored.
type LabQueueItem struct {
	OrderID     kernel.UUID
	TestID      kernel.UUID
	OrderNumber string
	TestName    string
	TestCode    string
	Priority    kernel.Priority
	Status      order.ProcessingState
	ReceivedAt  time.Time
}

// BuildLabQueue returns every test of a non-terminal order whose sample has arrived
// and that still needs bench work (NotStarted, InProgress or OnHold).
//
// Ordering: Critical before Urgent before Normal, then earliest receivedAt, then order
// number. Tests of the same order keep their line-item order.
func BuildLabQueue(orders []*order.Order) []LabQueueItem {
	var items []LabQueueItem
	for _, o := range orders {
		if o == nil || o.Status().IsTerminal() {
			continue
		}
		for _, t := range o.AllTests() {
			if !isQueued(t) {
				continue
			}
			items = append(items, LabQueueItem{
				OrderID:     o.ID(),
				TestID:      t.ID(),
				OrderNumber: o.Number(),
				TestName:    t.Name(),
				TestCode:    t.Code(),
				Priority:    o.Priority(),
				Status:      t.ProcessingState(),
				ReceivedAt:  *t.SampleCollectedAt(),
			})
		}
	}

	slices.SortStableFunc(items, func(a, b LabQueueItem) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := a.ReceivedAt.Compare(b.ReceivedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderNumber, b.OrderNumber)
	})
	return items
}

func isQueued(t *order.TestItem) bool {
	if !t.SampleCollected() || t.SampleCollectedAt() == nil {
		return false
	}
	switch t.ProcessingState() {
	case order.TestNotStarted, order.TestInProgress, order.TestOnHold:
		return true
	case order.UnknownProcessingState, order.TestCompleted, order.TestCancelled:
		return false
	default:
		return false
	}
}
