// Package memory provides in-process adapters: a versioned store with a unit of work
// that stages writes and checks versions at commit, a yearly order number sequence and
// a recording report notifier. They back the server when no database is configured
// and serve as the fixture for application-level tests.
package memory

import (
	"sync"

	"labdesk/internal/core/domain/model/collector"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

// Store holds the committed state of every aggregate. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	orders     map[kernel.UUID]order.State
	collectors map[kernel.UUID]collectorRecord
}

type collectorRecord struct {
	id                 kernel.UUID
	name               string
	mobile             string
	isAvailable        bool
	currentAssignments int
	totalCollections   int
	version            int64
}

func NewStore() *Store {
	return &Store{
		orders:     make(map[kernel.UUID]order.State),
		collectors: make(map[kernel.UUID]collectorRecord),
	}
}

func recordOf(c *collector.Collector) collectorRecord {
	return collectorRecord{
		id:                 c.ID(),
		name:               c.Name(),
		mobile:             c.Mobile(),
		isAvailable:        c.IsAvailable(),
		currentAssignments: c.CurrentAssignments(),
		totalCollections:   c.TotalCollections(),
		version:            c.Version(),
	}
}

func (r collectorRecord) restore() (*collector.Collector, error) {
	return collector.RestoreCollector(
		r.id, r.name, r.mobile, r.isAvailable, r.currentAssignments, r.totalCollections, r.version,
	)
}

// snapshot copies the committed maps so callers can merge staged writes without
// holding the lock.
func (s *Store) snapshot() (map[kernel.UUID]order.State, map[kernel.UUID]collectorRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make(map[kernel.UUID]order.State, len(s.orders))
	for id, st := range s.orders {
		orders[id] = st
	}
	collectors := make(map[kernel.UUID]collectorRecord, len(s.collectors))
	for id, rec := range s.collectors {
		collectors[id] = rec
	}
	return orders, collectors
}
