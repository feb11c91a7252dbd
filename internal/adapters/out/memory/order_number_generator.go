package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// OrderNumberGenerator keeps one counter per calendar year. Numbers do not survive a
// restart; use the redis generator when orders are persisted.
type OrderNumberGenerator struct {
	mu       sync.Mutex
	counters map[int]int64
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{counters: make(map[int]int64)}
}

func (g *OrderNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	year := at.UTC().Year()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[year]++
	return fmt.Sprintf("ORD-%d-%04d", year, g.counters[year]), nil
}
