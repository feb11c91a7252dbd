// Package redis issues order numbers from a per-year redis counter.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyRetention keeps a yearly counter around well past the end of its year.
const keyRetention = 400 * 24 * time.Hour

// counter is the subset of *goredis.Client the generator uses.
type counter interface {
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd
}

// OrderNumberGenerator implements ports.OrderNumberGenerator with INCR on
// "<prefix>:order-seq:<year>". INCR is atomic, so numbers are unique across every
// server sharing the redis instance.
type OrderNumberGenerator struct {
	client counter
	prefix string
	logger zerolog.Logger
}

// NewClient opens a client for addr (host:port).
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewOrderNumberGenerator(client counter, prefix string, logger zerolog.Logger) *OrderNumberGenerator {
	if prefix == "" {
		prefix = "labdesk"
	}
	return &OrderNumberGenerator{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "order_number_generator").Logger(),
	}
}

func (g *OrderNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	year := at.UTC().Year()
	key := fmt.Sprintf("%s:order-seq:%d", g.prefix, year)

	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment order sequence: %w", err)
	}
	if seq == 1 {
		// first number of the year; an expire failure only leaves the key around longer
		if err = g.client.Expire(ctx, key, keyRetention).Err(); err != nil {
			g.logger.Warn().
				Err(err).
				Str("key", key).
				Dur("retention", keyRetention).
				Msg("failed to set order sequence expiry")
		}
	}
	return fmt.Sprintf("ORD-%d-%04d", year, seq), nil
}
