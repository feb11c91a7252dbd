// Package resilience wraps sony/gobreaker for calls to external sinks.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labdesk/internal/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds configuration for a circuit breaker.
type CircuitBreakerConfig struct {
	Name                  string
	MaxRequests           uint32        // requests allowed in half-open state
	Interval              time.Duration // period after which closed-state counts reset (0 = never)
	Timeout               time.Duration // open-state duration before half-open
	FailureThreshold      uint32        // consecutive failures that trip the breaker
	FailureRatioThreshold float64       // failure ratio that trips the breaker
	MinRequestsToTrip     uint32        // requests needed before the ratio is evaluated
}

// DefaultCircuitBreakerConfig returns the settings used for the notification sink.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:                  name,
		MaxRequests:           1,
		Interval:              time.Minute,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
		FailureRatioThreshold: 0.6,
		MinRequestsToTrip:     10,
	}
}

// CircuitBreaker wraps gobreaker with zerolog logging and a state gauge.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger zerolog.Logger
}

// NewCircuitBreaker creates a breaker. m may be nil.
func NewCircuitBreaker(config CircuitBreakerConfig, m *metrics.Metrics, logger zerolog.Logger) *CircuitBreaker {
	logger = logger.With().Str("component", "circuit_breaker").Str("breaker", config.Name).Logger()
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= config.FailureThreshold {
				return true
			}
			if counts.Requests >= config.MinRequestsToTrip {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= config.FailureRatioThreshold
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetCircuitBreakerState(name, int(to))
			logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	m.SetCircuitBreakerState(config.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		name:   config.Name,
		logger: logger,
	}
}

// Execute runs fn through the breaker. Rejected calls return an error wrapping
// ErrCircuitOpen and never reach fn.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn().Err(err).Msg("call rejected by circuit breaker")
		return fmt.Errorf("%w: %s", ErrCircuitOpen, c.name)
	}
	return err
}

// State returns the current state of the circuit breaker.
func (c *CircuitBreaker) State() gobreaker.State {
	return c.cb.State()
}

func (c *CircuitBreaker) Name() string {
	return c.name
}
