package ports

import (
	"context"
	"time"
)

// OrderNumberGenerator issues human-readable order numbers of the form ORD-YYYY-NNNN.
// Sequences restart every calendar year and never repeat within a year.
type OrderNumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}
