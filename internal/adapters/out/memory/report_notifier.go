package memory

import (
	"context"
	"sync"

	"labdesk/internal/core/ports"

	"github.com/rs/zerolog"
)

// ReportNotifier logs every report-ready notification and keeps it for inspection.
// It stands in for the kafka publisher when no brokers are configured.
type ReportNotifier struct {
	mu     sync.Mutex
	sent   []ports.ReportReadyNotification
	err    error
	logger zerolog.Logger
}

func NewReportNotifier(logger zerolog.Logger) *ReportNotifier {
	return &ReportNotifier{logger: logger.With().Str("component", "report_notifier").Logger()}
}

func (n *ReportNotifier) SendReportReady(_ context.Context, notification ports.ReportReadyNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	n.logger.Info().
		Str("order_id", notification.OrderID.String()).
		Str("order_number", notification.OrderNumber).
		Str("channel", string(notification.Channel)).
		Msg("report ready notification sent")
	return nil
}

// FailWith makes every following SendReportReady return err. A nil err restores delivery.
func (n *ReportNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Sent returns a copy of the notifications delivered so far.
func (n *ReportNotifier) Sent() []ports.ReportReadyNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.ReportReadyNotification(nil), n.sent...)
}
