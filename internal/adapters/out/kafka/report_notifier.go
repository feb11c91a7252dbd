// Package kafka publishes report-ready notifications to a kafka topic. A downstream
// messaging service turns them into SMS, e-mail or WhatsApp messages.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"labdesk/internal/core/ports"
	"labdesk/internal/pkg/resilience"

	"github.com/segmentio/kafka-go"
)

// EventTypeReportReady is carried in the ce-type header of every message.
const EventTypeReportReady = "labdesk.order.report-ready.v1"

// Config holds the producer settings.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	RequiredAcks int
}

// messageWriter is the subset of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReportReadyEvent is the message payload.
type ReportReadyEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	PatientRef  string    `json:"patientRef"`
	Channel     string    `json:"channel"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ReportNotifier implements ports.ReportNotifier on top of kafka-go. Every write goes
// through a circuit breaker so a broker outage fails fast instead of stalling the
// request that completed the order.
type ReportNotifier struct {
	writer  messageWriter
	breaker *resilience.CircuitBreaker
	clock   func() time.Time
}

// NewWriter builds the synchronous kafka writer for config.
func NewWriter(config Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		Async:        false,
	}
}

// NewReportNotifier creates a notifier. clock may be nil.
func NewReportNotifier(writer messageWriter, breaker *resilience.CircuitBreaker, clock func() time.Time) *ReportNotifier {
	if clock == nil {
		clock = time.Now
	}
	return &ReportNotifier{writer: writer, breaker: breaker, clock: clock}
}

// SendReportReady publishes one message keyed by order id, so every message of an
// order lands on the same partition.
func (n *ReportNotifier) SendReportReady(ctx context.Context, notification ports.ReportReadyNotification) error {
	now := n.clock().UTC()
	payload, err := json.Marshal(ReportReadyEvent{
		OrderID:     notification.OrderID.String(),
		OrderNumber: notification.OrderNumber,
		PatientRef:  notification.PatientRef,
		Channel:     string(notification.Channel),
		OccurredAt:  now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal report ready event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(notification.OrderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "ce-type", Value: []byte(EventTypeReportReady)},
			{Key: "ce-time", Value: []byte(now.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: now,
	}

	err = n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to publish report ready for order %s: %w", notification.OrderNumber, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *ReportNotifier) Close() error {
	return n.writer.Close()
}
