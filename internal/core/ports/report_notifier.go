package ports

import (
	"context"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
)

// ReportReadyNotification is published once an order's reports are released.
type ReportReadyNotification struct {
	OrderID     kernel.UUID
	OrderNumber string
	PatientRef  string
	Channel     order.NotificationChannel
}

// ReportNotifier is the outbound sink for report-ready notifications. Delivery is
// fire-and-forget from the caller's point of view: the order is already Completed when
// SendReportReady is called and a failure never rolls it back.
type ReportNotifier interface {
	SendReportReady(ctx context.Context, n ReportReadyNotification) error
}
