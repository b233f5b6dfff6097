// Package notification turns domain events into client-facing messages
// and hands them to a Notifier.
package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind identifies the template a notification was built from
type Kind string

const (
	KindReceiptApproved      Kind = "RECEIPT_APPROVED"
	KindSaleCompleted        Kind = "SALE_COMPLETED"
	KindCancellationApproved Kind = "CANCELLATION_APPROVED"
	KindRefundRecorded       Kind = "REFUND_RECORDED"
	KindInstallmentReminder  Kind = "INSTALLMENT_REMINDER"
)

// Notification is one message to a client
type Notification struct {
	Kind       Kind
	EventID    uuid.UUID
	ClientID   uuid.UUID
	ClientName string
	Phone      string
	Email      string
	Message    string
}

// Notifier delivers notifications, e.g. by SMS or email
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LoggingNotifier writes notifications to the log instead of delivering them.
// It is the default until an SMS gateway is configured.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

// Send logs the notification
func (n *LoggingNotifier) Send(_ context.Context, msg Notification) error {
	n.logger.Info("Client notification",
		zap.String("kind", string(msg.Kind)),
		zap.String("event_id", msg.EventID.String()),
		zap.String("client_id", msg.ClientID.String()),
		zap.String("client_name", msg.ClientName),
		zap.String("phone", msg.Phone),
		zap.String("message", msg.Message),
	)
	return nil
}

var _ Notifier = (*LoggingNotifier)(nil)
