package notification

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
)

// Kind labels what a notification is about
type Kind string

const (
	KindBillDueReminder       Kind = "bill_due_reminder"
	KindUpcomingRecurring     Kind = "upcoming_recurring_payment"
	KindPaymentFailed         Kind = "payment_failed"
	KindPaymentErrorEscalated Kind = "payment_error_escalated"
)

// Notification is a message for a user about a billing event
type Notification struct {
	Kind     Kind
	UserID   string
	Title    string
	Body     string
	Metadata map[string]string
}

// Sender delivers notifications. Delivery channels live behind this
// seam; the engine only decides when a notification is warranted.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// LogSender writes notifications to the log. It is the default sender
// when no delivery channel is configured.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a sender that only logs
func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, n *Notification) error {
	s.logger.Infow("notification",
		"kind", n.Kind,
		"user_id", n.UserID,
		"title", n.Title,
		"body", n.Body,
	)
	return nil
}
