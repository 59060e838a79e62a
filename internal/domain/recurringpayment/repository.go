package recurringpayment

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// Repository defines the interface for recurring payment persistence operations
type Repository interface {
	Create(ctx context.Context, r *RecurringPayment) error
	Get(ctx context.Context, id string) (*RecurringPayment, error)
	Update(ctx context.Context, r *RecurringPayment) error
	List(ctx context.Context, filter *types.RecurringPaymentFilter) ([]*RecurringPayment, error)
	// ListDue returns active schedules whose next payment date is at
	// or before the given time.
	ListDue(ctx context.Context, now time.Time) ([]*RecurringPayment, error)
	// ListDueBetween returns active schedules firing inside the
	// window, used for upcoming payment reminders.
	ListDueBetween(ctx context.Context, start, end time.Time) ([]*RecurringPayment, error)
}
