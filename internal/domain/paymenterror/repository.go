package paymenterror

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// Repository defines the interface for payment error persistence operations
type Repository interface {
	Create(ctx context.Context, e *PaymentError) error
	Get(ctx context.Context, id string) (*PaymentError, error)
	Update(ctx context.Context, e *PaymentError) error
	List(ctx context.Context, filter *types.PaymentErrorFilter) ([]*PaymentError, error)
	// ListDueRetries returns unresolved errors whose next retry time
	// is at or before the given time.
	ListDueRetries(ctx context.Context, now time.Time) ([]*PaymentError, error)
}
