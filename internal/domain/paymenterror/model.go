package paymenterror

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// PaymentError records a payment failure for diagnosis and automatic
// retry. RetryCount never exceeds MaxRetries; retry delay grows
// exponentially and is capped.
type PaymentError struct {
	ID             string                 `db:"id" json:"id"`
	TransactionID  *string                `db:"transaction_id" json:"transaction_id,omitempty"`
	ErrorType      types.PaymentErrorType `db:"error_type" json:"error_type"`
	Severity       types.ErrorSeverity    `db:"severity" json:"severity"`
	Message        string                 `db:"message" json:"message"`
	ProviderCode   *types.PaymentProvider `db:"provider_code" json:"provider_code,omitempty"`
	RetryCount     int                    `db:"retry_count" json:"retry_count"`
	MaxRetries     int                    `db:"max_retries" json:"max_retries"`
	NextRetryAt    *time.Time             `db:"next_retry_at" json:"next_retry_at,omitempty"`
	ResolvedAt     *time.Time             `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNote *string                `db:"resolution_note" json:"resolution_note,omitempty"`
	types.BaseModel
}

func (e *PaymentError) TableName() string {
	return "payment_errors"
}

// IsResolved reports whether the error has been closed out
func (e *PaymentError) IsResolved() bool {
	return e.ResolvedAt != nil
}

// CanRetry reports whether another automatic retry is allowed
func (e *PaymentError) CanRetry() bool {
	return !e.IsResolved() && e.RetryCount < e.MaxRetries
}

func (e *PaymentError) Validate() error {
	if e.Message == "" {
		return ierr.NewError("message is required").
			WithHint("Payment error message is required").
			Mark(ierr.ErrValidation)
	}

	if err := e.ErrorType.Validate(); err != nil {
		return err
	}

	if err := e.Severity.Validate(); err != nil {
		return err
	}

	if e.MaxRetries < 0 || e.RetryCount < 0 || e.RetryCount > e.MaxRetries {
		return ierr.NewError("retry counters out of range").
			WithHint("Retry count must be between zero and max retries").
			WithReportableDetails(map[string]any{
				"retry_count": e.RetryCount,
				"max_retries": e.MaxRetries,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
