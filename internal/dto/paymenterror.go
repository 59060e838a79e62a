package dto

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// RecordPaymentErrorRequest logs a payment failure. ErrorType is
// optional; when absent the message is categorized by keyword.
type RecordPaymentErrorRequest struct {
	TransactionID *string                 `json:"transaction_id,omitempty"`
	Message       string                  `json:"message" binding:"required"`
	ErrorType     *types.PaymentErrorType `json:"error_type,omitempty"`
	ProviderCode  *types.PaymentProvider  `json:"provider_code,omitempty"`
}

func (r *RecordPaymentErrorRequest) Validate() error {
	if r.Message == "" {
		return ierr.NewError("message is required").
			WithHint("Error message is required").
			Mark(ierr.ErrValidation)
	}
	if r.ErrorType != nil {
		if err := r.ErrorType.Validate(); err != nil {
			return err
		}
	}
	if r.ProviderCode != nil {
		if err := r.ProviderCode.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RecoveryOption is a suggested next step for a payment error
type RecoveryOption struct {
	Action      string `json:"action"`
	Description string `json:"description"`
}

// ResolvePaymentErrorRequest closes out a payment error
type ResolvePaymentErrorRequest struct {
	Note string `json:"note"`
}
