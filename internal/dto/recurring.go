package dto

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// CreateRecurringPaymentRequest sets up a payment schedule
type CreateRecurringPaymentRequest struct {
	WalletID          string                 `json:"wallet_id" binding:"required"`
	ClusterID         string                 `json:"cluster_id" binding:"required"`
	Title             string                 `json:"title" binding:"required"`
	Description       string                 `json:"description"`
	Amount            decimal.Decimal        `json:"amount" binding:"required"`
	Currency          string                 `json:"currency"`
	Frequency         types.PaymentFrequency `json:"frequency" binding:"required"`
	StartDate         time.Time              `json:"start_date" binding:"required"`
	EndDate           *time.Time             `json:"end_date,omitempty"`
	MaxFailedAttempts int                    `json:"max_failed_attempts"`
}

func (r *CreateRecurringPaymentRequest) Validate() error {
	if r.WalletID == "" {
		return ierr.NewError("wallet id is required").
			WithHint("Wallet ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Title is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.StartDate.IsZero() {
		return ierr.NewError("start date is required").
			WithHint("Start date is required").
			Mark(ierr.ErrValidation)
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return ierr.NewError("end date before start date").
			WithHint("End date must not be before the start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToRecurringPayment builds the domain schedule
func (r *CreateRecurringPaymentRequest) ToRecurringPayment(ctx context.Context) *recurringpayment.RecurringPayment {
	currency := r.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	maxAttempts := r.MaxFailedAttempts
	if maxAttempts <= 0 {
		maxAttempts = types.DefaultMaxFailedAttempts
	}
	return &recurringpayment.RecurringPayment{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING_PAYMENT),
		WalletID:          r.WalletID,
		ClusterID:         r.ClusterID,
		Title:             r.Title,
		Description:       r.Description,
		Amount:            r.Amount,
		Currency:          currency,
		Frequency:         r.Frequency,
		RPStatus:          types.RecurringPaymentStatusActive,
		NextPaymentDate:   r.StartDate,
		EndDate:           r.EndDate,
		FailedAttempts:    0,
		MaxFailedAttempts: maxAttempts,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// ProcessDueResult reports one scheduler run
type ProcessDueResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Paused    int `json:"paused"`
	Expired   int `json:"expired"`
}
