package dto

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// ManualCreditRequest tops up a cluster treasury outside the bill flow
type ManualCreditRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

func (r *ManualCreditRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Credit amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransferOutRequest withdraws treasury funds to a bank account
type TransferOutRequest struct {
	Amount        decimal.Decimal        `json:"amount" binding:"required"`
	AccountNumber string                 `json:"account_number" binding:"required"`
	BankCode      string                 `json:"bank_code" binding:"required"`
	AccountName   string                 `json:"account_name"`
	Narration     string                 `json:"narration"`
	Provider      *types.PaymentProvider `json:"provider,omitempty"`
}

func (r *TransferOutRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Transfer amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.AccountNumber == "" || r.BankCode == "" {
		return ierr.NewError("account number and bank code are required").
			WithHint("Account number and bank code are required").
			Mark(ierr.ErrValidation)
	}
	if r.Provider != nil {
		if err := r.Provider.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DailyRevenue is one day's bill payment income
type DailyRevenue struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// RevenueSummary aggregates treasury income over a window
type RevenueSummary struct {
	ClusterID string          `json:"cluster_id"`
	Days      int             `json:"days"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Daily     []DailyRevenue  `json:"daily"`
}
