package dto

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// CreateBillRequest raises a bill against a resident
type CreateBillRequest struct {
	ClusterID   string          `json:"cluster_id" binding:"required"`
	UserID      string          `json:"user_id" binding:"required"`
	Type        types.BillType  `json:"type" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	// Draft keeps the bill out of circulation until Issue is called
	Draft bool `json:"draft"`
}

func (r *CreateBillRequest) Validate() error {
	if r.ClusterID == "" || r.UserID == "" {
		return ierr.NewError("cluster id and user id are required").
			WithHint("Cluster ID and User ID are required").
			Mark(ierr.ErrValidation)
	}
	if r.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Bill title is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.Type.Validate(); err != nil {
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
	if r.DueDate.IsZero() {
		return ierr.NewError("due date is required").
			WithHint("Due date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToBill builds the domain bill
func (r *CreateBillRequest) ToBill(ctx context.Context) *bill.Bill {
	currency := r.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	status := types.BillStatusPending
	if r.Draft {
		status = types.BillStatusDraft
	}
	return &bill.Bill{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILL),
		BillNumber:  types.GenerateBillNumber(),
		ClusterID:   r.ClusterID,
		UserID:      r.UserID,
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		PaidAmount:  decimal.Zero,
		Currency:    currency,
		BillStatus:  status,
		DueDate:     r.DueDate,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// PayBillRequest applies a wallet payment to a bill
type PayBillRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
}

func (r *PayBillRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DisputeBillRequest opens a dispute on a bill
type DisputeBillRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (r *DisputeBillRequest) Validate() error {
	if r.Reason == "" {
		return ierr.NewError("dispute reason is required").
			WithHint("Dispute reason is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillSummary aggregates a cluster's bills by status
type BillSummary struct {
	ClusterID        string                         `json:"cluster_id"`
	TotalBilled      decimal.Decimal                `json:"total_billed"`
	TotalPaid        decimal.Decimal                `json:"total_paid"`
	TotalOutstanding decimal.Decimal                `json:"total_outstanding"`
	CountByStatus    map[types.BillStatus]int       `json:"count_by_status"`
	AmountByStatus   map[types.BillStatus]decimal.Decimal `json:"amount_by_status"`
}

// BatchResult reports a batch job run with per-record isolation
type BatchResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
