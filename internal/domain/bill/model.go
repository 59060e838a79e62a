package bill

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// Bill is a charge raised by a cluster against a resident.
// 0 <= PaidAmount <= Amount always; the bill flips to paid exactly
// when PaidAmount reaches Amount.
type Bill struct {
	ID                 string           `db:"id" json:"id"`
	BillNumber         string           `db:"bill_number" json:"bill_number"`
	ClusterID          string           `db:"cluster_id" json:"cluster_id"`
	UserID             string           `db:"user_id" json:"user_id"`
	Type               types.BillType   `db:"type" json:"type"`
	Title              string           `db:"title" json:"title"`
	Description        string           `db:"description" json:"description"`
	Amount             decimal.Decimal  `db:"amount" json:"amount"`
	PaidAmount         decimal.Decimal  `db:"paid_amount" json:"paid_amount"`
	Currency           string           `db:"currency" json:"currency"`
	BillStatus         types.BillStatus `db:"bill_status" json:"bill_status"`
	DueDate            time.Time        `db:"due_date" json:"due_date"`
	PaidAt             *time.Time       `db:"paid_at" json:"paid_at,omitempty"`
	DisputeReason      *string          `db:"dispute_reason" json:"dispute_reason,omitempty"`
	RecurringPaymentID *string          `db:"recurring_payment_id" json:"recurring_payment_id,omitempty"`
	types.BaseModel
}

func (b *Bill) TableName() string {
	return "bills"
}

// OutstandingAmount is what remains to be paid
func (b *Bill) OutstandingAmount() decimal.Decimal {
	return b.Amount.Sub(b.PaidAmount)
}

// IsPayable reports whether the bill can accept a payment right now
func (b *Bill) IsPayable() bool {
	return b.BillStatus.IsPayable()
}

func (b *Bill) Validate() error {
	if b.ClusterID == "" {
		return ierr.NewError("cluster id is required").
			WithHint("Bill must belong to a cluster").
			Mark(ierr.ErrValidation)
	}

	if b.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Bill must have a payer").
			Mark(ierr.ErrValidation)
	}

	if b.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Bill title is required").
			Mark(ierr.ErrValidation)
	}

	if err := b.Type.Validate(); err != nil {
		return err
	}

	if err := b.BillStatus.Validate(); err != nil {
		return err
	}

	if !b.Amount.IsPositive() {
		return ierr.NewError("bill amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": b.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if b.PaidAmount.IsNegative() || b.PaidAmount.GreaterThan(b.Amount) {
		return ierr.NewError("paid amount out of range").
			WithHint("Paid amount must be between zero and the bill amount").
			WithReportableDetails(map[string]any{
				"amount":      b.Amount,
				"paid_amount": b.PaidAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
