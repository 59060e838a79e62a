package recurringpayment

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringPayment is a schedule that charges a wallet at a fixed
// frequency. The next payment date always advances from the previous
// one, so a delayed batch run does not shift the schedule.
type RecurringPayment struct {
	ID                string                       `db:"id" json:"id"`
	WalletID          string                       `db:"wallet_id" json:"wallet_id"`
	ClusterID         string                       `db:"cluster_id" json:"cluster_id"`
	Title             string                       `db:"title" json:"title"`
	Description       string                       `db:"description" json:"description"`
	Amount            decimal.Decimal              `db:"amount" json:"amount"`
	Currency          string                       `db:"currency" json:"currency"`
	Frequency         types.PaymentFrequency       `db:"frequency" json:"frequency"`
	RPStatus          types.RecurringPaymentStatus `db:"rp_status" json:"rp_status"`
	NextPaymentDate   time.Time                    `db:"next_payment_date" json:"next_payment_date"`
	EndDate           *time.Time                   `db:"end_date" json:"end_date,omitempty"`
	FailedAttempts    int                          `db:"failed_attempts" json:"failed_attempts"`
	MaxFailedAttempts int                          `db:"max_failed_attempts" json:"max_failed_attempts"`
	LastPaymentAt     *time.Time                   `db:"last_payment_at" json:"last_payment_at,omitempty"`
	types.BaseModel
}

func (r *RecurringPayment) TableName() string {
	return "recurring_payments"
}

// IsActive reports whether the schedule is eligible for processing
func (r *RecurringPayment) IsActive() bool {
	return r.RPStatus == types.RecurringPaymentStatusActive
}

// IsDue reports whether the schedule should fire at the given time
func (r *RecurringPayment) IsDue(now time.Time) bool {
	return r.IsActive() && !r.NextPaymentDate.After(now)
}

// HasEnded reports whether the schedule's end date has passed
func (r *RecurringPayment) HasEnded(now time.Time) bool {
	return r.EndDate != nil && now.After(*r.EndDate)
}

func (r *RecurringPayment) Validate() error {
	if r.WalletID == "" {
		return ierr.NewError("wallet id is required").
			WithHint("Recurring payment must charge a wallet").
			Mark(ierr.ErrValidation)
	}

	if r.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Recurring payment title is required").
			Mark(ierr.ErrValidation)
	}

	if err := r.Frequency.Validate(); err != nil {
		return err
	}

	if err := r.RPStatus.Validate(); err != nil {
		return err
	}

	if !r.Amount.IsPositive() {
		return ierr.NewError("recurring payment amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if r.MaxFailedAttempts <= 0 {
		return ierr.NewError("max failed attempts must be greater than zero").
			WithHint("Max failed attempts must be greater than zero").
			Mark(ierr.ErrValidation)
	}

	if r.EndDate != nil && r.EndDate.Before(r.NextPaymentDate) {
		return ierr.NewError("end date before next payment date").
			WithHint("End date must not be before the next payment date").
			WithReportableDetails(map[string]any{
				"next_payment_date": r.NextPaymentDate,
				"end_date":          r.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
