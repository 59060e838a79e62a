package transaction

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is a single movement of money against a wallet.
// Outbound types (withdrawal, payment, transfer, bill_payment) hold
// funds on creation; the hold is settled on completion and released
// on failure or cancellation.
type Transaction struct {
	ID                string                  `db:"id" json:"id"`
	TransactionNumber string                  `db:"transaction_number" json:"transaction_number"`
	WalletID          string                  `db:"wallet_id" json:"wallet_id"`
	Type              types.TransactionType   `db:"type" json:"type"`
	TxnStatus         types.TransactionStatus `db:"txn_status" json:"txn_status"`
	Amount            decimal.Decimal         `db:"amount" json:"amount"`
	Currency          string                  `db:"currency" json:"currency"`
	Description       string                  `db:"description" json:"description"`
	Reference         string                  `db:"reference" json:"reference"`
	ProviderCode      *types.PaymentProvider  `db:"provider_code" json:"provider_code,omitempty"`
	IdempotencyKey    *string                 `db:"idempotency_key" json:"idempotency_key,omitempty"`
	BillID            *string                 `db:"bill_id" json:"bill_id,omitempty"`
	Metadata          types.Metadata          `db:"metadata" json:"metadata,omitempty"`
	FailureReason     *string                 `db:"failure_reason" json:"failure_reason,omitempty"`
	CompletedAt       *time.Time              `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt          *time.Time              `db:"failed_at" json:"failed_at,omitempty"`
	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) Validate() error {
	if t.WalletID == "" {
		return ierr.NewError("wallet id is required").
			WithHint("Transaction must belong to a wallet").
			Mark(ierr.ErrValidation)
	}

	if err := t.Type.Validate(); err != nil {
		return err
	}

	if err := t.TxnStatus.Validate(); err != nil {
		return err
	}

	if !t.Amount.IsPositive() {
		return ierr.NewError("transaction amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": t.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// CanTransitionTo reports whether a status transition is legal.
// pending    -> processing, completed, failed, cancelled
// processing -> completed, failed
// completed  -> refunded
func (t *Transaction) CanTransitionTo(target types.TransactionStatus) bool {
	switch t.TxnStatus {
	case types.TransactionStatusPending:
		switch target {
		case types.TransactionStatusProcessing,
			types.TransactionStatusCompleted,
			types.TransactionStatusFailed,
			types.TransactionStatusCancelled:
			return true
		}
	case types.TransactionStatusProcessing:
		switch target {
		case types.TransactionStatusCompleted,
			types.TransactionStatusFailed:
			return true
		}
	case types.TransactionStatusCompleted:
		return target == types.TransactionStatusRefunded
	}
	return false
}
