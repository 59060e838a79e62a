package types

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// TransactionType represents what a transaction does to a wallet
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypePayment     TransactionType = "payment"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeTransfer    TransactionType = "transfer"
	TransactionTypeBillPayment TransactionType = "bill_payment"
)

func (t TransactionType) Validate() error {
	allowedValues := []string{
		string(TransactionTypeDeposit),
		string(TransactionTypeWithdrawal),
		string(TransactionTypePayment),
		string(TransactionTypeRefund),
		string(TransactionTypeTransfer),
		string(TransactionTypeBillPayment),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid transaction type").
			WithHint("Invalid transaction type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOutbound reports whether the type moves money out of the wallet.
// Outbound transactions place a hold on creation and settle or release
// it on completion or failure.
func (t TransactionType) IsOutbound() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypePayment,
		TransactionTypeTransfer, TransactionTypeBillPayment:
		return true
	}
	return false
}

// TransactionStatus represents where a transaction is in its lifecycle
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

func (s TransactionStatus) Validate() error {
	allowedValues := []string{
		string(TransactionStatusPending),
		string(TransactionStatusProcessing),
		string(TransactionStatusCompleted),
		string(TransactionStatusFailed),
		string(TransactionStatusCancelled),
		string(TransactionStatusRefunded),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid transaction status").
			WithHint("Invalid transaction status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the status admits no further transitions.
// Refunded is reachable from completed only.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusFailed, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// IsFinal reports whether the transaction has left the in-flight
// states. Completed transactions are final for webhook processing even
// though a refund transition remains possible.
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s.IsTerminal()
}
