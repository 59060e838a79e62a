package wallet

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet represents a resident or cluster treasury wallet. Balance is
// the total funds; AvailableBalance excludes funds held for in-flight
// outbound transactions. 0 <= AvailableBalance <= Balance always.
type Wallet struct {
	ID               string             `db:"id" json:"id"`
	WalletNumber     string             `db:"wallet_number" json:"wallet_number"`
	UserID           string             `db:"user_id" json:"user_id"`
	ClusterID        string             `db:"cluster_id" json:"cluster_id"`
	Currency         string             `db:"currency" json:"currency"`
	Balance          decimal.Decimal    `db:"balance" json:"balance"`
	AvailableBalance decimal.Decimal    `db:"available_balance" json:"available_balance"`
	WalletStatus     types.WalletStatus `db:"wallet_status" json:"wallet_status"`
	PinHash          *string            `db:"pin_hash" json:"-"`
	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

// HeldBalance is the portion of Balance reserved by pending outbound
// transactions.
func (w *Wallet) HeldBalance() decimal.Decimal {
	return w.Balance.Sub(w.AvailableBalance)
}

// IsActive reports whether the wallet can take part in operations
func (w *Wallet) IsActive() bool {
	return w.WalletStatus == types.WalletStatusActive
}

func (w *Wallet) Validate() error {
	if w.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Wallet owner is required").
			Mark(ierr.ErrValidation)
	}

	if err := w.WalletStatus.Validate(); err != nil {
		return err
	}

	if w.Balance.IsNegative() || w.AvailableBalance.IsNegative() {
		return ierr.NewError("wallet balances must not be negative").
			WithHint("Wallet balances must not be negative").
			WithReportableDetails(map[string]any{
				"balance":           w.Balance,
				"available_balance": w.AvailableBalance,
			}).
			Mark(ierr.ErrValidation)
	}

	if w.AvailableBalance.GreaterThan(w.Balance) {
		return ierr.NewError("available balance exceeds balance").
			WithHint("Available balance must not exceed total balance").
			WithReportableDetails(map[string]any{
				"balance":           w.Balance,
				"available_balance": w.AvailableBalance,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
