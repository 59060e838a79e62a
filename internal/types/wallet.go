package types

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// WalletStatus represents the current state of a wallet
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
	WalletStatusClosed    WalletStatus = "closed"
)

func (s WalletStatus) Validate() error {
	allowedValues := []string{
		string(WalletStatusActive),
		string(WalletStatusSuspended),
		string(WalletStatusClosed),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid wallet status").
			WithHint("Invalid wallet status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DefaultCurrency is the currency assigned to wallets created without
// an explicit currency.
const DefaultCurrency = "NGN"
