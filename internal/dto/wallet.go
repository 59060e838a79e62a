package dto

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// CreateWalletRequest opens a wallet for a user in a cluster
type CreateWalletRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ClusterID string `json:"cluster_id" binding:"required"`
	Currency  string `json:"currency"`
}

func (r *CreateWalletRequest) Validate() error {
	if r.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.ClusterID == "" {
		return ierr.NewError("cluster id is required").
			WithHint("Cluster ID is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToWallet builds the domain wallet with zero balances
func (r *CreateWalletRequest) ToWallet(ctx context.Context) *wallet.Wallet {
	currency := r.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return &wallet.Wallet{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		WalletNumber:     types.GenerateWalletNumber(),
		UserID:           r.UserID,
		ClusterID:        r.ClusterID,
		Currency:         currency,
		Balance:          decimal.Zero,
		AvailableBalance: decimal.Zero,
		WalletStatus:     types.WalletStatusActive,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

// WalletOperationRequest is an amount applied to a wallet
type WalletOperationRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

func (r *WalletOperationRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SetPinRequest sets or changes a wallet PIN
type SetPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

func (r *SetPinRequest) Validate() error {
	if len(r.Pin) < 4 || len(r.Pin) > 8 {
		return ierr.NewError("pin length out of range").
			WithHint("PIN must be 4 to 8 digits").
			Mark(ierr.ErrValidation)
	}
	for _, c := range r.Pin {
		if c < '0' || c > '9' {
			return ierr.NewError("pin must be numeric").
				WithHint("PIN must contain digits only").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// WalletBalanceSummary is the read model for a wallet's balances
type WalletBalanceSummary struct {
	WalletID         string             `json:"wallet_id"`
	WalletNumber     string             `json:"wallet_number"`
	Balance          decimal.Decimal    `json:"balance"`
	AvailableBalance decimal.Decimal    `json:"available_balance"`
	HeldBalance      decimal.Decimal    `json:"held_balance"`
	Currency         string             `json:"currency"`
	WalletStatus     types.WalletStatus `json:"wallet_status"`
}
