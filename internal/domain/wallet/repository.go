package wallet

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for wallet persistence operations.
// Balance-mutating callers are expected to run inside a transaction
// and load the wallet with GetForUpdate first.
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	Get(ctx context.Context, id string) (*Wallet, error)
	// GetForUpdate loads the wallet with a row lock so concurrent
	// balance mutations serialize.
	GetForUpdate(ctx context.Context, id string) (*Wallet, error)
	GetByUserAndCluster(ctx context.Context, userID, clusterID string) (*Wallet, error)
	ListByCluster(ctx context.Context, clusterID string) ([]*Wallet, error)
	UpdateBalance(ctx context.Context, id string, balance, availableBalance decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status types.WalletStatus) error
	UpdatePinHash(ctx context.Context, id string, pinHash string) error
}
