package testutil

import (
	"context"
	"sync"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryWalletStore implements wallet.Repository. Reads return
// copies so a caller mutating the result cannot bypass Update.
type InMemoryWalletStore struct {
	mu      sync.RWMutex
	wallets map[string]*wallet.Wallet
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets: make(map[string]*wallet.Wallet),
	}
}

func copyWallet(w *wallet.Wallet) *wallet.Wallet {
	c := *w
	return &c
}

func (r *InMemoryWalletStore) Create(ctx context.Context, w *wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wallets[w.ID]; exists {
		return ierr.NewError("wallet already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	for _, existing := range r.wallets {
		if existing.UserID == w.UserID && existing.ClusterID == w.ClusterID {
			return ierr.NewError("wallet already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	r.wallets[w.ID] = copyWallet(w)
	return nil
}

func (r *InMemoryWalletStore) Get(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, exists := r.wallets[id]; exists {
		return copyWallet(w), nil
	}
	return nil, ierr.NewError("wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetForUpdate(ctx context.Context, id string) (*wallet.Wallet, error) {
	return r.Get(ctx, id)
}

func (r *InMemoryWalletStore) GetByUserAndCluster(ctx context.Context, userID, clusterID string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wallets {
		if w.UserID == userID && w.ClusterID == clusterID {
			return copyWallet(w), nil
		}
	}
	return nil, ierr.NewError("wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) ListByCluster(ctx context.Context, clusterID string) ([]*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*wallet.Wallet, 0)
	for _, w := range r.wallets {
		if w.ClusterID == clusterID {
			result = append(result, copyWallet(w))
		}
	}
	return result, nil
}

func (r *InMemoryWalletStore) UpdateBalance(ctx context.Context, id string, balance, availableBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.Balance = balance
	w.AvailableBalance = availableBalance
	return nil
}

func (r *InMemoryWalletStore) UpdateStatus(ctx context.Context, id string, status types.WalletStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.WalletStatus = status
	return nil
}

func (r *InMemoryWalletStore) UpdatePinHash(ctx context.Context, id string, pinHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.PinHash = &pinHash
	return nil
}

func (r *InMemoryWalletStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = make(map[string]*wallet.Wallet)
}
