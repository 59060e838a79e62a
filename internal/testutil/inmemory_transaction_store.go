package testutil

import (
	"context"
	"sync"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

// InMemoryTransactionStore implements transaction.Repository
type InMemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*transaction.Transaction
}

func NewInMemoryTransactionStore() *InMemoryTransactionStore {
	return &InMemoryTransactionStore{
		transactions: make(map[string]*transaction.Transaction),
	}
}

func copyTransaction(t *transaction.Transaction) *transaction.Transaction {
	c := *t
	return &c
}

func (r *InMemoryTransactionStore) Create(ctx context.Context, t *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[t.ID]; exists {
		return ierr.NewError("transaction already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if t.IdempotencyKey != nil {
		for _, existing := range r.transactions {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *t.IdempotencyKey {
				return ierr.NewError("transaction already exists").
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}

	r.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *InMemoryTransactionStore) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, exists := r.transactions[id]; exists {
		return copyTransaction(t), nil
	}
	return nil, ierr.NewError("transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryTransactionStore) getBy(match func(*transaction.Transaction) bool) (*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.transactions {
		if match(t) {
			return copyTransaction(t), nil
		}
	}
	return nil, ierr.NewError("transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryTransactionStore) GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error) {
	return r.getBy(func(t *transaction.Transaction) bool {
		return t.TransactionNumber == number
	})
}

func (r *InMemoryTransactionStore) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	return r.getBy(func(t *transaction.Transaction) bool {
		return t.Reference == reference
	})
}

func (r *InMemoryTransactionStore) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	return r.getBy(func(t *transaction.Transaction) bool {
		return t.IdempotencyKey != nil && *t.IdempotencyKey == key
	})
}

func (r *InMemoryTransactionStore) Update(ctx context.Context, t *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[t.ID]; !exists {
		return ierr.NewError("transaction not found").
			Mark(ierr.ErrNotFound)
	}
	r.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *InMemoryTransactionStore) matches(t *transaction.Transaction, f *types.TransactionFilter) bool {
	if f == nil {
		return true
	}
	if f.WalletID != "" && t.WalletID != f.WalletID {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.TxStatus != nil && t.TxnStatus != *f.TxStatus {
		return false
	}
	if f.Provider != nil && (t.ProviderCode == nil || *t.ProviderCode != *f.Provider) {
		return false
	}
	if len(f.Types) > 0 && !lo.Contains(f.Types, t.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, t.TxnStatus) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && t.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && t.CreatedAt.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func (r *InMemoryTransactionStore) List(ctx context.Context, filter *types.TransactionFilter) ([]*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*transaction.Transaction, 0)
	for _, t := range r.transactions {
		if r.matches(t, filter) {
			result = append(result, copyTransaction(t))
		}
	}

	sortTransactions(result, filter)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	return paginate(result, qf), nil
}

func (r *InMemoryTransactionStore) Count(ctx context.Context, filter *types.TransactionFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, t := range r.transactions {
		if r.matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryTransactionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = make(map[string]*transaction.Transaction)
}
