package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/paymenterror"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// InMemoryPaymentErrorStore implements paymenterror.Repository
type InMemoryPaymentErrorStore struct {
	mu     sync.RWMutex
	errors map[string]*paymenterror.PaymentError
}

func NewInMemoryPaymentErrorStore() *InMemoryPaymentErrorStore {
	return &InMemoryPaymentErrorStore{
		errors: make(map[string]*paymenterror.PaymentError),
	}
}

func copyPaymentError(e *paymenterror.PaymentError) *paymenterror.PaymentError {
	c := *e
	return &c
}

func (r *InMemoryPaymentErrorStore) Create(ctx context.Context, e *paymenterror.PaymentError) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.errors[e.ID]; exists {
		return ierr.NewError("payment error already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	r.errors[e.ID] = copyPaymentError(e)
	return nil
}

func (r *InMemoryPaymentErrorStore) Get(ctx context.Context, id string) (*paymenterror.PaymentError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, exists := r.errors[id]; exists {
		return copyPaymentError(e), nil
	}
	return nil, ierr.NewError("payment error not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryPaymentErrorStore) Update(ctx context.Context, e *paymenterror.PaymentError) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.errors[e.ID]; !exists {
		return ierr.NewError("payment error not found").
			Mark(ierr.ErrNotFound)
	}
	r.errors[e.ID] = copyPaymentError(e)
	return nil
}

func (r *InMemoryPaymentErrorStore) List(ctx context.Context, filter *types.PaymentErrorFilter) ([]*paymenterror.PaymentError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*paymenterror.PaymentError, 0)
	for _, e := range r.errors {
		if filter != nil {
			if filter.TransactionID != "" && (e.TransactionID == nil || *e.TransactionID != filter.TransactionID) {
				continue
			}
			if filter.ErrorType != nil && e.ErrorType != *filter.ErrorType {
				continue
			}
			if filter.Severity != nil && e.Severity != *filter.Severity {
				continue
			}
			if filter.Unresolved && e.IsResolved() {
				continue
			}
			if filter.RetryDueBy != nil && (e.NextRetryAt == nil || e.NextRetryAt.After(*filter.RetryDueBy)) {
				continue
			}
		}
		result = append(result, copyPaymentError(e))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	return paginate(result, qf), nil
}

func (r *InMemoryPaymentErrorStore) ListDueRetries(ctx context.Context, now time.Time) ([]*paymenterror.PaymentError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*paymenterror.PaymentError, 0)
	for _, e := range r.errors {
		if e.IsResolved() || e.NextRetryAt == nil || e.NextRetryAt.After(now) {
			continue
		}
		if e.RetryCount >= e.MaxRetries {
			continue
		}
		result = append(result, copyPaymentError(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NextRetryAt.Before(*result[j].NextRetryAt)
	})
	return result, nil
}

func (r *InMemoryPaymentErrorStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = make(map[string]*paymenterror.PaymentError)
}
