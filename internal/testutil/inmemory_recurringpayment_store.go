package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// InMemoryRecurringPaymentStore implements recurringpayment.Repository
type InMemoryRecurringPaymentStore struct {
	mu        sync.RWMutex
	schedules map[string]*recurringpayment.RecurringPayment
}

func NewInMemoryRecurringPaymentStore() *InMemoryRecurringPaymentStore {
	return &InMemoryRecurringPaymentStore{
		schedules: make(map[string]*recurringpayment.RecurringPayment),
	}
}

func copySchedule(rp *recurringpayment.RecurringPayment) *recurringpayment.RecurringPayment {
	c := *rp
	return &c
}

func (r *InMemoryRecurringPaymentStore) Create(ctx context.Context, rp *recurringpayment.RecurringPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schedules[rp.ID]; exists {
		return ierr.NewError("recurring payment already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	r.schedules[rp.ID] = copySchedule(rp)
	return nil
}

func (r *InMemoryRecurringPaymentStore) Get(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rp, exists := r.schedules[id]; exists {
		return copySchedule(rp), nil
	}
	return nil, ierr.NewError("recurring payment not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryRecurringPaymentStore) Update(ctx context.Context, rp *recurringpayment.RecurringPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schedules[rp.ID]; !exists {
		return ierr.NewError("recurring payment not found").
			Mark(ierr.ErrNotFound)
	}
	r.schedules[rp.ID] = copySchedule(rp)
	return nil
}

func (r *InMemoryRecurringPaymentStore) List(ctx context.Context, filter *types.RecurringPaymentFilter) ([]*recurringpayment.RecurringPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*recurringpayment.RecurringPayment, 0)
	for _, rp := range r.schedules {
		if filter != nil {
			if filter.WalletID != "" && rp.WalletID != filter.WalletID {
				continue
			}
			if filter.ClusterID != "" && rp.ClusterID != filter.ClusterID {
				continue
			}
			if filter.RPStatus != nil && rp.RPStatus != *filter.RPStatus {
				continue
			}
			if filter.DueBefore != nil && !rp.NextPaymentDate.Before(*filter.DueBefore) {
				continue
			}
		}
		result = append(result, copySchedule(rp))
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

func (r *InMemoryRecurringPaymentStore) ListDue(ctx context.Context, now time.Time) ([]*recurringpayment.RecurringPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*recurringpayment.RecurringPayment, 0)
	for _, rp := range r.schedules {
		if rp.RPStatus == types.RecurringPaymentStatusActive && !rp.NextPaymentDate.After(now) {
			result = append(result, copySchedule(rp))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NextPaymentDate.Before(result[j].NextPaymentDate)
	})
	return result, nil
}

func (r *InMemoryRecurringPaymentStore) ListDueBetween(ctx context.Context, start, end time.Time) ([]*recurringpayment.RecurringPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*recurringpayment.RecurringPayment, 0)
	for _, rp := range r.schedules {
		if rp.RPStatus != types.RecurringPaymentStatusActive {
			continue
		}
		if rp.NextPaymentDate.Before(start) || rp.NextPaymentDate.After(end) {
			continue
		}
		result = append(result, copySchedule(rp))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NextPaymentDate.Before(result[j].NextPaymentDate)
	})
	return result, nil
}

func (r *InMemoryRecurringPaymentStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules = make(map[string]*recurringpayment.RecurringPayment)
}
