package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

// InMemoryBillStore implements bill.Repository
type InMemoryBillStore struct {
	mu    sync.RWMutex
	bills map[string]*bill.Bill
}

func NewInMemoryBillStore() *InMemoryBillStore {
	return &InMemoryBillStore{
		bills: make(map[string]*bill.Bill),
	}
}

func copyBill(b *bill.Bill) *bill.Bill {
	c := *b
	return &c
}

func (r *InMemoryBillStore) Create(ctx context.Context, b *bill.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bills[b.ID]; exists {
		return ierr.NewError("bill already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	r.bills[b.ID] = copyBill(b)
	return nil
}

func (r *InMemoryBillStore) Get(ctx context.Context, id string) (*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, exists := r.bills[id]; exists {
		return copyBill(b), nil
	}
	return nil, ierr.NewError("bill not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryBillStore) GetByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bills {
		if b.BillNumber == number {
			return copyBill(b), nil
		}
	}
	return nil, ierr.NewError("bill not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryBillStore) Update(ctx context.Context, b *bill.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bills[b.ID]; !exists {
		return ierr.NewError("bill not found").
			Mark(ierr.ErrNotFound)
	}
	r.bills[b.ID] = copyBill(b)
	return nil
}

func (r *InMemoryBillStore) matches(b *bill.Bill, f *types.BillFilter) bool {
	if f == nil {
		return true
	}
	if f.ClusterID != "" && b.ClusterID != f.ClusterID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.BillStatus != nil && b.BillStatus != *f.BillStatus {
		return false
	}
	if f.Type != nil && b.Type != *f.Type {
		return false
	}
	if f.DueBefore != nil && !b.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.DueAfter != nil && !b.DueDate.After(*f.DueAfter) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && b.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && b.CreatedAt.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func (r *InMemoryBillStore) List(ctx context.Context, filter *types.BillFilter) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range r.bills {
		if r.matches(b, filter) {
			result = append(result, copyBill(b))
		}
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

func (r *InMemoryBillStore) Count(ctx context.Context, filter *types.BillFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, b := range r.bills {
		if r.matches(b, filter) {
			count++
		}
	}
	return count, nil
}

var billSweepStatuses = []types.BillStatus{
	types.BillStatusPending,
	types.BillStatusAcknowledged,
	types.BillStatusPartiallyPaid,
}

func (r *InMemoryBillStore) ListOverdueCandidates(ctx context.Context, before time.Time) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*bill.Bill, 0)
	for _, b := range r.bills {
		if lo.Contains(billSweepStatuses, b.BillStatus) && b.DueDate.Before(before) {
			result = append(result, copyBill(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

func (r *InMemoryBillStore) ListDueBetween(ctx context.Context, start, end time.Time) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reminderStatuses := append(billSweepStatuses, types.BillStatusOverdue)
	result := make([]*bill.Bill, 0)
	for _, b := range r.bills {
		if !lo.Contains(reminderStatuses, b.BillStatus) {
			continue
		}
		if b.DueDate.Before(start) || b.DueDate.After(end) {
			continue
		}
		result = append(result, copyBill(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

func (r *InMemoryBillStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills = make(map[string]*bill.Bill)
}
