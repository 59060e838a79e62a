package types

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

// NewDefaultQueryFilter defines default values for query filters
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(0),
		Sort:   lo.ToPtr("created_at"),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// NewNoLimitQueryFilter returns a filter with no pagination limit,
// used by batch jobs that must visit every record.
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Sort:   lo.ToPtr("created_at"),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// IsUnlimited returns true if this is an unlimited query
func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

// GetLimit returns the limit value, 0 meaning unlimited
func (f *QueryFilter) GetLimit() int {
	if f.IsUnlimited() {
		return 0
	}
	return *f.Limit
}

// GetOffset returns the offset value or default if not set
func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// GetSort returns the sort column or default if not set
func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil {
		return "created_at"
	}
	return *f.Sort
}

// GetOrder returns the sort order or default if not set
func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FilterMaxLimit) {
		return ierr.NewError("limit out of range").
			WithHintf("Limit must be between 1 and %d", FilterMaxLimit).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must not be negative").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != OrderAsc && *f.Order != OrderDesc {
		return ierr.NewError("invalid sort order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TimeRangeFilter bounds a query to a time window on created_at
type TimeRangeFilter struct {
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func (f *TimeRangeFilter) Validate() error {
	if f == nil || f.StartTime == nil || f.EndTime == nil {
		return nil
	}
	if f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("invalid time range").
			WithHint("End time must not be before start time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	*QueryFilter
	*TimeRangeFilter
	WalletID string              `json:"wallet_id,omitempty" form:"wallet_id"`
	Type     *TransactionType    `json:"type,omitempty" form:"type"`
	TxStatus *TransactionStatus  `json:"transaction_status,omitempty" form:"transaction_status"`
	Provider *PaymentProvider    `json:"provider,omitempty" form:"provider"`
	Types    []TransactionType   `json:"types,omitempty" form:"types"`
	Statuses []TransactionStatus `json:"statuses,omitempty" form:"statuses"`
}

func NewTransactionFilter() *TransactionFilter {
	return &TransactionFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *TransactionFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	if f.Type != nil {
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	if f.TxStatus != nil {
		if err := f.TxStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BillFilter narrows bill listings
type BillFilter struct {
	*QueryFilter
	*TimeRangeFilter
	ClusterID  string      `json:"cluster_id,omitempty" form:"cluster_id"`
	UserID     string      `json:"user_id,omitempty" form:"user_id"`
	BillStatus *BillStatus `json:"bill_status,omitempty" form:"bill_status"`
	Type       *BillType   `json:"type,omitempty" form:"type"`
	DueBefore  *time.Time  `json:"due_before,omitempty" form:"due_before"`
	DueAfter   *time.Time  `json:"due_after,omitempty" form:"due_after"`
}

func NewBillFilter() *BillFilter {
	return &BillFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *BillFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	if f.BillStatus != nil {
		if err := f.BillStatus.Validate(); err != nil {
			return err
		}
	}
	if f.Type != nil {
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RecurringPaymentFilter narrows schedule listings
type RecurringPaymentFilter struct {
	*QueryFilter
	WalletID  string                  `json:"wallet_id,omitempty" form:"wallet_id"`
	ClusterID string                  `json:"cluster_id,omitempty" form:"cluster_id"`
	RPStatus  *RecurringPaymentStatus `json:"recurring_status,omitempty" form:"recurring_status"`
	DueBefore *time.Time              `json:"due_before,omitempty" form:"due_before"`
}

func NewRecurringPaymentFilter() *RecurringPaymentFilter {
	return &RecurringPaymentFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *RecurringPaymentFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if f.RPStatus != nil {
		if err := f.RPStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PaymentErrorFilter narrows payment error listings
type PaymentErrorFilter struct {
	*QueryFilter
	TransactionID string            `json:"transaction_id,omitempty" form:"transaction_id"`
	ErrorType     *PaymentErrorType `json:"error_type,omitempty" form:"error_type"`
	Severity      *ErrorSeverity    `json:"severity,omitempty" form:"severity"`
	Unresolved    bool              `json:"unresolved,omitempty" form:"unresolved"`
	RetryDueBy    *time.Time        `json:"retry_due_by,omitempty" form:"retry_due_by"`
}

func NewPaymentErrorFilter() *PaymentErrorFilter {
	return &PaymentErrorFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *PaymentErrorFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if f.ErrorType != nil {
		if err := f.ErrorType.Validate(); err != nil {
			return err
		}
	}
	if f.Severity != nil {
		if err := f.Severity.Validate(); err != nil {
			return err
		}
	}
	return nil
}
