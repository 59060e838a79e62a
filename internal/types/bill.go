package types

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// BillType categorizes what a bill charges for
type BillType string

const (
	BillTypeUtility       BillType = "utility"
	BillTypeMaintenance   BillType = "maintenance"
	BillTypeServiceCharge BillType = "service_charge"
	BillTypeSecurity      BillType = "security"
	BillTypePower         BillType = "power"
	BillTypeWater         BillType = "water"
	BillTypeWaste         BillType = "waste"
	BillTypeOther         BillType = "other"
)

func (t BillType) Validate() error {
	allowedValues := []string{
		string(BillTypeUtility),
		string(BillTypeMaintenance),
		string(BillTypeServiceCharge),
		string(BillTypeSecurity),
		string(BillTypePower),
		string(BillTypeWater),
		string(BillTypeWaste),
		string(BillTypeOther),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid bill type").
			WithHint("Invalid bill type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillStatus represents where a bill is in its lifecycle
type BillStatus string

const (
	BillStatusDraft                 BillStatus = "draft"
	BillStatusPendingAcknowledgment BillStatus = "pending_acknowledgment"
	BillStatusAcknowledged          BillStatus = "acknowledged"
	BillStatusDisputed              BillStatus = "disputed"
	BillStatusPending               BillStatus = "pending"
	BillStatusOverdue               BillStatus = "overdue"
	BillStatusPaid                  BillStatus = "paid"
	BillStatusPartiallyPaid         BillStatus = "partially_paid"
	BillStatusCancelled             BillStatus = "cancelled"
)

func (s BillStatus) Validate() error {
	allowedValues := []string{
		string(BillStatusDraft),
		string(BillStatusPendingAcknowledgment),
		string(BillStatusAcknowledged),
		string(BillStatusDisputed),
		string(BillStatusPending),
		string(BillStatusOverdue),
		string(BillStatusPaid),
		string(BillStatusPartiallyPaid),
		string(BillStatusCancelled),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid bill status").
			WithHint("Invalid bill status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPayable reports whether a bill in this status can accept payments
func (s BillStatus) IsPayable() bool {
	switch s {
	case BillStatusPending, BillStatusOverdue, BillStatusPartiallyPaid, BillStatusAcknowledged:
		return true
	}
	return false
}

// IsTerminal reports whether the bill can no longer change state
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}
