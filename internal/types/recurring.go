package types

import (
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// PaymentFrequency is how often a recurring payment fires
type PaymentFrequency string

const (
	PaymentFrequencyDaily     PaymentFrequency = "daily"
	PaymentFrequencyWeekly    PaymentFrequency = "weekly"
	PaymentFrequencyMonthly   PaymentFrequency = "monthly"
	PaymentFrequencyQuarterly PaymentFrequency = "quarterly"
	PaymentFrequencyYearly    PaymentFrequency = "yearly"
)

func (f PaymentFrequency) Validate() error {
	allowedValues := []string{
		string(PaymentFrequencyDaily),
		string(PaymentFrequencyWeekly),
		string(PaymentFrequencyMonthly),
		string(PaymentFrequencyQuarterly),
		string(PaymentFrequencyYearly),
	}
	if !lo.Contains(allowedValues, string(f)) {
		return ierr.NewError("invalid payment frequency").
			WithHint("Invalid payment frequency").
			WithReportableDetails(map[string]any{
				"allowed":   allowedValues,
				"frequency": f,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Next advances a schedule anchor by one period. The anchor is always
// the previous next-payment date, never the processing time, so delays
// in a batch run do not drift the schedule.
func (f PaymentFrequency) Next(anchor time.Time) (time.Time, error) {
	switch f {
	case PaymentFrequencyDaily:
		return anchor.AddDate(0, 0, 1), nil
	case PaymentFrequencyWeekly:
		return anchor.AddDate(0, 0, 7), nil
	case PaymentFrequencyMonthly:
		return AddClampedDate(anchor, 0, 1, 0), nil
	case PaymentFrequencyQuarterly:
		return AddClampedDate(anchor, 0, 3, 0), nil
	case PaymentFrequencyYearly:
		return AddClampedDate(anchor, 1, 0, 0), nil
	default:
		return anchor, ierr.NewError("invalid payment frequency").
			WithHintf("Unknown payment frequency %s", f).
			Mark(ierr.ErrValidation)
	}
}

// RecurringPaymentStatus represents the state of a schedule
type RecurringPaymentStatus string

const (
	RecurringPaymentStatusActive    RecurringPaymentStatus = "active"
	RecurringPaymentStatusPaused    RecurringPaymentStatus = "paused"
	RecurringPaymentStatusCancelled RecurringPaymentStatus = "cancelled"
	RecurringPaymentStatusExpired   RecurringPaymentStatus = "expired"
)

func (s RecurringPaymentStatus) Validate() error {
	allowedValues := []string{
		string(RecurringPaymentStatusActive),
		string(RecurringPaymentStatusPaused),
		string(RecurringPaymentStatusCancelled),
		string(RecurringPaymentStatusExpired),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid recurring payment status").
			WithHint("Invalid recurring payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DefaultMaxFailedAttempts is the number of consecutive failures after
// which a schedule is paused.
const DefaultMaxFailedAttempts = 3
