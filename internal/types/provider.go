package types

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// PaymentProvider identifies an external payment gateway
type PaymentProvider string

const (
	PaymentProviderPaystack    PaymentProvider = "paystack"
	PaymentProviderFlutterwave PaymentProvider = "flutterwave"
)

func (p PaymentProvider) Validate() error {
	allowedValues := []string{
		string(PaymentProviderPaystack),
		string(PaymentProviderFlutterwave),
	}
	if !lo.Contains(allowedValues, string(p)) {
		return ierr.NewError("invalid payment provider").
			WithHint("Invalid payment provider").
			WithReportableDetails(map[string]any{
				"allowed":  allowedValues,
				"provider": p,
			}).
			Mark(ierr.ErrUnsupportedProvider)
	}
	return nil
}
