package types

import (
	"strings"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/samber/lo"
)

// PaymentErrorType classifies a payment failure
type PaymentErrorType string

const (
	PaymentErrorTypeInsufficientFunds PaymentErrorType = "insufficient_funds"
	PaymentErrorTypeCardDeclined      PaymentErrorType = "card_declined"
	PaymentErrorTypeNetworkError      PaymentErrorType = "network_error"
	PaymentErrorTypeProviderError     PaymentErrorType = "provider_error"
	PaymentErrorTypeValidationError   PaymentErrorType = "validation_error"
	PaymentErrorTypeTimeout           PaymentErrorType = "timeout"
	PaymentErrorTypeUnknown           PaymentErrorType = "unknown"
)

func (t PaymentErrorType) Validate() error {
	allowedValues := []string{
		string(PaymentErrorTypeInsufficientFunds),
		string(PaymentErrorTypeCardDeclined),
		string(PaymentErrorTypeNetworkError),
		string(PaymentErrorTypeProviderError),
		string(PaymentErrorTypeValidationError),
		string(PaymentErrorTypeTimeout),
		string(PaymentErrorTypeUnknown),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid payment error type").
			WithHint("Invalid payment error type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CategorizePaymentError maps a free-text provider failure message to
// an error type by keyword.
func CategorizePaymentError(message string) PaymentErrorType {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "insufficient"):
		return PaymentErrorTypeInsufficientFunds
	case strings.Contains(msg, "declined"):
		return PaymentErrorTypeCardDeclined
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return PaymentErrorTypeTimeout
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"):
		return PaymentErrorTypeNetworkError
	case strings.Contains(msg, "invalid"):
		return PaymentErrorTypeValidationError
	default:
		return PaymentErrorTypeUnknown
	}
}

// ErrorSeverity ranks how urgently a payment error needs attention
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

func (s ErrorSeverity) Validate() error {
	allowedValues := []string{
		string(ErrorSeverityLow),
		string(ErrorSeverityMedium),
		string(ErrorSeverityHigh),
		string(ErrorSeverityCritical),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid error severity").
			WithHint("Invalid error severity").
			WithReportableDetails(map[string]any{
				"allowed":  allowedValues,
				"severity": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Severity returns the default severity for an error type. Customer
// side failures are low, infrastructure flakes are medium, provider
// faults and unclassified failures are high.
func (t PaymentErrorType) Severity() ErrorSeverity {
	switch t {
	case PaymentErrorTypeInsufficientFunds, PaymentErrorTypeCardDeclined:
		return ErrorSeverityLow
	case PaymentErrorTypeValidationError, PaymentErrorTypeNetworkError, PaymentErrorTypeTimeout:
		return ErrorSeverityMedium
	case PaymentErrorTypeProviderError, PaymentErrorTypeUnknown:
		return ErrorSeverityHigh
	default:
		return ErrorSeverityHigh
	}
}

// DefaultMaxRetries caps automatic retries of a failed payment.
const DefaultMaxRetries = 3
