package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the payment engine. Services mark their errors
// with one of these so transports can map them to status codes and
// callers can branch with the Is* helpers.
var (
	ErrNotFound            = New(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists       = New(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation          = New(ErrCodeValidation, "validation error")
	ErrInvalidOperation    = New(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied    = New(ErrCodePermissionDenied, "permission denied")
	ErrHTTPClient          = New(ErrCodeHTTPClient, "http client error")
	ErrDatabase            = New(ErrCodeDatabase, "database error")
	ErrInternal            = New(ErrCodeInternal, "internal error")
	ErrInsufficientBalance = New(ErrCodeInsufficientBalance, "insufficient balance")
	ErrWalletInactive      = New(ErrCodeWalletInactive, "wallet is not active")
	ErrBillNotPayable      = New(ErrCodeBillNotPayable, "bill is not payable")
	ErrProvider            = New(ErrCodeProvider, "payment provider error")
	ErrWebhookSignature    = New(ErrCodeWebhookSignature, "webhook signature invalid")
	ErrUnsupportedProvider = New(ErrCodeUnsupportedProvider, "unsupported payment provider")

	// maps sentinel errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:            http.StatusNotFound,
		ErrAlreadyExists:       http.StatusConflict,
		ErrValidation:          http.StatusUnprocessableEntity,
		ErrInvalidOperation:    http.StatusConflict,
		ErrPermissionDenied:    http.StatusForbidden,
		ErrHTTPClient:          http.StatusInternalServerError,
		ErrDatabase:            http.StatusInternalServerError,
		ErrInternal:            http.StatusInternalServerError,
		ErrInsufficientBalance: http.StatusPaymentRequired,
		ErrWalletInactive:      http.StatusConflict,
		ErrBillNotPayable:      http.StatusConflict,
		ErrProvider:            http.StatusBadGateway,
		ErrWebhookSignature:    http.StatusUnauthorized,
		ErrUnsupportedProvider: http.StatusBadRequest,
	}
)

const (
	ErrCodeNotFound            = "not_found"
	ErrCodeAlreadyExists       = "already_exists"
	ErrCodeValidation          = "validation_error"
	ErrCodeInvalidOperation    = "invalid_operation"
	ErrCodePermissionDenied    = "permission_denied"
	ErrCodeHTTPClient          = "http_client_error"
	ErrCodeDatabase            = "database_error"
	ErrCodeInternal            = "internal_error"
	ErrCodeInsufficientBalance = "insufficient_balance"
	ErrCodeWalletInactive      = "wallet_inactive"
	ErrCodeBillNotPayable      = "bill_not_payable"
	ErrCodeProvider            = "provider_error"
	ErrCodeWebhookSignature    = "webhook_signature_invalid"
	ErrCodeUnsupportedProvider = "unsupported_provider"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func New(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsInsufficientBalance checks if an error is an insufficient balance error
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsWalletInactive checks if an error is a wallet inactive error
func IsWalletInactive(err error) bool {
	return errors.Is(err, ErrWalletInactive)
}

// IsBillNotPayable checks if an error is a bill not payable error
func IsBillNotPayable(err error) bool {
	return errors.Is(err, ErrBillNotPayable)
}

// IsProvider checks if an error is a payment provider error
func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}

// IsWebhookSignature checks if an error is a webhook signature error
func IsWebhookSignature(err error) bool {
	return errors.Is(err, ErrWebhookSignature)
}

// IsUnsupportedProvider checks if an error is an unsupported provider error
func IsUnsupportedProvider(err error) bool {
	return errors.Is(err, ErrUnsupportedProvider)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
