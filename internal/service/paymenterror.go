package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/paymenterror"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// PaymentErrorService records payment failures, retries the retryable
// ones on a capped exponential schedule and escalates the rest.
type PaymentErrorService interface {
	Record(ctx context.Context, req *dto.RecordPaymentErrorRequest) (*paymenterror.PaymentError, error)
	Get(ctx context.Context, id string) (*paymenterror.PaymentError, error)
	List(ctx context.Context, filter *types.PaymentErrorFilter) ([]*paymenterror.PaymentError, error)

	ScheduleRetry(ctx context.Context, id string) (*paymenterror.PaymentError, error)
	Resolve(ctx context.Context, id string, req *dto.ResolvePaymentErrorRequest) (*paymenterror.PaymentError, error)
	RecoveryOptions(ctx context.Context, id string) ([]dto.RecoveryOption, error)

	ProcessDueRetries(ctx context.Context, now time.Time) (*dto.BatchResult, error)
}

type paymentErrorService struct {
	ServiceParams
	transactionService TransactionService
}

// NewPaymentErrorService creates a new payment error service
func NewPaymentErrorService(params ServiceParams) PaymentErrorService {
	return &paymentErrorService{
		ServiceParams:      params,
		transactionService: NewTransactionService(params),
	}
}

func (s *paymentErrorService) Record(ctx context.Context, req *dto.RecordPaymentErrorRequest) (*paymenterror.PaymentError, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	errType := types.CategorizePaymentError(req.Message)
	if req.ErrorType != nil {
		errType = *req.ErrorType
	}

	maxRetries := s.Config.Retry.MaxRetries
	if maxRetries <= 0 {
		maxRetries = types.DefaultMaxRetries
	}

	pe := &paymenterror.PaymentError{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ERROR),
		TransactionID: req.TransactionID,
		ErrorType:     errType,
		Severity:      errType.Severity(),
		Message:       req.Message,
		ProviderCode:  req.ProviderCode,
		RetryCount:    0,
		MaxRetries:    maxRetries,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	// Only transient failures are worth retrying automatically. The
	// rest wait for the user or an operator to act.
	if isAutoRetryable(errType) && req.TransactionID != nil {
		next := time.Now().UTC().Add(s.retryDelay(0))
		pe.NextRetryAt = &next
	}

	if err := pe.Validate(); err != nil {
		return nil, err
	}

	if err := s.PaymentErrorRepo.Create(ctx, pe); err != nil {
		return nil, err
	}

	s.Logger.Warnw("recorded payment error",
		"payment_error_id", pe.ID,
		"transaction_id", pe.TransactionID,
		"error_type", pe.ErrorType,
		"severity", pe.Severity,
		"next_retry_at", pe.NextRetryAt,
	)

	if pe.Severity == types.ErrorSeverityHigh || pe.Severity == types.ErrorSeverityCritical {
		s.escalate(ctx, pe)
	}
	return pe, nil
}

func (s *paymentErrorService) Get(ctx context.Context, id string) (*paymenterror.PaymentError, error) {
	return s.PaymentErrorRepo.Get(ctx, id)
}

func (s *paymentErrorService) List(ctx context.Context, filter *types.PaymentErrorFilter) ([]*paymenterror.PaymentError, error) {
	if filter == nil {
		filter = types.NewPaymentErrorFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.PaymentErrorRepo.List(ctx, filter)
}

// ScheduleRetry arms the next automatic attempt for an unresolved
// error, e.g. after the user fixed the underlying cause. The attempt
// budget is shared with automatic rescheduling.
func (s *paymentErrorService) ScheduleRetry(ctx context.Context, id string) (*paymenterror.PaymentError, error) {
	pe, err := s.PaymentErrorRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pe.IsResolved() {
		return nil, ierr.NewError("payment error already resolved").
			WithHint("Resolved payment errors cannot be retried").
			Mark(ierr.ErrInvalidOperation)
	}
	if pe.TransactionID == nil {
		return nil, ierr.NewError("payment error has no transaction").
			WithHint("Only errors linked to a transaction can be retried").
			Mark(ierr.ErrInvalidOperation)
	}
	if pe.RetryCount >= pe.MaxRetries {
		return nil, ierr.NewError("payment retries exhausted").
			WithHintf("All %d retry attempts have been used", pe.MaxRetries).
			WithReportableDetails(map[string]any{
				"payment_error_id": pe.ID,
				"retry_count":      pe.RetryCount,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	next := now.Add(s.retryDelay(pe.RetryCount))
	pe.NextRetryAt = &next
	pe.RetryCount++
	pe.UpdatedAt = now
	pe.UpdatedBy = types.GetUserID(ctx)

	if err := s.PaymentErrorRepo.Update(ctx, pe); err != nil {
		return nil, err
	}

	s.Logger.Infow("scheduled payment retry",
		"payment_error_id", pe.ID,
		"transaction_id", *pe.TransactionID,
		"retry_count", pe.RetryCount,
		"next_retry_at", next,
	)
	return pe, nil
}

// Resolve closes an error. Resolving an already resolved error is a
// no-op.
func (s *paymentErrorService) Resolve(ctx context.Context, id string, req *dto.ResolvePaymentErrorRequest) (*paymenterror.PaymentError, error) {
	pe, err := s.PaymentErrorRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pe.IsResolved() {
		return pe, nil
	}

	now := time.Now().UTC()
	pe.ResolvedAt = &now
	pe.NextRetryAt = nil
	if req != nil && req.Note != "" {
		pe.ResolutionNote = &req.Note
	}
	pe.UpdatedAt = now
	pe.UpdatedBy = types.GetUserID(ctx)

	if err := s.PaymentErrorRepo.Update(ctx, pe); err != nil {
		return nil, err
	}
	return pe, nil
}

// RecoveryOptions suggests next steps based on the error type
func (s *paymentErrorService) RecoveryOptions(ctx context.Context, id string) ([]dto.RecoveryOption, error) {
	pe, err := s.PaymentErrorRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch pe.ErrorType {
	case types.PaymentErrorTypeInsufficientFunds:
		return []dto.RecoveryOption{
			{Action: "fund_wallet", Description: "Top up the wallet and retry the payment"},
			{Action: "reduce_amount", Description: "Retry with a smaller amount"},
		}, nil
	case types.PaymentErrorTypeCardDeclined:
		return []dto.RecoveryOption{
			{Action: "use_different_card", Description: "Retry with a different card"},
			{Action: "contact_bank", Description: "Contact the issuing bank"},
		}, nil
	case types.PaymentErrorTypeValidationError:
		return []dto.RecoveryOption{
			{Action: "correct_details", Description: "Correct the payment details and retry"},
		}, nil
	case types.PaymentErrorTypeNetworkError, types.PaymentErrorTypeTimeout:
		return []dto.RecoveryOption{
			{Action: "wait_for_retry", Description: "The payment will be retried automatically"},
		}, nil
	case types.PaymentErrorTypeProviderError:
		return []dto.RecoveryOption{
			{Action: "wait_for_retry", Description: "The payment will be retried automatically"},
			{Action: "switch_provider", Description: "Retry the payment through a different provider"},
		}, nil
	default:
		return []dto.RecoveryOption{
			{Action: "contact_support", Description: "Contact support with the error reference"},
		}, nil
	}
}

// ProcessDueRetries re-checks every error whose retry is due. Each
// record is handled in isolation.
func (s *paymentErrorService) ProcessDueRetries(ctx context.Context, now time.Time) (*dto.BatchResult, error) {
	due, err := s.PaymentErrorRepo.ListDueRetries(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Processed: len(due)}
	for _, pe := range due {
		if err := s.retryOne(ctx, pe, now); err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	s.Logger.Infow("payment error retry run finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *paymentErrorService) retryOne(ctx context.Context, pe *paymenterror.PaymentError, now time.Time) error {
	if pe.TransactionID == nil {
		pe.NextRetryAt = nil
		return s.PaymentErrorRepo.Update(ctx, pe)
	}

	txn, err := s.TransactionRepo.Get(ctx, *pe.TransactionID)
	if err != nil {
		s.Logger.Errorw("failed to load transaction for retry",
			"payment_error_id", pe.ID,
			"transaction_id", *pe.TransactionID,
			"error", err,
		)
		return err
	}

	// Another path may have finished the transaction since the error
	// was recorded.
	if txn.TxnStatus.IsFinal() {
		_, err := s.Resolve(ctx, pe.ID, &dto.ResolvePaymentErrorRequest{
			Note: "transaction reached final status " + string(txn.TxnStatus),
		})
		return err
	}

	provider, err := s.resolveProvider(pe, txn.ProviderCode)
	if err != nil {
		return s.recordRetryFailure(ctx, pe, now, err.Error())
	}

	verification, err := provider.VerifyPayment(ctx, txn.Reference)
	if err != nil {
		return s.recordRetryFailure(ctx, pe, now, err.Error())
	}
	if !verification.Success {
		return s.recordRetryFailure(ctx, pe, now, verification.Message)
	}

	if _, err := s.transactionService.MarkCompleted(ctx, txn.ID); err != nil {
		return s.recordRetryFailure(ctx, pe, now, err.Error())
	}

	_, err = s.Resolve(ctx, pe.ID, &dto.ResolvePaymentErrorRequest{
		Note: "payment confirmed by provider on retry",
	})
	return err
}

func (s *paymentErrorService) resolveProvider(pe *paymenterror.PaymentError, txnProvider *types.PaymentProvider) (gateway.Provider, error) {
	code := pe.ProviderCode
	if code == nil {
		code = txnProvider
	}
	if code == nil {
		return s.GatewayFactory.GetDefault()
	}
	return s.GatewayFactory.Get(*code)
}

// recordRetryFailure bumps the retry counter and either schedules the
// next attempt or exhausts the error and fails its transaction.
func (s *paymentErrorService) recordRetryFailure(ctx context.Context, pe *paymenterror.PaymentError, now time.Time, reason string) error {
	pe.RetryCount++
	pe.UpdatedAt = now

	if pe.RetryCount < pe.MaxRetries {
		next := now.Add(s.retryDelay(pe.RetryCount))
		pe.NextRetryAt = &next

		s.Logger.Warnw("payment retry failed, rescheduled",
			"payment_error_id", pe.ID,
			"retry_count", pe.RetryCount,
			"next_retry_at", next,
			"reason", reason,
		)
		if err := s.PaymentErrorRepo.Update(ctx, pe); err != nil {
			return err
		}
		return ierr.NewError("payment retry failed").
			WithHint(reason).
			Mark(ierr.ErrProvider)
	}

	pe.NextRetryAt = nil
	note := "automatic retries exhausted: " + reason
	pe.ResolutionNote = &note
	s.Logger.Errorw("payment retries exhausted",
		"payment_error_id", pe.ID,
		"transaction_id", pe.TransactionID,
		"retry_count", pe.RetryCount,
		"reason", reason,
	)
	if err := s.PaymentErrorRepo.Update(ctx, pe); err != nil {
		return err
	}

	if pe.TransactionID != nil {
		if _, err := s.transactionService.MarkFailed(ctx, *pe.TransactionID, "payment retries exhausted: "+reason); err != nil && !ierr.IsInvalidOperation(err) {
			s.Logger.Errorw("failed to fail transaction after exhausted retries",
				"payment_error_id", pe.ID,
				"transaction_id", *pe.TransactionID,
				"error", err,
			)
		}
	}

	s.escalate(ctx, pe)
	return ierr.NewError("payment retries exhausted").
		WithHint(reason).
		Mark(ierr.ErrProvider)
}

func (s *paymentErrorService) escalate(ctx context.Context, pe *paymenterror.PaymentError) {
	n := &notification.Notification{
		Kind:  notification.KindPaymentErrorEscalated,
		Title: "Payment error needs attention",
		Body:  pe.Message,
		Metadata: map[string]string{
			"payment_error_id": pe.ID,
			"error_type":       string(pe.ErrorType),
			"severity":         string(pe.Severity),
		},
	}
	if err := s.Notifier.Send(ctx, n); err != nil {
		s.Logger.Warnw("failed to send escalation notification",
			"payment_error_id", pe.ID,
			"error", err,
		)
	}
}

// retryDelay is the wait before attempt retryCount+1: one minute
// doubling per attempt, capped by config.
func (s *paymentErrorService) retryDelay(retryCount int) time.Duration {
	maxDelay := time.Duration(s.Config.Retry.BackoffCapMinutes) * time.Minute
	if maxDelay <= 0 {
		maxDelay = 30 * time.Minute
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Minute
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	d := bo.NextBackOff()
	for i := 0; i < retryCount; i++ {
		d = bo.NextBackOff()
	}
	return d
}

func isAutoRetryable(t types.PaymentErrorType) bool {
	switch t {
	case types.PaymentErrorTypeNetworkError,
		types.PaymentErrorTypeTimeout,
		types.PaymentErrorTypeProviderError,
		types.PaymentErrorTypeUnknown:
		return true
	default:
		return false
	}
}
