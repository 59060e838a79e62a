package service

import (
	"testing"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentErrorServiceSuite struct {
	testutil.BaseServiceTestSuite
	service            PaymentErrorService
	transactionService TransactionService
	walletService      WalletService
}

func TestPaymentErrorService(t *testing.T) {
	suite.Run(t, new(PaymentErrorServiceSuite))
}

func (s *PaymentErrorServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentErrorService(params)
	s.transactionService = NewTransactionService(params)
	s.walletService = NewWalletService(params)
}

// pendingPayment creates a funded wallet and an outbound payment on it,
// left pending with its funds held.
func (s *PaymentErrorServiceSuite) pendingPayment(amount int64) *transaction.Transaction {
	w, err := s.walletService.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    "user-1",
		ClusterID: "cluster-1",
	})
	s.NoError(err)
	_, err = s.walletService.Credit(s.GetContext(), w.ID, decimal.NewFromInt(amount*2))
	s.NoError(err)

	txn, err := s.transactionService.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID:     w.ID,
		Type:         types.TransactionTypePayment,
		Amount:       decimal.NewFromInt(amount),
		ProviderCode: lo.ToPtr(types.PaymentProviderPaystack),
	})
	s.NoError(err)
	return txn
}

func (s *PaymentErrorServiceSuite) TestRecordCategorizesByMessage() {
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message: "Insufficient funds on card",
	})
	s.NoError(err)
	s.Equal(types.PaymentErrorTypeInsufficientFunds, pe.ErrorType)
	s.Equal(types.ErrorSeverityLow, pe.Severity)
	// Funding problems wait for the user, no automatic retry
	s.Nil(pe.NextRetryAt)

	pe, err = s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message: "Transaction declined by issuer",
	})
	s.NoError(err)
	s.Equal(types.PaymentErrorTypeCardDeclined, pe.ErrorType)

	pe, err = s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message: "connection reset by peer",
	})
	s.NoError(err)
	s.Equal(types.PaymentErrorTypeNetworkError, pe.ErrorType)
	s.Equal(types.ErrorSeverityMedium, pe.Severity)
}

func (s *PaymentErrorServiceSuite) TestRecordSchedulesRetryForTransientErrors() {
	txn := s.pendingPayment(100)

	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "gateway timeout",
	})
	s.NoError(err)
	s.Equal(types.PaymentErrorTypeTimeout, pe.ErrorType)
	s.NotNil(pe.NextRetryAt)
	s.Equal(0, pe.RetryCount)
	s.Equal(types.DefaultMaxRetries, pe.MaxRetries)
}

func (s *PaymentErrorServiceSuite) TestRecordEscalatesHighSeverity() {
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message:   "something exploded upstream",
		ErrorType: lo.ToPtr(types.PaymentErrorTypeProviderError),
	})
	s.NoError(err)
	s.Equal(types.ErrorSeverityHigh, pe.Severity)
	s.Len(s.GetNotifier().SentOfKind(notification.KindPaymentErrorEscalated), 1)
}

func (s *PaymentErrorServiceSuite) TestResolveIsIdempotent() {
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message: "network error",
	})
	s.NoError(err)

	resolved, err := s.service.Resolve(s.GetContext(), pe.ID, &dto.ResolvePaymentErrorRequest{
		Note: "confirmed manually",
	})
	s.NoError(err)
	s.NotNil(resolved.ResolvedAt)
	s.Nil(resolved.NextRetryAt)
	s.Equal("confirmed manually", *resolved.ResolutionNote)

	firstResolvedAt := *resolved.ResolvedAt
	again, err := s.service.Resolve(s.GetContext(), pe.ID, &dto.ResolvePaymentErrorRequest{
		Note: "second attempt",
	})
	s.NoError(err)
	s.True(again.ResolvedAt.Equal(firstResolvedAt))
	s.Equal("confirmed manually", *again.ResolutionNote)
}

func (s *PaymentErrorServiceSuite) TestRecoveryOptions() {
	cases := map[types.PaymentErrorType]string{
		types.PaymentErrorTypeInsufficientFunds: "fund_wallet",
		types.PaymentErrorTypeCardDeclined:      "use_different_card",
		types.PaymentErrorTypeValidationError:   "correct_details",
		types.PaymentErrorTypeTimeout:           "wait_for_retry",
		types.PaymentErrorTypeProviderError:     "wait_for_retry",
	}
	for errType, firstAction := range cases {
		pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
			Message:   "failure",
			ErrorType: lo.ToPtr(errType),
		})
		s.NoError(err)

		options, err := s.service.RecoveryOptions(s.GetContext(), pe.ID)
		s.NoError(err)
		s.NotEmpty(options)
		s.Equal(firstAction, options[0].Action)
	}
}

func (s *PaymentErrorServiceSuite) TestRetrySucceedsWhenProviderConfirms() {
	txn := s.pendingPayment(100)
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "request timed out",
	})
	s.NoError(err)

	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
		Currency:  txn.Currency,
	})

	result, err := s.service.ProcessDueRetries(s.GetContext(), time.Now().UTC().Add(2*time.Minute))
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Succeeded)

	updatedTxn, err := s.transactionService.Get(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusCompleted, updatedTxn.TxnStatus)

	updatedPe, err := s.service.Get(s.GetContext(), pe.ID)
	s.NoError(err)
	s.NotNil(updatedPe.ResolvedAt)
	s.Nil(updatedPe.NextRetryAt)
}

func (s *PaymentErrorServiceSuite) TestRetryFailureReschedulesWithBackoff() {
	txn := s.pendingPayment(100)
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "network error",
	})
	s.NoError(err)

	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   false,
		Message:   "still processing",
	})

	runAt := time.Now().UTC().Add(2 * time.Minute)
	result, err := s.service.ProcessDueRetries(s.GetContext(), runAt)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Failed)

	updated, err := s.service.Get(s.GetContext(), pe.ID)
	s.NoError(err)
	s.Equal(1, updated.RetryCount)
	// The delay doubles: the second attempt waits two minutes
	s.NotNil(updated.NextRetryAt)
	s.True(updated.NextRetryAt.Equal(runAt.Add(2 * time.Minute)))
	s.Nil(updated.ResolvedAt)
}

func (s *PaymentErrorServiceSuite) TestRetriesExhaustedFailsTransaction() {
	txn := s.pendingPayment(100)
	_, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "network error",
	})
	s.NoError(err)

	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   false,
		Message:   "no luck",
	})

	// Walk the error through all of its attempts
	runAt := time.Now().UTC()
	for i := 0; i < types.DefaultMaxRetries; i++ {
		runAt = runAt.Add(time.Hour)
		result, err := s.service.ProcessDueRetries(s.GetContext(), runAt)
		s.NoError(err)
		s.Equal(1, result.Processed)
		s.Equal(1, result.Failed)
	}

	errors, err := s.service.List(s.GetContext(), &types.PaymentErrorFilter{
		QueryFilter:   types.NewDefaultQueryFilter(),
		TransactionID: txn.ID,
	})
	s.NoError(err)
	s.Len(errors, 1)
	s.Equal(types.DefaultMaxRetries, errors[0].RetryCount)
	s.Nil(errors[0].NextRetryAt)
	s.Nil(errors[0].ResolvedAt)
	s.Contains(*errors[0].ResolutionNote, "automatic retries exhausted")

	// The transaction is failed and its hold released
	updatedTxn, err := s.transactionService.Get(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusFailed, updatedTxn.TxnStatus)

	summary, err := s.walletService.GetBalanceSummary(s.GetContext(), updatedTxn.WalletID)
	s.NoError(err)
	s.True(summary.Balance.Equal(summary.AvailableBalance))

	// Exhaustion escalates
	s.Len(s.GetNotifier().SentOfKind(notification.KindPaymentErrorEscalated), 1)

	// Nothing left to retry
	result, err := s.service.ProcessDueRetries(s.GetContext(), runAt.Add(time.Hour))
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *PaymentErrorServiceSuite) TestScheduleRetry() {
	txn := s.pendingPayment(100)
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "card declined",
	})
	s.NoError(err)
	// Declines are not retried automatically
	s.Nil(pe.NextRetryAt)

	armed, err := s.service.ScheduleRetry(s.GetContext(), pe.ID)
	s.NoError(err)
	s.NotNil(armed.NextRetryAt)
	s.Equal(1, armed.RetryCount)

	// The armed retry is picked up by the sweep
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
	})
	result, err := s.service.ProcessDueRetries(s.GetContext(), armed.NextRetryAt.Add(time.Second))
	s.NoError(err)
	s.Equal(1, result.Succeeded)
}

func (s *PaymentErrorServiceSuite) TestScheduleRetryGuards() {
	txn := s.pendingPayment(100)
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "card declined",
	})
	s.NoError(err)

	// Resolved errors cannot be re-armed
	_, err = s.service.Resolve(s.GetContext(), pe.ID, nil)
	s.NoError(err)
	_, err = s.service.ScheduleRetry(s.GetContext(), pe.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Errors with no transaction have nothing to retry
	orphan, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		Message: "network error",
	})
	s.NoError(err)
	_, err = s.service.ScheduleRetry(s.GetContext(), orphan.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentErrorServiceSuite) TestRetryResolvesWhenTransactionAlreadyFinal() {
	txn := s.pendingPayment(100)
	pe, err := s.service.Record(s.GetContext(), &dto.RecordPaymentErrorRequest{
		TransactionID: &txn.ID,
		Message:       "network error",
	})
	s.NoError(err)

	// The payment completed through another path in the meantime
	_, err = s.transactionService.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	result, err := s.service.ProcessDueRetries(s.GetContext(), time.Now().UTC().Add(2*time.Minute))
	s.NoError(err)
	s.Equal(1, result.Succeeded)

	updated, err := s.service.Get(s.GetContext(), pe.ID)
	s.NoError(err)
	s.NotNil(updated.ResolvedAt)
	// No provider call was needed
	s.Empty(s.GetProvider().VerifyCalls)
}
