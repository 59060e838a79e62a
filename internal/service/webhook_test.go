package service

import (
	"fmt"
	"testing"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service            WebhookService
	transactionService TransactionService
	walletService      WalletService
	errorService       PaymentErrorService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newServiceParams(&s.BaseServiceTestSuite)
	s.service = NewWebhookService(params)
	s.transactionService = NewTransactionService(params)
	s.walletService = NewWalletService(params)
	s.errorService = NewPaymentErrorService(params)
}

func (s *WebhookServiceSuite) pendingDeposit(amount int64) *transaction.Transaction {
	w, err := s.walletService.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    "user-1",
		ClusterID: "cluster-1",
	})
	s.NoError(err)

	txn, err := s.transactionService.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID:     w.ID,
		Type:         types.TransactionTypeDeposit,
		Amount:       decimal.NewFromInt(amount),
		ProviderCode: lo.ToPtr(types.PaymentProviderPaystack),
	})
	s.NoError(err)
	return txn
}

func chargeSuccessPayload(reference string) []byte {
	return []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"status":"success"}}`, reference))
}

func (s *WebhookServiceSuite) TestRejectsBadSignatureBeforeParsing() {
	s.GetProvider().ValidSignature = false

	// The payload is not even valid JSON; the signature check comes first
	_, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack, []byte("not json"), "sig")
	s.Error(err)
	s.True(ierr.IsWebhookSignature(err))
}

func (s *WebhookServiceSuite) TestRejectsUnknownProvider() {
	_, err := s.service.Process(s.GetContext(), types.PaymentProvider("stripe"), []byte(`{}`), "sig")
	s.Error(err)
	s.True(ierr.IsUnsupportedProvider(err))
}

func (s *WebhookServiceSuite) TestRejectsMalformedPayload() {
	_, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack, []byte("not json"), "sig")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *WebhookServiceSuite) TestIgnoresUnhandledEvent() {
	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		[]byte(`{"event":"subscription.create","data":{}}`), "sig")
	s.NoError(err)
	s.False(result.Handled)
	s.Equal("event not handled", result.Reason)
}

func (s *WebhookServiceSuite) TestAcknowledgesMissingReference() {
	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		[]byte(`{"event":"charge.success","data":{}}`), "sig")
	s.NoError(err)
	s.False(result.Handled)
	s.Equal("event has no reference", result.Reason)
}

func (s *WebhookServiceSuite) TestAcknowledgesUnknownReference() {
	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload("no-such-ref"), "sig")
	s.NoError(err)
	s.False(result.Handled)
	s.Equal("unknown transaction reference", result.Reason)
}

func (s *WebhookServiceSuite) TestChargeSuccessCompletesDeposit() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
		Currency:  txn.Currency,
	})

	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(txn.ID, result.TransactionID)
	s.Equal(string(types.TransactionStatusCompleted), result.Status)

	// The deposit landed in the wallet
	summary, err := s.walletService.GetBalanceSummary(s.GetContext(), txn.WalletID)
	s.NoError(err)
	s.True(summary.Balance.Equal(decimal.NewFromInt(500)))
}

func (s *WebhookServiceSuite) TestRedeliveryOfFinalTransactionIsNoOp() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
	})

	_, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)

	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal("transaction already final", result.Reason)

	// The balance did not move twice
	summary, err := s.walletService.GetBalanceSummary(s.GetContext(), txn.WalletID)
	s.NoError(err)
	s.True(summary.Balance.Equal(decimal.NewFromInt(500)))

	// Verification happened only for the first delivery
	s.Len(s.GetProvider().VerifyCalls, 1)
}

func (s *WebhookServiceSuite) TestAmountMismatchFailsTransaction() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    decimal.NewFromInt(50),
	})

	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(string(types.TransactionStatusFailed), result.Status)

	updated, err := s.transactionService.Get(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusFailed, updated.TxnStatus)

	// No money moved
	summary, err := s.walletService.GetBalanceSummary(s.GetContext(), txn.WalletID)
	s.NoError(err)
	s.True(summary.Balance.IsZero())

	// A payment error was recorded for follow-up
	errors, err := s.errorService.List(s.GetContext(), &types.PaymentErrorFilter{
		QueryFilter:   types.NewDefaultQueryFilter(),
		TransactionID: txn.ID,
	})
	s.NoError(err)
	s.Len(errors, 1)
}

func (s *WebhookServiceSuite) TestCurrencyMismatchFailsTransaction() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
		Currency:  "USD",
	})

	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(string(types.TransactionStatusFailed), result.Status)
	s.Equal("verified currency does not match transaction currency", result.Reason)

	// No money moved
	summary, err := s.walletService.GetBalanceSummary(s.GetContext(), txn.WalletID)
	s.NoError(err)
	s.True(summary.Balance.IsZero())
}

func (s *WebhookServiceSuite) TestVerificationFailureFailsTransaction() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   false,
		Message:   "charge was reversed",
	})

	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack,
		chargeSuccessPayload(txn.Reference), "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(string(types.TransactionStatusFailed), result.Status)
	s.Equal("charge was reversed", result.Reason)
}

func (s *WebhookServiceSuite) TestChargeFailedEventFailsWithoutVerification() {
	txn := s.pendingDeposit(500)

	payload := []byte(fmt.Sprintf(`{"event":"charge.failed","data":{"reference":%q,"status":"failed"}}`, txn.Reference))
	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack, payload, "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(string(types.TransactionStatusFailed), result.Status)

	// Failure events are trusted as is
	s.Empty(s.GetProvider().VerifyCalls)
}

func (s *WebhookServiceSuite) TestFlutterwaveReferenceField() {
	txn := s.pendingDeposit(500)
	s.GetProvider().StubVerification(txn.Reference, &gateway.VerifyPaymentResponse{
		Reference: txn.Reference,
		Success:   true,
		Amount:    txn.Amount,
	})

	// Flutterwave events carry the merchant reference in data.tx_ref
	payload := []byte(fmt.Sprintf(`{"event":"charge.completed","data":{"tx_ref":%q,"status":"successful"}}`, txn.Reference))
	result, err := s.service.Process(s.GetContext(), types.PaymentProviderPaystack, payload, "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(string(types.TransactionStatusCompleted), result.Status)
}
