package service

import (
	"fmt"
	"testing"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       TransactionService
	walletService WalletService
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newServiceParams(&s.BaseServiceTestSuite)
	s.service = NewTransactionService(params)
	s.walletService = NewWalletService(params)
}

func (s *TransactionServiceSuite) fundedWallet(amount int64) string {
	w, err := s.walletService.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    "user-1",
		ClusterID: "cluster-1",
	})
	s.NoError(err)
	if amount > 0 {
		_, err = s.walletService.Credit(s.GetContext(), w.ID, decimal.NewFromInt(amount))
		s.NoError(err)
	}
	return w.ID
}

func (s *TransactionServiceSuite) balances(walletID string) (decimal.Decimal, decimal.Decimal) {
	w, err := s.walletService.GetWallet(s.GetContext(), walletID)
	s.NoError(err)
	return w.Balance, w.AvailableBalance
}

func (s *TransactionServiceSuite) TestCreateOutboundPlacesHold() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(300),
	})
	s.NoError(err)
	s.Equal(types.TransactionStatusPending, txn.TxnStatus)
	s.NotEmpty(txn.TransactionNumber)
	s.Equal(txn.TransactionNumber, txn.Reference)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(1000)))
	s.True(available.Equal(decimal.NewFromInt(700)))
}

func (s *TransactionServiceSuite) TestCreateInboundPlacesNoHold() {
	walletID := s.fundedWallet(0)

	_, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeDeposit,
		Amount:   decimal.NewFromInt(300),
	})
	s.NoError(err)

	balance, available := s.balances(walletID)
	s.True(balance.IsZero())
	s.True(available.IsZero())
}

func (s *TransactionServiceSuite) TestCreateOutboundInsufficientFunds() {
	walletID := s.fundedWallet(100)

	_, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypePayment,
		Amount:   decimal.NewFromInt(200),
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))
}

func (s *TransactionServiceSuite) TestMarkCompletedSettlesHold() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(300),
	})
	s.NoError(err)

	completed, err := s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusCompleted, completed.TxnStatus)
	s.NotNil(completed.CompletedAt)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(700)))
	s.True(available.Equal(decimal.NewFromInt(700)))
}

func (s *TransactionServiceSuite) TestMarkCompletedCreditsInbound() {
	walletID := s.fundedWallet(0)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeDeposit,
		Amount:   decimal.NewFromInt(250),
	})
	s.NoError(err)

	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(250)))
	s.True(available.Equal(decimal.NewFromInt(250)))
}

func (s *TransactionServiceSuite) TestMarkFailedReleasesHold() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeTransfer,
		Amount:   decimal.NewFromInt(300),
	})
	s.NoError(err)

	failed, err := s.service.MarkFailed(s.GetContext(), txn.ID, "provider rejected transfer")
	s.NoError(err)
	s.Equal(types.TransactionStatusFailed, failed.TxnStatus)
	s.NotNil(failed.FailedAt)
	s.Equal("provider rejected transfer", *failed.FailureReason)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(1000)))
	s.True(available.Equal(decimal.NewFromInt(1000)))

	// Failed is terminal, so the hold cannot be released twice
	_, err = s.service.MarkFailed(s.GetContext(), txn.ID, "again")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	balance, available = s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(1000)))
	s.True(available.Equal(decimal.NewFromInt(1000)))
}

func (s *TransactionServiceSuite) TestCancelReleasesHold() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypePayment,
		Amount:   decimal.NewFromInt(400),
	})
	s.NoError(err)

	cancelled, err := s.service.Cancel(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusCancelled, cancelled.TxnStatus)

	_, available := s.balances(walletID)
	s.True(available.Equal(decimal.NewFromInt(1000)))
}

func (s *TransactionServiceSuite) TestInvalidTransitions() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(100),
	})
	s.NoError(err)

	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	// Completed transactions cannot fail or cancel
	_, err = s.service.MarkFailed(s.GetContext(), txn.ID, "too late")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.Cancel(s.GetContext(), txn.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TransactionServiceSuite) TestRepeatedTransitionIsNoOp() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(100),
	})
	s.NoError(err)

	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	// Second delivery of the same transition does not settle twice
	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	balance, _ := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(900)))
}

func (s *TransactionServiceSuite) TestRefundCreditsBack() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypePayment,
		Amount:   decimal.NewFromInt(300),
	})
	s.NoError(err)
	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	refunded, err := s.service.MarkRefunded(s.GetContext(), txn.ID)
	s.NoError(err)
	s.Equal(types.TransactionStatusRefunded, refunded.TxnStatus)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(1000)))
	s.True(available.Equal(decimal.NewFromInt(1000)))
}

func (s *TransactionServiceSuite) TestIdempotentCreateReplays() {
	walletID := s.fundedWallet(1000)
	key := "checkout-1"

	first, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID:       walletID,
		Type:           types.TransactionTypeWithdrawal,
		Amount:         decimal.NewFromInt(300),
		IdempotencyKey: &key,
	})
	s.NoError(err)

	second, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID:       walletID,
		Type:           types.TransactionTypeWithdrawal,
		Amount:         decimal.NewFromInt(300),
		IdempotencyKey: &key,
	})
	s.NoError(err)
	s.Equal(first.ID, second.ID)

	// Only one hold was placed
	_, available := s.balances(walletID)
	s.True(available.Equal(decimal.NewFromInt(700)))
}

func (s *TransactionServiceSuite) TestGetHistoryNewestFirst() {
	walletID := s.fundedWallet(1000)

	for i := 0; i < 3; i++ {
		_, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
			WalletID: walletID,
			Type:     types.TransactionTypeDeposit,
			Amount:   decimal.NewFromInt(int64(10 * (i + 1))),
		})
		s.NoError(err)
	}

	resp, err := s.service.GetHistory(s.GetContext(), walletID, nil)
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.Len(resp.Items, 3)
	for i := 1; i < len(resp.Items); i++ {
		s.False(resp.Items[i].CreatedAt.After(resp.Items[i-1].CreatedAt))
	}
}

func (s *TransactionServiceSuite) TestListFiltersByStatus() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(100),
	})
	s.NoError(err)
	_, err = s.service.MarkCompleted(s.GetContext(), txn.ID)
	s.NoError(err)

	_, err = s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID: walletID,
		Type:     types.TransactionTypeWithdrawal,
		Amount:   decimal.NewFromInt(50),
	})
	s.NoError(err)

	filter := types.NewTransactionFilter()
	filter.WalletID = walletID
	filter.TxStatus = lo.ToPtr(types.TransactionStatusCompleted)

	resp, err := s.service.List(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(types.TransactionStatusCompleted, resp.Items[0].TxnStatus)
}

func (s *TransactionServiceSuite) TestGetByReference() {
	walletID := s.fundedWallet(1000)

	txn, err := s.service.Create(s.GetContext(), &dto.CreateTransactionRequest{
		WalletID:  walletID,
		Type:      types.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(100),
		Reference: "psk_ref_123",
	})
	s.NoError(err)

	found, err := s.service.GetByReference(s.GetContext(), "psk_ref_123")
	s.NoError(err)
	s.Equal(txn.ID, found.ID)
}

func (s *TransactionServiceSuite) TestInitiateDepositStartsCheckout() {
	walletID := s.fundedWallet(0)

	resp, err := s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.NewFromInt(500),
		Email:  "resident@example.com",
	})
	s.NoError(err)
	s.NotEmpty(resp.TransactionID)
	s.NotEmpty(resp.Reference)
	s.Equal("https://checkout.test/"+resp.Reference, resp.AuthorizationURL)

	// The deposit is pending until the provider webhook confirms it
	txn, err := s.service.Get(s.GetContext(), resp.TransactionID)
	s.NoError(err)
	s.Equal(types.TransactionTypeDeposit, txn.Type)
	s.Equal(types.TransactionStatusPending, txn.TxnStatus)
	s.Equal(types.PaymentProviderPaystack, *txn.ProviderCode)

	calls := s.GetProvider().InitializeCalls
	s.Len(calls, 1)
	s.Equal(resp.Reference, calls[0].Reference)
	s.True(calls[0].Amount.Equal(decimal.NewFromInt(500)))
	s.Equal("resident@example.com", calls[0].Email)

	// No money moves at initiation
	balance, available := s.balances(walletID)
	s.True(balance.IsZero())
	s.True(available.IsZero())
}

func (s *TransactionServiceSuite) TestInitiateDepositCheckoutFailureCancels() {
	walletID := s.fundedWallet(0)
	s.GetProvider().FailInitialize = true

	_, err := s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.NewFromInt(500),
		Email:  "resident@example.com",
	})
	s.Error(err)
	s.True(ierr.IsProvider(err))

	// The orphaned deposit was withdrawn
	txns, err := s.service.List(s.GetContext(), &types.TransactionFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		WalletID:    walletID,
	})
	s.NoError(err)
	s.Len(txns.Items, 1)
	s.Equal(types.TransactionStatusCancelled, txns.Items[0].TxnStatus)
}

func (s *TransactionServiceSuite) TestInitiateDepositRequiresActiveWallet() {
	walletID := s.fundedWallet(0)
	s.NoError(s.walletService.Suspend(s.GetContext(), walletID))

	_, err := s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.NewFromInt(500),
		Email:  "resident@example.com",
	})
	s.Error(err)
	s.True(ierr.IsWalletInactive(err))
	s.Empty(s.GetProvider().InitializeCalls)
}

func (s *TransactionServiceSuite) TestInitiateDepositValidation() {
	walletID := s.fundedWallet(0)

	_, err := s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.Zero,
		Email:  "resident@example.com",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TransactionServiceSuite) TestDepositCompletesThroughWebhook() {
	walletID := s.fundedWallet(0)

	resp, err := s.service.InitiateDeposit(s.GetContext(), walletID, &dto.InitiateDepositRequest{
		Amount: decimal.NewFromInt(500),
		Email:  "resident@example.com",
	})
	s.NoError(err)

	s.GetProvider().StubVerification(resp.Reference, &gateway.VerifyPaymentResponse{
		Reference: resp.Reference,
		Success:   true,
		Amount:    decimal.NewFromInt(500),
	})

	webhookService := NewWebhookService(newServiceParams(&s.BaseServiceTestSuite))
	payload := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"status":"success"}}`, resp.Reference))
	result, err := webhookService.Process(s.GetContext(), types.PaymentProviderPaystack, payload, "sig")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal(resp.TransactionID, result.TransactionID)

	balance, available := s.balances(walletID)
	s.True(balance.Equal(decimal.NewFromInt(500)))
	s.True(available.Equal(decimal.NewFromInt(500)))
}
