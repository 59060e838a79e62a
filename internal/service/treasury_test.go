package service

import (
	"testing"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TreasuryServiceSuite struct {
	testutil.BaseServiceTestSuite
	service            TreasuryService
	transactionService TransactionService
}

func TestTreasuryService(t *testing.T) {
	suite.Run(t, new(TreasuryServiceSuite))
}

func (s *TreasuryServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newServiceParams(&s.BaseServiceTestSuite)
	s.service = NewTreasuryService(params)
	s.transactionService = NewTransactionService(params)
}

func (s *TreasuryServiceSuite) TestGetOrCreate() {
	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.Equal("cluster-1", w.UserID)
	s.Equal("cluster-1", w.ClusterID)
	s.True(w.Balance.IsZero())

	// Second call returns the same wallet
	again, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.Equal(w.ID, again.ID)

	_, err = s.service.GetOrCreate(s.GetContext(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TreasuryServiceSuite) TestCreditFromBillPayment() {
	err := s.service.CreditFromBillPayment(s.GetContext(), "cluster-1", "bill-1", decimal.NewFromInt(250))
	s.NoError(err)

	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(250)))

	txns, err := s.transactionService.List(s.GetContext(), &types.TransactionFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		WalletID:    w.ID,
	})
	s.NoError(err)
	s.Len(txns.Items, 1)
	s.Equal(types.TransactionTypeDeposit, txns.Items[0].Type)
	s.Equal(types.TransactionStatusCompleted, txns.Items[0].TxnStatus)
	s.Equal("bill_payment", txns.Items[0].Metadata["source"])
	s.Equal("bill-1", *txns.Items[0].BillID)

	err = s.service.CreditFromBillPayment(s.GetContext(), "cluster-1", "bill-1", decimal.Zero)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TreasuryServiceSuite) TestAddManualCredit() {
	err := s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(100),
		Note:   "cash collected at the gate",
	})
	s.NoError(err)

	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(100)))

	txns, err := s.transactionService.List(s.GetContext(), &types.TransactionFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		WalletID:    w.ID,
	})
	s.NoError(err)
	s.Len(txns.Items, 1)
	s.Equal("manual_credit", txns.Items[0].Metadata["source"])
}

func (s *TreasuryServiceSuite) TestTransferOut() {
	err := s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(1000),
	})
	s.NoError(err)

	txnID, err := s.service.TransferOut(s.GetContext(), "cluster-1", &dto.TransferOutRequest{
		Amount:        decimal.NewFromInt(400),
		AccountNumber: "0123456789",
		BankCode:      "058",
		AccountName:   "Cluster One Estate",
		Narration:     "August payout",
	})
	s.NoError(err)
	s.NotEmpty(txnID)

	// The account was resolved, then the provider saw the recipient
	// and the transfer
	provider := s.GetProvider()
	s.Equal([]string{"0123456789"}, provider.VerifyAccountCalls)
	s.Len(provider.RecipientCalls, 1)
	s.Equal("0123456789", provider.RecipientCalls[0].AccountNumber)
	s.Equal("Test Account", provider.RecipientCalls[0].Name)
	s.Len(provider.TransferCalls, 1)
	s.True(provider.TransferCalls[0].Amount.Equal(decimal.NewFromInt(400)))
	s.Equal("rcp_0123456789", provider.TransferCalls[0].RecipientCode)

	// Funds are held until the provider confirms settlement
	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(1000)))
	s.True(w.AvailableBalance.Equal(decimal.NewFromInt(600)))

	txn, err := s.transactionService.Get(s.GetContext(), txnID)
	s.NoError(err)
	s.Equal(types.TransactionTypeTransfer, txn.Type)
	s.Equal(types.TransactionStatusPending, txn.TxnStatus)

	// Settlement confirmation releases the held funds for good
	_, err = s.transactionService.MarkCompleted(s.GetContext(), txnID)
	s.NoError(err)

	w, err = s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(600)))
	s.True(w.AvailableBalance.Equal(decimal.NewFromInt(600)))
}

func (s *TreasuryServiceSuite) TestTransferOutProviderFailureReleasesHold() {
	err := s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(1000),
	})
	s.NoError(err)

	s.GetProvider().FailTransfers = true

	_, err = s.service.TransferOut(s.GetContext(), "cluster-1", &dto.TransferOutRequest{
		Amount:        decimal.NewFromInt(400),
		AccountNumber: "0123456789",
		BankCode:      "058",
	})
	s.Error(err)
	s.True(ierr.IsProvider(err))

	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(1000)))
	s.True(w.AvailableBalance.Equal(decimal.NewFromInt(1000)))

	// The failed transfer is on the ledger
	txns, err := s.transactionService.List(s.GetContext(), &types.TransactionFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		WalletID:    w.ID,
		Type:        lo.ToPtr(types.TransactionTypeTransfer),
	})
	s.NoError(err)
	s.Len(txns.Items, 1)
	s.Equal(types.TransactionStatusFailed, txns.Items[0].TxnStatus)
	s.NotNil(txns.Items[0].FailureReason)
}

func (s *TreasuryServiceSuite) TestTransferOutUnresolvableAccountReleasesHold() {
	err := s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(1000),
	})
	s.NoError(err)

	s.GetProvider().FailAccountVerification = true

	_, err = s.service.TransferOut(s.GetContext(), "cluster-1", &dto.TransferOutRequest{
		Amount:        decimal.NewFromInt(400),
		AccountNumber: "0000000000",
		BankCode:      "058",
	})
	s.Error(err)
	s.True(ierr.IsProvider(err))

	// The transfer died at account resolution
	s.Empty(s.GetProvider().RecipientCalls)
	s.Empty(s.GetProvider().TransferCalls)

	w, err := s.service.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(1000)))
	s.True(w.AvailableBalance.Equal(decimal.NewFromInt(1000)))
}

func (s *TreasuryServiceSuite) TestTransferOutInsufficientFunds() {
	err := s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(100),
	})
	s.NoError(err)

	_, err = s.service.TransferOut(s.GetContext(), "cluster-1", &dto.TransferOutRequest{
		Amount:        decimal.NewFromInt(400),
		AccountNumber: "0123456789",
		BankCode:      "058",
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	// No provider call was made
	s.Empty(s.GetProvider().TransferCalls)
}

func (s *TreasuryServiceSuite) TestGetRevenueSummary() {
	// Bill income counts, manual credits do not
	s.NoError(s.service.CreditFromBillPayment(s.GetContext(), "cluster-1", "bill-1", decimal.NewFromInt(300)))
	s.NoError(s.service.CreditFromBillPayment(s.GetContext(), "cluster-1", "bill-2", decimal.NewFromInt(200)))
	s.NoError(s.service.AddManualCredit(s.GetContext(), "cluster-1", &dto.ManualCreditRequest{
		Amount: decimal.NewFromInt(999),
	}))

	summary, err := s.service.GetRevenueSummary(s.GetContext(), "cluster-1", 7)
	s.NoError(err)
	s.Equal("cluster-1", summary.ClusterID)
	s.Equal(7, summary.Days)
	s.True(summary.Total.Equal(decimal.NewFromInt(500)))
	s.Len(summary.Daily, 1)
	s.True(summary.Daily[0].Amount.Equal(decimal.NewFromInt(500)))
}

func (s *TreasuryServiceSuite) TestGetRevenueSummaryDefaultsWindow() {
	summary, err := s.service.GetRevenueSummary(s.GetContext(), "cluster-1", 0)
	s.NoError(err)
	s.Equal(30, summary.Days)
	s.True(summary.Total.IsZero())
	s.Empty(summary.Daily)
}

func (s *TreasuryServiceSuite) TestListBanksCachesPerProvider() {
	banks, err := s.service.ListBanks(s.GetContext(), nil)
	s.NoError(err)
	s.Len(banks, 1)
	s.Equal("Test Bank", banks[0].Name)
	s.Equal(1, s.GetProvider().ListBankCalls)

	// Second call is served from cache
	again, err := s.service.ListBanks(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(banks, again)
	s.Equal(1, s.GetProvider().ListBankCalls)

	_, err = s.service.ListBanks(s.GetContext(), lo.ToPtr(types.PaymentProvider("stripe")))
	s.Error(err)
	s.True(ierr.IsUnsupportedProvider(err))
}

func (s *TreasuryServiceSuite) TestResolveAccount() {
	details, err := s.service.ResolveAccount(s.GetContext(), nil, "0123456789", "001")
	s.NoError(err)
	s.Equal("0123456789", details.AccountNumber)
	s.Equal("Test Account", details.AccountName)

	_, err = s.service.ResolveAccount(s.GetContext(), nil, "", "001")
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.ResolveAccount(s.GetContext(), nil, "0123456789", "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
