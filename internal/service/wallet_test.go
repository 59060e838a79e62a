package service

import (
	"testing"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WalletService
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewWalletService(newServiceParams(&s.BaseServiceTestSuite))
}

// newServiceParams builds a ServiceParams bundle backed by the suite's
// in-memory stores and mocks.
func newServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Cache:                s.GetCache(),
		WalletRepo:           stores.WalletRepo,
		TransactionRepo:      stores.TransactionRepo,
		BillRepo:             stores.BillRepo,
		RecurringPaymentRepo: stores.RecurringPaymentRepo,
		PaymentErrorRepo:     stores.PaymentErrorRepo,
		GatewayFactory:       s.GetGatewayFactory(),
		Notifier:             s.GetNotifier(),
	}
}

func (s *WalletServiceSuite) createWallet(userID, clusterID string) *wallet.Wallet {
	w, err := s.service.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    userID,
		ClusterID: clusterID,
	})
	s.NoError(err)
	return w
}

func (s *WalletServiceSuite) TestCreateWallet() {
	w := s.createWallet("user-1", "cluster-1")

	s.NotEmpty(w.ID)
	s.NotEmpty(w.WalletNumber)
	s.Equal(types.DefaultCurrency, w.Currency)
	s.Equal(types.WalletStatusActive, w.WalletStatus)
	s.True(w.Balance.IsZero())
	s.True(w.AvailableBalance.IsZero())
}

func (s *WalletServiceSuite) TestCreateWalletDuplicate() {
	s.createWallet("user-1", "cluster-1")

	_, err := s.service.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    "user-1",
		ClusterID: "cluster-1",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// Same user in a different cluster is fine
	_, err = s.service.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    "user-1",
		ClusterID: "cluster-2",
	})
	s.NoError(err)
}

func (s *WalletServiceSuite) TestCreditAndDebit() {
	w := s.createWallet("user-1", "cluster-1")

	updated, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(1000))
	s.NoError(err)
	s.True(updated.Balance.Equal(decimal.NewFromInt(1000)))
	s.True(updated.AvailableBalance.Equal(decimal.NewFromInt(1000)))

	updated, err = s.service.Debit(s.GetContext(), w.ID, decimal.NewFromInt(400))
	s.NoError(err)
	s.True(updated.Balance.Equal(decimal.NewFromInt(600)))
	s.True(updated.AvailableBalance.Equal(decimal.NewFromInt(600)))
}

func (s *WalletServiceSuite) TestDebitInsufficientBalance() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(100))
	s.NoError(err)

	_, err = s.service.Debit(s.GetContext(), w.ID, decimal.NewFromInt(101))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInsufficientBalance))
}

func (s *WalletServiceSuite) TestCreditRejectsNonPositiveAmount() {
	w := s.createWallet("user-1", "cluster-1")

	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.Zero)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrValidation))

	_, err = s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(-5))
	s.Error(err)
}

func (s *WalletServiceSuite) TestFreezeHoldsAvailableOnly() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)

	updated, err := s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(200))
	s.NoError(err)
	s.True(updated.Balance.Equal(decimal.NewFromInt(500)))
	s.True(updated.AvailableBalance.Equal(decimal.NewFromInt(300)))
	s.True(updated.HeldBalance().Equal(decimal.NewFromInt(200)))
}

func (s *WalletServiceSuite) TestFreezeInsufficientAvailable() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)
	_, err = s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(400))
	s.NoError(err)

	// Only 100 available even though the balance is 500
	_, err = s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(200))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInsufficientBalance))
}

func (s *WalletServiceSuite) TestSettleConsumesHold() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)
	_, err = s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(200))
	s.NoError(err)

	updated, err := s.service.Settle(s.GetContext(), w.ID, decimal.NewFromInt(200))
	s.NoError(err)
	s.True(updated.Balance.Equal(decimal.NewFromInt(300)))
	s.True(updated.AvailableBalance.Equal(decimal.NewFromInt(300)))
	s.True(updated.HeldBalance().IsZero())
}

func (s *WalletServiceSuite) TestSettleWithoutHold() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)

	_, err = s.service.Settle(s.GetContext(), w.ID, decimal.NewFromInt(100))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))
}

func (s *WalletServiceSuite) TestUnfreezeClampsToBalance() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)
	_, err = s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(100))
	s.NoError(err)

	// Releasing more than was held clamps available at balance
	updated, err := s.service.Unfreeze(s.GetContext(), w.ID, decimal.NewFromInt(300))
	s.NoError(err)
	s.True(updated.AvailableBalance.Equal(updated.Balance))
}

func (s *WalletServiceSuite) TestSuspendBlocksOperations() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)

	s.NoError(s.service.Suspend(s.GetContext(), w.ID))

	_, err = s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(10))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrWalletInactive))

	_, err = s.service.Debit(s.GetContext(), w.ID, decimal.NewFromInt(10))
	s.Error(err)

	s.NoError(s.service.Reactivate(s.GetContext(), w.ID))
	_, err = s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(10))
	s.NoError(err)
}

func (s *WalletServiceSuite) TestReactivateRequiresSuspended() {
	w := s.createWallet("user-1", "cluster-1")
	err := s.service.Reactivate(s.GetContext(), w.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))
}

func (s *WalletServiceSuite) TestCloseRequiresZeroBalance() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(50))
	s.NoError(err)

	err = s.service.Close(s.GetContext(), w.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))

	_, err = s.service.Debit(s.GetContext(), w.ID, decimal.NewFromInt(50))
	s.NoError(err)
	s.NoError(s.service.Close(s.GetContext(), w.ID))

	// Closing twice is a no-op
	s.NoError(s.service.Close(s.GetContext(), w.ID))
}

func (s *WalletServiceSuite) TestSetAndVerifyPin() {
	w := s.createWallet("user-1", "cluster-1")

	err := s.service.SetPin(s.GetContext(), w.ID, &dto.SetPinRequest{Pin: "4321"})
	s.NoError(err)

	stored, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.NotNil(stored.PinHash)
	s.NotEqual("4321", *stored.PinHash)

	s.NoError(s.service.VerifyPin(s.GetContext(), w.ID, "4321"))

	err = s.service.VerifyPin(s.GetContext(), w.ID, "9999")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrPermissionDenied))
}

func (s *WalletServiceSuite) TestVerifyPinWithoutPinSet() {
	w := s.createWallet("user-1", "cluster-1")
	err := s.service.VerifyPin(s.GetContext(), w.ID, "4321")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))
}

func (s *WalletServiceSuite) TestGetBalanceSummary() {
	w := s.createWallet("user-1", "cluster-1")
	_, err := s.service.Credit(s.GetContext(), w.ID, decimal.NewFromInt(500))
	s.NoError(err)
	_, err = s.service.Freeze(s.GetContext(), w.ID, decimal.NewFromInt(150))
	s.NoError(err)

	summary, err := s.service.GetBalanceSummary(s.GetContext(), w.ID)
	s.NoError(err)
	s.True(summary.Balance.Equal(decimal.NewFromInt(500)))
	s.True(summary.AvailableBalance.Equal(decimal.NewFromInt(350)))
	s.True(summary.HeldBalance.Equal(decimal.NewFromInt(150)))
}
