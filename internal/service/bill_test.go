package service

import (
	"testing"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillServiceSuite struct {
	testutil.BaseServiceTestSuite
	service         BillService
	walletService   WalletService
	treasuryService TreasuryService
}

func TestBillService(t *testing.T) {
	suite.Run(t, new(BillServiceSuite))
}

func (s *BillServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newServiceParams(&s.BaseServiceTestSuite)
	s.service = NewBillService(params)
	s.walletService = NewWalletService(params)
	s.treasuryService = NewTreasuryService(params)
}

func (s *BillServiceSuite) fundPayerWallet(userID, clusterID string, amount int64) string {
	w, err := s.walletService.CreateWallet(s.GetContext(), &dto.CreateWalletRequest{
		UserID:    userID,
		ClusterID: clusterID,
	})
	s.NoError(err)
	_, err = s.walletService.Credit(s.GetContext(), w.ID, decimal.NewFromInt(amount))
	s.NoError(err)
	return w.ID
}

func (s *BillServiceSuite) createBill(amount int64, due time.Time, draft bool) *bill.Bill {
	b, err := s.service.Create(s.GetContext(), &dto.CreateBillRequest{
		ClusterID: "cluster-1",
		UserID:    "user-1",
		Type:      types.BillTypeMaintenance,
		Title:     "Monthly maintenance",
		Amount:    decimal.NewFromInt(amount),
		DueDate:   due,
		Draft:     draft,
	})
	s.NoError(err)
	return b
}

func (s *BillServiceSuite) TestCreateBill() {
	b := s.createBill(500, s.GetNow().AddDate(0, 0, 7), false)

	s.NotEmpty(b.ID)
	s.NotEmpty(b.BillNumber)
	s.Equal(types.BillStatusPending, b.BillStatus)
	s.True(b.PaidAmount.IsZero())
}

func (s *BillServiceSuite) TestDraftLifecycle() {
	b := s.createBill(500, s.GetNow().AddDate(0, 0, 7), true)
	s.Equal(types.BillStatusDraft, b.BillStatus)

	// Drafts are not payable
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	_, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.Error(err)
	s.True(ierr.IsBillNotPayable(err))

	issued, err := s.service.Issue(s.GetContext(), b.ID, false)
	s.NoError(err)
	s.Equal(types.BillStatusPending, issued.BillStatus)

	// Issuing twice is rejected
	_, err = s.service.Issue(s.GetContext(), b.ID, false)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *BillServiceSuite) TestAcknowledgmentFlow() {
	b := s.createBill(500, s.GetNow().AddDate(0, 0, 7), true)

	issued, err := s.service.Issue(s.GetContext(), b.ID, true)
	s.NoError(err)
	s.Equal(types.BillStatusPendingAcknowledgment, issued.BillStatus)

	acked, err := s.service.Acknowledge(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.BillStatusAcknowledged, acked.BillStatus)

	// Acknowledged bills accept payments
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	paid, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.NoError(err)
	s.Equal(types.BillStatusPaid, paid.BillStatus)
}

func (s *BillServiceSuite) TestPartialThenFullPayment() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(600, s.GetNow().AddDate(0, 0, 7), false)

	partial, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(200),
	})
	s.NoError(err)
	s.Equal(types.BillStatusPartiallyPaid, partial.BillStatus)
	s.True(partial.PaidAmount.Equal(decimal.NewFromInt(200)))
	s.True(partial.OutstandingAmount().Equal(decimal.NewFromInt(400)))

	full, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(400),
	})
	s.NoError(err)
	s.Equal(types.BillStatusPaid, full.BillStatus)
	s.NotNil(full.PaidAt)
}

func (s *BillServiceSuite) TestPaymentExceedingOutstanding() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(300, s.GetNow().AddDate(0, 0, 7), false)

	_, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(301),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillServiceSuite) TestPaymentDebitsWalletAndCreditsTreasury() {
	walletID := s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(400, s.GetNow().AddDate(0, 0, 7), false)

	_, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(400),
	})
	s.NoError(err)

	payer, err := s.walletService.GetWallet(s.GetContext(), walletID)
	s.NoError(err)
	s.True(payer.Balance.Equal(decimal.NewFromInt(600)))

	treasury, err := s.treasuryService.GetOrCreate(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(treasury.Balance.Equal(decimal.NewFromInt(400)))
}

func (s *BillServiceSuite) TestPaymentIdempotencyReplay() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(600, s.GetNow().AddDate(0, 0, 7), false)
	key := "pay-600-once"

	first, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount:         decimal.NewFromInt(300),
		IdempotencyKey: &key,
	})
	s.NoError(err)
	s.True(first.PaidAmount.Equal(decimal.NewFromInt(300)))

	// Replaying the same key does not move money or bill state again
	second, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount:         decimal.NewFromInt(300),
		IdempotencyKey: &key,
	})
	s.NoError(err)
	s.True(second.PaidAmount.Equal(decimal.NewFromInt(300)))
}

func (s *BillServiceSuite) TestDisputeBlocksPaymentUntilResolved() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(500, s.GetNow().AddDate(0, 0, 7), false)

	disputed, err := s.service.Dispute(s.GetContext(), b.ID, &dto.DisputeBillRequest{
		Reason: "amount is wrong",
	})
	s.NoError(err)
	s.Equal(types.BillStatusDisputed, disputed.BillStatus)
	s.Equal("amount is wrong", *disputed.DisputeReason)

	_, err = s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.Error(err)
	s.True(ierr.IsBillNotPayable(err))

	resolved, err := s.service.ResolveDispute(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.BillStatusPending, resolved.BillStatus)
	s.Nil(resolved.DisputeReason)

	_, err = s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.NoError(err)
}

func (s *BillServiceSuite) TestResolveDisputePastDueGoesOverdue() {
	b := s.createBill(500, s.GetNow().AddDate(0, 0, -2), false)

	_, err := s.service.Dispute(s.GetContext(), b.ID, &dto.DisputeBillRequest{Reason: "contested"})
	s.NoError(err)

	resolved, err := s.service.ResolveDispute(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.BillStatusOverdue, resolved.BillStatus)
}

func (s *BillServiceSuite) TestCancelBill() {
	b := s.createBill(500, s.GetNow().AddDate(0, 0, 7), false)

	cancelled, err := s.service.Cancel(s.GetContext(), b.ID)
	s.NoError(err)
	s.Equal(types.BillStatusCancelled, cancelled.BillStatus)

	_, err = s.service.Cancel(s.GetContext(), b.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *BillServiceSuite) TestCheckAndUpdateOverdue() {
	pastDue := s.createBill(500, s.GetNow().AddDate(0, 0, -1), false)
	future := s.createBill(500, s.GetNow().AddDate(0, 0, 7), false)

	result, err := s.service.CheckAndUpdateOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Succeeded)

	updated, err := s.service.Get(s.GetContext(), pastDue.ID)
	s.NoError(err)
	s.Equal(types.BillStatusOverdue, updated.BillStatus)

	untouched, err := s.service.Get(s.GetContext(), future.ID)
	s.NoError(err)
	s.Equal(types.BillStatusPending, untouched.BillStatus)

	// A second sweep finds nothing: already overdue bills are excluded
	result, err = s.service.CheckAndUpdateOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *BillServiceSuite) TestOverdueBillRemainsPayable() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)
	b := s.createBill(500, s.GetNow().AddDate(0, 0, -1), false)

	_, err := s.service.CheckAndUpdateOverdue(s.GetContext())
	s.NoError(err)

	paid, err := s.service.ProcessPayment(s.GetContext(), b.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.NoError(err)
	s.Equal(types.BillStatusPaid, paid.BillStatus)
}

func (s *BillServiceSuite) TestSendDueReminders() {
	s.createBill(500, s.GetNow().AddDate(0, 0, 1), false)
	s.createBill(500, s.GetNow().AddDate(0, 0, 60), false)

	result, err := s.service.SendDueReminders(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Succeeded)
	s.Len(s.GetNotifier().SentOfKind(notification.KindBillDueReminder), 1)
}

func (s *BillServiceSuite) TestSendDueRemindersNotifierFailureIsolated() {
	s.createBill(500, s.GetNow().AddDate(0, 0, 1), false)
	s.GetNotifier().FailNext = true

	result, err := s.service.SendDueReminders(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Failed)
}

func (s *BillServiceSuite) TestGetSummary() {
	s.fundPayerWallet("user-1", "cluster-1", 1000)

	paidBill := s.createBill(300, s.GetNow().AddDate(0, 0, 7), false)
	_, err := s.service.ProcessPayment(s.GetContext(), paidBill.ID, &dto.PayBillRequest{
		Amount: decimal.NewFromInt(300),
	})
	s.NoError(err)

	s.createBill(200, s.GetNow().AddDate(0, 0, 7), false)
	draft := s.createBill(999, s.GetNow().AddDate(0, 0, 7), true)
	_ = draft

	summary, err := s.service.GetSummary(s.GetContext(), "cluster-1")
	s.NoError(err)
	s.True(summary.TotalBilled.Equal(decimal.NewFromInt(500)))
	s.True(summary.TotalPaid.Equal(decimal.NewFromInt(300)))
	s.True(summary.TotalOutstanding.Equal(decimal.NewFromInt(200)))
	s.Equal(1, summary.CountByStatus[types.BillStatusPaid])
	s.Equal(1, summary.CountByStatus[types.BillStatusPending])
	// Drafts are counted but never inflate totals
	s.Equal(1, summary.CountByStatus[types.BillStatusDraft])
}
