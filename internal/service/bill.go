package service

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// BillService owns the bill lifecycle from draft through payment.
// ProcessPayment debits the payer's wallet and credits the cluster
// treasury best-effort; the batch operations run with per-record
// isolation so one bad bill never aborts a run.
type BillService interface {
	Create(ctx context.Context, req *dto.CreateBillRequest) (*bill.Bill, error)
	Get(ctx context.Context, id string) (*bill.Bill, error)
	GetByNumber(ctx context.Context, number string) (*bill.Bill, error)
	List(ctx context.Context, filter *types.BillFilter) ([]*bill.Bill, error)
	GetSummary(ctx context.Context, clusterID string) (*dto.BillSummary, error)

	Issue(ctx context.Context, id string, requireAcknowledgment bool) (*bill.Bill, error)
	Acknowledge(ctx context.Context, id string) (*bill.Bill, error)
	Dispute(ctx context.Context, id string, req *dto.DisputeBillRequest) (*bill.Bill, error)
	ResolveDispute(ctx context.Context, id string) (*bill.Bill, error)
	Cancel(ctx context.Context, id string) (*bill.Bill, error)

	ProcessPayment(ctx context.Context, id string, req *dto.PayBillRequest) (*bill.Bill, error)

	CheckAndUpdateOverdue(ctx context.Context) (*dto.BatchResult, error)
	SendDueReminders(ctx context.Context) (*dto.BatchResult, error)
}

type billService struct {
	ServiceParams
	transactionService TransactionService
	treasuryService    TreasuryService
}

// NewBillService creates a new bill service
func NewBillService(params ServiceParams) BillService {
	return &billService{
		ServiceParams:      params,
		transactionService: NewTransactionService(params),
		treasuryService:    NewTreasuryService(params),
	}
}

func (s *billService) Create(ctx context.Context, req *dto.CreateBillRequest) (*bill.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := req.ToBill(ctx)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.BillRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Infow("created bill",
		"bill_id", b.ID,
		"bill_number", b.BillNumber,
		"cluster_id", b.ClusterID,
		"user_id", b.UserID,
		"amount", b.Amount,
		"bill_status", b.BillStatus,
	)
	return b, nil
}

func (s *billService) Get(ctx context.Context, id string) (*bill.Bill, error) {
	return s.BillRepo.Get(ctx, id)
}

func (s *billService) GetByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return s.BillRepo.GetByNumber(ctx, number)
}

func (s *billService) List(ctx context.Context, filter *types.BillFilter) ([]*bill.Bill, error) {
	if filter == nil {
		filter = types.NewBillFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.BillRepo.List(ctx, filter)
}

// transition moves a bill between lifecycle states
func (s *billService) transition(ctx context.Context, id string, allowed []types.BillStatus, target types.BillStatus, apply func(b *bill.Bill)) (*bill.Bill, error) {
	b, err := s.BillRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ok := false
	for _, a := range allowed {
		if b.BillStatus == a {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ierr.NewError("invalid bill status transition").
			WithHintf("Cannot move bill from %s to %s", b.BillStatus, target).
			WithReportableDetails(map[string]any{
				"bill_id":   b.ID,
				"current":   b.BillStatus,
				"requested": target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	b.BillStatus = target
	b.UpdatedAt = time.Now().UTC()
	b.UpdatedBy = types.GetUserID(ctx)
	if apply != nil {
		apply(b)
	}

	if err := s.BillRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Issue circulates a draft bill. With requireAcknowledgment the bill
// waits for the resident to acknowledge before it becomes payable.
func (s *billService) Issue(ctx context.Context, id string, requireAcknowledgment bool) (*bill.Bill, error) {
	target := types.BillStatusPending
	if requireAcknowledgment {
		target = types.BillStatusPendingAcknowledgment
	}
	return s.transition(ctx, id, []types.BillStatus{types.BillStatusDraft}, target, nil)
}

func (s *billService) Acknowledge(ctx context.Context, id string) (*bill.Bill, error) {
	return s.transition(ctx, id,
		[]types.BillStatus{types.BillStatusPendingAcknowledgment},
		types.BillStatusAcknowledged, nil)
}

func (s *billService) Dispute(ctx context.Context, id string, req *dto.DisputeBillRequest) (*bill.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.transition(ctx, id,
		[]types.BillStatus{
			types.BillStatusPendingAcknowledgment,
			types.BillStatusAcknowledged,
			types.BillStatusPending,
			types.BillStatusOverdue,
		},
		types.BillStatusDisputed,
		func(b *bill.Bill) {
			b.DisputeReason = &req.Reason
		})
}

// ResolveDispute returns a disputed bill to circulation. Overdue is
// recomputed from the due date.
func (s *billService) ResolveDispute(ctx context.Context, id string) (*bill.Bill, error) {
	target := types.BillStatusPending
	b, err := s.BillRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.DueDate.Before(time.Now().UTC()) {
		target = types.BillStatusOverdue
	}
	return s.transition(ctx, id,
		[]types.BillStatus{types.BillStatusDisputed},
		target,
		func(b *bill.Bill) {
			b.DisputeReason = nil
		})
}

func (s *billService) Cancel(ctx context.Context, id string) (*bill.Bill, error) {
	return s.transition(ctx, id,
		[]types.BillStatus{
			types.BillStatusDraft,
			types.BillStatusPendingAcknowledgment,
			types.BillStatusAcknowledged,
			types.BillStatusDisputed,
			types.BillStatusPending,
			types.BillStatusOverdue,
			types.BillStatusPartiallyPaid,
		},
		types.BillStatusCancelled, nil)
}

// ProcessPayment pays part or all of a bill from the payer's wallet.
// The wallet debit, the bill payment transaction and the bill update
// commit atomically; the treasury credit afterwards is best-effort.
func (s *billService) ProcessPayment(ctx context.Context, id string, req *dto.PayBillRequest) (*bill.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var paid *bill.Bill

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.BillRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if !b.IsPayable() {
			return ierr.NewError("bill is not payable").
				WithHintf("Bill is %s and cannot accept payments", b.BillStatus).
				WithReportableDetails(map[string]any{
					"bill_id":     b.ID,
					"bill_status": b.BillStatus,
				}).
				Mark(ierr.ErrBillNotPayable)
		}

		if req.Amount.GreaterThan(b.OutstandingAmount()) {
			return ierr.NewError("payment exceeds outstanding amount").
				WithHint("Payment must not exceed the outstanding amount").
				WithReportableDetails(map[string]any{
					"bill_id":     b.ID,
					"amount":      req.Amount,
					"outstanding": b.OutstandingAmount(),
				}).
				Mark(ierr.ErrValidation)
		}

		w, err := s.WalletRepo.GetByUserAndCluster(ctx, b.UserID, b.ClusterID)
		if err != nil {
			return err
		}

		// Create and immediately complete the bill payment: the hold
		// is placed and settled inside this same transaction.
		txn, err := s.transactionService.Create(ctx, &dto.CreateTransactionRequest{
			WalletID:       w.ID,
			Type:           types.TransactionTypeBillPayment,
			Amount:         req.Amount,
			Currency:       b.Currency,
			Description:    "Payment for " + b.BillNumber,
			IdempotencyKey: req.IdempotencyKey,
			BillID:         &b.ID,
		})
		if err != nil {
			return err
		}

		// An idempotent replay returns the already completed
		// transaction; do not apply the payment twice.
		if txn.TxnStatus == types.TransactionStatusCompleted {
			paid = b
			return nil
		}

		if _, err := s.transactionService.MarkCompleted(ctx, txn.ID); err != nil {
			return err
		}

		b.PaidAmount = b.PaidAmount.Add(req.Amount)
		if b.PaidAmount.Equal(b.Amount) {
			b.BillStatus = types.BillStatusPaid
			now := time.Now().UTC()
			b.PaidAt = &now
		} else {
			b.BillStatus = types.BillStatusPartiallyPaid
		}
		b.UpdatedAt = time.Now().UTC()
		b.UpdatedBy = types.GetUserID(ctx)

		if err := s.BillRepo.Update(ctx, b); err != nil {
			return err
		}
		paid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Treasury credit is best-effort: a failure here is logged and
	// never rolls back the payment above.
	if err := s.treasuryService.CreditFromBillPayment(ctx, paid.ClusterID, paid.ID, req.Amount); err != nil {
		s.Logger.Warnw("treasury credit failed after bill payment",
			"bill_id", paid.ID,
			"cluster_id", paid.ClusterID,
			"amount", req.Amount,
			"error", err,
		)
	}

	s.Logger.Infow("processed bill payment",
		"bill_id", paid.ID,
		"amount", req.Amount,
		"bill_status", paid.BillStatus,
	)
	return paid, nil
}

// CheckAndUpdateOverdue flips past-due unpaid bills to overdue. Safe
// to run repeatedly; already overdue bills are not candidates.
func (s *billService) CheckAndUpdateOverdue(ctx context.Context) (*dto.BatchResult, error) {
	now := time.Now().UTC()
	candidates, err := s.BillRepo.ListOverdueCandidates(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Processed: len(candidates)}
	for _, b := range candidates {
		b.BillStatus = types.BillStatusOverdue
		b.UpdatedAt = now
		if err := s.BillRepo.Update(ctx, b); err != nil {
			result.Failed++
			s.Logger.Errorw("failed to mark bill overdue",
				"bill_id", b.ID,
				"error", err,
			)
			continue
		}
		result.Succeeded++
	}

	s.Logger.Infow("overdue sweep finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

// SendDueReminders notifies payers of bills coming due within the
// configured window.
func (s *billService) SendDueReminders(ctx context.Context) (*dto.BatchResult, error) {
	days := s.Config.Billing.ReminderDaysBeforeDue
	if days <= 0 {
		days = 3
	}

	now := time.Now().UTC()
	bills, err := s.BillRepo.ListDueBetween(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Processed: len(bills)}
	for _, b := range bills {
		n := &notification.Notification{
			Kind:   notification.KindBillDueReminder,
			UserID: b.UserID,
			Title:  "Bill due soon: " + b.Title,
			Body:   "Bill " + b.BillNumber + " is due on " + b.DueDate.Format("2 Jan 2006"),
			Metadata: map[string]string{
				"bill_id":     b.ID,
				"bill_number": b.BillNumber,
				"amount":      b.OutstandingAmount().String(),
			},
		}
		if err := s.Notifier.Send(ctx, n); err != nil {
			result.Failed++
			s.Logger.Errorw("failed to send bill reminder",
				"bill_id", b.ID,
				"error", err,
			)
			continue
		}
		result.Succeeded++
	}

	return result, nil
}

// GetSummary aggregates a cluster's bills by status
func (s *billService) GetSummary(ctx context.Context, clusterID string) (*dto.BillSummary, error) {
	filter := types.NewBillFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.ClusterID = clusterID

	bills, err := s.BillRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &dto.BillSummary{
		ClusterID:      clusterID,
		CountByStatus:  make(map[types.BillStatus]int),
		AmountByStatus: make(map[types.BillStatus]decimal.Decimal),
	}
	for _, b := range bills {
		if b.BillStatus == types.BillStatusCancelled || b.BillStatus == types.BillStatusDraft {
			summary.CountByStatus[b.BillStatus]++
			continue
		}
		summary.TotalBilled = summary.TotalBilled.Add(b.Amount)
		summary.TotalPaid = summary.TotalPaid.Add(b.PaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(b.OutstandingAmount())
		summary.CountByStatus[b.BillStatus]++
		summary.AmountByStatus[b.BillStatus] = summary.AmountByStatus[b.BillStatus].Add(b.Amount)
	}
	return summary, nil
}
