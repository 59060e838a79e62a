package service

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/idempotency"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// RecurringPaymentService manages payment schedules. ProcessDue is the
// scheduler entry point: it charges every due schedule, advances the
// next payment date from the previous anchor on success, counts
// failures and pauses a schedule after too many in a row.
type RecurringPaymentService interface {
	Create(ctx context.Context, req *dto.CreateRecurringPaymentRequest) (*recurringpayment.RecurringPayment, error)
	Get(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error)
	List(ctx context.Context, filter *types.RecurringPaymentFilter) ([]*recurringpayment.RecurringPayment, error)

	Pause(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error)
	Resume(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error)
	Cancel(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error)

	ProcessDue(ctx context.Context, now time.Time) (*dto.ProcessDueResult, error)
	SendUpcomingReminders(ctx context.Context, daysAhead int) (*dto.BatchResult, error)
}

type recurringPaymentService struct {
	ServiceParams
	transactionService  TransactionService
	paymentErrorService PaymentErrorService
	keygen              *idempotency.Generator
}

// NewRecurringPaymentService creates a new recurring payment service
func NewRecurringPaymentService(params ServiceParams) RecurringPaymentService {
	return &recurringPaymentService{
		ServiceParams:       params,
		transactionService:  NewTransactionService(params),
		paymentErrorService: NewPaymentErrorService(params),
		keygen:              idempotency.NewGenerator(),
	}
}

func (s *recurringPaymentService) Create(ctx context.Context, req *dto.CreateRecurringPaymentRequest) (*recurringpayment.RecurringPayment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The wallet must exist and be active before a schedule can
	// charge it.
	w, err := s.WalletRepo.Get(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive() {
		return nil, ierr.NewError("wallet is not active").
			WithHintf("Wallet is %s", w.WalletStatus).
			Mark(ierr.ErrWalletInactive)
	}

	rp := req.ToRecurringPayment(ctx)
	if rp.MaxFailedAttempts == types.DefaultMaxFailedAttempts && s.Config.Recurring.MaxFailedAttempts > 0 {
		rp.MaxFailedAttempts = s.Config.Recurring.MaxFailedAttempts
	}
	if err := rp.Validate(); err != nil {
		return nil, err
	}

	if err := s.RecurringPaymentRepo.Create(ctx, rp); err != nil {
		return nil, err
	}

	s.Logger.Infow("created recurring payment",
		"recurring_payment_id", rp.ID,
		"wallet_id", rp.WalletID,
		"amount", rp.Amount,
		"frequency", rp.Frequency,
		"next_payment_date", rp.NextPaymentDate,
	)
	return rp, nil
}

func (s *recurringPaymentService) Get(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	return s.RecurringPaymentRepo.Get(ctx, id)
}

func (s *recurringPaymentService) List(ctx context.Context, filter *types.RecurringPaymentFilter) ([]*recurringpayment.RecurringPayment, error) {
	if filter == nil {
		filter = types.NewRecurringPaymentFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.RecurringPaymentRepo.List(ctx, filter)
}

func (s *recurringPaymentService) setStatus(ctx context.Context, id string, allowed []types.RecurringPaymentStatus, target types.RecurringPaymentStatus, apply func(rp *recurringpayment.RecurringPayment)) (*recurringpayment.RecurringPayment, error) {
	rp, err := s.RecurringPaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ok := false
	for _, a := range allowed {
		if rp.RPStatus == a {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ierr.NewError("invalid recurring payment status transition").
			WithHintf("Cannot move schedule from %s to %s", rp.RPStatus, target).
			WithReportableDetails(map[string]any{
				"recurring_payment_id": rp.ID,
				"current":              rp.RPStatus,
				"requested":            target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	rp.RPStatus = target
	rp.UpdatedAt = time.Now().UTC()
	rp.UpdatedBy = types.GetUserID(ctx)
	if apply != nil {
		apply(rp)
	}

	if err := s.RecurringPaymentRepo.Update(ctx, rp); err != nil {
		return nil, err
	}
	return rp, nil
}

func (s *recurringPaymentService) Pause(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	return s.setStatus(ctx, id,
		[]types.RecurringPaymentStatus{types.RecurringPaymentStatusActive},
		types.RecurringPaymentStatusPaused, nil)
}

// Resume reactivates a paused schedule and forgives its failure count
func (s *recurringPaymentService) Resume(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	return s.setStatus(ctx, id,
		[]types.RecurringPaymentStatus{types.RecurringPaymentStatusPaused},
		types.RecurringPaymentStatusActive,
		func(rp *recurringpayment.RecurringPayment) {
			rp.FailedAttempts = 0
		})
}

func (s *recurringPaymentService) Cancel(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	return s.setStatus(ctx, id,
		[]types.RecurringPaymentStatus{
			types.RecurringPaymentStatusActive,
			types.RecurringPaymentStatusPaused,
		},
		types.RecurringPaymentStatusCancelled, nil)
}

// ProcessDue runs every due schedule with per-record isolation: one
// failing schedule is recorded and the run continues.
func (s *recurringPaymentService) ProcessDue(ctx context.Context, now time.Time) (*dto.ProcessDueResult, error) {
	due, err := s.RecurringPaymentRepo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &dto.ProcessDueResult{Processed: len(due)}
	for _, rp := range due {
		switch s.processOne(ctx, rp, now) {
		case processOutcomeSucceeded:
			result.Succeeded++
		case processOutcomeFailed:
			result.Failed++
		case processOutcomePaused:
			result.Failed++
			result.Paused++
		case processOutcomeExpired:
			result.Expired++
		}
	}

	s.Logger.Infow("recurring payment run finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"paused", result.Paused,
		"expired", result.Expired,
	)
	return result, nil
}

type processOutcome int

const (
	processOutcomeSucceeded processOutcome = iota
	processOutcomeFailed
	processOutcomePaused
	processOutcomeExpired
)

func (s *recurringPaymentService) processOne(ctx context.Context, rp *recurringpayment.RecurringPayment, now time.Time) processOutcome {
	// A schedule past its end date expires instead of charging.
	if rp.HasEnded(now) {
		rp.RPStatus = types.RecurringPaymentStatusExpired
		rp.UpdatedAt = now
		if err := s.RecurringPaymentRepo.Update(ctx, rp); err != nil {
			s.Logger.Errorw("failed to expire recurring payment",
				"recurring_payment_id", rp.ID,
				"error", err,
			)
			return processOutcomeFailed
		}
		return processOutcomeExpired
	}

	err := s.chargeSchedule(ctx, rp)
	if err != nil {
		return s.recordFailure(ctx, rp, now, err)
	}

	next, err := rp.Frequency.Next(rp.NextPaymentDate)
	if err != nil {
		s.Logger.Errorw("failed to advance schedule",
			"recurring_payment_id", rp.ID,
			"error", err,
		)
		return processOutcomeFailed
	}

	rp.FailedAttempts = 0
	rp.LastPaymentAt = &now
	rp.NextPaymentDate = next
	rp.UpdatedAt = now

	// The end date may fall before the next occurrence; the schedule
	// has done its last charge and expires now.
	if rp.EndDate != nil && next.After(*rp.EndDate) {
		rp.RPStatus = types.RecurringPaymentStatusExpired
	}

	if err := s.RecurringPaymentRepo.Update(ctx, rp); err != nil {
		s.Logger.Errorw("failed to update schedule after charge",
			"recurring_payment_id", rp.ID,
			"error", err,
		)
		return processOutcomeFailed
	}

	if rp.RPStatus == types.RecurringPaymentStatusExpired {
		return processOutcomeExpired
	}
	return processOutcomeSucceeded
}

// chargeSchedule creates and completes the payment in one database
// transaction: hold then settle. The idempotency key is derived from
// the schedule and its due date so a re-run of the same occurrence
// replays instead of charging twice.
func (s *recurringPaymentService) chargeSchedule(ctx context.Context, rp *recurringpayment.RecurringPayment) error {
	key := s.keygen.GenerateKey(idempotency.ScopeRecurringCharge, map[string]interface{}{
		"recurring_payment_id": rp.ID,
		"due_date":             rp.NextPaymentDate.Format(time.RFC3339),
	})

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		txn, err := s.transactionService.Create(ctx, &dto.CreateTransactionRequest{
			WalletID:       rp.WalletID,
			Type:           types.TransactionTypePayment,
			Amount:         rp.Amount,
			Currency:       rp.Currency,
			Description:    "Recurring payment: " + rp.Title,
			IdempotencyKey: &key,
			Metadata: types.Metadata{
				"recurring_payment_id": rp.ID,
			},
		})
		if err != nil {
			return err
		}
		if txn.TxnStatus == types.TransactionStatusCompleted {
			return nil
		}
		_, err = s.transactionService.MarkCompleted(ctx, txn.ID)
		return err
	})
}

// recordFailure logs a payment error for the missed charge, bumps the
// failure counter and pauses the schedule once the limit is hit. The
// next payment date is not advanced on failure.
func (s *recurringPaymentService) recordFailure(ctx context.Context, rp *recurringpayment.RecurringPayment, now time.Time, cause error) processOutcome {
	// The charge rolls back with the transaction, so the error record
	// carries no transaction reference.
	if _, err := s.paymentErrorService.Record(ctx, &dto.RecordPaymentErrorRequest{
		Message: cause.Error(),
	}); err != nil {
		s.Logger.Errorw("failed to record payment error for schedule",
			"recurring_payment_id", rp.ID,
			"error", err,
		)
	}

	rp.FailedAttempts++
	rp.UpdatedAt = now

	outcome := processOutcomeFailed
	if rp.FailedAttempts >= rp.MaxFailedAttempts {
		rp.RPStatus = types.RecurringPaymentStatusPaused
		outcome = processOutcomePaused
	}

	s.Logger.Warnw("recurring payment charge failed",
		"recurring_payment_id", rp.ID,
		"wallet_id", rp.WalletID,
		"failed_attempts", rp.FailedAttempts,
		"max_failed_attempts", rp.MaxFailedAttempts,
		"paused", outcome == processOutcomePaused,
		"error", cause,
	)

	if err := s.RecurringPaymentRepo.Update(ctx, rp); err != nil {
		s.Logger.Errorw("failed to record schedule failure",
			"recurring_payment_id", rp.ID,
			"error", err,
		)
	}
	return outcome
}

// SendUpcomingReminders notifies wallet owners of schedules firing
// within the window.
func (s *recurringPaymentService) SendUpcomingReminders(ctx context.Context, daysAhead int) (*dto.BatchResult, error) {
	if daysAhead <= 0 {
		daysAhead = 3
	}

	now := time.Now().UTC()
	upcoming, err := s.RecurringPaymentRepo.ListDueBetween(ctx, now, now.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Processed: len(upcoming)}
	for _, rp := range upcoming {
		w, err := s.WalletRepo.Get(ctx, rp.WalletID)
		if err != nil {
			result.Failed++
			continue
		}
		n := &notification.Notification{
			Kind:   notification.KindUpcomingRecurring,
			UserID: w.UserID,
			Title:  "Upcoming payment: " + rp.Title,
			Body:   "A payment of " + rp.Amount.String() + " " + rp.Currency + " is due on " + rp.NextPaymentDate.Format("2 Jan 2006"),
			Metadata: map[string]string{
				"recurring_payment_id": rp.ID,
			},
		}
		if err := s.Notifier.Send(ctx, n); err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	return result, nil
}
