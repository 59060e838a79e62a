package service

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

// TransactionService drives the transaction state machine. Outbound
// transactions freeze wallet funds on creation; completion settles the
// hold and failure releases it. MarkFailed and Cancel are the only
// paths that unfreeze.
type TransactionService interface {
	Create(ctx context.Context, req *dto.CreateTransactionRequest) (*transaction.Transaction, error)
	InitiateDeposit(ctx context.Context, walletID string, req *dto.InitiateDepositRequest) (*dto.InitiateDepositResponse, error)
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error)
	List(ctx context.Context, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error)
	GetHistory(ctx context.Context, walletID string, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error)

	MarkProcessing(ctx context.Context, id string) (*transaction.Transaction, error)
	MarkCompleted(ctx context.Context, id string) (*transaction.Transaction, error)
	MarkFailed(ctx context.Context, id string, reason string) (*transaction.Transaction, error)
	Cancel(ctx context.Context, id string) (*transaction.Transaction, error)
	MarkRefunded(ctx context.Context, id string) (*transaction.Transaction, error)
}

type transactionService struct {
	ServiceParams
	walletService WalletService
}

// NewTransactionService creates a new transaction service
func NewTransactionService(params ServiceParams) TransactionService {
	return &transactionService{
		ServiceParams: params,
		walletService: NewWalletService(params),
	}
}

func (s *transactionService) Create(ctx context.Context, req *dto.CreateTransactionRequest) (*transaction.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Idempotent create: an existing transaction with the same key is
	// returned unchanged.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.TransactionRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			s.Logger.Infow("returning existing transaction for idempotency key",
				"transaction_id", existing.ID,
				"idempotency_key", *req.IdempotencyKey,
			)
			return existing, nil
		}
	}

	w, err := s.WalletRepo.Get(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = w.Currency
	}

	txn := req.ToTransaction(ctx, currency)
	if txn.Reference == "" {
		txn.Reference = txn.TransactionNumber
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Outbound transactions hold their amount up front so the
		// funds cannot be double spent while in flight.
		if txn.Type.IsOutbound() {
			if _, err := s.walletService.Freeze(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		}
		return s.TransactionRepo.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created transaction",
		"transaction_id", txn.ID,
		"transaction_number", txn.TransactionNumber,
		"wallet_id", txn.WalletID,
		"type", txn.Type,
		"amount", txn.Amount,
	)
	return txn, nil
}

// InitiateDeposit opens a pending deposit and starts the provider's
// hosted checkout for it. The deposit stays pending until the provider
// webhook confirms the charge; an abandoned checkout leaves a pending
// transaction that can be cancelled.
func (s *transactionService) InitiateDeposit(ctx context.Context, walletID string, req *dto.InitiateDepositRequest) (*dto.InitiateDepositResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	w, err := s.WalletRepo.Get(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(w); err != nil {
		return nil, err
	}

	providerCode := s.Config.Payment.DefaultProvider
	if req.Provider != nil {
		providerCode = *req.Provider
	}
	provider, err := s.GatewayFactory.Get(providerCode)
	if err != nil {
		return nil, err
	}

	txn, err := s.Create(ctx, &dto.CreateTransactionRequest{
		WalletID:     walletID,
		Type:         types.TransactionTypeDeposit,
		Amount:       req.Amount,
		Currency:     w.Currency,
		Description:  "Wallet deposit via " + string(providerCode),
		ProviderCode: lo.ToPtr(providerCode),
		Metadata: types.Metadata{
			"email": req.Email,
		},
	})
	if err != nil {
		return nil, err
	}

	checkout, err := provider.InitializePayment(ctx, &gateway.InitializePaymentRequest{
		Reference:   txn.Reference,
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Email:       req.Email,
		CallbackURL: req.CallbackURL,
		Metadata: map[string]string{
			"transaction_id": txn.ID,
			"wallet_id":      walletID,
		},
	})
	if err != nil {
		// The checkout never started, so the deposit cannot complete.
		if _, cerr := s.Cancel(ctx, txn.ID); cerr != nil {
			s.Logger.Errorw("failed to cancel deposit after checkout failure",
				"transaction_id", txn.ID,
				"error", cerr,
			)
		}
		return nil, err
	}

	s.Logger.Infow("initiated wallet deposit",
		"transaction_id", txn.ID,
		"wallet_id", walletID,
		"amount", txn.Amount,
		"provider", providerCode,
	)
	return &dto.InitiateDepositResponse{
		TransactionID:    txn.ID,
		Reference:        txn.Reference,
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
	}, nil
}

func (s *transactionService) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.TransactionRepo.Get(ctx, id)
}

func (s *transactionService) GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error) {
	return s.TransactionRepo.GetByNumber(ctx, number)
}

func (s *transactionService) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	return s.TransactionRepo.GetByReference(ctx, reference)
}

func (s *transactionService) List(ctx context.Context, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error) {
	if filter == nil {
		filter = types.NewTransactionFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.TransactionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.TransactionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{Items: items, Total: total}, nil
}

// GetHistory lists a wallet's transactions newest first
func (s *transactionService) GetHistory(ctx context.Context, walletID string, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error) {
	if filter == nil {
		filter = types.NewTransactionFilter()
	}
	filter.WalletID = walletID
	filter.Sort = lo.ToPtr("created_at")
	filter.Order = lo.ToPtr(types.OrderDesc)
	return s.List(ctx, filter)
}

// transition loads the transaction, checks the move is legal and runs
// apply inside one database transaction.
func (s *transactionService) transition(ctx context.Context, id string, target types.TransactionStatus, apply func(ctx context.Context, txn *transaction.Transaction) error) (*transaction.Transaction, error) {
	var out *transaction.Transaction

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		txn, err := s.TransactionRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		// Redelivered completions are no-ops. Every other repeated
		// transition falls through and is rejected, so a failed
		// transaction cannot release its hold twice.
		if txn.TxnStatus == target && target == types.TransactionStatusCompleted {
			out = txn
			return nil
		}

		if !txn.CanTransitionTo(target) {
			return ierr.NewError("invalid transaction status transition").
				WithHintf("Cannot move transaction from %s to %s", txn.TxnStatus, target).
				WithReportableDetails(map[string]any{
					"transaction_id": txn.ID,
					"current":        txn.TxnStatus,
					"requested":      target,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if apply != nil {
			if err := apply(ctx, txn); err != nil {
				return err
			}
		}

		txn.TxnStatus = target
		txn.UpdatedAt = time.Now().UTC()
		txn.UpdatedBy = types.GetUserID(ctx)
		if err := s.TransactionRepo.Update(ctx, txn); err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *transactionService) MarkProcessing(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.transition(ctx, id, types.TransactionStatusProcessing, nil)
}

// MarkCompleted finalizes the transaction: inbound types credit the
// wallet, outbound types settle the hold placed at creation.
func (s *transactionService) MarkCompleted(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.transition(ctx, id, types.TransactionStatusCompleted, func(ctx context.Context, txn *transaction.Transaction) error {
		if txn.Type.IsOutbound() {
			if _, err := s.walletService.Settle(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		} else {
			if _, err := s.walletService.Credit(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		txn.CompletedAt = &now
		return nil
	})
}

// MarkFailed is the sole place a hold is released. The release happens
// exactly once because failed is terminal.
func (s *transactionService) MarkFailed(ctx context.Context, id string, reason string) (*transaction.Transaction, error) {
	return s.transition(ctx, id, types.TransactionStatusFailed, func(ctx context.Context, txn *transaction.Transaction) error {
		if txn.Type.IsOutbound() {
			if _, err := s.walletService.Unfreeze(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		txn.FailedAt = &now
		txn.FailureReason = &reason
		return nil
	})
}

// Cancel withdraws a pending transaction, releasing any hold
func (s *transactionService) Cancel(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.transition(ctx, id, types.TransactionStatusCancelled, func(ctx context.Context, txn *transaction.Transaction) error {
		if txn.Type.IsOutbound() {
			if _, err := s.walletService.Unfreeze(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkRefunded reverses a completed outbound transaction by crediting
// the wallet back.
func (s *transactionService) MarkRefunded(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.transition(ctx, id, types.TransactionStatusRefunded, func(ctx context.Context, txn *transaction.Transaction) error {
		if txn.Type.IsOutbound() {
			if _, err := s.walletService.Credit(ctx, txn.WalletID, txn.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}
