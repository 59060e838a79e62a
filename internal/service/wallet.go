package service

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// WalletService is the ledger around wallets. Credit and Debit move
// settled funds; Freeze, Unfreeze and Settle implement the two-phase
// hold used by outbound transactions. All balance mutations run in a
// transaction with the wallet row locked.
type WalletService interface {
	CreateWallet(ctx context.Context, req *dto.CreateWalletRequest) (*wallet.Wallet, error)
	GetWallet(ctx context.Context, id string) (*wallet.Wallet, error)
	GetWalletByUser(ctx context.Context, userID, clusterID string) (*wallet.Wallet, error)
	GetBalanceSummary(ctx context.Context, id string) (*dto.WalletBalanceSummary, error)

	Credit(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error)
	Debit(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error)
	Freeze(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error)
	Unfreeze(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error)
	Settle(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error)

	Suspend(ctx context.Context, walletID string) error
	Reactivate(ctx context.Context, walletID string) error
	Close(ctx context.Context, walletID string) error

	SetPin(ctx context.Context, walletID string, req *dto.SetPinRequest) error
	VerifyPin(ctx context.Context, walletID string, pin string) error
}

type walletService struct {
	ServiceParams
}

// NewWalletService creates a new wallet service
func NewWalletService(params ServiceParams) WalletService {
	return &walletService{ServiceParams: params}
}

func (s *walletService) CreateWallet(ctx context.Context, req *dto.CreateWalletRequest) (*wallet.Wallet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// One wallet per user per cluster
	existing, err := s.WalletRepo.GetByUserAndCluster(ctx, req.UserID, req.ClusterID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("wallet already exists").
			WithHint("A wallet already exists for this user in this cluster").
			WithReportableDetails(map[string]any{
				"user_id":    req.UserID,
				"cluster_id": req.ClusterID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	w := req.ToWallet(ctx)
	if err := w.Validate(); err != nil {
		return nil, err
	}

	if err := s.WalletRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.Logger.Infow("created wallet",
		"wallet_id", w.ID,
		"user_id", w.UserID,
		"cluster_id", w.ClusterID,
	)
	return w, nil
}

func (s *walletService) GetWallet(ctx context.Context, id string) (*wallet.Wallet, error) {
	return s.WalletRepo.Get(ctx, id)
}

func (s *walletService) GetWalletByUser(ctx context.Context, userID, clusterID string) (*wallet.Wallet, error) {
	return s.WalletRepo.GetByUserAndCluster(ctx, userID, clusterID)
}

func (s *walletService) GetBalanceSummary(ctx context.Context, id string) (*dto.WalletBalanceSummary, error) {
	w, err := s.WalletRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.WalletBalanceSummary{
		WalletID:         w.ID,
		WalletNumber:     w.WalletNumber,
		Balance:          w.Balance,
		AvailableBalance: w.AvailableBalance,
		HeldBalance:      w.HeldBalance(),
		Currency:         w.Currency,
		WalletStatus:     w.WalletStatus,
	}, nil
}

// mutate loads the wallet under a row lock, applies fn and persists
// the resulting balances. fn returns the new balance and available
// balance.
func (s *walletService) mutate(ctx context.Context, walletID string, fn func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error)) (*wallet.Wallet, error) {
	var out *wallet.Wallet

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.WalletRepo.GetForUpdate(ctx, walletID)
		if err != nil {
			return err
		}

		balance, available, err := fn(w)
		if err != nil {
			return err
		}

		if available.IsNegative() || available.GreaterThan(balance) || balance.IsNegative() {
			return ierr.NewError("wallet balance invariant violated").
				WithHint("Operation would corrupt wallet balances").
				WithReportableDetails(map[string]any{
					"wallet_id":         walletID,
					"balance":           balance,
					"available_balance": available,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if err := s.WalletRepo.UpdateBalance(ctx, walletID, balance, available); err != nil {
			return err
		}

		w.Balance = balance
		w.AvailableBalance = available
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func requireActive(w *wallet.Wallet) error {
	if !w.IsActive() {
		return ierr.NewError("wallet is not active").
			WithHintf("Wallet is %s", w.WalletStatus).
			WithReportableDetails(map[string]any{
				"wallet_id":     w.ID,
				"wallet_status": w.WalletStatus,
			}).
			Mark(ierr.ErrWalletInactive)
	}
	return nil
}

// Credit adds settled funds: both balances grow
func (s *walletService) Credit(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	return s.mutate(ctx, walletID, func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error) {
		if err := requireActive(w); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return w.Balance.Add(amount), w.AvailableBalance.Add(amount), nil
	})
}

// Debit removes settled funds: both balances shrink
func (s *walletService) Debit(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	return s.mutate(ctx, walletID, func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error) {
		if err := requireActive(w); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		if w.AvailableBalance.LessThan(amount) {
			return decimal.Zero, decimal.Zero, insufficientBalance(w, amount)
		}
		return w.Balance.Sub(amount), w.AvailableBalance.Sub(amount), nil
	})
}

// Freeze places a hold: available shrinks, balance is untouched. The
// check against available balance and the decrement happen atomically
// under the row lock.
func (s *walletService) Freeze(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	return s.mutate(ctx, walletID, func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error) {
		if err := requireActive(w); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		if w.AvailableBalance.LessThan(amount) {
			return decimal.Zero, decimal.Zero, insufficientBalance(w, amount)
		}
		return w.Balance, w.AvailableBalance.Sub(amount), nil
	})
}

// Unfreeze releases a hold: available grows back, clamped so it never
// exceeds the balance.
func (s *walletService) Unfreeze(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	return s.mutate(ctx, walletID, func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error) {
		available := w.AvailableBalance.Add(amount)
		if available.GreaterThan(w.Balance) {
			s.Logger.Warnw("unfreeze exceeds held balance, clamping",
				"wallet_id", w.ID,
				"amount", amount,
				"held", w.HeldBalance(),
			)
			available = w.Balance
		}
		return w.Balance, available, nil
	})
}

// Settle consumes a hold: balance shrinks by the held amount that was
// already removed from available by Freeze.
func (s *walletService) Settle(ctx context.Context, walletID string, amount decimal.Decimal) (*wallet.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	return s.mutate(ctx, walletID, func(w *wallet.Wallet) (decimal.Decimal, decimal.Decimal, error) {
		if w.HeldBalance().LessThan(amount) {
			return decimal.Zero, decimal.Zero, ierr.NewError("held balance too low to settle").
				WithHint("No matching hold exists for this settlement").
				WithReportableDetails(map[string]any{
					"wallet_id": w.ID,
					"amount":    amount,
					"held":      w.HeldBalance(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return w.Balance.Sub(amount), w.AvailableBalance, nil
	})
}

func insufficientBalance(w *wallet.Wallet, amount decimal.Decimal) error {
	return ierr.NewError("insufficient balance").
		WithHint("Wallet does not have enough available funds").
		WithReportableDetails(map[string]any{
			"wallet_id":         w.ID,
			"amount":            amount,
			"available_balance": w.AvailableBalance,
		}).
		Mark(ierr.ErrInsufficientBalance)
}

func (s *walletService) Suspend(ctx context.Context, walletID string) error {
	return s.setStatus(ctx, walletID, types.WalletStatusActive, types.WalletStatusSuspended)
}

func (s *walletService) Reactivate(ctx context.Context, walletID string) error {
	return s.setStatus(ctx, walletID, types.WalletStatusSuspended, types.WalletStatusActive)
}

func (s *walletService) setStatus(ctx context.Context, walletID string, from, to types.WalletStatus) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.WalletRepo.GetForUpdate(ctx, walletID)
		if err != nil {
			return err
		}
		if w.WalletStatus != from {
			return ierr.NewError("invalid wallet status transition").
				WithHintf("Wallet is %s, expected %s", w.WalletStatus, from).
				Mark(ierr.ErrInvalidOperation)
		}
		return s.WalletRepo.UpdateStatus(ctx, walletID, to)
	})
}

// Close permanently retires a wallet. The balance must be zero.
func (s *walletService) Close(ctx context.Context, walletID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.WalletRepo.GetForUpdate(ctx, walletID)
		if err != nil {
			return err
		}
		if w.WalletStatus == types.WalletStatusClosed {
			return nil
		}
		if !w.Balance.IsZero() {
			return ierr.NewError("wallet balance must be zero to close").
				WithHint("Withdraw or transfer the remaining balance first").
				WithReportableDetails(map[string]any{
					"wallet_id": w.ID,
					"balance":   w.Balance,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return s.WalletRepo.UpdateStatus(ctx, walletID, types.WalletStatusClosed)
	})
}

func (s *walletService) SetPin(ctx context.Context, walletID string, req *dto.SetPinRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	w, err := s.WalletRepo.Get(ctx, walletID)
	if err != nil {
		return err
	}
	if err := requireActive(w); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to secure wallet PIN").
			Mark(ierr.ErrInternal)
	}

	return s.WalletRepo.UpdatePinHash(ctx, walletID, string(hash))
}

func (s *walletService) VerifyPin(ctx context.Context, walletID string, pin string) error {
	w, err := s.WalletRepo.Get(ctx, walletID)
	if err != nil {
		return err
	}
	if w.PinHash == nil {
		return ierr.NewError("wallet pin not set").
			WithHint("Set a wallet PIN first").
			Mark(ierr.ErrInvalidOperation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*w.PinHash), []byte(pin)); err != nil {
		return ierr.NewError("incorrect wallet pin").
			WithHint("Incorrect wallet PIN").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}
