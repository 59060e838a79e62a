package service

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/cache"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TreasuryService manages the cluster treasury: a wallet owned by the
// cluster itself (user id equals cluster id) that collects bill
// payments and pays out to bank accounts.
type TreasuryService interface {
	GetOrCreate(ctx context.Context, clusterID string) (*wallet.Wallet, error)
	CreditFromBillPayment(ctx context.Context, clusterID, billID string, amount decimal.Decimal) error
	AddManualCredit(ctx context.Context, clusterID string, req *dto.ManualCreditRequest) error
	TransferOut(ctx context.Context, clusterID string, req *dto.TransferOutRequest) (string, error)
	GetRevenueSummary(ctx context.Context, clusterID string, days int) (*dto.RevenueSummary, error)

	ListBanks(ctx context.Context, providerCode *types.PaymentProvider) ([]gateway.Bank, error)
	ResolveAccount(ctx context.Context, providerCode *types.PaymentProvider, accountNumber, bankCode string) (*gateway.AccountDetails, error)
}

type treasuryService struct {
	ServiceParams
	walletService      WalletService
	transactionService TransactionService
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(params ServiceParams) TreasuryService {
	return &treasuryService{
		ServiceParams:      params,
		walletService:      NewWalletService(params),
		transactionService: NewTransactionService(params),
	}
}

// GetOrCreate returns the cluster's treasury wallet, creating it on
// first use.
func (s *treasuryService) GetOrCreate(ctx context.Context, clusterID string) (*wallet.Wallet, error) {
	if clusterID == "" {
		return nil, ierr.NewError("cluster id is required").
			WithHint("Cluster ID is required").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetByUserAndCluster(ctx, clusterID, clusterID)
	if err == nil {
		return w, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	return s.walletService.CreateWallet(ctx, &dto.CreateWalletRequest{
		UserID:    clusterID,
		ClusterID: clusterID,
	})
}

// CreditFromBillPayment records bill income in the treasury as a
// completed deposit referencing the bill.
func (s *treasuryService) CreditFromBillPayment(ctx context.Context, clusterID, billID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Credit amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}

	w, err := s.GetOrCreate(ctx, clusterID)
	if err != nil {
		return err
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		txn, err := s.transactionService.Create(ctx, &dto.CreateTransactionRequest{
			WalletID:    w.ID,
			Type:        types.TransactionTypeDeposit,
			Amount:      amount,
			Currency:    w.Currency,
			Description: "Bill payment income",
			BillID:      &billID,
			Metadata: types.Metadata{
				"source": "bill_payment",
			},
		})
		if err != nil {
			return err
		}
		_, err = s.transactionService.MarkCompleted(ctx, txn.ID)
		return err
	})
}

// AddManualCredit tops up the treasury outside the bill flow, e.g.
// cash collected offline.
func (s *treasuryService) AddManualCredit(ctx context.Context, clusterID string, req *dto.ManualCreditRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	w, err := s.GetOrCreate(ctx, clusterID)
	if err != nil {
		return err
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		txn, err := s.transactionService.Create(ctx, &dto.CreateTransactionRequest{
			WalletID:    w.ID,
			Type:        types.TransactionTypeDeposit,
			Amount:      req.Amount,
			Currency:    w.Currency,
			Description: req.Note,
			Metadata: types.Metadata{
				"source": "manual_credit",
				"manual": "true",
			},
		})
		if err != nil {
			return err
		}
		_, err = s.transactionService.MarkCompleted(ctx, txn.ID)
		return err
	})
}

// TransferOut withdraws treasury funds to a bank account through the
// payment gateway. The funds are held while the provider call is in
// flight; a provider failure releases them.
func (s *treasuryService) TransferOut(ctx context.Context, clusterID string, req *dto.TransferOutRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	w, err := s.GetOrCreate(ctx, clusterID)
	if err != nil {
		return "", err
	}

	providerCode := s.Config.Payment.DefaultProvider
	if req.Provider != nil {
		providerCode = *req.Provider
	}
	provider, err := s.GatewayFactory.Get(providerCode)
	if err != nil {
		return "", err
	}

	// The hold is placed here; the provider call happens outside the
	// database transaction.
	txn, err := s.transactionService.Create(ctx, &dto.CreateTransactionRequest{
		WalletID:     w.ID,
		Type:         types.TransactionTypeTransfer,
		Amount:       req.Amount,
		Currency:     w.Currency,
		Description:  req.Narration,
		ProviderCode: lo.ToPtr(providerCode),
		Metadata: types.Metadata{
			"account_number": req.AccountNumber,
			"bank_code":      req.BankCode,
		},
	})
	if err != nil {
		return "", err
	}

	resp, err := s.runTransfer(ctx, provider, txn.Reference, req, w.Currency)
	if err != nil {
		if _, ferr := s.transactionService.MarkFailed(ctx, txn.ID, err.Error()); ferr != nil {
			s.Logger.Errorw("failed to mark transfer failed",
				"transaction_id", txn.ID,
				"error", ferr,
			)
		}
		return "", err
	}

	s.Logger.Infow("initiated treasury transfer",
		"transaction_id", txn.ID,
		"cluster_id", clusterID,
		"amount", req.Amount,
		"provider", providerCode,
		"provider_ref", resp.ProviderRef,
	)
	return txn.ID, nil
}

// runTransfer resolves the payout account, registers it with the
// provider and fires the transfer. Providers that take account details
// inline echo the recipient back without an upstream call.
func (s *treasuryService) runTransfer(ctx context.Context, provider gateway.Provider, reference string, req *dto.TransferOutRequest, currency string) (*gateway.TransferResponse, error) {
	// The destination must resolve before any money moves. The bank's
	// account name wins over whatever the caller typed.
	details, err := provider.VerifyAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		return nil, err
	}
	name := details.AccountName
	if name == "" {
		name = req.AccountName
	}

	recipient, err := provider.CreateTransferRecipient(ctx, &gateway.RecipientRequest{
		Name:          name,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Currency:      currency,
	})
	if err != nil {
		return nil, err
	}

	return provider.InitiateTransfer(ctx, &gateway.TransferRequest{
		Reference:     reference,
		Amount:        req.Amount,
		Currency:      currency,
		RecipientCode: recipient.RecipientCode,
		AccountNumber: recipient.AccountNumber,
		BankCode:      recipient.BankCode,
		Narration:     req.Narration,
	})
}

// ListBanks returns the provider's bank directory for payout forms.
// The list changes rarely and is cached per provider.
func (s *treasuryService) ListBanks(ctx context.Context, providerCode *types.PaymentProvider) ([]gateway.Bank, error) {
	code := s.Config.Payment.DefaultProvider
	if providerCode != nil {
		code = *providerCode
	}
	provider, err := s.GatewayFactory.Get(code)
	if err != nil {
		return nil, err
	}

	cacheKey := "banks:" + string(code)
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if banks, ok := cached.([]gateway.Bank); ok {
			return banks, nil
		}
	}

	banks, err := provider.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, cacheKey, banks, cache.DefaultExpiration)
	return banks, nil
}

// ResolveAccount confirms a payout destination before a transfer
func (s *treasuryService) ResolveAccount(ctx context.Context, providerCode *types.PaymentProvider, accountNumber, bankCode string) (*gateway.AccountDetails, error) {
	if accountNumber == "" || bankCode == "" {
		return nil, ierr.NewError("account number and bank code are required").
			WithHint("Account number and bank code are required").
			Mark(ierr.ErrValidation)
	}

	code := s.Config.Payment.DefaultProvider
	if providerCode != nil {
		code = *providerCode
	}
	provider, err := s.GatewayFactory.Get(code)
	if err != nil {
		return nil, err
	}
	return provider.VerifyAccount(ctx, accountNumber, bankCode)
}

// GetRevenueSummary sums completed bill payment income over the
// window, grouped per day.
func (s *treasuryService) GetRevenueSummary(ctx context.Context, clusterID string, days int) (*dto.RevenueSummary, error) {
	if days <= 0 {
		days = 30
	}

	w, err := s.GetOrCreate(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	start := types.StartOfDay(now.AddDate(0, 0, -days))

	filter := types.NewTransactionFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.TimeRangeFilter = &types.TimeRangeFilter{StartTime: &start, EndTime: &now}
	filter.WalletID = w.ID
	filter.Type = lo.ToPtr(types.TransactionTypeDeposit)
	filter.TxStatus = lo.ToPtr(types.TransactionStatusCompleted)

	txns, err := s.TransactionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txns {
		if t.Metadata["source"] != "bill_payment" {
			continue
		}
		day := types.StartOfDay(t.CreatedAt)
		byDay[day] = byDay[day].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	daily := make([]dto.DailyRevenue, 0, len(byDay))
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		if amount, ok := byDay[day]; ok {
			daily = append(daily, dto.DailyRevenue{Date: day, Amount: amount})
		}
	}

	return &dto.RevenueSummary{
		ClusterID: clusterID,
		Days:      days,
		Total:     total,
		Currency:  w.Currency,
		Daily:     daily,
	}, nil
}
