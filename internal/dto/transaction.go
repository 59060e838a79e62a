package dto

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest opens a transaction against a wallet
type CreateTransactionRequest struct {
	WalletID       string                 `json:"wallet_id" binding:"required"`
	Type           types.TransactionType  `json:"type" binding:"required"`
	Amount         decimal.Decimal        `json:"amount" binding:"required"`
	Currency       string                 `json:"currency"`
	Description    string                 `json:"description"`
	Reference      string                 `json:"reference"`
	ProviderCode   *types.PaymentProvider `json:"provider_code,omitempty"`
	IdempotencyKey *string                `json:"idempotency_key,omitempty"`
	BillID         *string                `json:"bill_id,omitempty"`
	Metadata       types.Metadata         `json:"metadata,omitempty"`
}

func (r *CreateTransactionRequest) Validate() error {
	if r.WalletID == "" {
		return ierr.NewError("wallet id is required").
			WithHint("Wallet ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.ProviderCode != nil {
		if err := r.ProviderCode.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToTransaction builds the pending domain transaction
func (r *CreateTransactionRequest) ToTransaction(ctx context.Context, currency string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TransactionNumber: types.GenerateTransactionNumber(),
		WalletID:          r.WalletID,
		Type:              r.Type,
		TxnStatus:         types.TransactionStatusPending,
		Amount:            r.Amount,
		Currency:          currency,
		Description:       r.Description,
		Reference:         r.Reference,
		ProviderCode:      r.ProviderCode,
		IdempotencyKey:    r.IdempotencyKey,
		BillID:            r.BillID,
		Metadata:          r.Metadata,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// InitiateDepositRequest starts a gateway-funded wallet top-up. The
// caller is redirected to the provider's hosted checkout; the deposit
// completes through the provider webhook.
type InitiateDepositRequest struct {
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Email       string                 `json:"email" binding:"required"`
	Provider    *types.PaymentProvider `json:"provider,omitempty"`
	CallbackURL string                 `json:"callback_url,omitempty"`
}

func (r *InitiateDepositRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.Email == "" {
		return ierr.NewError("email is required").
			WithHint("Email is required for provider checkout").
			Mark(ierr.ErrValidation)
	}
	if r.Provider != nil {
		if err := r.Provider.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InitiateDepositResponse hands the caller off to the provider checkout
type InitiateDepositResponse struct {
	TransactionID    string `json:"transaction_id"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
}

// ListTransactionsResponse is a page of transactions
type ListTransactionsResponse struct {
	Items []*transaction.Transaction `json:"items"`
	Total int                        `json:"total"`
}
