package gateway

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

// Provider is the interface every payment gateway implements. Amounts
// cross the provider APIs in subunits (kobo); the conversion happens
// inside each implementation so callers only ever see decimals.
type Provider interface {
	ProviderCode() types.PaymentProvider

	InitializePayment(ctx context.Context, req *InitializePaymentRequest) (*InitializePaymentResponse, error)
	VerifyPayment(ctx context.Context, reference string) (*VerifyPaymentResponse, error)
	InitiateTransfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error)
	CreateTransferRecipient(ctx context.Context, req *RecipientRequest) (*RecipientResponse, error)
	VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*AccountDetails, error)
	ListBanks(ctx context.Context) ([]Bank, error)

	// VerifyWebhookSignature must be called on the raw payload before
	// it is parsed.
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// InitializePaymentRequest starts a hosted checkout for a deposit
type InitializePaymentRequest struct {
	Reference   string            `json:"reference"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// InitializePaymentResponse carries the checkout handoff details
type InitializePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference"`
}

// VerifyPaymentResponse is the provider's authoritative view of a
// payment, fetched server to server.
type VerifyPaymentResponse struct {
	Reference   string          `json:"reference"`
	Success     bool            `json:"success"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ProviderRef string          `json:"provider_ref,omitempty"`
	Message     string          `json:"message,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// TransferRequest moves money out to a bank account
type TransferRequest struct {
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	RecipientCode string          `json:"recipient_code,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`
	BankCode      string          `json:"bank_code,omitempty"`
	Narration     string          `json:"narration,omitempty"`
}

// TransferResponse acknowledges a transfer request
type TransferResponse struct {
	Reference   string `json:"reference"`
	ProviderRef string `json:"provider_ref,omitempty"`
	Status      string `json:"status"`
}

// RecipientRequest registers a payout destination
type RecipientRequest struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

// RecipientResponse identifies a registered payout destination
type RecipientResponse struct {
	RecipientCode string `json:"recipient_code"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

// AccountDetails is the result of a bank account lookup
type AccountDetails struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code"`
}

// Bank is a supported settlement bank
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Slug string `json:"slug,omitempty"`
}

// ToSubunit converts a major-unit amount to the provider's integer
// subunit representation (naira to kobo).
func ToSubunit(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// FromSubunit converts an integer subunit amount back to major units
func FromSubunit(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}
