package testutil

import (
	"context"
	"sync"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

var _ gateway.Provider = (*MockGatewayProvider)(nil)

// MockGatewayProvider is a scriptable gateway.Provider for tests.
// Responses are keyed by payment reference; unset references succeed.
type MockGatewayProvider struct {
	mu sync.Mutex

	Code types.PaymentProvider

	// FailTransfers makes every transfer attempt fail
	FailTransfers bool
	// FailInitialize makes every checkout initialization fail
	FailInitialize bool
	// FailAccountVerification makes VerifyAccount fail
	FailAccountVerification bool
	// ValidSignature controls VerifyWebhookSignature
	ValidSignature bool

	verifyResponses map[string]*gateway.VerifyPaymentResponse
	verifyErrors    map[string]error

	InitializeCalls    []*gateway.InitializePaymentRequest
	TransferCalls      []*gateway.TransferRequest
	RecipientCalls     []*gateway.RecipientRequest
	VerifyCalls        []string
	VerifyAccountCalls []string
	ListBankCalls      int
}

func NewMockGatewayProvider(code types.PaymentProvider) *MockGatewayProvider {
	return &MockGatewayProvider{
		Code:            code,
		ValidSignature:  true,
		verifyResponses: make(map[string]*gateway.VerifyPaymentResponse),
		verifyErrors:    make(map[string]error),
	}
}

func (m *MockGatewayProvider) ProviderCode() types.PaymentProvider {
	return m.Code
}

// StubVerification sets the canned response for a reference
func (m *MockGatewayProvider) StubVerification(reference string, resp *gateway.VerifyPaymentResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyResponses[reference] = resp
}

// StubVerificationError makes verification of a reference fail
func (m *MockGatewayProvider) StubVerificationError(reference string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyErrors[reference] = err
}

func (m *MockGatewayProvider) InitializePayment(ctx context.Context, req *gateway.InitializePaymentRequest) (*gateway.InitializePaymentResponse, error) {
	m.mu.Lock()
	m.InitializeCalls = append(m.InitializeCalls, req)
	failed := m.FailInitialize
	m.mu.Unlock()

	if failed {
		return nil, ierr.NewError("checkout initialization rejected").
			WithHint("Provider rejected the checkout request").
			Mark(ierr.ErrProvider)
	}
	return &gateway.InitializePaymentResponse{
		AuthorizationURL: "https://checkout.test/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (m *MockGatewayProvider) VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyPaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VerifyCalls = append(m.VerifyCalls, reference)
	if err, ok := m.verifyErrors[reference]; ok {
		return nil, err
	}
	if resp, ok := m.verifyResponses[reference]; ok {
		return resp, nil
	}
	return &gateway.VerifyPaymentResponse{
		Reference: reference,
		Success:   true,
	}, nil
}

func (m *MockGatewayProvider) InitiateTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TransferCalls = append(m.TransferCalls, req)
	if m.FailTransfers {
		return nil, ierr.NewError("transfer rejected").
			WithHint("Provider rejected the transfer").
			Mark(ierr.ErrProvider)
	}
	return &gateway.TransferResponse{
		Reference:   req.Reference,
		ProviderRef: "prov_" + req.Reference,
		Status:      "pending",
	}, nil
}

func (m *MockGatewayProvider) CreateTransferRecipient(ctx context.Context, req *gateway.RecipientRequest) (*gateway.RecipientResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecipientCalls = append(m.RecipientCalls, req)
	return &gateway.RecipientResponse{
		RecipientCode: "rcp_" + req.AccountNumber,
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
	}, nil
}

func (m *MockGatewayProvider) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.AccountDetails, error) {
	m.mu.Lock()
	m.VerifyAccountCalls = append(m.VerifyAccountCalls, accountNumber)
	failed := m.FailAccountVerification
	m.mu.Unlock()

	if failed {
		return nil, ierr.NewError("could not resolve account").
			WithHint("Account number and bank code did not match an account").
			Mark(ierr.ErrProvider)
	}
	return &gateway.AccountDetails{
		AccountNumber: accountNumber,
		AccountName:   "Test Account",
		BankCode:      bankCode,
	}, nil
}

func (m *MockGatewayProvider) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	m.mu.Lock()
	m.ListBankCalls++
	m.mu.Unlock()

	return []gateway.Bank{
		{Name: "Test Bank", Code: "001"},
	}, nil
}

func (m *MockGatewayProvider) VerifyWebhookSignature(payload []byte, signature string) bool {
	return m.ValidSignature
}
