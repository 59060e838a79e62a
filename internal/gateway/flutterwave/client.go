package flutterwave

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/httpclient"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

const baseURL = "https://api.flutterwave.com/v3"

// SignatureHeader carries the webhook hash on Flutterwave requests
const SignatureHeader = "verif-hash"

// Client implements gateway.Provider against the Flutterwave v3 API
type Client struct {
	secretKey  string
	secretHash string
	http       httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a new Flutterwave client. secretHash is the value
// configured on the Flutterwave dashboard for webhook verification.
func NewClient(secretKey, secretHash string, http httpclient.Client, logger *logger.Logger) *Client {
	return &Client{
		secretKey:  secretKey,
		secretHash: secretHash,
		http:       http,
		logger:     logger,
	}
}

func (c *Client) ProviderCode() types.PaymentProvider {
	return types.PaymentProviderFlutterwave
}

// envelope is the response wrapper Flutterwave puts around every payload
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode provider request").
				Mark(ierr.ErrProvider)
		}
	}

	resp, err := gateway.SendWithRetry(ctx, c.http, &httpclient.Request{
		Method: method,
		URL:    baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.secretKey,
		},
		Body: payload,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			var env envelope
			_ = json.Unmarshal(httpErr.Response, &env)
			return ierr.WithError(err).
				WithHintf("Flutterwave request failed: %s", env.Message).
				WithReportableDetails(map[string]any{
					"status_code": httpErr.StatusCode,
				}).
				Mark(ierr.ErrProvider)
		}
		return ierr.WithError(err).
			WithHint("Flutterwave is unreachable").
			Mark(ierr.ErrProvider)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return ierr.WithError(err).
			WithHint("Flutterwave returned an unexpected response").
			Mark(ierr.ErrProvider)
	}
	if env.Status != "success" {
		return ierr.NewError("flutterwave request rejected").
			WithHintf("Flutterwave request failed: %s", env.Message).
			Mark(ierr.ErrProvider)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return ierr.WithError(err).
				WithHint("Flutterwave returned an unexpected response").
				Mark(ierr.ErrProvider)
		}
	}
	return nil
}

func (c *Client) InitializePayment(ctx context.Context, req *gateway.InitializePaymentRequest) (*gateway.InitializePaymentResponse, error) {
	body := map[string]any{
		"tx_ref":       req.Reference,
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email": req.Email,
		},
	}
	if len(req.Metadata) > 0 {
		body["meta"] = req.Metadata
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := c.call(ctx, http.MethodPost, "/payments", body, &data); err != nil {
		return nil, err
	}

	return &gateway.InitializePaymentResponse{
		AuthorizationURL: data.Link,
		Reference:        req.Reference,
	}, nil
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyPaymentResponse, error) {
	var data struct {
		ID                int64           `json:"id"`
		TxRef             string          `json:"tx_ref"`
		Status            string          `json:"status"`
		Amount            decimal.Decimal `json:"amount"`
		Currency          string          `json:"currency"`
		ProcessorResponse string          `json:"processor_response"`
		CreatedAt         *time.Time      `json:"created_at"`
	}
	path := "/transactions/verify_by_reference?tx_ref=" + reference
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	return &gateway.VerifyPaymentResponse{
		Reference:   data.TxRef,
		Success:     data.Status == "successful",
		Amount:      data.Amount,
		Currency:    data.Currency,
		ProviderRef: fmt.Sprintf("%d", data.ID),
		Message:     data.ProcessorResponse,
		PaidAt:      data.CreatedAt,
	}, nil
}

func (c *Client) InitiateTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferResponse, error) {
	body := map[string]any{
		"reference":      req.Reference,
		"amount":         req.Amount.String(),
		"currency":       req.Currency,
		"account_bank":   req.BankCode,
		"account_number": req.AccountNumber,
		"narration":      req.Narration,
	}

	var data struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := c.call(ctx, http.MethodPost, "/transfers", body, &data); err != nil {
		return nil, err
	}

	return &gateway.TransferResponse{
		Reference:   data.Reference,
		ProviderRef: fmt.Sprintf("%d", data.ID),
		Status:      data.Status,
	}, nil
}

// CreateTransferRecipient is a passthrough. Flutterwave takes the
// account details inline on the transfer call, so there is nothing to
// register upstream; the details are echoed back for the caller.
func (c *Client) CreateTransferRecipient(_ context.Context, req *gateway.RecipientRequest) (*gateway.RecipientResponse, error) {
	return &gateway.RecipientResponse{
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
	}, nil
}

func (c *Client) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.AccountDetails, error) {
	body := map[string]any{
		"account_number": accountNumber,
		"account_bank":   bankCode,
	}

	var data struct {
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
	}
	if err := c.call(ctx, http.MethodPost, "/accounts/resolve", body, &data); err != nil {
		return nil, err
	}

	return &gateway.AccountDetails{
		AccountNumber: data.AccountNumber,
		AccountName:   data.AccountName,
		BankCode:      bankCode,
	}, nil
}

func (c *Client) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	var data []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := c.call(ctx, http.MethodGet, "/banks/NG", nil, &data); err != nil {
		return nil, err
	}

	banks := make([]gateway.Bank, 0, len(data))
	for _, b := range data {
		banks = append(banks, gateway.Bank{Name: b.Name, Code: b.Code})
	}
	return banks, nil
}

// VerifyWebhookSignature compares the verif-hash header against the
// configured secret hash in constant time. Flutterwave sends the hash
// verbatim rather than signing the payload.
func (c *Client) VerifyWebhookSignature(_ []byte, signature string) bool {
	if c.secretHash == "" || signature == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.secretHash), []byte(signature)) == 1
}
