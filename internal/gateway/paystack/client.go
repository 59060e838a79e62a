package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/httpclient"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

const baseURL = "https://api.paystack.co"

// SignatureHeader carries the webhook signature on Paystack requests
const SignatureHeader = "X-Paystack-Signature"

// Client implements gateway.Provider against the Paystack API
type Client struct {
	secretKey string
	http      httpclient.Client
	logger    *logger.Logger
}

// NewClient creates a new Paystack client
func NewClient(secretKey string, http httpclient.Client, logger *logger.Logger) *Client {
	return &Client{
		secretKey: secretKey,
		http:      http,
		logger:    logger,
	}
}

func (c *Client) ProviderCode() types.PaymentProvider {
	return types.PaymentProviderPaystack
}

// envelope is the response wrapper Paystack puts around every payload
type envelope struct {
	Status  bool            `json:"status"`
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
				WithHintf("Paystack request failed: %s", env.Message).
				WithReportableDetails(map[string]any{
					"status_code": httpErr.StatusCode,
				}).
				Mark(ierr.ErrProvider)
		}
		return ierr.WithError(err).
			WithHint("Paystack is unreachable").
			Mark(ierr.ErrProvider)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return ierr.WithError(err).
			WithHint("Paystack returned an unexpected response").
			Mark(ierr.ErrProvider)
	}
	if !env.Status {
		return ierr.NewError("paystack request rejected").
			WithHintf("Paystack request failed: %s", env.Message).
			Mark(ierr.ErrProvider)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return ierr.WithError(err).
				WithHint("Paystack returned an unexpected response").
				Mark(ierr.ErrProvider)
		}
	}
	return nil
}

func (c *Client) InitializePayment(ctx context.Context, req *gateway.InitializePaymentRequest) (*gateway.InitializePaymentResponse, error) {
	body := map[string]any{
		"reference": req.Reference,
		"amount":    gateway.ToSubunit(req.Amount),
		"currency":  req.Currency,
		"email":     req.Email,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &gateway.InitializePaymentResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyPaymentResponse, error) {
	var data struct {
		ID             int64      `json:"id"`
		Status         string     `json:"status"`
		Reference      string     `json:"reference"`
		Amount         int64      `json:"amount"`
		Currency       string     `json:"currency"`
		GatewayMessage string     `json:"gateway_response"`
		PaidAt         *time.Time `json:"paid_at"`
	}
	path := "/transaction/verify/" + reference
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	return &gateway.VerifyPaymentResponse{
		Reference:   data.Reference,
		Success:     data.Status == "success",
		Amount:      gateway.FromSubunit(data.Amount),
		Currency:    data.Currency,
		ProviderRef: fmt.Sprintf("%d", data.ID),
		Message:     data.GatewayMessage,
		PaidAt:      data.PaidAt,
	}, nil
}

func (c *Client) InitiateTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferResponse, error) {
	body := map[string]any{
		"source":    "balance",
		"reference": req.Reference,
		"amount":    gateway.ToSubunit(req.Amount),
		"currency":  req.Currency,
		"recipient": req.RecipientCode,
		"reason":    req.Narration,
	}

	var data struct {
		TransferCode string `json:"transfer_code"`
		Reference    string `json:"reference"`
		Status       string `json:"status"`
	}
	if err := c.call(ctx, http.MethodPost, "/transfer", body, &data); err != nil {
		return nil, err
	}

	return &gateway.TransferResponse{
		Reference:   data.Reference,
		ProviderRef: data.TransferCode,
		Status:      data.Status,
	}, nil
}

func (c *Client) CreateTransferRecipient(ctx context.Context, req *gateway.RecipientRequest) (*gateway.RecipientResponse, error) {
	body := map[string]any{
		"type":           "nuban",
		"name":           req.Name,
		"account_number": req.AccountNumber,
		"bank_code":      req.BankCode,
		"currency":       req.Currency,
	}

	var data struct {
		RecipientCode string `json:"recipient_code"`
		Details       struct {
			AccountNumber string `json:"account_number"`
			BankCode      string `json:"bank_code"`
		} `json:"details"`
		Name string `json:"name"`
	}
	if err := c.call(ctx, http.MethodPost, "/transferrecipient", body, &data); err != nil {
		return nil, err
	}

	return &gateway.RecipientResponse{
		RecipientCode: data.RecipientCode,
		Name:          data.Name,
		AccountNumber: data.Details.AccountNumber,
		BankCode:      data.Details.BankCode,
	}, nil
}

func (c *Client) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.AccountDetails, error) {
	var data struct {
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
	}
	path := fmt.Sprintf("/bank/resolve?account_number=%s&bank_code=%s", accountNumber, bankCode)
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
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
		Slug string `json:"slug"`
	}
	if err := c.call(ctx, http.MethodGet, "/bank?currency=NGN", nil, &data); err != nil {
		return nil, err
	}

	banks := make([]gateway.Bank, 0, len(data))
	for _, b := range data {
		banks = append(banks, gateway.Bank{Name: b.Name, Code: b.Code, Slug: b.Slug})
	}
	return banks, nil
}

// VerifyWebhookSignature checks the hex HMAC-SHA512 of the raw payload
// keyed by the secret key against the X-Paystack-Signature header.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
