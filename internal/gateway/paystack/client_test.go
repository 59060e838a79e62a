package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/httpclient"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHTTP struct {
	requests []*httpclient.Request
	respond  func(req *httpclient.Request) (*httpclient.Response, error)
}

func (s *stubHTTP) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	s.requests = append(s.requests, req)
	return s.respond(req)
}

func newTestClient(t *testing.T, respond func(req *httpclient.Request) (*httpclient.Response, error)) (*Client, *stubHTTP) {
	t.Helper()
	log, err := logger.NewLogger(types.LogLevelInfo)
	require.NoError(t, err)
	stub := &stubHTTP{respond: respond}
	return NewClient("sk_test_secret", stub, log), stub
}

func TestVerifyPaymentSuccess(t *testing.T) {
	client, stub := newTestClient(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{
			StatusCode: 200,
			Body: []byte(`{
				"status": true,
				"message": "Verification successful",
				"data": {
					"id": 12345,
					"status": "success",
					"reference": "TXN-001",
					"amount": 150000,
					"currency": "NGN",
					"gateway_response": "Successful"
				}
			}`),
		}, nil
	})

	resp, err := client.VerifyPayment(context.Background(), "TXN-001")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "TXN-001", resp.Reference)
	// Paystack amounts are in kobo
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "12345", resp.ProviderRef)

	require.Len(t, stub.requests, 1)
	assert.Equal(t, "https://api.paystack.co/transaction/verify/TXN-001", stub.requests[0].URL)
	assert.Equal(t, "Bearer sk_test_secret", stub.requests[0].Headers["Authorization"])
}

func TestVerifyPaymentFailedCharge(t *testing.T) {
	client, _ := newTestClient(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{
			StatusCode: 200,
			Body: []byte(`{
				"status": true,
				"message": "Verification successful",
				"data": {
					"id": 12346,
					"status": "failed",
					"reference": "TXN-002",
					"amount": 150000,
					"currency": "NGN",
					"gateway_response": "Declined"
				}
			}`),
		}, nil
	})

	resp, err := client.VerifyPayment(context.Background(), "TXN-002")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Declined", resp.Message)
}

func TestRejectedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{
			StatusCode: 200,
			Body:       []byte(`{"status": false, "message": "Transaction reference not found"}`),
		}, nil
	})

	_, err := client.VerifyPayment(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, ierr.IsProvider(err))
}

func TestInitiateTransferSendsSubunits(t *testing.T) {
	client, stub := newTestClient(t, func(req *httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{
			StatusCode: 200,
			Body: []byte(`{
				"status": true,
				"message": "Transfer queued",
				"data": {"transfer_code": "TRF_abc", "reference": "TXN-003", "status": "pending"}
			}`),
		}, nil
	})

	resp, err := client.InitiateTransfer(context.Background(), &gateway.TransferRequest{
		Reference:     "TXN-003",
		Amount:        decimal.NewFromInt(2500),
		Currency:      "NGN",
		RecipientCode: "rcp_1",
		Narration:     "August payout",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRF_abc", resp.ProviderRef)
	assert.Equal(t, "pending", resp.Status)

	require.Len(t, stub.requests, 1)
	assert.Contains(t, string(stub.requests[0].Body), `"amount":250000`)
	assert.Contains(t, string(stub.requests[0].Body), `"recipient":"rcp_1"`)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client, _ := newTestClient(t, nil)
	payload := []byte(`{"event":"charge.success"}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(payload, valid))
	assert.False(t, client.VerifyWebhookSignature(payload, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature(payload, ""))
	// A signature for different content must not validate
	assert.False(t, client.VerifyWebhookSignature([]byte(`{"event":"charge.failed"}`), valid))
}
