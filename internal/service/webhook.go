package service

import (
	"context"
	"encoding/json"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

// WebhookService processes inbound provider events. The signature is
// verified on the raw payload before anything is parsed, and the event
// is never trusted on its own: the payment status is re-verified with
// the provider server to server before the transaction moves.
type WebhookService interface {
	Process(ctx context.Context, providerCode types.PaymentProvider, payload []byte, signature string) (*dto.WebhookResult, error)
}

type webhookService struct {
	ServiceParams
	transactionService  TransactionService
	paymentErrorService PaymentErrorService
}

// NewWebhookService creates a new webhook service
func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{
		ServiceParams:       params,
		transactionService:  NewTransactionService(params),
		paymentErrorService: NewPaymentErrorService(params),
	}
}

// webhookEvent is the common shape of Paystack and Flutterwave charge
// events. Paystack carries the reference in data.reference, Flutterwave
// in data.tx_ref.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		TxRef     string `json:"tx_ref"`
		Status    string `json:"status"`
	} `json:"data"`
}

func (e *webhookEvent) reference() string {
	if e.Data.Reference != "" {
		return e.Data.Reference
	}
	return e.Data.TxRef
}

var successEvents = []string{"charge.success", "charge.completed"}
var failureEvents = []string{"charge.failed", "transfer.failed"}

func (s *webhookService) Process(ctx context.Context, providerCode types.PaymentProvider, payload []byte, signature string) (*dto.WebhookResult, error) {
	provider, err := s.GatewayFactory.Get(providerCode)
	if err != nil {
		return nil, err
	}

	if !provider.VerifyWebhookSignature(payload, signature) {
		return nil, ierr.NewError("webhook signature verification failed").
			WithHint("Webhook signature did not match").
			WithReportableDetails(map[string]any{
				"provider": providerCode,
			}).
			Mark(ierr.ErrWebhookSignature)
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}

	result := &dto.WebhookResult{Event: event.Event, Reference: event.reference()}

	isSuccess := lo.Contains(successEvents, event.Event)
	isFailure := lo.Contains(failureEvents, event.Event)
	if !isSuccess && !isFailure {
		s.Logger.Debugw("ignoring webhook event",
			"provider", providerCode,
			"event", event.Event,
		)
		result.Reason = "event not handled"
		return result, nil
	}

	if result.Reference == "" {
		result.Reason = "event has no reference"
		return result, nil
	}

	txn, err := s.TransactionRepo.GetByReference(ctx, result.Reference)
	if err != nil {
		if ierr.IsNotFound(err) {
			// Acknowledge so the provider stops redelivering an event
			// we will never match.
			s.Logger.Warnw("webhook references unknown transaction",
				"provider", providerCode,
				"event", event.Event,
				"reference", result.Reference,
			)
			result.Reason = "unknown transaction reference"
			return result, nil
		}
		return nil, err
	}
	result.TransactionID = txn.ID

	// Redeliveries of events for settled transactions are no-ops.
	if txn.TxnStatus.IsFinal() {
		result.Handled = true
		result.Status = string(txn.TxnStatus)
		result.Reason = "transaction already final"
		return result, nil
	}

	if isFailure {
		return s.fail(ctx, result, txn.ID, providerCode, "provider reported "+event.Event)
	}

	verification, err := provider.VerifyPayment(ctx, result.Reference)
	if err != nil {
		return nil, err
	}
	if !verification.Success {
		reason := verification.Message
		if reason == "" {
			reason = "provider verification reported failure"
		}
		return s.fail(ctx, result, txn.ID, providerCode, reason)
	}
	if !verification.Amount.Equal(txn.Amount) {
		s.Logger.Errorw("webhook amount mismatch",
			"transaction_id", txn.ID,
			"reference", result.Reference,
			"expected_amount", txn.Amount,
			"verified_amount", verification.Amount,
		)
		return s.fail(ctx, result, txn.ID, providerCode, "verified amount does not match transaction amount")
	}
	if verification.Currency != "" && verification.Currency != txn.Currency {
		s.Logger.Errorw("webhook currency mismatch",
			"transaction_id", txn.ID,
			"reference", result.Reference,
			"expected_currency", txn.Currency,
			"verified_currency", verification.Currency,
		)
		return s.fail(ctx, result, txn.ID, providerCode, "verified currency does not match transaction currency")
	}

	updated, err := s.transactionService.MarkCompleted(ctx, txn.ID)
	if err != nil {
		return nil, err
	}

	result.Handled = true
	result.Status = string(updated.TxnStatus)
	s.Logger.Infow("webhook completed transaction",
		"provider", providerCode,
		"event", event.Event,
		"transaction_id", txn.ID,
		"reference", result.Reference,
	)
	return result, nil
}

// fail moves the transaction to failed and records a payment error for
// follow-up. The recorded error never blocks the webhook response.
func (s *webhookService) fail(ctx context.Context, result *dto.WebhookResult, txnID string, providerCode types.PaymentProvider, reason string) (*dto.WebhookResult, error) {
	updated, err := s.transactionService.MarkFailed(ctx, txnID, reason)
	if err != nil {
		return nil, err
	}

	if _, err := s.paymentErrorService.Record(ctx, &dto.RecordPaymentErrorRequest{
		TransactionID: &txnID,
		Message:       reason,
		ProviderCode:  &providerCode,
	}); err != nil {
		s.Logger.Errorw("failed to record payment error from webhook",
			"transaction_id", txnID,
			"error", err,
		)
	}

	result.Handled = true
	result.Status = string(updated.TxnStatus)
	result.Reason = reason
	return result, nil
}
