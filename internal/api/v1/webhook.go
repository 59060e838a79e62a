package v1

import (
	"net/http"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway/flutterwave"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway/paystack"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service service.WebhookService
	log     *logger.Logger
}

func NewWebhookHandler(service service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

// @Summary Receive a payment provider webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param provider path string true "Provider code" Enums(paystack, flutterwave)
// @Success 200 {object} dto.WebhookResult
// @Router /webhooks/{provider} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := types.PaymentProvider(c.Param("provider"))

	payload, err := c.GetRawData()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Unable to read request body").
			Mark(ierr.ErrValidation))
		return
	}

	var signature string
	switch provider {
	case types.PaymentProviderPaystack:
		signature = c.GetHeader(paystack.SignatureHeader)
	case types.PaymentProviderFlutterwave:
		signature = c.GetHeader(flutterwave.SignatureHeader)
	default:
		c.Error(ierr.NewErrorf("unsupported webhook provider %s", provider).
			WithHint("Unknown payment provider").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.service.Process(c.Request.Context(), provider, payload, signature)
	if err != nil {
		h.log.Errorw("webhook processing failed", "provider", provider, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
