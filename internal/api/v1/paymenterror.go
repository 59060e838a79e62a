package v1

import (
	"net/http"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/gin-gonic/gin"
)

type PaymentErrorHandler struct {
	service service.PaymentErrorService
	log     *logger.Logger
}

func NewPaymentErrorHandler(service service.PaymentErrorService, log *logger.Logger) *PaymentErrorHandler {
	return &PaymentErrorHandler{service: service, log: log}
}

// @Summary Get a payment error by ID
// @Tags PaymentErrors
// @Produce json
// @Param id path string true "Payment error ID"
// @Success 200 {object} paymenterror.PaymentError
// @Router /payment-errors/{id} [get]
func (h *PaymentErrorHandler) Get(c *gin.Context) {
	pe, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pe)
}

// @Summary List payment errors
// @Tags PaymentErrors
// @Produce json
// @Param transaction_id query string false "Transaction ID"
// @Param error_type query string false "Error type"
// @Param unresolved query bool false "Only unresolved errors"
// @Success 200 {array} paymenterror.PaymentError
// @Router /payment-errors [get]
func (h *PaymentErrorHandler) List(c *gin.Context) {
	filter := types.NewPaymentErrorFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	errorsList, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, errorsList)
}

// @Summary Schedule a retry for a payment error
// @Tags PaymentErrors
// @Produce json
// @Param id path string true "Payment error ID"
// @Success 200 {object} paymenterror.PaymentError
// @Router /payment-errors/{id}/retry [post]
func (h *PaymentErrorHandler) Retry(c *gin.Context) {
	pe, err := h.service.ScheduleRetry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pe)
}

// @Summary Mark a payment error as resolved
// @Tags PaymentErrors
// @Accept json
// @Produce json
// @Param id path string true "Payment error ID"
// @Param resolution body dto.ResolvePaymentErrorRequest true "Resolution"
// @Success 200 {object} paymenterror.PaymentError
// @Router /payment-errors/{id}/resolve [post]
func (h *PaymentErrorHandler) Resolve(c *gin.Context) {
	var req dto.ResolvePaymentErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	pe, err := h.service.Resolve(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Errorw("failed to resolve payment error", "id", c.Param("id"), "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pe)
}

// @Summary Get recovery options for a payment error
// @Tags PaymentErrors
// @Produce json
// @Param id path string true "Payment error ID"
// @Success 200 {array} dto.RecoveryOption
// @Router /payment-errors/{id}/recovery-options [get]
func (h *PaymentErrorHandler) RecoveryOptions(c *gin.Context) {
	options, err := h.service.RecoveryOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, options)
}
