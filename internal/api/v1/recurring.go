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

type RecurringPaymentHandler struct {
	service service.RecurringPaymentService
	log     *logger.Logger
}

func NewRecurringPaymentHandler(service service.RecurringPaymentService, log *logger.Logger) *RecurringPaymentHandler {
	return &RecurringPaymentHandler{service: service, log: log}
}

// @Summary Create a payment schedule
// @Tags RecurringPayments
// @Accept json
// @Produce json
// @Param schedule body dto.CreateRecurringPaymentRequest true "Schedule"
// @Success 201 {object} recurringpayment.RecurringPayment
// @Router /recurring-payments [post]
func (h *RecurringPaymentHandler) Create(c *gin.Context) {
	var req dto.CreateRecurringPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	rp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create recurring payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rp)
}

// @Summary Get a payment schedule by ID
// @Tags RecurringPayments
// @Produce json
// @Param id path string true "Recurring payment ID"
// @Success 200 {object} recurringpayment.RecurringPayment
// @Router /recurring-payments/{id} [get]
func (h *RecurringPaymentHandler) Get(c *gin.Context) {
	rp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rp)
}

// @Summary List payment schedules
// @Tags RecurringPayments
// @Produce json
// @Param wallet_id query string false "Wallet ID"
// @Param cluster_id query string false "Cluster ID"
// @Success 200 {array} recurringpayment.RecurringPayment
// @Router /recurring-payments [get]
func (h *RecurringPaymentHandler) List(c *gin.Context) {
	filter := types.NewRecurringPaymentFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// @Summary Pause a schedule
// @Tags RecurringPayments
// @Produce json
// @Param id path string true "Recurring payment ID"
// @Success 200 {object} recurringpayment.RecurringPayment
// @Router /recurring-payments/{id}/pause [post]
func (h *RecurringPaymentHandler) Pause(c *gin.Context) {
	rp, err := h.service.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rp)
}

// @Summary Resume a paused schedule
// @Tags RecurringPayments
// @Produce json
// @Param id path string true "Recurring payment ID"
// @Success 200 {object} recurringpayment.RecurringPayment
// @Router /recurring-payments/{id}/resume [post]
func (h *RecurringPaymentHandler) Resume(c *gin.Context) {
	rp, err := h.service.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rp)
}

// @Summary Cancel a schedule
// @Tags RecurringPayments
// @Produce json
// @Param id path string true "Recurring payment ID"
// @Success 200 {object} recurringpayment.RecurringPayment
// @Router /recurring-payments/{id}/cancel [post]
func (h *RecurringPaymentHandler) Cancel(c *gin.Context) {
	rp, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rp)
}
