package v1

import (
	"net/http"
	"strconv"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	service service.BillService
	log     *logger.Logger
}

func NewBillHandler(service service.BillService, log *logger.Logger) *BillHandler {
	return &BillHandler{service: service, log: log}
}

// @Summary Create a bill
// @Tags Bills
// @Accept json
// @Produce json
// @Param bill body dto.CreateBillRequest true "Bill"
// @Success 201 {object} bill.Bill
// @Router /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	b, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create bill", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// @Summary Get a bill by ID
// @Tags Bills
// @Produce json
// @Param id path string true "Bill ID"
// @Success 200 {object} bill.Bill
// @Router /bills/{id} [get]
func (h *BillHandler) Get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary List bills
// @Tags Bills
// @Produce json
// @Param cluster_id query string false "Cluster ID"
// @Param user_id query string false "User ID"
// @Param bill_status query string false "Bill status"
// @Success 200 {array} bill.Bill
// @Router /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	filter := types.NewBillFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	bills, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bills)
}

// @Summary Get a cluster billing summary
// @Tags Bills
// @Produce json
// @Param id path string true "Cluster ID"
// @Success 200 {object} dto.BillSummary
// @Router /clusters/{id}/bills/summary [get]
func (h *BillHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Issue a draft bill
// @Description Put a draft bill into circulation. With
// @Description require_acknowledgment=true the resident must
// @Description acknowledge it before payment.
// @Tags Bills
// @Produce json
// @Param id path string true "Bill ID"
// @Param require_acknowledgment query bool false "Require acknowledgment"
// @Success 200 {object} bill.Bill
// @Router /bills/{id}/issue [post]
func (h *BillHandler) Issue(c *gin.Context) {
	requireAck, _ := strconv.ParseBool(c.Query("require_acknowledgment"))

	b, err := h.service.Issue(c.Request.Context(), c.Param("id"), requireAck)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary Acknowledge a bill
// @Tags Bills
// @Produce json
// @Param id path string true "Bill ID"
// @Success 200 {object} bill.Bill
// @Router /bills/{id}/acknowledge [post]
func (h *BillHandler) Acknowledge(c *gin.Context) {
	b, err := h.service.Acknowledge(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary Dispute a bill
// @Tags Bills
// @Accept json
// @Produce json
// @Param id path string true "Bill ID"
// @Param dispute body dto.DisputeBillRequest true "Dispute reason"
// @Success 200 {object} bill.Bill
// @Router /bills/{id}/dispute [post]
func (h *BillHandler) Dispute(c *gin.Context) {
	var req dto.DisputeBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	b, err := h.service.Dispute(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary Resolve a bill dispute
// @Tags Bills
// @Produce json
// @Param id path string true "Bill ID"
// @Success 200 {object} bill.Bill
// @Router /bills/{id}/resolve-dispute [post]
func (h *BillHandler) ResolveDispute(c *gin.Context) {
	b, err := h.service.ResolveDispute(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary Cancel a bill
// @Tags Bills
// @Produce json
// @Param id path string true "Bill ID"
// @Success 200 {object} bill.Bill
// @Router /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary Pay a bill from the resident's wallet
// @Description Partial payments are allowed up to the outstanding
// @Description amount.
// @Tags Bills
// @Accept json
// @Produce json
// @Param id path string true "Bill ID"
// @Param payment body dto.PayBillRequest true "Payment"
// @Success 200 {object} bill.Bill
// @Failure 402 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /bills/{id}/pay [post]
func (h *BillHandler) Pay(c *gin.Context) {
	var req dto.PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	b, err := h.service.ProcessPayment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Errorw("failed to process bill payment", "bill_id", c.Param("id"), "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}
