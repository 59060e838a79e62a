package v1

import (
	"net/http"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/gin-gonic/gin"
)

// JobsHandler exposes the batch jobs for manual and scheduled triggering.
type JobsHandler struct {
	billService      service.BillService
	recurringService service.RecurringPaymentService
	errorService     service.PaymentErrorService
	log              *logger.Logger
}

func NewJobsHandler(
	billService service.BillService,
	recurringService service.RecurringPaymentService,
	errorService service.PaymentErrorService,
	log *logger.Logger,
) *JobsHandler {
	return &JobsHandler{
		billService:      billService,
		recurringService: recurringService,
		errorService:     errorService,
		log:              log,
	}
}

// @Summary Sweep past-due bills into overdue status
// @Tags Jobs
// @Produce json
// @Success 200 {object} dto.BatchResult
// @Router /admin/jobs/overdue-bills [post]
func (h *JobsHandler) RunOverdueBills(c *gin.Context) {
	result, err := h.billService.CheckAndUpdateOverdue(c.Request.Context())
	if err != nil {
		h.log.Errorw("overdue bill sweep failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Charge all recurring payments that are due
// @Tags Jobs
// @Produce json
// @Success 200 {object} dto.ProcessDueResult
// @Router /admin/jobs/recurring-due [post]
func (h *JobsHandler) RunRecurringDue(c *gin.Context) {
	result, err := h.recurringService.ProcessDue(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.log.Errorw("recurring payment run failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Retry payment errors whose backoff has elapsed
// @Tags Jobs
// @Produce json
// @Success 200 {object} dto.BatchResult
// @Router /admin/jobs/payment-retries [post]
func (h *JobsHandler) RunPaymentRetries(c *gin.Context) {
	result, err := h.errorService.ProcessDueRetries(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.log.Errorw("payment retry run failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Send reminders for bills coming due
// @Tags Jobs
// @Produce json
// @Success 200 {object} dto.BatchResult
// @Router /admin/jobs/bill-reminders [post]
func (h *JobsHandler) RunBillReminders(c *gin.Context) {
	result, err := h.billService.SendDueReminders(c.Request.Context())
	if err != nil {
		h.log.Errorw("bill reminder run failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
