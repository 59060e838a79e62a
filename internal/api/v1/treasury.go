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

type TreasuryHandler struct {
	service service.TreasuryService
	log     *logger.Logger
}

func NewTreasuryHandler(service service.TreasuryService, log *logger.Logger) *TreasuryHandler {
	return &TreasuryHandler{service: service, log: log}
}

// @Summary Get the cluster treasury wallet
// @Tags Treasury
// @Produce json
// @Param id path string true "Cluster ID"
// @Success 200 {object} wallet.Wallet
// @Router /clusters/{id}/treasury [get]
func (h *TreasuryHandler) Get(c *gin.Context) {
	w, err := h.service.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// @Summary Record a manual treasury credit
// @Tags Treasury
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID"
// @Param credit body dto.ManualCreditRequest true "Credit"
// @Success 200 {object} wallet.Wallet
// @Router /clusters/{id}/treasury/credit [post]
func (h *TreasuryHandler) ManualCredit(c *gin.Context) {
	var req dto.ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.AddManualCredit(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.log.Errorw("failed to credit treasury", "cluster_id", c.Param("id"), "error", err)
		c.Error(err)
		return
	}

	w, err := h.service.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// @Summary Transfer funds out of the treasury to a bank account
// @Tags Treasury
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID"
// @Param transfer body dto.TransferOutRequest true "Transfer"
// @Success 200 {object} map[string]string
// @Router /clusters/{id}/treasury/transfer [post]
func (h *TreasuryHandler) TransferOut(c *gin.Context) {
	var req dto.TransferOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	txnID, err := h.service.TransferOut(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Errorw("treasury transfer failed", "cluster_id", c.Param("id"), "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction_id": txnID})
}

// @Summary Get a treasury revenue summary
// @Tags Treasury
// @Produce json
// @Param id path string true "Cluster ID"
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} dto.RevenueSummary
// @Router /clusters/{id}/treasury/revenue [get]
func (h *TreasuryHandler) RevenueSummary(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(ierr.NewError("days must be a positive integer").
				WithHint("Provide a valid number of days").
				Mark(ierr.ErrValidation))
			return
		}
		days = parsed
	}

	summary, err := h.service.GetRevenueSummary(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// providerFromQuery reads an optional provider override
func providerFromQuery(c *gin.Context) *types.PaymentProvider {
	if raw := c.Query("provider"); raw != "" {
		p := types.PaymentProvider(raw)
		return &p
	}
	return nil
}

// @Summary List payout banks for a provider
// @Tags Treasury
// @Produce json
// @Param provider query string false "Payment provider"
// @Success 200 {array} gateway.Bank
// @Router /banks [get]
func (h *TreasuryHandler) Banks(c *gin.Context) {
	banks, err := h.service.ListBanks(c.Request.Context(), providerFromQuery(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, banks)
}

// @Summary Resolve a bank account
// @Tags Treasury
// @Produce json
// @Param account_number query string true "Account number"
// @Param bank_code query string true "Bank code"
// @Param provider query string false "Payment provider"
// @Success 200 {object} gateway.AccountDetails
// @Router /banks/resolve [get]
func (h *TreasuryHandler) ResolveAccount(c *gin.Context) {
	details, err := h.service.ResolveAccount(
		c.Request.Context(),
		providerFromQuery(c),
		c.Query("account_number"),
		c.Query("bank_code"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, details)
}
