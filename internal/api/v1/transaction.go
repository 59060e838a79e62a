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

type TransactionHandler struct {
	service service.TransactionService
	log     *logger.Logger
}

func NewTransactionHandler(service service.TransactionService, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, log: log}
}

// @Summary Create a transaction
// @Description Open a transaction against a wallet. Outbound types
// @Description place a hold on the wallet until settled or released.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} transaction.Transaction
// @Failure 402 {object} middleware.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	txn, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create transaction", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// @Summary Initiate a wallet deposit through a payment provider
// @Description Opens a pending deposit and returns the provider's
// @Description hosted checkout URL. The webhook completes the deposit.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Wallet ID"
// @Param deposit body dto.InitiateDepositRequest true "Deposit"
// @Success 200 {object} dto.InitiateDepositResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /wallets/{id}/deposit [post]
func (h *TransactionHandler) InitiateDeposit(c *gin.Context) {
	var req dto.InitiateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.InitiateDeposit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Errorw("failed to initiate deposit", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a transaction by ID
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} transaction.Transaction
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Param wallet_id query string false "Wallet ID"
// @Param type query string false "Transaction type"
// @Param transaction_status query string false "Transaction status"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	filter := types.NewTransactionFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get wallet transaction history
// @Tags Transactions
// @Produce json
// @Param id path string true "Wallet ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /wallets/{id}/transactions [get]
func (h *TransactionHandler) GetHistory(c *gin.Context) {
	filter := types.NewTransactionFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetHistory(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a pending transaction
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} transaction.Transaction
// @Failure 409 {object} middleware.ErrorResponse
// @Router /transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	txn, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// @Summary Refund a completed transaction
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} transaction.Transaction
// @Failure 409 {object} middleware.ErrorResponse
// @Router /transactions/{id}/refund [post]
func (h *TransactionHandler) Refund(c *gin.Context) {
	txn, err := h.service.MarkRefunded(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
