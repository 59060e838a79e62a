package v1

import (
	"net/http"

	"github.com/danny-ell77/clustr-be-sub003/internal/dto"
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service service.WalletService
	log     *logger.Logger
}

func NewWalletHandler(service service.WalletService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{service: service, log: log}
}

// @Summary Create a new wallet
// @Description Open a wallet for a user in a cluster
// @Tags Wallets
// @Accept json
// @Produce json
// @Param wallet body dto.CreateWalletRequest true "Wallet configuration"
// @Success 201 {object} wallet.Wallet
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	w, err := h.service.CreateWallet(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create wallet", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, w)
}

// @Summary Get wallet by ID
// @Tags Wallets
// @Produce json
// @Param id path string true "Wallet ID"
// @Success 200 {object} wallet.Wallet
// @Failure 404 {object} middleware.ErrorResponse
// @Router /wallets/{id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Wallet ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// @Summary Get wallet balance summary
// @Tags Wallets
// @Produce json
// @Param id path string true "Wallet ID"
// @Success 200 {object} dto.WalletBalanceSummary
// @Router /wallets/{id}/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	summary, err := h.service.GetBalanceSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *WalletHandler) operation(c *gin.Context, apply func(c *gin.Context, req *dto.WalletOperationRequest) error) {
	var req dto.WalletOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}
	if err := apply(c, &req); err != nil {
		c.Error(err)
		return
	}
}

// @Summary Credit a wallet
// @Tags Wallets
// @Accept json
// @Produce json
// @Param id path string true "Wallet ID"
// @Param operation body dto.WalletOperationRequest true "Amount"
// @Success 200 {object} wallet.Wallet
// @Router /wallets/{id}/credit [post]
func (h *WalletHandler) Credit(c *gin.Context) {
	h.operation(c, func(c *gin.Context, req *dto.WalletOperationRequest) error {
		w, err := h.service.Credit(c.Request.Context(), c.Param("id"), req.Amount)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, w)
		return nil
	})
}

// @Summary Debit a wallet
// @Tags Wallets
// @Accept json
// @Produce json
// @Param id path string true "Wallet ID"
// @Param operation body dto.WalletOperationRequest true "Amount"
// @Success 200 {object} wallet.Wallet
// @Failure 402 {object} middleware.ErrorResponse
// @Router /wallets/{id}/debit [post]
func (h *WalletHandler) Debit(c *gin.Context) {
	h.operation(c, func(c *gin.Context, req *dto.WalletOperationRequest) error {
		w, err := h.service.Debit(c.Request.Context(), c.Param("id"), req.Amount)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, w)
		return nil
	})
}

// @Summary Suspend a wallet
// @Tags Wallets
// @Param id path string true "Wallet ID"
// @Success 204
// @Router /wallets/{id}/suspend [post]
func (h *WalletHandler) Suspend(c *gin.Context) {
	if err := h.service.Suspend(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Reactivate a suspended wallet
// @Tags Wallets
// @Param id path string true "Wallet ID"
// @Success 204
// @Router /wallets/{id}/reactivate [post]
func (h *WalletHandler) Reactivate(c *gin.Context) {
	if err := h.service.Reactivate(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Close a wallet
// @Description Close a wallet. The balance must be zero.
// @Tags Wallets
// @Param id path string true "Wallet ID"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse
// @Router /wallets/{id}/close [post]
func (h *WalletHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set the wallet PIN
// @Tags Wallets
// @Accept json
// @Param id path string true "Wallet ID"
// @Param pin body dto.SetPinRequest true "PIN"
// @Success 204
// @Router /wallets/{id}/pin [put]
func (h *WalletHandler) SetPin(c *gin.Context) {
	var req dto.SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.SetPin(c.Request.Context(), c.Param("id"), &req); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
