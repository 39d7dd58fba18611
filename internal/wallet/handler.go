package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"farebox/internal/auth"
	"farebox/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

type AdjustRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Description string `json:"description"`
}

// GetWallet godoc
// @Summary      Current rider's wallet
// @Tags         wallet
// @Produce      json
// @Success      200 {object} Wallet
// @Router       /wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreate(c.Request.Context(), riderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// ListTransactions godoc
// @Summary      Wallet transaction history, newest first
// @Tags         wallet
// @Produce      json
// @Success      200 {array} Transaction
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.Transactions(c.Request.Context(), riderID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// Credit is the admin manual-adjustment endpoint; regular top-ups arrive
// through the payment webhook.
func (h *Handler) Credit(c *gin.Context) {
	riderID, err := strconv.Atoi(c.Param("riderID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rider id"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AmountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be positive"})
		return
	}
	if req.Description == "" {
		req.Description = "manual credit"
	}

	txn, err := h.repo.Credit(c.Request.Context(), riderID, req.AmountCents, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit wallet"})
		return
	}

	metrics.WalletCreditsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "wallet credited", "transaction": txn})
}

// Debit is the admin manual-adjustment counterpart of Credit.
func (h *Handler) Debit(c *gin.Context) {
	riderID, err := strconv.Atoi(c.Param("riderID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rider id"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AmountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be positive"})
		return
	}
	if req.Description == "" {
		req.Description = "manual debit"
	}

	txn, err := h.repo.Debit(c.Request.Context(), riderID, req.AmountCents, req.Description, nil)
	if err != nil {
		switch {
		case errors.Is(err, ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to debit wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "wallet debited", "transaction": txn})
}
