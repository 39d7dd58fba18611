package payment

import (
	"errors"
	"net/http"
	"time"

	"farebox/internal/api"
	"farebox/internal/auth"
	"farebox/internal/logger"
	"farebox/internal/metrics"
	"farebox/internal/pass"
	"farebox/internal/ticket"
	"farebox/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	payments   *Repository
	walletRepo wallet.Repository
	passRepo   pass.Repository
	tickets    *ticket.Repository
}

func NewHandler(payments *Repository, walletRepo wallet.Repository, passRepo pass.Repository, tickets *ticket.Repository) *Handler {
	return &Handler{
		payments:   payments,
		walletRepo: walletRepo,
		passRepo:   passRepo,
		tickets:    tickets,
	}
}

type CheckoutRequest struct {
	Type        string `json:"type" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	RouteID     string `json:"route_id"`
	BusID       string `json:"bus_id"`
	StationName string `json:"station_name"`
}

// CreateCheckout godoc
// @Summary      Open a pending payment and return its session id
// @Description  The session id is what the payment provider echoes back on
// @Description  the webhook once the charge succeeds.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Router       /payments/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type and a positive amount_cents are required"})
		return
	}

	switch req.Type {
	case TypeWallet, TypePass, TypeTicket:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown purchase type"})
		return
	}

	sessionID := "sess_" + uuid.NewString()

	p, err := h.payments.Create(c.Request.Context(), riderID, sessionID, req.Type, req.AmountCents, req.RouteID, req.BusID, req.StationName)
	if err != nil {
		logger.Errorf("Checkout: failed to create payment for rider %d: %v", riderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": p.SessionID, "payment": p})
}

// HandleCompleted godoc
// @Summary      React to a verified payment-succeeded event
// @Description  Credits the wallet, or creates a pass or ticket, depending
// @Description  on the pending payment's purchase type. Idempotent: an
// @Description  already-completed payment is acknowledged without reprocessing.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Router       /webhooks/payment [post]
func (h *Handler) HandleCompleted(c *gin.Context) {
	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	ctx := c.Request.Context()

	p, err := h.payments.GetBySession(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment"})
		return
	}

	if p.Status == StatusCompleted {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "payment already processed"})
		return
	}

	switch p.Type {
	case TypeWallet:
		if _, err := h.walletRepo.Credit(ctx, p.RiderID, p.FareCents, "wallet top-up"); err != nil {
			logger.Errorf("Webhook: wallet credit failed for session %s: %v", p.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit wallet"})
			return
		}
		metrics.WalletCreditsTotal.Inc()

	case TypePass:
		expiry := time.Now().AddDate(0, 1, 0)
		if _, err := h.passRepo.CreatePass(ctx, p.RiderID, p.RouteID, p.FareCents, expiry); err != nil {
			logger.Errorf("Webhook: pass creation failed for session %s: %v", p.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pass"})
			return
		}

	case TypeTicket:
		if _, err := h.tickets.Create(ctx, p.RiderID, p.RouteID, p.BusID, p.StationName, p.FareCents, p.SessionID); err != nil {
			logger.Errorf("Webhook: ticket creation failed for session %s: %v", p.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
			return
		}

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown purchase type"})
		return
	}

	if err := h.payments.MarkCompleted(ctx, p.ID); err != nil {
		logger.Errorf("Webhook: failed to mark payment %d completed: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finalize payment"})
		return
	}

	logger.Infof("Payment completed: session=%s rider=%d type=%s amount=%d", p.SessionID, p.RiderID, p.Type, p.FareCents)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "payment processed"})
}
