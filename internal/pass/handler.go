package pass

import (
	"errors"
	"net/http"
	"strconv"

	"farebox/internal/auth"
	"farebox/internal/scantoken"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry Registry
	repo     Repository
	tokens   *scantoken.Service
}

func NewHandler(registry Registry, repo Repository, tokens *scantoken.Service) *Handler {
	return &Handler{registry: registry, repo: repo, tokens: tokens}
}

// RecordScan godoc
// @Summary      Record a pass scan
// @Description  Body carries either a scan token or a plain pass_id. Token
// @Description  checks (freshness, integrity, replay) run before the
// @Description  registry's own ownership, expiry and daily-dedup checks.
// @Tags         passes
// @Accept       json
// @Produce      json
// @Router       /passes/scan [post]
func (h *Handler) RecordScan(c *gin.Context) {
	actingRiderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req RecordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	riderID := actingRiderID
	passID := req.PassID

	if req.Token != "" {
		payload, err := h.tokens.Decode(c.Request.Context(), req.Token)
		if err != nil {
			switch {
			case errors.Is(err, scantoken.ErrTokenStale):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "scan token has expired"})
			case errors.Is(err, scantoken.ErrTokenReplayed):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "scan token already used"})
			case errors.Is(err, scantoken.ErrPassExpired):
				c.JSON(http.StatusBadRequest, gin.H{"error": "pass has expired"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid scan token"})
			}
			return
		}
		riderID = payload.RiderID
		passID = payload.PassID
	}

	if passID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass_id or token is required"})
		return
	}

	usage, err := h.registry.RecordScan(c.Request.Context(), riderID, passID, req.Location, req.BusID, req.StationName)
	if err != nil {
		switch {
		case errors.Is(err, ErrPassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pass not found"})
		case errors.Is(err, ErrOwnershipMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "pass does not belong to this rider"})
		case errors.Is(err, ErrPassExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "pass has expired"})
		case errors.Is(err, ErrDuplicateScan):
			c.JSON(http.StatusConflict, gin.H{"error": "pass already used today"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record pass usage"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "pass usage recorded", "usage": usage})
}

// ListMyUsages godoc
// @Summary      Scan history for the rider, newest first
// @Tags         passes
// @Produce      json
// @Router       /passes/usages [get]
func (h *Handler) ListMyUsages(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	usages, err := h.registry.ListForRider(c.Request.Context(), riderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pass usages"})
		return
	}

	c.JSON(http.StatusOK, usages)
}

// ListAllUsages godoc
// @Summary      Recent scans across all riders (admin review queue)
// @Tags         passes
// @Produce      json
// @Router       /admin/passes/usages [get]
func (h *Handler) ListAllUsages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	usages, err := h.registry.ListAll(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pass usages"})
		return
	}

	c.JSON(http.StatusOK, usages)
}

// VerifyUsage godoc
// @Summary      Approve or reject a recorded scan (admin)
// @Tags         passes
// @Accept       json
// @Produce      json
// @Router       /admin/passes/usages/{usageID}/verify [put]
func (h *Handler) VerifyUsage(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	usageID, err := strconv.Atoi(c.Param("usageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid usage id"})
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	usage, err := h.registry.Verify(c.Request.Context(), usageID, req.IsVerified, adminID)
	if err != nil {
		if errors.Is(err, ErrUsageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pass usage not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify pass usage"})
		return
	}

	verdict := "rejected"
	if req.IsVerified {
		verdict = "approved"
	}

	c.JSON(http.StatusOK, gin.H{"message": "pass usage " + verdict, "usage": usage})
}

// CurrentPass godoc
// @Summary      The rider's latest unexpired pass
// @Tags         passes
// @Produce      json
// @Router       /passes/current [get]
func (h *Handler) CurrentPass(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.repo.CurrentPassForRider(c.Request.Context(), riderID)
	if err != nil {
		if errors.Is(err, ErrPassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active pass"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pass"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// IssueToken godoc
// @Summary      Issue a scan token for the rider's current pass
// @Tags         passes
// @Produce      json
// @Router       /passes/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.repo.CurrentPassForRider(c.Request.Context(), riderID)
	if err != nil {
		if errors.Is(err, ErrPassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active pass"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pass"})
		return
	}

	token, err := h.tokens.Encode(scantoken.Payload{
		PassID:     p.ID,
		RiderID:    p.RiderID,
		RouteID:    p.RouteID,
		ExpiryDate: p.ExpiryDate,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue scan token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "pass_id": p.ID})
}

// DecodeToken godoc
// @Summary      Decode and validate a scan token (scanner devices)
// @Tags         passes
// @Accept       json
// @Produce      json
// @Router       /passes/token/decode [post]
func (h *Handler) DecodeToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	payload, err := h.tokens.Decode(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, scantoken.ErrTokenStale):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "scan token has expired"})
		case errors.Is(err, scantoken.ErrTokenReplayed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "scan token already used"})
		case errors.Is(err, scantoken.ErrPassExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "pass has expired"})
		case errors.Is(err, scantoken.ErrIncompletePayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "scan token payload is incomplete"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid scan token"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "payload": payload})
}
