package trip

import (
	"errors"
	"net/http"
	"strconv"

	"farebox/internal/auth"
	"farebox/internal/geo"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// StartTrip godoc
// @Summary      Check in and open a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        request body StartTripRequest true "Start location"
// @Success      201 {object} Trip
// @Failure      400 {object} gin.H
// @Failure      409 {object} gin.H
// @Router       /trips/start [post]
func (h *Handler) StartTrip(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	t, err := h.service.Start(c.Request.Context(), riderID, req.Location, req.BusID)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		case errors.Is(err, ErrTripAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "rider already has an active trip"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start trip"})
		}
		return
	}

	c.JSON(http.StatusCreated, t)
}

// EndTrip godoc
// @Summary      Check out, compute fare and settle against the wallet
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        tripID  path int true "Trip ID"
// @Param        request body EndTripRequest true "End location"
// @Success      200 {object} EndTripResponse
// @Router       /trips/{tripID}/end [put]
func (h *Handler) EndTrip(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	role := auth.GetUserRole(c)

	tripID, err := strconv.Atoi(c.Param("tripID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	t, settlement, err := h.service.End(c.Request.Context(), tripID, req.Location, riderID, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		case errors.Is(err, ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, ErrTripAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "trip is already completed"})
		case errors.Is(err, geo.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end trip"})
		}
		return
	}

	c.JSON(http.StatusOK, EndTripResponse{Trip: t, Settlement: settlement})
}

// GetActiveTrip godoc
// @Summary      The rider's currently open trip, if any
// @Tags         trips
// @Produce      json
// @Router       /trips/active [get]
func (h *Handler) GetActiveTrip(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	t, err := h.service.ActiveTrip(c.Request.Context(), riderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load active trip"})
		return
	}
	if t == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": true, "trip": t})
}

// ListMyTrips godoc
// @Summary      Trip history for the rider, newest first
// @Tags         trips
// @Produce      json
// @Router       /trips [get]
func (h *Handler) ListMyTrips(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	trips, err := h.service.ListForRider(c.Request.Context(), riderID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

// ListUnsettled godoc
// @Summary      Completed trips with uncollected fares (admin)
// @Tags         trips
// @Produce      json
// @Router       /admin/trips/unsettled [get]
func (h *Handler) ListUnsettled(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	trips, err := h.service.ListUnsettled(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load unsettled trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}
