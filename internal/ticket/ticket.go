// Package ticket holds single-ride ticket records created by the payment
// webhook. Tickets expire seven hours after purchase.
package ticket

import (
	"context"
	"net/http"
	"time"

	"farebox/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const Validity = 7 * time.Hour

type Ticket struct {
	ID          int       `db:"id" json:"id"`
	RiderID     int       `db:"rider_id" json:"rider_id"`
	RouteID     string    `db:"route_id" json:"route_id"`
	BusID       string    `db:"bus_id" json:"bus_id"`
	StationName string    `db:"station_name" json:"station_name"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	PaymentRef  string    `db:"payment_ref" json:"payment_ref"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
	Active      bool      `db:"active" json:"active"`
}

func (t *Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, riderID int, routeID, busID, stationName string, priceCents int64, paymentRef string) (*Ticket, error) {
	t := &Ticket{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO tickets (rider_id, route_id, bus_id, station_name, price_cents, payment_ref, purchased_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW() + INTERVAL '7 hours', TRUE)
		RETURNING *
	`, riderID, routeID, busID, stationName, priceCents, paymentRef).StructScan(t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repository) ListForRider(ctx context.Context, riderID int) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT * FROM tickets
		WHERE rider_id = $1
		ORDER BY purchased_at DESC
	`, riderID)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

type Handler struct {
	repo *Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// ListMyTickets godoc
// @Summary      Ticket history for the rider, newest first
// @Tags         tickets
// @Produce      json
// @Router       /tickets [get]
func (h *Handler) ListMyTickets(c *gin.Context) {
	riderID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	tickets, err := h.repo.ListForRider(c.Request.Context(), riderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tickets"})
		return
	}

	now := time.Now()
	type ticketView struct {
		Ticket
		Expired bool `json:"expired"`
	}
	views := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, ticketView{Ticket: t, Expired: t.Expired(now)})
	}

	c.JSON(http.StatusOK, views)
}
