package payment

import "time"

// Purchase types. The webhook decides what to create from a completed
// payment based on this.
const (
	TypeTicket = "ticket"
	TypePass   = "pass"
	TypeWallet = "wallet"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Payment is a checkout record keyed by the processor's session id. Created
// pending when checkout starts, completed by the webhook.
type Payment struct {
	ID          int       `db:"id" json:"id"`
	RiderID     int       `db:"rider_id" json:"rider_id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Type        string    `db:"type" json:"type"`
	FareCents   int64     `db:"fare_cents" json:"fare_cents"`
	RouteID     string    `db:"route_id" json:"route_id"`
	BusID       string    `db:"bus_id" json:"bus_id"`
	StationName string    `db:"station_name" json:"station_name"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WebhookEvent is the already-verified "payment succeeded" notification.
// Signature verification happens upstream; this service only reacts.
type WebhookEvent struct {
	SessionID string `json:"session_id" binding:"required"`
}
