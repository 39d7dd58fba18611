package trip

import (
	"time"

	"farebox/internal/geo"
)

// Trip is one check-in/check-out cycle. End fields, distance and fare stay
// NULL until check-out; the row is never deleted.
type Trip struct {
	ID         int        `db:"id" json:"id"`
	RiderID    int        `db:"rider_id" json:"rider_id"`
	BusID      string     `db:"bus_id" json:"bus_id"`
	StartLat   float64    `db:"start_lat" json:"start_lat"`
	StartLon   float64    `db:"start_lon" json:"start_lon"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndLat     *float64   `db:"end_lat" json:"end_lat,omitempty"`
	EndLon     *float64   `db:"end_lon" json:"end_lon,omitempty"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Active     bool       `db:"active" json:"active"`
	DistanceKm *float64   `db:"distance_km" json:"distance_km,omitempty"`
	FareCents  *int64     `db:"fare_cents" json:"fare_cents,omitempty"`
	Settled    bool       `db:"settled" json:"settled"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

func (t *Trip) StartCoordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: t.StartLat, Longitude: t.StartLon}
}

// Settlement statuses. A failed settlement never reopens or rolls back the
// trip; the trip stays completed and the failure is reported to the caller.
const (
	SettlementSuccess           = "success"
	SettlementInsufficientFunds = "insufficient_funds"
	SettlementWalletMissing     = "wallet_missing"
	SettlementError             = "error"
)

type SettlementResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StartTripRequest struct {
	Location geo.CoordinateInput `json:"location" binding:"required"`
	BusID    string              `json:"bus_id"`
}

type EndTripRequest struct {
	Location geo.CoordinateInput `json:"location" binding:"required"`
}

type EndTripResponse struct {
	Trip       *Trip            `json:"trip"`
	Settlement SettlementResult `json:"settlement"`
}
