package pass

import "time"

// Pass is a monthly unlimited-ride entitlement for one route. Read-only
// after purchase apart from expiry comparison at scan time.
type Pass struct {
	ID         int       `db:"id" json:"id"`
	RiderID    int       `db:"rider_id" json:"rider_id"`
	RouteID    string    `db:"route_id" json:"route_id"`
	FareCents  int64     `db:"fare_cents" json:"fare_cents"`
	ExpiryDate time.Time `db:"expiry_date" json:"expiry_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (p *Pass) Expired(now time.Time) bool {
	return p.ExpiryDate.Before(now)
}

// Usage is one scan event against a pass. Created unverified; an admin later
// approves or rejects it. Never deleted.
type Usage struct {
	ID               int        `db:"id" json:"id"`
	RiderID          int        `db:"rider_id" json:"rider_id"`
	PassID           int        `db:"pass_id" json:"pass_id"`
	ScannedAt        time.Time  `db:"scanned_at" json:"scanned_at"`
	Location         string     `db:"location" json:"location"`
	BusID            string     `db:"bus_id" json:"bus_id"`
	StationName      string     `db:"station_name" json:"station_name"`
	IsVerified       bool       `db:"is_verified" json:"is_verified"`
	VerifiedBy       *int       `db:"verified_by" json:"verified_by,omitempty"`
	VerificationDate *time.Time `db:"verification_date" json:"verification_date,omitempty"`
}

// RecordScanRequest carries either a plain pass id or an encrypted scan
// token. When both are present the token wins.
type RecordScanRequest struct {
	Token       string `json:"token"`
	PassID      int    `json:"pass_id"`
	Location    string `json:"location"`
	BusID       string `json:"bus_id"`
	StationName string `json:"station_name"`
}

type VerifyRequest struct {
	IsVerified bool `json:"is_verified"`
}
