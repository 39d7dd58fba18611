package wallet

import "time"

// Wallet is a rider's prepaid balance. Balance always equals the sum of the
// signed transaction amounts; it is only ever mutated through the repository.
type Wallet struct {
	ID           int       `db:"id" json:"id"`
	RiderID      int       `db:"rider_id" json:"rider_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one signed balance movement. Rows are append-only.
type Transaction struct {
	ID            int       `db:"id" json:"id"`
	WalletID      int       `db:"wallet_id" json:"wallet_id"`
	AmountCents   int64     `db:"amount_cents" json:"amount_cents"`
	Description   string    `db:"description" json:"description"`
	RelatedTripID *int      `db:"related_trip_id" json:"related_trip_id,omitempty"`
	BalanceAfter  int64     `db:"balance_after" json:"balance_after"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
