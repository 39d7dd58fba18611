package wallet

import "context"

type Repository interface {
	GetOrCreate(ctx context.Context, riderID int) (*Wallet, error)
	Debit(ctx context.Context, riderID int, amountCents int64, description string, relatedTripID *int) (*Transaction, error)
	Credit(ctx context.Context, riderID int, amountCents int64, description string) (*Transaction, error)
	Transactions(ctx context.Context, riderID int, limit, offset int) ([]Transaction, error)
}
