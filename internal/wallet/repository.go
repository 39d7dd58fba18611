package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreate(ctx context.Context, riderID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE rider_id = $1`, riderID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Two first-time requests can race past the read; ON CONFLICT lets the
	// loser fall through to the re-read instead of failing on the unique
	// index.
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO wallets (rider_id)
		 VALUES ($1)
		 ON CONFLICT (rider_id) DO NOTHING`,
		riderID,
	)
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE rider_id = $1`, riderID)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Debit withdraws amount from the rider's wallet and appends the matching
// transaction row. The row lock taken by SELECT ... FOR UPDATE makes the
// balance check and the write a single indivisible step under concurrent
// debits and credits. A missing wallet is an error here: debits never create
// wallets, that would only hide riders who were never funded.
func (r *repository) Debit(ctx context.Context, riderID int, amountCents int64, description string, relatedTripID *int) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrNonPositiveAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT id, rider_id, balance_cents, created_at, updated_at
		 FROM wallets
		 WHERE rider_id = $1
		 FOR UPDATE`,
		riderID,
	).StructScan(&w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	if amountCents > w.BalanceCents {
		return nil, ErrInsufficientBalance
	}

	txn, err := r.apply(ctx, tx, w.ID, -amountCents, description, relatedTripID, w.BalanceCents-amountCents)
	if err != nil {
		return nil, err
	}

	return txn, tx.Commit()
}

// Credit adds funds, creating the wallet at zero balance first if the rider
// has never been funded.
func (r *repository) Credit(ctx context.Context, riderID int, amountCents int64, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrNonPositiveAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT id, rider_id, balance_cents, created_at, updated_at
		 FROM wallets
		 WHERE rider_id = $1
		 FOR UPDATE`,
		riderID,
	).StructScan(&w)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO wallets (rider_id)
			 VALUES ($1)
			 ON CONFLICT (rider_id) DO NOTHING`,
			riderID,
		)
		if err != nil {
			return nil, err
		}
		err = tx.QueryRowxContext(ctx,
			`SELECT id, rider_id, balance_cents, created_at, updated_at
			 FROM wallets
			 WHERE rider_id = $1
			 FOR UPDATE`,
			riderID,
		).StructScan(&w)
		if err != nil {
			return nil, err
		}
	}

	txn, err := r.apply(ctx, tx, w.ID, amountCents, description, nil, w.BalanceCents+amountCents)
	if err != nil {
		return nil, err
	}

	return txn, tx.Commit()
}

func (r *repository) apply(ctx context.Context, tx *sqlx.Tx, walletID int, amountCents int64, description string, relatedTripID *int, newBalance int64) (*Transaction, error) {
	_, err := tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_cents = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, walletID,
	)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount_cents, description, related_trip_id, balance_after)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, wallet_id, amount_cents, description, related_trip_id, balance_after, created_at`,
		walletID, amountCents, description, relatedTripID, newBalance,
	).StructScan(txn)
	if err != nil {
		return nil, err
	}

	return txn, nil
}

func (r *repository) Transactions(ctx context.Context, riderID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE rider_id = $1`, riderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, amount_cents, description, related_trip_id, balance_after, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
