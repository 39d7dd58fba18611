package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, riderID int, sessionID, purchaseType string, fareCents int64, routeID, busID, stationName string) (*Payment, error) {
	p := &Payment{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (rider_id, session_id, type, fare_cents, route_id, bus_id, station_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING *
	`, riderID, sessionID, purchaseType, fareCents, routeID, busID, stationName).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetBySession(ctx context.Context, sessionID string) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p, `SELECT * FROM payments WHERE session_id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) MarkCompleted(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET status = 'completed' WHERE id = $1`, id)
	return err
}
