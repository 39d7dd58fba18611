package trip

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrTripNotFound         = errors.New("trip not found")
	ErrTripAlreadyActive    = errors.New("rider already has an active trip")
	ErrTripAlreadyCompleted = errors.New("trip is already completed")
)

const pqUniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts an active trip. The partial unique index on
// trips(rider_id) WHERE active makes the existence check and the insert one
// atomic operation: the loser of a concurrent double check-in gets a unique
// violation, reported as ErrTripAlreadyActive.
func (r *repository) Create(ctx context.Context, riderID int, lat, lon float64, busID string) (*Trip, error) {
	query := `
		INSERT INTO trips (rider_id, bus_id, start_lat, start_lon, started_at, active)
		VALUES ($1, $2, $3, $4, NOW(), TRUE)
		RETURNING *
	`

	t := &Trip{}
	err := r.db.QueryRowxContext(ctx, query, riderID, busID, lat, lon).StructScan(t)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrTripAlreadyActive
		}
		return nil, err
	}

	return t, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Trip, error) {
	t := &Trip{}
	err := r.db.GetContext(ctx, t, `SELECT * FROM trips WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return t, nil
}

// Complete flips the trip out of its active state and records the end
// location, distance and fare. The WHERE active guard makes the transition a
// compare-and-set: a second completion attempt affects zero rows.
func (r *repository) Complete(ctx context.Context, id int, lat, lon float64, endedAt time.Time, distanceKm float64, fareCents int64) (*Trip, error) {
	query := `
		UPDATE trips
		SET end_lat = $2, end_lon = $3, ended_at = $4,
		    distance_km = $5, fare_cents = $6, active = FALSE
		WHERE id = $1 AND active
		RETURNING *
	`

	t := &Trip{}
	err := r.db.QueryRowxContext(ctx, query, id, lat, lon, endedAt, distanceKm, fareCents).StructScan(t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripAlreadyCompleted
		}
		return nil, err
	}

	return t, nil
}

func (r *repository) GetActiveForRider(ctx context.Context, riderID int) (*Trip, error) {
	t := &Trip{}
	err := r.db.GetContext(ctx, t, `SELECT * FROM trips WHERE rider_id = $1 AND active`, riderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) ListForRider(ctx context.Context, riderID, limit int) ([]Trip, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var trips []Trip
	err := r.db.SelectContext(ctx, &trips, `
		SELECT * FROM trips
		WHERE rider_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, riderID, limit)
	if err != nil {
		return nil, err
	}

	return trips, nil
}

func (r *repository) MarkSettled(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE trips SET settled = TRUE WHERE id = $1`, id)
	return err
}

// ListUnsettled surfaces completed trips whose fare was never collected, so
// the trip/wallet inconsistency the settlement policy accepts stays visible
// for reconciliation instead of silent.
func (r *repository) ListUnsettled(ctx context.Context, limit int) ([]Trip, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var trips []Trip
	err := r.db.SelectContext(ctx, &trips, `
		SELECT * FROM trips
		WHERE NOT active AND NOT settled AND fare_cents > 0
		ORDER BY ended_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	return trips, nil
}
