package pass

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrPassNotFound  = errors.New("pass not found")
	ErrUsageNotFound = errors.New("pass usage not found")
	ErrDuplicateScan = errors.New("pass already scanned today")
)

const pqUniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePass(ctx context.Context, riderID int, routeID string, fareCents int64, expiryDate time.Time) (*Pass, error) {
	p := &Pass{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO passes (rider_id, route_id, fare_cents, expiry_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, rider_id, route_id, fare_cents, expiry_date, created_at
	`, riderID, routeID, fareCents, expiryDate).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) GetPassByID(ctx context.Context, id int) (*Pass, error) {
	p := &Pass{}
	err := r.db.GetContext(ctx, p, `SELECT * FROM passes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) CurrentPassForRider(ctx context.Context, riderID int) (*Pass, error) {
	p := &Pass{}
	err := r.db.GetContext(ctx, p, `
		SELECT * FROM passes
		WHERE rider_id = $1 AND expiry_date >= NOW()
		ORDER BY expiry_date DESC
		LIMIT 1
	`, riderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}
	return p, nil
}

// CreateUsage inserts the scan record. The unique index on
// (rider_id, pass_id, scan_day) — scan_day being a generated UTC-date
// column — makes the daily dedup check and the insert one atomic operation;
// a concurrent same-day scan loses with a unique violation.
func (r *repository) CreateUsage(ctx context.Context, riderID, passID int, location, busID, stationName string) (*Usage, error) {
	u := &Usage{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO pass_usages (rider_id, pass_id, scanned_at, location, bus_id, station_name, is_verified)
		VALUES ($1, $2, NOW(), $3, $4, $5, FALSE)
		RETURNING id, rider_id, pass_id, scanned_at, location, bus_id, station_name, is_verified, verified_by, verification_date
	`, riderID, passID, location, busID, stationName).StructScan(u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateScan
		}
		return nil, err
	}
	return u, nil
}

// Verify overwrites the verification fields unconditionally, so repeating a
// verdict or changing it is idempotent; the last call wins.
func (r *repository) Verify(ctx context.Context, usageID int, isVerified bool, verifiedBy int) (*Usage, error) {
	u := &Usage{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE pass_usages
		SET is_verified = $2, verified_by = $3, verification_date = NOW()
		WHERE id = $1
		RETURNING id, rider_id, pass_id, scanned_at, location, bus_id, station_name, is_verified, verified_by, verification_date
	`, usageID, isVerified, verifiedBy).StructScan(u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsageNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) ListUsagesForRider(ctx context.Context, riderID int) ([]Usage, error) {
	var usages []Usage
	err := r.db.SelectContext(ctx, &usages, `
		SELECT id, rider_id, pass_id, scanned_at, location, bus_id, station_name, is_verified, verified_by, verification_date
		FROM pass_usages
		WHERE rider_id = $1
		ORDER BY scanned_at DESC, id DESC
	`, riderID)
	if err != nil {
		return nil, err
	}
	return usages, nil
}

func (r *repository) ListAllUsages(ctx context.Context, limit int) ([]Usage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var usages []Usage
	err := r.db.SelectContext(ctx, &usages, `
		SELECT id, rider_id, pass_id, scanned_at, location, bus_id, station_name, is_verified, verified_by, verification_date
		FROM pass_usages
		ORDER BY scanned_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return usages, nil
}
