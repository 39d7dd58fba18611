package trip

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupTripMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func tripColumns() []string {
	return []string{"id", "rider_id", "bus_id", "start_lat", "start_lon", "started_at",
		"end_lat", "end_lon", "ended_at", "active", "distance_km", "fare_cents", "settled", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, close := setupTripMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO trips")).
		WithArgs(1, "bus-7", 12.5, 77.6).
		WillReturnRows(sqlmock.NewRows(tripColumns()).
			AddRow(10, 1, "bus-7", 12.5, 77.6, time.Now(), nil, nil, nil, true, nil, nil, false, time.Now()))

	trip, err := repo.Create(context.Background(), 1, 12.5, 77.6, "bus-7")
	require.NoError(t, err)
	require.Equal(t, 10, trip.ID)
	require.True(t, trip.Active)
}

func TestCreate_SecondActiveTripLosesTheRace(t *testing.T) {
	repo, mock, close := setupTripMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO trips")).
		WithArgs(1, "bus-7", 12.5, 77.6).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "trips_one_active_per_rider"})

	_, err := repo.Create(context.Background(), 1, 12.5, 77.6, "bus-7")
	require.ErrorIs(t, err, ErrTripAlreadyActive)
}

func TestComplete_SecondAttemptGetsAlreadyCompleted(t *testing.T) {
	repo, mock, close := setupTripMock(t)
	defer close()

	endedAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND active")).
		WithArgs(10, 12.6, 77.7, endedAt, 3.5, int64(28)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Complete(context.Background(), 10, 12.6, 77.7, endedAt, 3.5, 28)
	require.ErrorIs(t, err, ErrTripAlreadyCompleted)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupTripMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM trips WHERE id = $1")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrTripNotFound)
}
