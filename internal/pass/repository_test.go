package pass

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

func setupPassMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func usageColumns() []string {
	return []string{"id", "rider_id", "pass_id", "scanned_at", "location", "bus_id", "station_name", "is_verified", "verified_by", "verification_date"}
}

func TestCreateUsage_MapsUniqueViolationToDuplicateScan(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pass_usages")).
		WithArgs(1, 5, "Central", "bus-3", "Central Station").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "pass_usages_one_scan_per_day"})

	_, err := repo.CreateUsage(context.Background(), 1, 5, "Central", "bus-3", "Central Station")
	require.ErrorIs(t, err, ErrDuplicateScan)
}

func TestCreateUsage_Success(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pass_usages")).
		WithArgs(1, 5, "Central", "bus-3", "Central Station").
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow(9, 1, 5, time.Now(), "Central", "bus-3", "Central Station", false, nil, nil))

	u, err := repo.CreateUsage(context.Background(), 1, 5, "Central", "bus-3", "Central Station")
	require.NoError(t, err)
	require.Equal(t, 9, u.ID)
	require.False(t, u.IsVerified)
}

func TestVerify_UnknownUsage(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pass_usages")).
		WithArgs(404, true, 1).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Verify(context.Background(), 404, true, 1)
	require.ErrorIs(t, err, ErrUsageNotFound)
}

func TestGetPassByID_NotFound(t *testing.T) {
	repo, mock, close := setupPassMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM passes WHERE id = $1")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPassByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrPassNotFound)
}
