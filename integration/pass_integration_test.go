package integration_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farebox/internal/pass"
)

func TestPassScanOncePerDay_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	riderID := createTestRider(t, db, "scanner@test.com", "Scan Rider")

	repo := pass.NewRepository(db)
	ctx := context.Background()

	p, err := repo.CreatePass(ctx, riderID, "ROUTE-7", 5000, time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	usage, err := repo.CreateUsage(ctx, riderID, p.ID, "Downtown Stop", "BUS-7", "Central")
	require.NoError(t, err)
	assert.False(t, usage.IsVerified)

	// Second scan of the same pass on the same day is rejected by the database
	_, err = repo.CreateUsage(ctx, riderID, p.ID, "Uptown Stop", "BUS-8", "North")
	assert.ErrorIs(t, err, pass.ErrDuplicateScan)
}

func TestVerifyUsage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	riderID := createTestRider(t, db, "verified@test.com", "Verified Rider")
	adminID := createTestRider(t, db, "inspector@test.com", "Inspector")

	repo := pass.NewRepository(db)
	ctx := context.Background()

	p, err := repo.CreatePass(ctx, riderID, "ROUTE-2", 5000, time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	usage, err := repo.CreateUsage(ctx, riderID, p.ID, "Station A", "", "")
	require.NoError(t, err)

	verified, err := repo.Verify(ctx, usage.ID, true, adminID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, adminID, *verified.VerifiedBy)
	assert.NotNil(t, verified.VerificationDate)

	// A later verification overwrites the earlier one
	reversed, err := repo.Verify(ctx, usage.ID, false, adminID)
	require.NoError(t, err)
	assert.False(t, reversed.IsVerified)
}
