package pass

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreatePass(ctx context.Context, riderID int, routeID string, fareCents int64, expiryDate time.Time) (*Pass, error) {
	args := m.Called(ctx, riderID, routeID, fareCents, expiryDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pass), args.Error(1)
}

func (m *MockRepo) GetPassByID(ctx context.Context, id int) (*Pass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pass), args.Error(1)
}

func (m *MockRepo) CurrentPassForRider(ctx context.Context, riderID int) (*Pass, error) {
	args := m.Called(ctx, riderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pass), args.Error(1)
}

func (m *MockRepo) CreateUsage(ctx context.Context, riderID, passID int, location, busID, stationName string) (*Usage, error) {
	args := m.Called(ctx, riderID, passID, location, busID, stationName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Usage), args.Error(1)
}

func (m *MockRepo) Verify(ctx context.Context, usageID int, isVerified bool, verifiedBy int) (*Usage, error) {
	args := m.Called(ctx, usageID, isVerified, verifiedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Usage), args.Error(1)
}

func (m *MockRepo) ListUsagesForRider(ctx context.Context, riderID int) ([]Usage, error) {
	args := m.Called(ctx, riderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Usage), args.Error(1)
}

func (m *MockRepo) ListAllUsages(ctx context.Context, limit int) ([]Usage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Usage), args.Error(1)
}

func validPass(riderID int) *Pass {
	return &Pass{
		ID:         5,
		RiderID:    riderID,
		RouteID:    "route-9",
		FareCents:  50000,
		ExpiryDate: time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestRegistry_RecordScan(t *testing.T) {
	t.Run("records unverified usage", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 5).Return(validPass(1), nil)
		repo.On("CreateUsage", mock.Anything, 1, 5, "Central Station", "bus-3", "Central").
			Return(&Usage{ID: 1, RiderID: 1, PassID: 5, IsVerified: false}, nil)

		reg := NewRegistry(repo)
		u, err := reg.RecordScan(context.Background(), 1, 5, "Central Station", "bus-3", "Central")

		require.NoError(t, err)
		assert.False(t, u.IsVerified)
		repo.AssertExpectations(t)
	})

	t.Run("defaults missing location", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 5).Return(validPass(1), nil)
		repo.On("CreateUsage", mock.Anything, 1, 5, "Unknown Location", "", "").
			Return(&Usage{ID: 2}, nil)

		reg := NewRegistry(repo)
		_, err := reg.RecordScan(context.Background(), 1, 5, "", "", "")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown pass", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 404).Return(nil, ErrPassNotFound)

		reg := NewRegistry(repo)
		_, err := reg.RecordScan(context.Background(), 1, 404, "", "", "")

		assert.ErrorIs(t, err, ErrPassNotFound)
		repo.AssertNotCalled(t, "CreateUsage")
	})

	t.Run("someone else's pass", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 5).Return(validPass(2), nil)

		reg := NewRegistry(repo)
		_, err := reg.RecordScan(context.Background(), 1, 5, "", "", "")

		assert.ErrorIs(t, err, ErrOwnershipMismatch)
		repo.AssertNotCalled(t, "CreateUsage")
	})

	t.Run("expired pass", func(t *testing.T) {
		expired := validPass(1)
		expired.ExpiryDate = time.Now().Add(-time.Hour)

		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 5).Return(expired, nil)

		reg := NewRegistry(repo)
		_, err := reg.RecordScan(context.Background(), 1, 5, "", "", "")

		assert.ErrorIs(t, err, ErrPassExpired)
		repo.AssertNotCalled(t, "CreateUsage")
	})

	t.Run("second scan the same day", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetPassByID", mock.Anything, 5).Return(validPass(1), nil)
		repo.On("CreateUsage", mock.Anything, 1, 5, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, ErrDuplicateScan)

		reg := NewRegistry(repo)
		_, err := reg.RecordScan(context.Background(), 1, 5, "", "", "")

		assert.ErrorIs(t, err, ErrDuplicateScan)
	})
}

func TestRegistry_Verify_LastCallWins(t *testing.T) {
	repo := new(MockRepo)
	admin1, admin2 := 100, 101

	repo.On("Verify", mock.Anything, 7, true, admin1).
		Return(&Usage{ID: 7, IsVerified: true, VerifiedBy: &admin1}, nil).Once()
	repo.On("Verify", mock.Anything, 7, false, admin2).
		Return(&Usage{ID: 7, IsVerified: false, VerifiedBy: &admin2}, nil).Once()

	reg := NewRegistry(repo)

	first, err := reg.Verify(context.Background(), 7, true, admin1)
	require.NoError(t, err)
	assert.True(t, first.IsVerified)

	second, err := reg.Verify(context.Background(), 7, false, admin2)
	require.NoError(t, err)
	assert.False(t, second.IsVerified)
	assert.Equal(t, admin2, *second.VerifiedBy)
}

func TestRegistry_Verify_UnknownUsage(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Verify", mock.Anything, 404, true, 1).Return(nil, ErrUsageNotFound)

	reg := NewRegistry(repo)
	_, err := reg.Verify(context.Background(), 404, true, 1)

	assert.ErrorIs(t, err, ErrUsageNotFound)
}
