package pass

import (
	"context"
	"errors"
	"time"

	"farebox/internal/logger"
	"farebox/internal/metrics"
)

var (
	ErrOwnershipMismatch = errors.New("pass does not belong to this rider")
	ErrPassExpired       = errors.New("pass has expired")
)

// Registry records and verifies pass scans.
type Registry interface {
	RecordScan(ctx context.Context, riderID, passID int, location, busID, stationName string) (*Usage, error)
	Verify(ctx context.Context, usageID int, isVerified bool, verifiedBy int) (*Usage, error)
	ListForRider(ctx context.Context, riderID int) ([]Usage, error)
	ListAll(ctx context.Context, limit int) ([]Usage, error)
}

type registry struct {
	repo Repository
	now  func() time.Time
}

func NewRegistry(repo Repository) Registry {
	return &registry{repo: repo, now: time.Now}
}

func (s *registry) RecordScan(ctx context.Context, riderID, passID int, location, busID, stationName string) (*Usage, error) {
	p, err := s.repo.GetPassByID(ctx, passID)
	if err != nil {
		metrics.PassScansTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if p.RiderID != riderID {
		metrics.PassScansTotal.WithLabelValues("rejected").Inc()
		return nil, ErrOwnershipMismatch
	}

	if p.Expired(s.now()) {
		metrics.PassScansTotal.WithLabelValues("rejected").Inc()
		return nil, ErrPassExpired
	}

	if location == "" {
		location = "Unknown Location"
	}

	u, err := s.repo.CreateUsage(ctx, riderID, passID, location, busID, stationName)
	if err != nil {
		if errors.Is(err, ErrDuplicateScan) {
			metrics.PassScansTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.PassScansTotal.WithLabelValues("recorded").Inc()
	logger.Infof("Pass scan recorded: rider=%d pass=%d usage=%d", riderID, passID, u.ID)
	return u, nil
}

func (s *registry) Verify(ctx context.Context, usageID int, isVerified bool, verifiedBy int) (*Usage, error) {
	u, err := s.repo.Verify(ctx, usageID, isVerified, verifiedBy)
	if err != nil {
		return nil, err
	}

	logger.Infof("Pass usage %d verified=%t by admin %d", usageID, isVerified, verifiedBy)
	return u, nil
}

func (s *registry) ListForRider(ctx context.Context, riderID int) ([]Usage, error) {
	return s.repo.ListUsagesForRider(ctx, riderID)
}

func (s *registry) ListAll(ctx context.Context, limit int) ([]Usage, error) {
	return s.repo.ListAllUsages(ctx, limit)
}
