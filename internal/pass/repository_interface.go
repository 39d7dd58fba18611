package pass

import (
	"context"
	"time"
)

type Repository interface {
	CreatePass(ctx context.Context, riderID int, routeID string, fareCents int64, expiryDate time.Time) (*Pass, error)
	GetPassByID(ctx context.Context, id int) (*Pass, error)
	CurrentPassForRider(ctx context.Context, riderID int) (*Pass, error)
	CreateUsage(ctx context.Context, riderID, passID int, location, busID, stationName string) (*Usage, error)
	Verify(ctx context.Context, usageID int, isVerified bool, verifiedBy int) (*Usage, error)
	ListUsagesForRider(ctx context.Context, riderID int) ([]Usage, error)
	ListAllUsages(ctx context.Context, limit int) ([]Usage, error)
}
