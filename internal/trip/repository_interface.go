package trip

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, riderID int, lat, lon float64, busID string) (*Trip, error)
	GetByID(ctx context.Context, id int) (*Trip, error)
	Complete(ctx context.Context, id int, lat, lon float64, endedAt time.Time, distanceKm float64, fareCents int64) (*Trip, error)
	GetActiveForRider(ctx context.Context, riderID int) (*Trip, error)
	ListForRider(ctx context.Context, riderID, limit int) ([]Trip, error)
	MarkSettled(ctx context.Context, id int) error
	ListUnsettled(ctx context.Context, limit int) ([]Trip, error)
}
