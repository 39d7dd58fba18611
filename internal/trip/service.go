package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farebox/internal/geo"
	"farebox/internal/logger"
	"farebox/internal/metrics"
	"farebox/internal/wallet"
)

var ErrAccessDenied = errors.New("access denied")

// Notifier delivers out-of-band messages to riders. The trip service only
// emits; delivery and retry live behind this interface.
type Notifier interface {
	SettlementFailed(ctx context.Context, riderID, tripID int, fareCents int64, reason string)
	TripReceipt(ctx context.Context, riderID, tripID int, fareCents int64, distanceKm float64)
}

type Service interface {
	Start(ctx context.Context, riderID int, location geo.CoordinateInput, busID string) (*Trip, error)
	End(ctx context.Context, tripID int, location geo.CoordinateInput, actingRiderID int, role string) (*Trip, SettlementResult, error)
	ActiveTrip(ctx context.Context, riderID int) (*Trip, error)
	ListForRider(ctx context.Context, riderID, limit int) ([]Trip, error)
	ListUnsettled(ctx context.Context, limit int) ([]Trip, error)
}

type service struct {
	tripRepo   Repository
	walletRepo wallet.Repository
	fares      geo.FareCalc
	notifier   Notifier
}

func NewService(tripRepo Repository, walletRepo wallet.Repository, fares geo.FareCalc, notifier Notifier) Service {
	return &service{
		tripRepo:   tripRepo,
		walletRepo: walletRepo,
		fares:      fares,
		notifier:   notifier,
	}
}

func (s *service) Start(ctx context.Context, riderID int, location geo.CoordinateInput, busID string) (*Trip, error) {
	coord, err := location.Normalize()
	if err != nil {
		return nil, err
	}

	if busID == "" {
		busID = "default_bus"
	}

	t, err := s.tripRepo.Create(ctx, riderID, coord.Latitude, coord.Longitude, busID)
	if err != nil {
		return nil, err
	}

	metrics.TripsStartedTotal.Inc()
	logger.Infof("Trip started: rider=%d trip=%d bus=%s", riderID, t.ID, busID)
	return t, nil
}

// End completes the trip and then settles the fare against the rider's
// wallet. Completion is final: a failed debit is reported in the
// SettlementResult, never rolled back, because refusing to close the trip
// would strand the rider in a permanently active state.
func (s *service) End(ctx context.Context, tripID int, location geo.CoordinateInput, actingRiderID int, role string) (*Trip, SettlementResult, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, SettlementResult{}, err
	}

	if actingRiderID != t.RiderID && role != "admin" {
		return nil, SettlementResult{}, ErrAccessDenied
	}

	if !t.Active {
		return nil, SettlementResult{}, ErrTripAlreadyCompleted
	}

	coord, err := location.Normalize()
	if err != nil {
		return nil, SettlementResult{}, err
	}

	distance := geo.DistanceKm(t.StartCoordinate(), coord)
	fare := s.fares.Fare(distance)

	completed, err := s.tripRepo.Complete(ctx, tripID, coord.Latitude, coord.Longitude, time.Now(), distance, fare)
	if err != nil {
		return nil, SettlementResult{}, err
	}

	metrics.TripsCompletedTotal.Inc()
	logger.Infof("Trip ended: rider=%d trip=%d distance=%.2fkm fare=%d", completed.RiderID, completed.ID, distance, fare)

	settlement := s.settle(ctx, completed, fare, distance)
	metrics.SettlementsTotal.WithLabelValues(settlement.Status).Inc()

	return completed, settlement, nil
}

func (s *service) settle(ctx context.Context, t *Trip, fareCents int64, distanceKm float64) SettlementResult {
	if fareCents == 0 {
		return SettlementResult{Status: SettlementSuccess, Message: "no fare to collect"}
	}

	description := fmt.Sprintf("fare for trip %d - distance %.2fkm", t.ID, distanceKm)
	txn, err := s.walletRepo.Debit(ctx, t.RiderID, fareCents, description, &t.ID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			logger.Infof("Settlement failed: rider=%d trip=%d insufficient funds", t.RiderID, t.ID)
			if s.notifier != nil {
				s.notifier.SettlementFailed(ctx, t.RiderID, t.ID, fareCents, "insufficient wallet balance")
			}
			return SettlementResult{
				Status:  SettlementInsufficientFunds,
				Message: fmt.Sprintf("insufficient funds: fare %d exceeds wallet balance", fareCents),
			}
		case errors.Is(err, wallet.ErrWalletNotFound):
			logger.Infof("Settlement failed: rider=%d trip=%d wallet missing", t.RiderID, t.ID)
			if s.notifier != nil {
				s.notifier.SettlementFailed(ctx, t.RiderID, t.ID, fareCents, "no wallet on record")
			}
			return SettlementResult{Status: SettlementWalletMissing, Message: "rider has no wallet"}
		default:
			logger.Errorf("Settlement error: rider=%d trip=%d: %v", t.RiderID, t.ID, err)
			return SettlementResult{Status: SettlementError, Message: "error processing fare deduction"}
		}
	}

	if err := s.tripRepo.MarkSettled(ctx, t.ID); err != nil {
		logger.Errorf("Failed to mark trip %d settled: %v", t.ID, err)
	}

	if s.notifier != nil {
		s.notifier.TripReceipt(ctx, t.RiderID, t.ID, fareCents, distanceKm)
	}

	return SettlementResult{
		Status:  SettlementSuccess,
		Message: fmt.Sprintf("fare %d deducted, remaining balance %d", fareCents, txn.BalanceAfter),
	}
}

// ActiveTrip returns nil without error when the rider has no open trip.
func (s *service) ActiveTrip(ctx context.Context, riderID int) (*Trip, error) {
	t, err := s.tripRepo.GetActiveForRider(ctx, riderID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *service) ListForRider(ctx context.Context, riderID, limit int) ([]Trip, error) {
	return s.tripRepo.ListForRider(ctx, riderID, limit)
}

func (s *service) ListUnsettled(ctx context.Context, limit int) ([]Trip, error) {
	return s.tripRepo.ListUnsettled(ctx, limit)
}
