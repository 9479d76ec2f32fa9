package service

import (
	"context"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// StatsService computes occupancy and spending aggregates. Every
// figure is recomputed from the store per call so dashboards always
// reflect the live state.
type StatsService struct {
	store repository.Store
}

// NewStatsService constructs the service.
func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{store: store}
}

// AdminOverview returns the system-wide counters shown on the admin
// dashboard. TotalUsers counts regular accounts only.
func (s *StatsService) AdminOverview(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats
	var err error
	if stats.TotalLots, err = s.store.Lots().Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalSpots, err = s.store.Spots().Count(ctx); err != nil {
		return nil, err
	}
	if stats.OccupiedSpots, err = s.store.Spots().CountByStatus(ctx, model.StatusOccupied); err != nil {
		return nil, err
	}
	stats.AvailableSpots = stats.TotalSpots - stats.OccupiedSpots
	if stats.TotalUsers, err = s.store.Users().CountNonAdmins(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveReservations, err = s.store.Reservations().CountActive(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UserOverview summarizes one user's reservation history.
func (s *StatsService) UserOverview(ctx context.Context, userID uint64) (*model.UserStats, error) {
	var stats model.UserStats
	var err error
	if stats.TotalReservations, err = s.store.Reservations().CountByUser(ctx, userID); err != nil {
		return nil, err
	}
	if stats.ActiveReservations, err = s.store.Reservations().CountActiveByUser(ctx, userID); err != nil {
		return nil, err
	}
	stats.CompletedReservations = stats.TotalReservations - stats.ActiveReservations
	spent, err := s.store.Reservations().SumCostByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TotalSpent = model.Round2(spent)
	return &stats, nil
}

// MonthlySpending buckets a user's costs by the calendar month of
// each reservation's parking timestamp, keyed "YYYY-MM". Open
// reservations contribute zero to their month; months without any
// reservation are absent.
func (s *StatsService) MonthlySpending(ctx context.Context, userID uint64) (map[string]float64, error) {
	reservations, err := s.store.Reservations().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthly := make(map[string]float64)
	for _, res := range reservations {
		key := res.ParkingTimestamp.Format("2006-01")
		monthly[key] = model.Round2(monthly[key] + res.TotalCost.ValueOrZero())
	}
	return monthly, nil
}
