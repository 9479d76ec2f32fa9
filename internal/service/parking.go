// Package service holds the allocation, billing and statistics
// engines. Handlers translate HTTP to these calls; the services own
// every rule about who gets which spot and what it costs.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// Sentinel errors returned by the parking service. Handlers map these
// to HTTP status codes with errors.Is.
var (
	ErrNoAvailableSpot = errors.New("no available spot in lot")
	ErrAlreadyReleased = errors.New("reservation already released")
	ErrOccupiedSpots   = errors.New("lot has occupied spots")
)

// timeNow is swapped out in tests to make billing deterministic.
var timeNow = func() time.Time { return time.Now().UTC() }

// ParkingService implements lot management, spot allocation and
// release billing on top of a repository.Store.
type ParkingService struct {
	store repository.Store
}

// NewParkingService constructs the service.
func NewParkingService(store repository.Store) *ParkingService {
	return &ParkingService{store: store}
}

// CreateLot stores a new lot and seeds it with Available spots
// numbered 1..capacity, atomically.
func (s *ParkingService) CreateLot(ctx context.Context, lot *model.ParkingLot) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Lots().Create(ctx, lot); err != nil {
			return err
		}
		if lot.MaximumNumberOfSpots <= 0 {
			return nil
		}
		return tx.Spots().CreateRange(ctx, lot.ID, 1, lot.MaximumNumberOfSpots)
	})
}

// UpdateLot rewrites the lot's attributes and resizes its spot set to
// the new capacity. Growth appends new numbered spots after the
// current count. Shrinking deletes Available spots numbered above the
// new capacity and is best-effort: occupied spots are never touched,
// so the lot may keep more spots than its configured capacity until
// those are released.
func (s *ParkingService) UpdateLot(ctx context.Context, lot *model.ParkingLot) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Lots().GetByID(ctx, lot.ID); err != nil {
			return err
		}
		if err := tx.Lots().Update(ctx, lot); err != nil {
			return err
		}
		current, err := tx.Spots().CountByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		switch want := lot.MaximumNumberOfSpots; {
		case want > current:
			return tx.Spots().CreateRange(ctx, lot.ID, current+1, want)
		case want < current:
			_, err := tx.Spots().DeleteAvailableAbove(ctx, lot.ID, want)
			return err
		}
		return nil
	})
}

// DeleteLot removes a lot and its spots. A lot with any occupied spot
// cannot be deleted.
func (s *ParkingService) DeleteLot(ctx context.Context, id uint64) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Lots().GetByID(ctx, id); err != nil {
			return err
		}
		occupied, err := tx.Spots().CountByLotAndStatus(ctx, id, model.StatusOccupied)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return ErrOccupiedSpots
		}
		return tx.Lots().Delete(ctx, id)
	})
}

// Lot fetches a lot by id.
func (s *ParkingService) Lot(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return s.store.Lots().GetByID(ctx, id)
}

// BookSpot allocates the first available spot of the lot to the user
// and opens a reservation that snapshots the lot's current hourly
// rate. Selection, reservation insert and the status flip happen in
// one transaction so two concurrent bookings never share a spot.
func (s *ParkingService) BookSpot(ctx context.Context, userID, lotID uint64) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		lot, err := tx.Lots().GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		spot, err := tx.Spots().FirstAvailableInLot(ctx, lotID)
		if err != nil {
			if errors.Is(err, repository.ErrSpotNotFound) {
				return ErrNoAvailableSpot
			}
			return err
		}
		res := &model.Reservation{
			SpotID:             spot.ID,
			UserID:             userID,
			ParkingTimestamp:   timeNow(),
			ParkingCostPerHour: lot.PricePerHour,
			SpotNumber:         spot.SpotNumber,
			LotID:              lotID,
		}
		if err := tx.Reservations().Create(ctx, res); err != nil {
			return err
		}
		if err := tx.Spots().UpdateStatus(ctx, spot.ID, model.StatusOccupied); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReleaseSpot closes the reservation, computes the total cost from
// the elapsed time and the snapshotted rate, and frees the spot.
// Releasing twice fails with ErrAlreadyReleased and changes nothing.
func (s *ParkingService) ReleaseSpot(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		res, err := tx.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.LeavingTimestamp.Valid {
			return ErrAlreadyReleased
		}
		now := timeNow()
		cost := res.CalculatedCost(now)
		if err := tx.Reservations().Close(ctx, res.ID, now, cost); err != nil {
			return err
		}
		if err := tx.Spots().UpdateStatus(ctx, res.SpotID, model.StatusAvailable); err != nil {
			return err
		}
		out, err = tx.Reservations().GetByID(ctx, res.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reservation fetches a reservation by id.
func (s *ParkingService) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.store.Reservations().GetByID(ctx, id)
}

// ActiveReservation returns the user's open reservation, or
// repository.ErrReservationNotFound when the user is not parked.
func (s *ParkingService) ActiveReservation(ctx context.Context, userID uint64) (*model.Reservation, error) {
	return s.store.Reservations().ActiveByUser(ctx, userID)
}

// ReservationsForUser returns the user's full history, newest first.
func (s *ParkingService) ReservationsForUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.store.Reservations().ListByUser(ctx, userID)
}

// SpotsForLot lists a lot's spots ordered by spot number.
func (s *ParkingService) SpotsForLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	if _, err := s.store.Lots().GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.store.Spots().ListByLot(ctx, lotID)
}

// LotSummaries returns every lot with its live spot counts.
func (s *ParkingService) LotSummaries(ctx context.Context) ([]model.LotSummary, error) {
	lots, err := s.store.Lots().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.LotSummary, 0, len(lots))
	for _, lot := range lots {
		sum, err := s.summarize(ctx, &lot)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *sum)
	}
	return summaries, nil
}

// LotSummary returns one lot with its live spot counts.
func (s *ParkingService) LotSummary(ctx context.Context, lotID uint64) (*model.LotSummary, error) {
	lot, err := s.store.Lots().GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, lot)
}

func (s *ParkingService) summarize(ctx context.Context, lot *model.ParkingLot) (*model.LotSummary, error) {
	total, err := s.store.Spots().CountByLot(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.store.Spots().CountByLotAndStatus(ctx, lot.ID, model.StatusOccupied)
	if err != nil {
		return nil, err
	}
	return &model.LotSummary{
		ID:           lot.ID,
		Name:         lot.PrimeLocationName,
		Address:      lot.Address,
		PinCode:      lot.PinCode,
		PricePerHour: lot.PricePerHour,
		Available:    total - occupied,
		Occupied:     occupied,
		Total:        total,
	}, nil
}
