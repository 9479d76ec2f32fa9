package memory

import (
	"context"
	"sort"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// ReservationRepo implements repository.ReservationRepository on the
// in-memory tables. The SpotNumber and LotID read fields are resolved
// from the spots table at write time, matching what the SQL backend's
// join produces.
type ReservationRepo struct{ s *Store }

// Create stores an open reservation and assigns its id.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	defer r.s.lock()()
	spot, ok := r.s.t.spots[res.SpotID]
	if !ok {
		return repository.ErrSpotNotFound
	}
	r.s.t.resSeq++
	res.ID = r.s.t.resSeq
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	res.SpotNumber = spot.SpotNumber
	res.LotID = spot.LotID
	r.s.t.reservations[res.ID] = *res
	return nil
}

// GetByID fetches a reservation by id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	defer r.s.rlock()()
	res, ok := r.s.t.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &res, nil
}

// Close stamps the leaving timestamp and total cost on an open
// reservation. Closing an already-closed reservation fails.
func (r *ReservationRepo) Close(ctx context.Context, id uint64, leavingAt time.Time, totalCost float64) error {
	defer r.s.lock()()
	res, ok := r.s.t.reservations[id]
	if !ok || res.LeavingTimestamp.Valid {
		return repository.ErrReservationNotFound
	}
	res.LeavingTimestamp = null.TimeFrom(leavingAt)
	res.TotalCost = null.FloatFrom(totalCost)
	r.s.t.reservations[id] = res
	return nil
}

// ActiveByUser returns the user's open reservation, if any.
func (r *ReservationRepo) ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	defer r.s.rlock()()
	for _, res := range r.s.t.reservations {
		if res.UserID == userID && !res.LeavingTimestamp.Valid {
			out := res
			return &out, nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

// ListByUser returns all of a user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	defer r.s.rlock()()
	var result []model.Reservation
	for _, res := range r.s.t.reservations {
		if res.UserID == userID {
			result = append(result, res)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// CountByUser counts all of a user's reservations.
func (r *ReservationRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, res := range r.s.t.reservations {
		if res.UserID == userID {
			n++
		}
	}
	return n, nil
}

// CountActiveByUser counts the user's open reservations.
func (r *ReservationRepo) CountActiveByUser(ctx context.Context, userID uint64) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, res := range r.s.t.reservations {
		if res.UserID == userID && !res.LeavingTimestamp.Valid {
			n++
		}
	}
	return n, nil
}

// CountActive counts open reservations across all users.
func (r *ReservationRepo) CountActive(ctx context.Context) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, res := range r.s.t.reservations {
		if !res.LeavingTimestamp.Valid {
			n++
		}
	}
	return n, nil
}

// SumCostByUser sums total cost over the user's closed reservations.
// Open reservations carry no cost yet and contribute nothing.
func (r *ReservationRepo) SumCostByUser(ctx context.Context, userID uint64) (float64, error) {
	defer r.s.rlock()()
	var sum float64
	for _, res := range r.s.t.reservations {
		if res.UserID == userID && res.TotalCost.Valid {
			sum += res.TotalCost.Float64
		}
	}
	return sum, nil
}
