package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// SpotRepo implements repository.SpotRepository on the in-memory
// tables.
type SpotRepo struct{ s *Store }

// CreateRange stores Available spots numbered from..to for the lot.
func (r *SpotRepo) CreateRange(ctx context.Context, lotID uint64, from, to int) error {
	defer r.s.lock()()
	now := time.Now().UTC()
	for n := from; n <= to; n++ {
		r.s.t.spotSeq++
		r.s.t.spots[r.s.t.spotSeq] = model.ParkingSpot{
			ID:         r.s.t.spotSeq,
			LotID:      lotID,
			SpotNumber: n,
			Status:     model.StatusAvailable,
			CreatedAt:  now,
		}
	}
	return nil
}

// GetByID fetches a spot by id.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	defer r.s.rlock()()
	spot, ok := r.s.t.spots[id]
	if !ok {
		return nil, repository.ErrSpotNotFound
	}
	return &spot, nil
}

// ListByLot returns the lot's spots ordered by spot number.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	defer r.s.rlock()()
	var result []model.ParkingSpot
	for _, spot := range r.s.t.spots {
		if spot.LotID == lotID {
			result = append(result, spot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SpotNumber != result[j].SpotNumber {
			return result[i].SpotNumber < result[j].SpotNumber
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// FirstAvailableInLot returns the available spot with the lowest
// spot number. The deterministic tie-break on id matches the SQL
// backend's ORDER BY.
func (r *SpotRepo) FirstAvailableInLot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error) {
	defer r.s.rlock()()
	var best *model.ParkingSpot
	for _, spot := range r.s.t.spots {
		if spot.LotID != lotID || spot.Status != model.StatusAvailable {
			continue
		}
		s := spot
		if best == nil || s.SpotNumber < best.SpotNumber ||
			(s.SpotNumber == best.SpotNumber && s.ID < best.ID) {
			best = &s
		}
	}
	if best == nil {
		return nil, repository.ErrSpotNotFound
	}
	return best, nil
}

// UpdateStatus flips a spot between Available and Occupied.
func (r *SpotRepo) UpdateStatus(ctx context.Context, id uint64, status model.SpotStatus) error {
	defer r.s.lock()()
	spot, ok := r.s.t.spots[id]
	if !ok {
		return repository.ErrSpotNotFound
	}
	spot.Status = status
	r.s.t.spots[id] = spot
	return nil
}

// DeleteAvailableAbove removes every Available spot of the lot whose
// number exceeds threshold, highest numbers first.
func (r *SpotRepo) DeleteAvailableAbove(ctx context.Context, lotID uint64, threshold int) (int, error) {
	defer r.s.lock()()
	var victims []model.ParkingSpot
	for _, spot := range r.s.t.spots {
		if spot.LotID == lotID && spot.Status == model.StatusAvailable && spot.SpotNumber > threshold {
			victims = append(victims, spot)
		}
	}
	sort.Slice(victims, func(i, j int) bool { return victims[i].SpotNumber > victims[j].SpotNumber })
	for _, v := range victims {
		delete(r.s.t.spots, v.ID)
	}
	return len(victims), nil
}

// CountByLot counts all spots of a lot.
func (r *SpotRepo) CountByLot(ctx context.Context, lotID uint64) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, spot := range r.s.t.spots {
		if spot.LotID == lotID {
			n++
		}
	}
	return n, nil
}

// CountByLotAndStatus counts a lot's spots with the given status.
func (r *SpotRepo) CountByLotAndStatus(ctx context.Context, lotID uint64, status model.SpotStatus) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, spot := range r.s.t.spots {
		if spot.LotID == lotID && spot.Status == status {
			n++
		}
	}
	return n, nil
}

// Count counts all spots across every lot.
func (r *SpotRepo) Count(ctx context.Context) (int, error) {
	defer r.s.rlock()()
	return len(r.s.t.spots), nil
}

// CountByStatus counts all spots with the given status.
func (r *SpotRepo) CountByStatus(ctx context.Context, status model.SpotStatus) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, spot := range r.s.t.spots {
		if spot.Status == status {
			n++
		}
	}
	return n, nil
}
