package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// LotRepo implements repository.LotRepository on the in-memory
// tables.
type LotRepo struct{ s *Store }

// Create stores a lot and assigns its id.
func (r *LotRepo) Create(ctx context.Context, lot *model.ParkingLot) error {
	defer r.s.lock()()
	r.s.t.lotSeq++
	lot.ID = r.s.t.lotSeq
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = time.Now().UTC()
	}
	r.s.t.lots[lot.ID] = *lot
	return nil
}

// GetByID fetches a lot by id.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	defer r.s.rlock()()
	lot, ok := r.s.t.lots[id]
	if !ok {
		return nil, repository.ErrLotNotFound
	}
	return &lot, nil
}

// GetAll returns every lot ordered by id.
func (r *LotRepo) GetAll(ctx context.Context) ([]model.ParkingLot, error) {
	defer r.s.rlock()()
	result := make([]model.ParkingLot, 0, len(r.s.t.lots))
	for _, lot := range r.s.t.lots {
		result = append(result, lot)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update rewrites a stored lot.
func (r *LotRepo) Update(ctx context.Context, lot *model.ParkingLot) error {
	defer r.s.lock()()
	if _, ok := r.s.t.lots[lot.ID]; !ok {
		return repository.ErrLotNotFound
	}
	r.s.t.lots[lot.ID] = *lot
	return nil
}

// Delete removes a lot and all of its spots.
func (r *LotRepo) Delete(ctx context.Context, id uint64) error {
	defer r.s.lock()()
	if _, ok := r.s.t.lots[id]; !ok {
		return repository.ErrLotNotFound
	}
	for sid, spot := range r.s.t.spots {
		if spot.LotID == id {
			delete(r.s.t.spots, sid)
		}
	}
	delete(r.s.t.lots, id)
	return nil
}

// Count counts all lots.
func (r *LotRepo) Count(ctx context.Context) (int, error) {
	defer r.s.rlock()()
	return len(r.s.t.lots), nil
}
