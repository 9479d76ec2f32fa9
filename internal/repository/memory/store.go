// Package memory implements the repository contract with plain maps
// guarded by a mutex. It backs the engine tests and the
// STORE_BACKEND=memory development mode, where no MySQL server is
// available.
package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// tables holds every entity map plus the auto-increment counters.
type tables struct {
	users        map[uint64]model.User
	lots         map[uint64]model.ParkingLot
	spots        map[uint64]model.ParkingSpot
	reservations map[uint64]model.Reservation
	tokens       map[string]model.RefreshToken // keyed by token hash

	userSeq, lotSeq, spotSeq, resSeq uint64
}

func newTables() *tables {
	return &tables{
		users:        make(map[uint64]model.User),
		lots:         make(map[uint64]model.ParkingLot),
		spots:        make(map[uint64]model.ParkingSpot),
		reservations: make(map[uint64]model.Reservation),
		tokens:       make(map[string]model.RefreshToken),
	}
}

// clone deep-copies all tables. Entity values are plain structs, so
// copying the map entries is enough.
func (t *tables) clone() *tables {
	c := &tables{
		users:        make(map[uint64]model.User, len(t.users)),
		lots:         make(map[uint64]model.ParkingLot, len(t.lots)),
		spots:        make(map[uint64]model.ParkingSpot, len(t.spots)),
		reservations: make(map[uint64]model.Reservation, len(t.reservations)),
		tokens:       make(map[string]model.RefreshToken, len(t.tokens)),
		userSeq:      t.userSeq,
		lotSeq:       t.lotSeq,
		spotSeq:      t.spotSeq,
		resSeq:       t.resSeq,
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.lots {
		c.lots[k] = v
	}
	for k, v := range t.spots {
		c.spots[k] = v
	}
	for k, v := range t.reservations {
		c.reservations[k] = v
	}
	for k, v := range t.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store is the in-memory entity store. All access is serialized
// through one RWMutex, which also serializes InTx mutations against
// each other and against reads: the single-writer model the engines
// assume.
type Store struct {
	mu   *sync.RWMutex
	t    *tables
	inTx bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{mu: &sync.RWMutex{}, t: newTables()}
}

// Users returns the user repository.
func (s *Store) Users() repository.UserRepository { return &UserRepo{s: s} }

// Lots returns the parking lot repository.
func (s *Store) Lots() repository.LotRepository { return &LotRepo{s: s} }

// Spots returns the parking spot repository.
func (s *Store) Spots() repository.SpotRepository { return &SpotRepo{s: s} }

// Reservations returns the reservation repository.
func (s *Store) Reservations() repository.ReservationRepository { return &ReservationRepo{s: s} }

// Tokens returns the refresh token repository.
func (s *Store) Tokens() repository.TokenRepository { return &TokenRepo{s: s} }

// InTx runs fn against a deep copy of the tables while holding the
// write lock. The copy replaces the live tables only when fn
// succeeds, so a failed multi-step mutation leaves no trace, mirroring
// a rolled-back database transaction. Nested calls join the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.t.clone()
	if err := fn(&Store{mu: s.mu, t: work, inTx: true}); err != nil {
		return err
	}
	s.t = work
	return nil
}

// lock acquires the write lock unless this store is a transactional
// view, which already holds it. The returned func releases whatever
// was acquired.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// rlock is the read-side counterpart of lock.
func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}
