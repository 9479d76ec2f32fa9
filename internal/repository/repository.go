package repository

import (
	"context"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// UserRepository provides access to user records. Delete cascades to
// the user's reservations: ownership-aware deletion lives in the
// store so the same behavior holds for every backend.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListNonAdmins(ctx context.Context) ([]model.User, error)
	CountNonAdmins(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uint64) error
}

// LotRepository provides access to parking lot records. Delete
// cascades to the lot's spots; callers must verify no spot is
// occupied before deleting.
type LotRepository interface {
	Create(ctx context.Context, lot *model.ParkingLot) error
	GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error)
	GetAll(ctx context.Context) ([]model.ParkingLot, error)
	Update(ctx context.Context, lot *model.ParkingLot) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
}

// SpotRepository provides access to parking spot records.
// FirstAvailableInLot returns the available spot with the lowest
// spot number; inside a transaction the SQL backend locks the row so
// two concurrent bookings cannot select the same spot.
type SpotRepository interface {
	CreateRange(ctx context.Context, lotID uint64, from, to int) error
	GetByID(ctx context.Context, id uint64) (*model.ParkingSpot, error)
	ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error)
	FirstAvailableInLot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error)
	UpdateStatus(ctx context.Context, id uint64, status model.SpotStatus) error
	// DeleteAvailableAbove removes every Available spot of the lot whose
	// number exceeds threshold and reports how many were removed.
	// Occupied spots above the threshold are left untouched.
	DeleteAvailableAbove(ctx context.Context, lotID uint64, threshold int) (int, error)
	CountByLot(ctx context.Context, lotID uint64) (int, error)
	CountByLotAndStatus(ctx context.Context, lotID uint64, status model.SpotStatus) (int, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status model.SpotStatus) (int, error)
}

// ReservationRepository provides access to reservation records.
// Close writes the leaving timestamp and total cost in one statement;
// it is the only mutation a reservation ever receives after creation.
type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Close(ctx context.Context, id uint64, leavingAt time.Time, totalCost float64) error
	ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	CountByUser(ctx context.Context, userID uint64) (int, error)
	CountActiveByUser(ctx context.Context, userID uint64) (int, error)
	CountActive(ctx context.Context) (int, error)
	SumCostByUser(ctx context.Context, userID uint64) (float64, error)
}

// TokenRepository persists and validates refresh tokens (hashes
// only; the raw token never reaches the store).
type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owning user id when a non-revoked,
	// non-expired token with this hash exists, ErrTokenInvalid otherwise.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Store aggregates the entity repositories behind a single handle
// and runs multi-step mutations atomically. InTx executes fn against
// a transactional view of the store: every mutation fn performs is
// applied as one unit or not at all. Nested InTx calls join the
// enclosing transaction.
type Store interface {
	Users() UserRepository
	Lots() LotRepository
	Spots() SpotRepository
	Reservations() ReservationRepository
	Tokens() TokenRepository
	InTx(ctx context.Context, fn func(Store) error) error
}
