package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

func TestUserCreateRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	if err := s.Users().Create(ctx, dup); !errors.Is(err, repository.ErrUsernameExists) {
		t.Errorf("duplicate username = %v, want ErrUsernameExists", err)
	}
	dup = &model.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x"}
	if err := s.Users().Create(ctx, dup); !errors.Is(err, repository.ErrUsernameExists) {
		t.Errorf("duplicate email = %v, want ErrUsernameExists", err)
	}
}

func TestLotDeleteCascadesToSpots(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	lot := &model.ParkingLot{PrimeLocationName: "A"}
	if err := s.Lots().Create(ctx, lot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := &model.ParkingLot{PrimeLocationName: "B"}
	if err := s.Lots().Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Spots().CreateRange(ctx, lot.ID, 1, 3); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}
	if err := s.Spots().CreateRange(ctx, other.ID, 1, 2); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}

	if err := s.Lots().Delete(ctx, lot.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, err := s.Spots().Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("spots after cascade = %d, want 2 (other lot untouched)", n)
	}
}

func TestUserDeleteCascadesToReservations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	lot := &model.ParkingLot{PrimeLocationName: "A"}
	if err := s.Lots().Create(ctx, lot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Spots().CreateRange(ctx, lot.ID, 1, 2); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}
	u := &model.User{Username: "alice", Email: "a@example.com", PasswordHash: "x"}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	spot, err := s.Spots().FirstAvailableInLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("FirstAvailableInLot: %v", err)
	}
	res := &model.Reservation{SpotID: spot.ID, UserID: u.ID, ParkingTimestamp: time.Now().UTC()}
	if err := s.Reservations().Create(ctx, res); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Users().Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Reservations().GetByID(ctx, res.ID); !errors.Is(err, repository.ErrReservationNotFound) {
		t.Errorf("reservation after user delete = %v, want ErrReservationNotFound", err)
	}
}

func TestReservationCreateResolvesSpot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	lot := &model.ParkingLot{PrimeLocationName: "A"}
	if err := s.Lots().Create(ctx, lot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Spots().CreateRange(ctx, lot.ID, 1, 3); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}
	spots, err := s.Spots().ListByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("ListByLot: %v", err)
	}

	res := &model.Reservation{SpotID: spots[1].ID, UserID: 1, ParkingTimestamp: time.Now().UTC()}
	if err := s.Reservations().Create(ctx, res); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.SpotNumber != 2 || res.LotID != lot.ID {
		t.Errorf("resolved spot_number=%d lot_id=%d, want 2 and %d", res.SpotNumber, res.LotID, lot.ID)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	lot := &model.ParkingLot{PrimeLocationName: "A"}
	if err := s.Lots().Create(ctx, lot); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Spots().CreateRange(ctx, lot.ID, 1, 5); err != nil {
			return err
		}
		extra := &model.ParkingLot{PrimeLocationName: "B"}
		if err := tx.Lots().Create(ctx, extra); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx = %v, want boom", err)
	}

	if n, _ := s.Spots().Count(ctx); n != 0 {
		t.Errorf("spots leaked from rolled-back tx: %d", n)
	}
	if n, _ := s.Lots().Count(ctx); n != 1 {
		t.Errorf("lots after rollback = %d, want 1", n)
	}
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.InTx(ctx, func(tx repository.Store) error {
		lot := &model.ParkingLot{PrimeLocationName: "A"}
		if err := tx.Lots().Create(ctx, lot); err != nil {
			return err
		}
		return tx.Spots().CreateRange(ctx, lot.ID, 1, 4)
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if n, _ := s.Spots().Count(ctx); n != 4 {
		t.Errorf("spots after commit = %d, want 4", n)
	}
}

func TestTokenLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	exp := time.Now().UTC().Add(time.Hour)
	if err := s.Tokens().StoreRefresh(ctx, 42, "hash-1", exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}

	uid, err := s.Tokens().ValidateRefresh(ctx, "hash-1")
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if uid != 42 {
		t.Errorf("user id = %d, want 42", uid)
	}

	if err := s.Tokens().RevokeByHash(ctx, "hash-1"); err != nil {
		t.Fatalf("RevokeByHash: %v", err)
	}
	if _, err := s.Tokens().ValidateRefresh(ctx, "hash-1"); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Errorf("revoked token = %v, want ErrTokenInvalid", err)
	}

	// Expired tokens are invalid even when never revoked.
	if err := s.Tokens().StoreRefresh(ctx, 42, "hash-2", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}
	if _, err := s.Tokens().ValidateRefresh(ctx, "hash-2"); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Errorf("expired token = %v, want ErrTokenInvalid", err)
	}
}
