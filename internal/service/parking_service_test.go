package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
	"github.com/iliyamo/parking-lot-reservation/internal/repository/memory"
)

func newTestParking(t *testing.T) (*ParkingService, repository.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewParkingService(store), store
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func mustCreateLot(t *testing.T, svc *ParkingService, spots int, rate float64) *model.ParkingLot {
	t.Helper()
	lot := &model.ParkingLot{
		PrimeLocationName:    "Central Garage",
		Address:              "1 Main St",
		PinCode:              "560001",
		PricePerHour:         rate,
		MaximumNumberOfSpots: spots,
	}
	if err := svc.CreateLot(context.Background(), lot); err != nil {
		t.Fatalf("CreateLot: %v", err)
	}
	return lot
}

func spotNumbers(t *testing.T, svc *ParkingService, lotID uint64) []int {
	t.Helper()
	spots, err := svc.SpotsForLot(context.Background(), lotID)
	if err != nil {
		t.Fatalf("SpotsForLot: %v", err)
	}
	nums := make([]int, 0, len(spots))
	for _, s := range spots {
		nums = append(nums, s.SpotNumber)
	}
	return nums
}

func TestCreateLotSeedsNumberedSpots(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 4, 10)

	nums := spotNumbers(t, svc, lot.ID)
	want := []int{1, 2, 3, 4}
	if len(nums) != len(want) {
		t.Fatalf("spot count = %d, want %d", len(nums), len(want))
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("spot[%d] = %d, want %d", i, nums[i], want[i])
		}
	}
}

func TestBookSpotAllocatesLowestNumber(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 3, 10)
	ctx := context.Background()

	first, err := svc.BookSpot(ctx, 1, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	if first.SpotNumber != 1 {
		t.Errorf("first allocation got spot %d, want 1", first.SpotNumber)
	}

	second, err := svc.BookSpot(ctx, 2, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	if second.SpotNumber != 2 {
		t.Errorf("second allocation got spot %d, want 2", second.SpotNumber)
	}

	// Release the first and book again: the freed low number wins.
	if _, err := svc.ReleaseSpot(ctx, first.ID); err != nil {
		t.Fatalf("ReleaseSpot: %v", err)
	}
	third, err := svc.BookSpot(ctx, 3, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	if third.SpotNumber != 1 {
		t.Errorf("post-release allocation got spot %d, want 1", third.SpotNumber)
	}
}

func TestBookSpotFullLot(t *testing.T) {
	svc, store := newTestParking(t)
	lot := mustCreateLot(t, svc, 1, 10)
	ctx := context.Background()

	if _, err := svc.BookSpot(ctx, 1, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	before, err := store.Reservations().CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}

	_, err = svc.BookSpot(ctx, 2, lot.ID)
	if !errors.Is(err, ErrNoAvailableSpot) {
		t.Fatalf("BookSpot on full lot = %v, want ErrNoAvailableSpot", err)
	}

	after, err := store.Reservations().CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if after != before {
		t.Errorf("failed booking changed active reservations: %d -> %d", before, after)
	}
}

func TestBookSpotUnknownLot(t *testing.T) {
	svc, _ := newTestParking(t)
	_, err := svc.BookSpot(context.Background(), 1, 999)
	if !errors.Is(err, repository.ErrLotNotFound) {
		t.Fatalf("BookSpot = %v, want ErrLotNotFound", err)
	}
}

func TestBookingSnapshotsHourlyRate(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 2, 10)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	freezeTime(t, start)
	res, err := svc.BookSpot(ctx, 1, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	if res.ParkingCostPerHour != 10 {
		t.Fatalf("snapshot rate = %v, want 10", res.ParkingCostPerHour)
	}

	// Double the lot price mid-stay; the open reservation keeps its rate.
	lot.PricePerHour = 20
	if err := svc.UpdateLot(ctx, lot); err != nil {
		t.Fatalf("UpdateLot: %v", err)
	}

	freezeTime(t, start.Add(2*time.Hour))
	closed, err := svc.ReleaseSpot(ctx, res.ID)
	if err != nil {
		t.Fatalf("ReleaseSpot: %v", err)
	}
	if got := closed.TotalCost.ValueOrZero(); got != 20 {
		t.Errorf("total cost = %v, want 20 (2h at the snapshotted rate)", got)
	}
}

func TestReleaseSpotBillsAndFrees(t *testing.T) {
	svc, store := newTestParking(t)
	lot := mustCreateLot(t, svc, 1, 15)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	freezeTime(t, start)
	res, err := svc.BookSpot(ctx, 1, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	freezeTime(t, start.Add(90*time.Minute))
	closed, err := svc.ReleaseSpot(ctx, res.ID)
	if err != nil {
		t.Fatalf("ReleaseSpot: %v", err)
	}
	if got := closed.TotalCost.ValueOrZero(); got != 22.5 {
		t.Errorf("total cost = %v, want 22.5", got)
	}
	if !closed.LeavingTimestamp.Valid {
		t.Error("closed reservation missing leaving timestamp")
	}

	spot, err := store.Spots().GetByID(ctx, res.SpotID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if spot.Status != model.StatusAvailable {
		t.Errorf("released spot status = %q, want %q", spot.Status, model.StatusAvailable)
	}
}

func TestReleaseSpotTwice(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 1, 10)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	freezeTime(t, start)
	res, err := svc.BookSpot(ctx, 1, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	freezeTime(t, start.Add(time.Hour))
	first, err := svc.ReleaseSpot(ctx, res.ID)
	if err != nil {
		t.Fatalf("ReleaseSpot: %v", err)
	}

	freezeTime(t, start.Add(5*time.Hour))
	if _, err := svc.ReleaseSpot(ctx, res.ID); !errors.Is(err, ErrAlreadyReleased) {
		t.Fatalf("second release = %v, want ErrAlreadyReleased", err)
	}

	// The stored cost must not have been recomputed at the later time.
	reread, err := svc.Reservation(ctx, res.ID)
	if err != nil {
		t.Fatalf("Reservation: %v", err)
	}
	if reread.TotalCost.ValueOrZero() != first.TotalCost.ValueOrZero() {
		t.Errorf("cost changed after failed release: %v -> %v",
			first.TotalCost.ValueOrZero(), reread.TotalCost.ValueOrZero())
	}
}

func TestUpdateLotGrowsSpotSet(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 2, 10)
	ctx := context.Background()

	lot.MaximumNumberOfSpots = 5
	if err := svc.UpdateLot(ctx, lot); err != nil {
		t.Fatalf("UpdateLot: %v", err)
	}

	nums := spotNumbers(t, svc, lot.ID)
	want := []int{1, 2, 3, 4, 5}
	if len(nums) != len(want) {
		t.Fatalf("spot count = %d, want %d", len(nums), len(want))
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("spot[%d] = %d, want %d", i, nums[i], want[i])
		}
	}
}

func TestUpdateLotShrinkSkipsOccupiedSpots(t *testing.T) {
	svc, store := newTestParking(t)
	lot := mustCreateLot(t, svc, 5, 10)
	ctx := context.Background()

	// Occupy spot 5 directly so the shrink has an immovable spot.
	spots, err := store.Spots().ListByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("ListByLot: %v", err)
	}
	if err := store.Spots().UpdateStatus(ctx, spots[4].ID, model.StatusOccupied); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	lot.MaximumNumberOfSpots = 3
	if err := svc.UpdateLot(ctx, lot); err != nil {
		t.Fatalf("UpdateLot: %v", err)
	}

	nums := spotNumbers(t, svc, lot.ID)
	want := []int{1, 2, 3, 5}
	if len(nums) != len(want) {
		t.Fatalf("spot numbers = %v, want %v", nums, want)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Fatalf("spot numbers = %v, want %v", nums, want)
		}
	}
}

func TestDeleteLotWithOccupiedSpots(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 2, 10)
	ctx := context.Background()

	if _, err := svc.BookSpot(ctx, 1, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	if err := svc.DeleteLot(ctx, lot.ID); !errors.Is(err, ErrOccupiedSpots) {
		t.Fatalf("DeleteLot = %v, want ErrOccupiedSpots", err)
	}
	// The lot must survive the refused deletion.
	if _, err := svc.Lot(ctx, lot.ID); err != nil {
		t.Errorf("lot disappeared after refused delete: %v", err)
	}
}

func TestDeleteLotRemovesSpots(t *testing.T) {
	svc, store := newTestParking(t)
	lot := mustCreateLot(t, svc, 3, 10)
	ctx := context.Background()

	if err := svc.DeleteLot(ctx, lot.ID); err != nil {
		t.Fatalf("DeleteLot: %v", err)
	}
	if _, err := svc.Lot(ctx, lot.ID); !errors.Is(err, repository.ErrLotNotFound) {
		t.Fatalf("Lot after delete = %v, want ErrLotNotFound", err)
	}
	n, err := store.Spots().Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("orphan spots remain after lot delete: %d", n)
	}
}

func TestLotSummaryCountsAddUp(t *testing.T) {
	svc, _ := newTestParking(t)
	lot := mustCreateLot(t, svc, 4, 10)
	ctx := context.Background()

	if _, err := svc.BookSpot(ctx, 1, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	sum, err := svc.LotSummary(ctx, lot.ID)
	if err != nil {
		t.Fatalf("LotSummary: %v", err)
	}
	if sum.Total != 4 || sum.Occupied != 1 || sum.Available != 3 {
		t.Errorf("summary = %+v, want total 4, occupied 1, available 3", sum)
	}
	if sum.Available+sum.Occupied != sum.Total {
		t.Errorf("available+occupied = %d, want %d", sum.Available+sum.Occupied, sum.Total)
	}
}
