package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/utils"
)

func TestAdminOverview(t *testing.T) {
	parking, store := newTestParking(t)
	stats := NewStatsService(store)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &model.User{Username: "boss", Email: "boss@example.com", PasswordHash: hash, IsAdmin: true}
	if err := store.Users().Create(ctx, admin); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	driver := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: hash}
	if err := store.Users().Create(ctx, driver); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	lot := mustCreateLot(t, parking, 3, 10)
	if _, err := parking.BookSpot(ctx, driver.ID, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	got, err := stats.AdminOverview(ctx)
	if err != nil {
		t.Fatalf("AdminOverview: %v", err)
	}
	want := model.AdminStats{
		TotalLots:          1,
		TotalSpots:         3,
		OccupiedSpots:      1,
		AvailableSpots:     2,
		TotalUsers:         1, // admin accounts excluded
		ActiveReservations: 1,
	}
	if *got != want {
		t.Errorf("AdminOverview = %+v, want %+v", *got, want)
	}
}

func TestUserOverview(t *testing.T) {
	parking, store := newTestParking(t)
	stats := NewStatsService(store)
	ctx := context.Background()

	lot := mustCreateLot(t, parking, 2, 10)
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// One completed one-hour stay, one still open.
	freezeTime(t, start)
	first, err := parking.BookSpot(ctx, 7, lot.ID)
	if err != nil {
		t.Fatalf("BookSpot: %v", err)
	}
	freezeTime(t, start.Add(time.Hour))
	if _, err := parking.ReleaseSpot(ctx, first.ID); err != nil {
		t.Fatalf("ReleaseSpot: %v", err)
	}
	if _, err := parking.BookSpot(ctx, 7, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	got, err := stats.UserOverview(ctx, 7)
	if err != nil {
		t.Fatalf("UserOverview: %v", err)
	}
	want := model.UserStats{
		TotalReservations:     2,
		ActiveReservations:    1,
		CompletedReservations: 1,
		TotalSpent:            10,
	}
	if *got != want {
		t.Errorf("UserOverview = %+v, want %+v", *got, want)
	}
}

func TestMonthlySpendingBucketsByParkingMonth(t *testing.T) {
	parking, store := newTestParking(t)
	stats := NewStatsService(store)
	ctx := context.Background()

	lot := mustCreateLot(t, parking, 3, 10)

	// Two stays in June, one in July, one still open in July.
	type stay struct {
		start time.Time
		hours time.Duration
	}
	stays := []stay{
		{time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), time.Hour},
		{time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC), 2 * time.Hour},
		{time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC), 3 * time.Hour},
	}
	for _, s := range stays {
		freezeTime(t, s.start)
		res, err := parking.BookSpot(ctx, 5, lot.ID)
		if err != nil {
			t.Fatalf("BookSpot: %v", err)
		}
		freezeTime(t, s.start.Add(s.hours))
		if _, err := parking.ReleaseSpot(ctx, res.ID); err != nil {
			t.Fatalf("ReleaseSpot: %v", err)
		}
	}
	freezeTime(t, time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC))
	if _, err := parking.BookSpot(ctx, 5, lot.ID); err != nil {
		t.Fatalf("BookSpot: %v", err)
	}

	got, err := stats.MonthlySpending(ctx, 5)
	if err != nil {
		t.Fatalf("MonthlySpending: %v", err)
	}
	if got["2025-06"] != 30 {
		t.Errorf("June spending = %v, want 30", got["2025-06"])
	}
	if got["2025-07"] != 30 {
		t.Errorf("July spending = %v, want 30 (open stay contributes nothing)", got["2025-07"])
	}
	if len(got) != 2 {
		t.Errorf("months = %d, want 2", len(got))
	}
}
