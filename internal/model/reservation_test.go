package model

import (
	"testing"
	"time"

	"gopkg.in/guregu/null.v4"
)

func TestDurationHoursOpenReservation(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	r := Reservation{ParkingTimestamp: start}

	got := r.DurationHours(start.Add(90 * time.Minute))
	if got != 1.5 {
		t.Errorf("DurationHours = %v, want 1.5", got)
	}
}

func TestDurationHoursClosedReservationIgnoresNow(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	r := Reservation{
		ParkingTimestamp: start,
		LeavingTimestamp: null.TimeFrom(start.Add(2 * time.Hour)),
	}

	got := r.DurationHours(start.Add(100 * time.Hour))
	if got != 2 {
		t.Errorf("DurationHours = %v, want 2", got)
	}
}

func TestCalculatedCostRoundsDurationBeforeMultiplying(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// 10 minutes = 0.16666h, rounds to 0.17h before applying the rate.
	r := Reservation{ParkingTimestamp: start, ParkingCostPerHour: 30}

	got := r.CalculatedCost(start.Add(10 * time.Minute))
	if got != 5.1 {
		t.Errorf("CalculatedCost = %v, want 5.1", got)
	}
}

func TestCalculatedCost(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		d    time.Duration
		rate float64
		want float64
	}{
		{"one hour", time.Hour, 10, 10},
		{"ninety minutes", 90 * time.Minute, 20, 30},
		{"zero duration", 0, 50, 0},
		{"rate rounding", time.Hour, 12.345, 12.35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Reservation{ParkingTimestamp: start, ParkingCostPerHour: tc.rate}
			if got := r.CalculatedCost(start.Add(tc.d)); got != tc.want {
				t.Errorf("CalculatedCost = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	r := Reservation{}
	if !r.Open() {
		t.Error("reservation without leaving timestamp should be open")
	}
	r.LeavingTimestamp = null.TimeFrom(time.Now())
	if r.Open() {
		t.Error("reservation with leaving timestamp should be closed")
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.004, 1.0},
		{1.005, 1.0}, // float64 stores 1.005 just below the midpoint
		{1.015, 1.01},
		{2.675, 2.67},
		{-1.005, -1.0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
