package model

import (
	"math"
	"time"

	"gopkg.in/guregu/null.v4"
)

// Reservation records one user occupying one spot from a start time
// until an optional end time, stored in the `reservations` table.
// The hourly rate is snapshotted from the lot at booking time so a
// later lot price change never alters an open or closed reservation.
// TotalCost is written exactly once, at release, and never
// recomputed afterward.
//
// Fields:
//  ID                 – primary key identifier.
//  SpotID             – spot occupied by this reservation.
//  UserID             – user who booked the spot.
//  ParkingTimestamp   – when the spot was taken.
//  LeavingTimestamp   – when the spot was released (null while open).
//  ParkingCostPerHour – hourly rate frozen at booking time.
//  TotalCost          – final charge (null until released).
//  CreatedAt          – creation timestamp.
//  SpotNumber, LotID  – resolved from the spot row on reads; zero
//                       when the reservation was loaded without its
//                       spot.
type Reservation struct {
	ID                 uint64     // reservations.id
	SpotID             uint64     // reservations.spot_id
	UserID             uint64     // reservations.user_id
	ParkingTimestamp   time.Time  // reservations.parking_timestamp
	LeavingTimestamp   null.Time  // reservations.leaving_timestamp (nullable)
	ParkingCostPerHour float64    // reservations.parking_cost_per_hour
	TotalCost          null.Float // reservations.total_cost (nullable)
	CreatedAt          time.Time  // reservations.created_at
	SpotNumber         int        // joined from parking_spots.spot_number
	LotID              uint64     // joined from parking_spots.lot_id
}

// Open reports whether the reservation has not been released yet.
func (r *Reservation) Open() bool {
	return !r.LeavingTimestamp.Valid
}

// DurationHours returns the elapsed time of the reservation in
// hours, rounded to two decimals. Closed reservations measure up to
// their leaving timestamp; open ones measure up to now.
func (r *Reservation) DurationHours(now time.Time) float64 {
	end := now
	if r.LeavingTimestamp.Valid {
		end = r.LeavingTimestamp.Time
	}
	return Round2(end.Sub(r.ParkingTimestamp).Seconds() / 3600)
}

// CalculatedCost derives the charge from the rounded duration and
// the snapshotted hourly rate, rounded to two decimals. While the
// reservation is open this is a running figure; at release it is the
// value frozen into TotalCost.
func (r *Reservation) CalculatedCost(now time.Time) float64 {
	return Round2(r.DurationHours(now) * r.ParkingCostPerHour)
}

// Round2 rounds a money or duration value to two decimal places.
// Rounding happens at the point of computation, not at display time,
// so stored costs and recomputed statistics always agree.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
