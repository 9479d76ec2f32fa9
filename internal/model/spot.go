package model

import "time"

// SpotStatus is the single-letter status code stored in
// parking_spots.status.
type SpotStatus string

// Spot status codes. A spot is Occupied exactly while it has one
// open reservation and Available otherwise.
const (
	StatusAvailable SpotStatus = "A"
	StatusOccupied  SpotStatus = "O"
)

// ParkingSpot is one unit of capacity within a lot, stored in the
// `parking_spots` table. Spots are numbered 1..capacity at lot
// creation; after a capacity shrink the numbers may become a
// non-contiguous subset.
//
// Fields:
//  ID         – primary key identifier.
//  LotID      – lot to which this spot belongs.
//  SpotNumber – 1-based number of the spot within its lot.
//  Status     – StatusAvailable or StatusOccupied.
//  CreatedAt  – creation timestamp.
type ParkingSpot struct {
	ID         uint64     // parking_spots.id
	LotID      uint64     // parking_spots.lot_id
	SpotNumber int        // parking_spots.spot_number
	Status     SpotStatus // parking_spots.status
	CreatedAt  time.Time  // parking_spots.created_at
}
