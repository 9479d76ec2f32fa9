package model

import "time"

// ParkingLot describes a physical parking facility as stored in the
// `parking_lots` table. The configured capacity is the number of
// spots the lot is supposed to have; the actual spot set is managed
// separately and can temporarily diverge after a best-effort shrink.
//
// Fields:
//  ID                   – primary key identifier.
//  PrimeLocationName    – display name of the lot.
//  Address              – street address.
//  PinCode              – postal code.
//  PricePerHour         – current hourly price; bookings snapshot it.
//  MaximumNumberOfSpots – configured capacity of the lot.
//  CreatedAt            – creation timestamp.
type ParkingLot struct {
	ID                   uint64    // parking_lots.id
	PrimeLocationName    string    // parking_lots.prime_location_name
	Address              string    // parking_lots.address
	PinCode              string    // parking_lots.pin_code
	PricePerHour         float64   // parking_lots.price_per_hour
	MaximumNumberOfSpots int       // parking_lots.maximum_number_of_spots
	CreatedAt            time.Time // parking_lots.created_at
}

// LotSummary flattens a lot together with its live spot counts for
// browse and per-lot breakdown responses. Counts are recomputed from
// the store on every read, never cached on the lot row, so
// Available+Occupied always equals Total.
type LotSummary struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	PinCode      string  `json:"pin_code"`
	PricePerHour float64 `json:"price_per_hour"`
	Available    int     `json:"available"`
	Occupied     int     `json:"occupied"`
	Total        int     `json:"total"`
}
