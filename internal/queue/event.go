// Package queue defines the domain events exchanged over the message
// broker plus the publisher and the background consumer.
package queue

// SpotBookedEvent is published when a spot is allocated to a user.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.
type SpotBookedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	LotID         uint64  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	SpotNumber    int     `json:"spot_number"`
	CostPerHour   float64 `json:"cost_per_hour"`
	BookedAt      string  `json:"booked_at"`
}

// SpotReleasedEvent is published when a reservation is closed and the
// spot returns to the pool.
type SpotReleasedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	LotID         uint64  `json:"lot_id"`
	SpotNumber    int     `json:"spot_number"`
	DurationHours float64 `json:"duration_hours"`
	TotalCost     float64 `json:"total_cost"`
	ReleasedAt    string  `json:"released_at"`
}
