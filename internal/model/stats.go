package model

// AdminStats is the system-wide occupancy overview returned by the
// statistics aggregator. All counts are live queries against the
// store; nothing is cached between calls.
type AdminStats struct {
	TotalLots          int `json:"total_lots"`
	TotalSpots         int `json:"total_spots"`
	OccupiedSpots      int `json:"occupied_spots"`
	AvailableSpots     int `json:"available_spots"`
	TotalUsers         int `json:"total_users"` // non-admin accounts only
	ActiveReservations int `json:"active_reservations"`
}

// UserStats summarizes one user's reservation history. TotalSpent
// sums total_cost over all of the user's reservations; open
// reservations have no cost yet and contribute nothing.
type UserStats struct {
	TotalReservations     int     `json:"total_reservations"`
	ActiveReservations    int     `json:"active_reservations"`
	CompletedReservations int     `json:"completed_reservations"`
	TotalSpent            float64 `json:"total_spent"`
}
