// Package repository defines the entity-store contract the engines
// depend on, together with sentinel errors shared by every backend.
// These sentinel values allow higher layers such as services and
// handlers to distinguish between failure scenarios with errors.Is
// regardless of which storage implementation produced them.
package repository

import "errors"

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when registering a user whose
// username or email is already taken.
var ErrUsernameExists = errors.New("username or email already exists")

// ErrLotNotFound is returned when a parking lot id does not resolve.
var ErrLotNotFound = errors.New("parking lot not found")

// ErrSpotNotFound is returned when a spot lookup yields no rows,
// including the first-available lookup on a fully occupied lot.
var ErrSpotNotFound = errors.New("parking spot not found")

// ErrReservationNotFound is returned when a reservation id does not
// resolve, or when an active-reservation lookup finds none.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTokenInvalid is returned when a refresh token hash does not
// match an active, unexpired token.
var ErrTokenInvalid = errors.New("refresh token invalid")
