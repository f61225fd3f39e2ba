package presence

import "errors"

var (
	// ErrDuplicateUser is returned by Join when the user is already present.
	ErrDuplicateUser = errors.New("presence: user already present")

	// ErrUnknownUser is returned when the user has no presence record.
	ErrUnknownUser = errors.New("presence: unknown user")

	// ErrSeatOccupied is returned by SetSeat when a different user holds the seat.
	ErrSeatOccupied = errors.New("presence: seat occupied")

	// ErrInvalidUserID is returned for an empty or oversized user ID.
	ErrInvalidUserID = errors.New("presence: invalid user id")

	// ErrInvalidPosition is returned for positions with NaN or infinite coordinates.
	ErrInvalidPosition = errors.New("presence: invalid position")

	// ErrStoreClosed is returned once the owning goroutine has stopped.
	ErrStoreClosed = errors.New("presence: store closed")
)

// ErrStoreRunning is returned by Run when the store already has an owner.
var ErrStoreRunning = errors.New("presence: store already running")
