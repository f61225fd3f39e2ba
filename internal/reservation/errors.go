package reservation

import (
	"errors"

	"github.com/nerrad567/cafe-core/internal/presence"
)

// ErrSeatOccupied is returned when a different user already holds the
// requested seat. It is the same value the presence store uses so callers
// can match either layer with errors.Is.
var ErrSeatOccupied = presence.ErrSeatOccupied

// ErrUnknownUser is returned when the requesting user has no presence.
var ErrUnknownUser = presence.ErrUnknownUser

// ErrInvalidRequest is returned for empty user or seat IDs.
var ErrInvalidRequest = errors.New("reservation: invalid request")
