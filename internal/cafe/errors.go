package cafe

import "errors"

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("cafe: service already started")

	// ErrNotStarted is returned by mutations issued before Start.
	ErrNotStarted = errors.New("cafe: service not started")
)
