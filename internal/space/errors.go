package space

import "errors"

var (
	// ErrInvalidCatalog is returned when the seat/zone catalog fails validation.
	// It is fatal at startup.
	ErrInvalidCatalog = errors.New("space: invalid catalog")

	// ErrZoneNotFound is returned when a zone ID does not exist.
	ErrZoneNotFound = errors.New("space: zone not found")

	// ErrSeatNotFound is returned when a seat ID does not exist.
	ErrSeatNotFound = errors.New("space: seat not found")
)
