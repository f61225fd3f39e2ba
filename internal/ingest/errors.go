package ingest

import "errors"

var (
	// ErrInvalidEvent indicates a payload that cannot be decoded or is
	// missing required fields.
	ErrInvalidEvent = errors.New("ingest: invalid event")

	// ErrUserMismatch indicates the event's user_id disagrees with the
	// user encoded in the topic it arrived on.
	ErrUserMismatch = errors.New("ingest: user does not match topic")
)
