package redisbus

import "errors"

var (
	// ErrDisabled indicates the redis section is disabled in config.
	ErrDisabled = errors.New("redisbus: disabled in configuration")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("redisbus: connection failed")

	// ErrNotConnected indicates the bus was closed or never connected.
	ErrNotConnected = errors.New("redisbus: not connected")

	// ErrNilHandler indicates Forward was called without a handler.
	ErrNilHandler = errors.New("redisbus: handler required")
)
