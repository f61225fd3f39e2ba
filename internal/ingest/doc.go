// Package ingest decodes raw presence and seat events from external
// transports and applies them to the cafe service.
//
// Wire format (JSON):
//
//	{"type":"move","user_id":"alice","position":{"x":1,"y":2},"timestamp":"2026-03-01T09:00:00Z"}
//
// Types are join, leave, move, heartbeat, claim_seat and vacate_seat.
// The timestamp is informational; liveness always uses the server clock.
//
// Events arrive over MQTT (cafecore/presence/{user} and
// cafecore/seat/command/{user}) or a Redis pub/sub channel. Both feed
// Dispatcher.Handle.
package ingest
