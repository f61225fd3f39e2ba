// Package api provides the HTTP REST API and WebSocket server for Café Core.
//
// Read endpoints (zones, seats, occupancy) are public. Presence and seat
// mutations act on the caller named by the bearer JWT subject; see package
// auth for roles.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// The WebSocket hub is also a cafe.Publisher: register it with the service
// so clients subscribed to seat.occupancy_changed or presence.changed
// receive live updates.
//
// Browsers cannot set headers on a WebSocket upgrade, so clients first
// POST /api/v1/auth/ws-ticket with their JWT and connect with
// ?ticket=<value>. Tickets are single use. A subscribe message may carry
// a zones list to narrow occupancy events.
package api
