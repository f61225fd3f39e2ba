// Package auth identifies API callers for Café Core.
//
// Callers present an HS256 JWT whose subject is the café user ID. Tokens
// are minted by the chat/presence front end that shares the signing
// secret, or by `cafecore -issue-token` during development.
//
// Two roles exist:
//   - guest: may post its own presence and claim or vacate its own seat
//   - staff: additionally may vacate any seat and read the reservation journal
//
// Role permissions are a static map; there is no database lookup.
package auth
