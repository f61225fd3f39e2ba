// Package panel serves the counter display: a small occupancy board that
// staff leave open on a screen behind the till.
//
// The board is plain HTML and JavaScript embedded with go:embed. It reads
// /api/v1/zones/occupancy once and then polls it; no token is needed since
// occupancy is public.
//
// Unknown paths fall back to index.html so deep links into the board keep
// working after a reload.
package panel
