// Package recommend ranks free seats against a user's preference profile.
//
// Each candidate seat is scored on four weighted dimensions (crowd
// match, noise match, activity match, comfort) plus a flat work-style
// adjustment, then clamped to 0..100 and rounded. Results are ordered by
// score descending with ties broken by seat ID, and every recommendation
// carries the reasons that made it stand out.
//
// Scoring is a pure function of (profile, presence snapshot, catalog),
// so a Scorer may be shared across goroutines.
package recommend
