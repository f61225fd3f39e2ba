// Package reservation arbitrates seat claims against the presence store.
//
// Every claim runs inside one global critical section: validate the seat,
// check the latest presence snapshot, then bind the seat. Two concurrent
// requests for the same seat can therefore never both pass the occupancy
// check. A seat change is a single store mutation that releases the old
// seat and binds the new one, so a failed request leaves both seats
// exactly as they were.
//
// Seat states are derived, not stored:
//
//	Available -> ClaimPending -> Occupied -> Available
//
// ClaimPending is visible only while a claim for that seat is inside the
// critical section.
package reservation
