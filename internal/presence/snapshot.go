package presence

import (
	"sort"
	"time"
)

// Snapshot is an immutable point-in-time view of every presence record.
// It is safe for concurrent use and never changes after publication.
type Snapshot struct {
	users     map[string]UserPresence
	occupants map[string]string // seat ID -> user ID
	version   uint64
	takenAt   time.Time
}

func emptySnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		users:     map[string]UserPresence{},
		occupants: map[string]string{},
		takenAt:   now,
	}
}

// Get returns the presence for userID.
func (s *Snapshot) Get(userID string) (UserPresence, bool) {
	p, ok := s.users[userID]
	return p, ok
}

// Users returns every presence ordered by user ID.
func (s *Snapshot) Users() []UserPresence {
	out := make([]UserPresence, 0, len(s.users))
	for _, p := range s.users {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// OccupantOf returns the user holding seatID, if any.
func (s *Snapshot) OccupantOf(seatID string) (string, bool) {
	u, ok := s.occupants[seatID]
	return u, ok
}

// OccupiedSeats returns the number of seats currently held.
func (s *Snapshot) OccupiedSeats() int {
	return len(s.occupants)
}

// Len returns the number of connected users.
func (s *Snapshot) Len() int {
	return len(s.users)
}

// Version increases by one for every published mutation batch.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// TakenAt is the store clock reading when the snapshot was published.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// NewSnapshot builds a standalone snapshot from presence records, for
// consumers that need a fixed view (replays, tests). Later duplicates of
// a user or seat win. The result is not validated against the catalog.
func NewSnapshot(users []UserPresence, at time.Time) *Snapshot {
	s := emptySnapshot(at)
	for _, p := range users {
		if old, ok := s.users[p.UserID]; ok && old.SeatID != "" {
			delete(s.occupants, old.SeatID)
		}
		s.users[p.UserID] = p
		if p.SeatID != "" {
			s.occupants[p.SeatID] = p.UserID
		}
	}
	return s
}
