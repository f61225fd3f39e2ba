package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/space"
)

// Machine serializes seat claims and vacates.
type Machine struct {
	store   SeatStore
	catalog SeatCatalog
	logger  Logger
	clock   func() time.Time

	mu sync.Mutex // the claim critical section

	pendingMu sync.RWMutex
	pending   map[string]string // seat ID -> claiming user

	recorders []Recorder
}

// NewMachine creates a reservation machine over store and catalog.
func NewMachine(store SeatStore, catalog SeatCatalog) *Machine {
	return &Machine{
		store:   store,
		catalog: catalog,
		logger:  noopLogger{},
		clock:   time.Now,
		pending: make(map[string]string),
	}
}

// SetLogger sets the logger for the machine.
func (m *Machine) SetLogger(logger Logger) {
	m.logger = logger
}

// AddRecorder registers a recorder. Call before serving requests.
func (m *Machine) AddRecorder(r Recorder) {
	m.recorders = append(m.recorders, r)
}

// RequestSeat binds seatID to userID, releasing any seat the user held.
// Requesting the seat the user already holds succeeds without change.
//
// Returns:
//   - space.ErrSeatNotFound if the seat is not in the catalog
//   - ErrUnknownUser if the user has no presence
//   - ErrSeatOccupied if a different user holds the seat
func (m *Machine) RequestSeat(ctx context.Context, userID, seatID string) (Claim, error) {
	if userID == "" || seatID == "" {
		return Claim{}, fmt.Errorf("%w: user and seat are required", ErrInvalidRequest)
	}

	seat, err := m.catalog.GetSeat(seatID)
	if err != nil {
		m.record(ctx, Outcome{Action: ActionClaim, UserID: userID, SeatID: seatID, Result: ResultRejectedSeat, Err: err})
		return Claim{}, err
	}

	m.mu.Lock()
	m.setPending(seatID, userID)
	claim, err := m.claimLocked(ctx, userID, seat)
	m.clearPending(seatID)
	m.mu.Unlock()

	o := Outcome{
		Action:         ActionClaim,
		UserID:         userID,
		SeatID:         seatID,
		PreviousSeatID: claim.PreviousSeatID,
		Result:         classify(claim, err),
		Err:            err,
	}
	m.record(ctx, o)

	switch {
	case err == nil:
		m.logger.Debug("seat claimed", "user_id", userID, "seat_id", seatID, "previous_seat_id", claim.PreviousSeatID, "changed", claim.Changed)
	case errors.Is(err, ErrSeatOccupied):
		// Expected under contention
		m.logger.Debug("seat claim lost", "user_id", userID, "seat_id", seatID)
	default:
		m.logger.Warn("seat claim rejected", "user_id", userID, "seat_id", seatID, "error", err)
	}

	return claim, err
}

// claimLocked runs the check-then-act sequence. Caller holds m.mu.
func (m *Machine) claimLocked(ctx context.Context, userID string, seat space.Seat) (Claim, error) {
	snap := m.store.Snapshot()

	p, ok := snap.Get(userID)
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	claim := Claim{UserID: userID, SeatID: seat.ID, ZoneID: seat.ZoneID, At: m.clock()}

	if holder, held := snap.OccupantOf(seat.ID); held {
		if holder == userID {
			return claim, nil
		}
		return Claim{}, fmt.Errorf("%w: %s", ErrSeatOccupied, seat.ID)
	}

	if _, err := m.store.SetSeat(ctx, userID, seat.ID); err != nil {
		return Claim{}, fmt.Errorf("binding seat %s: %w", seat.ID, err)
	}

	claim.PreviousSeatID = p.SeatID
	claim.Changed = true
	return claim, nil
}

// VacateSeat releases the user's seat. It is idempotent: an unseated or
// absent user is a successful no-op.
func (m *Machine) VacateSeat(ctx context.Context, userID string) (Claim, error) {
	if userID == "" {
		return Claim{}, fmt.Errorf("%w: user is required", ErrInvalidRequest)
	}

	m.mu.Lock()
	claim, err := m.vacateLocked(ctx, userID)
	m.mu.Unlock()

	result := ResultUnchanged
	switch {
	case err != nil:
		result = ResultFailed
	case claim.Changed:
		result = ResultVacated
	}
	m.record(ctx, Outcome{
		Action:         ActionVacate,
		UserID:         userID,
		PreviousSeatID: claim.PreviousSeatID,
		Result:         result,
		Err:            err,
	})

	if err != nil {
		m.logger.Warn("seat vacate failed", "user_id", userID, "error", err)
	}
	return claim, err
}

func (m *Machine) vacateLocked(ctx context.Context, userID string) (Claim, error) {
	claim := Claim{UserID: userID, At: m.clock()}

	p, ok := m.store.Snapshot().Get(userID)
	if !ok || !p.Seated() {
		return claim, nil
	}

	if _, err := m.store.SetSeat(ctx, userID, ""); err != nil {
		if errors.Is(err, presence.ErrUnknownUser) {
			// Left or expired between snapshot and mutation
			return claim, nil
		}
		return Claim{}, fmt.Errorf("releasing seat %s: %w", p.SeatID, err)
	}

	claim.PreviousSeatID = p.SeatID
	claim.Changed = true
	if seat, err := m.catalog.GetSeat(p.SeatID); err == nil {
		claim.ZoneID = seat.ZoneID
	}
	return claim, nil
}

// State returns the derived state of seatID.
func (m *Machine) State(seatID string) (State, error) {
	if _, err := m.catalog.GetSeat(seatID); err != nil {
		return "", err
	}

	m.pendingMu.RLock()
	_, pending := m.pending[seatID]
	m.pendingMu.RUnlock()
	if pending {
		return StateClaimPending, nil
	}

	if _, held := m.store.Snapshot().OccupantOf(seatID); held {
		return StateOccupied, nil
	}
	return StateAvailable, nil
}

func (m *Machine) setPending(seatID, userID string) {
	m.pendingMu.Lock()
	m.pending[seatID] = userID
	m.pendingMu.Unlock()
}

func (m *Machine) clearPending(seatID string) {
	m.pendingMu.Lock()
	delete(m.pending, seatID)
	m.pendingMu.Unlock()
}

func (m *Machine) record(ctx context.Context, o Outcome) {
	if o.At.IsZero() {
		o.At = m.clock()
	}
	for _, r := range m.recorders {
		r.RecordOutcome(ctx, o)
	}
}

func classify(c Claim, err error) Result {
	switch {
	case err == nil && c.Changed:
		return ResultClaimed
	case err == nil:
		return ResultUnchanged
	case errors.Is(err, ErrSeatOccupied):
		return ResultRejectedOccupied
	case errors.Is(err, ErrUnknownUser):
		return ResultRejectedUser
	case errors.Is(err, space.ErrSeatNotFound):
		return ResultRejectedSeat
	default:
		return ResultFailed
	}
}
