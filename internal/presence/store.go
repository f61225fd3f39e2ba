package presence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/cafe-core/internal/space"
)

// Default store settings.
const (
	DefaultHeartbeatTimeout = 30 * time.Second
	DefaultSweepInterval    = 5 * time.Second
	DefaultQueueSize        = 256

	maxUserIDLength = 128
)

// Options configures a Store. Zero values fall back to the defaults.
type Options struct {
	// HeartbeatTimeout is how long a presence may go without a heartbeat
	// or move before the sweep purges it.
	HeartbeatTimeout time.Duration

	// SweepInterval is the period of the automatic sweep. A negative value
	// disables the timer; Sweep can still be called explicitly.
	SweepInterval time.Duration

	// QueueSize bounds the command channel.
	QueueSize int

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.HeartbeatTimeout <= 0 {
		o.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if o.SweepInterval == 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// outcome is what a mutation reports back to the owner loop.
type outcome struct {
	presence UserPresence
	changes  []Change
	dirty    bool // state changed; a new snapshot must be published
}

type command struct {
	apply func(now time.Time) (outcome, error)
	reply chan result // nil for fire-and-forget commands
}

type result struct {
	presence UserPresence
	err      error
}

// Store owns all UserPresence records.
//
// All exported mutation methods are safe for concurrent use; they block
// until the owning goroutine (see Run) has applied the mutation.
type Store struct {
	seats    SeatLookup
	opts     Options
	cmds     chan command
	snap     atomic.Pointer[Snapshot]
	done     chan struct{}
	started  atomic.Bool
	onChange func(Change)
	logger   Logger

	// Owned by the Run goroutine.
	users     map[string]UserPresence
	occupants map[string]string
	version   uint64
}

// NewStore creates a store validating seat references against seats.
// The store accepts commands only after Run has been started.
func NewStore(seats SeatLookup, opts Options) *Store {
	opts = opts.withDefaults()
	s := &Store{
		seats:     seats,
		opts:      opts,
		cmds:      make(chan command, opts.QueueSize),
		done:      make(chan struct{}),
		logger:    noopLogger{},
		users:     make(map[string]UserPresence),
		occupants: make(map[string]string),
	}
	s.snap.Store(emptySnapshot(opts.Clock()))
	return s
}

// SetLogger sets the logger for the store. Call before Run.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetOnChange registers a callback invoked on the owner goroutine after
// each change has been published. It must not block and must not call
// back into the store's mutation methods. Call before Run.
func (s *Store) SetOnChange(fn func(Change)) {
	s.onChange = fn
}

// Snapshot returns the latest published snapshot. It never blocks.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// HeartbeatTimeout returns the effective heartbeat timeout.
func (s *Store) HeartbeatTimeout() time.Duration {
	return s.opts.HeartbeatTimeout
}

// Done is closed when the owner goroutine exits.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Run processes commands and the periodic sweep until ctx is cancelled.
// It must be called exactly once.
func (s *Store) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStoreRunning
	}
	defer close(s.done)

	var tick <-chan time.Time
	if s.opts.SweepInterval > 0 {
		ticker := time.NewTicker(s.opts.SweepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.logger.Info("presence store started",
		"heartbeat_timeout", s.opts.HeartbeatTimeout.String(),
		"sweep_interval", s.opts.SweepInterval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("presence store stopped", "users", len(s.users))
			return nil
		case cmd := <-s.cmds:
			s.execute(cmd)
		case <-tick:
			s.execute(command{apply: func(now time.Time) (outcome, error) {
				_, out := s.sweep(now)
				return out, nil
			}})
		}
	}
}

// ============================================================================
// Public mutations
// ============================================================================

// Join creates a presence for userID at pos with no seat.
// Returns ErrDuplicateUser if the user is already present.
func (s *Store) Join(ctx context.Context, userID string, pos space.Point) (UserPresence, error) {
	if err := validateUserID(userID); err != nil {
		return UserPresence{}, err
	}
	if !pos.IsFinite() {
		return UserPresence{}, ErrInvalidPosition
	}
	return s.submit(ctx, func(now time.Time) (outcome, error) {
		return s.join(userID, pos, now)
	})
}

// Leave removes userID and releases any seat it held. Absent users are a no-op.
func (s *Store) Leave(ctx context.Context, userID string) error {
	_, err := s.submit(ctx, func(time.Time) (outcome, error) {
		return s.leave(userID, ChangeLeave), nil
	})
	return err
}

// Move updates the user's position and refreshes its liveness.
// The held seat is unchanged.
func (s *Store) Move(ctx context.Context, userID string, pos space.Point) (UserPresence, error) {
	if !pos.IsFinite() {
		return UserPresence{}, ErrInvalidPosition
	}
	return s.submit(ctx, func(now time.Time) (outcome, error) {
		return s.move(userID, pos, now)
	})
}

// Heartbeat refreshes the user's liveness.
func (s *Store) Heartbeat(ctx context.Context, userID string) (UserPresence, error) {
	return s.submit(ctx, func(now time.Time) (outcome, error) {
		return s.heartbeat(userID, now)
	})
}

// SetSeat binds userID to seatID, releasing any previously held seat in
// the same mutation. An empty seatID vacates.
//
// This is the low-level primitive behind seat reservation; callers outside
// the reservation package should not use it directly.
//
// Returns:
//   - ErrUnknownUser if the user is absent
//   - space.ErrSeatNotFound if seatID is not in the catalog
//   - ErrSeatOccupied if another user holds seatID
func (s *Store) SetSeat(ctx context.Context, userID, seatID string) (UserPresence, error) {
	return s.submit(ctx, func(time.Time) (outcome, error) {
		return s.setSeat(userID, seatID)
	})
}

// Sweep purges every presence whose last heartbeat is older than the
// timeout and returns the expired user IDs in order.
func (s *Store) Sweep(ctx context.Context) ([]string, error) {
	var expired []string
	_, err := s.submit(ctx, func(now time.Time) (outcome, error) {
		var out outcome
		expired, out = s.sweep(now)
		return out, nil
	})
	return expired, err
}

// submit hands a mutation to the owner and waits for its result.
// Once the command is queued it is applied even if ctx is cancelled.
func (s *Store) submit(ctx context.Context, fn func(time.Time) (outcome, error)) (UserPresence, error) {
	cmd := command{apply: fn, reply: make(chan result, 1)}

	select {
	case <-s.done:
		return UserPresence{}, ErrStoreClosed
	default:
	}

	select {
	case s.cmds <- cmd:
	case <-s.done:
		return UserPresence{}, ErrStoreClosed
	case <-ctx.Done():
		return UserPresence{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.presence, r.err
	case <-s.done:
		select {
		case r := <-cmd.reply:
			return r.presence, r.err
		default:
			return UserPresence{}, ErrStoreClosed
		}
	case <-ctx.Done():
		return UserPresence{}, ctx.Err()
	}
}

// execute applies a command on the owner goroutine.
func (s *Store) execute(cmd command) {
	now := s.opts.Clock()
	out, err := cmd.apply(now)
	if err == nil && out.dirty {
		s.publish(now, out.changes)
	}
	if cmd.reply != nil {
		cmd.reply <- result{presence: out.presence, err: err}
	}
}

// publish swaps in a new snapshot, then notifies the change callback.
func (s *Store) publish(now time.Time, changes []Change) {
	s.version++

	users := make(map[string]UserPresence, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	occupants := make(map[string]string, len(s.occupants))
	for k, v := range s.occupants {
		occupants[k] = v
	}
	s.snap.Store(&Snapshot{
		users:     users,
		occupants: occupants,
		version:   s.version,
		takenAt:   now,
	})

	if s.onChange == nil {
		return
	}
	for _, c := range changes {
		c.Version = s.version
		c.At = now
		s.onChange(c)
	}
}

// ============================================================================
// Owner-side mutations (run only on the Run goroutine)
// ============================================================================

func (s *Store) join(userID string, pos space.Point, now time.Time) (outcome, error) {
	if _, ok := s.users[userID]; ok {
		return outcome{}, fmt.Errorf("%w: %s", ErrDuplicateUser, userID)
	}
	p := UserPresence{
		UserID:          userID,
		Position:        pos,
		ConnectedAt:     now,
		LastHeartbeatAt: now,
	}
	s.users[userID] = p
	return outcome{
		presence: p,
		changes:  []Change{{Kind: ChangeJoin, UserID: userID, Position: pos}},
		dirty:    true,
	}, nil
}

func (s *Store) leave(userID string, kind ChangeKind) outcome {
	p, ok := s.users[userID]
	if !ok {
		return outcome{}
	}
	delete(s.users, userID)
	if p.SeatID != "" {
		delete(s.occupants, p.SeatID)
	}
	return outcome{
		presence: p,
		changes:  []Change{{Kind: kind, UserID: userID, SeatID: p.SeatID, Position: p.Position}},
		dirty:    true,
	}
}

func (s *Store) move(userID string, pos space.Point, now time.Time) (outcome, error) {
	p, ok := s.users[userID]
	if !ok {
		return outcome{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	p.Position = pos
	p.LastHeartbeatAt = now
	s.users[userID] = p
	return outcome{
		presence: p,
		changes:  []Change{{Kind: ChangeMove, UserID: userID, SeatID: p.SeatID, Position: pos}},
		dirty:    true,
	}, nil
}

// heartbeat republishes the snapshot without emitting a Change.
func (s *Store) heartbeat(userID string, now time.Time) (outcome, error) {
	p, ok := s.users[userID]
	if !ok {
		return outcome{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	p.LastHeartbeatAt = now
	s.users[userID] = p
	return outcome{presence: p, dirty: true}, nil
}

func (s *Store) setSeat(userID, seatID string) (outcome, error) {
	p, ok := s.users[userID]
	if !ok {
		return outcome{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	if seatID == p.SeatID {
		return outcome{presence: p}, nil
	}
	if seatID != "" {
		if !s.seats.HasSeat(seatID) {
			return outcome{}, fmt.Errorf("%w: %s", space.ErrSeatNotFound, seatID)
		}
		if holder, held := s.occupants[seatID]; held && holder != userID {
			return outcome{}, fmt.Errorf("%w: %s held by %s", ErrSeatOccupied, seatID, holder)
		}
	}

	prev := p.SeatID
	if prev != "" {
		delete(s.occupants, prev)
	}
	if seatID != "" {
		s.occupants[seatID] = userID
	}
	p.SeatID = seatID
	s.users[userID] = p

	return outcome{
		presence: p,
		changes: []Change{{
			Kind:           ChangeSeat,
			UserID:         userID,
			SeatID:         seatID,
			PreviousSeatID: prev,
			Position:       p.Position,
		}},
		dirty: true,
	}, nil
}

func (s *Store) sweep(now time.Time) ([]string, outcome) {
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var expired []string
	var out outcome
	for _, id := range ids {
		p := s.users[id]
		if now.Sub(p.LastHeartbeatAt) <= s.opts.HeartbeatTimeout {
			continue
		}
		res := s.leave(id, ChangeExpire)
		out.changes = append(out.changes, res.changes...)
		out.dirty = true
		expired = append(expired, id)
		s.logger.Info("presence expired",
			"user_id", id,
			"seat_id", p.SeatID,
			"last_heartbeat_at", p.LastHeartbeatAt,
		)
	}
	return expired, out
}

func validateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUserID)
	}
	if len(id) > maxUserIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidUserID, maxUserIDLength)
	}
	return nil
}
