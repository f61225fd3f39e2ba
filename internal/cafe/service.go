package cafe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/proximity"
	"github.com/nerrad567/cafe-core/internal/recommend"
	"github.com/nerrad567/cafe-core/internal/reservation"
	"github.com/nerrad567/cafe-core/internal/space"
)

const defaultChangeBuffer = 1024

// Options configures a Service.
type Options struct {
	Presence  presence.Options
	Proximity proximity.Config
	Scoring   recommend.Config

	// ChangeBuffer bounds the queue between the store and the fan-out.
	// When full, changes are dropped and logged.
	ChangeBuffer int
}

// Service is the single entry point for inbound events and outbound queries.
type Service struct {
	registry  *space.Registry
	store     *presence.Store
	machine   *reservation.Machine
	scorer    *recommend.Scorer
	proximity proximity.Config
	logger    Logger

	pubMu      sync.RWMutex
	publishers []Publisher
	metrics    MetricsWriter

	changes chan presence.Change
	dropped atomic.Uint64

	started atomic.Bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New builds a Service over registry. Zero-valued Proximity and Scoring
// fall back to their package defaults. Call Start before issuing mutations.
func New(registry *space.Registry, opts Options) *Service {
	if opts.ChangeBuffer <= 0 {
		opts.ChangeBuffer = defaultChangeBuffer
	}
	if opts.Proximity == (proximity.Config{}) {
		opts.Proximity = proximity.DefaultConfig()
	}
	if opts.Scoring == (recommend.Config{}) {
		opts.Scoring = recommend.DefaultConfig()
	}

	store := presence.NewStore(registry, opts.Presence)
	s := &Service{
		registry:  registry,
		store:     store,
		machine:   reservation.NewMachine(store, registry),
		scorer:    recommend.NewScorer(opts.Scoring),
		proximity: opts.Proximity,
		logger:    noopLogger{},
		changes:   make(chan presence.Change, opts.ChangeBuffer),
	}
	store.SetOnChange(s.enqueue)
	return s
}

// SetLogger sets the logger for the service and the components it owns.
// Call before Start.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	s.logger = logger
	s.store.SetLogger(logger)
	s.machine.SetLogger(logger)
}

// AddPublisher registers an outbound channel for change notifications.
func (s *Service) AddPublisher(p Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publishers = append(s.publishers, p)
}

// SetMetrics installs a metrics writer for occupancy and reservation
// outcomes. Call before Start.
func (s *Service) SetMetrics(m MetricsWriter) {
	s.pubMu.Lock()
	s.metrics = m
	s.pubMu.Unlock()
	if m != nil {
		s.machine.AddRecorder(metricsRecorder{w: m})
	}
}

// AddRecorder attaches a reservation outcome recorder such as the journal.
// Call before Start.
func (s *Service) AddRecorder(r reservation.Recorder) {
	s.machine.AddRecorder(r)
}

// Registry returns the spatial registry.
func (s *Service) Registry() *space.Registry { return s.registry }

// Snapshot returns the current presence snapshot.
func (s *Service) Snapshot() *presence.Snapshot { return s.store.Snapshot() }

// DroppedChanges reports how many changes the fan-out queue has discarded.
func (s *Service) DroppedChanges() uint64 { return s.dropped.Load() }

// Start launches the store owner goroutine and the change fan-out.
// Both stop when ctx is cancelled or Close is called.
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return s.store.Run(gctx)
	})
	g.Go(func() error {
		s.fanOut(gctx)
		return nil
	})

	s.cancel = cancel
	s.group = g

	s.logger.Info("cafe service started",
		"zones", len(s.registry.ListZones()),
		"seats", s.registry.SeatCount(),
	)
	return nil
}

// Close stops the service and waits for its goroutines. Safe to call
// more than once and before Start.
func (s *Service) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("stopping cafe service: %w", err)
	}
	s.logger.Info("cafe service stopped", "dropped_changes", s.dropped.Load())
	return nil
}

// ============================================================================
// Inbound events
// ============================================================================

// Join admits userID at pos with no seat.
func (s *Service) Join(ctx context.Context, userID string, pos space.Point) (presence.UserPresence, error) {
	if err := s.ready(); err != nil {
		return presence.UserPresence{}, err
	}
	return s.store.Join(ctx, userID, pos)
}

// Leave removes userID and frees its seat. Absent users are a no-op.
func (s *Service) Leave(ctx context.Context, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.Leave(ctx, userID)
}

// Move updates the user's position.
func (s *Service) Move(ctx context.Context, userID string, pos space.Point) (presence.UserPresence, error) {
	if err := s.ready(); err != nil {
		return presence.UserPresence{}, err
	}
	return s.store.Move(ctx, userID, pos)
}

// Heartbeat refreshes the user's liveness.
func (s *Service) Heartbeat(ctx context.Context, userID string) (presence.UserPresence, error) {
	if err := s.ready(); err != nil {
		return presence.UserPresence{}, err
	}
	return s.store.Heartbeat(ctx, userID)
}

// ClaimSeat asks the reservation machine to bind seatID to userID.
func (s *Service) ClaimSeat(ctx context.Context, userID, seatID string) (reservation.Claim, error) {
	if err := s.ready(); err != nil {
		return reservation.Claim{}, err
	}
	return s.machine.RequestSeat(ctx, userID, seatID)
}

// VacateSeat releases the user's seat. Idempotent.
func (s *Service) VacateSeat(ctx context.Context, userID string) (reservation.Claim, error) {
	if err := s.ready(); err != nil {
		return reservation.Claim{}, err
	}
	return s.machine.VacateSeat(ctx, userID)
}

// SeatState returns the derived reservation state of seatID.
func (s *Service) SeatState(seatID string) (reservation.State, error) {
	return s.machine.State(seatID)
}

func (s *Service) ready() error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	return nil
}
