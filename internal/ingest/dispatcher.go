package ingest

import (
	"context"
	"errors"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/reservation"
	"github.com/nerrad567/cafe-core/internal/space"
)

// Service is the cafe facade surface the dispatcher drives.
type Service interface {
	Join(ctx context.Context, userID string, pos space.Point) (presence.UserPresence, error)
	Leave(ctx context.Context, userID string) error
	Move(ctx context.Context, userID string, pos space.Point) (presence.UserPresence, error)
	Heartbeat(ctx context.Context, userID string) (presence.UserPresence, error)
	ClaimSeat(ctx context.Context, userID, seatID string) (reservation.Claim, error)
	VacateSeat(ctx context.Context, userID string) (reservation.Claim, error)
}

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Dispatcher routes decoded events to the service.
type Dispatcher struct {
	svc    Service
	logger Logger
}

// NewDispatcher creates a dispatcher over svc.
func NewDispatcher(svc Service) *Dispatcher {
	return &Dispatcher{svc: svc, logger: noopLogger{}}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Handle decodes payload and applies it. Its signature matches
// redisbus.Handler.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte) error {
	ev, err := Decode(payload)
	if err != nil {
		d.logger.Warn("discarding malformed event", "error", err, "bytes", len(payload))
		return err
	}
	_, err = d.Apply(ctx, ev)
	return err
}

// Apply validates ev and routes it to the service.
func (d *Dispatcher) Apply(ctx context.Context, ev Event) (Result, error) {
	res := Result{Type: ev.Type, UserID: ev.UserID, SeatID: ev.SeatID}

	if err := ev.Validate(); err != nil {
		d.logger.Warn("discarding invalid event", "type", string(ev.Type), "user_id", ev.UserID, "error", err)
		res.Error = err.Error()
		return res, err
	}

	err := d.route(ctx, ev, &res)
	if err != nil {
		res.Error = err.Error()
		d.logOutcome(ev, err)
		return res, err
	}

	res.OK = true
	d.logger.Debug("event applied", "type", string(ev.Type), "user_id", ev.UserID)
	return res, nil
}

func (d *Dispatcher) route(ctx context.Context, ev Event, res *Result) error {
	switch ev.Type {
	case EventJoin:
		_, err := d.svc.Join(ctx, ev.UserID, *ev.Position)
		return err
	case EventLeave:
		return d.svc.Leave(ctx, ev.UserID)
	case EventMove:
		_, err := d.svc.Move(ctx, ev.UserID, *ev.Position)
		return err
	case EventHeartbeat:
		_, err := d.svc.Heartbeat(ctx, ev.UserID)
		return err
	case EventClaimSeat:
		claim, err := d.svc.ClaimSeat(ctx, ev.UserID, ev.SeatID)
		if err == nil {
			res.Claim = &claim
		}
		return err
	case EventVacateSeat:
		claim, err := d.svc.VacateSeat(ctx, ev.UserID)
		if err == nil {
			res.Claim = &claim
			res.SeatID = claim.PreviousSeatID
		}
		return err
	}
	return nil
}

// logOutcome logs expected domain rejections at debug and everything else at warn.
func (d *Dispatcher) logOutcome(ev Event, err error) {
	args := []any{"type", string(ev.Type), "user_id", ev.UserID, "seat_id", ev.SeatID, "error", err}
	switch {
	case errors.Is(err, reservation.ErrSeatOccupied),
		errors.Is(err, presence.ErrDuplicateUser):
		d.logger.Debug("event rejected", args...)
	case errors.Is(err, presence.ErrUnknownUser),
		errors.Is(err, space.ErrSeatNotFound):
		d.logger.Warn("event references unknown entity", args...)
	default:
		d.logger.Warn("event failed", args...)
	}
}
