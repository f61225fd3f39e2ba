package journal

import (
	"context"
	"time"

	"github.com/nerrad567/cafe-core/internal/reservation"
)

// writeTimeout bounds a single journal insert.
const writeTimeout = 2 * time.Second

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Recorder writes reservation outcomes to a Repository.
// It implements reservation.Recorder.
type Recorder struct {
	repo          Repository
	logger        Logger
	skipUnchanged bool
}

// NewRecorder creates a recorder. When skipUnchanged is set, no-op
// outcomes (re-requesting a held seat, vacating while unseated) are not
// journaled.
func NewRecorder(repo Repository, skipUnchanged bool) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}, skipUnchanged: skipUnchanged}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// RecordOutcome implements reservation.Recorder. Write failures are logged,
// never propagated; the reservation has already been decided.
func (r *Recorder) RecordOutcome(ctx context.Context, o reservation.Outcome) {
	if r.skipUnchanged && o.Result == reservation.ResultUnchanged {
		return
	}

	e := &Entry{
		Action:         string(o.Action),
		UserID:         o.UserID,
		SeatID:         o.SeatID,
		PreviousSeatID: o.PreviousSeatID,
		Outcome:        string(o.Result),
		CreatedAt:      o.At,
	}
	if o.Err != nil {
		e.Detail = o.Err.Error()
	}

	// The request context may already be done once the HTTP response is out.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.repo.Record(writeCtx, e); err != nil {
		r.logger.Warn("journal write failed", "user_id", o.UserID, "seat_id", o.SeatID, "error", err)
	}
}
