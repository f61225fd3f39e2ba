package cafe

import (
	"context"
	"time"

	"github.com/nerrad567/cafe-core/internal/presence"
)

// Occupancy is the live fill level of one zone.
type Occupancy struct {
	ZoneID   string    `json:"zone_id"`
	Occupied int       `json:"occupied"`
	Capacity int       `json:"capacity"`
	At       time.Time `json:"at"`
}

// Publisher pushes change notifications to an outbound channel.
// Implementations must be safe to call from the fan-out goroutine.
type Publisher interface {
	PublishOccupancy(ctx context.Context, occ Occupancy) error
	PublishChange(ctx context.Context, c presence.Change) error
}

// MetricsWriter records time-series points. *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteZoneOccupancy(zoneID string, occupied, capacity int, at time.Time)
	WriteReservationOutcome(action, result, seatID string, at time.Time)
}

// Logger defines the logging interface used by the Service.
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
