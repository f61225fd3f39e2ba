package cafe

import (
	"context"

	"github.com/nerrad567/cafe-core/internal/reservation"
)

// metricsRecorder forwards reservation outcomes to a MetricsWriter.
type metricsRecorder struct {
	w MetricsWriter
}

func (m metricsRecorder) RecordOutcome(_ context.Context, o reservation.Outcome) {
	seatID := o.SeatID
	if seatID == "" {
		seatID = o.PreviousSeatID
	}
	m.w.WriteReservationOutcome(string(o.Action), string(o.Result), seatID, o.At)
}
