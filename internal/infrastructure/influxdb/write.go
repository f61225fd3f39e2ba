package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementZoneOccupancy      = "zone_occupancy"
	MeasurementReservationOutcome = "reservation_outcome"
)

// WriteZoneOccupancy records how many seats of a zone are taken.
//
// utilisation is occupied/capacity and is omitted when capacity is zero.
func (c *Client) WriteZoneOccupancy(zoneID string, occupied, capacity int, at time.Time) {
	fields := map[string]interface{}{
		"occupied": occupied,
		"capacity": capacity,
	}
	if capacity > 0 {
		fields["utilisation"] = float64(occupied) / float64(capacity)
	}

	c.writePoint(MeasurementZoneOccupancy, map[string]string{"zone_id": zoneID}, fields, at)
}

// WriteReservationOutcome records one claim or vacate attempt.
//
// The seat is a field, not a tag: series are keyed by action and result only.
func (c *Client) WriteReservationOutcome(action, result, seatID string, at time.Time) {
	c.writePoint(
		MeasurementReservationOutcome,
		map[string]string{"action": action, "result": result},
		map[string]interface{}{"seat_id": seatID, "count": 1},
		at,
	)
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
