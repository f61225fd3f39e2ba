// Package influxdb writes café occupancy and reservation metrics to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 non-blocking write API. Points
// are batched according to the influxdb section of the configuration and
// flushed on Close.
//
// # Measurements
//
//   - zone_occupancy: tags zone_id; fields occupied, capacity, utilisation
//   - reservation_outcome: tags action, result; fields seat_id, count
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteZoneOccupancy("quiet", 3, 8, time.Now())
//
// A disabled configuration returns ErrDisabled so callers can skip metrics
// without treating it as a failure.
package influxdb
