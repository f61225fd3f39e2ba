// Package cafe is the query facade over the seating core.
//
// A Service wires the spatial registry, the presence store, the
// reservation machine, the recommendation scorer and the proximity
// configuration. Transports (REST, MQTT, Redis) call the Service; they
// never reach the store directly.
//
// # Lifecycle
//
//	svc := cafe.New(registry, opts)
//	svc.AddPublisher(cafe.NewMQTTPublisher(mqttClient))
//	if err := svc.Start(ctx); err != nil {
//	    return err
//	}
//	defer svc.Close()
//
// Start launches the presence store owner goroutine and the change
// fan-out. Every store change is turned into a presence notification and,
// for seat changes, a zone occupancy update pushed to all publishers and
// the metrics writer.
package cafe
