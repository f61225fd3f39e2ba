// Package mqtt provides MQTT connectivity for Café Core.
//
// The broker is the bus between the core and its collaborators: presence
// transports push join/move/heartbeat/leave events and seat commands in,
// and the core publishes retained zone occupancy and seat state out.
//
//	presence transport → broker → Café Core → broker → UI / audio mixer
//
// This package manages:
//   - Broker connection with auto-reconnect and subscription restore
//   - Last Will and Testament on the system status topic
//   - Publishing with QoS and retained flags, JSON helpers
//   - Topic builders for the cafecore/ hierarchy
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllPresenceEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatcher.Handle(ctx, payload)
//	    })
//
//	client.PublishJSON(mqtt.Topics{}.ZoneOccupancy("window-bar"), occupancy, true)
package mqtt
