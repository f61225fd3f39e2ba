// Package redisbus carries presence events over Redis pub/sub.
//
// It is an alternative to the MQTT transport for deployments that already run
// Redis. Publishers write raw JSON events to a single channel; Forward
// subscribes to that channel and hands each payload to a handler, typically
// the ingest dispatcher.
//
//	bus, err := redisbus.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	defer bus.Close()
//
//	err = bus.Forward(ctx, dispatcher.Handle)
package redisbus
