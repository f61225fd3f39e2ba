// Package config loads and validates Café Core configuration.
//
// Values are layered: built-in defaults, then the YAML file, then any
// CAFECORE_* environment variable named in a field's env tag (parsed with
// caarlos0/env). Validate collects every problem into one error instead of
// stopping at the first.
//
// Configuration is load-time only. The seat/zone catalog, audio radius,
// nearby cap, heartbeat timeout and scoring weights cannot be changed while
// the process runs; restart to apply new values.
//
// Secrets (CAFECORE_JWT_SECRET, CAFECORE_MQTT_PASSWORD,
// CAFECORE_INFLUXDB_TOKEN, CAFECORE_REDIS_PASSWORD) belong in the
// environment rather than the file.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
package config
