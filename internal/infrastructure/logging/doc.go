// Package logging provides structured logging for Café Core on top of
// log/slog.
//
// Every entry carries service=cafecore and the build version. Output is
// JSON by default or text for local development:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Attributes named token, ticket, secret, password or authorization are
// replaced with "[redacted]" before they reach the handler, so a bearer
// token or WebSocket ticket passed as a log field never lands in the log.
//
//	log := logging.New(cfg.Logging, version).Component("api")
//	log.Info("ticket issued", "user_id", id, "ticket", t) // ticket=[redacted]
package logging
