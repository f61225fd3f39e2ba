package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
)

// serviceName is attached to every log entry as the "service" attribute.
const serviceName = "cafecore"

// redacted replaces the value of any attribute whose key is in sensitiveKeys.
const redacted = "[redacted]"

// sensitiveKeys are attribute keys that carry bearer tokens, WebSocket
// tickets or broker credentials. Matching is case-insensitive.
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"password":      {},
	"secret":        {},
	"ticket":        {},
	"token":         {},
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Logger wraps slog.Logger with Café Core defaults. Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to the destination named by cfg.Output.
//
// Parameters:
//   - cfg: Logging configuration (level, format, output)
//   - version: Application version for the default "version" attribute
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg, version, out)
}

// NewWithWriter is New with an explicit destination; cfg.Output is ignored.
func NewWithWriter(cfg config.LoggingConfig, version string, out io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps a config level name to slog.Level; unknown names are info.
func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

// With returns a new Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child logger tagged component=name.
//
//	storeLog := logger.Component("presence")
//	storeLog.Info("user joined", "user_id", id)
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default returns an info-level JSON logger on stdout for use before
// configuration is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
