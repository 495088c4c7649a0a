// Package logging configures the zerolog logger shared by the dashboard packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))
	zerolog.DurationFieldUnit = time.Millisecond

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel converts a level name to a zerolog level. Unknown names yield info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache hit/miss and invalidation per resource
//   - Every fetched page (skip, limit, count)
//   - Single failed enrichment units
//
// Info: Normal operation events
//   - Collection fetched and cached (count, ttl, duration)
//   - Enrichment batch complete
//   - Operator login/logout
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Paginated fetch aborted (prefix returned to caller)
//   - Enrichment batches with failed units
//   - Cache store errors (data still served from the fetch)
//   - Backend error responses
//
// Error: Error conditions requiring attention
//   - Startup failures (config, Redis)
//   - Shell handler failures
//
// Context Fields:
//   - component: emitting package (api-client, pagination, cache, enrich, session, dashboard)
//   - resource: backend collection (users, records, categories, user_activity)
//   - session: operator session ID
//   - skip, limit: page offsets
//   - status_code: HTTP status code
//   - error_class: Error classification (client, server, network, decode)
//   - duration: operation duration
//   - ttl: cache entry TTL
//   - unit_id: entity ID of an enrichment unit
