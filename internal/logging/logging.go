// ABOUTME: zerolog wrapper providing a process-wide root logger with named children.
// ABOUTME: Writes to stderr in console or JSON format so stdout stays scriptable.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// FromEnv builds Options from SEAM_LOG_LEVEL and SEAM_LOG_FORMAT.
func FromEnv() Options {
	return Options{
		Level:  strings.ToLower(os.Getenv("SEAM_LOG_LEVEL")),
		Format: strings.ToLower(os.Getenv("SEAM_LOG_FORMAT")),
	}
}

// Init configures the root logger. Only the first call has any effect.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		}

		log := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
		root.Store(&log)
		inited.Store(true)
	})
}

// Get returns the root logger, initializing it from the environment if needed.
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Named returns a child logger with a component field.
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

// Nop returns a logger that discards everything. Useful as a default in tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &l
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean warn.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// TokenPrefix returns a short, loggable prefix of a token value.
func TokenPrefix(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "…"
}
