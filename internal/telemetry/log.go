// Package telemetry is the transition core's structured logging surface,
// grounded on mmp-vice/log: a *Logger wrapping log/slog, backed by a
// rotating file writer, with debug/info/warn/error helpers that tolerate a
// nil receiver so a caller that hasn't wired up logging still gets
// warnings and errors surfaced (matching mmp-vice's "wrap the whole
// interface, allow a nil *Logger" convention).
//
// The transition core itself only calls into this package on state edges
// (mode transitions, quadchute advisories; the VT_B_TRANS_RAMP clamp is
// not logged) - never
// once per tick in steady state - to respect the "no dynamic allocation on
// the hot path" invariant of spec §5.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger the way mmp-vice/log.Logger does.
type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time
}

// Config controls where and how verbosely the logger writes.
type Config struct {
	// Dir is the directory rotated log files are written to. Empty
	// disables file rotation and logs to stderr only.
	Dir string
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// MaxSizeMB bounds a single log file before rotation; defaults to 32.
	MaxSizeMB int
}

// New builds a Logger per Config, mirroring mmp-vice/log.New's
// lumberjack-backed JSON handler setup.
func New(cfg Config) *Logger {
	lvl := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "":
		// keep default
	default:
		fmt.Fprintf(os.Stderr, "telemetry: invalid log level %q, defaulting to info\n", cfg.Level)
	}

	var handler slog.Handler
	logFile := ""
	if cfg.Dir != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 32
		}
		w := &lumberjack.Logger{
			Filename: cfg.Dir + "/vtolfc.slog",
			MaxSize:  maxSize,
			MaxAge:   14,
			Compress: true,
		}
		logFile = w.Filename
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}

	return &Logger{
		Logger:  slog.New(handler),
		LogFile: logFile,
		Start:   time.Now(),
	}
}

// Debug logs at debug level, tolerating a nil *Logger.
func (l *Logger) Debug(msg string, args ...any) {
	if l != nil {
		l.Logger.Debug(msg, args...)
	}
}

// Info logs at info level, tolerating a nil *Logger.
func (l *Logger) Info(msg string, args ...any) {
	if l != nil {
		l.Logger.Info(msg, args...)
	}
}

// Warn logs at warn level. Unlike Debug/Info, this always reaches stderr
// even for a nil *Logger, so a caller that skipped log setup still sees
// warnings about things like quadchute advisories.
func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
		return
	}
	l.Logger.Warn(msg, args...)
}

// Error logs at error level, always reaching stderr for a nil *Logger.
func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
		return
	}
	l.Logger.Error(msg, args...)
}
