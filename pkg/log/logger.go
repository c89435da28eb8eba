// Package log configures structured logging for yieldbench.
//
// Logging is built on the standard log/slog package with a JSON handler.
// All log output goes to stderr so that report tables written to stdout
// stay machine-readable. Errors produced by pkg/errors carry stack traces;
// the handler in this package extracts them into a dedicated attribute.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog logger. Records are emitted as
// JSON lines on stderr with "severity" and "message" keys.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel maps a level name to its slog.Level. Unknown names panic;
// callers validate user input before reaching this point.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// GetLoggerWithName returns the default logger scoped to a component name,
// for example "experiment.runner" or "tuning.grid".
func GetLoggerWithName(name string) *slog.Logger {
	return slog.Default().With(ComponentKey, name)
}
