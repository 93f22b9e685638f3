package logtree

import (
	"fmt"
	"strings"
)

// Level defines the ordered severity scale used by loggers and appenders.
// Levels are ordered by severity ascending; a record at level L is accepted
// by a threshold T iff L >= T. OffLevel is a threshold-only value that
// silences a sink completely and is never carried by a record.
type Level int8

// Severity constants, ascending. Higher numeric values indicate more
// critical events and stricter output filtering.
const (
	// TraceLevel provides extremely detailed diagnostic information for deep debugging.
	TraceLevel Level = iota + 1

	// DebugLevel contains debugging information useful during development and troubleshooting.
	DebugLevel

	// InfoLevel contains general informational messages about normal application operation.
	InfoLevel

	// WarnLevel indicates potentially harmful situations that don't prevent operation.
	// WarnLevel is also the resolution default for logger names with no
	// configured ancestor.
	WarnLevel

	// ErrorLevel indicates serious problems that require immediate attention.
	ErrorLevel

	// FatalLevel represents critical errors. Unlike conventional fatal
	// handling, emitting a FatalLevel record never terminates the host
	// application; it is simply the highest emittable severity.
	FatalLevel

	// OffLevel disables a sink entirely when used as a threshold.
	OffLevel
)

// String returns the human-readable string representation of the log level.
// Provides uppercase level names compatible with configuration parsing.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	case OffLevel:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// valid reports whether l is a value of the severity scale, OffLevel included.
func (l Level) valid() bool {
	return l >= TraceLevel && l <= OffLevel
}

// ParseLevel converts a string representation to a Level with case-insensitive
// matching. Unknown names are a configuration error, not a silent default:
// the initialize path must reject them rather than guess.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	case "OFF":
		return OffLevel, nil
	}
	return 0, fmt.Errorf("%w: unknown level %q", ErrInvalidConfig, levelStr)
}
