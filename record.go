package logtree

import (
	"runtime"
	"time"
)

// Record is a single log event. It is constructed once per accepted Log call
// and never mutated afterwards; appenders receive the same instance and must
// treat it as read-only.
type Record struct {
	Time       time.Time
	Level      Level
	LoggerName string
	ThreadID   string
	Message    string
}

func newRecord(name string, level Level, msg string) *Record {
	return &Record{
		Time:       time.Now(),
		Level:      level,
		LoggerName: name,
		ThreadID:   goroutineID(),
		Message:    msg,
	}
}

// goroutineID extracts the numeric goroutine id from the first stack header
// line, e.g. "goroutine 42 [running]:". The runtime does not expose the id
// directly; this is the standard extraction and costs one small stack dump
// per accepted record.
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := buf[:n]

	// Skip "goroutine ".
	const prefix = "goroutine "
	if len(s) <= len(prefix) {
		return "0"
	}
	s = s[len(prefix):]
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return string(s[:i])
		}
	}
	return "0"
}
