package logtree

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// Sentinel errors surfaced by the engine. Configuration problems are returned
// synchronously from Initialize; I/O problems are contained per appender and
// reported through the diagnostic side channel instead of propagating out of
// Log.
var (
	// ErrInvalidConfig indicates a malformed appender or logger spec.
	ErrInvalidConfig = errors.New("invalid logging config")
	// ErrUnknownAppenderType indicates an appender type outside the supported set.
	ErrUnknownAppenderType = errors.New("unknown appender type")
	// ErrShutdown is returned for operations on a context that has been shut down.
	ErrShutdown = errors.New("logging context is shut down")
	// ErrLockHeld indicates the rotation lock file is held by another process.
	ErrLockHeld = errors.New("rotation lock held")
	// ErrAppenderWrite wraps appender write/rotate failures reported to diagnostics.
	ErrAppenderWrite = errors.New("appender write failed")
)

// diagnostics is the best-effort side channel for failures inside the engine
// itself. A logging engine cannot log through itself, so contained appender
// errors are printed to stderr, throttled so a persistently failing appender
// (disk full, permissions) cannot flood the host's diagnostics.
type diagnostics struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	sink    *os.File
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		// One burst of 8, then at most one notice per second.
		limiter: rate.NewLimiter(rate.Limit(1), 8),
		sink:    os.Stderr,
	}
}

// report emits a delimited diagnostic notice for err unless the throttle is
// exhausted. Dropped notices are silently discarded; the caller still gets
// the error value itself where the API returns one.
func (d *diagnostics) report(component string, err error) {
	if err == nil || !d.limiter.Allow() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.sink, "[logtree] %s: %v\n", component, err)
}
