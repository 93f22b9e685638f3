// Package logtree is a hierarchical logging configuration and dispatch
// engine: dot-separated logger names resolve their effective level through a
// longest-ancestor match, and accepted records fan out to a configured set
// of appenders (null, console, file, daily-rolling file), each with its own
// threshold and pattern layout.
//
// The engine is deliberately string-typed at the core: a Record carries an
// already-materialized message, and richer caller values go through the
// Value conversion step first. Logging never panics and never blocks the
// host beyond the synchronous file write itself.
package logtree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/linchenxuan/logtree/metrics"
)

// Context owns one process-wide logging state: the logger level registry and
// the active appender set. It is created empty (everything defaulted, no
// output), populated by Initialize and torn down by Shutdown. Tests can
// construct isolated contexts; most applications use the package default.
type Context struct {
	registry *Registry
	diag     *diagnostics

	mu        sync.RWMutex // guards appenders and lifecycle state
	appenders []Appender
	down      bool
}

// NewContext returns an empty context: every name resolves to the default
// level and there are no appenders, so dispatch is a safe no-op.
func NewContext() *Context {
	return &Context{
		registry: NewRegistry(),
		diag:     newDiagnostics(),
	}
}

// Initialize installs cfg as the complete logging state. It is
// all-or-nothing: a malformed config returns a configuration error and
// leaves the previously active state untouched. On success the prior
// appender set is atomically replaced and then flushed and closed, so
// repeated initialization never leaks file handles. A context that was shut
// down is revived.
func (c *Context) Initialize(cfg *LogCfg) error {
	if cfg == nil {
		cfg = &LogCfg{}
	}

	rc, err := cfg.resolve()
	if err != nil {
		return err
	}
	next, err := rc.build()
	if err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.appenders
	c.appenders = next
	c.down = false
	c.registry.Replace(rc.levels)
	c.mu.Unlock()

	return closeAll(prev)
}

// Log dispatches a single message. The effective level for name is resolved
// first; below-threshold calls return immediately without constructing a
// record or touching any appender. Appender failures are contained: every
// appender still receives the record, the failure is counted, reported to
// the diagnostic side channel, and returned for callers that want it.
// Callers wanting fire-and-forget semantics ignore the result.
func (c *Context) Log(name string, level Level, msg string) error {
	if level < TraceLevel || level > FatalLevel {
		return fmt.Errorf("%w: level %d is not an emittable severity", ErrInvalidConfig, level)
	}

	if level < c.registry.ResolveLevel(name) {
		metrics.RecordsFiltered.Inc()
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.down {
		return ErrShutdown
	}

	rec := newRecord(name, level, msg)
	metrics.RecordsEmitted.WithLabelValues(level.String()).Inc()

	var errs []error
	for _, app := range c.appenders {
		if err := app.Append(rec); err != nil {
			metrics.AppenderErrors.Inc()
			c.diag.report("appender", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logf formats and dispatches a message. The format arguments are only
// materialized after the level check, keeping filtered calls cheap.
func (c *Context) Logf(name string, level Level, format string, args ...any) error {
	if level >= TraceLevel && level <= FatalLevel && level < c.registry.ResolveLevel(name) {
		metrics.RecordsFiltered.Inc()
		return nil
	}
	return c.Log(name, level, fmt.Sprintf(format, args...))
}

// LogValue converts a tagged message value to text and dispatches it.
// Conversion never fails; see Value.Render.
func (c *Context) LogValue(name string, level Level, v Value) error {
	if level >= TraceLevel && level <= FatalLevel && level < c.registry.ResolveLevel(name) {
		metrics.RecordsFiltered.Inc()
		return nil
	}
	return c.Log(name, level, v.Render())
}

// ResolveLevel exposes the effective level for name, mainly for callers that
// want to skip expensive message assembly entirely.
func (c *Context) ResolveLevel(name string) Level {
	return c.registry.ResolveLevel(name)
}

// Refresh flushes every appender to its destination.
func (c *Context) Refresh() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for _, app := range c.appenders {
		if err := app.Refresh(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown drains and closes every appender. Taking the write lock makes it
// a barrier: it blocks until in-flight Log calls complete, then flushes and
// closes each sink. It is idempotent, and Log calls arriving afterwards fail
// fast with ErrShutdown instead of touching closed handles.
func (c *Context) Shutdown() error {
	c.mu.Lock()
	if c.down {
		c.mu.Unlock()
		return nil
	}
	c.down = true
	closing := c.appenders
	c.appenders = nil
	c.mu.Unlock()

	return closeAll(closing)
}

// closeAll flushes then closes each appender, keeping every error.
func closeAll(appenders []Appender) error {
	var errs []error
	for _, app := range appenders {
		if err := app.Refresh(); err != nil {
			errs = append(errs, err)
		}
		if err := app.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _defaultCtx = NewContext()

// Default returns the package-level context used by the convenience functions.
func Default() *Context {
	return _defaultCtx
}

// SetDefault replaces the package-level context. This allows embedding
// applications to route the convenience functions through their own instance.
func SetDefault(ctx *Context) {
	_defaultCtx = ctx
}

// Initialize configures the package-level context.
// It should be called once at application startup.
func Initialize(cfg *LogCfg) error {
	return _defaultCtx.Initialize(cfg)
}

// Shutdown tears down the package-level context.
// It should be called at application shutdown to ensure all logs are written.
func Shutdown() error {
	return _defaultCtx.Shutdown()
}

// Log dispatches a message through the package-level context.
func Log(name string, level Level, msg string) error {
	return _defaultCtx.Log(name, level, msg)
}

// Logf formats and dispatches a message through the package-level context.
func Logf(name string, level Level, format string, args ...any) error {
	return _defaultCtx.Logf(name, level, format, args...)
}

// LogValue converts and dispatches a tagged value through the package-level context.
func LogValue(name string, level Level, v Value) error {
	return _defaultCtx.LogValue(name, level, v)
}
