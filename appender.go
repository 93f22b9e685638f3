package logtree

import "bytes"

// Appender is the interface for configured output sinks. Each appender
// carries its own threshold level and layout; the dispatcher hands every
// accepted record to every appender, and the appender decides independently
// whether to render and write it.
//
// Implementations must be goroutine-safe: the dispatcher calls Append
// concurrently from every goroutine that logs.
type Appender interface {
	// Append renders and writes the record if it meets the appender's
	// threshold. A failure affects this appender only; the dispatcher
	// contains the error and still delivers the record to the others.
	Append(rec *Record) error

	// Refresh forces any buffered data to the underlying destination.
	// It blocks until pending output is durable.
	Refresh() error

	// Close flushes and releases underlying resources. It is called once,
	// during shutdown or atomic replacement of the appender set.
	Close() error
}

// appenderCore holds the threshold/layout pair common to every sink type.
type appenderCore struct {
	threshold Level
	layout    *Layout
}

// accepts reports whether the record meets this sink's threshold.
// Filtering is threshold-inclusive: level == threshold is written.
func (c *appenderCore) accepts(rec *Record) bool {
	return rec.Level >= c.threshold
}

// render formats the record into a fresh buffer.
func (c *appenderCore) render(rec *Record) *bytes.Buffer {
	buf := &bytes.Buffer{}
	buf.Grow(256)
	c.layout.Render(buf, rec)
	return buf
}
