package logtree

import (
	"io"
	"os"
	"sync"
)

// ConsoleAppender writes formatted lines to the process diagnostic stream
// (stderr). Output is unbuffered: each record is rendered into a single
// Write call under a mutex, so concurrent loggers never interleave partial
// lines and the stream stays timestamp-ordered within this process.
type ConsoleAppender struct {
	appenderCore
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleAppender creates a console sink with the given threshold and layout.
func NewConsoleAppender(threshold Level, layout *Layout) *ConsoleAppender {
	return &ConsoleAppender{
		appenderCore: appenderCore{threshold: threshold, layout: layout},
		out:          os.Stderr,
	}
}

// Append renders and writes the record if it meets the threshold.
func (ca *ConsoleAppender) Append(rec *Record) error {
	if !ca.accepts(rec) {
		return nil
	}
	buf := ca.render(rec)

	ca.mu.Lock()
	defer ca.mu.Unlock()
	_, err := ca.out.Write(buf.Bytes())
	return err
}

// Refresh is a no-op; writes are unbuffered.
func (ca *ConsoleAppender) Refresh() error { return nil }

// Close is a no-op; the diagnostic stream is not owned by the appender.
func (ca *ConsoleAppender) Close() error { return nil }
