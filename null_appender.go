package logtree

// NullAppender accepts and discards every record. Configuring it keeps the
// dispatch path uniform while fully disabling output.
type NullAppender struct{}

// NewNullAppender creates a discard-everything sink.
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

// Append discards the record.
func (na *NullAppender) Append(*Record) error { return nil }

// Refresh is a no-op; nothing is buffered.
func (na *NullAppender) Refresh() error { return nil }

// Close is a no-op; there are no resources to release.
func (na *NullAppender) Close() error { return nil }
