package logtree

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// valueKind discriminates the message variants a caller may hand to the
// dispatcher. The core Record is always string-typed; a Value is resolved to
// text by Render before it reaches the appenders.
type valueKind int

const (
	valueText valueKind = iota
	valueStructured
	valueFailure
)

// Value is a tagged message variant: plain text, a structured payload that
// serializes to JSON, or an error carrying an optional stack trace. The zero
// Value renders as "undefined", a nil structured payload as "null", matching
// the conversion policy of the embedding hosts this engine was written for.
type Value struct {
	kind valueKind
	text string
	obj  any
	err  error
	set  bool
}

// Text wraps an already-materialized message string.
func Text(s string) Value {
	return Value{kind: valueText, text: s, set: true}
}

// Structured wraps an arbitrary value that is serialized to a JSON-like
// textual form at render time. Serialization failures are rendered as a
// diagnostic string rather than surfaced as errors.
func Structured(v any) Value {
	return Value{kind: valueStructured, obj: v, set: true}
}

// Failure wraps an error. Errors created or wrapped with
// github.com/pkg/errors render as message plus stack trace; plain errors
// render as their message alone.
func Failure(err error) Value {
	return Value{kind: valueFailure, err: err, set: true}
}

// stackTracer is the interface pkg/errors attaches to wrapped errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Render resolves the variant to the final message string. It never fails:
// every branch, including nil payloads and marshal errors, produces text.
func (v Value) Render() string {
	if !v.set {
		return "undefined"
	}

	switch v.kind {
	case valueText:
		return v.text

	case valueStructured:
		if v.obj == nil {
			return "null"
		}
		if s, ok := v.obj.(string); ok {
			return s
		}
		var buf bytes.Buffer
		appendJSONValue(&buf, v.obj)
		return buf.String()

	case valueFailure:
		if v.err == nil {
			return "null"
		}
		var tracer stackTracer
		if errors.As(v.err, &tracer) {
			return fmt.Sprintf("%s%+v", v.err.Error(), tracer.StackTrace())
		}
		return v.err.Error()
	}

	return "undefined"
}
