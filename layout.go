package logtree

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"
)

// DefaultPattern is the layout used when an appender config omits one.
// It produces aligned, greppable columns:
//
//	2024-03-01 12:00:00,123 [INFO  17    myapp.somemodule    ] message
const DefaultPattern = "%d{%Y-%m-%d %H:%M:%S,%q} [%-5p %-5.5t %-20.20c] %m%n"

// lineEnding is the platform newline emitted for %n.
var lineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// Layout renders a Record into text using a small token language:
//
//	%d{fmt}  timestamp, strftime-like sub-format (%Y %m %d %H %M %S, %q = ms)
//	%p       level name
//	%t       thread (goroutine) identifier
//	%c       logger name
//	%m       message body
//	%n       platform newline
//	%%       literal percent sign
//
// Conversion characters accept width/precision modifiers in the form
// %[-][MIN][.MAX]x: the rendered field is padded with spaces to at least MIN
// columns ('-' left-justifies, otherwise the pad goes on the left) and
// truncated to its first MAX bytes. Unrecognized tokens pass through
// literally.
//
// A Layout is compiled once per appender and is immutable afterwards, so it
// is safe for concurrent Render calls.
type Layout struct {
	steps []layoutStep
}

type stepKind int

const (
	stepLiteral stepKind = iota
	stepTimestamp
	stepLevel
	stepThread
	stepLoggerName
	stepMessage
	stepNewline
)

type layoutStep struct {
	kind    stepKind
	literal string // stepLiteral text, or the %d sub-format
	leftPad bool   // pad on the left (default); false when '-' present
	min     int    // minimum width, 0 = none
	max     int    // maximum width, 0 = none
}

// defaultTimeFormat is used for a bare %d without a {fmt} block.
const defaultTimeFormat = "%Y-%m-%d %H:%M:%S,%q"

// ParseLayout compiles pattern into a Layout. Compilation never fails:
// malformed or unknown tokens are kept as literal text, which keeps a typo
// in a layout from disabling the appender that carries it.
func ParseLayout(pattern string) *Layout {
	l := &Layout{}
	var lit bytes.Buffer

	flushLiteral := func() {
		if lit.Len() > 0 {
			l.steps = append(l.steps, layoutStep{kind: stepLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		if pattern[i] != '%' {
			lit.WriteByte(pattern[i])
			i++
			continue
		}

		step, next, ok := parseToken(pattern, i)
		if !ok {
			// Not a recognized token: emit the raw text untouched.
			lit.WriteString(pattern[i:next])
			i = next
			continue
		}

		flushLiteral()
		l.steps = append(l.steps, step)
		i = next
	}

	flushLiteral()
	return l
}

// parseToken reads one %-token starting at pattern[start] ('%'). It returns
// the compiled step, the index just past the token, and whether the token
// was recognized.
func parseToken(pattern string, start int) (layoutStep, int, bool) {
	i := start + 1
	step := layoutStep{leftPad: true}

	if i >= len(pattern) {
		return step, len(pattern), false
	}

	// %% is a literal percent and takes no modifiers.
	if pattern[i] == '%' {
		return layoutStep{kind: stepLiteral, literal: "%"}, i + 1, true
	}

	if pattern[i] == '-' {
		step.leftPad = false
		i++
	}
	for i < len(pattern) && pattern[i] >= '0' && pattern[i] <= '9' {
		step.min = step.min*10 + int(pattern[i]-'0')
		i++
	}
	if i < len(pattern) && pattern[i] == '.' {
		i++
		for i < len(pattern) && pattern[i] >= '0' && pattern[i] <= '9' {
			step.max = step.max*10 + int(pattern[i]-'0')
			i++
		}
	}

	if i >= len(pattern) {
		return step, len(pattern), false
	}

	switch pattern[i] {
	case 'd':
		step.kind = stepTimestamp
		step.literal = defaultTimeFormat
		i++
		if i < len(pattern) && pattern[i] == '{' {
			if close := strings.IndexByte(pattern[i:], '}'); close >= 0 {
				step.literal = pattern[i+1 : i+close]
				i += close + 1
			}
		}
		return step, i, true
	case 'p':
		step.kind = stepLevel
	case 't':
		step.kind = stepThread
	case 'c':
		step.kind = stepLoggerName
	case 'm':
		step.kind = stepMessage
	case 'n':
		step.kind = stepNewline
	default:
		return step, i + 1, false
	}
	return step, i + 1, true
}

// Render appends the formatted record to buf.
func (l *Layout) Render(buf *bytes.Buffer, rec *Record) {
	for _, step := range l.steps {
		switch step.kind {
		case stepLiteral:
			buf.WriteString(step.literal)
		case stepNewline:
			buf.WriteString(lineEnding)
		case stepTimestamp:
			step.writeAdjusted(buf, formatTimestamp(step.literal, rec))
		case stepLevel:
			step.writeAdjusted(buf, rec.Level.String())
		case stepThread:
			step.writeAdjusted(buf, rec.ThreadID)
		case stepLoggerName:
			step.writeAdjusted(buf, rec.LoggerName)
		case stepMessage:
			step.writeAdjusted(buf, rec.Message)
		}
	}
}

// writeAdjusted applies the width/precision modifiers while writing s.
func (s layoutStep) writeAdjusted(buf *bytes.Buffer, text string) {
	if s.max > 0 && len(text) > s.max {
		text = text[:s.max]
	}
	pad := s.min - len(text)
	if pad > 0 && s.leftPad {
		writeSpaces(buf, pad)
	}
	buf.WriteString(text)
	if pad > 0 && !s.leftPad {
		writeSpaces(buf, pad)
	}
}

func writeSpaces(buf *bytes.Buffer, n int) {
	const spaces = "                "
	for n > len(spaces) {
		buf.WriteString(spaces)
		n -= len(spaces)
	}
	buf.WriteString(spaces[:n])
}

// formatTimestamp renders the record time using the strftime-like sub-format
// of a %d token. Supported directives: %Y %m %d %H %M %S and %q for
// milliseconds; anything else, including a trailing bare '%', is copied
// through literally.
func formatTimestamp(format string, rec *Record) string {
	t := rec.Time
	var out bytes.Buffer
	out.Grow(len(format) + 8)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			out.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			writePadded(&out, t.Year(), 4)
		case 'm':
			writePadded(&out, int(t.Month()), 2)
		case 'd':
			writePadded(&out, t.Day(), 2)
		case 'H':
			writePadded(&out, t.Hour(), 2)
		case 'M':
			writePadded(&out, t.Minute(), 2)
		case 'S':
			writePadded(&out, t.Second(), 2)
		case 'q':
			writePadded(&out, t.Nanosecond()/int(1e6), 3)
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
	return out.String()
}

// writePadded writes v zero-padded to width digits.
func writePadded(buf *bytes.Buffer, v, width int) {
	s := strconv.Itoa(v)
	for pad := width - len(s); pad > 0; pad-- {
		buf.WriteByte('0')
	}
	buf.WriteString(s)
}
