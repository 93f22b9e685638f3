package logtree

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func renderWith(pattern string, rec *Record) string {
	var buf bytes.Buffer
	ParseLayout(pattern).Render(&buf, rec)
	return buf.String()
}

func testRecord() *Record {
	return &Record{
		Time:       time.Date(2024, 3, 1, 9, 5, 7, 42*int(time.Millisecond), time.Local),
		Level:      InfoLevel,
		LoggerName: "myapp",
		ThreadID:   "17",
		Message:    "hi",
	}
}

func TestRenderLevelPadding(t *testing.T) {
	got := renderWith("[%-5p] %c: %m%n", testRecord())
	assert.Equal(t, "[INFO ] myapp: hi"+lineEnding, got)
}

func TestRenderWidthAndPrecision(t *testing.T) {
	rec := testRecord()
	rec.LoggerName = "myapp.somemodule.submodule"

	// Truncation takes a prefix; padding fills to the minimum width.
	assert.Equal(t, "myapp.some", renderWith("%.10c", rec))
	assert.Equal(t, "myapp.somemodule.sub", renderWith("%-20.20c", rec))

	rec.LoggerName = "db"
	assert.Equal(t, "db                  ", renderWith("%-20.20c", rec))
	assert.Equal(t, "                  db", renderWith("%20c", rec))
}

func TestRenderTimestamp(t *testing.T) {
	rec := testRecord()
	assert.Equal(t, "2024-03-01 09:05:07,042", renderWith("%d{%Y-%m-%d %H:%M:%S,%q}", rec))
	// Bare %d uses the default sub-format.
	assert.Equal(t, "2024-03-01 09:05:07,042", renderWith("%d", rec))
}

func TestRenderDefaultPattern(t *testing.T) {
	got := renderWith(DefaultPattern, testRecord())
	assert.Equal(t,
		"2024-03-01 09:05:07,042 [INFO  17    myapp               ] hi"+lineEnding,
		got)
}

func TestRenderLiteralsAndUnknownTokens(t *testing.T) {
	rec := testRecord()
	assert.Equal(t, "100%", renderWith("100%%", rec))
	// Unrecognized tokens pass through literally.
	assert.Equal(t, "%z hi", renderWith("%z %m", rec))
	assert.Equal(t, "%-3z hi", renderWith("%-3z %m", rec))
	// A trailing bare % is literal text, not a token.
	assert.Equal(t, "hi%", renderWith("%m%", rec))
}

func TestRenderThreadID(t *testing.T) {
	rec := testRecord()
	rec.ThreadID = "123456789"
	assert.Equal(t, "12345", renderWith("%-5.5t", rec))
}

func TestRenderUnknownTimestampDirective(t *testing.T) {
	// Unknown strftime directives are copied through.
	assert.Equal(t, "2024 %x", renderWith("%d{%Y %x}", testRecord()))
}
