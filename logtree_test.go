package logtree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileCfg(path, threshold string) *LogCfg {
	return &LogCfg{
		Appenders: []AppenderCfg{{
			AppenderType:   "FILE",
			ThresholdLevel: threshold,
			FilePath:       path,
			Layout:         "%p %c %m%n",
		}},
		Loggers: []LoggerCfg{{Name: "", Level: "TRACE"}},
	}
}

func TestFileLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "DEBUG")))

	testMessage := "this is a test message"
	require.NoError(t, ctx.Log("myapp.sub", InfoLevel, testMessage))
	require.NoError(t, ctx.Shutdown())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	logOutput := string(content)
	assert.Contains(t, logOutput, testMessage)
	assert.Contains(t, logOutput, "INFO")
	assert.Contains(t, logOutput, "myapp.sub")
}

func TestLogFastPathSkipsAppenders(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	ctx := NewContext()
	cfg := fileCfg(logPath, "TRACE")
	cfg.Loggers = []LoggerCfg{{Name: "", Level: "WARN"}}
	require.NoError(t, ctx.Initialize(cfg))
	defer ctx.Shutdown()

	require.NoError(t, ctx.Log("myapp", InfoLevel, "filtered"))

	// The file appender opens lazily, so a filtered call must not even
	// create the target file.
	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAppenderThresholdIndependentOfLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "ERROR")))
	defer ctx.Shutdown()

	require.NoError(t, ctx.Log("myapp", InfoLevel, "kept out by appender"))
	require.NoError(t, ctx.Log("myapp", ErrorLevel, "written"))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "kept out by appender")
	assert.Contains(t, string(content), "written")
}

func TestHierarchicalFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	ctx := NewContext()
	cfg := fileCfg(logPath, "TRACE")
	cfg.Loggers = []LoggerCfg{
		{Name: "myapp", Level: "DEBUG"},
		{Name: "myapp.noisy", Level: "ERROR"},
	}
	require.NoError(t, ctx.Initialize(cfg))
	defer ctx.Shutdown()

	require.NoError(t, ctx.Log("myapp.quiet.sub", DebugLevel, "inherited debug"))
	require.NoError(t, ctx.Log("myapp.noisy.sub", WarnLevel, "suppressed"))
	require.NoError(t, ctx.Log("other", InfoLevel, "below default warn"))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "inherited debug")
	assert.NotContains(t, string(content), "suppressed")
	assert.NotContains(t, string(content), "below default warn")
}

func TestReinitializeReplacesState(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.log")
	pathB := filepath.Join(dir, "b.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(pathA, "TRACE")))
	require.NoError(t, ctx.Log("app", InfoLevel, "to A"))

	require.NoError(t, ctx.Initialize(fileCfg(pathB, "TRACE")))
	require.NoError(t, ctx.Log("app", InfoLevel, "to B"))
	require.NoError(t, ctx.Shutdown())

	contentA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	contentB, err := os.ReadFile(pathB)
	require.NoError(t, err)

	assert.Contains(t, string(contentA), "to A")
	assert.NotContains(t, string(contentA), "to B")
	assert.Contains(t, string(contentB), "to B")
}

func TestFailedInitializeLeavesStateIntact(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "a.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "TRACE")))
	defer ctx.Shutdown()

	err := ctx.Initialize(&LogCfg{Appenders: []AppenderCfg{{AppenderType: "BOGUS"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAppenderType)

	// The prior configuration still serves.
	require.NoError(t, ctx.Log("app", InfoLevel, "still alive"))
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "still alive")
}

func TestShutdownSemantics(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "a.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "TRACE")))
	require.NoError(t, ctx.Shutdown())
	require.NoError(t, ctx.Shutdown(), "shutdown is idempotent")

	err := ctx.Log("app", InfoLevel, "too late")
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestLogRejectsNonEmittableLevels(t *testing.T) {
	ctx := NewContext()
	assert.Error(t, ctx.Log("app", OffLevel, "nope"))
	assert.Error(t, ctx.Log("app", Level(0), "nope"))
}

func TestEmptyContextIsSafe(t *testing.T) {
	ctx := NewContext()
	// No appenders configured: dispatch is a no-op, not a failure.
	assert.NoError(t, ctx.Log("app", ErrorLevel, "nowhere to go"))
}

func TestLogfDefersFormatting(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "a.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "TRACE")))
	defer ctx.Shutdown()

	require.NoError(t, ctx.Logf("app", InfoLevel, "answer=%d", 42))
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "answer=42")
}

func TestLogValueConversion(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "a.log")

	ctx := NewContext()
	require.NoError(t, ctx.Initialize(fileCfg(logPath, "TRACE")))
	defer ctx.Shutdown()

	require.NoError(t, ctx.LogValue("app", WarnLevel, Structured(map[string]any{"k": "v"})))
	require.NoError(t, ctx.LogValue("app", WarnLevel, Structured(nil)))
	require.NoError(t, ctx.LogValue("app", WarnLevel, Value{}))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `{"k":"v"}`)
	assert.Contains(t, lines[1], "null")
	assert.Contains(t, lines[2], "undefined")
}

func TestDefaultContextConvenience(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "default.log")

	prev := Default()
	SetDefault(NewContext())
	defer SetDefault(prev)

	require.NoError(t, Initialize(fileCfg(logPath, "TRACE")))
	require.NoError(t, Log("app", InfoLevel, "via package funcs"))
	require.NoError(t, Logf("app", InfoLevel, "n=%d", 1))
	require.NoError(t, LogValue("app", InfoLevel, Text("value")))
	require.NoError(t, Shutdown())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "via package funcs")
}
