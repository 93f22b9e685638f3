package logtree

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// AppenderType names a configured sink kind.
type AppenderType string

// Supported appender types.
const (
	NullType             AppenderType = "NULL"
	ConsoleType          AppenderType = "CONSOLE"
	FileType             AppenderType = "FILE"
	DailyRollingFileType AppenderType = "DAILY_ROLLING_FILE"
)

// DefaultMaxBackupIndex bounds backup retention when a rolling appender
// config leaves maxBackupIndex unset.
const DefaultMaxBackupIndex = 16

// LogCfg is the initialization payload: the full set of appenders and
// configured logger levels installed by a single Initialize call. Field tags
// follow the external payload key names so a raw config map decodes straight
// into it via DecodeConfig.
type LogCfg struct {
	// Appenders lists every output sink. An empty list is valid and leaves
	// the engine dispatching to nothing.
	Appenders []AppenderCfg `mapstructure:"appenders"`

	// Loggers lists explicitly configured logger names. Unlisted names
	// inherit from their longest configured ancestor, ultimately from the
	// root entry, which is seeded at WARN when not supplied.
	Loggers []LoggerCfg `mapstructure:"loggers"`
}

// AppenderCfg configures a single sink.
type AppenderCfg struct {
	// AppenderType is one of NULL, CONSOLE, FILE, DAILY_ROLLING_FILE.
	AppenderType string `mapstructure:"appenderType"`

	// ThresholdLevel is the minimum severity this sink accepts.
	// Defaults to TRACE (accept everything the loggers let through).
	ThresholdLevel string `mapstructure:"thresholdLevel"`

	// FilePath is the target file, required for FILE and
	// DAILY_ROLLING_FILE. Relative paths are resolved against the working
	// directory at construction time, not at every write.
	FilePath string `mapstructure:"filePath"`

	// Layout is the pattern layout; DefaultPattern when omitted.
	Layout string `mapstructure:"layout"`

	// UseLockFile guards rotation with a sibling .lock file so processes
	// sharing the log path do not race on the rename+reopen sequence.
	UseLockFile bool `mapstructure:"useLockFile"`

	// MaxBackupIndex is the number of retained backups for
	// DAILY_ROLLING_FILE; DefaultMaxBackupIndex when omitted, zero keeps
	// no backups at all.
	MaxBackupIndex *int `mapstructure:"maxBackupIndex"`
}

// LoggerCfg pins one logger name to a minimum level.
type LoggerCfg struct {
	// Name is the dot-separated logger name; empty names the root.
	Name string `mapstructure:"name"`

	// Level is the minimum severity for Name and its unconfigured descendants.
	Level string `mapstructure:"level"`
}

// DecodeConfig decodes a generic payload map (parsed JSON, TOML, an
// embedding host's table) into a typed LogCfg. Decoding is strict: values of
// the wrong type are a configuration error, not a coercion.
func DecodeConfig(raw map[string]any) (*LogCfg, error) {
	cfg := &LogCfg{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: false,
		Result:           cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create decoder: %v", ErrInvalidConfig, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks the configuration without applying it. Initialize performs
// the same checks; Validate exists so callers can reject bad payloads early.
func (cfg *LogCfg) Validate() error {
	_, err := cfg.resolve()
	return err
}

// resolvedAppender is a fully parsed, ready-to-construct appender spec.
type resolvedAppender struct {
	typ        AppenderType
	threshold  Level
	layout     *Layout
	path       string
	lockFile   bool
	maxBackups int
}

// resolvedCfg is the validated form Initialize builds the new state from.
type resolvedCfg struct {
	appenders []resolvedAppender
	levels    map[string]Level
}

// resolve parses and validates every entry. It is all-or-nothing: any
// malformed entry fails the whole config and nothing is constructed.
func (cfg *LogCfg) resolve() (*resolvedCfg, error) {
	rc := &resolvedCfg{levels: make(map[string]Level, len(cfg.Loggers))}

	for i, ac := range cfg.Appenders {
		ra := resolvedAppender{
			typ:        AppenderType(ac.AppenderType),
			threshold:  TraceLevel,
			path:       ac.FilePath,
			lockFile:   ac.UseLockFile,
			maxBackups: DefaultMaxBackupIndex,
		}

		switch ra.typ {
		case NullType, ConsoleType, FileType, DailyRollingFileType:
		default:
			return nil, fmt.Errorf("%w: %q (appender %d)", ErrUnknownAppenderType, ac.AppenderType, i)
		}

		if ac.ThresholdLevel != "" {
			lv, err := ParseLevel(ac.ThresholdLevel)
			if err != nil {
				return nil, fmt.Errorf("appender %d: %w", i, err)
			}
			ra.threshold = lv
		}

		if ra.typ == FileType || ra.typ == DailyRollingFileType {
			if ra.path == "" {
				return nil, fmt.Errorf("%w: appender %d (%s): filePath is required", ErrInvalidConfig, i, ra.typ)
			}
		}

		if ac.MaxBackupIndex != nil {
			if *ac.MaxBackupIndex < 0 {
				return nil, fmt.Errorf("%w: appender %d: maxBackupIndex must be >= 0, got %d",
					ErrInvalidConfig, i, *ac.MaxBackupIndex)
			}
			ra.maxBackups = *ac.MaxBackupIndex
		}

		pattern := ac.Layout
		if pattern == "" {
			pattern = DefaultPattern
		}
		ra.layout = ParseLayout(pattern)

		rc.appenders = append(rc.appenders, ra)
	}

	for i, lc := range cfg.Loggers {
		if lc.Level == "" {
			return nil, fmt.Errorf("%w: logger %d (%q): level is required", ErrInvalidConfig, i, lc.Name)
		}
		lv, err := ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("logger %d (%q): %w", i, lc.Name, err)
		}
		rc.levels[lc.Name] = lv
	}

	return rc, nil
}

// build constructs the appender set described by the resolved config. On any
// construction failure the already-built appenders are closed before the
// error is returned, so a failed Initialize never leaks file handles.
func (rc *resolvedCfg) build() ([]Appender, error) {
	appenders := make([]Appender, 0, len(rc.appenders))

	for _, ra := range rc.appenders {
		var (
			app Appender
			err error
		)
		switch ra.typ {
		case NullType:
			app = NewNullAppender()
		case ConsoleType:
			app = NewConsoleAppender(ra.threshold, ra.layout)
		case FileType:
			app, err = newFileAppender(ra.threshold, ra.layout, ra.path, false, ra.lockFile, ra.maxBackups)
		case DailyRollingFileType:
			app, err = newFileAppender(ra.threshold, ra.layout, ra.path, true, ra.lockFile, ra.maxBackups)
		}
		if err != nil {
			for _, built := range appenders {
				built.Close()
			}
			return nil, err
		}
		appenders = append(appenders, app)
	}

	return appenders, nil
}
