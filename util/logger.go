// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// zerolog has no "verbose" level, so Verbose rides on Debug and Debug
// rides on Trace.
var levelMap = map[LogLevel]zerolog.Level{
	LogQuiet:   zerolog.ErrorLevel,
	LogNormal:  zerolog.InfoLevel,
	LogVerbose: zerolog.DebugLevel,
	LogDebug:   zerolog.TraceLevel,
}

var levelLabels = map[string]string{
	zerolog.LevelErrorValue: "ERR",
	zerolog.LevelWarnValue:  "WRN",
	zerolog.LevelInfoValue:  "INF",
	zerolog.LevelDebugValue: "VRB",
	zerolog.LevelTraceValue: "DBG",
}

// LogOptions configures [NewLoggerWithOptions].
type LogOptions struct {
	Verbosity int
	JSON      bool // structured JSON on stderr instead of console text

	// File enables a rotating JSON log file alongside stderr.
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

// Logger writes levelled messages through zerolog.  The printf-style
// API keeps call sites short; structured fields are attached with
// [Logger.With].
type Logger struct {
	mu         sync.Mutex
	level      LogLevel
	output     io.Writer
	json       bool
	timestamps bool
	file       *lumberjack.Logger
	fields     []field
	zl         zerolog.Logger
}

type field struct{ key, value string }

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	return NewLoggerWithOptions(LogOptions{Verbosity: verbosity})
}

// NewLoggerWithOptions builds a Logger with an optional rotating file
// sink.
func NewLoggerWithOptions(opts LogOptions) *Logger {
	// Filtering happens per logger.
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	l := &Logger{
		level:      LogLevel(opts.Verbosity),
		output:     os.Stderr,
		json:       opts.JSON,
		timestamps: opts.Verbosity >= int(LogDebug),
	}
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.FileMaxSizeMB,
			MaxBackups: opts.FileMaxBackups,
			MaxAge:     opts.FileMaxAgeDays,
		}
	}
	l.rebuild()
	return l
}

// Nop returns a Logger that discards everything, errors included.
func Nop() *Logger {
	l := &Logger{level: LogQuiet, output: io.Discard}
	l.zl = zerolog.Nop()
	return l
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = on
	l.rebuild()
}

// SetOutput overrides the console writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// With returns a child logger that stamps key=value on every line.
func (l *Logger) With(key string, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{
		level:      l.level,
		output:     l.output,
		json:       l.json,
		timestamps: l.timestamps,
		file:       l.file,
		fields:     append(append([]field(nil), l.fields...), field{key, fmt.Sprint(value)}),
	}
	if l.output == io.Discard && l.file == nil {
		child.zl = zerolog.Nop()
		return child
	}
	child.rebuild()
	return child
}

// Info prints when verbosity ≥ 1.
func (l *Logger) Info(format string, args ...any) { l.zl.Info().Msgf(format, args...) }

// Warn prints when verbosity ≥ 1.
func (l *Logger) Warn(format string, args ...any) { l.zl.Warn().Msgf(format, args...) }

// Verbose prints when verbosity ≥ 2.
func (l *Logger) Verbose(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }

// Debug prints when verbosity ≥ 3.
func (l *Logger) Debug(format string, args ...any) { l.zl.Trace().Msgf(format, args...) }

// Error always prints regardless of verbosity.
func (l *Logger) Error(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// rebuild recreates the zerolog pipeline; callers hold mu (or own l).
func (l *Logger) rebuild() {
	var console io.Writer
	if l.json {
		console = zerolog.SyncWriter(l.output)
	} else {
		cw := zerolog.ConsoleWriter{
			Out:        zerolog.SyncWriter(l.output),
			NoColor:    true,
			TimeFormat: "15:04:05.000",
			FormatLevel: func(i any) string {
				s, _ := i.(string)
				if label, ok := levelLabels[s]; ok {
					return "[" + label + "]"
				}
				return "[" + strings.ToUpper(s) + "]"
			},
		}
		if !l.timestamps {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		console = cw
	}

	w := console
	if l.file != nil {
		w = zerolog.MultiLevelWriter(console, l.file)
	}

	lvl, ok := levelMap[l.level]
	if !ok {
		lvl = zerolog.TraceLevel
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	for _, f := range l.fields {
		ctx = ctx.Str(f.key, f.value)
	}
	l.zl = ctx.Logger()
}
