package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the minimum severity written.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

var zapLevels = map[LogLevel]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
}

// LogFormat selects the entry encoding.
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config holds configuration for the logger.
type Config struct {
	Level  LogLevel
	Format LogFormat
	// Name is attached to every entry as "logger", e.g. "searchctl".
	Name string
	// Fields are key-value pairs attached to every entry.
	Fields []any
	// Output receives encoded entries. Defaults to stderr so command output on
	// stdout stays machine readable.
	Output io.Writer
}

// DefaultConfig returns info-level JSON logging on stderr.
func DefaultConfig() Config {
	return Config{Level: InfoLevel, Format: JSONFormat}
}

// ZapLogger implements Logger on top of a sugared zap logger.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger builds a logger from cfg. Level and format are matched
// case-insensitively and default to info and json when empty.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLogLevel(string(cfg.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	format := JSONFormat
	if cfg.Format != "" {
		parsed, err := ParseLogFormat(string(cfg.Format))
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	atom := zap.NewAtomicLevelAt(zapLevels[level])
	core := zapcore.NewCore(newEncoder(format), zapcore.Lock(zapcore.AddSync(out)), atom)
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if cfg.Name != "" {
		base = base.Named(cfg.Name)
	}

	sugar := base.Sugar()
	if len(cfg.Fields) > 0 {
		sugar = sugar.With(cfg.Fields...)
	}
	return &ZapLogger{base: base, sugar: sugar, level: atom}, nil
}

func newEncoder(format LogFormat) zapcore.Encoder {
	enc := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == TextFormat {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	return zapcore.NewJSONEncoder(enc)
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// With returns a child logger sharing the level and output.
func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{base: l.base, sugar: l.sugar.With(args...), level: l.level}
}

// WithContext adds the correlation id carried by ctx, if any.
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return l.With("correlation_id", id)
	}
	return l
}

// SetLevel changes the level of this logger and every child derived from it.
func (l *ZapLogger) SetLevel(level LogLevel) error {
	parsed, err := ParseLogLevel(string(level))
	if err != nil {
		return err
	}
	l.level.SetLevel(zapLevels[parsed])
	return nil
}

// Enabled reports whether entries at level would be written.
func (l *ZapLogger) Enabled(level LogLevel) bool {
	return l.level.Enabled(zapLevels[level])
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

// ParseLogLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLogLevel(level string) (LogLevel, error) {
	normalized := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	if normalized == "warning" {
		return WarnLevel, nil
	}
	if _, ok := zapLevels[normalized]; !ok {
		return "", fmt.Errorf("invalid log level: %q", level)
	}
	return normalized, nil
}

// ParseLogFormat accepts json, or text (alias console).
func ParseLogFormat(format string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONFormat, nil
	case "text", "console":
		return TextFormat, nil
	default:
		return "", fmt.Errorf("invalid log format: %q", format)
	}
}
