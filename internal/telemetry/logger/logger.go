// Package logger provides structured logging for linkauth.
//
// It wraps log/slog and offers three output formats:
//
//   - json: structured JSON lines (default, application log)
//   - text: slog key=value lines
//   - access: "<timestamp> - <LEVEL> - <client_host> - <message>" lines
//     for the append-only access trail
//
// Sensitive attribute values (secrets, session ids) are redacted before
// they reach any handler.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Output formats.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatAccess = "access"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is json, text or access.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource adds source file information (json and text only).
	AddSource bool
	// Dynamic binds the logger to the process level changed by SetLevel.
	Dynamic bool
}

// DefaultConfig returns the application logger defaults.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  FormatJSON,
		Output:  os.Stderr,
		Dynamic: true,
	}
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

// dynamicLevel is shared by every logger built with Config.Dynamic.
var dynamicLevel = new(slog.LevelVar)

// New creates a logger from cfg.
func New(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var leveler slog.Leveler = level
	if cfg.Dynamic {
		dynamicLevel.Set(level)
		leveler = dynamicLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     leveler,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case FormatText, "console":
		handler = slog.NewTextHandler(output, opts)
	case FormatAccess:
		handler = NewAccessHandler(output, leveler)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(output, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	return &slogLogger{
		logger: slog.New(handler),
		ctx:    context.Background(),
	}, nil
}

// SetLevel changes the level of every dynamic logger.
func SetLevel(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	dynamicLevel.Set(l)
	return nil
}

// GetLevel returns the current dynamic level.
func GetLevel() string {
	return strings.ToLower(dynamicLevel.Level().String())
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		ctx:    l.ctx,
	}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{
		logger: l.logger,
		ctx:    ctx,
	}
}

// Slog exposes the underlying *slog.Logger for libraries that need one.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(*slogLogger); ok {
		return sl.logger
	}
	return slog.Default()
}

// ParseLevel converts a level name to slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", level)
	}
}

var defaultLogger atomic.Pointer[slogLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*slogLogger))
}

// SetDefault sets the default logger and, for slog-backed loggers, slog.Default.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		defaultLogger.Store(sl)
		slog.SetDefault(sl.logger)
	}
}

// Default returns the default logger.
func Default() Logger {
	return defaultLogger.Load()
}
