// Package logging defines the structured logging interfaces used by the
// resolver and the routing service. Implementations live in
// pkg/adapter/logging.
package logging

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/damianoneill/go-routable/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_logger.go -package=mocks github.com/damianoneill/go-routable/pkg/domain/logging Logger,LeveledLogger,Factory

// Level represents logging severity levels.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// ParseLevel converts a configuration string such as "WARN" into a Level.
func ParseLevel(s string) (Level, error) {
	switch lvl := Level(strings.ToLower(strings.TrimSpace(s))); lvl {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return lvl, nil
	case "":
		return InfoLevel, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// Fields represents structured logging key-value pairs.
type Fields map[string]interface{}

// LoggerOptions holds configuration for logger implementations.
type LoggerOptions struct {
	// Level sets the minimum logging level
	Level Level

	// ServiceName identifies the service in log output
	ServiceName string

	// Fields contains default fields added to all log entries
	Fields Fields
}

// Option is a function that modifies LoggerOptions
type Option = options.Option[LoggerOptions]

// DefaultOptions returns the default logger options
func DefaultOptions() LoggerOptions {
	return LoggerOptions{
		Level: InfoLevel,
	}
}

// WithLevel sets the minimum logging level.
func WithLevel(level Level) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.Level = level
		return nil
	})
}

// WithServiceName sets the service name included in every entry.
func WithServiceName(name string) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.ServiceName = name
		return nil
	})
}

// WithFields sets default fields included in every entry.
func WithFields(fields Fields) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.Fields = fields
		return nil
	})
}

// Logger defines the core logging interface.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	DebugWith(msg string, fields Fields)
	InfoWith(msg string, fields Fields)
	WarnWith(msg string, fields Fields)
	ErrorWith(msg string, fields Fields)

	// With returns a new Logger with additional default fields
	With(fields Fields) Logger

	// WithContext returns a Logger carrying trace metadata from ctx
	WithContext(ctx context.Context) Logger
}

// LeveledLogger extends Logger with level management capabilities.
type LeveledLogger interface {
	Logger

	SetLevel(level Level)
	GetLevel() Level
}

// RuntimeConfigurable is implemented by loggers whose level can be changed
// through an HTTP endpoint.
type RuntimeConfigurable interface {
	GetConfigHandler() http.Handler
}

// Factory creates new logger instances
type Factory interface {
	NewLogger(opts ...Option) (LeveledLogger, error)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(string) {}
func (nopLogger) DebugWith(string, Fields) {}
func (nopLogger) InfoWith(string, Fields) {}
func (nopLogger) WarnWith(string, Fields) {}
func (nopLogger) ErrorWith(string, Fields) {}
func (n nopLogger) With(Fields) Logger { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
