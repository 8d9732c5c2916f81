// Package logging implements the domain logging interfaces on zap.
package logging

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainlog "github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/options"
)

// ZapLogger is a domain LeveledLogger backed by a zap.Logger and an atomic
// level that can be changed at runtime.
type ZapLogger struct {
	logger *zap.Logger
	atom   zap.AtomicLevel
}

// ZapOptions extends the domain options with zap specific settings.
type ZapOptions struct {
	domainlog.LoggerOptions
	Development bool
	OutputPaths []string
}

type ZapOption = options.Option[ZapOptions]

// WithDevelopment enables stack traces on warnings and a development encoder
// configuration.
func WithDevelopment(enabled bool) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		o.Development = enabled
		return nil
	})
}

// WithOutputPaths replaces the default stdout sink.
func WithOutputPaths(paths ...string) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		if len(paths) == 0 {
			return fmt.Errorf("at least one output path is required")
		}
		o.OutputPaths = paths
		return nil
	})
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// NewLogger implements domainlog.Factory.
func (f *Factory) NewLogger(opts ...domainlog.Option) (domainlog.LeveledLogger, error) {
	logger, err := f.NewLoggerWithOptions(opts, nil)
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// NewLoggerWithOptions creates a logger with both domain and zap options.
func (f *Factory) NewLoggerWithOptions(dopts []domainlog.Option, zopts []ZapOption) (*ZapLogger, error) {
	o := ZapOptions{
		LoggerOptions: domainlog.DefaultOptions(),
		OutputPaths:   []string{"stdout"},
	}
	if err := options.Apply(&o.LoggerOptions, dopts...); err != nil {
		return nil, fmt.Errorf("applying domain options: %w", err)
	}
	if err := options.Apply(&o, zopts...); err != nil {
		return nil, fmt.Errorf("applying zap options: %w", err)
	}
	return f.build(o)
}

func (f *Factory) build(o ZapOptions) (*ZapLogger, error) {
	atom := zap.NewAtomicLevelAt(toZapLevel(o.Level))

	config := zap.Config{
		Level:             atom,
		Development:       o.Development,
		DisableStacktrace: !o.Development,
		Encoding:          "json",
		EncoderConfig: zapcore.EncoderConfig{
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
		},
		OutputPaths:      o.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build(zap.AddCallerSkip(1), zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}
	if o.ServiceName != "" {
		logger = logger.With(zap.String("service", o.ServiceName))
	}
	if len(o.Fields) > 0 {
		logger = logger.With(toZapFields(o.Fields)...)
	}

	return &ZapLogger{logger: logger, atom: atom}, nil
}

// NewZapLogger wraps an existing zap logger. Level changes go through atom,
// which should be the level enabler of the logger's core.
func NewZapLogger(logger *zap.Logger, atom zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{logger: logger, atom: atom}
}

func (l *ZapLogger) Debug(msg string) { l.logger.Debug(msg) }
func (l *ZapLogger) Info(msg string)  { l.logger.Info(msg) }
func (l *ZapLogger) Warn(msg string)  { l.logger.Warn(msg) }
func (l *ZapLogger) Error(msg string) { l.logger.Error(msg) }

func (l *ZapLogger) DebugWith(msg string, fields domainlog.Fields) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *ZapLogger) InfoWith(msg string, fields domainlog.Fields) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) WarnWith(msg string, fields domainlog.Fields) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) ErrorWith(msg string, fields domainlog.Fields) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *ZapLogger) With(fields domainlog.Fields) domainlog.Logger {
	return &ZapLogger{logger: l.logger.With(toZapFields(fields)...), atom: l.atom}
}

// WithContext attaches the trace and span ids of a recording span in ctx.
func (l *ZapLogger) WithContext(ctx context.Context) domainlog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return l
	}
	sc := span.SpanContext()
	if !sc.HasTraceID() {
		return l
	}

	logger := l.logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
	if sc.IsSampled() {
		logger = logger.With(zap.Bool("sampled", true))
	}
	return &ZapLogger{logger: logger, atom: l.atom}
}

func (l *ZapLogger) SetLevel(level domainlog.Level) {
	l.atom.SetLevel(toZapLevel(level))
}

func (l *ZapLogger) GetLevel() domainlog.Level {
	switch l.atom.Level() {
	case zapcore.DebugLevel:
		return domainlog.DebugLevel
	case zapcore.WarnLevel:
		return domainlog.WarnLevel
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return domainlog.ErrorLevel
	default:
		return domainlog.InfoLevel
	}
}

// GetConfigHandler exposes zap's level endpoint: GET reports the level and
// PUT {"level":"debug"} changes it.
func (l *ZapLogger) GetConfigHandler() http.Handler {
	return l.atom
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func toZapLevel(level domainlog.Level) zapcore.Level {
	switch level {
	case domainlog.DebugLevel:
		return zapcore.DebugLevel
	case domainlog.WarnLevel:
		return zapcore.WarnLevel
	case domainlog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields domainlog.Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
