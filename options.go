package dux

import (
	"log/slog"
	"os"
)

// Logger is the minimal logging surface the store needs. It matches the
// method set of slog-style loggers so adapters stay one line long.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const logPrefix = "[dux] "

// DefaultLogger is a Logger backed by log/slog writing to stderr.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a DefaultLogger at the given level.
func NewDefaultLogger(level slog.Level) *DefaultLogger {
	return &DefaultLogger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

func (d *DefaultLogger) Debug(msg string, args ...any) { d.logger.Debug(logPrefix+msg, args...) }
func (d *DefaultLogger) Info(msg string, args ...any)  { d.logger.Info(logPrefix+msg, args...) }
func (d *DefaultLogger) Warn(msg string, args ...any)  { d.logger.Warn(logPrefix+msg, args...) }
func (d *DefaultLogger) Error(msg string, args ...any) { d.logger.Error(logPrefix+msg, args...) }

// Option configures a Store at construction time.
type Option[S any] func(*config[S])

type config[S any] struct {
	initialState S
	logger       Logger
	obs          Observability
}

// WithInitialState preloads the state handed to the reducer's init run.
// Without it the zero value of S is used.
func WithInitialState[S any](state S) Option[S] {
	return func(c *config[S]) {
		c.initialState = state
	}
}

// WithLogger sets the logger used for subscriber panics, reducer panics and
// queued-dispatch failures. Without it the store is silent.
func WithLogger[S any](logger Logger) Option[S] {
	return func(c *config[S]) {
		c.logger = logger
	}
}

// WithObservability attaches dispatch instrumentation, for example the
// OpenTelemetry implementation in the otel subpackage.
func WithObservability[S any](obs Observability) Option[S] {
	return func(c *config[S]) {
		c.obs = obs
	}
}
