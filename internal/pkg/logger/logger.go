package logger

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with the handful of helpers the services use
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger for the given environment.
// "development" gets colored console output at debug level, "test" is
// silenced below warn, anything else emits JSON at info level.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(env string, out io.Writer) *Logger {
	var logger zerolog.Logger

	switch env {
	case "development":
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	case "test":
		logger = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	default:
		logger = zerolog.New(out).With().Timestamp().Caller().Logger().Level(zerolog.InfoLevel)
	}

	return &Logger{logger: logger}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(err error, format string, v ...interface{}) {
	l.logger.Error().Err(err).Msgf(format, v...)
}

// expectedError is implemented by errors that describe a client mistake
type expectedError interface {
	Expected() bool
}

// Failure logs err at debug level when it reports an expected client
// outcome and at error level otherwise
func (l *Logger) Failure(msg string, err error) {
	var e expectedError
	if errors.As(err, &e) && e.Expected() {
		l.logger.Debug().Err(err).Msg(msg)
		return
	}
	l.logger.Error().Err(err).Msg(msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, err error) {
	l.logger.Fatal().Err(err).Msg(msg)
}

// With returns a new logger with one additional context field
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithFields returns a new logger with multiple context fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// WithRequest tags the logger with the chi request id carried by ctx, if any
func (l *Logger) WithRequest(ctx context.Context) *Logger {
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		return l
	}
	return l.With("request_id", reqID)
}

// SetGlobalLogger sets the global zerolog logger
func SetGlobalLogger(l *Logger) {
	log.Logger = l.logger
}
