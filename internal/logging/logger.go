// Package logging provides the structured, component-tagged logger used
// throughout the pipeline. The public surface (WithComponent, WithField,
// WithTraceID, leveled methods) matches the teacher's hand-rolled logger;
// the engine underneath is github.com/rs/zerolog, the way the teacher's
// own internal/orders and internal/api packages log directly.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's levels under the teacher's naming.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Config configures a Logger.
type Config struct {
	Level      string
	Output     string // "stdout", "stderr", or a file path
	Component  string
	JSONFormat bool
}

// Logger is a structured, component/trace-tagged logger wrapping zerolog.
type Logger struct {
	base      zerolog.Logger
	component string
	traceID   string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a Logger from Config.
func New(cfg *Config) *Logger {
	var output io.Writer = os.Stdout
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "", "stdout":
		output = os.Stdout
	default:
		if f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			output = f
		}
	}

	if !cfg.JSONFormat {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	base := zerolog.New(output).With().Timestamp().Logger().Level(ParseLevel(cfg.Level).zerolog())
	if cfg.Component != "" {
		base = base.With().Str("component", cfg.Component).Logger()
	}

	return &Logger{base: base, component: cfg.Component}
}

// Default returns the process-wide default Logger, initialized lazily.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(&Config{Level: "INFO", Output: "stdout", Component: "ict-signal-engine", JSONFormat: true})
	})
	return defaultLogger
}

// SetDefault overrides the default logger (used by process bootstrapping).
func SetDefault(l *Logger) {
	defaultLogger = l
}

// WithComponent returns a derived Logger tagged with the given component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{base: l.base.With().Str("component", component).Logger(), component: component, traceID: l.traceID}
}

// WithTraceID returns a derived Logger tagged with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{base: l.base.With().Str("trace_id", traceID).Logger(), component: l.component, traceID: traceID}
}

// WithField returns a derived Logger with one additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base.With().Interface(key, value).Logger(), component: l.component, traceID: l.traceID}
}

// WithFields returns a derived Logger with several additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.base.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{base: ctx.Logger(), component: l.component, traceID: l.traceID}
}

// WithError returns a derived Logger with an error field set.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{base: l.base.With().Err(err).Logger(), component: l.component, traceID: l.traceID}
}

// event applies the printf-or-keyvals convention the teacher's logger
// used: an even-length, string-first args list is treated as key/value
// pairs; anything else is sprintf'd into the message.
func (l *Logger) event(e *zerolog.Event, msg string, args ...interface{}) {
	if len(args) == 0 {
		e.Msg(msg)
		return
	}
	if len(args)%2 == 0 {
		if _, ok := args[0].(string); ok {
			for i := 0; i < len(args); i += 2 {
				key, ok := args[i].(string)
				if !ok {
					continue
				}
				if err, isErr := args[i+1].(error); isErr {
					if err != nil {
						e = e.Str(key, err.Error())
					}
					continue
				}
				e = e.Interface(key, args[i+1])
			}
			e.Msg(msg)
			return
		}
	}
	e.Msgf(msg, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) { l.event(l.base.Debug(), msg, args...) }

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) { l.event(l.base.Info(), msg, args...) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) { l.event(l.base.Warn(), msg, args...) }

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) { l.event(l.base.Error(), msg, args...) }

// Fatal logs at FATAL level and exits the process.
func (l *Logger) Fatal(msg string, args ...interface{}) { l.event(l.base.Fatal(), msg, args...) }

// Package-level convenience functions delegating to Default().

func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }
func Info(msg string, args ...interface{})  { Default().Info(msg, args...) }
func Warn(msg string, args ...interface{})  { Default().Warn(msg, args...) }
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }
func Fatal(msg string, args ...interface{}) { Default().Fatal(msg, args...) }

func WithComponent(component string) *Logger          { return Default().WithComponent(component) }
func WithTraceID(traceID string) *Logger               { return Default().WithTraceID(traceID) }
func WithField(key string, value interface{}) *Logger  { return Default().WithField(key, value) }
func WithFields(fields map[string]interface{}) *Logger { return Default().WithFields(fields) }
func WithError(err error) *Logger                      { return Default().WithError(err) }
