package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ParseLevel converts a config string into a LogLevel, falling back to info.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logger configuration
type Config struct {
	Level       LogLevel
	ServiceName string
	Environment string
	Version     string
	Output      io.Writer
	AddSource   bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Level:       LevelInfo,
		ServiceName: serviceName,
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("VERSION", "unknown"),
		Output:      os.Stdout,
	}
}

// Logger wraps slog.Logger with the service's structured fields.
type Logger struct {
	*slog.Logger
	serviceName string
}

// New creates a new Logger instance
func New(config *Config) *Logger {
	level := slog.LevelInfo
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler).With(
			"service", config.ServiceName,
			"environment", config.Environment,
			"version", config.Version,
		),
		serviceName: config.ServiceName,
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), serviceName: l.serviceName}
}

// WithContext creates a logger carrying the request-scoped attributes found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	attrs := extractContextAttrs(ctx)
	if len(attrs) == 0 {
		return l
	}
	return l.with(attrs...)
}

// WithRequestID adds a request ID to the logger
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("requestId", requestID)
}

// WithCorrelationID adds a correlation ID to the logger
func (l *Logger) WithCorrelationID(correlationID string) *Logger {
	return l.with("correlationId", correlationID)
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with("error", err.Error())
}

// WithComponent adds a component name to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithPicker scopes the logger to a single picker.
func (l *Logger) WithPicker(pickerID string) *Logger {
	return l.with("pickerId", pickerID)
}

// Event logs a domain event with structured data
func (l *Logger) Event(ctx context.Context, eventType string, data map[string]any) {
	attrs := []any{"eventType", eventType}
	for k, v := range data {
		attrs = append(attrs, k, v)
	}
	l.WithContext(ctx).Info("Domain event", attrs...)
}

// Audit logs an administrative write against a resource.
func (l *Logger) Audit(ctx context.Context, action, resource, resourceID, userID string) {
	l.WithContext(ctx).Info("Audit event",
		"auditAction", action,
		"resource", resource,
		"resourceId", resourceID,
		"userId", userID,
	)
}

// HTTPRequest logs an HTTP request with standard fields
func (l *Logger) HTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration, clientIP string) {
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	} else if status >= 400 {
		level = slog.LevelWarn
	}

	l.WithContext(ctx).Log(ctx, level, "HTTP request",
		"method", method,
		"path", path,
		"status", status,
		"durationMs", duration.Milliseconds(),
		"clientIP", clientIP,
	)
}

// DatabaseQuery logs a database operation
func (l *Logger) DatabaseQuery(ctx context.Context, collection, operation string, duration time.Duration, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	l.WithContext(ctx).WithError(err).Log(ctx, level, "Database query",
		"collection", collection,
		"operation", operation,
		"durationMs", duration.Milliseconds(),
		"success", err == nil,
	)
}

// KafkaPublish logs a Kafka publish
func (l *Logger) KafkaPublish(ctx context.Context, topic, eventType string, duration time.Duration, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	l.WithContext(ctx).WithError(err).Log(ctx, level, "Kafka publish",
		"topic", topic,
		"eventType", eventType,
		"durationMs", duration.Milliseconds(),
		"success", err == nil,
	)
}

// Panic logs a panic with stack trace
func (l *Logger) Panic(ctx context.Context, recovered any) {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)

	l.WithContext(ctx).Error("Panic recovered",
		"panic", recovered,
		"stack", string(stack[:n]),
	)
}

// SetDefault sets this logger as the default slog logger
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

type contextKey string

const (
	RequestIDKey     contextKey = "requestId"
	CorrelationIDKey contextKey = "correlationId"
	TraceIDKey       contextKey = "traceId"
	UserIDKey        contextKey = "userId"
)

func extractContextAttrs(ctx context.Context) []any {
	var attrs []any
	for _, key := range []contextKey{RequestIDKey, CorrelationIDKey, TraceIDKey, UserIDKey} {
		if v := ctx.Value(key); v != nil {
			attrs = append(attrs, string(key), v)
		}
	}
	return attrs
}

// ContextWithRequestID adds request ID to context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ContextWithCorrelationID adds correlation ID to context
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// ContextWithTraceID adds trace ID to context
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// ContextWithUserID adds the authenticated subject to context
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
