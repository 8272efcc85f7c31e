package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	tenantIDKey  contextKey = "tenant_id"
	userIDKey    contextKey = "user_id"
)

// WithContext stores the logger in the context
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext retrieves the logger from the context, returning a no-op
// logger when none was stored
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTenantID stores the tenant ID in the context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantID retrieves the tenant ID from the context
func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(tenantIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID stores the user ID in the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceID extracts the OpenTelemetry trace ID from the context
func GetTraceID(ctx context.Context) string {
	span := trace.SpanContextFromContext(ctx)
	if span.HasTraceID() {
		return span.TraceID().String()
	}
	return ""
}

// GetSpanID extracts the OpenTelemetry span ID from the context
func GetSpanID(ctx context.Context) string {
	span := trace.SpanContextFromContext(ctx)
	if span.HasSpanID() {
		return span.SpanID().String()
	}
	return ""
}

// ContextLogger wraps a zap logger and enriches every entry with fields
// carried by the request context (trace, request, tenant, user).
type ContextLogger struct {
	base *zap.Logger
}

// NewContextLogger creates a context-aware logger
func NewContextLogger(base *zap.Logger) *ContextLogger {
	return &ContextLogger{base: base}
}

// L returns the base logger enriched with context fields
func (c *ContextLogger) L(ctx context.Context) *zap.Logger {
	log := c.base

	if traceID := GetTraceID(ctx); traceID != "" {
		log = log.With(zap.String("trace_id", traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		log = log.With(zap.String("span_id", spanID))
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	if tenantID := GetTenantID(ctx); tenantID != "" {
		log = log.With(zap.String("tenant_id", tenantID))
	}
	if userID := GetUserID(ctx); userID != "" {
		log = log.With(zap.String("user_id", userID))
	}
	return log
}

// Debug logs a debug message with context fields
func (c *ContextLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Debug(msg, fields...)
}

// Info logs an info message with context fields
func (c *ContextLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Info(msg, fields...)
}

// Warn logs a warning message with context fields
func (c *ContextLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Warn(msg, fields...)
}

// Error logs an error message with context fields
func (c *ContextLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Error(msg, fields...)
}

// Fatal logs a fatal message with context fields and exits
func (c *ContextLogger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Fatal(msg, fields...)
}

// Zap returns the underlying zap logger
func (c *ContextLogger) Zap() *zap.Logger {
	return c.base
}
