package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type reflectionCtxKey struct{}
type userCtxKey struct{}
type requestCtxKey struct{}
type loggerCtxKey struct{}

// maxIDLen bounds ids copied into log entries.
const maxIDLen = 128

// ContextFields extracts correlation data from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 5)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := ReflectionIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("reflection.id", id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("user.id", id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	return fields
}

// WithReflectionID attaches the reflection being processed.
func WithReflectionID(ctx context.Context, id string) context.Context {
	return withID(ctx, reflectionCtxKey{}, id)
}

// ReflectionIDFromContext returns the reflection id or "".
func ReflectionIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(reflectionCtxKey{}).(string)
	return s
}

// WithUserID attaches the author of the reflection.
func WithUserID(ctx context.Context, id string) context.Context {
	return withID(ctx, userCtxKey{}, id)
}

// UserIDFromContext returns the user id or "".
func UserIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(userCtxKey{}).(string)
	return s
}

// WithRequestID attaches an HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(requestCtxKey{}).(string)
	return s
}

// withID ignores empty ids and truncates oversized ones.
func withID(ctx context.Context, key any, id string) context.Context {
	if id == "" {
		return ctx
	}
	if len(id) > maxIDLen {
		id = id[:maxIDLen]
	}
	return context.WithValue(ctx, key, id)
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a nop logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}
