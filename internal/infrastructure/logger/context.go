package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// TenantCodeKey is the context key for the ambient tenant code
	TenantCodeKey contextKey = "tenant_code"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enrichedLogger := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithTenantCode adds the ambient tenant code to context and returns an
// enriched logger. The tenant resolver reads this value when no explicit
// tenant id is supplied.
func WithTenantCode(ctx context.Context, logger *zap.Logger, tenantCode string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, TenantCodeKey, tenantCode)
	enrichedLogger := logger.With(zap.String("tenant_code", tenantCode))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetTenantCode retrieves the ambient tenant code from context
func GetTenantCode(ctx context.Context) string {
	if tenantCode, ok := ctx.Value(TenantCodeKey).(string); ok {
		return tenantCode
	}
	return ""
}
