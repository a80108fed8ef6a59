package logger

import "context"

type contextKey string

const (
	requestIDKey contextKey = "linkauth.request_id"
	clientKey    contextKey = "linkauth.client"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithClient records the client host for access lines.
func WithClient(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, clientKey, host)
}

// ClientFromContext returns the client host set by WithClient.
func ClientFromContext(ctx context.Context) string {
	if host, ok := ctx.Value(clientKey).(string); ok {
		return host
	}
	return ""
}
