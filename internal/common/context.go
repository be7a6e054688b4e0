package common

import "context"

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// WithRequestID tags ctx with the id the HTTP layer assigned (or accepted
// from the caller) for this request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFromContext returns the request id, or "" when the context was
// never tagged (CLI paths, tests).
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}
