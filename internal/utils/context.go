// Package utils provides small helpers shared by the sync server and the
// terminal client: typed context keys, JSON response writing, watermark
// headers, the resty-based HTTP client, JWT handling and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys so they never collide with
// string keys of other packages.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey holds the authenticated owner id (int64) of a request.
var UserIDCtxKey = contextKey("userID")

// WithUserID returns a copy of ctx carrying the owner id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// TraceIDCtxKey holds the trace id (string) shared by the client's sync
// cycle and the server's request logs.
var TraceIDCtxKey = contextKey("traceID")

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDCtxKey, traceID)
}

// GetTraceIDFromContext retrieves the trace id; ok is false when none is set.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok && traceID != ""
}

// GetUserIDFromContext retrieves the owner id stored by the auth middleware.
// ok is false when the value is missing or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
