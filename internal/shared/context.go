package shared

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// ContextWithUserID stores the authenticated user's id on the context.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's id, or 0 when anonymous.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}
