package middleware

import (
	"context"
	"fmt"
)

// contextKey is a custom type for context keys to avoid collisions with
// keys set by other packages.
type contextKey string

// Context keys for request-scoped values, set by the auth middleware
// once the initiator lookup resolves to Found.
const (
	UserIDKey contextKey = "user_id"
)

// GetUserID safely extracts the authenticated user's id from context.
func GetUserID(ctx context.Context) (int32, error) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return 0, fmt.Errorf("user_id not found in context")
	}
	id, ok := val.(int32)
	if !ok {
		return 0, fmt.Errorf("user_id has wrong type: %T", val)
	}
	return id, nil
}

// MustGetUserID extracts the user id and panics if not found. Use only
// where the auth middleware is guaranteed to have run first.
func MustGetUserID(ctx context.Context) int32 {
	id, err := GetUserID(ctx)
	if err != nil {
		panic(fmt.Sprintf("CRITICAL: %v", err))
	}
	return id
}
