package auth

import (
	"context"
	"net/http"
)

type contextKey string

const (
	workspaceIDKey contextKey = "workspace_id"
	userIDKey      contextKey = "user_id"
)

// WithIdentity stores workspace and user information on the context.
func WithIdentity(ctx context.Context, workspaceID, userID string) context.Context {
	if workspaceID != "" {
		ctx = context.WithValue(ctx, workspaceIDKey, workspaceID)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	return ctx
}

func WorkspaceIDFromRequest(r *http.Request) (string, bool) {
	wid, ok := r.Context().Value(workspaceIDKey).(string)
	if !ok || wid == "" {
		return "", false
	}
	return wid, true
}

func UserIDFromRequest(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}
