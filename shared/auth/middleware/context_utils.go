package middleware

import (
	"context"
	"net/http"

	"solarcredits-service/shared/auth/pkg/jwtutil"
)

type contextKey string

const (
	ContextUserID contextKey = "userID"
	ContextEmail  contextKey = "email"
)

func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok && val != ""
}

func GetEmail(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextEmail).(string)
	return val, ok && val != ""
}

// WithUserID returns a context carrying userID, as set by the auth middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserID, userID)
}

func withClaims(r *http.Request, claims *jwtutil.Claims) *http.Request {
	ctx := WithUserID(r.Context(), claims.UserID())
	if claims.Email != "" {
		ctx = context.WithValue(ctx, ContextEmail, claims.Email)
	}
	return r.WithContext(ctx)
}
