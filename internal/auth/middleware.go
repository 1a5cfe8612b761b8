package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/kindling-app/kindling/internal/app"
	apperr "github.com/kindling-app/kindling/internal/errors"
)

type contextKey string

const (
	userIDKey    contextKey = "auth.userID"
	sessionIDKey contextKey = "auth.sessionID"
)

// UserID extracts the authenticated user id from a request context.
// Returns "" when the request is unauthenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// SessionID extracts the authenticated session id from a request context.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithUser returns a context carrying an authenticated identity. Exposed for
// handler tests.
func WithUser(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// Middleware authenticates requests via "Authorization: Bearer <jwt>",
// validating both the token signature and the backing session row.
// Unauthenticated requests are rejected at the boundary.
func Middleware(appCtx *app.AppContext) func(http.Handler) http.Handler {
	sessions := NewSessionStore(appCtx.DB)
	secret := appCtx.Config.Auth.JWTSecret

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
				return
			}

			claims, err := VerifyToken(secret, token)
			if err != nil {
				apperr.WriteError(w, apperr.Unauthorized("invalid or expired token"))
				return
			}

			session, err := sessions.Validate(r.Context(), claims.SessionID, token)
			if err != nil {
				appCtx.Logger.Error("session lookup failed", "err", err)
				apperr.WriteError(w, apperr.Map(err))
				return
			}
			if session == nil {
				apperr.WriteError(w, apperr.Unauthorized("session expired"))
				return
			}

			ctx := WithUser(r.Context(), session.UserID, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
