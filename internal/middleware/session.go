package middleware

import (
	"context"
	"errors"
	"net/http"

	"ahorra/internal/models"
	"ahorra/internal/services"
)

type SessionChecker interface {
	RequireCurrent(ctx context.Context, userID string) (models.User, error)
}

// RequireSession rejects tokens whose user is no longer the session user, so logout revokes every token.
func RequireSession(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			if _, err := sessions.RequireCurrent(r.Context(), userID); err != nil {
				if errors.Is(err, services.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, "session_required", "login required")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal_error", "unable to verify session")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
