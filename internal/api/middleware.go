package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/lewkins/storefront/internal/domain/auth"
)

type ctxKey int

const userKey ctxKey = iota

// CurrentUser returns the authenticated user stored in ctx by requireAuth,
// or nil when the request is anonymous.
func CurrentUser(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}

// requireAuth authenticates the bearer token, checks the backing session is
// still live, and stores the user in the request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		// A valid signature is not enough: logout deletes the session row,
		// which revokes the token before its expiry.
		if _, err := h.sessions.FindByID(r.Context(), claims.ID); err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				respondError(w, r, http.StatusUnauthorized, "session expired")
				return
			}
			respondInternal(w, r, err)
			return
		}
		user, err := h.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				respondError(w, r, http.StatusUnauthorized, "unknown user")
				return
			}
			respondInternal(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requireAdmin is requireAuth plus a role check.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()).Role != auth.RoleAdmin {
			respondError(w, r, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
