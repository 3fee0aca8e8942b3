package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lewkins/storefront/internal/domain/auth"
	"github.com/lewkins/storefront/internal/store"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		respondError(w, r, http.StatusUnprocessableEntity, "name, email and a password of at least 8 characters are required")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	user := &auth.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleBuyer,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respondError(w, r, http.StatusConflict, "email already registered")
			return
		}
		respondInternal(w, r, err)
		return
	}
	h.issueSession(w, r, user, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondInternal(w, r, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.issueSession(w, r, user, http.StatusOK)
}

// Logout revokes the session and sweeps the user's persisted cart and
// wishlist state. The session delete and the state sweep are independent: a
// failure in one must not leave the other behind.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	token, _ := bearerToken(r)
	claims, err := h.tokens.Verify(token)
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, "invalid token")
		return
	}
	sessionErr := h.sessions.Delete(r.Context(), claims.ID)
	if sessionErr != nil {
		zctx.From(r.Context()).Error("Delete session", zap.Error(sessionErr))
	}

	h.clientFor(r).ClearAll(r.Context())
	h.stores.Evict(user.ID)

	if sessionErr != nil {
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, toUserResponse(CurrentUser(r.Context())))
}

func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, user *auth.User, status int) {
	token, sessionID, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	session := &auth.Session{ID: sessionID, UserID: user.ID, ExpiresAt: expiresAt}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, status, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

// clientFor returns the authenticated user's client store.
func (h *Handler) clientFor(r *http.Request) *store.Client {
	return h.stores.Client(r.Context(), CurrentUser(r.Context()).ID)
}
