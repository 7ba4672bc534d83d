package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Handler struct {
	service      *Service
	onRegistered func(ctx context.Context, u User) error
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetRegisterHook runs after an account is stored, e.g. to create its progress record.
func (h *Handler) SetRegisterHook(fn func(ctx context.Context, u User) error) {
	h.onRegistered = fn
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.service.Register(in.Username, in.Password, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrWeakPassword):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUsernameTaken):
			writeErr(w, http.StatusConflict, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not register")
		}
		return
	}

	if h.onRegistered != nil {
		if err := h.onRegistered(r.Context(), u); err != nil {
			h.service.logger.Error("register_hook_failed", zap.String("username", u.Username), zap.Error(err))
			writeErr(w, http.StatusInternalServerError, "could not create progress record")
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"user": u.Public(),
	})
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, token, exp, err := h.service.Login(in.Username, in.Password, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			writeErr(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrAccountPending):
			writeErr(w, http.StatusForbidden, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not log in")
		}
		return
	}

	h.service.SetSessionCookie(w, r, token, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"user":      u.Public(),
		"expiresAt": exp.Format(time.RFC3339),
	})
}

// GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	u, sess, ok := h.service.AuthenticateRequest(r, time.Now())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": u.Public(),
		"session": map[string]any{
			"id":        sess.ID,
			"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
			"lastSeen":  sess.LastSeen.Format(time.RFC3339),
		},
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.RevokeSessionForRequest(r)
	h.service.ClearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/admin/users
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not list users")
		return
	}
	out := make([]Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "users": out})
}

// POST /api/admin/users/{username}/approve
func (h *Handler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Approve(r.PathValue("username"), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeErr(w, http.StatusNotFound, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not approve user")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": u.Public()})
}
