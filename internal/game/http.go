package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/xmuzan/samplepomodoro/internal/auth"
	"github.com/xmuzan/samplepomodoro/internal/progress"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	kind := progress.KindOf(err)
	switch kind {
	case progress.KindNotFound:
		code = http.StatusNotFound
	case progress.KindPreconditionFailed:
		code = http.StatusConflict
	case progress.KindForbidden:
		code = http.StatusForbidden
	case progress.KindInvalidInput:
		code = http.StatusBadRequest
	}
	if kind != "" {
		var pe *progress.Error
		if errors.As(err, &pe) {
			msg = pe.Msg
		} else {
			msg = err.Error()
		}
	}
	writeJSON(w, code, map[string]any{"error": msg, "kind": kind})
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return &progress.Error{Kind: progress.KindInvalidInput, Msg: "invalid json"}
	}
	return nil
}

func currentUser(w http.ResponseWriter, r *http.Request) (auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	}
	return u, ok
}

func writeOutcome(w http.ResponseWriter, code int, v View, out progress.Outcome) {
	writeJSON(w, code, map[string]any{
		"ok":      true,
		"state":   v,
		"message": out.Message(),
		"outcome": out,
	})
}

// apply runs ev for the signed-in user and writes the outcome.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, code int, ev progress.Event) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, out, err := h.svc.Apply(r.Context(), u.Username, ev)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOutcome(w, code, v, out)
}

// GET /api/player/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := h.svc.State(r.Context(), u.Username)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": v})
}

// POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var ev progress.CreateTask
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusCreated, ev)
}

// POST /api/tasks/{id}/toggle
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, http.StatusOK, progress.ToggleTask{TaskID: r.PathValue("id")})
}

// DELETE /api/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, http.StatusOK, progress.DeleteTask{TaskID: r.PathValue("id")})
}

// GET /api/reports
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reports": h.svc.engine.Catalog.Reports})
}

// POST /api/reports
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var ev progress.ReportBehavior
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusOK, ev)
}

// GET /api/shop
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": h.svc.engine.Catalog.Items})
}

// POST /api/shop/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var ev progress.PurchaseItem
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusOK, ev)
}

// POST /api/inventory/use
func (h *Handler) UseItem(w http.ResponseWriter, r *http.Request) {
	var ev progress.UseItem
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusOK, ev)
}

// POST /api/inventory/discard
func (h *Handler) DiscardItem(w http.ResponseWriter, r *http.Request) {
	var ev progress.DiscardItem
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusOK, ev)
}

// POST /api/attributes/spend
func (h *Handler) SpendAttribute(w http.ResponseWriter, r *http.Request) {
	var ev progress.SpendAttributePoint
	if err := decodeJSON(r, &ev); err != nil {
		writeErr(w, err)
		return
	}
	h.apply(w, r, http.StatusOK, ev)
}

// GET /api/boss
func (h *Handler) Boss(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Boss(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"boss":  b,
		"alive": b.Alive(h.svc.clock.Now()),
	})
}

// POST /api/boss/attack
func (h *Handler) AttackBoss(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, b, out, err := h.svc.AttackBoss(r.Context(), u.Username)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"state":   v,
		"boss":    b,
		"message": out.Message(),
		"outcome": out,
	})
}

// POST /api/admin/users/{username}/reset
func (h *Handler) AdminReset(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := h.svc.ResetProgress(r.Context(), u.Admin, auth.NormalizeUsername(r.PathValue("username")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": v})
}

// GET /api/admin/stats?days=7
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, &progress.Error{Kind: progress.KindInvalidInput, Msg: "days must be a positive number"})
			return
		}
		days = n
	}
	since := h.svc.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
	stats, err := h.svc.Stats(since)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats})
}
