package suggest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxPromptRunes = 500

type Handler struct {
	s      Suggester
	logger *zap.Logger
}

// NewHandler accepts a nil Suggester; requests are then answered with 503.
func NewHandler(s Suggester, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{s: s, logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/tasks/suggest
func (h *Handler) SuggestTaskName(w http.ResponseWriter, r *http.Request) {
	if h.s == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": ErrNotConfigured.Error()})
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json", "kind": "invalid_input"})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" || utf8.RuneCountInString(prompt) > maxPromptRunes {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "prompt must be 1-500 characters", "kind": "invalid_input"})
		return
	}

	name, err := h.s.SuggestTaskName(r.Context(), prompt)
	if errors.Is(err, ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	if err != nil || name == "" {
		h.logger.Warn("suggest_failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "suggestion failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "taskName": name})
}
