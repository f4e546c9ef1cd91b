package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cliplearn/backend/internal/application/auth"
	settingsapp "github.com/cliplearn/backend/internal/application/settings"
)

// SettingsHandler serves the global app settings. Reads are public so the
// client can decide whether to show quiz UI; writes are admin only.
type SettingsHandler struct {
	svc  settingsapp.Service
	gate *auth.Gate
}

func NewSettingsHandler(svc settingsapp.Service, gate *auth.Gate) *SettingsHandler {
	return &SettingsHandler{svc: svc, gate: gate}
}

func (h *SettingsHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Fetch(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsEnvelope{Settings: s})
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	// Both fields tolerate string-typed values from form-style clients:
	// "true" enables the quiz, and a numeric string is parsed.
	var req struct {
		QuizEnabled     interface{} `json:"quiz_enabled"`
		ClipsBeforeQuiz interface{} `json:"clips_before_quiz"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	update := settingsapp.UpdateRequest{}
	switch v := req.QuizEnabled.(type) {
	case bool:
		update.QuizEnabled = v
	case string:
		update.QuizEnabled = v == "true"
	}
	switch v := req.ClipsBeforeQuiz.(type) {
	case float64:
		update.ClipsBeforeQuiz = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			update.ClipsBeforeQuiz = n
		}
	}
	s, err := h.svc.Update(r.Context(), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsEnvelope{Settings: s})
}
