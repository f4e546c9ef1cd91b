package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cliplearn/backend/internal/application/auth"
	quizapp "github.com/cliplearn/backend/internal/application/quiz"
)

// QuizHandler records quiz attempts for authenticated users.
type QuizHandler struct {
	svc  quizapp.Service
	gate *auth.Gate
}

func NewQuizHandler(svc quizapp.Service, gate *auth.Gate) *QuizHandler {
	return &QuizHandler{svc: svc, gate: gate}
}

func (h *QuizHandler) Record(w http.ResponseWriter, r *http.Request) {
	user, err := h.gate.ResolveUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// The correct field tolerates both a boolean and the string "true";
	// anything else counts as a failed attempt.
	var req struct {
		Correct interface{} `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	success := false
	switch v := req.Correct.(type) {
	case bool:
		success = v
	case string:
		success = v == "true"
	}
	attempt, err := h.svc.RecordAttempt(r.Context(), user.UserID, success)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, QuizAttemptEnvelope{QuizAttempt: attempt})
}
