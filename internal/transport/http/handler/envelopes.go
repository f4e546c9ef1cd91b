package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cliplearn/backend/internal/application/auth"
	"github.com/cliplearn/backend/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps register/login/refresh responses.
type AuthEnvelope struct {
	UserID       int    `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UsersEnvelope wraps the admin user list.
type UsersEnvelope struct {
	Users []domain.User `json:"users"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User *domain.User `json:"user"`
}

// ClipsEnvelope wraps clip lists and random batches.
type ClipsEnvelope struct {
	Clips interface{} `json:"clips"`
}

// ClipEnvelope wraps a single clip.
type ClipEnvelope struct {
	Clip *domain.Clip `json:"clip"`
}

// SettingsEnvelope wraps the global settings document.
type SettingsEnvelope struct {
	Settings domain.Settings `json:"settings"`
}

// QuizAttemptEnvelope wraps a recorded attempt.
type QuizAttemptEnvelope struct {
	QuizAttempt *domain.QuizAttempt `json:"quiz_attempt"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps sentinel errors onto HTTP statuses. Every auth and
// validation failure collapses to a generic 400; refresh failures (the one
// deliberate asymmetry) carry ErrUnauthorized and surface as 401; a batch
// that cannot be filled is a 409.
func writeDomainError(w http.ResponseWriter, err error) {
	var authErr *auth.AuthError
	switch {
	case errors.As(err, &authErr):
		writeError(w, http.StatusBadRequest, authErr.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrDataShortage):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
