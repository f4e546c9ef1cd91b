package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cliplearn/backend/internal/application/auth"
	"github.com/cliplearn/backend/internal/domain"
)

// SessionHandler handles login and token refresh.
type SessionHandler struct {
	svc auth.Service
}

func NewSessionHandler(svc auth.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope(u, pair))
}

func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	u, pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope(u, pair))
}

func authEnvelope(u *domain.User, pair auth.TokenPair) AuthEnvelope {
	return AuthEnvelope{
		UserID:       u.UserID,
		Email:        u.Email,
		Role:         u.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
