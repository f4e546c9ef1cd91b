package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cliplearn/backend/internal/application/auth"
	userapp "github.com/cliplearn/backend/internal/application/user"
	"github.com/cliplearn/backend/internal/domain"
	"github.com/cliplearn/backend/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles registration, admin user CRUD, and self endpoints.
type UserHandler struct {
	svc  userapp.Service
	auth auth.Service
	gate *auth.Gate
}

func NewUserHandler(svc userapp.Service, authSvc auth.Service, gate *auth.Gate) *UserHandler {
	return &UserHandler{svc: svc, auth: authSvc, gate: gate}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pair, err := h.auth.IssuePair(u.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, authEnvelope(u.Sanitized(), pair))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	users, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{Users: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	userID, ok := intParam(w, r, "user_id")
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	userID, ok := intParam(w, r, "user_id")
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Update(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, err := h.gate.ResolveAdmin(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	userID, ok := intParam(w, r, "user_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, admin.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

func (h *UserHandler) GetSelf(w http.ResponseWriter, r *http.Request) {
	u, err := h.gate.ResolveUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func (h *UserHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	u, err := h.gate.ResolveUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req userapp.UpdateSelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateSelf(r.Context(), u.UserID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: updated})
}

func (h *UserHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	u, err := h.gate.ResolveUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.svc.DeleteSelf(r.Context(), u.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

// intParam parses a numeric URL parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+" param "+strconv.Quote(raw))
		return 0, false
	}
	return v, true
}
