package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cliplearn/backend/internal/application/auth"
	clipapp "github.com/cliplearn/backend/internal/application/clip"
	"github.com/cliplearn/backend/internal/domain"
)

// ClipHandler handles clip CRUD, upload, media streaming, and the random feed.
type ClipHandler struct {
	svc      clipapp.Service
	gate     *auth.Gate
	maxBytes int64
}

func NewClipHandler(svc clipapp.Service, gate *auth.Gate, maxBytes int64) *ClipHandler {
	return &ClipHandler{svc: svc, gate: gate, maxBytes: maxBytes}
}

func (h *ClipHandler) Upload(w http.ResponseWriter, r *http.Request) {
	admin, err := h.gate.ResolveAdmin(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("clip")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer f.Close()

	c, err := h.svc.Upload(r.Context(), clipapp.UploadInput{
		Reader:               f,
		ContentType:          header.Header.Get("Content-Type"),
		Size:                 header.Size,
		DescriptionPrimary:   r.FormValue("description_primary"),
		DescriptionSecondary: r.FormValue("description_secondary"),
		UploaderID:           admin.UserID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ClipEnvelope{Clip: c})
}

func (h *ClipHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	clips, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClipsEnvelope{Clips: clips})
}

func (h *ClipHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	clipID, ok := intParam(w, r, "clip_id")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), clipID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClipEnvelope{Clip: c})
}

func (h *ClipHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	clipID, ok := intParam(w, r, "clip_id")
	if !ok {
		return
	}
	var req domain.UpdateClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.Update(r.Context(), clipID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClipEnvelope{Clip: c})
}

func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.ResolveAdmin(r); err != nil {
		writeDomainError(w, err)
		return
	}
	clipID, ok := intParam(w, r, "clip_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), clipID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "clip deleted"})
}

// Media streams a clip's video or thumbnail from storage.
func (h *ClipHandler) Media(w http.ResponseWriter, r *http.Request) {
	clipID, ok := intParam(w, r, "clip_id")
	if !ok {
		return
	}
	body, contentType, err := h.svc.Media(r.Context(), clipID, chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, body)
}

// Random serves the clip feed. Anonymous callers get a plain batch; callers
// with a valid token may additionally get the daily quiz item. Identity is
// resolved lazily inside the service, so a bad token only matters when the
// quiz is enabled — with the quiz off, everyone gets a plain batch.
func (h *ClipHandler) Random(w http.ResponseWriter, r *http.Request) {
	var resolve clipapp.UserResolver
	if auth.HasBearer(r) {
		resolve = func(context.Context) (*domain.User, error) {
			return h.gate.ResolveUser(r)
		}
	}
	items, err := h.svc.RandomBatch(r.Context(), parseExclude(r.URL.Query().Get("exclude")), resolve)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClipsEnvelope{Clips: items})
}

// parseExclude reads the exclude query parameter, a JSON array of clip ids.
// Lenient on purpose: invalid JSON means no exclusions, and non-numeric
// entries are dropped rather than rejected.
func parseExclude(raw string) []int {
	if raw == "" {
		return nil
	}
	var entries []interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	var ids []int
	for _, e := range entries {
		switch v := e.(type) {
		case float64:
			ids = append(ids, int(v))
		case string:
			var n float64
			if err := json.Unmarshal([]byte(v), &n); err == nil {
				ids = append(ids, int(n))
			}
		}
	}
	return ids
}
