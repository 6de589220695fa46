package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type sessionPayload struct {
	Title string `json:"title"`
}

// ListSessions handles GET /api/sessions, most recently active first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListChatSessions(r.Context())
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, sessions)
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionPayload
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.repo.CreateChatSession(r.Context(), req.Title)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusCreated, session)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.repo.GetChatSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

// ListSessionMessages handles GET /api/sessions/{id}/messages.
func (h *Handler) ListSessionMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.repo.GetChatSession(r.Context(), id); err != nil {
		StoreError(w, err)
		return
	}
	messages, err := h.repo.ListMessages(r.Context(), id)
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, messages)
}
