package handlers

import (
	"net/http"

	"ahorra/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListMail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondErrorWith(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer", map[string]any{"field": "limit"})
		return
	}
	mails, err := h.mailbox.GetMails(r.Context(), userID, limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, mails)
}

type updateMailRequest struct {
	Read *bool `json:"read"`
}

func (h *Handler) UpdateMail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req updateMailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Read == nil {
		respondErrorWith(w, http.StatusBadRequest, "validation_error", "read is required", map[string]any{"field": "read"})
		return
	}
	if err := h.mailbox.UpdateMail(r.Context(), userID, chi.URLParam(r, "id"), *req.Read); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": chi.URLParam(r, "id"), "read": *req.Read})
}

func (h *Handler) DeleteMail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := h.mailbox.DeleteMail(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
